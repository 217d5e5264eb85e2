package domain

import "time"

type (
	ChatID string
	// RoomID keys a signaling room. Chat rooms and call rooms both use the
	// chat id issued by the conversation store, so the two alias each other.
	RoomID string
)

type Participant struct {
	UserID   UserID `json:"user"`
	Username string `json:"username"`
}

type Chat struct {
	ID           ChatID        `json:"id"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ChatMessage is the persisted record the relay forwards. Durability is the
// store's job; the relay only ever sees an already-saved copy.
type ChatMessage struct {
	ID             string    `json:"id"`
	ChatID         ChatID    `json:"chatId"`
	SenderID       UserID    `json:"sender"`
	SenderUsername string    `json:"senderUsername"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}
