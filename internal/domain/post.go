package domain

import "time"

const MaxPostLen = 5000

type PostID string

type Comment struct {
	ID             string    `json:"id"`
	AuthorID       UserID    `json:"author"`
	AuthorUsername string    `json:"authorUsername"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Post struct {
	ID             PostID    `json:"id"`
	AuthorID       UserID    `json:"author"`
	AuthorUsername string    `json:"authorUsername"`
	Content        string    `json:"content"`
	Likes          []UserID  `json:"likes"`
	Comments       []Comment `json:"comments"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Mentor struct {
	ID        string    `json:"id"`
	UserID    UserID    `json:"user"`
	Expertise []string  `json:"expertise"`
	Company   string    `json:"company,omitempty"`
	Title     string    `json:"title,omitempty"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"createdAt"`
}
