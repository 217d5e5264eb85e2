package core

// Frame is a raw encoded payload delivered to a client.
type Frame []byte

// SessionID identifies one live transport session. A closed session's id is
// never reused; a reconnecting client gets a fresh one.
type SessionID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
