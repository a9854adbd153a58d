package models

import "time"

// MessageKind distinguishes chat entries
type MessageKind string

const (
	// MessageKindText is a message written by a member
	MessageKindText MessageKind = "text"

	// MessageKindSystem is an automated announcement
	MessageKindSystem MessageKind = "system"

	// MessageKindPoll announces an open poll
	MessageKindPoll MessageKind = "poll"
)

// Message is a chat entry in a room
type Message struct {
	ID        string      `json:"id"`
	RoomID    string      `json:"roomId"`
	AuthorID  string      `json:"authorId"`
	Kind      MessageKind `json:"kind"`
	Text      string      `json:"text,omitempty"`
	PollID    string      `json:"pollId,omitempty"`
	MediaURL  string      `json:"mediaUrl,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
