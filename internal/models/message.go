package models

import "time"

// Sender identifies who authored a transcript message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one entry of a chat transcript. IDs are monotonic per session.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	IsError   bool      `json:"isError,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
