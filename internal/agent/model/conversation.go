package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type ConversationRepository interface {
	// AddMessage appends a message to the transcript of the given conversation
	AddMessage(ctx context.Context, conversationID string, message *schema.Message) error

	// LoadHistory retrieves the transcript for a conversation in insertion order
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	// ClearHistory removes the transcript for a conversation
	ClearHistory(ctx context.Context, conversationID string) error

	// GetMessageCount returns the number of messages in the transcript
	GetMessageCount(ctx context.Context, conversationID string) (int, error)
}

// ConversationHistory represents a loaded transcript with metadata.
type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}
