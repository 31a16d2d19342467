package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/convograph/agent/internal/agent/model"
)

// MessagesManager mediates between graph nodes and the transcript
// repository.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	chatMaxTurns     int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		chatMaxTurns:     config.Chat.MaxTurns,
	}
}

// BuildChatContext assembles the message list for a model call: system
// prompt, recent transcript, then the current user message. The current
// message is not yet part of the transcript; the pair is persisted by
// SaveExchange once the turn produced an output.
func (cm *MessagesManager) BuildChatContext(ctx context.Context, conversationID, systemPrompt, query string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	recent := trimTail(history.Messages, cm.chatMaxTurns)

	messages := make([]*schema.Message, 0, len(recent)+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	messages = append(messages, recent...)
	messages = append(messages, schema.UserMessage(query))

	return messages, nil
}

// SaveExchange appends exactly one user/assistant pair to the transcript,
// in that order.
func (cm *MessagesManager) SaveExchange(ctx context.Context, conversationID, query, response string) error {
	if err := cm.conversationRepo.AddMessage(ctx, conversationID, schema.UserMessage(query)); err != nil {
		return err
	}
	return cm.conversationRepo.AddMessage(ctx, conversationID, schema.AssistantMessage(response, nil))
}

// MessageCount reports the current transcript length.
func (cm *MessagesManager) MessageCount(ctx context.Context, conversationID string) (int, error) {
	return cm.conversationRepo.GetMessageCount(ctx, conversationID)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxMessages int) []*schema.Message {
	if maxMessages <= 0 || len(messages) <= maxMessages {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxMessages:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
