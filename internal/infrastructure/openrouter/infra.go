package openrouter

import (
	"context"

	"github.com/DRSN-tech/seller-agent/internal/usecase"
)

// ChatInfra адаптирует Client к контракту chat-completion юзкейсов.
type ChatInfra struct {
	client *Client
}

func NewChatInfra(client *Client) *ChatInfra {
	return &ChatInfra{client: client}
}

func (i *ChatInfra) Complete(ctx context.Context, turns []usecase.ChatTurn) (string, error) {
	messages := make([]ChatMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	return i.client.Complete(ctx, messages)
}
