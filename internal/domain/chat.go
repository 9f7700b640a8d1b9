package domain

import "time"

// MessageRole — роль автора сообщения в диалоге.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatSession описывает сессию диалога с покупателем
type ChatSession struct {
	ID        string // uuid
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// ChatMessage — одна реплика диалога. Последовательность сообщений сессии
// упорядочена по времени и только дополняется.
type ChatMessage struct {
	ID         int64
	SessionID  string
	Role       MessageRole
	Content    string
	ProductIDs []string // рекомендованные товары, только для реплик ассистента
	CreatedAt  time.Time
}

func NewChatMessage(sessionID string, role MessageRole, content string, productIDs []string) *ChatMessage {
	return &ChatMessage{
		SessionID:  sessionID,
		Role:       role,
		Content:    content,
		ProductIDs: productIDs,
	}
}
