package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/DRSN-tech/seller-agent/pkg/e"
)

const (
	chatCompletionsPath = "/chat/completions"

	chatMaxTokens   = 500
	chatTemperature = 0.7
)

// Complete выполняет chat-completion запрос с той же дисциплиной ротации ключей,
// что и Embed: по одной попытке на ключ, побеждает первый валидный ответ.
// Исчерпание пула (или пустой пул) возвращает ошибку: запасное поведение
// определяет вызывающая сторона.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if len(c.cfg.APIKeys) == 0 {
		return "", e.ErrNoAPIKeys
	}

	payload := chatRequest{
		Model:       c.cfg.ChatModel,
		Messages:    messages,
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	}

	total := len(c.cfg.APIKeys)
	for i, key := range c.cfg.APIKeys {
		reply, ok := c.completeWithKey(ctx, payload, key, i+1, total)
		if ok {
			return reply, nil
		}

		if ctx.Err() != nil {
			break
		}
	}

	return "", e.ErrAllKeysFailed
}

func (c *Client) completeWithKey(ctx context.Context, payload chatRequest, key string, attempt, total int) (string, bool) {
	status, body, err := c.post(ctx, chatCompletionsPath, payload, key, c.cfg.ChatTimeout)
	if err != nil {
		c.logger.Warnf("Chat key %d/%d transport error: %v", attempt, total, err)
		return "", false
	}

	if status != http.StatusOK {
		c.logger.Warnf("Chat key %d/%d failed: status=%d body=%q", attempt, total, status, bodyPreview(body))
		return "", false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		c.logger.Warnf("Chat key %d/%d returned empty body", attempt, total)
		return "", false
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warnf("Chat key %d/%d returned malformed JSON: %v, body=%q", attempt, total, err, bodyPreview(body))
		return "", false
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		c.logger.Warnf("Chat key %d/%d returned no usable choices", attempt, total)
		return "", false
	}

	if parsed.Usage != nil {
		c.logger.Debugf("Chat succeeded with key %d/%d: %d tokens total", attempt, total, parsed.Usage.TotalTokens)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), true
}
