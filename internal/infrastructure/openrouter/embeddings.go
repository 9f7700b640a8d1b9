package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const embeddingsPath = "/embeddings"

// Embed возвращает по одному вектору на каждый входной текст, в том же порядке.
// Выполняется один батч-запрос на ключ; ключи перебираются по порядку пула.
// Если все ключи исчерпаны (в том числе при пустом пуле), возвращаются
// детерминированные локальные эмбеддинги, поэтому Embed не возвращает ошибку
// при сбое провайдера.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload := embeddingRequest{
		Model: c.cfg.EmbeddingModel,
		Input: texts,
	}

	total := len(c.cfg.APIKeys)
	for i, key := range c.cfg.APIKeys {
		vectors, ok := c.embedWithKey(ctx, payload, key, i+1, total)
		if ok {
			return vectors, nil
		}

		if ctx.Err() != nil {
			break
		}
	}

	if total > 0 {
		c.logger.Warnf("All %d embedding keys failed, falling back to local embeddings for %d texts", total, len(texts))
	} else {
		c.logger.Debugf("No embedding keys configured, using local embeddings for %d texts", len(texts))
	}

	return localEmbeddings(texts), nil
}

// embedWithKey выполняет одну попытку с одним ключом. Любое нарушение контракта
// ответа (не-200, пустое тело, битый JSON, нет поля data, число векторов не
// совпадает со входом) считается сбоем ключа.
func (c *Client) embedWithKey(ctx context.Context, payload embeddingRequest, key string, attempt, total int) ([][]float32, bool) {
	status, body, err := c.post(ctx, embeddingsPath, payload, key, c.cfg.EmbedTimeout)
	if err != nil {
		c.logger.Warnf("Embedding key %d/%d transport error: %v", attempt, total, err)
		return nil, false
	}

	if status != http.StatusOK {
		c.logger.Warnf("Embedding key %d/%d failed: status=%d body=%q", attempt, total, status, bodyPreview(body))
		return nil, false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		c.logger.Warnf("Embedding key %d/%d returned empty body", attempt, total)
		return nil, false
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warnf("Embedding key %d/%d returned malformed JSON: %v, body=%q", attempt, total, err, bodyPreview(body))
		return nil, false
	}

	if len(parsed.Data) != len(payload.Input) {
		c.logger.Warnf("Embedding key %d/%d count mismatch: want %d, got %d", attempt, total, len(payload.Input), len(parsed.Data))
		return nil, false
	}

	vectors := make([][]float32, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		if len(item.Embedding) == 0 {
			c.logger.Warnf("Embedding key %d/%d returned empty vector", attempt, total)
			return nil, false
		}
		vectors = append(vectors, item.Embedding)
	}

	c.logger.Debugf("Embedding succeeded with key %d/%d: %d vectors", attempt, total, len(vectors))
	return vectors, true
}
