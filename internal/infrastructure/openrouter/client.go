package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/DRSN-tech/seller-agent/internal/cfg"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
)

const maxResponseBody = 10 << 20

// Client — клиент OpenRouter-совместимого провайдера с ротацией API-ключей.
// Ключи перебираются строго в порядке конфигурации, по одной попытке на ключ;
// первая валидная HTTP-200 побеждает. Попытки никогда не выполняются параллельно.
type Client struct {
	cfg    *cfg.OpenRouterCfg
	http   *http.Client
	logger logger.Logger
}

func NewClient(cfg *cfg.OpenRouterCfg, logger logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		// Таймаут задаётся на каждый вызов через контекст: у embeddings и chat он разный
		http:   &http.Client{},
		logger: logger,
	}
}

// post выполняет один запрос с одним ключом и возвращает статус и тело ответа.
// Сетевая ошибка возвращается как err, недовольство статусом/телом решает вызывающий.
func (c *Client) post(ctx context.Context, path string, payload any, apiKey string, timeout time.Duration) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.cfg.Referer)
	req.Header.Set("X-Title", c.cfg.Title)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, data, nil
}

// bodyPreview обрезает тело ответа для логов, чтобы различать подтипы сбоев
// (429, 401/403, 5xx, мусор вместо JSON) без вывода мегабайтов.
func bodyPreview(body []byte) string {
	const limit = 200
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}
