package openrouter

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/DRSN-tech/seller-agent/internal/cfg"
)

// nopLogger проглатывает логи в тестах.
type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

func testClient(baseURL string, keys []string) *Client {
	return NewClient(&cfg.OpenRouterCfg{
		BaseURL:        baseURL,
		APIKeys:        keys,
		EmbeddingModel: "test-embedding-model",
		ChatModel:      "test-chat-model",
		EmbedTimeout:   5 * time.Second,
		ChatTimeout:    5 * time.Second,
	}, nopLogger{})
}

// keyRecorder запоминает Authorization-заголовки входящих запросов по порядку.
type keyRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *keyRecorder) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, req.Header.Get("Authorization"))
}

func (r *keyRecorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

func bearer(keys ...string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, "Bearer "+k)
	}
	return out
}

func embeddingBody(count, dim int) string {
	body := `{"data":[`
	for i := 0; i < count; i++ {
		if i > 0 {
			body += ","
		}
		vec := ""
		for j := 0; j < dim; j++ {
			if j > 0 {
				vec += ","
			}
			vec += fmt.Sprintf("0.%d", i+j+1)
		}
		body += `{"embedding":[` + vec + `]}`
	}
	return body + `]}`
}

func newProviderServer(rec *keyRecorder, handle func(w http.ResponseWriter, req *http.Request)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec.record(req)
		handle(w, req)
	}))
}
