package openrouter

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedRotatesKeysInOrder(t *testing.T) {
	rec := &keyRecorder{}
	srv := newProviderServer(rec, func(w http.ResponseWriter, req *http.Request) {
		// Валиден только последний ключ пула
		if req.Header.Get("Authorization") != "Bearer key-3" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(embeddingBody(2, 3)))
	})
	defer srv.Close()

	client := testClient(srv.URL, []string{"key-1", "key-2", "key-3"})

	vectors, err := client.Embed(context.Background(), []string{"jeans", "jacket"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, bearer("key-1", "key-2", "key-3"), rec.seen())
}

func TestEmbedFirstValidKeyWins(t *testing.T) {
	rec := &keyRecorder{}
	srv := newProviderServer(rec, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(embeddingBody(1, 3)))
	})
	defer srv.Close()

	client := testClient(srv.URL, []string{"key-1", "key-2"})

	_, err := client.Embed(context.Background(), []string{"jeans"})

	require.NoError(t, err)
	assert.Equal(t, bearer("key-1"), rec.seen(), "валидный ответ первого ключа не должен трогать остальные")
}

func TestEmbedNoKeysUsesLocalWithoutNetwork(t *testing.T) {
	rec := &keyRecorder{}
	srv := newProviderServer(rec, func(w http.ResponseWriter, req *http.Request) {
		t.Error("provider must not be called with an empty key pool")
	})
	defer srv.Close()

	client := testClient(srv.URL, nil)

	vectors, err := client.Embed(context.Background(), []string{"jeans", "jacket"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Empty(t, rec.seen())
	assert.Equal(t, LocalEmbedding("jeans"), vectors[0])
	assert.Equal(t, LocalEmbedding("jacket"), vectors[1])
}

func TestEmbedExhaustedKeysFallBackToLocal(t *testing.T) {
	rec := &keyRecorder{}
	srv := newProviderServer(rec, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer srv.Close()

	client := testClient(srv.URL, []string{"key-1", "key-2"})

	vectors, err := client.Embed(context.Background(), []string{"jeans"})

	require.NoError(t, err)
	assert.Equal(t, bearer("key-1", "key-2"), rec.seen())
	assert.Equal(t, LocalEmbedding("jeans"), vectors[0])
}

func TestEmbedBadBodyAdvancesKey(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "malformed json", body: `{"data":[`},
		{name: "count mismatch", body: embeddingBody(1, 3)},
		{name: "empty vector", body: `{"data":[{"embedding":[0.1]},{"embedding":[]}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &keyRecorder{}
			srv := newProviderServer(rec, func(w http.ResponseWriter, req *http.Request) {
				if req.Header.Get("Authorization") == "Bearer key-2" {
					w.Write([]byte(embeddingBody(2, 3)))
					return
				}
				w.Write([]byte(tc.body))
			})
			defer srv.Close()

			client := testClient(srv.URL, []string{"key-1", "key-2"})

			vectors, err := client.Embed(context.Background(), []string{"jeans", "jacket"})

			require.NoError(t, err)
			require.Len(t, vectors, 2)
			assert.Equal(t, bearer("key-1", "key-2"), rec.seen())
			assert.NotEmpty(t, vectors[0])
		})
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	client := testClient("http://127.0.0.1:0", []string{"key-1"})

	vectors, err := client.Embed(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vectors)
}
