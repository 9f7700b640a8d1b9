package openrouter

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DRSN-tech/seller-agent/pkg/e"
)

func TestCompleteRotatesKeysInOrder(t *testing.T) {
	rec := &keyRecorder{}
	srv := newProviderServer(rec, func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer key-2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hello  "}}],"usage":{"total_tokens":42}}`))
	})
	defer srv.Close()

	client := testClient(srv.URL, []string{"key-1", "key-2"})

	reply, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Equal(t, bearer("key-1", "key-2"), rec.seen())
}

func TestCompleteNoKeys(t *testing.T) {
	rec := &keyRecorder{}
	srv := newProviderServer(rec, func(w http.ResponseWriter, req *http.Request) {
		t.Error("provider must not be called with an empty key pool")
	})
	defer srv.Close()

	client := testClient(srv.URL, nil)

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

	assert.ErrorIs(t, err, e.ErrNoAPIKeys)
	assert.Empty(t, rec.seen())
}

func TestCompleteAllKeysFailed(t *testing.T) {
	rec := &keyRecorder{}
	srv := newProviderServer(rec, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	client := testClient(srv.URL, []string{"key-1", "key-2", "key-3"})

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

	assert.ErrorIs(t, err, e.ErrAllKeysFailed)
	assert.Equal(t, bearer("key-1", "key-2", "key-3"), rec.seen())
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "no choices", body: `{"choices":[]}`},
		{name: "blank content", body: `{"choices":[{"message":{"role":"assistant","content":"   "}}]}`},
		{name: "malformed json", body: `{"choices"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &keyRecorder{}
			srv := newProviderServer(rec, func(w http.ResponseWriter, req *http.Request) {
				w.Write([]byte(tc.body))
			})
			defer srv.Close()

			client := testClient(srv.URL, []string{"key-1"})

			_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

			assert.ErrorIs(t, err, e.ErrAllKeysFailed)
		})
	}
}
