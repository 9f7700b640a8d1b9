package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DRSN-tech/seller-agent/pkg/e"
)

func TestParseRecommendationReply(t *testing.T) {
	cases := []struct {
		name         string
		reply        string
		wantResponse string
		wantIDs      []string
		wantErr      error
	}{
		{
			name:         "plain object",
			reply:        `{"response": "Try these!", "products": ["a", "b"]}`,
			wantResponse: "Try these!",
			wantIDs:      []string{"a", "b"},
		},
		{
			name:         "object wrapped in prose",
			reply:        "Sure! Here is my pick:\n```json\n{\"response\": \"These jeans fit your request.\", \"products\": [\"p1\"]}\n```\nHope it helps!",
			wantResponse: "These jeans fit your request.",
			wantIDs:      []string{"p1"},
		},
		{
			name:         "numeric ids tolerated",
			reply:        `{"response": "ok", "products": [42, "p2"]}`,
			wantResponse: "ok",
			wantIDs:      []string{"42", "p2"},
		},
		{
			name:         "braces inside strings ignored",
			reply:        `{"response": "sizes {S, M}", "products": ["p1"]}`,
			wantResponse: "sizes {S, M}",
			wantIDs:      []string{"p1"},
		},
		{
			name:         "nested object balanced",
			reply:        `prefix {"response": "ok", "products": [], "extra": {"k": "v"}} suffix`,
			wantResponse: "ok",
			wantIDs:      []string{},
		},
		{
			name:    "no object at all",
			reply:   "I would recommend the blue jacket.",
			wantErr: e.ErrNoJSONObject,
		},
		{
			name:    "unbalanced braces",
			reply:   `{"response": "ok", "products": [`,
			wantErr: e.ErrNoJSONObject,
		},
		{
			name:    "object without response",
			reply:   `{"products": ["p1"]}`,
			wantErr: e.ErrMalformedRecommendation,
		},
		{
			name:    "garbage object",
			reply:   `{response: nope}`,
			wantErr: e.ErrMalformedRecommendation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			response, ids, err := parseRecommendationReply(tc.reply)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantResponse, response)
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestParseRecommendationReplySkipsJunkProducts(t *testing.T) {
	response, ids, err := parseRecommendationReply(`{"response": "ok", "products": ["p1", null, true, "", {"id": "x"}, "p2"]}`)

	require.NoError(t, err)
	assert.Equal(t, "ok", response)
	assert.Equal(t, []string{"p1", "p2"}, ids)
}
