package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DRSN-tech/seller-agent/pkg/e"
)

func TestParsePriceToCents(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{name: "integer", input: "600", want: 60000},
		{name: "two decimals", input: "599.99", want: 59999},
		{name: "one decimal", input: "10.5", want: 1050},
		{name: "whitespace", input: "  42  ", want: 4200},
		{name: "empty", input: "", wantErr: e.ErrInvalidPrice},
		{name: "not a number", input: "abc", wantErr: e.ErrInvalidPrice},
		{name: "zero", input: "0", wantErr: e.ErrInvalidPrice},
		{name: "negative", input: "-5", wantErr: e.ErrInvalidPrice},
		{name: "too precise", input: "9.999", wantErr: e.ErrPricePrecision},
		{name: "over limit", input: "1000000001", wantErr: e.ErrInvalidPrice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parsePriceToCents(tc.input)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestToHTTPResponse(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{e.ErrMessageRequired, http.StatusBadRequest},
		{e.ErrInvalidSessionID, http.StatusBadRequest},
		{e.ErrQuantityMustBePositive, http.StatusBadRequest},
		{e.ErrProductNotFound, http.StatusNotFound},
		{e.ErrSessionNotFound, http.StatusNotFound},
		{e.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{e.Wrap("op", e.ErrProductNotFound), http.StatusNotFound},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		code, _ := ToHTTPResponse(tc.err)
		assert.Equal(t, tc.code, code, "err: %v", tc.err)
	}
}
