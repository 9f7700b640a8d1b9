package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKeyPool(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		list    string
		want    []string
	}{
		{
			name:    "primary first then list",
			primary: "sk-main",
			list:    "sk-a,sk-b",
			want:    []string{"sk-main", "sk-a", "sk-b"},
		},
		{
			name:    "duplicates removed keeping first occurrence",
			primary: "sk-a",
			list:    "sk-b,sk-a,sk-b,sk-c",
			want:    []string{"sk-a", "sk-b", "sk-c"},
		},
		{
			name:    "whitespace and empty items dropped",
			primary: "",
			list:    " sk-a , ,sk-b,",
			want:    []string{"sk-a", "sk-b"},
		},
		{
			name:    "empty pool",
			primary: "",
			list:    "",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildKeyPool(tt.primary, tt.list))
		})
	}
}
