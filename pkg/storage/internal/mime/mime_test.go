package mime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"debug_page_1.png", "image/png"},
		{"catalogs/page_12.txt", "text/plain; charset=utf-8"},
		{"run_summary.json", "application/json"},
		{"page_1", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContentType(tt.key), tt.key)
	}
}
