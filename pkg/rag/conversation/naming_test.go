package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	fifty := strings.Repeat("a", 50)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "short message kept verbatim", input: "What is Article 370?", want: "What is Article 370?"},
		{name: "exactly fifty", input: fifty, want: fifty},
		{name: "fifty one is truncated", input: fifty + "b", want: fifty + "..."},
		{name: "surrounding whitespace trimmed first", input: "  " + fifty + "  ", want: fifty},
		{name: "counts characters not bytes", input: strings.Repeat("§", 51), want: strings.Repeat("§", 50) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.input))
		})
	}
}
