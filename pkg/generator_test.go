package pkg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare json", `{"title": "x"}`, `{"title": "x"}`},
		{"fenced", "```\n{\"title\": \"x\"}\n```", `{"title": "x"}`},
		{"fenced with language", "```json\n{\"title\": \"x\"}\n```", `{"title": "x"}`},
		{"surrounding whitespace", "  \n```json\n{}\n```\n ", "{}"},
		{"unterminated fence", "```json\n{}", "{}"},
		{"empty", "", ""},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, StripCodeFences(test.input))
		})
	}
}
