package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"10 SEO Tips for 2024!", "10-seo-tips-for-2024"},
		{"  Trim   me  ", "trim-me"},
		{"already-slugged", "already-slugged"},
		{"Café & Restaurant", "caf-restaurant"},
		{"---", ""},
		{"", ""},
	}

	for _, test := range tests {
		test := test
		t.Run(test.input, func(t *testing.T) {
			require.Equal(t, test.expected, Slugify(test.input))
		})
	}
}

func TestRandomToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		token := RandomToken(8)
		require.Len(t, token, 8)
		require.Regexp(t, "^[a-z0-9]+$", token)
		seen[token] = true
	}
	require.Greater(t, len(seen), 1)
}

func TestStringSliceContains(t *testing.T) {
	require.True(t, StringSliceContains([]string{"a", "b"}, "b"))
	require.False(t, StringSliceContains([]string{"a", "b"}, "c"))
	require.False(t, StringSliceContains(nil, "a"))
}
