package pkg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"postforge/pkg/models"
)

func TestMergeGenerationSettings(t *testing.T) {
	defaults := &models.GenerationSettings{
		Model:       "gpt-4o-mini",
		MaxTokens:   2000,
		Temperature: 0.7,
	}

	tests := []struct {
		name     string
		override *models.GenerationSettings
		expected models.GenerationSettings
	}{
		{
			name:     "nil override keeps defaults",
			override: nil,
			expected: models.GenerationSettings{Model: "gpt-4o-mini", MaxTokens: 2000, Temperature: 0.7},
		},
		{
			name:     "zero-valued fields keep defaults",
			override: &models.GenerationSettings{Model: "gpt-4o"},
			expected: models.GenerationSettings{Model: "gpt-4o", MaxTokens: 2000, Temperature: 0.7},
		},
		{
			name: "full override wins",
			override: &models.GenerationSettings{
				Model:        "mistral-large",
				MaxTokens:    4000,
				Temperature:  0.2,
				SystemPrompt: "You write for a shop.",
			},
			expected: models.GenerationSettings{
				Model:        "mistral-large",
				MaxTokens:    4000,
				Temperature:  0.2,
				SystemPrompt: "You write for a shop.",
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			merged, err := MergeGenerationSettings(defaults, test.override)
			require.NoError(t, err)
			require.Equal(t, test.expected, *merged)

			// The defaults themselves must never be mutated
			require.Equal(t, "gpt-4o-mini", defaults.Model)
			require.Equal(t, 2000, defaults.MaxTokens)
		})
	}
}
