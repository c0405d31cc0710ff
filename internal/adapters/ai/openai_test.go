package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassifierOutput(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantLabel string
		wantScore float64
		wantErr   bool
	}{
		{
			name:      "plain json",
			content:   `{"label": "POSITIVE", "score": 0.85}`,
			wantLabel: "POSITIVE",
			wantScore: 0.85,
		},
		{
			name:      "fenced json",
			content:   "```json\n{\"label\": \"NEGATIVE\", \"score\": 0.6}\n```",
			wantLabel: "NEGATIVE",
			wantScore: 0.6,
		},
		{
			name:      "lowercase label normalized",
			content:   `{"label": "neutral", "score": 0.4}`,
			wantLabel: "NEUTRAL",
			wantScore: 0.4,
		},
		{
			name:    "prose instead of json",
			content: "The sentiment is positive.",
			wantErr: true,
		},
		{
			name:    "empty",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, score, err := parseClassifierOutput(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, label)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
		})
	}
}

func TestNewOpenAIClassifier_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClassifier("", 0)
	assert.Error(t, err)
}
