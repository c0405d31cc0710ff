package ai

import (
	"context"
	"time"

	"google.golang.org/genai"

	"cassandra/internal/domain/news"
	"cassandra/pkg/errors"
	"cassandra/pkg/logger"
)

// Compile-time check
var _ news.Classifier = (*GeminiClassifier)(nil)

// GeminiClassifier labels headlines using the Google Gemini API
type GeminiClassifier struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

// NewGeminiClassifier creates a new Gemini-backed headline classifier
func NewGeminiClassifier(ctx context.Context, apiKey string, timeout time.Duration) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "gemini API key is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}

	return &GeminiClassifier{
		client:  client,
		model:   "gemini-2.0-flash",
		timeout: timeout,
		log:     logger.Get().With("component", "gemini_classifier"),
	}, nil
}

// Classify labels a headline via Gemini using the shared JSON contract
func (c *GeminiClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := classifierSystemPrompt + "\n\nHeadline: " + text

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", 0, errors.Wrap(err, "gemini API call failed")
	}

	return parseClassifierOutput(resp.Text())
}
