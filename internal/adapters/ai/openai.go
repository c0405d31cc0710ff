package ai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"cassandra/internal/domain/news"
	"cassandra/pkg/errors"
	"cassandra/pkg/logger"
)

// Compile-time check
var _ news.Classifier = (*OpenAIClassifier)(nil)

const classifierSystemPrompt = `You are a financial news sentiment classifier.
Classify the sentiment of the given headline toward the company it mentions.
Respond with a single JSON object and nothing else:
{"label": "POSITIVE" | "NEGATIVE" | "NEUTRAL", "score": <confidence between 0 and 1>}`

// OpenAIClassifier labels headlines using the official OpenAI Go SDK
type OpenAIClassifier struct {
	client  openai.Client
	model   openai.ChatModel
	timeout time.Duration
	log     *logger.Logger
}

// NewOpenAIClassifier creates a new OpenAI-backed headline classifier
func NewOpenAIClassifier(apiKey string, timeout time.Duration) (*OpenAIClassifier, error) {
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "openai API key is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &OpenAIClassifier{
		client:  client,
		model:   openai.ChatModelGPT4oMini,
		timeout: timeout,
		log:     logger.Get().With("component", "openai_classifier"),
	}, nil
}

type classifierOutput struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify labels a headline; the JSON contract in the system prompt is
// the whole protocol, a malformed reply is a classification failure
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifierSystemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", 0, errors.Wrap(err, "openai API call failed")
	}
	if len(resp.Choices) == 0 {
		return "", 0, errors.Wrapf(errors.ErrInternal, "no choices returned")
	}

	return parseClassifierOutput(resp.Choices[0].Message.Content)
}

// parseClassifierOutput decodes the JSON contract shared by the hosted
// classifiers, tolerating markdown code fences around the object
func parseClassifierOutput(content string) (string, float64, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var out classifierOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return "", 0, errors.Wrapf(err, "malformed classifier response: %q", content)
	}
	return strings.ToUpper(out.Label), out.Score, nil
}
