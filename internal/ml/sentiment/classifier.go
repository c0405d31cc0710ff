package sentiment

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"cassandra/internal/domain/news"
	"cassandra/internal/ml"
	"cassandra/pkg/errors"
	"cassandra/pkg/logger"
)

// Compile-time check
var _ news.Classifier = (*Classifier)(nil)

// featureDim is the hashed bag-of-words dimension the bundled model
// was trained with
const featureDim = 256

var classNames = []string{"NEGATIVE", "NEUTRAL", "POSITIVE"}

// Classifier is the local sentiment model. It hashes headline tokens
// into a fixed-size feature vector and runs the ONNX session, so it
// works offline and costs nothing per call.
type Classifier struct {
	model *ml.ONNXModel
	mu    sync.Mutex
	log   *logger.Logger
}

// NewClassifier loads the local ONNX sentiment model from modelPath
func NewClassifier(modelPath string) (*Classifier, error) {
	model, err := ml.LoadONNXModel(modelPath, classNames)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load sentiment model")
	}

	return &Classifier{
		model: model,
		log:   logger.Get().With("component", "onnx_classifier"),
	}, nil
}

// Classify labels a headline with the local model.
// The returned score is the probability of the predicted class.
func (c *Classifier) Classify(ctx context.Context, text string) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	features := extractFeatures(text)

	// onnxruntime sessions are not safe for concurrent Run calls
	c.mu.Lock()
	label, probs, err := c.model.Predict(features)
	c.mu.Unlock()
	if err != nil {
		return "", 0, errors.Wrap(err, "sentiment inference failed")
	}

	return label, probs[label], nil
}

// Close releases the ONNX session
func (c *Classifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model.Destroy()
}

// extractFeatures builds a hashed bag-of-words vector, normalized by
// token count so headline length does not dominate
func extractFeatures(text string) []float64 {
	features := make([]float64, featureDim)

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return features
	}

	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		features[h.Sum32()%featureDim]++
	}

	n := float64(len(tokens))
	for i := range features {
		features[i] /= n
	}
	return features
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
		})
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
