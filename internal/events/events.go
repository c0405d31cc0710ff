package events

import "time"

// Kafka topics
const (
	TopicAnalysis = "cassandra.analysis"
)

// AnalysisCompletedEvent is emitted after every finished analysis request,
// degraded or not; consumers can filter on Source
type AnalysisCompletedEvent struct {
	RequestID  string    `json:"request_id"`
	Symbol     string    `json:"symbol"`
	Overall    float64   `json:"overall_sentiment"`
	Source     string    `json:"source"` // live|partial|synthetic
	PeerCount  int       `json:"peer_count"`
	WindowFrom time.Time `json:"window_from"`
	WindowTo   time.Time `json:"window_to"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}
