package peers

import "context"

// Profile is the slice of a company profile the ranker needs
type Profile struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
}

// Candidate is one ranked peer. Derived and ephemeral: recomputed per
// ranking request, never persisted.
type Candidate struct {
	Symbol             string  `json:"symbol"`
	DisplayName        string  `json:"display_name"`
	Industry           string  `json:"industry"`
	AggregateSentiment float64 `json:"aggregate_sentiment"`
	// Insufficient marks a candidate whose data could not be fetched or
	// scored; its aggregate is a fixed 0, not a measurement
	Insufficient bool `json:"insufficient"`
}

// Ranking is the ordered result of a peer comparison: candidates above
// the baseline, sorted descending by aggregate sentiment with
// symbol-ascending tie-break
type Ranking []Candidate

// ProfileProvider resolves a company profile for a symbol
type ProfileProvider interface {
	GetProfile(ctx context.Context, symbol string) (*Profile, error)
}

// PeerProvider resolves the candidate peer set for a symbol
type PeerProvider interface {
	GetPeers(ctx context.Context, symbol string) ([]string, error)
}
