package peers

import "context"

// StaticPeerTable is a small industry-keyed fallback peer table, used
// when the live peer provider is unavailable. Injected as a collaborator
// so it can be swapped or tested independently of network behavior.
type StaticPeerTable struct {
	byIndustry map[string][]string
}

// NewStaticPeerTable creates a table from an industry -> symbols map
func NewStaticPeerTable(byIndustry map[string][]string) *StaticPeerTable {
	if byIndustry == nil {
		byIndustry = map[string][]string{}
	}
	return &StaticPeerTable{byIndustry: byIndustry}
}

// DefaultStaticPeerTable covers the handful of industries the product
// ships with; everything else resolves to no peers
func DefaultStaticPeerTable() *StaticPeerTable {
	return NewStaticPeerTable(map[string][]string{
		"Technology":         {"AAPL", "MSFT", "GOOGL", "META", "NVDA", "AMD"},
		"Semiconductors":     {"NVDA", "AMD", "INTC", "TSM", "QCOM", "AVGO"},
		"Retail":             {"AMZN", "WMT", "TGT", "COST", "HD"},
		"Automobiles":        {"TSLA", "F", "GM", "TM", "RIVN"},
		"Banking":            {"JPM", "BAC", "WFC", "C", "GS", "MS"},
		"Pharmaceuticals":    {"PFE", "JNJ", "MRK", "LLY", "ABBV"},
		"Media":              {"DIS", "NFLX", "CMCSA", "WBD"},
		"Financial Services": {"V", "MA", "PYPL", "AXP"},
	})
}

// PeersForIndustry returns the configured peers for an industry,
// excluding the subject symbol itself
func (t *StaticPeerTable) PeersForIndustry(ctx context.Context, industry, exclude string) []string {
	symbols := t.byIndustry[industry]
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s != exclude {
			out = append(out, s)
		}
	}
	return out
}
