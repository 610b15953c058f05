package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// Parse failure sentinels. Both mean the LM replied but the body is unusable
// as a whole; the orchestrator recovers them into a degraded result.
var (
	ErrEmptyResponse = errors.New("empty response")
	ErrMalformedJSON = errors.New("malformed json")
)

type subScoreJSON struct {
	Score         *float64 `json:"score"`
	Justification *string  `json:"justification"`
}

// ParseAnalysis turns a raw LM reply into an AnalysisResult.
//
// The body must be a single JSON object; anything else fails with
// ErrEmptyResponse or ErrMalformedJSON (no fuzzy extraction or repair). Within
// a valid object, each sub-score key is decoded independently: key absence,
// a non-numeric score, or a missing justification make that dimension absent
// rather than failing the parse. A missing overall_summary degrades to "".
// A valid object with zero usable sub-scores is still accepted.
func ParseAnalysis(raw string) (domain.AnalysisResult, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.AnalysisResult{}, ErrEmptyResponse
	}
	// Decoding into a raw-message map enforces a top-level object while
	// letting each key degrade independently.
	var env map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env == nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %s", ErrMalformedJSON, snippet(raw, 256))
	}
	res := domain.AnalysisResult{SubScores: make(map[domain.Dimension]domain.SubScore, len(dimensionKeys))}
	for dim, key := range dimensionKeys {
		if sub, ok := decodeSubScore(env[key]); ok {
			res.SubScores[dim] = sub
		}
	}
	if rawSummary, ok := env["overall_summary"]; ok {
		// Non-string summaries degrade to empty rather than failing.
		var s string
		if err := json.Unmarshal(rawSummary, &s); err == nil {
			res.OverallSummary = s
		}
	}
	return res, nil
}

func decodeSubScore(raw json.RawMessage) (domain.SubScore, bool) {
	if len(raw) == 0 {
		return domain.SubScore{}, false
	}
	var sub subScoreJSON
	if err := json.Unmarshal(raw, &sub); err != nil {
		return domain.SubScore{}, false
	}
	if sub.Score == nil || sub.Justification == nil {
		return domain.SubScore{}, false
	}
	return domain.SubScore{Score: *sub.Score, Justification: *sub.Justification}, true
}

// snippet truncates s for diagnostics without flooding logs or error chains.
func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}
