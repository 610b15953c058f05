package evaluation

import "github.com/fairyhunter13/ai-interview-evaluator/internal/domain"

// AverageScore returns the arithmetic mean of the sub-scores present in r,
// or nil when none are present. Absent dimensions are excluded from the mean,
// never imputed as zero: a candidate with no parseable sub-scores must not be
// indistinguishable from one who scored zero. The degraded-fallback path is
// the only place sentinel zeros exist, and there all three sub-scores are
// present, so its average is a real 0.
func AverageScore(r domain.AnalysisResult) *float64 {
	var sum float64
	var n int
	for _, d := range domain.Dimensions() {
		if s, ok := r.SubScore(d); ok {
			sum += s.Score
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}
