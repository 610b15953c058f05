package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// Analyzer orchestrates one transcript analysis: it owns the LM call and wires
// the parser and aggregator behind a uniform contract. Under recoverable
// conditions (missing credential, unusable LM content) it returns a degraded
// result and a nil error; only a failure of the call itself surfaces, wrapped
// in domain.ErrAnalysisService.
type Analyzer struct {
	Cfg config.Config
	AI  domain.AIClient
}

// NewAnalyzer constructs an Analyzer with an explicit configuration and client
// so tests can inject fakes; there is no package-level credential state.
func NewAnalyzer(cfg config.Config, ai domain.AIClient) *Analyzer {
	return &Analyzer{Cfg: cfg, AI: ai}
}

// Analyze runs the full pipeline for one request. Exactly one synchronous
// chat call is made, with no retries and no streaming, bounded by the
// configured analysis timeout.
func (a *Analyzer) Analyze(ctx domain.Context, req domain.TranscriptAnalysisRequest) (domain.AnalysisResult, error) {
	tracer := otel.Tracer("evaluation.analyzer")
	ctx, span := tracer.Start(ctx, "analyzer.Analyze")
	defer span.End()

	if !a.Cfg.AnalysisEnabled() {
		slog.Warn("transcript analysis skipped: LM credential not configured")
		observability.AnalysesDegradedTotal.WithLabelValues("not_configured").Inc()
		return degradedResult(
			"OpenAI API key not configured.",
			"Could not analyze transcript because the OpenAI API key is not configured.",
		), nil
	}

	opts := req.Options
	if opts.MaxTokens == 0 {
		opts.MaxTokens = a.Cfg.AnalysisMaxTokens
	}
	if opts.Temperature == nil {
		t := a.Cfg.AnalysisTemperature
		opts.Temperature = &t
	}
	system := SystemPrompt
	if opts.SystemPrompt != "" {
		system = opts.SystemPrompt
	}

	callCtx, cancel := context.WithTimeout(ctx, a.Cfg.AnalysisTimeout)
	defer cancel()
	raw, err := a.AI.ChatJSON(callCtx, system, BuildUserPrompt(req), opts)
	if err != nil {
		// Call failures (network, auth, quota, timeout) are never recovered
		// into a degraded score.
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: analysis call exceeded %s", domain.ErrUpstreamTimeout, a.Cfg.AnalysisTimeout)
		}
		return domain.AnalysisResult{}, fmt.Errorf("%w: %w", domain.ErrAnalysisService, err)
	}

	res, perr := ParseAnalysis(raw)
	if perr != nil {
		// Malformed or empty content degrades: the caller still gets a
		// well-formed result with the failure visible in the justifications.
		slog.Warn("transcript analysis unparseable, degrading",
			slog.Any("error", perr), slog.Int("raw_len", len(raw)))
		observability.AnalysesDegradedTotal.WithLabelValues("unparseable").Inc()
		return degradedResult(
			"Error in analysis.",
			"Could not analyze transcript due to an error.",
		), nil
	}
	recordScores(res)
	return res, nil
}

// degradedResult builds the sentinel fallback: all three dimensions present
// with score 0 and an explanatory justification, so the interview is still
// recorded and a human reviewer can see why scoring did not happen.
func degradedResult(justification, summary string) domain.AnalysisResult {
	sub := make(map[domain.Dimension]domain.SubScore, 3)
	for _, d := range domain.Dimensions() {
		sub[d] = domain.SubScore{Score: 0, Justification: justification}
	}
	return domain.AnalysisResult{SubScores: sub, OverallSummary: summary}
}

func recordScores(res domain.AnalysisResult) {
	for _, d := range domain.Dimensions() {
		if s, ok := res.SubScore(d); ok {
			observability.AnalysisScoreHistogram.WithLabelValues(string(d)).Observe(s.Score)
		}
	}
}
