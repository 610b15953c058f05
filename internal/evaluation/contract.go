// Package evaluation implements the transcript analysis pipeline: the LM
// response contract, the defensive parser, the score aggregator, and the
// orchestrator that ties them to the external LM call.
package evaluation

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// SystemPrompt instructs the LM to act as an evaluator and reply with JSON
// only. This is a soft contract: the model may still return prose, truncated
// JSON, or wrong value shapes, and the parser treats all of those as expected
// input.
const SystemPrompt = "You are an expert interview evaluator outputting JSON."

const promptTemplate = `You are an expert interview evaluator. Analyze the following interview transcript.
The candidate was asked a series of questions by an AI Interviewer.
Based *only* on the candidate's responses ("You: ...") in the transcript:
1.  **Language Score (out of 10)**: Evaluate clarity, grammar, vocabulary, and fluency.
2.  **Personality Score (out of 10)**: Evaluate confidence, articulation, enthusiasm, and professionalism.
3.  **Accuracy Score (out of 10)**: Evaluate the substance, relevance, and correctness of the answers to the questions asked. If questions are behavioral, assess the quality of examples and STAR method usage if apparent. If technical, assess technical correctness.

Provide a brief justification (1-2 sentences) for each score.

Return the output *only* as a single valid JSON object with the following structure:
{
  "language_score": { "score": <number>, "justification": "<text>" },
  "personality_score": { "score": <number>, "justification": "<text>" },
  "accuracy_score": { "score": <number>, "justification": "<text>" },
  "overall_summary": "<A brief 2-3 sentence summary of the candidate's performance based on these aspects.>"
}
%s
Transcript:
---
%s
---
Ensure the output is a single valid JSON object and nothing else.`

// dimensionKeys maps analysis dimensions to their JSON keys in the contract.
var dimensionKeys = map[domain.Dimension]string{
	domain.DimensionLanguage:    "language_score",
	domain.DimensionPersonality: "personality_score",
	domain.DimensionAccuracy:    "accuracy_score",
}

// BuildUserPrompt renders the evaluation prompt for one analysis request.
func BuildUserPrompt(req domain.TranscriptAnalysisRequest) string {
	var ctxLine string
	if q := strings.TrimSpace(req.CurrentQuestion); q != "" {
		ctxLine = fmt.Sprintf("\nThe most recent question asked was: %q\n", q)
	}
	return fmt.Sprintf(promptTemplate, ctxLine, req.TranscriptText)
}
