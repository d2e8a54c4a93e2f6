package guardrail

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tai-backend/pkg/llm"
)

const hintControllerPrompt = `Role
You are the TA-I Hint Controller. You do not teach. You decide whether to answer or refuse, and which hint level to use. You follow instructor guardrails and academic integrity.

Inputs
You will be given:
STUDENT_MESSAGE
GUARDRAILS
HINT_STATE, an object containing prior hint_level_used and number_of_hints_given
EXCERPT_HIT_COUNT integer, how many retrieved chunks look relevant

Decision rules

1. If EXCERPT_HIT_COUNT is 0, set ACTION to refuse_out_of_scope
2. If ASSESSMENT_MODE is quiz or exam, set HINT_LEVEL to 0 and ACTION to answer
3. If student asks for final answer, full solution, or code to directly solve, set HINT_LEVEL to 0 or 1 and ACTION to answer_with_integrity_refusal
4. Otherwise, escalate hint slowly:
   a. First request, HINT_LEVEL 0
   b. Second request, HINT_LEVEL 1
   c. Third request, HINT_LEVEL 2
   d. Fourth request, HINT_LEVEL 3 only if allowed and only for a similar example
5. Never exceed MAX_HINT_LEVEL

Output JSON only
Return exactly:
{
"action": "answer" | "answer_with_integrity_refusal" | "refuse_out_of_scope",
"hint_level": 0 | 1 | 2 | 3,
"notes_for_assistant": "one short sentence the assistant should follow"
}`

// Engine decides the action and hint level for a chat turn. Rules 1 and 2
// and the final clamp are local and authoritative; the natural-language
// classification in between is delegated to the text-generation oracle,
// whose output is advisory input only and can never exceed policy limits.
type Engine struct {
	provider llm.LLMProvider
}

func NewEngine(provider llm.LLMProvider) *Engine {
	return &Engine{provider: provider}
}

// Decide evaluates the decision policy in strict priority order.
func (e *Engine) Decide(ctx context.Context, in Input) (*Decision, error) {
	maxLevel := clampInt(in.Policy.MaxHintLevel, 0, MaxHintLevel)

	// Rule 1: nothing relevant was retrieved. Never let the generation step
	// improvise an answer from nothing.
	if in.ExcerptHitCount == 0 {
		return &Decision{
			Action:            ActionRefuseOutOfScope,
			HintLevel:         0,
			NotesForAssistant: "No course material matched the question.",
		}, nil
	}

	// Rule 2: assessments get concept review only.
	if in.Policy.AssessmentMode == AssessmentModeQuiz || in.Policy.AssessmentMode == AssessmentModeExam {
		return &Decision{
			Action:            ActionAnswer,
			HintLevel:         0,
			NotesForAssistant: "Assessment mode: concept review and study guidance only, no problem-solving steps.",
		}, nil
	}

	// Rules 3-4 need the oracle's judgement of what the student is asking.
	proposed, err := e.askOracle(ctx, in)
	if err != nil {
		return nil, err
	}

	// The clamp is always ours, regardless of what the oracle proposed.
	proposed.HintLevel = clampInt(proposed.HintLevel, 0, maxLevel)

	if !proposed.Action.Valid() {
		return nil, &MalformedDecisionError{Action: string(proposed.Action)}
	}

	return proposed, nil
}

func (e *Engine) askOracle(ctx context.Context, in Input) (*Decision, error) {
	guardrailsJSON, err := json.Marshal(in.Policy)
	if err != nil {
		return nil, &DecisionOracleError{Err: fmt.Errorf("marshal guardrails: %w", err)}
	}
	hintStateJSON, err := json.Marshal(in.HintState)
	if err != nil {
		return nil, &DecisionOracleError{Err: fmt.Errorf("marshal hint state: %w", err)}
	}

	payload := fmt.Sprintf(`STUDENT_MESSAGE: %s

GUARDRAILS: %s

HINT_STATE: %s

EXCERPT_HIT_COUNT: %d`,
		in.StudentMessage, guardrailsJSON, hintStateJSON, in.ExcerptHitCount)

	raw, err := e.provider.Chat(ctx,
		[]llm.Message{
			{Role: "system", Content: hintControllerPrompt},
			{Role: "user", Content: payload},
		},
		llm.WithTemperature(0.1),
		llm.WithJSONMode(),
	)
	if err != nil {
		return nil, &DecisionOracleError{Err: err}
	}

	return parseDecision(raw)
}

// parseDecision accepts exactly the three-field decision object. Any other
// shape is a parse failure, not something to guess a default for.
func parseDecision(raw string) (*Decision, error) {
	var decision Decision
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&decision); err != nil {
		return nil, &DecisionOracleError{Err: fmt.Errorf("unparseable decision %q: %w", raw, err)}
	}
	if decision.Action == "" {
		return nil, &DecisionOracleError{Err: fmt.Errorf("decision missing action field: %q", raw)}
	}
	return &decision, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
