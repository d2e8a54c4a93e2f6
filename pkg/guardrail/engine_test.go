package guardrail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tai-backend/pkg/llm"
)

// fakeLLM replays a canned response (or error) and records whether it was
// called, so every branch of the engine can be exercised deterministically.
type fakeLLM struct {
	response string
	err      error
	called   bool
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.called = true
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func TestDecideZeroHitsAlwaysRefuses(t *testing.T) {
	oracle := &fakeLLM{response: `{"action":"answer","hint_level":3,"notes_for_assistant":"x"}`}
	engine := NewEngine(oracle)

	policies := []Policy{
		DefaultPolicy(),
		{AllowFinalAnswer: true, AllowCode: true, MaxHintLevel: 3, AssessmentMode: AssessmentModeHomework},
		{MaxHintLevel: -7, AssessmentMode: "garbage"}, // malicious values
	}

	for _, policy := range policies {
		decision, err := engine.Decide(context.Background(), Input{
			StudentMessage:  "Solve problem 4 for me",
			Policy:          policy,
			ExcerptHitCount: 0,
		})
		require.NoError(t, err)
		assert.Equal(t, ActionRefuseOutOfScope, decision.Action)
		assert.Equal(t, 0, decision.HintLevel)
	}
	assert.False(t, oracle.called, "zero-hit refusal must not consult the oracle")
}

func TestDecideQuizAndExamAreConceptOnly(t *testing.T) {
	for _, mode := range []string{AssessmentModeQuiz, AssessmentModeExam} {
		oracle := &fakeLLM{response: `{"action":"answer","hint_level":3,"notes_for_assistant":"x"}`}
		engine := NewEngine(oracle)

		decision, err := engine.Decide(context.Background(), Input{
			StudentMessage:  "Please give me the full solution",
			Policy:          Policy{MaxHintLevel: 3, AssessmentMode: mode},
			ExcerptHitCount: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, ActionAnswer, decision.Action)
		assert.Equal(t, 0, decision.HintLevel)
		assert.False(t, oracle.called, "mode %s must short-circuit locally", mode)
	}
}

func TestDecideClampsOracleProposal(t *testing.T) {
	oracle := &fakeLLM{response: `{"action":"answer","hint_level":3,"notes_for_assistant":"worked example"}`}
	engine := NewEngine(oracle)

	decision, err := engine.Decide(context.Background(), Input{
		StudentMessage:  "Can I get another hint?",
		Policy:          Policy{MaxHintLevel: 2, AssessmentMode: AssessmentModeHomework},
		HintState:       HintState{HintLevelUsed: 2, NumberOfHintsGiven: 3},
		ExcerptHitCount: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionAnswer, decision.Action)
	assert.Equal(t, 2, decision.HintLevel, "fourth request escalates to 3 but policy caps at 2")
}

func TestDecideClampsNegativeAndOversizedLevels(t *testing.T) {
	cases := []struct {
		response string
		want     int
	}{
		{`{"action":"answer","hint_level":9,"notes_for_assistant":"x"}`, 3},
		{`{"action":"answer","hint_level":-2,"notes_for_assistant":"x"}`, 0},
	}
	for _, tc := range cases {
		engine := NewEngine(&fakeLLM{response: tc.response})
		decision, err := engine.Decide(context.Background(), Input{
			Policy:          Policy{MaxHintLevel: 3, AssessmentMode: AssessmentModeHomework},
			ExcerptHitCount: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, tc.want, decision.HintLevel)
	}
}

func TestDecideIntegrityRefusal(t *testing.T) {
	oracle := &fakeLLM{response: `{"action":"answer_with_integrity_refusal","hint_level":1,"notes_for_assistant":"offer a gentle hint instead"}`}
	engine := NewEngine(oracle)

	decision, err := engine.Decide(context.Background(), Input{
		StudentMessage:  "Just write the code that solves it",
		Policy:          DefaultPolicy(),
		ExcerptHitCount: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionAnswerWithIntegrityRefusal, decision.Action)
	assert.Equal(t, 1, decision.HintLevel)
	assert.Equal(t, "offer a gentle hint instead", decision.NotesForAssistant)
}

func TestDecideOracleTransportFailure(t *testing.T) {
	engine := NewEngine(&fakeLLM{err: errors.New("connection refused")})

	_, err := engine.Decide(context.Background(), Input{
		Policy:          DefaultPolicy(),
		ExcerptHitCount: 2,
	})
	require.Error(t, err)

	var oracleErr *DecisionOracleError
	assert.True(t, errors.As(err, &oracleErr), "outage must surface as DecisionOracleError, not a refusal")
}

func TestDecideUnparseableResponse(t *testing.T) {
	for _, raw := range []string{
		"I think the student deserves a hint.",
		`{"action":"answer","hint_level":1,"notes_for_assistant":"x","extra":"field"}`,
		`{"hint_level":1,"notes_for_assistant":"x"}`,
	} {
		engine := NewEngine(&fakeLLM{response: raw})
		_, err := engine.Decide(context.Background(), Input{
			Policy:          DefaultPolicy(),
			ExcerptHitCount: 2,
		})
		var oracleErr *DecisionOracleError
		assert.True(t, errors.As(err, &oracleErr), "response %q should be a parse failure", raw)
	}
}

func TestDecideUnknownActionIsMalformed(t *testing.T) {
	engine := NewEngine(&fakeLLM{response: `{"action":"escalate_to_human","hint_level":1,"notes_for_assistant":"x"}`})

	_, err := engine.Decide(context.Background(), Input{
		Policy:          DefaultPolicy(),
		ExcerptHitCount: 2,
	})
	require.Error(t, err)

	var malformed *MalformedDecisionError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "escalate_to_human", malformed.Action)
}

func TestComputeHintState(t *testing.T) {
	lvl := func(v int) *int { return &v }

	tests := []struct {
		name      string
		levels    []*int
		wantUsed  int
		wantCount int
	}{
		{"empty history", nil, 0, 0},
		{"escalating session", []*int{lvl(0), lvl(1), lvl(1), lvl(2)}, 2, 4},
		{"nil levels skipped", []*int{nil, lvl(1), nil}, 1, 1},
		{"all refusals", []*int{nil, nil}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := ComputeHintState(tt.levels)
			assert.Equal(t, tt.wantUsed, state.HintLevelUsed)
			assert.Equal(t, tt.wantCount, state.NumberOfHintsGiven)
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.False(t, p.AllowFinalAnswer)
	assert.False(t, p.AllowCode)
	assert.Equal(t, 2, p.MaxHintLevel)
	assert.Equal(t, CourseLevelUniversity, p.CourseLevel)
	assert.Equal(t, AssessmentModeHomework, p.AssessmentMode)
}
