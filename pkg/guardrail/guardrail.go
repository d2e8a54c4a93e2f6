// Package guardrail implements the hint-escalation decision engine. The
// engine is a pure function of its inputs: nothing here persists state, and
// hint history is recomputed by the caller from the message log each turn.
package guardrail

// Action is the decided outcome of a chat turn.
type Action string

const (
	// ActionAnswer lets the assistant respond at the decided hint level.
	ActionAnswer Action = "answer"
	// ActionAnswerWithIntegrityRefusal answers conceptually while declining
	// the requested final answer or solving code.
	ActionAnswerWithIntegrityRefusal Action = "answer_with_integrity_refusal"
	// ActionRefuseOutOfScope refuses because no course material is relevant.
	ActionRefuseOutOfScope Action = "refuse_out_of_scope"
)

// Valid reports whether a is one of the three known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionAnswer, ActionAnswerWithIntegrityRefusal, ActionRefuseOutOfScope:
		return true
	}
	return false
}

// Course levels.
const (
	CourseLevelElementary = "elementary"
	CourseLevelMiddle     = "middle"
	CourseLevelHigh       = "high"
	CourseLevelUniversity = "university"
)

// Assessment modes.
const (
	AssessmentModeHomework = "homework"
	AssessmentModeQuiz     = "quiz"
	AssessmentModeExam     = "exam"
	AssessmentModePractice = "practice"
	AssessmentModeUnknown  = "unknown"
)

// MaxHintLevel is the ceiling of the hint ladder (worked analogous example).
const MaxHintLevel = 3

// Policy carries the instructor-set limits for a course.
type Policy struct {
	AllowFinalAnswer bool   `json:"allow_final_answer"`
	AllowCode        bool   `json:"allow_code"`
	MaxHintLevel     int    `json:"max_hint_level"`
	CourseLevel      string `json:"course_level"`
	AssessmentMode   string `json:"assessment_mode"`
}

// DefaultPolicy returns the guardrails assigned to a new course.
func DefaultPolicy() Policy {
	return Policy{
		AllowFinalAnswer: false,
		AllowCode:        false,
		MaxHintLevel:     2,
		CourseLevel:      CourseLevelUniversity,
		AssessmentMode:   AssessmentModeHomework,
	}
}

// HintState summarizes how much help this session has already received.
// Derived from message history, never stored.
type HintState struct {
	HintLevelUsed      int `json:"hint_level_used"`
	NumberOfHintsGiven int `json:"number_of_hints_given"`
}

// Input is everything the engine needs for one decision.
type Input struct {
	StudentMessage  string
	Policy          Policy
	HintState       HintState
	ExcerptHitCount int
}

// Decision is the engine's output for one turn.
type Decision struct {
	Action            Action `json:"action"`
	HintLevel         int    `json:"hint_level"`
	NotesForAssistant string `json:"notes_for_assistant"`
}

// ComputeHintState folds over the hint levels of a session's assistant
// messages. Nil entries (refusal-only or non-hint messages) are skipped, so
// the state can never drift from the log it is derived from.
func ComputeHintState(hintLevels []*int) HintState {
	state := HintState{}
	for _, lvl := range hintLevels {
		if lvl == nil {
			continue
		}
		if *lvl > state.HintLevelUsed {
			state.HintLevelUsed = *lvl
		}
		state.NumberOfHintsGiven++
	}
	return state
}
