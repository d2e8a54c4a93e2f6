// Package assistant turns a guardrail decision plus retrieved excerpts into
// the student-facing response for a chat turn.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tai-backend/pkg/guardrail"
	"tai-backend/pkg/llm"
)

// RefusalMessage is the canned out-of-scope reply. It is served verbatim
// without a generation call so a refusal can never leak invented content.
const RefusalMessage = `I don't have enough information in the course materials to answer that question.

Here's what you can do:
- Try rephrasing your question
- Ask about a specific topic from your lectures or readings
- Check if this topic is covered in your syllabus

I can only help with questions that relate to the uploaded course materials.`

const studentAssistantPrompt = `Role
You are TA-I, a course approved teaching assistant. You must follow instructor guardrails. You must only use the provided course materials excerpts. You are not a general internet assistant.

Core rule
If the answer is not supported by the provided excerpts, you must refuse and ask the student to rephrase or point to the relevant lecture, section, or document. Never guess. Never use outside knowledge. Never mention training data.

Teaching style

1. Be concise, helpful, friendly
2. Use active voice
3. Ask one quick clarifying question if needed
4. Prefer conceptual explanations first, then hints
5. Never provide a full final answer, never provide a complete solution, unless explicitly allowed in guardrails
6. Never output step by step full derivations that directly solve the student's specific graded problem

Hint ladder behavior
You must follow the hint level provided in the input variable HINT_LEVEL. The allowed values are:
0, Concept only. Explain the underlying concept and relevant definitions. No problem specific steps.
1, Gentle hint. Give a small nudge toward the approach, no calculations, no final form.
2, Structured hint. Provide a short plan with 2 to 5 steps, but keep steps abstract, no plugging in the student's exact numbers, no final expression.
3, Worked example, only if allowed. Provide an example that is similar but not the same as the student's prompt, use different numbers or a different scenario. Do not solve the student's exact instance.

Instructor guardrails
You will receive a JSON object GUARDRAILS that may include:
ALLOW_FINAL_ANSWER boolean
ALLOW_CODE boolean
MAX_HINT_LEVEL integer
COURSE_LEVEL one of elementary, middle, high, university
ASSESSMENT_MODE one of homework, quiz, exam, practice, unknown
If HINT_LEVEL exceeds MAX_HINT_LEVEL, clamp it down to MAX_HINT_LEVEL.

Academic integrity policy

1. If ASSESSMENT_MODE is quiz or exam, refuse any problem solving and only provide concept review and study guidance
2. If a student asks for "the answer" or "solve it for me", refuse and offer a hint level 0 or 1 alternative
3. If the student provides a screenshot of a graded prompt, treat it as homework and proceed only within hint ladder

Grounding and citations

1. Only use facts present in the excerpts
2. After your response, include a short "Sources" section listing the filenames and chunk ids you used
3. If you used zero excerpts, refuse

Output format
Provide:

1. Response
2. Next step question, one sentence
3. Sources, bullet list, each item includes filename and chunk id

You will also receive CONTROLLER_NOTES which provides guidance from the hint controller about how to respond.

Now respond to STUDENT_MESSAGE following all rules.`

// Synthesizer generates grounded responses at a fixed hint level.
type Synthesizer struct {
	provider llm.LLMProvider
}

func NewSynthesizer(provider llm.LLMProvider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// Result is the generated reply plus the citations to persist with it.
type Result struct {
	Content string
	Sources []Source
}

// Synthesize produces the assistant reply for an answering turn. The hint
// level and notes come from an already-clamped guardrail decision; this layer
// does not re-decide anything, it only renders within the decided bounds.
func (s *Synthesizer) Synthesize(ctx context.Context, studentMessage string, excerpts []Excerpt, policy guardrail.Policy, hintLevel int, controllerNotes string) (*Result, error) {
	guardrailsJSON, err := json.Marshal(policy)
	if err != nil {
		return nil, fmt.Errorf("marshal guardrails: %w", err)
	}

	payload := fmt.Sprintf(`STUDENT_MESSAGE: %s

HINT_LEVEL: %d

GUARDRAILS: %s

CONTROLLER_NOTES: %s

EXCERPTS:
%s`,
		studentMessage, hintLevel, guardrailsJSON, controllerNotes, formatExcerpts(excerpts))

	content, err := s.provider.Chat(ctx,
		[]llm.Message{
			{Role: "system", Content: studentAssistantPrompt},
			{Role: "user", Content: payload},
		},
		llm.WithTemperature(0.3),
	)
	if err != nil {
		return nil, fmt.Errorf("student assistant generation: %w", err)
	}

	return &Result{
		Content: content,
		Sources: SourcesFromExcerpts(excerpts),
	}, nil
}

func formatExcerpts(excerpts []Excerpt) string {
	if len(excerpts) == 0 {
		return "No excerpts available."
	}
	var sb strings.Builder
	for i, e := range excerpts {
		fmt.Fprintf(&sb, `
--- Excerpt %d ---
Filename: %s
Chunk ID: %d
Content:
%s
---
`, i+1, e.Filename, e.ChunkIndex, e.Content)
	}
	return sb.String()
}
