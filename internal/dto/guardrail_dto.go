package dto

import "tai-backend/pkg/guardrail"

// UpdateGuardrailRequest is a partial update: nil fields keep their stored
// values, so instructors can flip one switch without resending the rest.
type UpdateGuardrailRequest struct {
	AllowFinalAnswer *bool   `json:"allow_final_answer"`
	AllowCode        *bool   `json:"allow_code"`
	MaxHintLevel     *int    `json:"max_hint_level" validate:"omitempty,min=0,max=3"`
	CourseLevel      *string `json:"course_level" validate:"omitempty,oneof=elementary middle high university"`
	AssessmentMode   *string `json:"assessment_mode" validate:"omitempty,oneof=homework quiz exam practice unknown"`
}

type GuardrailResponse struct {
	Config guardrail.Policy `json:"config"`
}
