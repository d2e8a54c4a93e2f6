package guardrail

import "fmt"

// DecisionOracleError wraps transport or parse failures from the decision
// call. It must reach the caller as an error: converting an outage into a
// policy refusal would mask it.
type DecisionOracleError struct {
	Err error
}

func (e *DecisionOracleError) Error() string {
	return fmt.Sprintf("decision oracle: %v", e.Err)
}

func (e *DecisionOracleError) Unwrap() error {
	return e.Err
}

// MalformedDecisionError means the oracle answered with a value outside the
// declared enum. The action is never default-guessed.
type MalformedDecisionError struct {
	Action string
}

func (e *MalformedDecisionError) Error() string {
	return fmt.Sprintf("malformed decision: unknown action %q", e.Action)
}
