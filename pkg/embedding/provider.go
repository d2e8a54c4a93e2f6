package embedding

import (
	"context"
	"fmt"
)

// EmbeddingProvider turns text into fixed-length vectors via an external
// oracle. GenerateBatch is length- and order-preserving: output[i] is the
// vector for texts[i]. Empty input yields empty output without any call.
type EmbeddingProvider interface {
	GenerateBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// OracleError wraps transport, quota, or parse failures from an embedding
// oracle. Callers surface it; nothing in this package retries.
type OracleError struct {
	Provider string
	Err      error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("embedding oracle (%s): %v", e.Provider, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}
