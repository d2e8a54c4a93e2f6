package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBatchEmptyInput(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, "text-embedding-3-small", 1)
	vectors, err := p.GenerateBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.False(t, called, "oracle must not be invoked for empty input")
}

func TestGenerateBatchReordersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openaiEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Input, 3)

		// Deliberately return items out of order.
		resp := openaiEmbeddingResponse{
			Data: []openaiEmbeddingItem{
				{Index: 2, Embedding: []float32{0.3}},
				{Index: 0, Embedding: []float32{0.1}},
				{Index: 1, Embedding: []float32{0.2}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, "text-embedding-3-small", 1)
	vectors, err := p.GenerateBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, []float32{0.1}, vectors[0])
	assert.Equal(t, []float32{0.2}, vectors[1])
	assert.Equal(t, []float32{0.3}, vectors[2])
}

func TestGenerateBatchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, "text-embedding-3-small", 1)
	_, err := p.GenerateBatch(context.Background(), []string{"a"})
	require.Error(t, err)

	var oracleErr *OracleError
	assert.True(t, errors.As(err, &oracleErr))
	assert.Equal(t, "openai", oracleErr.Provider)
}

func TestGenerateBatchLengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openaiEmbeddingResponse{
			Data: []openaiEmbeddingItem{{Index: 0, Embedding: []float32{0.1}}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, "text-embedding-3-small", 1)
	_, err := p.GenerateBatch(context.Background(), []string{"a", "b"})

	var oracleErr *OracleError
	assert.True(t, errors.As(err, &oracleErr))
}

func TestGenerateBatchDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openaiEmbeddingResponse{
			Data: []openaiEmbeddingItem{{Index: 0, Embedding: []float32{0.1, 0.2}}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, "text-embedding-3-small", 1536)
	_, err := p.GenerateBatch(context.Background(), []string{"a"})

	var oracleErr *OracleError
	require.True(t, errors.As(err, &oracleErr))
	assert.Contains(t, oracleErr.Error(), "dimension")
}

func TestNormalizeVector(t *testing.T) {
	normalized := normalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, normalized[0], 1e-6)
	assert.InDelta(t, 0.8, normalized[1], 1e-6)

	zero := normalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}
