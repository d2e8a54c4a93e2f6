package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyInput(t *testing.T) {
	c, err := New(400, 50)
	require.NoError(t, err)

	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		_, err := c.Split(input)
		assert.True(t, errors.Is(err, ErrEmptyInput), "input %q should fail", input)
	}
}

func TestSplitSingleShortParagraph(t *testing.T) {
	c, err := New(400, 50)
	require.NoError(t, err)

	chunks, err := c.Split("Photosynthesis converts light energy into chemical energy.")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Photosynthesis converts light energy into chemical energy.", chunks[0])
}

func TestSplitIsDeterministic(t *testing.T) {
	c, err := New(40, 10)
	require.NoError(t, err)

	text := buildText(30)

	first, err := c.Split(text)
	require.NoError(t, err)
	second, err := c.Split(text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Greater(t, len(first), 1)
}

func TestSplitNoEmptyChunks(t *testing.T) {
	c, err := New(30, 10)
	require.NoError(t, err)

	text := "First paragraph here.\n\n\n\nSecond one.\n\n   \n\nThird paragraph with a bit more text in it."
	chunks, err := c.Split(text)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for i, ch := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(ch), "chunk %d is blank", i)
	}
}

func TestSplitParagraphAccumulation(t *testing.T) {
	c, err := New(400, 50)
	require.NoError(t, err)

	// Both paragraphs fit the budget together, so they stay in one chunk.
	chunks, err := c.Split("Short paragraph one.\n\nShort paragraph two.")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Short paragraph one.\n\nShort paragraph two.", chunks[0])
}

func TestSplitParagraphOverflowFlushes(t *testing.T) {
	paraA := "Cells divide through a process called mitosis during growth."
	paraB := "Meiosis produces gametes with half the usual chromosome count."

	c, err := New(400, 0)
	require.NoError(t, err)

	// Target just under the combined size forces one paragraph per chunk.
	target := c.CountTokens(paraA) + c.CountTokens(paraB) - 1
	c2, err := New(target, 0)
	require.NoError(t, err)

	chunks, err := c2.Split(paraA + "\n\n" + paraB)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, paraA, chunks[0])
	assert.Equal(t, paraB, chunks[1])
}

func TestSplitAllParagraphsSurvive(t *testing.T) {
	c, err := New(35, 0)
	require.NoError(t, err)

	var paragraphs []string
	for i := 0; i < 12; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf("Topic %d covers an idea from the lecture notes in detail.", i))
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks, err := c.Split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	joined := strings.Join(chunks, "\n\n")
	for _, p := range paragraphs {
		assert.Contains(t, joined, p)
	}
}

func TestSplitOversizedParagraphUsesSentences(t *testing.T) {
	counter, err := New(400, 50)
	require.NoError(t, err)

	var sentences []string
	for i := 0; i < 16; i++ {
		sentences = append(sentences, fmt.Sprintf("The experiment measured variable number %d under controlled lab conditions.", i))
	}
	// One giant paragraph, no blank lines.
	para := strings.Join(sentences, " ")

	// Budget for roughly four sentences per window so the paragraph is well
	// over the 1.5x oversize threshold.
	target := 0
	for _, s := range sentences[:4] {
		target += counter.CountTokens(s)
	}
	target++

	c, err := New(target, 50)
	require.NoError(t, err)

	chunks, err := c.Split(para)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	// Windows carry a trailing 2-sentence overlap, so each later chunk must
	// open with material from the previous one.
	for i := 1; i < len(chunks); i++ {
		head := chunks[i]
		if idx := strings.Index(head, "."); idx > 0 {
			head = head[:idx+1]
		}
		assert.Contains(t, chunks[i-1], head, "chunk %d should start with overlap from chunk %d", i, i-1)
	}
}

func TestSplitOversizedParagraphNoOverlap(t *testing.T) {
	counter, err := New(400, 50)
	require.NoError(t, err)

	var sentences []string
	for i := 0; i < 10; i++ {
		sentences = append(sentences, fmt.Sprintf("Observation number %d was recorded by the field team at dawn.", i))
	}
	para := strings.Join(sentences, " ")

	target := counter.CountTokens(sentences[0])*3 + 1

	c, err := New(target, 0)
	require.NoError(t, err)

	chunks, err := c.Split(para)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// Without overlap each sentence lands in exactly one chunk.
	joined := strings.Join(chunks, " ")
	for _, s := range sentences {
		assert.Equal(t, 1, strings.Count(joined, s))
	}
}

func buildText(paragraphCount int) string {
	var b strings.Builder
	for i := 0; i < paragraphCount; i++ {
		fmt.Fprintf(&b, "Paragraph %d explains a separate concept from the course reader.\n\n", i)
	}
	return b.String()
}
