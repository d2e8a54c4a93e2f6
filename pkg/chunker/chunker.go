package chunker

import (
	"errors"
	"strings"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

// ErrEmptyInput is returned when Split is given blank text.
var ErrEmptyInput = errors.New("chunker: empty input text")

// oversizeFactor marks a paragraph too large to keep whole; such paragraphs
// are re-split on sentence boundaries.
const oversizeFactor = 1.5

// Chunker splits document text into chunks sized to a token budget. Token
// counts come from a fixed tiktoken vocabulary so the same bytes always
// produce the same chunks.
type Chunker struct {
	enc           *tiktoken.Tiktoken
	targetTokens  int
	overlapTokens int
}

// New builds a Chunker using the cl100k_base encoding. overlapTokens enables
// the trailing-sentence overlap carried across chunk boundaries inside
// oversized paragraphs; 0 disables it.
func New(targetTokens, overlapTokens int) (*Chunker, error) {
	if targetTokens <= 0 {
		targetTokens = 400
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &Chunker{
		enc:           enc,
		targetTokens:  targetTokens,
		overlapTokens: overlapTokens,
	}, nil
}

// CountTokens returns the token count of text under the fixed vocabulary.
func (c *Chunker) CountTokens(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// Split chunks text into segments of roughly targetTokens tokens.
//
// Strategy:
//  1. Normalize whitespace per line, split paragraphs on blank lines.
//  2. Accumulate paragraphs until the next one would exceed the target,
//     then flush.
//  3. A paragraph above 1.5x the target is split into sentences; sentence
//     windows carry a trailing 2-sentence overlap into the next window.
//  4. Flush leftovers; drop blank chunks.
func (c *Chunker) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	paragraphs := splitParagraphs(text)

	var chunks []string
	var buf []string
	bufTokens := 0

	flush := func(sep string) {
		if len(buf) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(buf, sep))
		buf = nil
		bufTokens = 0
	}

	for _, para := range paragraphs {
		paraTokens := c.CountTokens(para)

		if float64(paraTokens) > oversizeFactor*float64(c.targetTokens) {
			// Flush whatever was accumulated before descending to sentences.
			flush("\n\n")

			for _, sentence := range splitSentences(para) {
				sentTokens := c.CountTokens(sentence)

				if bufTokens+sentTokens > c.targetTokens && len(buf) > 0 {
					window := buf
					chunks = append(chunks, strings.Join(window, " "))
					buf = nil
					bufTokens = 0

					// Seed the next window with the last two sentences so
					// local context survives the boundary.
					if c.overlapTokens > 0 && len(window) >= 2 {
						seed := strings.Join(window[len(window)-2:], " ")
						buf = []string{seed}
						bufTokens = c.CountTokens(seed)
					}
				}

				buf = append(buf, sentence)
				bufTokens += sentTokens
			}
			continue
		}

		if bufTokens+paraTokens > c.targetTokens && len(buf) > 0 {
			flush("\n\n")
		}

		buf = append(buf, para)
		bufTokens += paraTokens
	}

	flush("\n\n")

	out := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		ch = strings.TrimSpace(ch)
		if ch != "" {
			out = append(out, ch)
		}
	}
	return out, nil
}

func splitParagraphs(text string) []string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	var paragraphs []string
	for _, block := range strings.Split(strings.Join(lines, "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}

// splitSentences breaks text on sentence-terminal punctuation followed by
// whitespace. RE2 has no lookbehind, so this walks runes directly.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if isTerminal(runes[i]) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
