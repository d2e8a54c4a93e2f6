package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextReadsPlainFilesVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Week 3\nRecursion needs a base case."), 0o644))

	text, err := Text(path)
	require.NoError(t, err)
	assert.Equal(t, "# Week 3\nRecursion needs a base case.", text)
}

func TestTextMissingFile(t *testing.T) {
	_, err := Text(filepath.Join(t.TempDir(), "gone.txt"))
	assert.Error(t, err)
}

func TestTextRejectsBrokenPdf(t *testing.T) {
	// A .pdf extension routes through the PDF parser, which must reject
	// bytes that are not actually a PDF instead of chunking them raw.
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	_, err := Text(path)
	assert.Error(t, err)
}
