package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saket-vr/permafind/pkg/config"
	apperrors "github.com/saket-vr/permafind/pkg/errors"
)

func corpusConfig(path string) config.CorpusConfig {
	return config.CorpusConfig{
		Path:       path,
		Delimiter:  "\t",
		IDColumn:   1,
		TextColumn: 4,
		MinFields:  5,
	}
}

func writeCorpus(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.tsv")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0644))
	return path
}

func readAll(t *testing.T, src Source) []Document {
	t.Helper()
	var docs []Document
	require.NoError(t, src.Read(context.Background(), func(doc Document) error {
		docs = append(docs, doc)
		return nil
	}))
	return docs
}

func TestFileSourceReadsRecords(t *testing.T) {
	path := writeCorpus(t,
		"2024-01-01\tdoc1\tuser1\ten\tSide effects of malaria vaccines\n"+
			"2024-01-02\tdoc2\tuser2\ten\tMalaria vaccine side effects\n")
	src := NewFileSource(corpusConfig(path), nil)

	docs := readAll(t, src)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc1", docs[0].ID)
	assert.Equal(t, []string{"Side", "effects", "of", "malaria", "vaccines"}, docs[0].Tokens)
	assert.Equal(t, "doc2", docs[1].ID)
}

func TestFileSourceSkipsShortRecords(t *testing.T) {
	path := writeCorpus(t,
		"2024-01-01\tdoc1\tuser1\ten\tfirst tweet\n"+
			"truncated\trecord\n"+
			"2024-01-02\tdoc2\tuser2\ten\tsecond tweet\n")
	src := NewFileSource(corpusConfig(path), nil)

	docs := readAll(t, src)
	require.Len(t, docs, 2)
	assert.Equal(t, 1, src.Skipped())
}

func TestFileSourceUnescapesPlaceholders(t *testing.T) {
	path := writeCorpus(t,
		"2024-01-01\tdoc1\tuser1\ten\tline one[NEWLINE]line two[TAB]indented\n")
	src := NewFileSource(corpusConfig(path), nil)

	docs := readAll(t, src)
	require.Len(t, docs, 1)
	assert.Equal(t, []string{"line", "one", "line", "two", "indented"}, docs[0].Tokens)
}

func TestFileSourceEmptyTextYieldsZeroTokens(t *testing.T) {
	path := writeCorpus(t, "2024-01-01\tdoc1\tuser1\ten\t\n")
	src := NewFileSource(corpusConfig(path), nil)

	docs := readAll(t, src)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].Tokens)
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(corpusConfig(filepath.Join(t.TempDir(), "absent.tsv")), nil)
	err := src.Read(context.Background(), func(Document) error { return nil })
	require.ErrorIs(t, err, apperrors.ErrCorpusRead)
}

func TestFileSourcePropagatesCallbackError(t *testing.T) {
	path := writeCorpus(t, "2024-01-01\tdoc1\tuser1\ten\tsome text\n")
	src := NewFileSource(corpusConfig(path), nil)

	sentinel := assert.AnError
	err := src.Read(context.Background(), func(Document) error { return sentinel })
	require.ErrorIs(t, err, sentinel)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"a", "b", "c", "d"},
		Tokenize("a b[NEWLINE]c[TAB]d"))
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("[NEWLINE][TAB]"))
}
