package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderIndexesNormalizedTerms(t *testing.T) {
	b := NewBuilder(nil)
	b.AddDocument("doc1", []string{"Side", "effects!", "of", "Malaria"})
	ix := b.Build()

	require.Equal(t, 1, ix.Docs())
	for _, term := range []string{"side", "effects", "of", "malaria"} {
		_, ok := ix.Lookup(term)
		assert.True(t, ok, "term %q missing", term)
	}
	_, ok := ix.Lookup("Side")
	assert.False(t, ok, "unnormalized term leaked into the dictionary")
}

func TestBuilderSkipsEmptyTerms(t *testing.T) {
	b := NewBuilder(nil)
	b.AddDocument("doc1", []string{"?!", "...", "ok"})
	ix := b.Build()

	assert.Equal(t, 1, ix.Terms())
	_, ok := ix.Lookup("")
	assert.False(t, ok)
}

func TestBuilderToleratesZeroTokenDocument(t *testing.T) {
	b := NewBuilder(nil)
	b.AddDocument("doc1", nil)
	b.AddDocument("doc2", []string{"term"})
	ix := b.Build()

	assert.Equal(t, 2, ix.Docs())
	assert.Equal(t, 1, ix.Terms())
}

func TestBuilderRegistersRotations(t *testing.T) {
	b := NewBuilder(nil)
	b.AddDocument("doc1", []string{"side"})
	ix := b.Build()

	// "side" contributes len+1 = 5 rotation keys.
	assert.Equal(t, 5, ix.RotationKeys())

	terms, err := ix.Expand("si*")
	require.NoError(t, err)
	assert.Equal(t, []string{"side"}, terms)
}

func TestFingerprintTracksCorpusContent(t *testing.T) {
	build := func(docs map[string][]string, order []string) *Index {
		b := NewBuilder(nil)
		for _, id := range order {
			b.AddDocument(id, docs[id])
		}
		return b.Build()
	}

	docs := map[string][]string{
		"doc1": {"Side", "effects", "of", "malaria"},
		"doc2": {"Malaria", "vaccine"},
	}
	order := []string{"doc1", "doc2"}

	first := build(docs, order)
	second := build(docs, order)
	require.NotEmpty(t, first.Fingerprint())
	assert.Equal(t, first.Fingerprint(), second.Fingerprint(),
		"identical corpora must fingerprint identically")

	changed := map[string][]string{
		"doc1": {"Side", "effects", "of", "malaria"},
		"doc2": {"Malaria", "vaccines"},
	}
	assert.NotEqual(t, first.Fingerprint(), build(changed, order).Fingerprint(),
		"a changed corpus must change the fingerprint")
}

func TestBuilderRepeatedTokenSameDocument(t *testing.T) {
	b := NewBuilder(nil)
	b.AddDocument("doc1", []string{"buzz", "buzz", "buzz"})
	ix := b.Build()

	entry, ok := ix.Lookup("buzz")
	require.True(t, ok)
	assert.Equal(t, 1, entry.Count)

	var docs []string
	for docID := range ix.Documents(entry.Handle) {
		docs = append(docs, docID)
	}
	assert.Equal(t, []string{"doc1"}, docs)
}
