package index

import (
	"encoding/hex"
	"hash"
	"hash/fnv"
	"iter"
	"log/slog"
	"time"

	"github.com/saket-vr/permafind/pkg/logger"
	"github.com/saket-vr/permafind/pkg/metrics"
)

// Builder populates the index structures during the single build phase. It
// is not safe for concurrent use; ingestion owns it exclusively until Build.
type Builder struct {
	store   *PostingsStore
	dict    *TermDictionary
	perm    *PermutermIndex
	metrics *metrics.Metrics
	logger  *slog.Logger

	docCount   int
	tokenCount int
	digest     hash.Hash64
	started    time.Time
}

// NewBuilder returns an empty Builder. m may be nil to disable metrics.
func NewBuilder(m *metrics.Metrics) *Builder {
	store := NewPostingsStore()
	return &Builder{
		store:   store,
		dict:    NewTermDictionary(store),
		perm:    NewPermutermIndex(),
		metrics: m,
		logger:  logger.WithComponent("index-builder"),
		digest:  fnv.New64a(),
		started: time.Now(),
	}
}

// AddDocument normalizes and indexes every token of one document. Tokens
// normalizing to the empty string are skipped; a document with zero tokens
// is counted but contributes nothing.
func (b *Builder) AddDocument(docID string, tokens []string) {
	b.digest.Write([]byte(docID))
	b.digest.Write([]byte{0})
	for _, token := range tokens {
		term := Normalize(token, false)
		if term == "" {
			continue
		}
		entry, ok := b.dict.Lookup(term)
		if !ok {
			entry = b.dict.EnsureTerm(term)
			b.perm.Register(term)
		}
		if b.store.Append(entry.Handle, docID) {
			entry.Count++
		}
		b.digest.Write([]byte(term))
		b.digest.Write([]byte{0})
		b.tokenCount++
	}
	b.docCount++
	if b.metrics != nil {
		b.metrics.DocsIndexedTotal.Inc()
	}
}

// Build seals the structures and returns the immutable Index. The Builder
// must not be used afterwards.
func (b *Builder) Build() *Index {
	b.perm.seal()
	took := time.Since(b.started)
	if b.metrics != nil {
		b.metrics.DictionaryTerms.Set(float64(b.dict.Len()))
		b.metrics.RotationKeys.Set(float64(b.perm.Len()))
		b.metrics.BuildDurationSeconds.Set(took.Seconds())
	}
	fingerprint := hex.EncodeToString(b.digest.Sum(nil))
	b.logger.Info("index sealed",
		"docs", b.docCount,
		"tokens", b.tokenCount,
		"terms", b.dict.Len(),
		"rotation_keys", b.perm.Len(),
		"fingerprint", fingerprint,
		"took", took,
	)
	return &Index{
		store:       b.store,
		dict:        b.dict,
		perm:        b.perm,
		docCount:    b.docCount,
		fingerprint: fingerprint,
	}
}

// Index is the sealed, read-only result of a build. Nothing mutates it after
// Build, so concurrent readers need no locking.
type Index struct {
	store       *PostingsStore
	dict        *TermDictionary
	perm        *PermutermIndex
	docCount    int
	fingerprint string
}

// Lookup returns the dictionary entry for a term, if the term ever occurred.
func (ix *Index) Lookup(term string) (*TermEntry, bool) {
	return ix.dict.Lookup(term)
}

// Documents returns the deduplicated, most-recent-first document sequence
// for a postings handle.
func (ix *Index) Documents(h Handle) iter.Seq[string] {
	return ix.store.Documents(h)
}

// Expand resolves a wildcard pattern through the permuterm index.
func (ix *Index) Expand(pattern string) ([]string, error) {
	return ix.perm.Expand(pattern)
}

// Docs returns the number of documents added during the build.
func (ix *Index) Docs() int { return ix.docCount }

// Terms returns the number of distinct terms in the dictionary.
func (ix *Index) Terms() int { return ix.dict.Len() }

// RotationKeys returns the number of distinct permuterm rotation keys.
func (ix *Index) RotationKeys() int { return ix.perm.Len() }

// Fingerprint identifies the exact ingested content. Two builds over the same
// documents in the same order produce the same value; any change to the
// corpus changes it.
func (ix *Index) Fingerprint() string { return ix.fingerprint }
