// Package index implements the in-memory inverted index: a postings store,
// a term dictionary, and a permuterm rotation index for single-wildcard
// matching. Everything is populated once by a Builder and then sealed; the
// sealed Index is read-only and safe for concurrent queries.
package index

import "iter"

// Handle identifies one term's postings chain inside a PostingsStore.
type Handle int

// PostingsStore owns every postings chain. A chain is an append-only slice
// of document IDs; the last element is the head (most recently appended).
// Chains are never shared between terms.
type PostingsStore struct {
	chains [][]string
}

// NewPostingsStore returns an empty store.
func NewPostingsStore() *PostingsStore {
	return &PostingsStore{}
}

// NewChain allocates an empty chain and returns its handle.
func (s *PostingsStore) NewChain() Handle {
	s.chains = append(s.chains, nil)
	return Handle(len(s.chains) - 1)
}

// Append pushes docID as the new head unless the current head already
// carries it. Only the head is compared: the same document can still appear
// deeper in the chain when insertion order interleaves documents. Reports
// whether a posting was actually added. O(1).
func (s *PostingsStore) Append(h Handle, docID string) bool {
	chain := s.chains[h]
	if n := len(chain); n > 0 && chain[n-1] == docID {
		return false
	}
	s.chains[h] = append(chain, docID)
	return true
}

// ChainLen returns the number of postings in the chain, duplicates included.
func (s *PostingsStore) ChainLen(h Handle) int {
	return len(s.chains[h])
}

// Documents walks the chain most-recent-first, suppressing any document ID
// already emitted during this traversal. Every call re-walks from the head;
// the cost is linear in the chain length.
func (s *PostingsStore) Documents(h Handle) iter.Seq[string] {
	chain := s.chains[h]
	return func(yield func(string) bool) {
		seen := make(map[string]struct{}, len(chain))
		for i := len(chain) - 1; i >= 0; i-- {
			docID := chain[i]
			if _, dup := seen[docID]; dup {
				continue
			}
			seen[docID] = struct{}{}
			if !yield(docID) {
				return
			}
		}
	}
}
