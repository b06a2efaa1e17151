package index

// TermEntry records a term's postings handle and its occurrence counter.
//
// Count is a diagnostic upper bound on the number of distinct documents, not
// a guaranteed count: Append dedups only against the current head, so the
// same document may be counted twice when insertion order interleaves
// documents. Correctness always relies on PostingsStore.Documents, never on
// Count.
type TermEntry struct {
	Term   string
	Count  int
	Handle Handle
}

// TermDictionary maps each indexed term to its entry.
type TermDictionary struct {
	store   *PostingsStore
	entries map[string]*TermEntry
}

// NewTermDictionary returns an empty dictionary allocating chains from store.
func NewTermDictionary(store *PostingsStore) *TermDictionary {
	return &TermDictionary{
		store:   store,
		entries: make(map[string]*TermEntry),
	}
}

// EnsureTerm returns the entry for term, allocating an empty chain and a
// zero counter on first sight. Idempotent: a second call returns the same
// entry with the same handle.
func (d *TermDictionary) EnsureTerm(term string) *TermEntry {
	if entry, ok := d.entries[term]; ok {
		return entry
	}
	entry := &TermEntry{
		Term:   term,
		Handle: d.store.NewChain(),
	}
	d.entries[term] = entry
	return entry
}

// Lookup returns the entry for term. The second return is false when the
// term never occurred in the corpus.
func (d *TermDictionary) Lookup(term string) (*TermEntry, bool) {
	entry, ok := d.entries[term]
	return entry, ok
}

// Len returns the number of distinct terms.
func (d *TermDictionary) Len() int {
	return len(d.entries)
}
