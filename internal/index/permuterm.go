package index

import (
	"sort"
	"strings"

	apperrors "github.com/saket-vr/permafind/pkg/errors"
)

// Sentinel terminates every term before rotation. Normalized terms are
// alphanumeric, so the sentinel can never occur inside one.
const Sentinel = '$'

// Rotations returns the cyclic rotations of term plus the sentinel:
// for T = term+"$" it yields T[i:]+T[:i] for i in 0..len(term). The sentinel
// occupies a different position in each rotation, so a term of length L
// always produces exactly L+1 pairwise-distinct keys.
func Rotations(term string) []string {
	t := term + string(Sentinel)
	keys := make([]string, 0, len(t))
	for i := 0; i < len(t); i++ {
		keys = append(keys, t[i:]+t[:i])
	}
	return keys
}

// PermutermIndex maps every rotation key to the set of terms producing it.
// Different terms may collide on a key; the set keeps them all.
type PermutermIndex struct {
	rotations map[string]map[string]struct{}

	// sorted rotation keys, built by seal; enables prefix range scans via
	// binary search instead of a full key scan.
	sorted []string
}

// NewPermutermIndex returns an empty permuterm index.
func NewPermutermIndex() *PermutermIndex {
	return &PermutermIndex{
		rotations: make(map[string]map[string]struct{}),
	}
}

// Register adds term under every one of its rotation keys. Idempotent per
// term.
func (p *PermutermIndex) Register(term string) {
	for _, key := range Rotations(term) {
		set, ok := p.rotations[key]
		if !ok {
			set = make(map[string]struct{}, 1)
			p.rotations[key] = set
		}
		set[term] = struct{}{}
	}
	p.sorted = nil
}

// seal builds the sorted key slice. Called once when the build phase ends;
// no registration may follow.
func (p *PermutermIndex) seal() {
	keys := make([]string, 0, len(p.rotations))
	for key := range p.rotations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	p.sorted = keys
}

// Len returns the number of distinct rotation keys.
func (p *PermutermIndex) Len() int {
	return len(p.rotations)
}

// Expand resolves a wildcard pattern to the sorted set of indexed terms it
// covers. A pattern without '*' is returned as-is, untouched. A pattern with
// more than one '*' is rejected with ErrInvalidQuery: the rotation scheme
// cannot express multi-wildcard patterns, and silently matching on the first
// marker would be a lie.
func (p *PermutermIndex) Expand(pattern string) ([]string, error) {
	switch strings.Count(pattern, "*") {
	case 0:
		return []string{pattern}, nil
	case 1:
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidQuery,
			"pattern %q has more than one wildcard", pattern)
	}

	// Rotate pattern+"$" so the text after '*' leads, then drop the
	// trailing '*': every rotation key starting with the remainder belongs
	// to a matching term.
	pos := strings.IndexByte(pattern, '*')
	t := pattern + string(Sentinel)
	rotated := t[pos+1:] + t[:pos+1]
	prefix := strings.TrimSuffix(rotated, "*")

	matched := make(map[string]struct{})
	if p.sorted != nil {
		start := sort.SearchStrings(p.sorted, prefix)
		for i := start; i < len(p.sorted) && strings.HasPrefix(p.sorted[i], prefix); i++ {
			for term := range p.rotations[p.sorted[i]] {
				matched[term] = struct{}{}
			}
		}
	} else {
		// Not sealed yet: fall back to scanning every key.
		for key, set := range p.rotations {
			if strings.HasPrefix(key, prefix) {
				for term := range set {
					matched[term] = struct{}{}
				}
			}
		}
	}

	terms := make([]string, 0, len(matched))
	for term := range matched {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms, nil
}
