// Package query answers boolean AND queries over a sealed index, expanding
// single-wildcard terms through the permuterm index and intersecting sorted
// postings with a two-pointer merge.
package query

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/saket-vr/permafind/internal/index"
	apperrors "github.com/saket-vr/permafind/pkg/errors"
	"github.com/saket-vr/permafind/pkg/logger"
	"github.com/saket-vr/permafind/pkg/metrics"
)

// MissReason is the wire label for a recoverable token anomaly. Labels are
// derived from the pkg/errors sentinels via reasonFor, never assigned
// directly.
type MissReason string

const (
	// MissTermNotFound marks a literal token absent from the dictionary.
	MissTermNotFound MissReason = "term_not_found"
	// MissWildcardNoMatch marks a wildcard token whose expansion covered
	// no indexed term (or only terms without postings).
	MissWildcardNoMatch MissReason = "wildcard_no_match"
)

// Query outcome labels for metrics and analytics.
const (
	OutcomeHit     = "hit"
	OutcomeEmpty   = "empty"
	OutcomeMiss    = "miss"
	OutcomeInvalid = "invalid"
)

// TokenMiss records a query token that short-circuited the query.
type TokenMiss struct {
	Token  string     `json:"token"`
	Reason MissReason `json:"reason"`
}

// reasonFor maps a recoverable sentinel (ErrTermNotFound or
// ErrWildcardNoMatch) to its wire label.
func reasonFor(err error) MissReason {
	if errors.Is(err, apperrors.ErrWildcardNoMatch) {
		return MissWildcardNoMatch
	}
	return MissTermNotFound
}

// Result is the structured outcome of a query. A non-empty Misses slice
// means a token resolved to nothing and the intersection was short-circuited:
// DocIDs is empty but the query itself was valid. That is distinct from a
// valid query whose terms all matched and whose intersection is genuinely
// empty (Misses nil, DocIDs empty).
type Result struct {
	Terms      []string            `json:"terms"`
	DocIDs     []string            `json:"doc_ids"`
	Misses     []TokenMiss         `json:"misses,omitempty"`
	Expansions map[string][]string `json:"expansions,omitempty"`
}

// Outcome returns the metrics label for this result.
func (r *Result) Outcome() string {
	switch {
	case len(r.Misses) > 0:
		return OutcomeMiss
	case len(r.DocIDs) == 0:
		return OutcomeEmpty
	default:
		return OutcomeHit
	}
}

// Engine executes queries against a sealed index. Safe for concurrent use.
type Engine struct {
	index   *index.Index
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New returns an Engine over ix. m may be nil to disable metrics.
func New(ix *index.Index, m *metrics.Metrics) *Engine {
	return &Engine{
		index:   ix,
		metrics: m,
		logger:  logger.WithComponent("query-engine"),
	}
}

// Execute answers a boolean AND query over rawTerms and returns the sorted
// document IDs matching every term. Query-time anomalies never fault: a term
// or wildcard matching nothing resolves to ErrTermNotFound or
// ErrWildcardNoMatch internally and surfaces as an empty Result with a
// recorded miss. Only a structurally invalid query (no terms, or a term with
// two or more wildcards) returns ErrInvalidQuery.
func (e *Engine) Execute(ctx context.Context, rawTerms []string) (*Result, error) {
	start := time.Now()
	if len(rawTerms) == 0 {
		e.observe(OutcomeInvalid, start, 0)
		return nil, apperrors.New(apperrors.ErrInvalidQuery, "no query terms supplied")
	}

	result := &Result{
		Terms:  make([]string, 0, len(rawTerms)),
		DocIDs: []string{},
	}
	for _, raw := range rawTerms {
		result.Terms = append(result.Terms, index.Normalize(raw, true))
	}

	lists := make([][]string, 0, len(result.Terms))
	for _, term := range result.Terms {
		union, err := e.resolveToken(term, result)
		if err != nil {
			if apperrors.IsRecoverable(err) {
				result.Misses = append(result.Misses, TokenMiss{Token: term, Reason: reasonFor(err)})
				break
			}
			e.observe(OutcomeInvalid, start, 0)
			return nil, err
		}
		lists = append(lists, union)
	}

	if len(result.Misses) == 0 {
		docs := lists[0]
		for _, list := range lists[1:] {
			docs = intersect(docs, list)
			if len(docs) == 0 {
				break
			}
		}
		result.DocIDs = docs
	}

	outcome := result.Outcome()
	e.observe(outcome, start, len(result.DocIDs))
	e.logger.Debug("query executed",
		"terms", result.Terms,
		"outcome", outcome,
		"hits", len(result.DocIDs),
		"took", time.Since(start),
	)
	return result, nil
}

// resolveToken turns one normalized token into its sorted document union.
// An empty resolution wraps ErrTermNotFound or ErrWildcardNoMatch; a
// malformed wildcard pattern passes through ErrInvalidQuery from Expand.
func (e *Engine) resolveToken(term string, result *Result) ([]string, error) {
	isWildcard := strings.ContainsRune(term, index.Wildcard)

	candidates := []string{term}
	if isWildcard {
		expanded, err := e.index.Expand(term)
		if err != nil {
			return nil, err
		}
		if e.metrics != nil {
			e.metrics.WildcardExpansionSize.Observe(float64(len(expanded)))
		}
		if len(expanded) == 0 {
			return nil, apperrors.Newf(apperrors.ErrWildcardNoMatch,
				"pattern %q covers no indexed term", term)
		}
		if result.Expansions == nil {
			result.Expansions = make(map[string][]string)
		}
		result.Expansions[term] = expanded
		candidates = expanded
	}

	union := e.unionDocuments(candidates)
	if len(union) == 0 {
		if isWildcard {
			return nil, apperrors.Newf(apperrors.ErrWildcardNoMatch,
				"pattern %q covers no documents", term)
		}
		return nil, apperrors.Newf(apperrors.ErrTermNotFound,
			"term %q is not in the dictionary", term)
	}
	return union, nil
}

// unionDocuments resolves every candidate term through the dictionary,
// silently skipping absent ones, and returns the sorted union of their
// deduplicated document sets.
func (e *Engine) unionDocuments(candidates []string) []string {
	set := make(map[string]struct{})
	for _, term := range candidates {
		entry, ok := e.index.Lookup(term)
		if !ok {
			continue
		}
		for docID := range e.index.Documents(entry.Handle) {
			set[docID] = struct{}{}
		}
	}
	docs := make([]string, 0, len(set))
	for docID := range set {
		docs = append(docs, docID)
	}
	sort.Strings(docs)
	return docs
}

func (e *Engine) observe(outcome string, start time.Time, hits int) {
	if e.metrics == nil {
		return
	}
	e.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	e.metrics.QueryLatency.Observe(time.Since(start).Seconds())
	e.metrics.QueryResultsCount.Observe(float64(hits))
}
