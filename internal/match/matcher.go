// Package match resolves free-text product and customer references to stored
// entities with a confidence score.
package match

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"
)

type Kind string

const (
	KindProduct  Kind = "product"
	KindCustomer Kind = "customer"
)

const (
	exactScore      = 1.0
	normalizedScore = 0.95
	fuzzyCap        = 0.9
)

type Candidate struct {
	ID   uint
	Name string
}

type Result struct {
	ID         uint
	Name       string
	Confidence float64
}

// Matcher finds the best stored entity for a query. ok is false when the
// merchant has no entity of that kind. Callers apply their own threshold.
type Matcher interface {
	Match(ctx context.Context, merchantID, query string, kind Kind) (Result, bool, error)
}

type CandidateSource interface {
	Candidates(ctx context.Context, merchantID string, kind Kind) ([]Candidate, error)
}

// Local scores candidates in process.
type Local struct {
	source CandidateSource
}

func NewLocal(source CandidateSource) *Local {
	return &Local{source: source}
}

func (l *Local) Match(ctx context.Context, merchantID, query string, kind Kind) (Result, bool, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, false, nil
	}
	candidates, err := l.source.Candidates(ctx, merchantID, kind)
	if err != nil {
		return Result{}, false, err
	}
	r, ok := Best(query, candidates)
	return r, ok, nil
}

// Best returns the highest scoring candidate. Ties keep the earlier one.
func Best(query string, candidates []Candidate) (Result, bool) {
	var best Result
	found := false
	for _, c := range candidates {
		s := Score(query, c.Name)
		if !found || s > best.Confidence {
			best = Result{ID: c.ID, Name: c.Name, Confidence: s}
			found = true
		}
	}
	return best, found
}

// Rank scores every candidate and returns those at or above minimum, best
// first.
func Rank(query string, candidates []Candidate, minimum float64) []Result {
	var out []Result
	for _, c := range candidates {
		if s := Score(query, c.Name); s >= minimum {
			out = append(out, Result{ID: c.ID, Name: c.Name, Confidence: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// Score is the confidence in [0,1] that query refers to name. Case-insensitive
// equality scores 1, equality after normalization 0.95, anything else at most
// 0.9.
func Score(query, name string) float64 {
	if strings.EqualFold(strings.TrimSpace(query), strings.TrimSpace(name)) {
		return exactScore
	}
	q, n := Normalize(query), Normalize(name)
	if q == "" || n == "" {
		return 0
	}
	if q == n {
		return normalizedScore
	}
	score := LevenshteinSimilarity(q, n)
	if c := containment(q, n); c > score {
		score = c
	}
	return min(score, fuzzyCap)
}

// containment rewards a query that is a whole-word part of the name, or the
// reverse, in proportion to how much of the longer string it covers.
func containment(q, n string) float64 {
	short, long := q, n
	ls, ll := utf8.RuneCountInString(short), utf8.RuneCountInString(long)
	if ls > ll {
		short, long = long, short
		ls, ll = ll, ls
	}
	if ls < 3 || !containsWords(long, short) {
		return 0
	}
	return 0.5 + 0.5*float64(ls)/float64(ll)
}

func containsWords(s, sub string) bool {
	return strings.Contains(" "+s+" ", " "+sub+" ")
}

// Thresholds are the minimum confidences at which a match is accepted.
// Exact applies to destructive operations and to deciding that a new product
// name refers to an existing product.
type Thresholds struct {
	Product  float64
	Customer float64
	Exact    float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Product: 0.5, Customer: 0.7, Exact: 0.95}
}

func (t Thresholds) For(kind Kind) float64 {
	if kind == KindCustomer {
		return t.Customer
	}
	return t.Product
}

func (t Thresholds) Accept(kind Kind, r Result) bool {
	return r.Confidence >= t.For(kind)
}
