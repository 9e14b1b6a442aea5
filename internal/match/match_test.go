package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"zobo delite", "zobo delight", 3},
		{"café", "cafe", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "zobo drink", Normalize("  Zobo-Drinks "))
	assert.Equal(t, "battery", Normalize("Batteries"))
	assert.Equal(t, "glass", Normalize("glass"))
	assert.Equal(t, "bus", Normalize("bus"))
}

func TestScore(t *testing.T) {
	assert.Equal(t, 1.0, Score("shoes", " Shoes"))
	assert.Equal(t, 0.95, Score("shoe", "Shoes"))
	assert.Equal(t, 0.95, Score("batteries", "Battery"))
	assert.InDelta(t, 0.75, Score("Zobo Delite", "Zobo Delight"), 1e-9)
	assert.InDelta(t, 0.5+0.5*3.0/7.0, Score("Ada", "Ada Obi"), 1e-9)
	assert.Less(t, Score("rice", "Zobo Delight"), 0.5)
	assert.Equal(t, 0.0, Score("!!", "Rice"))
}

func TestContainmentCountsRunes(t *testing.T) {
	assert.InDelta(t, 0.5+0.5*3.0/7.0, containment("ñam", "ñam ñam"), 1e-9)
	assert.InDelta(t, 0.5+0.5*4.0/8.0, containment("garí", "garí ijẹ"), 1e-9)
	assert.Zero(t, containment("çé", "çé noir"))
}

func TestScoreNeverReachesDeleteConfidenceWhenFuzzy(t *testing.T) {
	for _, q := range []string{"Zobo", "Zobo Delite", "zobo delights drink"} {
		assert.Less(t, Score(q, "Zobo Delight"), 0.95, q)
	}
}

func TestRank(t *testing.T) {
	cands := []Candidate{{1, "Rice"}, {2, "Zobo Delight"}, {3, "Zobo Classic"}}
	got := Rank("zobo", cands, 0.5)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Contains(t, []uint{2, 3}, r.ID)
	}
}

type fakeSource struct {
	byKind map[Kind][]Candidate
	err    error
}

func (f fakeSource) Candidates(_ context.Context, _ string, kind Kind) ([]Candidate, error) {
	return f.byKind[kind], f.err
}

func TestLocalMatch(t *testing.T) {
	src := fakeSource{byKind: map[Kind][]Candidate{
		KindProduct:  {{1, "Shoes"}, {2, "Shoe Polish"}},
		KindCustomer: {{7, "Ada Obi"}},
	}}
	m := NewLocal(src)
	ctx := context.Background()

	r, ok, err := m.Match(ctx, "m1", "shoes", KindProduct)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint(1), r.ID)
	assert.Equal(t, 1.0, r.Confidence)

	r, ok, err = m.Match(ctx, "m1", "Ada", KindCustomer)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, DefaultThresholds().Accept(KindCustomer, r))

	_, ok, err = m.Match(ctx, "m1", "  ", KindProduct)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = NewLocal(fakeSource{err: errors.New("db down")}).Match(ctx, "m1", "x", KindProduct)
	assert.Error(t, err)
}

func TestThresholds(t *testing.T) {
	th := DefaultThresholds()
	assert.True(t, th.Accept(KindProduct, Result{Confidence: 0.5}))
	assert.False(t, th.Accept(KindCustomer, Result{Confidence: 0.69}))
}
