package quote

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shownAt(t time.Time) *time.Time { return &t }

func TestPickPrefersNeverShown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(1))

	candidates := []Quote{
		{ID: 1, Text: "recent", LastShown: shownAt(now.Add(-time.Hour)), TimesShown: 3},
		{ID: 2, Text: "never"},
		{ID: 3, Text: "stale month", LastShown: shownAt(now.AddDate(0, 0, -40)), TimesShown: 5},
		{ID: 4, Text: "stale week", LastShown: shownAt(now.AddDate(0, 0, -10)), TimesShown: 1},
	}

	picked := Pick(candidates, 3, true, now, rng)
	require.Len(t, picked, 3)
	assert.Equal(t, uint(2), picked[0].ID)
	assert.Equal(t, uint(3), picked[1].ID)
	assert.Equal(t, uint(4), picked[2].ID)
}

func TestPickOrdersByTimesShownWithinBucket(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(1))

	old := shownAt(now.AddDate(0, 0, -60))
	candidates := []Quote{
		{ID: 1, LastShown: old, TimesShown: 9},
		{ID: 2, LastShown: old, TimesShown: 0},
		{ID: 3, LastShown: old, TimesShown: 4},
	}

	picked := Pick(candidates, 3, true, now, rng)
	require.Len(t, picked, 3)
	assert.Equal(t, []uint{2, 3, 1}, []uint{picked[0].ID, picked[1].ID, picked[2].ID})
}

func TestPickFewerCandidatesThanRequested(t *testing.T) {
	now := time.Now().UTC()
	rng := rand.New(rand.NewSource(1))

	picked := Pick([]Quote{{ID: 1}}, 10, true, now, rng)
	assert.Len(t, picked, 1)

	assert.Nil(t, Pick(nil, 5, true, now, rng))
	assert.Nil(t, Pick([]Quote{{ID: 1}}, 0, true, now, rng))
}

func TestPickUnweightedReturnsRequestedCount(t *testing.T) {
	now := time.Now().UTC()
	rng := rand.New(rand.NewSource(42))

	candidates := make([]Quote, 20)
	for i := range candidates {
		candidates[i] = Quote{ID: uint(i + 1)}
	}

	picked := Pick(candidates, 5, false, now, rng)
	require.Len(t, picked, 5)

	seen := map[uint]bool{}
	for _, q := range picked {
		assert.False(t, seen[q.ID])
		seen[q.ID] = true
	}
}

func TestPickDoesNotMutateInput(t *testing.T) {
	now := time.Now().UTC()
	rng := rand.New(rand.NewSource(7))

	candidates := []Quote{{ID: 1}, {ID: 2}, {ID: 3}}
	Pick(candidates, 2, false, now, rng)
	assert.Equal(t, []uint{1, 2, 3}, []uint{candidates[0].ID, candidates[1].ID, candidates[2].ID})
}
