package quote

import (
	"math/rand"
	"sort"
	"time"
)

// Spaced-repetition priority buckets, lowest value wins. Quotes that were
// never shown come first, then progressively staler ones.
const (
	bucketNeverShown = iota
	bucketOverMonth
	bucketOverWeek
	bucketRecent
)

func bucketFor(q Quote, now time.Time) int {
	switch {
	case q.LastShown == nil:
		return bucketNeverShown
	case q.LastShown.Before(now.AddDate(0, 0, -30)):
		return bucketOverMonth
	case q.LastShown.Before(now.AddDate(0, 0, -7)):
		return bucketOverWeek
	default:
		return bucketRecent
	}
}

// Pick selects up to n quotes from candidates. With weighting enabled it
// applies the spaced-repetition ordering: priority bucket, then times shown
// ascending, remaining ties broken uniformly at random. Without weighting the
// selection is uniformly random. Fewer than n candidates is not an error.
func Pick(candidates []Quote, n int, weighted bool, now time.Time, rng *rand.Rand) []Quote {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	picked := make([]Quote, len(candidates))
	copy(picked, candidates)

	if weighted {
		jitter := make(map[uint]int64, len(picked))
		for _, q := range picked {
			jitter[q.ID] = rng.Int63()
		}
		sort.Slice(picked, func(i, j int) bool {
			a, b := picked[i], picked[j]
			if ba, bb := bucketFor(a, now), bucketFor(b, now); ba != bb {
				return ba < bb
			}
			if a.TimesShown != b.TimesShown {
				return a.TimesShown < b.TimesShown
			}
			return jitter[a.ID] < jitter[b.ID]
		})
	} else {
		rng.Shuffle(len(picked), func(i, j int) {
			picked[i], picked[j] = picked[j], picked[i]
		})
	}

	if n < len(picked) {
		picked = picked[:n]
	}
	return picked
}
