package selection

import (
	"math/rand"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/minutemix/minutemix/internal/domain/track"
)

// ErrTrialCount is returned by Fit when fewer than one trial is requested.
var ErrTrialCount = errors.New("trial count must be at least 1")

// Fit selects a subset of tracks whose total duration gets as close to
// target as found without exceeding it. It runs trials independent rounds,
// each shuffling a fresh copy of the input and then scanning it once,
// keeping every track that still fits the remaining budget. The round with
// the largest total wins; on equal totals the earliest round is kept.
//
// This is a randomized first-fit heuristic for the subset-maximization
// form of the knapsack problem, not an exact solver. More trials improve
// the fit but nothing guarantees the optimal subset is found.
//
// An empty input or a non-positive target yields an empty valid result
// with no trials run. Zero-duration tracks always fit. The input slice is
// never mutated.
func Fit(tracks []track.Track, target time.Duration, trials int, rng *rand.Rand) (Result, error) {
	if trials < 1 {
		return Result{}, errors.Wrapf(ErrTrialCount, "got %d", trials)
	}
	if len(tracks) == 0 || target <= 0 {
		return Result{Tracks: []track.Track{}}, nil
	}

	scratch := make([]track.Track, len(tracks))
	var best Result
	for trial := 0; trial < trials; trial++ {
		copy(scratch, tracks)
		shuffleInPlace(scratch, rng)

		picked := make([]track.Track, 0, len(scratch))
		var total time.Duration
		for _, t := range scratch {
			if total+t.Duration > target {
				// Keep scanning: a shorter track further on may still fit.
				continue
			}
			picked = append(picked, t)
			total += t.Duration
		}

		// The first trial seeds the best; later ones must strictly beat it.
		if trial == 0 || total > best.Total {
			best.Tracks = picked
			best.Total = total
		}
	}
	best.Trials = trials
	return best, nil
}
