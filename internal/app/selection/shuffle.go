package selection

import (
	"math/rand"

	"github.com/minutemix/minutemix/internal/domain/track"
)

// Shuffle returns a uniformly random permutation of tracks drawn from rng.
// The input slice is left untouched.
func Shuffle(tracks []track.Track, rng *rand.Rand) []track.Track {
	out := make([]track.Track, len(tracks))
	copy(out, tracks)
	shuffleInPlace(out, rng)
	return out
}

// shuffleInPlace runs a Fisher-Yates shuffle over ts.
func shuffleInPlace(ts []track.Track, rng *rand.Rand) {
	for i := len(ts) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ts[i], ts[j] = ts[j], ts[i]
	}
}
