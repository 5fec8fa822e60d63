// Package selection builds playback queues from a track list, either as a
// full random shuffle or as a subset fitted to a duration budget.
package selection

import (
	"time"

	"github.com/minutemix/minutemix/internal/domain/track"
)

// Result is the outcome of one selection run.
type Result struct {
	Tracks []track.Track // chosen tracks in play order
	Total  time.Duration // summed duration of Tracks
	Trials int           // fitting trials run (0 in shuffle mode)
}

// Minutes returns the whole minutes of the selected total.
func (r Result) Minutes() int {
	return int(r.Total / time.Minute)
}

// Seconds returns the seconds remaining after Minutes.
func (r Result) Seconds() int {
	return int(r.Total/time.Second) % 60
}
