package queue

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Mode selects how a queue is generated.
type Mode string

const (
	// ModeShuffle plays the whole playlist in random order.
	ModeShuffle Mode = "shuffle"
	// ModeTimedFit fills a duration target as closely as possible.
	ModeTimedFit Mode = "timedfit"
)

// ErrUnknownMode is returned for unrecognized mode names.
var ErrUnknownMode = errors.New("unknown queue mode")

// ParseMode parses a mode name as sent by forms and flags.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shuffle":
		return ModeShuffle, nil
	case "timedfit", "timed", "fit":
		return ModeTimedFit, nil
	default:
		return "", errors.Wrapf(ErrUnknownMode, "%q", s)
	}
}
