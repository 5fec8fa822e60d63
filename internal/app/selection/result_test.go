package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResult_MinutesSeconds(t *testing.T) {
	tests := []struct {
		name    string
		total   time.Duration
		minutes int
		seconds int
	}{
		{name: "zero", total: 0, minutes: 0, seconds: 0},
		{name: "under a minute", total: 59 * time.Second, minutes: 0, seconds: 59},
		{name: "exact minute", total: time.Minute, minutes: 1, seconds: 0},
		{name: "minutes and seconds", total: 2*time.Minute + 5*time.Second, minutes: 2, seconds: 5},
		{name: "just under an hour", total: 59*time.Minute + 59*time.Second, minutes: 59, seconds: 59},
		{name: "over an hour stays in minutes", total: 90*time.Minute + 7*time.Second, minutes: 90, seconds: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Result{Total: tt.total}
			assert.Equal(t, tt.minutes, r.Minutes())
			assert.Equal(t, tt.seconds, r.Seconds())
		})
	}
}
