package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePresets(t *testing.T) {
	raw := map[string]map[string]any{
		"commute": {
			"mode":    "timedfit",
			"minutes": 45,
		},
		"party": {
			"mode":   "shuffle",
			"trials": 20,
		},
		"workout": {
			"minutes": 60,
		},
	}

	presets, err := ParsePresets(raw)

	require.NoError(t, err)
	require.Len(t, presets, 3)

	commute := presets["commute"]
	assert.Equal(t, "commute", commute.Name)
	assert.Equal(t, ModeTimedFit, commute.Mode)
	assert.Equal(t, 45*time.Minute, commute.Target)
	assert.Equal(t, 10, commute.Trials, "trials defaults when omitted")

	party := presets["party"]
	assert.Equal(t, ModeShuffle, party.Mode)
	assert.Equal(t, time.Duration(0), party.Target)
	assert.Equal(t, 20, party.Trials)

	workout := presets["workout"]
	assert.Equal(t, ModeTimedFit, workout.Mode, "mode defaults to timedfit")
	assert.Equal(t, time.Hour, workout.Target)
}

func TestParsePresets_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]map[string]any
	}{
		{
			name: "unknown key",
			raw: map[string]map[string]any{
				"bad": {"mode": "shuffle", "mintues": 30},
			},
		},
		{
			name: "timedfit without minutes",
			raw: map[string]map[string]any{
				"bad": {"mode": "timedfit"},
			},
		},
		{
			name: "unknown mode",
			raw: map[string]map[string]any{
				"bad": {"mode": "polka", "minutes": 30},
			},
		},
		{
			name: "negative trials",
			raw: map[string]map[string]any{
				"bad": {"mode": "shuffle", "trials": -1},
			},
		},
		{
			name: "minutes out of range",
			raw: map[string]map[string]any{
				"bad": {"mode": "timedfit", "minutes": 2000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePresets(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "bad")
		})
	}
}

func TestPreset_Request(t *testing.T) {
	p := Preset{
		Name:   "commute",
		Mode:   ModeTimedFit,
		Target: 45 * time.Minute,
		Trials: 12,
	}

	req := p.Request("pl9")

	assert.Equal(t, "pl9", req.PlaylistID)
	assert.Equal(t, ModeTimedFit, req.Mode)
	assert.Equal(t, 45*time.Minute, req.Target)
	assert.Equal(t, 12, req.Trials)
}
