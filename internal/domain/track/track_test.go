package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestURIs(t *testing.T) {
	tests := []struct {
		name     string
		tracks   []Track
		expected []string
	}{
		{
			name: "multiple tracks keep order",
			tracks: []Track{
				{ID: "a", URI: "spotify:track:a"},
				{ID: "b", URI: "spotify:track:b"},
				{ID: "c", URI: "spotify:track:c"},
			},
			expected: []string{"spotify:track:a", "spotify:track:b", "spotify:track:c"},
		},
		{
			name:     "empty slice",
			tracks:   []Track{},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, URIs(tt.tracks))
		})
	}
}

func TestIDs(t *testing.T) {
	tracks := []Track{
		{ID: "first"},
		{ID: "second"},
	}
	assert.Equal(t, []string{"first", "second"}, IDs(tracks))
}

func TestTotalDuration(t *testing.T) {
	tests := []struct {
		name     string
		tracks   []Track
		expected time.Duration
	}{
		{
			name: "sums durations",
			tracks: []Track{
				{ID: "a", Duration: 3 * time.Minute},
				{ID: "b", Duration: 90 * time.Second},
			},
			expected: 4*time.Minute + 30*time.Second,
		},
		{
			name: "zero durations contribute nothing",
			tracks: []Track{
				{ID: "a", Duration: 0},
				{ID: "b", Duration: 2 * time.Minute},
				{ID: "c", Duration: 0},
			},
			expected: 2 * time.Minute,
		},
		{
			name:     "empty slice",
			tracks:   nil,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TotalDuration(tt.tracks))
		})
	}
}
