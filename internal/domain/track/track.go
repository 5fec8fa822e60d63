// Package track provides the Track domain entity.
package track

import "time"

// Track represents a playable Spotify track.
// Contains only information retrieved from Spotify API.
type Track struct {
	ID       string        // Spotify Track ID
	URI      string        // Spotify URI handed to playback (spotify:track:...)
	Name     string        // Track name
	Artists  []string      // Artist names
	Album    string        // Album name
	Duration time.Duration // Track duration
	URL      string        // Spotify web URL
}

// URIs returns the playback URIs of the given tracks in order.
func URIs(tracks []Track) []string {
	uris := make([]string, len(tracks))
	for i, t := range tracks {
		uris[i] = t.URI
	}
	return uris
}

// IDs returns the track IDs in order.
func IDs(tracks []Track) []string {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

// TotalDuration returns the summed duration of the given tracks.
func TotalDuration(tracks []Track) time.Duration {
	var total time.Duration
	for _, t := range tracks {
		total += t.Duration
	}
	return total
}
