// Package playlist provides the Playlist domain entity.
package playlist

// Playlist represents a Spotify playlist as listed for a user.
// Track contents are fetched separately.
type Playlist struct {
	ID         string // Spotify Playlist ID
	Name       string // Playlist name
	Owner      string // Owner display name
	URL        string // Spotify web URL
	TrackTotal int    // Declared number of tracks
}
