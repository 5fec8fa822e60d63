// Package spotify provides a client for the Spotify API.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/minutemix/minutemix/internal/domain/playlist"
	"github.com/minutemix/minutemix/internal/domain/track"
)

// ErrNoActiveDevice is returned when playback is requested but the
// account has no usable Spotify Connect device.
var ErrNoActiveDevice = errors.New("no active playback device")

// Client is a Spotify API client bound to one authenticated account.
type Client struct {
	client     *spotify.Client
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string // required by New, unused by NewWithToken
	Market       string
}

// NewAuthenticator builds the OAuth authenticator with every scope the
// client needs. redirectURL may be empty for refresh-token construction.
func NewAuthenticator(clientID, clientSecret, redirectURL string) *spotifyauth.Authenticator {
	opts := []spotifyauth.AuthenticatorOption{
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistReadCollaborative,
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopeUserReadPlaybackState,
			spotifyauth.ScopeUserModifyPlaybackState,
		),
	}
	if redirectURL != "" {
		opts = append(opts, spotifyauth.WithRedirectURL(redirectURL))
	}
	return spotifyauth.New(opts...)
}

// New creates a client from a stored refresh token, for headless use.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := NewAuthenticator(cfg.ClientID, cfg.ClientSecret, "")
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}

	return newClient(auth.Client(ctx, token), cfg.Market), nil
}

// NewWithToken creates a client around an existing OAuth token, for
// per-session use in the web app. The token refreshes transparently;
// Token exposes the refreshed value for persistence.
func NewWithToken(ctx context.Context, auth *spotifyauth.Authenticator, tok *oauth2.Token, market string) *Client {
	return newClient(auth.Client(ctx, tok), market)
}

func newClient(httpClient *http.Client, market string) *Client {
	return &Client{
		client:     spotify.New(httpClient),
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// User identifies the authenticated Spotify account.
type User struct {
	ID          string
	DisplayName string
}

// CurrentUser returns the account the client is authenticated as.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user *spotify.PrivateUser
	err := c.retry(func() error {
		u, err := c.client.CurrentUser(ctx)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current user")
	}

	return &User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// Token returns the token currently held by the underlying client,
// including any refresh performed during earlier calls.
func (c *Client) Token() (*oauth2.Token, error) {
	tok, err := c.client.Token()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read token")
	}
	return tok, nil
}

// ListPlaylists retrieves all playlists of the authenticated user.
func (c *Client) ListPlaylists(ctx context.Context) ([]playlist.Playlist, error) {
	var playlists []playlist.Playlist
	offset := 0
	limit := 50

	for {
		var page *spotify.SimplePlaylistPage
		err := c.retry(func() error {
			p, err := c.client.CurrentUsersPlaylists(ctx,
				spotify.Limit(limit),
				spotify.Offset(offset),
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to list playlists")
		}

		for i := range page.Playlists {
			playlists = append(playlists, convertPlaylist(&page.Playlists[i]))
		}

		if len(page.Playlists) < limit {
			break
		}
		offset += limit
	}

	return playlists, nil
}

// GetPlaylistTracks retrieves all playable tracks from a playlist.
// Episodes, local files and tracks unplayable in the configured market
// are excluded. Accepts a bare ID, a spotify: URI, or an open.spotify.com URL.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistURL string) ([]track.Track, error) {
	playlistID := extractPlaylistID(playlistURL)
	if playlistID == "" {
		return nil, errors.New("invalid playlist URL")
	}

	var tracks []track.Track
	offset := 0
	limit := 100

	for {
		opts := []spotify.RequestOption{
			spotify.Limit(limit),
			spotify.Offset(offset),
		}
		if c.market != "" {
			opts = append(opts, spotify.Market(c.market))
		}

		var page *spotify.PlaylistItemPage
		err := c.retry(func() error {
			p, err := c.client.GetPlaylistItems(ctx, spotify.ID(playlistID), opts...)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get playlist items")
		}

		for _, item := range page.Items {
			// item.Track.Track is nil for episodes
			t := item.Track.Track
			if t == nil || t.ID == "" || item.IsLocal {
				continue
			}
			if t.IsPlayable != nil && !*t.IsPlayable {
				continue
			}
			tracks = append(tracks, c.convertTrack(t))
		}

		if len(page.Items) < limit {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// Play starts playback of the given track URIs on the user's device.
// The active device wins; otherwise the first unrestricted device is
// used. ErrNoActiveDevice is returned when neither exists.
func (c *Client) Play(ctx context.Context, uris []string) error {
	if len(uris) == 0 {
		return errors.New("no track URIs given")
	}

	var devices []spotify.PlayerDevice
	err := c.retry(func() error {
		d, err := c.client.PlayerDevices(ctx)
		if err != nil {
			return err
		}
		devices = d
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to list playback devices")
	}

	deviceID, ok := pickDevice(devices)
	if !ok {
		return ErrNoActiveDevice
	}

	// Normalize bare IDs and web URLs into spotify:track: URIs.
	spotifyURIs := make([]spotify.URI, len(uris))
	for i, u := range uris {
		spotifyURIs[i] = spotify.URI("spotify:track:" + extractTrackID(u))
	}

	playOpts := &spotify.PlayOptions{
		DeviceID: &deviceID,
		URIs:     spotifyURIs,
	}
	err = c.retry(func() error {
		return c.client.PlayOpt(ctx, playOpts)
	})
	if err != nil {
		return errors.Wrap(err, "failed to start playback")
	}

	return nil
}

// pickDevice chooses the active device, falling back to the first
// unrestricted one.
func pickDevice(devices []spotify.PlayerDevice) (spotify.ID, bool) {
	for _, d := range devices {
		if d.Active {
			return d.ID, true
		}
	}
	for _, d := range devices {
		if !d.Restricted {
			return d.ID, true
		}
	}
	return "", false
}

// convertTrack converts a Spotify FullTrack to the domain Track.
func (c *Client) convertTrack(t *spotify.FullTrack) track.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	return track.Track{
		ID:       string(t.ID),
		URI:      string(t.URI),
		Name:     t.Name,
		Artists:  artists,
		Album:    t.Album.Name,
		Duration: time.Duration(t.Duration) * time.Millisecond,
		URL:      trackURL(string(t.ID)),
	}
}

// convertPlaylist converts a Spotify SimplePlaylist to the domain Playlist.
func convertPlaylist(p *spotify.SimplePlaylist) playlist.Playlist {
	return playlist.Playlist{
		ID:         string(p.ID),
		Name:       p.Name,
		Owner:      p.Owner.DisplayName,
		URL:        p.ExternalURLs["spotify"],
		TrackTotal: int(p.Tracks.Total),
	}
}

// trackURL returns the Spotify web URL for a track.
func trackURL(trackID string) string {
	return fmt.Sprintf("https://open.spotify.com/track/%s", trackID)
}

// retry retries an operation with linear backoff.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractPlaylistID extracts the playlist ID from a Spotify playlist URL or URI.
func extractPlaylistID(input string) string {
	input = strings.TrimSpace(input)
	// Handle Spotify URI format: spotify:playlist:PLAYLIST_ID
	if strings.HasPrefix(input, "spotify:playlist:") {
		return strings.TrimPrefix(input, "spotify:playlist:")
	}

	// Handle URL format: https://open.spotify.com/playlist/PLAYLIST_ID or https://open.spotify.com/intl-XX/playlist/PLAYLIST_ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/playlist/") {
		parts := strings.Split(input, "/playlist/")
		if len(parts) >= 2 {
			// Remove query parameters and trailing slashes
			id := strings.Split(parts[len(parts)-1], "?")[0]
			id = strings.TrimRight(id, "/")
			return id
		}
	}

	// Assume it's already a playlist ID
	return input
}

// extractTrackID extracts the track ID from a Spotify track URL or URI.
func extractTrackID(input string) string {
	input = strings.TrimSpace(input)
	// Handle Spotify URI format: spotify:track:TRACK_ID
	if strings.HasPrefix(input, "spotify:track:") {
		return strings.TrimPrefix(input, "spotify:track:")
	}

	// Handle URL format: https://open.spotify.com/track/TRACK_ID or https://open.spotify.com/intl-XX/track/TRACK_ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/track/") {
		parts := strings.Split(input, "/track/")
		if len(parts) >= 2 {
			// Remove query parameters and trailing slashes
			id := strings.Split(parts[len(parts)-1], "?")[0]
			id = strings.TrimRight(id, "/")
			return id
		}
	}

	// Assume it's already a track ID
	return input
}
