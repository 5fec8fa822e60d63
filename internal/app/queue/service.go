// Package queue turns a playlist into a playback queue: fetch the
// tracks, run the selection engine, hand the result to a player.
package queue

import (
	"context"
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/minutemix/minutemix/internal/app/selection"
	"github.com/minutemix/minutemix/internal/domain/track"
)

// DefaultTrials is the fitting trial count used when neither the
// request nor the service config names one.
const DefaultTrials = 10

var (
	// ErrNoTracks is returned when the playlist has no playable tracks.
	ErrNoTracks = errors.New("playlist has no playable tracks")
	// ErrTarget is returned when timed mode is requested without a
	// positive duration target.
	ErrTarget = errors.New("target duration must be positive")
)

// TrackSource supplies the playable contents of a playlist.
type TrackSource interface {
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]track.Track, error)
}

// Player receives the generated queue for playback.
type Player interface {
	Play(ctx context.Context, uris []string) error
}

// Request describes one queue build.
type Request struct {
	PlaylistID string
	Mode       Mode
	Target     time.Duration // required for ModeTimedFit
	Trials     int           // 0 means the configured default
}

// Config tunes a Service.
type Config struct {
	Trials int         // default fitting trials when a request has none
	Cache  *TrackCache // optional shared playlist cache
}

// Service builds play queues from playlists. A Service is cheap and is
// built per authenticated client; the cache may be shared between them.
type Service struct {
	source TrackSource
	player Player
	trials int
	cache  *TrackCache
}

// New creates a queue service around a track source and a player.
func New(source TrackSource, player Player, cfg Config) *Service {
	trials := cfg.Trials
	if trials < 1 {
		trials = DefaultTrials
	}
	return &Service{
		source: source,
		player: player,
		trials: trials,
		cache:  cfg.Cache,
	}
}

// Build fetches the playlist and generates a queue per the request.
// Each build draws from a freshly seeded random source.
func (s *Service) Build(ctx context.Context, req Request) (selection.Result, error) {
	if req.Mode == ModeTimedFit && req.Target <= 0 {
		return selection.Result{}, errors.Wrapf(ErrTarget, "got %s", req.Target)
	}

	tracks, err := s.tracks(ctx, req.PlaylistID)
	if err != nil {
		return selection.Result{}, err
	}
	if len(tracks) == 0 {
		return selection.Result{}, ErrNoTracks
	}

	trials := req.Trials
	if trials < 1 {
		trials = s.trials
	}

	rng := rand.New(rand.NewSource(randomSeed()))
	start := time.Now()

	var res selection.Result
	switch req.Mode {
	case ModeShuffle:
		picked := selection.Shuffle(tracks, rng)
		res = selection.Result{Tracks: picked, Total: track.TotalDuration(picked)}
	case ModeTimedFit:
		res, err = selection.Fit(tracks, req.Target, trials, rng)
		if err != nil {
			return selection.Result{}, err
		}
	default:
		return selection.Result{}, errors.Wrapf(ErrUnknownMode, "%q", req.Mode)
	}

	zlog.Info().
		Str("playlist_id", req.PlaylistID).
		Str("mode", string(req.Mode)).
		Int("available", len(tracks)).
		Int("chosen", len(res.Tracks)).
		Dur("total", res.Total).
		Dur("elapsed", time.Since(start)).
		Msg("Queue built")

	return res, nil
}

// Send forwards the chosen URIs to the player.
func (s *Service) Send(ctx context.Context, uris []string) error {
	if len(uris) == 0 {
		return ErrNoTracks
	}
	return s.player.Play(ctx, uris)
}

// tracks loads playlist contents through the shared cache when present.
func (s *Service) tracks(ctx context.Context, playlistID string) ([]track.Track, error) {
	if s.cache != nil {
		if ts, ok := s.cache.get(playlistID); ok {
			zlog.Debug().Str("playlist_id", playlistID).Msg("Track cache hit")
			return ts, nil
		}
	}

	ts, err := s.source.GetPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch playlist tracks")
	}
	if s.cache != nil && len(ts) > 0 {
		s.cache.put(playlistID, ts)
	}
	return ts, nil
}

// randomSeed seeds each build from crypto/rand, falling back to the
// clock when the system source fails.
func randomSeed() int64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}
