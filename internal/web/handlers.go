package web

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/minutemix/minutemix/internal/app/queue"
	"github.com/minutemix/minutemix/internal/domain/playlist"
	"github.com/minutemix/minutemix/internal/domain/track"
	"github.com/minutemix/minutemix/internal/infra/spotify"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	_, loggedIn := s.sessionID(r)
	s.render(w, http.StatusOK, "home", struct{ LoggedIn bool }{loggedIn})
}

// handleLogin starts the OAuth flow with a signed state value stored in
// a cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		http.Error(w, "failed to generate state", http.StatusInternalServerError)
		return
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    signValue(state, s.signKey),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.auth.AuthURL(state), http.StatusFound)
}

// handleCallback completes the OAuth flow, stores the token under a new
// session and sets the session cookie.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(stateCookie)
	if err != nil {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	state, ok := verifyValue(c.Value, s.signKey)
	if !ok || r.URL.Query().Get("state") != state {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	clearCookie(w, stateCookie)

	tok, err := s.auth.Token(r.Context(), state, r)
	if err != nil {
		zlog.Warn().Err(err).Msg("Authorization code exchange failed")
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	id, err := s.sessions.Create(r.Context(), tok)
	if err != nil {
		zlog.Error().Err(err).Msg("Failed to create session")
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	s.setSessionCookie(w, r, id)
	s.metrics.SessionOpened()
	http.Redirect(w, r, "/playlists", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if id, ok := s.sessionID(r); ok {
		if err := s.sessions.Delete(r.Context(), id); err != nil {
			zlog.Warn().Err(err).Msg("Failed to delete session")
		} else {
			s.metrics.SessionClosed()
		}
	}
	clearCookie(w, sessionCookie)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	id, tok, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	client := s.newClient(ctx, tok)

	user, err := client.CurrentUser(ctx)
	if err != nil {
		// The stored token no longer works, e.g. access was revoked.
		zlog.Warn().Err(err).Msg("Spotify rejected the stored session")
		if err := s.sessions.Delete(ctx, id); err != nil {
			zlog.Warn().Err(err).Msg("Failed to delete session")
		}
		clearCookie(w, sessionCookie)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	playlists, err := client.ListPlaylists(ctx)
	if err != nil {
		zlog.Error().Err(err).Msg("Failed to list playlists")
		s.message(w, http.StatusBadGateway, "Spotify unavailable",
			"Could not load your playlists. Try again in a moment.")
		return
	}
	s.persistToken(ctx, id, client)

	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	s.render(w, http.StatusOK, "playlists", struct {
		User      string
		Playlists []playlist.Playlist
		Presets   []string
	}{name, playlists, s.presetNames()})
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, tok, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	playlistID := r.FormValue("playlist_id")
	if playlistID == "" {
		http.Error(w, "playlist_id is required", http.StatusBadRequest)
		return
	}
	req, err := s.queueRequest(r, playlistID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	client := s.newClient(ctx, tok)
	svc := s.service(client)

	start := time.Now()
	res, err := svc.Build(ctx, req)
	switch {
	case errors.Is(err, queue.ErrNoTracks):
		s.message(w, http.StatusOK, "Nothing to queue", "This playlist has no playable tracks.")
		return
	case errors.Is(err, queue.ErrTarget):
		http.Error(w, "minutes must be positive for timed fit", http.StatusBadRequest)
		return
	case err != nil:
		zlog.Error().Err(err).Str("playlist_id", playlistID).Msg("Queue build failed")
		s.message(w, http.StatusBadGateway, "Spotify unavailable",
			"Could not build the queue. Try again in a moment.")
		return
	}
	s.metrics.RecordBuild(string(req.Mode), time.Since(start))
	s.persistToken(ctx, id, client)

	name := r.FormValue("playlist_name")
	if name == "" {
		name = playlistID
	}
	s.render(w, http.StatusOK, "result", struct {
		Playlist string
		Mode     string
		Tracks   []track.Track
		Minutes  int
		Seconds  int
		Trials   int
		URIs     []string
	}{name, string(req.Mode), res.Tracks, res.Minutes(), res.Seconds(), res.Trials, track.URIs(res.Tracks)})
}

// queueRequest builds a queue request from the submitted form. A preset
// wins over the individual mode fields when one is selected.
func (s *Server) queueRequest(r *http.Request, playlistID string) (queue.Request, error) {
	if name := r.FormValue("preset"); name != "" {
		preset, ok := s.presets[name]
		if !ok {
			return queue.Request{}, errors.Newf("unknown preset %q", name)
		}
		return preset.Request(playlistID), nil
	}

	mode, err := queue.ParseMode(r.FormValue("mode"))
	if err != nil {
		return queue.Request{}, err
	}

	req := queue.Request{PlaylistID: playlistID, Mode: mode}
	if mode == queue.ModeTimedFit {
		minutes, err := strconv.Atoi(r.FormValue("minutes"))
		if err != nil || minutes < 1 {
			return queue.Request{}, errors.New("minutes must be a positive number")
		}
		req.Target = time.Duration(minutes) * time.Minute
	}
	if v := r.FormValue("trials"); v != "" {
		trials, err := strconv.Atoi(v)
		if err != nil || trials < 1 {
			return queue.Request{}, errors.New("trials must be a positive number")
		}
		req.Trials = trials
	}
	return req, nil
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, tok, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	uris := r.PostForm["uri"]

	ctx := r.Context()
	client := s.newClient(ctx, tok)
	svc := s.service(client)

	err := svc.Send(ctx, uris)
	switch {
	case errors.Is(err, queue.ErrNoTracks):
		http.Error(w, "queue is empty", http.StatusBadRequest)
		return
	case errors.Is(err, spotify.ErrNoActiveDevice):
		s.metrics.RecordPlayFailure()
		s.message(w, http.StatusConflict, "No active device",
			"Open Spotify on one of your devices, start or resume playback once, then try again.")
		return
	case err != nil:
		s.metrics.RecordPlayFailure()
		zlog.Error().Err(err).Msg("Playback handoff failed")
		s.message(w, http.StatusBadGateway, "Playback failed",
			"Spotify did not accept the queue. Try again in a moment.")
		return
	}
	s.metrics.RecordPlay()
	s.persistToken(ctx, id, client)
	s.message(w, http.StatusOK, "Playing",
		fmt.Sprintf("Sent %d tracks to your active device.", len(uris)))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, http.StatusOK, "ok")
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		zlog.Warn().Err(err).Msg("Readiness check failed")
		writeJSONStatus(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	writeJSONStatus(w, http.StatusOK, "ready")
}

func writeJSONStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q,"service":"minutemix"}`, status)
}
