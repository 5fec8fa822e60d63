// Package web serves the browser UI: Spotify login, playlist browsing,
// queue building and playback handoff.
package web

import (
	"bytes"
	"context"
	"net/http"
	"sort"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/minutemix/minutemix/internal/app/queue"
	"github.com/minutemix/minutemix/internal/app/session"
	"github.com/minutemix/minutemix/internal/domain/playlist"
	"github.com/minutemix/minutemix/internal/domain/track"
	"github.com/minutemix/minutemix/internal/infra/spotify"
	"github.com/minutemix/minutemix/internal/infra/store"
)

const (
	sessionCookie = "minutemix_session"
	stateCookie   = "oauth_state"
)

// musicClient is the slice of the Spotify client the handlers use.
type musicClient interface {
	CurrentUser(ctx context.Context) (*spotify.User, error)
	ListPlaylists(ctx context.Context) ([]playlist.Playlist, error)
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]track.Track, error)
	Play(ctx context.Context, uris []string) error
	Token() (*oauth2.Token, error)
}

// Config carries the parts of the application config the web layer uses.
type Config struct {
	CookieSecret string
	Market       string
	Trials       int
	Presets      map[string]queue.Preset
	Cache        *queue.TrackCache
}

// Server handles the web UI routes. Spotify clients are built per
// request from the session token; the track cache is shared.
type Server struct {
	auth      *spotifyauth.Authenticator
	sessions  *session.Manager
	store     *store.Store
	metrics   *Metrics
	cache     *queue.TrackCache
	presets   map[string]queue.Preset
	signKey   []byte
	trials    int
	newClient func(ctx context.Context, tok *oauth2.Token) musicClient
}

// New creates the web server.
func New(auth *spotifyauth.Authenticator, sessions *session.Manager, st *store.Store, metrics *Metrics, cfg Config) *Server {
	return &Server{
		auth:     auth,
		sessions: sessions,
		store:    st,
		metrics:  metrics,
		cache:    cfg.Cache,
		presets:  cfg.Presets,
		signKey:  []byte(cfg.CookieSecret),
		trials:   cfg.Trials,
		newClient: func(ctx context.Context, tok *oauth2.Token) musicClient {
			return spotify.NewWithToken(ctx, auth, tok, cfg.Market)
		},
	}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/callback", s.handleCallback)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/playlists", s.handlePlaylists)
	mux.HandleFunc("/queue", s.handleQueue)
	mux.HandleFunc("/play", s.handlePlay)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// service builds the per-request queue service around a client.
func (s *Server) service(c musicClient) *queue.Service {
	return queue.New(c, c, queue.Config{Trials: s.trials, Cache: s.cache})
}

// persistToken writes the client's current token back to the session so
// a refresh performed during the request survives a server restart.
func (s *Server) persistToken(ctx context.Context, id string, c musicClient) {
	tok, err := c.Token()
	if err != nil {
		zlog.Debug().Err(err).Msg("Could not read client token")
		return
	}
	if err := s.sessions.Refresh(ctx, id, tok); err != nil {
		zlog.Warn().Err(err).Msg("Failed to persist refreshed token")
	}
}

// sessionID returns the verified session ID from the request cookie.
func (s *Server) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	return verifyValue(c.Value, s.signKey)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    signValue(id, s.signKey),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Path: "/", MaxAge: -1})
}

// requireSession resolves the request's session and token. On failure
// it writes the response and returns ok=false.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (string, *oauth2.Token, bool) {
	id, ok := s.sessionID(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return "", nil, false
	}
	tok, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			clearCookie(w, sessionCookie)
			http.Redirect(w, r, "/", http.StatusFound)
			return "", nil, false
		}
		zlog.Error().Err(err).Msg("Failed to load session")
		http.Error(w, "session lookup failed", http.StatusInternalServerError)
		return "", nil, false
	}
	return id, tok, true
}

// presetNames returns the configured preset names in stable order.
func (s *Server) presetNames() []string {
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// render executes a page template. Output is buffered so a template
// error can still produce a clean 500.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		zlog.Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// message renders a single-card notice page.
func (s *Server) message(w http.ResponseWriter, status int, title, detail string) {
	s.render(w, status, "message", struct{ Title, Detail string }{title, detail})
}
