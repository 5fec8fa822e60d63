// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/minutemix/minutemix/internal/app/queue"
	"github.com/minutemix/minutemix/internal/app/session"
	"github.com/minutemix/minutemix/internal/infra/config"
	"github.com/minutemix/minutemix/internal/infra/logger"
	"github.com/minutemix/minutemix/internal/infra/spotify"
	"github.com/minutemix/minutemix/internal/infra/store"
	"github.com/minutemix/minutemix/internal/web"
)

// purgeInterval is how often idle sessions are swept from the store.
const purgeInterval = time.Hour

var (
	app        = kingpin.New("minutemix-server", "minutemix web server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config from %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	// The config decides level and output; flags win when given.
	loggerConfig := logger.Config{
		Level:  cfg.Log.Level,
		Output: cfg.Log.Output,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loaded config from %s", *configPath)

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer st.Close()

	presets, err := queue.ParsePresets(cfg.Queue.Presets)
	if err != nil {
		return fmt.Errorf("invalid preset config: %w", err)
	}

	auth := spotify.NewAuthenticator(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.RedirectURL())
	sessions := session.New(st)

	srv := web.New(auth, sessions, st, web.NewMetrics(), web.Config{
		CookieSecret: cfg.Server.CookieSecret,
		Market:       cfg.Spotify.Market,
		Trials:       cfg.Queue.Trials,
		Presets:      presets,
		Cache:        queue.NewTrackCache(cfg.Queue.CacheSize, cfg.CacheTTL()),
	})

	// h2c allows HTTP/2 behind a TLS-terminating proxy.
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(srv.Handler(), &http2.Server{}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zlog.Info().Msgf("Starting server: addr=%s base_url=%s", cfg.Server.Addr, cfg.Server.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := sessions.PurgeLoop(gCtx, purgeInterval, cfg.SessionTTL())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gCtx.Done()
		zlog.Info().Msg("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	zlog.Info().Msg("Server stopped")
	return nil
}
