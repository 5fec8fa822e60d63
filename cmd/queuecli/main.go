// Package main provides the headless queue CLI. It talks to Spotify
// with a refresh token minted by minutemix-auth.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"github.com/minutemix/minutemix/internal/app/queue"
	"github.com/minutemix/minutemix/internal/app/selection"
	"github.com/minutemix/minutemix/internal/domain/track"
	"github.com/minutemix/minutemix/internal/infra/logger"
	"github.com/minutemix/minutemix/internal/infra/spotify"
)

var (
	app          = kingpin.New("minutemix-queue", "Build and play minutemix queues from the terminal")
	clientID     = app.Flag("client-id", "Spotify Client ID").Envar("SPOTIFY_CLIENT_ID").Required().String()
	clientSecret = app.Flag("client-secret", "Spotify Client Secret").Envar("SPOTIFY_CLIENT_SECRET").Required().String()
	refreshToken = app.Flag("refresh-token", "Spotify refresh token (from minutemix-auth)").Envar("SPOTIFY_REFRESH_TOKEN").Required().String()
	market       = app.Flag("market", "Two-letter market code for playability filtering").Envar("SPOTIFY_MARKET").String()
	verbose      = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()

	// playlists command
	playlistsCmd = app.Command("playlists", "List your playlists")

	// build command
	buildCmd      = app.Command("build", "Build a queue and print it")
	buildPlaylist = buildCmd.Arg("playlist", "Playlist ID, URI or URL").Required().String()
	buildMode     = buildCmd.Flag("mode", "Selection mode: shuffle or timedfit").Default("timedfit").String()
	buildMinutes  = buildCmd.Flag("minutes", "Target length in minutes (timedfit)").Default("45").Int()
	buildTrials   = buildCmd.Flag("trials", "Fitting rounds to attempt").Default("10").Int()

	// play command
	playCmd      = app.Command("play", "Build a queue and start it on the active device")
	playPlaylist = playCmd.Arg("playlist", "Playlist ID, URI or URL").Required().String()
	playMode     = playCmd.Flag("mode", "Selection mode: shuffle or timedfit").Default("timedfit").String()
	playMinutes  = playCmd.Flag("minutes", "Target length in minutes (timedfit)").Default("45").Int()
	playTrials   = playCmd.Flag("trials", "Fitting rounds to attempt").Default("10").Int()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Keep service logs off the terminal unless asked for.
	level := "warn"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{Level: level, Output: "stderr"}); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client, err := spotify.New(ctx, spotify.Config{
		ClientID:     *clientID,
		ClientSecret: *clientSecret,
		RefreshToken: *refreshToken,
		Market:       *market,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	svc := queue.New(client, client, queue.Config{})

	switch command {
	case playlistsCmd.FullCommand():
		listPlaylists(ctx, client)
	case buildCmd.FullCommand():
		res := build(ctx, svc, *buildPlaylist, *buildMode, *buildMinutes, *buildTrials)
		printQueue(res)
	case playCmd.FullCommand():
		res := build(ctx, svc, *playPlaylist, *playMode, *playMinutes, *playTrials)
		printQueue(res)
		play(ctx, svc, res)
	}
}

func listPlaylists(ctx context.Context, client *spotify.Client) {
	playlists, err := client.ListPlaylists(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(playlists) == 0 {
		fmt.Println("No playlists found.")
		return
	}
	for _, p := range playlists {
		fmt.Printf("%-24s %4d tracks  %s\n", p.ID, p.TrackTotal, p.Name)
	}
}

func build(ctx context.Context, svc *queue.Service, playlistRef, modeStr string, minutes, trials int) selection.Result {
	mode, err := queue.ParseMode(modeStr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	req := queue.Request{PlaylistID: playlistRef, Mode: mode, Trials: trials}
	if mode == queue.ModeTimedFit {
		req.Target = time.Duration(minutes) * time.Minute
	}

	res, err := svc.Build(ctx, req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return res
}

func printQueue(res selection.Result) {
	for i, t := range res.Tracks {
		secs := int(t.Duration / time.Second)
		fmt.Printf("%2d. %s - %s [%d:%02d]\n", i+1, t.Name, strings.Join(t.Artists, ", "), secs/60, secs%60)
	}

	fmt.Printf("\n%d tracks, %dm %02ds", len(res.Tracks), res.Minutes(), res.Seconds())
	if res.Trials > 0 {
		fmt.Printf(" (best of %d rounds)", res.Trials)
	}
	fmt.Println()
}

func play(ctx context.Context, svc *queue.Service, res selection.Result) {
	if err := svc.Send(ctx, track.URIs(res.Tracks)); err != nil {
		if errors.Is(err, spotify.ErrNoActiveDevice) {
			fmt.Println("\nNo active device. Open Spotify on one of your devices and try again.")
		} else {
			fmt.Printf("\nError: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Println("\nPlaying on your active device.")
}
