// Package main provides the playlistbox dev CLI. It plays a playlist file
// through the in-memory player with simulated durations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playlistbox/internal/app/autoadvance"
	"github.com/osa030/playlistbox/internal/app/event"
	"github.com/osa030/playlistbox/internal/app/playback"
	"github.com/osa030/playlistbox/internal/app/playlist"
	"github.com/osa030/playlistbox/internal/domain/item"
	"github.com/osa030/playlistbox/internal/infra/clock"
	"github.com/osa030/playlistbox/internal/infra/config"
	"github.com/osa030/playlistbox/internal/infra/logger"
	"github.com/osa030/playlistbox/internal/infra/memplayer"
	"github.com/osa030/playlistbox/internal/infra/metrics"
	"github.com/osa030/playlistbox/internal/infra/playlistfile"
)

var (
	app        = kingpin.New("playlistbox", "playlistbox playlist player")
	configPath = app.Flag("config", "Path to config file").Default("config/playlistbox.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	runCmd = app.Command("run", "Play the configured playlist (default)").Default()

	validateCmd  = app.Command("validate", "Validate a playlist file and exit")
	validateFile = validateCmd.Flag("file", "Playlist file (default: from config)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	closeLog, err := logger.Init(loggerConfig(config.LogConfig{}))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if command == validateCmd.FullCommand() && *validateFile != "" {
		if err := validate(*validateFile); err != nil {
			zlog.Error().Msgf("Validation failed: %v", err)
			os.Exit(1)
		}
		return
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if *logfile == "" && !*verbose {
		closeCfgLog, err := logger.Init(loggerConfig(cfg.Log))
		if err != nil {
			zlog.Fatal().Msgf("Failed to initialize logger: %v", err)
		}
		defer closeCfgLog()
	}

	switch command {
	case validateCmd.FullCommand():
		err = validate(cfg.Playlist.File)
	case runCmd.FullCommand():
		err = run(cfg)
	}
	if err != nil {
		zlog.Error().Msgf("playlistbox: %v", err)
		os.Exit(1)
	}
}

// loggerConfig applies the command-line flags on top of c.
func loggerConfig(c config.LogConfig) logger.Config {
	out := logger.Config{Level: c.Level, Output: c.Output}
	if *verbose {
		out.Level = "debug"
	}
	if *logfile != "" {
		out.Output = *logfile
	}
	return out
}

// validate reports how many items of the playlist file are valid.
func validate(path string) error {
	raw, err := playlistfile.Load(path)
	if err != nil {
		return err
	}

	valid := 0
	for i, r := range raw {
		it, err := item.Validate(r, zlog.Logger)
		if err != nil {
			zlog.Warn().Msgf("item %d rejected: %v", i, err)
			continue
		}
		valid++
		zlog.Info().Msgf("item %d: title=%q sources=%d", i, it.Title(), len(it.Sources))
	}

	zlog.Info().Msgf("%d of %d items are valid", valid, len(raw))
	if valid == 0 && len(raw) > 0 {
		return playlist.ErrNoValidItems
	}
	return nil
}

// run plays the configured playlist until it ends or a signal arrives.
// Every player, timer and controller call happens on this goroutine.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	loop := make(chan func(), 16)
	clk := clock.NewReal(func(f func()) {
		select {
		case loop <- f:
		case <-ctx.Done():
		}
	})

	collector := metrics.New()

	raw, err := playlistfile.Load(cfg.Playlist.File)
	if err != nil {
		return err
	}
	pl := playlist.New(playlist.WithObserver(collector))
	if _, err := pl.Set(raw); err != nil {
		return err
	}
	if cfg.Playlist.Shuffle {
		pl.Shuffle(playlist.ShuffleOptions{All: true})
	}
	pl.SetRepeat(cfg.Playlist.Repeat)

	player := memplayer.New(clk)
	ctrl, err := playback.NewController(player,
		playback.WithPosterMode(cfg.Player.PosterMode),
		playback.WithObserver(collector),
	)
	if err != nil {
		return err
	}
	if err := ctrl.LoadPlaylist(pl); err != nil {
		return err
	}

	defaultDuration := time.Duration(cfg.Player.DefaultDurationSec * float64(time.Second))
	player.On(playback.EventItem, func(e event.Event) {
		it := e.Payload.(item.Item)
		d, ok := it.Duration()
		if !ok {
			d = defaultDuration
		}
		player.SetDuration(d)
		zlog.Info().Msgf("Now playing [%d/%d] %q (%s)", pl.CurrentIndex()+1, pl.Len(), it.Title(), d)
	})
	player.On(playback.EventPlaylistEnded, func(event.Event) {
		zlog.Info().Msg("Playlist ended")
		cancel()
	})
	player.On(autoadvance.EventEnded, func(event.Event) {
		if !cfg.AutoAdvance.Enabled {
			zlog.Info().Msg("Item ended, auto-advance is disabled")
			cancel()
		}
	})
	logEvents(player)

	if cfg.AutoAdvance.Enabled {
		ctrl.AutoAdvance(cfg.AutoAdvance.DelaySec)
	}

	if err := ctrl.LoadItemAt(cfg.Playlist.StartIndex); err != nil {
		return err
	}
	player.Play()

	for running := true; running; {
		select {
		case f := <-loop:
			f()
		case sig := <-sigCh:
			zlog.Info().Msgf("Received signal %v, stopping", sig)
			running = false
		case <-ctx.Done():
			running = false
		}
	}

	player.Dispose()
	printTotals(collector)
	return nil
}

// logEvents logs the playlist events re-emitted on the player.
func logEvents(p *memplayer.Player) {
	for _, t := range []event.Type{playlist.EventChange, playlist.EventAdd, playlist.EventRemove, playlist.EventSorted, playback.EventBeforeItem} {
		p.On(t, func(e event.Event) {
			zlog.Debug().Msgf("event: %s", e.Type)
		})
	}
}

func printTotals(c *metrics.Collector) {
	totals, err := c.Totals()
	if err != nil {
		zlog.Warn().Msgf("Failed to gather metrics: %v", err)
		return
	}
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("%s %g\n", name, totals[name])
	}
}
