package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/neurostream/internal/adapter"
	"github.com/mmcdole/neurostream/internal/adapter/api"
	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/service"
	"github.com/mmcdole/neurostream/internal/store"
	"github.com/mmcdole/neurostream/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

type options struct {
	category    string
	view        string
	configDir   string
	writeConfig bool
	clearCache  bool
}

func main() {
	var (
		showVersion bool
		opts        options
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.category, "type", "", "category to open: movies or games")
	flag.StringVar(&opts.view, "view", "", "initial view: grid or reel")
	flag.StringVar(&opts.configDir, "config", "", "directory containing config.yaml")
	flag.BoolVar(&opts.writeConfig, "write-config", false, "write the effective config to config.yaml and exit")
	flag.BoolVar(&opts.clearCache, "clear-cache", false, "remove the on-disk lookup cache and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("neurostream %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// Load configuration
	var paths []string
	if opts.configDir != "" {
		paths = append(paths, opts.configDir)
	}
	cfg, err := adapter.LoadConfig(paths...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags override the configured defaults
	if opts.category != "" {
		cfg.UI.DefaultCategory = opts.category
	}
	if opts.view != "" {
		cfg.UI.DefaultView = opts.view
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if opts.writeConfig {
		path, err := adapter.SaveConfig(cfg, opts.configDir)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Configuration written to %s\n", path)
		return nil
	}
	if opts.clearCache {
		if err := adapter.ClearCache(cfg); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared")
		return nil
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("neurostream needs an interactive terminal")
	}

	// Setup logger
	logger, closeLog, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
		closeLog = func() error { return nil }
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting neurostream", "version", Version, "server", cfg.Server.URL)

	category, _ := domain.ParseCategory(cfg.UI.DefaultCategory)
	view, _ := tui.ParseViewMode(cfg.UI.DefaultView)

	// Create recommendation API client
	client := api.NewClient(api.Config{
		BaseURL:          cfg.Server.URL,
		Timeout:          cfg.Server.Timeout,
		UserAgent:        "NeuroStream/" + Version,
		FailureThreshold: cfg.Breaker.FailureThreshold,
		BreakerTimeout:   cfg.Breaker.Timeout,
	}, logger)

	// Open the lookup cache (memory only unless cache.dir is set)
	cache, err := store.NewLookupStore(cfg.CacheDir(), cfg.Server.URL, cfg.Cache.TTL)
	if err != nil {
		logger.Warn("disk cache unavailable, using memory", "error", err)
		if cache, err = store.NewLookupStore("", cfg.Server.URL, cfg.Cache.TTL); err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
	}
	defer cache.Close()

	// Create launcher (uses configured player or auto-detects)
	launcher := adapter.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger)

	// Create services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := service.NewFeedController(
		client,
		service.NewRequestTracker(ctx),
		category,
		logger,
		service.WithFetchTimeout(cfg.Server.Timeout),
		service.WithPrefetchThreshold(cfg.Feed.PrefetchThreshold),
	)
	defer feed.Close()

	detailSvc := service.NewDetailService(client, cache, logger)
	trailerSvc := service.NewTrailerService(client, cache, launcher, cfg.Trailer.Rate, cfg.Trailer.Burst, logger)
	defer trailerSvc.Stop()
	suggestSvc := service.NewSuggestService(0)

	// Create TUI model
	model := tui.NewModel(feed, detailSvc, trailerSvc, suggestSvc, tui.Options{
		View:        view,
		GridColumns: cfg.UI.GridColumns,
		Autoplay:    cfg.Reel.Autoplay,
		Version:     Version,
		Logger:      logger,
	})

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	logger.Info("starting TUI", "category", category, "view", view)

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down", "breaker", client.BreakerState())
	return nil
}
