package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"doppel/internal/catalog"
	"doppel/internal/config"
	"doppel/internal/eventbus"
	"doppel/internal/launcher"
	"doppel/internal/matcher"
	"doppel/internal/ui"
)

// logRetention is how long daily log files are kept
const logRetention = 7 * 24 * time.Hour

func main() {
	// Parse command line arguments
	var localOnly bool
	flag.BoolVar(&localOnly, "local", false, "Skip the remote catalog refresh")
	flag.Parse()

	// Set up logging to a daily file
	logPath := setupLogging()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Create event bus
	bus := eventbus.New()

	// Load configuration with event bus support
	configSvc := config.NewConfigServiceWithBus(bus)
	cfg, err := configSvc.Load()
	if err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}
	if localOnly {
		cfg.LocalOnly = true
	}

	// Initialize services
	catalogURL := cfg.CatalogURL
	if cfg.LocalOnly {
		catalogURL = ""
	}
	catalogSvc := catalog.NewService(bus, catalog.Options{URL: catalogURL})
	_, unsubLauncher := launcher.NewService(bus) // launcher subscribes to events automatically
	defer unsubLauncher()

	// Create the match engine and start its worker
	engine := matcher.New(matcher.Options{
		TickBudget: time.Duration(cfg.TickBudgetMS) * time.Millisecond,
	})
	go engine.Run()
	defer close(engine.Commands())

	// Create UI model
	log.Printf("Creating UI model...")
	uiModel := ui.NewModel(bus, cfg, engine, logPath)

	// Create Bubble Tea program
	p := tea.NewProgram(uiModel, tea.WithAltScreen())
	uiModel.SetProgram(p)

	// Forward domain events to the UI
	forward := func(e eventbus.DomainEvent) {
		p.Send(ui.EventMsg{Event: e})
	}
	bus.Subscribe(eventbus.EventGamesLoaded, forward)
	bus.Subscribe(eventbus.EventGamesRefreshed, forward)
	bus.Subscribe(eventbus.EventRefreshFailed, forward)
	bus.Subscribe(eventbus.EventLaunchStarted, forward)
	bus.Subscribe(eventbus.EventError, forward)

	// Remote refreshes run off the UI goroutine
	bus.Subscribe(eventbus.EventRefreshRequested, func(eventbus.DomainEvent) {
		if cfg.LocalOnly {
			bus.Publish(eventbus.RefreshFailedEvent{Err: fmt.Errorf("running with --local")})
			return
		}
		_, _ = catalogSvc.Refresh(ctx)
	})

	// Forward ranking snapshots to the UI
	go func() {
		for r := range engine.Results() {
			p.Send(ui.ResultsMsg{Results: r})
		}
	}()

	// Load the local catalog and kick off the initial refresh
	catalogSvc.Load()
	if !cfg.LocalOnly {
		go func() {
			_, _ = catalogSvc.Refresh(ctx)
		}()
	}

	// Signal readiness for the e2e harness
	if os.Getenv("DOPPEL_E2E_TEST") == "1" {
		fmt.Println("__READY__")
	}

	// Run the UI
	log.Printf("Starting UI...")
	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	log.Printf("UI exited normally")
}

// setupLogging directs the log package at a daily file and prunes old
// ones. Returns the active log path, or "" when file logging is
// unavailable.
func setupLogging() string {
	dir := logDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Could not create log directory: %v", err)
		return ""
	}

	cleanOldLogs(dir)

	path := filepath.Join(dir, fmt.Sprintf("doppel-%s.log", time.Now().Format("2006-01-02")))
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
		return ""
	}
	log.SetOutput(logFile)
	return path
}

func logDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "."
	}
	return filepath.Join(cacheDir, "doppel", "logs")
}

// cleanOldLogs deletes daily log files past the retention window
func cleanOldLogs(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-logRetention)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "doppel-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				log.Printf("Could not remove old log %s: %v", entry.Name(), err)
			}
		}
	}
}
