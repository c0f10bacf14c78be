package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/yegors/flightboard/internal/board"
	"github.com/yegors/flightboard/internal/config"
	"github.com/yegors/flightboard/internal/display"
	"github.com/yegors/flightboard/internal/kiosk"
	"github.com/yegors/flightboard/internal/refdata"
	"github.com/yegors/flightboard/internal/vatsim"
	"github.com/yegors/flightboard/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

// defaultLogFile keeps log output off the terminal the board is drawn on
const defaultLogFile = "flightboard.log"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	airport := flag.String("airport", "", "ICAO code of the airport to display (overrides config)")
	direction := flag.String("direction", "", "departure or arrival (overrides config)")
	rotate := flag.Bool("rotate", false, "Cycle pages and directions automatically (overrides config)")
	once := flag.Bool("once", false, "Build the board once, print it as JSON and exit")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(Version)
		return
	}

	// Load configuration with fallback logic; flags alone are enough to run
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		if *configPath != "" || *airport == "" {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	if *airport != "" {
		cfg.Board.Airport = *airport
	}
	if *direction != "" {
		cfg.Board.Direction = *direction
	}
	if *rotate {
		cfg.Rotation.Enabled = true
	}
	if !*once && cfg.Logging.File == "" {
		cfg.Logging.File = defaultLogFile
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting flight board",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
		logger.String("airport", cfg.Board.Airport),
		logger.String("direction", cfg.Board.Direction),
	)

	// Feed client and reference data
	client := vatsim.NewClient(
		cfg.Feed.URL,
		time.Duration(cfg.Feed.RequestTimeoutSecs)*time.Second,
		cfg.Feed.UserAgent+"/"+Version,
		log,
	)
	loader := refdata.NewLoader(cfg.Reference.AirportsSource, cfg.Reference.AirlinesSource, client, log)

	// Validate already normalised the direction
	dir, _ := board.ParseDirection(cfg.Board.Direction)

	svc := kiosk.NewService(kiosk.Config{
		Airport:         cfg.Board.Airport,
		Direction:       dir,
		Locale:          cfg.Board.Locale,
		PageSize:        cfg.Board.PageSize,
		FetchInterval:   time.Duration(cfg.Feed.FetchIntervalSecs) * time.Second,
		Rotate:          cfg.Rotation.Enabled,
		AdvanceInterval: time.Duration(cfg.Rotation.AdvanceIntervalSecs) * time.Second,
		TickInterval:    time.Duration(cfg.Rotation.TickIntervalSecs) * time.Second,
	}, client, loader, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		if err := printOnce(ctx, svc); err != nil {
			log.Error("Failed to build board", logger.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Cancel on interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Start UI
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorReset).
		Foreground(tcell.ColorReset))

	if err := svc.Start(ctx); err != nil {
		log.Error("Failed to start kiosk service", logger.Error(err))
		return
	}

	disp := display.New(screen, svc, display.Options{
		Title:     cfg.Display.Title,
		ShowClock: cfg.Display.ShowClock,
		PageSize:  cfg.Board.PageSize,
	}, log)
	if err := disp.Run(ctx); err != nil {
		log.Error("Display stopped with error", logger.Error(err))
	}

	log.Info("Stopping kiosk service...")
	svc.Stop()
	log.Info("Kiosk service stats", logger.Any("stats", svc.GetStats()))
	log.Info("Flight board stopped")
}

// printOnce builds a single board and writes it to stdout as JSON
func printOnce(ctx context.Context, svc *kiosk.Service) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := svc.Refresh(ctx); err != nil {
		return err
	}

	b := svc.Board()
	if b == nil {
		return board.ErrNoSnapshot
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}
