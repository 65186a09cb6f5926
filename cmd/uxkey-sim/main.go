// Command uxkey-sim runs the widget models against a simulated aircraft.
//
// The aircraft is driven by a YAML scenario. Widget state changes are
// printed as they happen and can be inspected from an interactive console.
//
// Usage:
//
//	uxkey-sim [flags]
//
// Flags:
//
//	-scenario string      Scenario file path
//	-prefs string         User preference file (default "uxkey-prefs.json")
//	-speed float          Scenario playback speed (default 1)
//	-camera int           Camera index of the camera widgets
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-trace string         Write the binary event trace to this file
//	-metrics-addr string  Serve Prometheus metrics on this address
//	-interactive          Start the interactive console (default true)
//
// Examples:
//
//	# Replay a flight with the console
//	uxkey-sim -scenario testdata/flight.yaml
//
//	# Replay at 10x speed without console, tracing to a file
//	uxkey-sim -scenario flight.yaml -speed 10 -interactive=false -trace flight.uxlog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aerolens/uxsdk-go/pkg/key"
	"github.com/aerolens/uxsdk-go/pkg/keys"
	uxlog "github.com/aerolens/uxsdk-go/pkg/log"
	"github.com/aerolens/uxsdk-go/pkg/source"
	"github.com/aerolens/uxsdk-go/pkg/source/prefs"
	"github.com/aerolens/uxsdk-go/pkg/source/sim"
	"github.com/aerolens/uxsdk-go/pkg/store"
	"github.com/aerolens/uxsdk-go/pkg/widget"
	"github.com/aerolens/uxsdk-go/pkg/widgets"
)

// Config holds the command configuration.
type Config struct {
	ScenarioFile string
	PrefsFile    string
	Speed        float64
	Camera       int
	LogLevel     string
	TraceFile    string
	MetricsAddr  string
	Interactive  bool
}

var config Config

func init() {
	flag.StringVar(&config.ScenarioFile, "scenario", "", "Scenario file path")
	flag.StringVar(&config.PrefsFile, "prefs", "uxkey-prefs.json", "User preference file")
	flag.Float64Var(&config.Speed, "speed", 1, "Scenario playback speed")
	flag.IntVar(&config.Camera, "camera", 0, "Camera index of the camera widgets")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&config.TraceFile, "trace", "", "Write the binary event trace to this file")
	flag.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	flag.BoolVar(&config.Interactive, "interactive", true, "Start the interactive console")
}

func main() {
	flag.Parse()

	if err := validateConfig(config); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := setupLogging(config.LogLevel, os.Stderr)

	log.Println("UX Key Simulator")
	log.Println("================")

	if err := run(config, logger); err != nil {
		log.Fatal(err)
	}
}

// run drives the app until the console quits, a signal arrives or, without
// the console, the scenario ends. The app is closed on every path.
func run(cfg Config, logger *slog.Logger) error {
	app, err := newApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, app.registry)
	}

	if err := app.Start(); err != nil {
		return fmt.Errorf("failed to set up widgets: %w", err)
	}

	scenarioDone := make(chan error, 1)
	if app.player != nil {
		log.Printf("Scenario: %s (%d steps, %s)", app.scenario.Name, len(app.scenario.Steps), app.scenario.Duration())
		go func() { scenarioDone <- app.player.Run(ctx, cfg.Speed) }()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if cfg.Interactive {
		console, err := NewConsole(app)
		if err != nil {
			return fmt.Errorf("failed to start console: %w", err)
		}
		log.SetOutput(console.Stdout())
		defer log.SetOutput(os.Stderr)
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
		console.Run(ctx, cancel)
	} else {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal: %v", sig)
		case err := <-scenarioDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Scenario stopped: %v", err)
			} else {
				log.Println("Scenario finished")
			}
		}
	}

	log.Println("Shutting down...")
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %g", cfg.Speed)
	}
	if cfg.Camera < 0 {
		return fmt.Errorf("camera index must not be negative, got %d", cfg.Camera)
	}
	if !cfg.Interactive && cfg.ScenarioFile == "" {
		return errors.New("a scenario is required without the interactive console")
	}
	return nil
}

// setupLogging returns the logger handed to the library packages. Debug
// also adds source locations.
func setupLogging(level string, w *os.File) *slog.Logger {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	case "warn":
		log.SetFlags(log.Ltime)
		opts.Level = slog.LevelWarn
	case "error":
		log.SetFlags(log.Ltime)
		opts.Level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Printf("Metrics on http://%s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Metrics server: %v", err)
	}
}

// App wires the store, the sources and the widget models.
type App struct {
	reg      *key.Registry
	device   *sim.Device
	prefs    *prefs.Source
	source   source.Source
	store    *store.Store
	registry *prometheus.Registry
	trace    *uxlog.FileLogger

	scenario *sim.Scenario
	player   *sim.Player

	record *widgets.RecordModel
	aeLock *widgets.AELockModel
	panels []*panel

	closeOnce sync.Once
}

func newApp(cfg Config, logger *slog.Logger) (*App, error) {
	reg := key.NewRegistry()
	if err := keys.RegisterAll(reg); err != nil {
		return nil, err
	}

	p, err := prefs.Open(cfg.PrefsFile, reg, prefs.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	dev := sim.NewDevice(sim.WithLogger(logger), sim.WithWriteLatency(50*time.Millisecond))
	mux := source.NewMux(dev)
	mux.Route(keys.NamespaceUX, p)

	app := &App{reg: reg, device: dev, prefs: p, source: mux, registry: prometheus.NewRegistry()}

	var events uxlog.Logger = uxlog.NewSlogAdapter(logger)
	if cfg.TraceFile != "" {
		app.trace, err = uxlog.NewFileLogger(cfg.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("open trace: %w", err)
		}
		events = uxlog.NewMultiLogger(events, app.trace)
	}

	storeCfg := store.DefaultConfig()
	storeCfg.Logger = logger
	storeCfg.EventLogger = events
	storeCfg.Registerer = app.registry
	app.store = store.New(mux, storeCfg)

	if cfg.ScenarioFile != "" {
		app.scenario, err = sim.LoadScenario(cfg.ScenarioFile)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.player, err = sim.NewPlayer(dev, reg, app.scenario)
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	app.buildPanels(cfg.Camera, widget.WithLogger(logger), widget.WithEventLogger(events))
	return app, nil
}

// Start sets up every widget.
func (a *App) Start() error {
	for _, p := range a.panels {
		if err := p.model.Setup(); err != nil {
			return fmt.Errorf("%s: %w", p.title, err)
		}
	}
	return nil
}

// Close disposes the widgets and closes the store and the trace.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		for _, p := range a.panels {
			p.model.Dispose()
		}
		if a.store != nil {
			_ = a.store.Close()
		}
		if a.trace != nil {
			written, dropped := a.trace.Stats()
			_ = a.trace.Close()
			log.Printf("Trace: %d events written, %d dropped", written, dropped)
		}
	})
}
