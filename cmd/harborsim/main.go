package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/MikeO7/HarborSim/internal/config"
	"github.com/MikeO7/HarborSim/internal/server"
	"github.com/MikeO7/HarborSim/internal/sim"
	"github.com/MikeO7/HarborSim/internal/ui"
	"github.com/MikeO7/HarborSim/pkg/log"
	flag "github.com/spf13/pflag"
)

const version = "0.1.0"

var (
	// commit is injected at build time
	commit = "unknown"
)

type appConfig struct {
	configPath  string
	exec        []string
	serve       bool
	showVersion bool
	logLevel    string
	seed        int64
	seedSet     bool
	addr        string
	storePath   string
	noStore     bool
}

func main() {
	// Panic recovery to ensure logs are flushed and errors captured
	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Sprintf("PANIC: %v\nStack Trace:\n%s", r, debug.Stack()))
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	go handleSignals(ctx, sigChan, cancel)

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string) (appConfig, error) {
	var c appConfig

	fs := flag.NewFlagSet("harborsim", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&c.configPath, "config", "harborsim.yml", "Path to config file")
	fs.StringArrayVarP(&c.exec, "exec", "e", nil, "Run a command and exit (repeatable)")
	fs.BoolVar(&c.serve, "serve", false, "Serve the HTTP and WebSocket API instead of the terminal")
	fs.BoolVar(&c.showVersion, "version", false, "Show version and exit")
	fs.StringVar(&c.logLevel, "log-level", "", "Logging level (debug, info, warn, error)")
	fs.Int64Var(&c.seed, "seed", 0, "Seed for generated IDs and names")
	fs.StringVar(&c.addr, "addr", "", "Override the server listen address")
	fs.StringVar(&c.storePath, "store", "", "Override the snapshot store path (:memory: for none on disk)")
	fs.BoolVar(&c.noStore, "no-store", false, "Disable the snapshot store")

	if err := fs.Parse(args); err != nil {
		return appConfig{}, err
	}
	c.seedSet = fs.Changed("seed")
	return c, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}

	if flags.showVersion {
		fmt.Fprintf(stdout, "HarborSim version %s (commit: %s, %s/%s)\n", version, commit, runtime.GOOS, runtime.GOARCH)
		return 0
	}

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Apply CLI flag overrides
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.seedSet {
		cfg.Simulator.Seed = flags.seed
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.storePath != "" {
		cfg.Store.Path = flags.storePath
	}
	if flags.noStore {
		cfg.Store.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	// The terminal owns stdout; keep log lines off it
	var logOut io.Writer = io.Discard
	switch {
	case flags.serve:
		logOut = stdout
	case len(flags.exec) > 0:
		logOut = stderr
	}
	log.Initialize(log.Config{
		Level:      cfg.Log.Level,
		JSON:       cfg.Log.JSON,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		Output:     logOut,
	})

	log.Infof("HarborSim version %s starting", version)
	log.Infof("Build: commit=%s, os=%s, arch=%s", commit, runtime.GOOS, runtime.GOARCH)

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.ErrorErr("Failed to start simulator", err)
		fmt.Fprintf(stderr, "Failed to start simulator: %v\n", err)
		return 1
	}
	defer a.close()

	switch {
	case len(flags.exec) > 0:
		return execCommands(ctx, a, flags.exec, stdout, stderr)

	case flags.serve:
		srv := server.New(cfg.Server, server.Deps{
			Session:  a.session,
			Bus:      a.bus,
			Progress: a.tracker,
		})
		if err := srv.Run(ctx); err != nil {
			log.ErrorErr("Server error", err)
			return 1
		}

	default:
		if err := ui.Run(ctx, a.session, a.visualizer); err != nil {
			fmt.Fprintf(stderr, "Terminal error: %v\n", err)
			return 1
		}
	}

	log.Info("HarborSim stopped")
	return 0
}

// execCommands runs each command in order and prints its output. The exit
// code is 1 if any command failed.
func execCommands(ctx context.Context, a *app, commands []string, stdout, stderr io.Writer) int {
	code := 0
	for _, raw := range commands {
		r, err := a.session.Submit(ctx, raw)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", raw, err)
			code = 1
			if errors.Is(err, context.Canceled) {
				return code
			}
			continue
		}
		if r.Output != "" {
			fmt.Fprintln(stdout, r.Output)
		}
		if r.Outcome == sim.OutcomeFailure {
			code = 1
		}
	}
	return code
}

// loadConfig loads and merges configuration from file and environment
func loadConfig(path string) (config.Config, error) {
	// Check if config env var is set
	if envPath := os.Getenv("HARBORSIM_CONFIG"); envPath != "" {
		path = envPath
	}

	// Load from file (or use defaults if file doesn't exist)
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return config.Config{}, err
	}

	// Apply environment variable overrides
	cfg.ApplyEnvironmentOverrides()

	return cfg, nil
}
