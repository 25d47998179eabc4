// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

// Command deckhand serves a directory of remote definitions to devices
// on the local network. Each remote runs its control script in an
// isolated runtime; clients reach them through a token-protected web
// interface whose login URL is printed (and rendered as a QR code) at
// startup.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/deckhand-dev/deckhand"
	"github.com/deckhand-dev/deckhand/httpd"
	"github.com/deckhand-dev/deckhand/input"
	"github.com/deckhand-dev/deckhand/loader"
	"github.com/deckhand-dev/deckhand/script"
	"github.com/deckhand-dev/deckhand/store"
)

type config struct {
	Listen    string `yaml:"listen"`
	RemoteDir string `yaml:"remote_dir"`
	Database  string `yaml:"database"`
	Token     string `yaml:"token"`
	Shell     bool   `yaml:"shell"`
	ShellPath string `yaml:"shell_path"`
	LogLevel  string `yaml:"log_level"`
	QueueSize int    `yaml:"queue_size"`
	NoQR      bool   `yaml:"no_qr"`
}

func defaultConfig() config {
	return config{
		Listen:    ":9510",
		RemoteDir: "remotes",
		Database:  "deckhand.db",
		LogLevel:  "info",
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "deckhand:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := defaultConfig()

	flags := pflag.NewFlagSet("deckhand", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to a YAML config file")
	flags.StringVar(&cfg.Listen, "listen", cfg.Listen, "listen address")
	flags.StringVar(&cfg.RemoteDir, "remotes", cfg.RemoteDir, "directory holding remote definitions")
	flags.StringVar(&cfg.Database, "db", cfg.Database, "settings database path (empty disables persistence)")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "login token (generated when empty)")
	flags.BoolVar(&cfg.Shell, "enable-shell", cfg.Shell, "expose the script capability to remotes")
	flags.StringVar(&cfg.ShellPath, "shell", cfg.ShellPath, "shell for the script capability")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "per-remote job queue capacity (0 uses the default)")
	flags.BoolVar(&cfg.NoQR, "no-qr", cfg.NoQR, "suppress the login QR code")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	if *configPath != "" {
		fileCfg := defaultConfig()
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		// Flags given on the command line win over the file.
		merged := fileCfg
		flags.Visit(func(f *pflag.Flag) {
			switch f.Name {
			case "listen":
				merged.Listen = cfg.Listen
			case "remotes":
				merged.RemoteDir = cfg.RemoteDir
			case "db":
				merged.Database = cfg.Database
			case "token":
				merged.Token = cfg.Token
			case "enable-shell":
				merged.Shell = cfg.Shell
			case "shell":
				merged.ShellPath = cfg.ShellPath
			case "log-level":
				merged.LogLevel = cfg.LogLevel
			case "queue-size":
				merged.QueueSize = cfg.QueueSize
			case "no-qr":
				merged.NoQR = cfg.NoQR
			}
		})
		cfg = merged
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.Token == "" {
		cfg.Token = uuid.NewString()
	}

	backend, err := input.NewUInput()
	if err != nil {
		logger.Warn("input device unavailable, falling back to log backend", "error", err)
		backend = input.NewLog(logger)
	}
	defer backend.Close()

	remotes, err := loader.Load(cfg.RemoteDir, logger)
	if err != nil {
		return fmt.Errorf("failed to load remotes: %w", err)
	}
	if len(remotes) == 0 {
		logger.Warn("no remotes found", "dir", cfg.RemoteDir)
	}

	var st *store.Store
	if cfg.Database != "" {
		st, err = store.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	descriptors := make([]*deckhand.Descriptor, 0, len(remotes))
	for _, rem := range remotes {
		desc := rem.Descriptor()
		if st != nil {
			persisted, err := st.Settings(rem.Id)
			if err != nil {
				return err
			}
			for k, v := range persisted {
				desc.Settings[k] = v
			}
		}
		descriptors = append(descriptors, desc)
		logger.Info("loaded remote", "remote", rem.Id, "label", rem.Label())
	}

	scriptOpts := []script.Option{script.WithLogger(logger)}
	if cfg.Shell {
		scriptOpts = append(scriptOpts, script.WithShell())
		if cfg.ShellPath != "" {
			scriptOpts = append(scriptOpts, script.WithShellPath(cfg.ShellPath))
		}
	}
	factory := script.NewFactory(backend, scriptOpts...)

	registryOpts := []deckhand.Option{deckhand.WithLogger(logger)}
	if cfg.QueueSize > 0 {
		registryOpts = append(registryOpts, deckhand.WithQueueSize(cfg.QueueSize))
	}
	registry := deckhand.NewRegistry(descriptors, factory, registryOpts...)
	defer registry.Close()

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: httpd.New(registry, remotes, st, cfg.Token, logger).Handler(),
	}

	printLogin(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("http shutdown incomplete", "error", err)
	}
	return nil
}

// printLogin shows the URL that enrolls a device, as text and as a QR
// code scannable from across the room.
func printLogin(cfg config) {
	host := localIP()
	_, port, err := net.SplitHostPort(cfg.Listen)
	if err != nil {
		port = "9510"
	}
	url := fmt.Sprintf("http://%s/login/%s", net.JoinHostPort(host, port), cfg.Token)
	fmt.Printf("\nLogin URL: %s\n\n", url)
	if !cfg.NoQR {
		qrterminal.GenerateHalfBlock(url, qrterminal.L, os.Stdout)
		fmt.Println()
	}
}

// localIP picks the first global unicast IPv4 address of an interface
// that is up, falling back to localhost.
func localIP() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "127.0.0.1"
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip := ipNet.IP.To4(); ip != nil && ip.IsGlobalUnicast() {
				return ip.String()
			}
		}
	}
	return "127.0.0.1"
}
