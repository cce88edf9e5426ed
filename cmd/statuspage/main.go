package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/goliatone/go-statuspage/internal/di"
	"github.com/goliatone/go-statuspage/internal/httpapi"
	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/config"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		addr       string
		logLevel   string
		dumpConfig bool
		issueFor   string
		issueEmail string
	)

	flagSet := pflag.NewFlagSet("statuspage", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flagSet.StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flagSet.BoolVar(&dumpConfig, "dump-config", false, "print the effective config with secrets masked and exit")
	flagSet.StringVar(&issueFor, "issue-token", "", "print a bearer token for this user id and exit")
	flagSet.StringVar(&issueEmail, "token-email", "", "email claim for --issue-token")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if dumpConfig {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg.Masked())
	}

	if issueFor != "" {
		tokens, err := auth.NewTokens(auth.Config{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.Issuer,
			TTL:    cfg.Auth.TokenTTL,
		})
		if err != nil {
			return err
		}
		token, err := tokens.Issue(auth.Actor{UserID: issueFor, Email: issueEmail})
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}

	return serve(cfg)
}

func loadConfig(path string) (config.Config, error) {
	cfg := config.Defaults()
	if strings.TrimSpace(path) != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func serve(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lgr, err := di.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	lgr.Info("configuration loaded", logger.F("config", cfg.Masked()))

	container, err := di.New(ctx, di.Options{Config: cfg, Logger: lgr})
	if err != nil {
		return err
	}

	api, err := httpapi.New(httpapi.Dependencies{
		StatusPage:   container.StatusPage,
		Commands:     container.Commands,
		Tokens:       container.Tokens,
		Registry:     container.Registry,
		Origins:      cfg.Server.AllowedOrigins,
		SendBuffer:   cfg.Realtime.SendBuffer,
		PingInterval: cfg.Realtime.PingInterval,
		Logger:       lgr,
	})
	if err != nil {
		_ = container.Close(context.Background())
		return err
	}

	srv := httpapi.NewFiberServer("statuspage", cfg.Server.AllowedOrigins)
	api.Register(srv.Router())

	serveErr := make(chan error, 1)
	go func() {
		lgr.Info("listening", logger.F("addr", cfg.Server.Addr))
		serveErr <- srv.Serve(cfg.Server.Addr)
	}()

	select {
	case <-ctx.Done():
		lgr.Info("shutting down")
	case err = <-serveErr:
		lgr.Error("server stopped", logger.F("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	// Subscribers block in their read loops; close them so Shutdown can drain.
	container.Registry.CloseAll()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		lgr.Warn("server shutdown error", logger.F("error", shutdownErr))
	}
	if closeErr := container.Close(shutdownCtx); closeErr != nil {
		lgr.Warn("container close error", logger.F("error", closeErr))
	}
	if s, ok := lgr.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `statuspage serves the status page API and its realtime feed.

Usage:
  statuspage [flags]

Environment variables prefixed with %s override file values.

Flags:
%s`, config.EnvPrefix, flagSet.FlagUsages())
}
