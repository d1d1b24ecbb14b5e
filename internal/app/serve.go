package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"horse.fit/mts/internal/auth"
	"horse.fit/mts/internal/cli"
	"horse.fit/mts/internal/db"
	"horse.fit/mts/internal/httpapi"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	modelsDir := fs.String("models-dir", "", "Models directory (overrides MTS_MODELS_PATH)")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 5*time.Minute, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	rt, err := buildRuntime(ctx, cfg, logger, *modelsDir)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to load translation models")
		fmt.Fprintf(os.Stderr, "Failed to load translation models: %v\n", err)
		return 1
	}
	defer rt.Close()

	printStartupConfig(os.Stdout, cfg, rt.modelsDir, rt.engine.Workers())

	var history httpapi.HistoryStore
	if cfg.HistoryEnabled() {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := db.NewPool(dbCtx, db.PoolOptions{
			DatabaseURL: cfg.DatabaseURL,
			MinConns:    cfg.DBMinConns,
			MaxConns:    cfg.DBMaxConns,
			LogLevel:    cfg.LogLevel,
		})
		dbCancel()
		if err != nil {
			logger.Error().Err(err).Msg("serve failed to connect to database")
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			return 1
		}
		defer pool.Close()
		history = pool
	}

	srv := httpapi.NewServer(rt.service, history, logger, httpapi.Options{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
		Auth: auth.Verifier{
			Token:     cfg.APIToken,
			TokenHash: cfg.APITokenHash,
		},
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", cfg.Host).Int("port", cfg.Port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}
