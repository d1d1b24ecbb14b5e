package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"horse.fit/mts/internal/cli"
	"horse.fit/mts/internal/config"
	"horse.fit/mts/internal/engine"
	"horse.fit/mts/internal/globaltime"
	"horse.fit/mts/internal/logging"
	"horse.fit/mts/internal/translation"
)

// serviceStack is what serve and translate share: the engine pool and the
// translation facade built on top of it.
type serviceStack struct {
	cfg       *config.Config
	logger    zerolog.Logger
	engine    *engine.Service
	service   *translation.Service
	modelsDir string
}

func (r *serviceStack) Close() {
	if r == nil || r.engine == nil {
		return
	}
	r.engine.Close()
}

func loadConfig(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil && !errors.Is(err, cli.ErrNoEnvFile) {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
	})
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// buildRuntime starts the engine and loads every model. An empty or
// unreadable models directory is an error.
func buildRuntime(ctx context.Context, cfg *config.Config, logger zerolog.Logger, modelsDirOverride string) (*serviceStack, error) {
	modelsDir := strings.TrimSpace(modelsDirOverride)
	if modelsDir == "" {
		var warnings []string
		modelsDir, warnings = cfg.ResolveModelsPath()
		for _, warning := range warnings {
			logger.Warn().Msg(warning)
		}
	}

	policy, err := translation.ParseMissingFilesPolicy(cfg.MissingFiles)
	if err != nil {
		return nil, err
	}

	backend := engine.NewOpenAIBackend(engine.OpenAIOptions{
		Endpoint:        cfg.EngineEndpoint,
		Model:           cfg.EngineModel,
		APIKey:          cfg.EngineAPIKey,
		Timeout:         cfg.EngineTimeout,
		BreakerFailures: cfg.EngineBreakerFailures,
		BreakerCooldown: cfg.EngineBreakerCooldown,
	})

	workers := cfg.NumWorkers
	engineSvc, err := engine.NewService(backend, engine.Config{
		Workers:   workers,
		QueueSize: cfg.EffectiveQueueSize(workers),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}

	registry, err := translation.LoadRegistry(ctx, modelsDir, engineSvc, translation.LoadOptions{
		MissingFiles: policy,
		Concurrency:  cfg.LoadConcurrency,
		Logger:       logger,
	})
	if err != nil {
		engineSvc.Close()
		return nil, fmt.Errorf("load models from %s: %w", modelsDir, err)
	}
	logger.Info().
		Int("pairs", registry.Len()).
		Str("models_dir", modelsDir).
		Msg("translation models loaded")

	return &serviceStack{
		cfg:       cfg,
		logger:    logger,
		engine:    engineSvc,
		service:   translation.NewService(registry, engineSvc, logger),
		modelsDir: modelsDir,
	}, nil
}

// printStartupConfig writes the effective settings, one per line.
func printStartupConfig(w io.Writer, cfg *config.Config, modelsDir string, workers int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Starting mts with configuration:")
	fmt.Fprintf(tw, "  started_at\t%s\n", globaltime.UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(tw, "  environment\t%s\n", cfg.Environment)
	fmt.Fprintf(tw, "  log_level\t%s\n", strings.ToUpper(cfg.LogLevel))
	fmt.Fprintf(tw, "  listen\t%s:%d\n", cfg.Host, cfg.Port)
	fmt.Fprintf(tw, "  workers\t%d\n", workers)
	fmt.Fprintf(tw, "  queue_size\t%d\n", cfg.EffectiveQueueSize(workers))
	fmt.Fprintf(tw, "  models_path\t%s\n", modelsDir)
	fmt.Fprintf(tw, "  missing_files\t%s\n", cfg.MissingFiles)
	fmt.Fprintf(tw, "  engine_endpoint\t%s\n", cfg.EngineEndpoint)
	fmt.Fprintf(tw, "  engine_model\t%s\n", cfg.EngineModel)
	fmt.Fprintf(tw, "  auth\t%t\n", cfg.AuthEnabled())
	fmt.Fprintf(tw, "  history\t%t\n", cfg.HistoryEnabled())
	_ = tw.Flush()
}
