package main

import (
	"context"

	"github.com/genricoloni/multiview/internal/backend/memory"
	"github.com/genricoloni/multiview/internal/backend/mpv"
	"github.com/genricoloni/multiview/internal/bus"
	"github.com/genricoloni/multiview/internal/config"
	"github.com/genricoloni/multiview/internal/controller"
	"github.com/genricoloni/multiview/internal/domain"
	"github.com/genricoloni/multiview/internal/engine"
	"github.com/genricoloni/multiview/internal/layout"
	"github.com/genricoloni/multiview/internal/mediakeys"
	"github.com/genricoloni/multiview/internal/resolver"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Flags carries the command line settings that feed the configuration
type Flags struct {
	ConfigFile string
	Overrides  map[string]any
}

// AppOptions is the application dependency graph
var AppOptions = fx.Options(
	// Logger configuration
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	fx.Supply(Flags{}),

	// Provide dependencies
	fx.Provide(
		newConfig,
		func(c *config.AppConfig) domain.Config { return c },
		newLogger,
		bus.NewBus,
		engine.NewRegistry,
		newLayoutStore,
		newScreen,
		newResolver,
		newBackendFactory,
		newMediaKeys,
		engine.NewEngine,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func newConfig(flags Flags) (*config.AppConfig, error) {
	return config.Load(flags.ConfigFile, flags.Overrides)
}

// newLogger creates the production logger at the configured level
func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel())
	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded",
		zap.String("file", cfg.File()),
		zap.String("backend", cfg.Backend()),
		zap.Duration("idleTimeout", cfg.GetIdleTimeout()),
		zap.String("layoutDB", cfg.LayoutDBPath()),
		zap.Bool("resolver", cfg.ResolverBaseURL() != ""),
		zap.Bool("mediaKeys", cfg.MediaKeysEnabled()))
	return logger, nil
}

func newLayoutStore(lc fx.Lifecycle, cfg *config.AppConfig, logger *zap.Logger) (domain.LayoutStore, error) {
	store, err := layout.NewSQLiteStore(cfg.LayoutDBPath(), logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(store.Close))
	return store, nil
}

func newScreen(logger *zap.Logger) controller.Screen {
	return layout.NewScreen(logger)
}

func newResolver(cfg *config.AppConfig, logger *zap.Logger) domain.StreamResolver {
	return resolver.New(cfg.ResolverBaseURL(), logger)
}

func newBackendFactory(cfg *config.AppConfig, logger *zap.Logger) domain.BackendFactory {
	if cfg.Backend() == config.BackendMemory {
		return memory.NewFactory(logger)
	}
	return mpv.NewFactory(cfg.MPVBinary(), cfg.MPVSocketDir(), cfg.MPVArgs(), logger)
}

// newMediaKeys returns nil when media keys are disabled
func newMediaKeys(cfg *config.AppConfig, logger *zap.Logger) domain.MediaKeySource {
	if !cfg.MediaKeysEnabled() {
		return nil
	}
	return mediakeys.NewListener(appName, logger)
}

// registerHooks sets up application lifecycle hooks
func registerHooks(lc fx.Lifecycle, e *engine.Engine, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Multiview started")
			return e.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			return e.Stop(ctx)
		},
	})
}
