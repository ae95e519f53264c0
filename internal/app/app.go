package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/xcbuddy/internal/ctxlog"
	"github.com/vk/xcbuddy/internal/fsutil"
	"github.com/vk/xcbuddy/internal/loader"
	"github.com/vk/xcbuddy/internal/manifest"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	fs     fsutil.FileSystem
	loader *loader.Loader
}

// NewApp is the constructor for the main application. Command output goes to
// outW and logs to logW. Every App owns its own logger and manifest cache,
// so one App serves exactly one command invocation.
func NewApp(outW, logW io.Writer, cfg *Config, fsys fsutil.FileSystem, interp manifest.Interpreter) *App {
	logger := newLogger(cfg, logW)
	logger.Debug("Logger configured successfully.", "level", cfg.LogLevel, "format", cfg.LogFormat)

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		fs:     fsys,
		loader: loader.New(fsys, interp),
	}
}

// context attaches the App's logger to ctx.
func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
