package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/keybridge/internal/bridge"
	"github.com/dshills/keybridge/internal/capability"
	"github.com/dshills/keybridge/internal/config"
	"github.com/dshills/keybridge/internal/core"
	"github.com/dshills/keybridge/internal/frontend"
	"github.com/dshills/keybridge/internal/logging"
	"github.com/dshills/keybridge/internal/script"
	"github.com/dshills/keybridge/internal/types"
	"github.com/dshills/keybridge/internal/watch"
)

// run owns the process until the presentation loop stops or a signal
// arrives. The core runs on its own loop; the presentation runtime runs on
// the errgroup's second goroutine.
func run(ctx context.Context, cfg config.Config, files []string) error {
	// The terminal is the screen, so logs only go to a file.
	logger, closeLog, err := logging.Open(cfg.Log, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(cfg, logger, capability.Default())
	if err != nil {
		return err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	app, err := frontend.New(screen, rt.bridge, rt.caps,
		frontend.WithLogger(logging.Component(logger, "frontend")),
		frontend.WithRoot(cfg.Workspace.Root),
	)
	if err != nil {
		return err
	}

	logger.Info("starting", "version", version, "root", cfg.Workspace.Root, "files", len(files))
	return rt.serve(ctx, files, app.Run)
}

// runtime is everything on the core side of the bridge.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger
	loop   *core.Loop
	editor *core.Editor
	bridge *bridge.Bridge
	caps   *capability.Registry
	watch  *watch.Watcher
	script *script.Engine
}

func newRuntime(cfg config.Config, logger *slog.Logger, caps *capability.Registry) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger, caps: caps}
	rt.loop = core.NewLoop(logging.Component(logger, "loop"))
	rt.editor = core.NewEditor(rt.loop,
		core.WithLogger(logging.Component(logger, "core")),
		core.WithRoot(cfg.Workspace.Root),
	)
	if err := rt.editor.ProvideCapabilities(rt.caps); err != nil {
		return nil, err
	}
	logger.Debug("core capabilities provided", "traits", rt.caps.Provided())

	rt.loadScript()

	rt.bridge = bridge.New(cfg.Bridge, bridge.WithLogger(logging.Component(logger, "bridge")))
	rt.bridge.Attach(rt.editor)

	if cfg.Workspace.Watch {
		w, err := watch.New(cfg.Workspace, rt.editor, watch.WithLogger(logging.Component(logger, "watch")))
		if err != nil {
			logger.Warn("workspace not watched", "err", err)
		} else {
			rt.watch = w
		}
	}
	return rt, nil
}

// loadScript runs the workspace init script. Script failures are logged and
// reported on the status line; they never stop startup.
func (rt *runtime) loadScript() {
	path := rt.cfg.Script.Init
	if path == "" {
		return
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(rt.editor.Root(), path)
	}
	rt.script = script.New(rt.editor,
		script.WithLogger(logging.Component(rt.logger, "script")),
		script.WithTimeout(rt.cfg.Script.Timeout),
	)
	err := rt.script.LoadFile(path)
	switch {
	case err == nil:
		rt.logger.Info("script loaded", "path", path, "commands", rt.script.Commands())
	case errors.Is(err, fs.ErrNotExist):
		rt.logger.Debug("no init script", "path", path)
	default:
		rt.logger.Warn("init script failed", "path", path, "err", err)
		rt.editor.SetStatus(err.Error(), types.SeverityError)
	}
}

// serve runs the core loop and present side by side. When present returns
// the core is stopped and the bridge closed; when the core fails the
// bridge is closed so present stops too.
func (rt *runtime) serve(ctx context.Context, files []string, present func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	coreCtx, stopCore := context.WithCancel(ctx)
	defer stopCore()

	rt.loop.Go(coreCtx, "serve-core", func(ctx context.Context) error {
		return rt.bridge.ServeCore(ctx, rt.editor.Applier())
	})
	if rt.watch != nil {
		rt.loop.Go(coreCtx, "watch", rt.watch.Run)
	}
	if err := rt.openFiles(coreCtx, files); err != nil {
		return err
	}

	g.Go(func() error {
		defer rt.bridge.Close()
		return rt.loop.Run(coreCtx)
	})
	g.Go(func() error {
		defer stopCore()
		defer rt.bridge.Close()
		return present(ctx)
	})

	err := g.Wait()
	if rt.script != nil {
		rt.script.Close()
	}
	rt.logger.Info("stopped", "bridge", rt.bridge.Stats())
	return err
}

// openFiles queues the initial documents; with no files a scratch
// document is opened instead.
func (rt *runtime) openFiles(ctx context.Context, files []string) error {
	return rt.loop.Post(func() {
		if len(files) == 0 {
			rt.runCommand(ctx, "new")
			return
		}
		for _, f := range files {
			rt.runCommand(ctx, "open", f)
		}
	})
}

func (rt *runtime) runCommand(ctx context.Context, name string, args ...string) {
	op := core.Run{Op: core.Op{ID: core.NewCorrelation()}, Command: name, Args: args, Source: types.SourceCore}
	if err := rt.editor.Apply(ctx, op); err != nil {
		rt.logger.Warn("startup command failed", "command", name, "args", args, "err", err)
	}
}
