package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/keybridge/internal/config"
	"github.com/dshills/keybridge/internal/core"
)

// DefaultRenameWindow is how long a rename waits for its matching create.
const DefaultRenameWindow = 50 * time.Millisecond

// ErrNotDirectory is returned when the workspace root is not a directory.
var ErrNotDirectory = errors.New("watch: workspace root is not a directory")

// Notifier receives workspace notifications. *core.Editor implements it.
type Notifier interface {
	Notify(n core.Notification) error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRenameWindow sets how long a rename waits to be paired with a create.
func WithRenameWindow(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.renameWindow = d
		}
	}
}

// Stats reports watcher counters.
type Stats struct {
	Watched  int
	Reported uint64
	Ignored  uint64
	Dropped  uint64
	Errors   uint64
}

// Watcher watches one workspace tree.
type Watcher struct {
	fs           *fsnotify.Watcher
	root         string
	ignore       *Ignore
	notify       Notifier
	logger       *slog.Logger
	renameWindow time.Duration

	mu   sync.Mutex
	dirs map[string]bool

	// Owned by Run.
	branch  string
	pending string
	timer   *time.Timer

	reported, ignored, dropped, errs atomic.Uint64
}

// New watches every non-ignored directory under cfg.Root. Watches are in
// place when New returns; changes are reported once Run is called.
func New(cfg config.Workspace, n Notifier, opts ...Option) (*Watcher, error) {
	root := cfg.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		fs:           fsw,
		root:         root,
		ignore:       NewIgnore(cfg.Ignore...),
		notify:       n,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		renameWindow: DefaultRenameWindow,
		dirs:         make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if info, err := os.Stat(w.gitDir()); err == nil && info.IsDir() {
		if err := fsw.Add(w.gitDir()); err != nil {
			w.logger.Debug("not watching repository", "dir", w.gitDir(), "err", err)
		}
	}
	return w, nil
}

// Root returns the absolute workspace root.
func (w *Watcher) Root() string {
	return w.root
}

// Run reports changes until ctx is done or the watcher is closed. It
// reports the current branch first.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	w.timer = time.NewTimer(w.renameWindow)
	w.timer.Stop()
	defer w.timer.Stop()

	w.checkHead()
	w.logger.Info("watching workspace", "root", w.root, "dirs", w.Stats().Watched)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.errs.Add(1)
			w.logger.Warn("watch error", "err", err)
		case <-w.timer.C:
			w.flushRename()
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Stats returns the current counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	n := len(w.dirs)
	w.mu.Unlock()
	return Stats{
		Watched:  n,
		Reported: w.reported.Load(),
		Ignored:  w.ignored.Load(),
		Dropped:  w.dropped.Load(),
		Errors:   w.errs.Load(),
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Name == w.headFile() {
		if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
			w.checkHead()
		}
		return
	}
	if ev.Name == w.gitDir() || strings.HasPrefix(ev.Name, w.gitDir()+string(filepath.Separator)) {
		return
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	isDir := w.isDir(ev)
	if w.ignore.Match(rel, isDir) {
		w.ignored.Add(1)
		return
	}

	switch {
	case ev.Has(fsnotify.Create):
		if old := w.pending; old != "" {
			w.pending = ""
			w.timer.Stop()
			w.send(core.FileSystemChanged{Path: ev.Name, OldPath: old, Op: core.FileRenamed})
		} else {
			w.send(core.FileSystemChanged{Path: ev.Name, Op: core.FileCreated})
		}
		if isDir {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Debug("not watching new directory", "dir", ev.Name, "err", err)
			}
		}
	case ev.Has(fsnotify.Rename):
		w.flushRename()
		w.forget(ev.Name)
		w.pending = ev.Name
		w.timer.Reset(w.renameWindow)
	case ev.Has(fsnotify.Remove):
		w.forget(ev.Name)
		w.send(core.FileSystemChanged{Path: ev.Name, Op: core.FileRemoved})
	case ev.Has(fsnotify.Write):
		w.send(core.FileSystemChanged{Path: ev.Name, Op: core.FileWritten})
	}
}

// flushRename reports an unpaired rename. The file left the watched tree.
func (w *Watcher) flushRename() {
	if w.pending == "" {
		return
	}
	old := w.pending
	w.pending = ""
	w.send(core.FileSystemChanged{Path: old, Op: core.FileRenamed})
}

func (w *Watcher) send(n core.Notification) {
	if err := w.notify.Notify(n); err != nil {
		w.dropped.Add(1)
		w.logger.Debug("notification dropped", "notification", fmt.Sprintf("%T", n), "err", err)
		return
	}
	w.reported.Add(1)
}

func (w *Watcher) isDir(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		info, err := os.Lstat(ev.Name)
		return err == nil && info.IsDir()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirs[ev.Name]
}

// addTree watches dir and every non-ignored directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p == w.gitDir() {
			return filepath.SkipDir
		}
		if rel, _ := filepath.Rel(w.root, p); w.ignore.Match(rel, true) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			if p == dir {
				return fmt.Errorf("watch %s: %w", p, err)
			}
			w.errs.Add(1)
			w.logger.Debug("watch failed", "dir", p, "err", err)
			return nil
		}
		w.mu.Lock()
		w.dirs[p] = true
		w.mu.Unlock()
		return nil
	})
}

// forget drops the watches at and below p.
func (w *Watcher) forget(p string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prefix := p + string(filepath.Separator)
	for d := range w.dirs {
		if d == p || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
			_ = w.fs.Remove(d)
		}
	}
}

func (w *Watcher) gitDir() string {
	return filepath.Join(w.root, ".git")
}

func (w *Watcher) headFile() string {
	return filepath.Join(w.gitDir(), "HEAD")
}

// checkHead reports the branch when it differs from the last one seen.
func (w *Watcher) checkHead() {
	data, err := os.ReadFile(w.headFile())
	if err != nil {
		return
	}
	branch := parseHead(data)
	if branch == "" || branch == w.branch {
		return
	}
	w.branch = branch
	w.send(core.HeadDidChange{Root: w.root, Branch: branch})
}

// parseHead returns the branch named by a HEAD file, or the abbreviated
// commit for a detached head.
func parseHead(data []byte) string {
	s := strings.TrimSpace(string(data))
	if ref, ok := strings.CutPrefix(s, "ref:"); ok {
		ref = strings.TrimSpace(ref)
		if b, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
			return b
		}
		return ref
	}
	if len(s) >= 7 {
		return s[:7]
	}
	return s
}
