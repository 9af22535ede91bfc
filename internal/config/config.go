package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/keybridge/internal/config/loader"
)

// Config is the complete runtime configuration.
type Config struct {
	Bridge    Bridge
	Log       Log
	Workspace Workspace
	Script    Script
}

// Bridge sizes the two bridge stages.
type Bridge struct {
	// OutboundCapacity bounds core to presentation events held at once.
	OutboundCapacity int

	// InboundCapacity bounds presentation to core operations held at once.
	InboundCapacity int

	// MaxBatch seals an outbound batch when it reaches this many events.
	MaxBatch int

	// Debounce is how long an outbound batch stays open after its first event.
	Debounce time.Duration

	// CoalesceDisabled turns off last-write-wins merging.
	CoalesceDisabled bool
}

// Log configures the process logger.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is text or json.
	Format string

	// File receives log output; empty means stderr.
	File string
}

// Workspace configures the project directory.
type Workspace struct {
	// Root is the workspace directory; empty means the working directory.
	Root string

	// Watch enables the file-system watcher.
	Watch bool

	// Ignore lists path globs the watcher skips.
	Ignore []string
}

// Script configures the Lua command scripts.
type Script struct {
	// Init is the script loaded at startup, relative to the workspace root.
	// Empty disables scripting.
	Init string

	// Timeout bounds a single script call.
	Timeout time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	cfg, _ := decode(defaultMap())
	return cfg
}

func defaultMap() map[string]any {
	return map[string]any{
		"bridge": map[string]any{
			"outboundCapacity": 1024,
			"inboundCapacity":  256,
			"maxBatch":         256,
			"debounce":         "16ms",
			"coalesceDisabled": false,
		},
		"log": map[string]any{
			"level":  "info",
			"format": "text",
			"file":   "",
		},
		"workspace": map[string]any{
			"root":   "",
			"watch":  true,
			"ignore": []string{".git", "node_modules", "*.swp", "*~"},
		},
		"script": map[string]any{
			"init":    ".keybridge/init.lua",
			"timeout": "2s",
		},
	}
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	fs  loader.FileSystem
	env *loader.EnvLoader
}

// WithFileSystem reads config files through fsys.
func WithFileSystem(fsys loader.FileSystem) LoadOption {
	return func(o *loadOptions) { o.fs = fsys }
}

// WithEnv replaces the environment loader.
func WithEnv(env *loader.EnvLoader) LoadOption {
	return func(o *loadOptions) { o.env = env }
}

// Load layers defaults, the file at path and the environment, then
// validates the result. An empty path skips the file layer.
func Load(path string, opts ...LoadOption) (Config, error) {
	o := loadOptions{fs: loader.DefaultFS(), env: loader.NewEnvLoader()}
	for _, opt := range opts {
		opt(&o)
	}

	merged := defaultMap()
	if path != "" {
		l, ok := loader.ForPath(o.fs, path)
		if !ok {
			return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		data, err := l.Load()
		if err != nil {
			return Config{}, err
		}
		if data == nil {
			return Config{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		merged = loader.DeepMerge(merged, data)
	}
	env, err := o.env.Load()
	if err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	merged = loader.DeepMerge(merged, env)

	cfg, err := decode(merged)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations. All failures are joined.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, path, msg string, v any) {
		if !ok {
			errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
		}
	}
	b := c.Bridge
	check(b.OutboundCapacity > 0, "bridge.outboundCapacity", "must be positive", b.OutboundCapacity)
	check(b.InboundCapacity > 0, "bridge.inboundCapacity", "must be positive", b.InboundCapacity)
	check(b.MaxBatch > 0, "bridge.maxBatch", "must be positive", b.MaxBatch)
	check(b.MaxBatch <= b.OutboundCapacity, "bridge.maxBatch", "must not exceed bridge.outboundCapacity", b.MaxBatch)
	check(b.Debounce >= 0, "bridge.debounce", "must not be negative", b.Debounce)
	check(slices.Contains(levels, strings.ToLower(c.Log.Level)), "log.level", "must be one of "+strings.Join(levels, ", "), c.Log.Level)
	check(c.Log.Format == "text" || c.Log.Format == "json", "log.format", "must be text or json", c.Log.Format)
	check(c.Script.Timeout > 0, "script.timeout", "must be positive", c.Script.Timeout)
	return errors.Join(errs...)
}

var levels = []string{"debug", "info", "warn", "warning", "error"}

type decoder struct {
	m    map[string]any
	errs []error
}

func decode(m map[string]any) (Config, error) {
	d := &decoder{m: m}
	cfg := Config{
		Bridge: Bridge{
			OutboundCapacity: d.int("bridge.outboundCapacity"),
			InboundCapacity:  d.int("bridge.inboundCapacity"),
			MaxBatch:         d.int("bridge.maxBatch"),
			Debounce:         d.duration("bridge.debounce"),
			CoalesceDisabled: d.bool("bridge.coalesceDisabled"),
		},
		Log: Log{
			Level:  d.string("log.level"),
			Format: d.string("log.format"),
			File:   d.string("log.file"),
		},
		Workspace: Workspace{
			Root:   d.string("workspace.root"),
			Watch:  d.bool("workspace.watch"),
			Ignore: d.strings("workspace.ignore"),
		},
		Script: Script{
			Init:    d.string("script.init"),
			Timeout: d.duration("script.timeout"),
		},
	}
	return cfg, errors.Join(d.errs...)
}

func (d *decoder) get(path string) (any, bool) {
	return loader.GetPath(d.m, path)
}

func (d *decoder) fail(path, expected string, v any) {
	d.errs = append(d.errs, &TypeError{Path: path, Expected: expected, Actual: fmt.Sprintf("%T", v)})
}

func (d *decoder) int(path string) int {
	v, ok := d.get(path)
	if !ok {
		return 0
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case uint64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n
		}
	}
	d.fail(path, "int", v)
	return 0
}

func (d *decoder) duration(path string) time.Duration {
	v, ok := d.get(path)
	if !ok {
		return 0
	}
	switch val := v.(type) {
	case time.Duration:
		return val
	case int:
		return time.Duration(val) * time.Millisecond
	case int64:
		return time.Duration(val) * time.Millisecond
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return time.Duration(n) * time.Millisecond
		}
		if dur, err := time.ParseDuration(val); err == nil {
			return dur
		}
	}
	d.fail(path, "duration", v)
	return 0
}

func (d *decoder) bool(path string) bool {
	v, ok := d.get(path)
	if !ok {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off", "":
			return false
		}
	}
	d.fail(path, "bool", v)
	return false
}

func (d *decoder) string(path string) string {
	v, ok := d.get(path)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(path, "string", v)
	}
	return s
}

func (d *decoder) strings(path string) []string {
	v, ok := d.get(path)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case []string:
		return slices.Clone(val)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				d.fail(path, "[]string", v)
				return nil
			}
			out = append(out, s)
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return strings.Split(val, ",")
	}
	d.fail(path, "[]string", v)
	return nil
}
