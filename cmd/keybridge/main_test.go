package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keybridge/internal/bridge"
	"github.com/dshills/keybridge/internal/capability"
	"github.com/dshills/keybridge/internal/config"
	"github.com/dshills/keybridge/internal/logging"
	"github.com/dshills/keybridge/internal/types"
)

func parsed(t *testing.T, args ...string) (*options, *cobra.Command) {
	t.Helper()
	o := &options{}
	cmd := &cobra.Command{Use: "test"}
	o.bind(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return o, cmd
}

// waitDocuments polls until the core has published at least one document.
func waitDocuments(ctx context.Context, docs capability.DocumentAccess) ([]types.DocumentID, error) {
	for {
		if ids := docs.Documents(); len(ids) > 0 {
			return ids, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestResolve_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "keybridge.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[bridge]
debounce = "40ms"

[log]
level = "warn"
`), 0o644))

	o, cmd := parsed(t, "-c", cfgPath, "--log-level", "debug", "--debounce", "5ms", "--no-watch", "--no-coalesce", "-w", dir)
	cfg, err := o.resolve(cmd, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5*time.Millisecond, cfg.Bridge.Debounce)
	assert.True(t, cfg.Bridge.CoalesceDisabled)
	assert.False(t, cfg.Workspace.Watch)
	assert.Equal(t, dir, cfg.Workspace.Root)
}

func TestResolve_FileValuesWithoutFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "keybridge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("bridge:\n  debounce: 40ms\nlog:\n  level: warn\n"), 0o644))

	o, cmd := parsed(t, "--config", cfgPath)
	cfg, err := o.resolve(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 40*time.Millisecond, cfg.Bridge.Debounce)
	assert.True(t, filepath.IsAbs(cfg.Workspace.Root))
}

func TestResolve_WorkspaceFromFirstFile(t *testing.T) {
	dir := t.TempDir()
	o, cmd := parsed(t)
	cfg, err := o.resolve(cmd, []string{filepath.Join(dir, "a.go"), "/elsewhere/b.go"})
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Workspace.Root)
}

func TestResolve_RejectsBadFlag(t *testing.T) {
	o, cmd := parsed(t, "--log-level", "loud")
	_, err := o.resolve(cmd, nil)
	var verr *config.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "keybridge dev (unknown)\n", out.String())
}

func TestRuntime_ServeOpensFilesAndStops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))

	cfg := config.Default()
	cfg.Workspace.Root = dir
	cfg.Workspace.Watch = false
	caps := capability.NewRegistry()
	rt, err := newRuntime(cfg, logging.Discard(), caps)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"capability.CommandExecutor",
		"capability.DocumentAccess",
		"capability.ScrollManager",
		"capability.ViewManagement",
	}, caps.Provided())
	docs, ok := capability.Lookup[capability.DocumentAccess](caps)
	require.True(t, ok)

	var snap types.Snapshot
	present := func(ctx context.Context) error {
		ids, err := waitDocuments(ctx, docs)
		if err != nil {
			return err
		}
		snap, _ = docs.TextFor(ids[0])
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.serve(ctx, []string{path}, present))

	assert.Equal(t, path, snap.Path)
	assert.Equal(t, "hello\n", snap.Text)
	_, err = rt.bridge.Submit(bridge.KeyInput{Key: types.Char('x')})
	assert.ErrorIs(t, err, bridge.ErrClosed)
}

func TestRuntime_ScratchDocumentWithoutFiles(t *testing.T) {
	cfg := config.Default()
	cfg.Workspace.Root = t.TempDir()
	cfg.Workspace.Watch = false
	caps := capability.NewRegistry()
	rt, err := newRuntime(cfg, logging.Discard(), caps)
	require.NoError(t, err)
	docs, ok := capability.Lookup[capability.DocumentAccess](caps)
	require.True(t, ok)

	var ids []types.DocumentID
	present := func(ctx context.Context) error {
		var err error
		ids, err = waitDocuments(ctx, docs)
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.serve(ctx, nil, present))
	assert.Len(t, ids, 1)
}

func TestRuntime_SignalStopsBoth(t *testing.T) {
	cfg := config.Default()
	cfg.Workspace.Root = t.TempDir()
	caps := capability.NewRegistry()
	rt, err := newRuntime(cfg, logging.Discard(), caps)
	require.NoError(t, err)
	require.NotNil(t, rt.watch)

	ctx, cancel := context.WithCancel(context.Background())
	present := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- rt.serve(ctx, nil, present) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}
}

func writeInit(t *testing.T, dir, src string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".keybridge"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".keybridge", "init.lua"), []byte(src), 0o644))
}

func TestRuntime_InitScriptAddsCommands(t *testing.T) {
	dir := t.TempDir()
	writeInit(t, dir, `keybridge.command("stamp", function() keybridge.insert("stamped") end)`)

	cfg := config.Default()
	cfg.Workspace.Root = dir
	cfg.Workspace.Watch = false
	caps := capability.NewRegistry()
	rt, err := newRuntime(cfg, logging.Discard(), caps)
	require.NoError(t, err)
	require.NotNil(t, rt.script)
	assert.Equal(t, []string{"stamp"}, rt.script.Commands())
	docs, ok := capability.Lookup[capability.DocumentAccess](caps)
	require.True(t, ok)

	var text string
	present := func(ctx context.Context) error {
		ids, err := waitDocuments(ctx, docs)
		if err != nil {
			return err
		}
		if _, err := rt.bridge.Submit(bridge.CommandInvocation{Name: "stamp", Source: types.SourcePalette}); err != nil {
			return err
		}
		for {
			if snap, ok := docs.TextFor(ids[0]); ok && snap.Text != "" {
				text = snap.Text
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Millisecond):
			}
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.serve(ctx, nil, present))
	assert.Equal(t, "stamped", text)
}

func TestRuntime_BrokenInitScriptDoesNotStopStartup(t *testing.T) {
	dir := t.TempDir()
	writeInit(t, dir, `keybridge.command(`)

	cfg := config.Default()
	cfg.Workspace.Root = dir
	cfg.Workspace.Watch = false
	rt, err := newRuntime(cfg, logging.Discard(), capability.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, rt.script.Commands())
	rt.script.Close()
}
