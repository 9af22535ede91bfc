package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/keybridge/internal/config"
)

type options struct {
	configPath string
	workspace  string
	logLevel   string
	logFormat  string
	logFile    string
	noWatch    bool
	debounce   time.Duration
	noCoalesce bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "keybridge [files...]",
		Short: "Terminal editor driven through the keybridge event bridge",
		Long: `keybridge runs a small editing core and a terminal presentation
runtime on separate loops. Every state change crosses between them as a
batched, coalesced domain event; every key press and mouse gesture
crosses back as an asynchronous operation.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, args)
		},
	}

	o.bind(cmd)
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func (o *options) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "configuration file (.toml, .yaml or .yml)")
	f.StringVarP(&o.workspace, "workspace", "w", "", "workspace directory (default: directory of the first file, or the working directory)")
	f.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
	f.StringVar(&o.logFormat, "log-format", "", "log format: text or json")
	f.StringVar(&o.logFile, "log-file", "", "write logs to this file; logs are discarded otherwise")
	f.BoolVar(&o.noWatch, "no-watch", false, "do not watch the workspace for changes")
	f.DurationVar(&o.debounce, "debounce", 0, "how long an outbound batch stays open")
	f.BoolVar(&o.noCoalesce, "no-coalesce", false, "deliver every event without last-write-wins merging")
}

// resolve loads the configuration and applies the flags that were set.
func (o *options) resolve(cmd *cobra.Command, files []string) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if f.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if f.Changed("log-file") {
		cfg.Log.File = o.logFile
	}
	if f.Changed("debounce") {
		cfg.Bridge.Debounce = o.debounce
	}
	if o.noCoalesce {
		cfg.Bridge.CoalesceDisabled = true
	}
	if o.noWatch {
		cfg.Workspace.Watch = false
	}

	switch {
	case o.workspace != "":
		cfg.Workspace.Root = o.workspace
	case cfg.Workspace.Root == "" && len(files) > 0:
		cfg.Workspace.Root = filepath.Dir(files[0])
	case cfg.Workspace.Root == "":
		cfg.Workspace.Root = "."
	}
	root, err := filepath.Abs(cfg.Workspace.Root)
	if err != nil {
		return config.Config{}, fmt.Errorf("workspace: %w", err)
	}
	cfg.Workspace.Root = root

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "keybridge %s (%s)\n", version, commit)
		},
	}
}
