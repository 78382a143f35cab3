// Package cli implements the mindmap command line.
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mindmap/internal/config"
	"mindmap/internal/logging"
)

var version = "0.1.0"

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	addr       string
	logLevel   string
	noColor    bool
}

// NewRootCommand builds the mindmap command tree
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "mindmap",
		Short: "mindmap: a diagramming server for topics, connections and documents",
		Long: "mindmap serves an interactive mind map canvas: topics you can connect,\n" +
			"annotate with documents and export as a plain text summary.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				color.NoColor = true
			}
		},
	}
	root.SetVersionTemplate("mindmap {{ .Version }}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default: search $MINDMAP_CONFIG, ./mindmap.yaml, ~/.config/mindmap)")
	pf.StringVar(&flags.addr, "addr", "", "HTTP listen address, overrides server.addr")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level, overrides log.level")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		serveCmd(flags),
		summarizeCmd(flags),
		stylesCmd(),
		configCmd(flags),
	)
	return root
}

// Execute runs the root command and prints any error
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		bad.Fprintf(root.ErrOrStderr(), "mindmap: %v\n", err)
		return err
	}
	return nil
}

// loadConfig reads the config file and applies flag overrides
func (f *globalFlags) loadConfig() (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if f.configPath != "" {
		cfg, path, err = config.LoadFromPath(f.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, path, err
	}

	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, path, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
}
