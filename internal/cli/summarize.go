package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mindmap/internal/codec"
	"mindmap/internal/summary"
	"mindmap/internal/watcher"
)

type summarizeOptions struct {
	out   string
	html  bool
	watch bool
}

func summarizeCmd(flags *globalFlags) *cobra.Command {
	opts := &summarizeOptions{}

	cmd := &cobra.Command{
		Use:   "summarize <snapshot.json|snapshot.yaml>",
		Short: "Render the text summary of an exported diagram",
		Long: "Reads a diagram exported from the server (/api/export/json or /api/export/yaml)\n" +
			"and prints the same summary the canvas offers for download.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			render := func() error {
				return renderSummary(path, opts, cmd.OutOrStdout())
			}

			if err := render(); err != nil {
				return err
			}
			if !opts.watch {
				return nil
			}

			cfg, _, err := flags.loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			info.Fprintf(cmd.ErrOrStderr(), "watching %s, press Ctrl-C to stop\n", path)
			w := watcher.New(path, func() {
				if err := render(); err != nil {
					logger.Warn("summary render failed", zap.String("path", path), zap.Error(err))
					bad.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
					return
				}
				good.Fprintf(cmd.ErrOrStderr(), "summary updated\n")
			}, logger)

			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the summary to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.html, "html", false, "render the HTML preview instead of plain text")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render whenever the snapshot changes")
	return cmd
}

func renderSummary(path string, opts *summarizeOptions, stdout io.Writer) error {
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	g, err := c.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	report := summary.Generate(g)
	body := report.Text()
	if opts.html {
		if body, err = report.HTML(); err != nil {
			return err
		}
	}

	if opts.out == "" {
		_, err = fmt.Fprintln(stdout, body)
		return err
	}
	if err := os.WriteFile(opts.out, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
