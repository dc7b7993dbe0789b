package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/content-comb/app/cfg"
	"github.com/lysyi3m/content-comb/app/content"
)

const stdinName = "-"

// processFunc turns the contents of one input into its JSON document.
type processFunc func(data []byte) (map[string]any, error)

type rootOptions struct {
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	rootCmd := &cobra.Command{
		Use:   "contentctl",
		Short: "Run the content parsers on local files",
		Long: `contentctl runs the Content Comb parsers offline and prints their result as JSON.

Each command accepts one or more files; "-" reads standard input.
Files are processed concurrently and printed in argument order.

Example usage:
  contentctl table calendar.md           # Parse a social calendar table
  contentctl payload response.json       # Normalize a workflow payload
  contentctl outline --title "Guía" a.md # Extract an article outline
  contentctl render article.md           # Render markdown to sanitized HTML`,
		Version:       cfg.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newTableCmd(opts),
		newPayloadCmd(opts),
		newOutlineCmd(opts),
		newRenderCmd(opts),
	)

	return rootCmd
}

func newTableCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "table FILE...",
		Short: "Parse the first markdown table into social calendar rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := content.NewTableParser()
			return runFiles(cmd, opts.logger, args, func(data []byte) (map[string]any, error) {
				rows := parser.Run(string(data))
				return map[string]any{"rows": rows, "total": len(rows)}, nil
			})
		},
	}
}

func newPayloadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "payload FILE...",
		Short: "Normalize a workflow payload into content ideas",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalizer := content.NewPayloadNormalizer()
			return runFiles(cmd, opts.logger, args, func(data []byte) (map[string]any, error) {
				items := normalizer.Run(data)
				return map[string]any{
					"items":    items,
					"total":    len(items),
					"strategy": normalizer.Strategy(data),
				}, nil
			})
		},
	}
}

func newOutlineCmd(opts *rootOptions) *cobra.Command {
	var title string
	var lookahead int

	cmd := &cobra.Command{
		Use:   "outline FILE...",
		Short: "Extract the heading outline of a generated article",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor := content.NewOutlineExtractor(content.OutlineOptions{Lookahead: lookahead})
			return runFiles(cmd, opts.logger, args, func(data []byte) (map[string]any, error) {
				outline := extractor.Run(string(data), title)
				return map[string]any{"outline": outline, "total": len(outline)}, nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "title of the default outline when no headings are found")
	cmd.Flags().IntVar(&lookahead, "lookahead", content.DefaultOutlineLookahead, "lines scanned after a heading for its instruction")

	return cmd
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "render FILE...",
		Short: "Render article markdown to sanitized HTML",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := content.NewRenderer(len(args))
			return runFiles(cmd, opts.logger, args, func(data []byte) (map[string]any, error) {
				html, err := renderer.Run(string(data))
				if err != nil {
					return nil, err
				}
				return map[string]any{"html": html}, nil
			})
		},
	}
}

// runFiles processes every input concurrently and writes one JSON document
// per input, in argument order. Standard input is read once.
func runFiles(cmd *cobra.Command, logger *slog.Logger, args []string, process processFunc) error {
	var stdin []byte
	if slices.Contains(args, stdinName) {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read standard input: %w", err)
		}
		stdin = data
	}

	results := make([]map[string]any, len(args))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i, name := range args {
		g.Go(func() error {
			data := stdin
			if name != stdinName {
				var err error
				if data, err = os.ReadFile(name); err != nil {
					return fmt.Errorf("failed to read %s: %w", name, err)
				}
			}

			result, err := process(data)
			if err != nil {
				return fmt.Errorf("failed to process %s: %w", name, err)
			}
			result["source"] = name
			results[i] = result

			logger.Debug("Input processed", "source", name, "bytes", len(data))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	for _, result := range results {
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	return nil
}
