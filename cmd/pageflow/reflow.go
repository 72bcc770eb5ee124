package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/pageflow/internal/config"
	"github.com/nao1215/pageflow/internal/engine"
	"github.com/spf13/cobra"
)

// NewReflowCmd creates the reflow command.
func NewReflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reflow <document>",
		Short: "Balance the content of an HTML document across its pages",
		Long: `Reflow moves content blocks between the pages of an HTML document until
every page fits within the height threshold.

Block heights are read from the data-height attribute. Blocks without one
are estimated from their tag and the length of their markup. The top padding
of a page is read from data-padding-top or the padding-top style.

The run stops when no page overflows or underflows, when no move could be
applied, when an arrangement repeats, or when the cycle limit is reached.
The final arrangement is saved to the snapshot database.

Examples:
  # Reflow a document and print a summary
  pageflow reflow manual.html

  # Write the reflowed document
  pageflow reflow -o out/manual.html manual.html

  # Hide page 2 and use a smaller threshold
  pageflow reflow --hide 2 --threshold 1200 manual.html

  # Replace the markup of the first block on page 1 before reflowing
  pageflow reflow --set '1:0=A much longer introduction' manual.html

  # Output a Markdown report to a file
  pageflow reflow -m -r report.md manual.html`,
		Args: cobra.ExactArgs(1),
		RunE: runReflowCmd,
	}

	addLayoutFlags(cmd)
	addReportFlags(cmd)

	cmd.Flags().IntSlice("hide", nil,
		"Pages to hide before reflowing")
	cmd.Flags().StringArray("set", nil,
		"Replace the markup of a block before reflowing (page:index=markup)")

	return cmd
}

// runReflowCmd executes the reflow command.
func runReflowCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	sets, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return err
	}
	edits := make([]edit, 0, len(sets))
	for _, s := range sets {
		e, err := parseEdit(s)
		if err != nil {
			return err
		}
		edits = append(edits, e)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runReflow(ctx, cfg, edits, logger, cmd.OutOrStdout())
}

// runReflow applies the edits, hides the configured pages and reflows.
func runReflow(ctx context.Context, cfg *config.Config, edits []edit, logger *slog.Logger, out io.Writer) error {
	s, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, e := range edits {
		if err := e.apply(s.doc); err != nil {
			return err
		}
	}

	var total engine.Result
	if err := s.hidePages(ctx, &total); err != nil {
		return err
	}

	result, err := s.engine.Reflow(ctx)
	if err != nil {
		return fmt.Errorf("reflow failed: %w", err)
	}
	accumulate(&total, result)

	logger.Info("reflow finished",
		"document", cfg.DocumentKey,
		"cycles", total.Cycles,
		"applied", total.Applied,
		"reason", total.Reason.String(),
	)

	if err := s.writeDocument(); err != nil {
		return err
	}
	return outputReport(cfg, s.report(total), out)
}
