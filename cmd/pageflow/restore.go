package main

import (
	"context"
	"errors"
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

// NewRestoreCmd creates the restore command.
func NewRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <document>",
		Short: "Rebuild a document from its latest saved snapshot",
		Long: `Restore replaces the content of every page with the latest snapshot saved for
the document, then reflows.

The document itself supplies the page containers; its current content is
discarded.

Examples:
  # Restore and write the document
  pageflow restore -o restored.html manual.html

  # Restore a snapshot saved under a custom key
  pageflow restore --key manual -o restored.html manual.html`,
		Args: cobra.ExactArgs(1),
		RunE: runRestoreCmd,
	}

	addLayoutFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runRestoreCmd executes the restore command.
func runRestoreCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if !cfg.SaveToDB {
		return errors.New("restore needs the snapshot database (remove --no-save)")
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runRestore(ctx, cfg, logger, cmd.OutOrStdout())
}

// runRestore loads the latest snapshot into the document.
func runRestore(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	s, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.engine.Restore(ctx)
	if errors.Is(err, engine.ErrNoBackup) {
		return fmt.Errorf("no snapshot saved for %s (run 'pageflow reflow' first)", cfg.DocumentKey)
	}
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	if err := s.writeDocument(); err != nil {
		return err
	}
	return outputReport(cfg, s.report(result), out)
}
