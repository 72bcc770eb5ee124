package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nao1215/pageflow/internal/config"
	"github.com/nao1215/pageflow/internal/database"
	"github.com/nao1215/pageflow/internal/model"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [document]",
		Short: "Show the snapshots saved for a document",
		Long: `History lists the snapshots saved in the database for a document, newest
first. Every stable arrangement produced by reflow, edit or restore is saved.

Examples:
  # List the snapshots of a document
  pageflow history manual.html

  # List every document in the database
  pageflow history --list-documents

  # Print one snapshot as JSON
  pageflow history --show 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-documents", "L", false,
		"List all documents in the database")
	cmd.Flags().Int64P("show", "s", 0,
		"Print the snapshot with the given ID as JSON")
	cmd.Flags().StringP("key", "k", "",
		"Document key (default: absolute document path)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the snapshot database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listDocuments, err := cmd.Flags().GetBool("list-documents")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	key, err := cmd.Flags().GetString("key")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	if !listDocuments && showID == 0 && key == "" {
		if len(args) == 0 {
			return errors.New("document is required (use --list-documents to see saved documents)")
		}
		key, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve document path: %w", err)
		}
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case listDocuments:
		return listSavedDocuments(ctx, db, out)
	case showID != 0:
		return showSnapshot(ctx, db, showID, out)
	default:
		return listSnapshotHistory(ctx, db, key, out)
	}
}

// listSavedDocuments lists all documents that have snapshots in the database.
func listSavedDocuments(ctx context.Context, db *database.SnapshotDB, out io.Writer) error {
	documents, err := db.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(documents) == 0 {
		fmt.Fprintln(out, "No documents found in the database.")
		fmt.Fprintln(out, "\nUse 'pageflow reflow <document>' to save a snapshot.")
		return nil
	}

	fmt.Fprintf(out, "Saved documents (%d):\n\n", len(documents))
	for _, doc := range documents {
		fmt.Fprintf(out, "  • %s\n", doc)
	}
	fmt.Fprintln(out, "\nUse 'pageflow history <document>' to see the snapshots of a document.")

	return nil
}

// listSnapshotHistory lists all snapshots of one document.
func listSnapshotHistory(ctx context.Context, db *database.SnapshotDB, key string, out io.Writer) error {
	history, err := db.History(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get snapshot history: %w", err)
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No snapshots found for %s\n", key)
		return nil
	}

	fmt.Fprintf(out, "Snapshot history for %s (%d snapshots):\n\n", key, len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %-6s  %-6s  %s\n", "ID", "Date", "Pages", "Blocks", "Fingerprint")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 64))

	for _, meta := range history {
		fmt.Fprintf(out, "  %-6d  %-20s  %-6d  %-6d  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.Pages,
			meta.Descriptors,
			shortFingerprint(meta.Fingerprint),
		)
	}

	fmt.Fprintln(out, "\nUse 'pageflow history --show <id>' to print a snapshot.")
	return nil
}

// showSnapshot prints one snapshot as JSON.
func showSnapshot(ctx context.Context, db *database.SnapshotDB, id int64, out io.Writer) error {
	record, err := db.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("snapshot %d not found", id)
	}

	data, err := model.MarshalSnapshot(record.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

// shortFingerprint abbreviates a fingerprint for tables.
func shortFingerprint(fp string) string {
	if len(fp) <= 12 {
		return fp
	}
	return fp[:12]
}
