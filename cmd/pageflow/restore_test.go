package main

import (
	"path/filepath"
	"strings"
	"testing"
)

// TestRestoreCmd tests restoring a document from the snapshot database.
func TestRestoreCmd(t *testing.T) {
	t.Parallel()

	t.Run("restores the latest arrangement", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfgPath := writeEmptyConfig(t, dir)
		dbDir := filepath.Join(dir, "db")
		doc := writeTestDocument(t, dir)

		if _, err := execute(t, NewReflowCmd(), "-c", cfgPath, "--db-dir", dbDir, "--settle", "0s", doc); err != nil {
			t.Fatalf("reflow failed: %v", err)
		}

		// The document on disk still has the unbalanced arrangement.
		outPath := filepath.Join(dir, "restored.html")
		output, err := execute(t, NewRestoreCmd(), "-c", cfgPath, "--db-dir", dbDir, "--settle", "0s", "-o", outPath, "-j", doc)
		if err != nil {
			t.Fatalf("restore failed: %v", err)
		}

		r := decodeReport(t, output)
		if !r.Converged {
			t.Errorf("expected converged restore, got %s", r.StopReason)
		}
		page2 := pageContent(t, outPath, 2)
		if !strings.Contains(page2, "long") || strings.Contains(pageContent(t, outPath, 1), "long") {
			t.Errorf("expected the restored block on page 2, got %s", page2)
		}
	})

	t.Run("fails without a snapshot", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := execute(t, NewRestoreCmd(),
			"-c", writeEmptyConfig(t, dir),
			"--db-dir", filepath.Join(dir, "db"),
			writeTestDocument(t, dir),
		)
		if err == nil || !strings.Contains(err.Error(), "no snapshot saved") {
			t.Fatalf("expected missing snapshot error, got %v", err)
		}
	})

	t.Run("needs the database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := execute(t, NewRestoreCmd(),
			"-c", writeEmptyConfig(t, dir),
			"--no-save",
			writeTestDocument(t, dir),
		)
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}
