package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/nao1215/pageflow/internal/report"
	"github.com/spf13/cobra"
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeReport parses the JSON report written by the commands.
func decodeReport(t *testing.T, output string) *report.Reflow {
	t.Helper()

	var wrapped report.JSONReport
	if err := json.Unmarshal([]byte(output), &wrapped); err != nil {
		t.Fatalf("invalid JSON report: %v\n%s", err, output)
	}
	if wrapped.Report == nil {
		t.Fatal("expected a report")
	}
	return wrapped.Report
}

// pageContent returns the rendered markup of one page container.
func pageContent(t *testing.T, path string, page int) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	html := string(data)

	start := strings.Index(html, `id="page-container-`+strconv.Itoa(page)+`"`)
	if start < 0 {
		t.Fatalf("page %d not found in output", page)
	}
	end := strings.Index(html[start:], "</div>")
	if end < 0 {
		t.Fatalf("page %d is not closed", page)
	}
	return html[start : start+end]
}

// TestReflowCmd tests the reflow command end to end.
func TestReflowCmd(t *testing.T) {
	t.Parallel()

	t.Run("moves the overflowing block and writes the document", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		doc := writeTestDocument(t, dir)
		outPath := filepath.Join(dir, "out", "manual.html")

		output, err := execute(t, NewReflowCmd(),
			"-c", writeEmptyConfig(t, dir),
			"--db-dir", filepath.Join(dir, "db"),
			"--settle", "0s",
			"-o", outPath,
			"-j",
			doc,
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		r := decodeReport(t, output)
		if !r.Converged || r.Applied != 1 {
			t.Errorf("expected one converged move, got %+v", r)
		}

		page1 := pageContent(t, outPath, 1)
		page2 := pageContent(t, outPath, 2)
		if strings.Contains(page1, "long") {
			t.Error("expected the overflowing block to leave page 1")
		}
		if !strings.Contains(page2, "long") || strings.Index(page2, "long") > strings.Index(page2, "tail") {
			t.Errorf("expected the moved block at the top of page 2, got %s", page2)
		}
	})

	t.Run("applies edits and hides pages", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		doc := writeTestDocument(t, dir)
		outPath := filepath.Join(dir, "out.html")

		output, err := execute(t, NewReflowCmd(),
			"-c", writeEmptyConfig(t, dir),
			"--no-save",
			"--settle", "0s",
			"--set", "1:0=<b>edited</b>",
			"--hide", "2",
			"-o", outPath,
			"-j",
			doc,
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		r := decodeReport(t, output)
		if r.Pages[1].State != "hidden" {
			t.Errorf("expected page 2 hidden, got %s", r.Pages[1].State)
		}
		if r.Pages[1].Blocks != 2 {
			t.Errorf("expected 2 blocks in hidden page 2, got %d", r.Pages[1].Blocks)
		}
		if !strings.Contains(pageContent(t, outPath, 1), "<b>edited</b>") {
			t.Error("expected the edit in the written document")
		}
	})

	t.Run("writes the blocks of hidden pages", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		outPath := filepath.Join(dir, "out.html")

		output, err := execute(t, NewReflowCmd(),
			"-c", writeEmptyConfig(t, dir),
			"--no-save",
			"--settle", "0s",
			"--hide", "2",
			"-o", outPath,
			"-j",
			writeTestDocument(t, dir),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r := decodeReport(t, output); r.Pages[1].State != "hidden" {
			t.Fatalf("expected page 2 hidden, got %s", r.Pages[1].State)
		}

		page1 := pageContent(t, outPath, 1)
		page2 := pageContent(t, outPath, 2)
		if !strings.Contains(page1, "intro") || strings.Contains(page1, "long") {
			t.Errorf("expected only the introduction on page 1, got %s", page1)
		}
		long, tail := strings.Index(page2, "long"), strings.Index(page2, "tail")
		if long < 0 || tail < 0 || long > tail {
			t.Errorf("expected the hidden blocks in order on page 2, got %s", page2)
		}
	})

	t.Run("writes a markdown report file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		reportPath := filepath.Join(dir, "reports", "report.md")

		_, err := execute(t, NewReflowCmd(),
			"-c", writeEmptyConfig(t, dir),
			"--no-save",
			"--settle", "0s",
			"-m",
			"-r", reportPath,
			writeTestDocument(t, dir),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "# Pageflow Report") {
			t.Error("expected a markdown report")
		}
	})

	t.Run("rejects conflicting report formats", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := execute(t, NewReflowCmd(),
			"-c", writeEmptyConfig(t, dir),
			"-j", "-m",
			writeTestDocument(t, dir),
		)
		if err == nil || !strings.Contains(err.Error(), "conflicting report formats") {
			t.Fatalf("expected conflicting formats error, got %v", err)
		}
	})

	t.Run("rejects pages that may not be hidden", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := execute(t, NewReflowCmd(),
			"-c", writeEmptyConfig(t, dir),
			"--no-save",
			"--hide", "1",
			writeTestDocument(t, dir),
		)
		if err == nil || !strings.Contains(err.Error(), "hide page 1") {
			t.Fatalf("expected hide error, got %v", err)
		}
	})

	t.Run("rejects malformed edits", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := execute(t, NewReflowCmd(),
			"-c", writeEmptyConfig(t, dir),
			"--set", "oops",
			writeTestDocument(t, dir),
		)
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("fails on missing document", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := execute(t, NewReflowCmd(),
			"-c", writeEmptyConfig(t, dir),
			"--no-save",
			filepath.Join(dir, "missing.html"),
		)
		if err == nil || !strings.Contains(err.Error(), "failed to open document") {
			t.Fatalf("expected open error, got %v", err)
		}
	})
}
