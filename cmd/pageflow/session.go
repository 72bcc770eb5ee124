package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/pageflow/internal/analyzer"
	"github.com/nao1215/pageflow/internal/config"
	"github.com/nao1215/pageflow/internal/database"
	"github.com/nao1215/pageflow/internal/engine"
	"github.com/nao1215/pageflow/internal/host"
	applog "github.com/nao1215/pageflow/internal/log"
	"github.com/nao1215/pageflow/internal/report"
	"github.com/spf13/cobra"
)

// errInvalidEdit is returned for a malformed --set value or edit command.
var errInvalidEdit = errors.New("invalid edit")

// session is an opened document with its engine and snapshot database.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	doc    *host.HTMLDocument
	engine *engine.Engine

	// db is nil when snapshot persistence is disabled.
	db *database.SnapshotDB
}

// openSession parses the document and builds an engine for it.
func openSession(cfg *config.Config, logger *slog.Logger) (*session, error) {
	f, err := os.Open(cfg.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	doc, err := host.ParseHTML(f, host.WithSpacing(cfg.Spacing))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", cfg.Document, err)
	}

	s := &session{cfg: cfg, logger: logger, doc: doc}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithLimits(cfg.Limits()),
		engine.WithSettleDelay(cfg.SettleDelay),
		engine.WithMaxCycles(cfg.MaxCycles),
		engine.WithHideable(cfg.Hideable...),
		engine.WithFallbackLayout(cfg.Padding, cfg.Gap),
	}
	if cfg.Sequential {
		opts = append(opts, engine.WithDispatcher(analyzer.NewSequential(analyzer.WithLogger(logger))))
	}

	if cfg.SaveToDB {
		s.db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		opts = append(opts, engine.WithPersistence(s.db.For(cfg.DocumentKey)))
		logger.Debug("database opened", "path", s.db.Path(), "document", cfg.DocumentKey)
	}

	s.engine, err = engine.New(doc, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the snapshot database.
func (s *session) Close() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("failed to close database", "error", err)
	}
}

// hidePages hides the configured pages and adds the runs to total.
func (s *session) hidePages(ctx context.Context, total *engine.Result) error {
	for _, page := range s.cfg.Hidden {
		r, err := s.engine.Hide(ctx, page)
		if err != nil {
			return fmt.Errorf("failed to hide page %d: %w", page, err)
		}
		accumulate(total, r)
	}
	return nil
}

// report builds the report of a run.
func (s *session) report(result engine.Result) *report.Reflow {
	return report.NewReflow(s.cfg.DocumentKey, result, s.cfg.Limits(), s.engine.State)
}

// writeDocument renders the document to the configured output file.
// Nothing is written when no output file is configured.
func (s *session) writeDocument() error {
	if s.cfg.OutputFile == "" {
		return nil
	}
	if err := ensureDir(s.cfg.OutputFile); err != nil {
		return err
	}

	f, err := os.OpenFile(s.cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	// Hidden pages are written with their content.
	if err := s.engine.Materialize(func() error {
		return s.doc.Render(f)
	}); err != nil {
		f.Close()
		return fmt.Errorf("failed to render document: %w", err)
	}
	return f.Close()
}

// accumulate adds the counters of r to total and keeps the latest outcome.
func accumulate(total *engine.Result, r engine.Result) {
	total.Cycles += r.Cycles
	total.Applied += r.Applied
	total.Dropped += r.Dropped
	total.Reason = r.Reason
	total.Snapshot = r.Snapshot
}

// edit replaces the inner markup of one block.
type edit struct {
	page   int
	index  int
	markup string
}

// parseEdit parses "page:index=markup".
func parseEdit(s string) (edit, error) {
	target, markup, ok := strings.Cut(s, "=")
	if !ok {
		return edit{}, fmt.Errorf("%w %q: expected page:index=markup", errInvalidEdit, s)
	}
	pageStr, indexStr, ok := strings.Cut(target, ":")
	if !ok {
		return edit{}, fmt.Errorf("%w %q: expected page:index=markup", errInvalidEdit, s)
	}

	page, err := strconv.Atoi(strings.TrimSpace(pageStr))
	if err != nil || page < 1 {
		return edit{}, fmt.Errorf("%w %q: page must be a positive number", errInvalidEdit, s)
	}
	index, err := strconv.Atoi(strings.TrimSpace(indexStr))
	if err != nil || index < 0 {
		return edit{}, fmt.Errorf("%w %q: index must be a non-negative number", errInvalidEdit, s)
	}
	return edit{page: page, index: index, markup: markup}, nil
}

// apply performs the edit on doc.
func (e edit) apply(doc *host.HTMLDocument) error {
	if err := doc.SetMarkup(e.page, e.index, e.markup); err != nil {
		return fmt.Errorf("failed to edit block %d on page %d: %w", e.index, e.page, err)
	}
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity setting.
// Block payloads are elided from every record.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return applog.NewLogger(w, verbose)
}

// addLayoutFlags registers the flags shared by the commands that open a
// document.
func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pageflow in the current directory, the XDG config directory or home)")
	cmd.Flags().StringP("key", "k", "",
		"Document key in the snapshot database (default: absolute document path)")
	cmd.Flags().Float64P("threshold", "t", config.DefaultThreshold,
		"Page height budget")
	cmd.Flags().Float64("tolerance", config.DefaultTolerance,
		"Slack above the threshold before a page overflows")
	cmd.Flags().Float64("padding", config.DefaultPadding,
		"Top padding assumed for hidden pages without a readable padding")
	cmd.Flags().Float64("gap", config.DefaultGap,
		"Block gap assumed for hidden pages without a reference page")
	cmd.Flags().Float64("spacing", config.DefaultSpacing,
		"Vertical gap the layout leaves between blocks")
	cmd.Flags().Duration("settle", config.DefaultSettleDelay,
		"Pause between two applied moves")
	cmd.Flags().Int("max-cycles", config.DefaultMaxCycles,
		"Upper bound on the cycles of one reflow run")
	cmd.Flags().Bool("sequential", false,
		"Run the overflow and underflow passes one after another")
	cmd.Flags().IntSlice("hideable", []int{engine.DefaultHideablePage},
		"Pages that may be hidden")
	cmd.Flags().Bool("no-save", false,
		"Do not save snapshots to the database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the snapshot database")
}

// addReportFlags registers the report output flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("output", "o", "",
		"Write the reflowed document to specified file path")
}

// buildConfig creates a Config from the configuration file and the flags
// of cmd. Flags override the file; the file overrides the defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	if len(args) > 0 {
		cfg.Document = args[0]
	}

	flags := cmd.Flags()
	var err error

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not found.
	// If no path is specified, silently use defaults when no file is found.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyLayout(file.GetLayout(filepath.Base(cfg.Document)))
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if cfg.DocumentKey == "" && cfg.Document != "" {
		abs, err := filepath.Abs(cfg.Document)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve document path: %w", err)
		}
		cfg.DocumentKey = abs
	}
	return cfg, nil
}

// applyFlags copies every flag that the user set into cfg. Flags that the
// command does not define are skipped.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	var err error
	floats := map[string]*float64{
		"threshold": &cfg.Threshold,
		"tolerance": &cfg.Tolerance,
		"padding":   &cfg.Padding,
		"gap":       &cfg.Gap,
		"spacing":   &cfg.Spacing,
	}
	for name, dst := range floats {
		if changed(name) {
			if *dst, err = flags.GetFloat64(name); err != nil {
				return err
			}
		}
	}

	durations := map[string]*time.Duration{
		"settle":   &cfg.SettleDelay,
		"debounce": &cfg.Debounce,
	}
	for name, dst := range durations {
		if changed(name) {
			if *dst, err = flags.GetDuration(name); err != nil {
				return err
			}
		}
	}

	if changed("max-cycles") {
		if cfg.MaxCycles, err = flags.GetInt("max-cycles"); err != nil {
			return err
		}
	}
	if changed("sequential") {
		if cfg.Sequential, err = flags.GetBool("sequential"); err != nil {
			return err
		}
	}
	if changed("hideable") {
		if cfg.Hideable, err = flags.GetIntSlice("hideable"); err != nil {
			return err
		}
	}
	if changed("hide") {
		if cfg.Hidden, err = flags.GetIntSlice("hide"); err != nil {
			return err
		}
	}
	if changed("key") {
		if cfg.DocumentKey, err = flags.GetString("key"); err != nil {
			return err
		}
	}
	if changed("no-save") {
		noSave, err := flags.GetBool("no-save")
		if err != nil {
			return err
		}
		cfg.SaveToDB = !noSave
	}

	strs := map[string]*string{
		"db-dir": &cfg.DBDir,
		"report": &cfg.ReportFile,
		"output": &cfg.OutputFile,
	}
	for name, dst := range strs {
		if changed(name) {
			if *dst, err = flags.GetString(name); err != nil {
				return err
			}
		}
	}

	bools := map[string]*bool{
		"json":     &cfg.JSONReport,
		"markdown": &cfg.MarkdownReport,
	}
	for name, dst := range bools {
		if changed(name) {
			if *dst, err = flags.GetBool(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// outputReport writes the report in the requested format to the report
// file, or to out when no report file is configured.
func outputReport(cfg *config.Config, r *report.Reflow, out io.Writer) error {
	if cfg.ReportFile != "" {
		if err := ensureDir(cfg.ReportFile); err != nil {
			return err
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
	_, err := w.Write(r)
	return err
}
