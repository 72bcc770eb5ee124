package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/nao1215/pageflow/internal/config"
	"github.com/nao1215/pageflow/internal/engine"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewEditCmd creates the edit command.
func NewEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <document>",
		Short: "Apply a stream of edits and reflow after each quiet period",
		Long: `Edit reads edit commands from standard input (or --script) and applies them to
the document while it is being reflowed. Edits that arrive within the debounce
window of each other are coalesced into one reflow.

Commands, one per line:
  set <page>:<index>=<markup>   replace the markup of a block
  hide <page>                   hide a page
  show <page>                   show a hidden page
  toggle <page>                 hide or show a page
  flush                         reflow now if an edit is pending

Blank lines and lines starting with # are ignored. When the input ends, any
pending edit is reflowed and a report of all runs is printed.

Examples:
  # Apply edits from a file and write the result
  pageflow edit --script edits.txt -o out.html manual.html

  # Coalesce edits typed within half a second
  pageflow edit --debounce 500ms manual.html`,
		Args: cobra.ExactArgs(1),
		RunE: runEditCmd,
	}

	addLayoutFlags(cmd)
	addReportFlags(cmd)

	cmd.Flags().Duration("debounce", config.DefaultDebounce,
		"Quiet window that coalesces edits into one reflow")
	cmd.Flags().IntSlice("hide", nil,
		"Pages to hide before reading edits")
	cmd.Flags().StringP("script", "s", "",
		"Read edit commands from a file instead of standard input")

	return cmd
}

// runEditCmd executes the edit command.
func runEditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	in := cmd.InOrStdin()
	script, err := cmd.Flags().GetString("script")
	if err != nil {
		return err
	}
	if script != "" {
		f, err := os.Open(script) //nolint:gosec // User-provided script path is intentional
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runEdit(ctx, cfg, in, logger, cmd.OutOrStdout())
}

// editRecorder collects the results of every reflow of an edit session.
type editRecorder struct {
	mu     sync.Mutex
	total  engine.Result
	failed error
}

func (r *editRecorder) record(result engine.Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		if r.failed == nil {
			r.failed = err
		}
		return
	}
	accumulate(&r.total, result)
}

func (r *editRecorder) result() (engine.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total, r.failed
}

// runEdit applies the edit commands read from in. A scheduler runs the
// reflows in the background; the session ends with one final flush.
func runEdit(ctx context.Context, cfg *config.Config, in io.Reader, logger *slog.Logger, out io.Writer) error {
	s, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	rec := &editRecorder{}
	if err := s.hidePages(ctx, &rec.total); err != nil {
		return err
	}
	sched := s.engine.Watch(cfg.Debounce, rec.record)

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return sched.Run(gctx)
	})

	readErr := readEdits(ctx, in, s, sched, rec)
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if readErr != nil {
		return readErr
	}

	if !sched.Flush(ctx) {
		if total, _ := rec.result(); total.Cycles == 0 {
			rec.record(s.engine.Reflow(ctx))
		}
	}

	total, err := rec.result()
	if err != nil {
		return fmt.Errorf("reflow failed: %w", err)
	}

	logger.Info("edit session finished",
		"document", cfg.DocumentKey,
		"cycles", total.Cycles,
		"applied", total.Applied,
	)

	if err := s.writeDocument(); err != nil {
		return err
	}
	return outputReport(cfg, s.report(total), out)
}

// readEdits applies commands line by line until in is exhausted.
func readEdits(ctx context.Context, in io.Reader, s *session, sched *engine.Scheduler, rec *editRecorder) error {
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := runCommand(ctx, text, s, sched, rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return scanner.Err()
}

// runCommand executes one edit command.
func runCommand(ctx context.Context, text string, s *session, sched *engine.Scheduler, rec *editRecorder) error {
	verb, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	switch verb {
	case "set":
		e, err := parseEdit(arg)
		if err != nil {
			return err
		}
		return e.apply(s.doc)

	case "flush":
		sched.Flush(ctx)
		return nil

	case "hide", "show", "toggle":
		page, err := strconv.Atoi(arg)
		if err != nil || page < 1 {
			return fmt.Errorf("%w %q: page must be a positive number", errInvalidEdit, text)
		}

		var result engine.Result
		switch verb {
		case "hide":
			result, err = s.engine.Hide(ctx, page)
		case "show":
			result, err = s.engine.Show(ctx, page)
		default:
			result, err = s.engine.Toggle(ctx, page)
		}
		if err != nil {
			return err
		}
		rec.record(result, nil)
		return nil

	default:
		return fmt.Errorf("%w %q: unknown command", errInvalidEdit, verb)
	}
}
