package engine

import (
	"context"
	"fmt"

	"github.com/nao1215/pageflow/internal/host"
	"github.com/nao1215/pageflow/internal/virtual"
)

// Toggle hides a visible page or shows a hidden one, then reflows.
func (e *Engine) Toggle(ctx context.Context, page int) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state(page) == PageHidden {
		return e.show(ctx, page)
	}
	return e.hide(ctx, page)
}

// Hide moves the blocks of page into a virtual store and empties its
// container, then reflows. Hiding a hidden page only reflows.
func (e *Engine) Hide(ctx context.Context, page int) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state(page) == PageHidden {
		return e.reflow(ctx)
	}
	return e.hide(ctx, page)
}

// Show replays the virtual store of page into its container, then reflows.
// Showing a visible page only reflows.
func (e *Engine) Show(ctx context.Context, page int) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state(page) != PageHidden {
		return e.reflow(ctx)
	}
	return e.show(ctx, page)
}

func (e *Engine) hide(ctx context.Context, page int) (Result, error) {
	if !e.hideable[page] {
		return Result{}, fmt.Errorf("%w: page %d", ErrNotHideable, page)
	}
	c, err := e.doc.Container(page)
	if err != nil {
		return Result{}, err
	}

	rects := c.ChildBounds()
	blocks := c.Clear()
	padding, ok := c.PaddingTop()
	if !ok || padding < 0 {
		padding = e.padding
	}
	store := virtual.NewStore(page, padding)
	for i, b := range blocks {
		d := host.Describe(b)
		var height float64
		if i < len(rects) {
			height = rects[i].Height()
		}
		d.Height = hiddenHeight(height)
		store.Append(d)
	}

	e.stores[page] = store
	e.states[page] = PageHidden
	e.logger.Debug("page hidden", "page", page, "blocks", store.Len())

	return e.reflow(ctx)
}

func (e *Engine) show(ctx context.Context, page int) (Result, error) {
	if !e.hideable[page] {
		return Result{}, fmt.Errorf("%w: page %d", ErrNotHideable, page)
	}
	c, err := e.doc.Container(page)
	if err != nil {
		return Result{}, err
	}

	store := e.stores[page]
	descs := store.Descriptors()
	for i, d := range descs {
		b, err := e.doc.NewBlock(d)
		if err != nil {
			return Result{}, fmt.Errorf("failed to materialize block %d of page %d: %w", i, page, err)
		}
		if err := c.Append(b); err != nil {
			return Result{}, err
		}
	}

	store.Reset()
	delete(e.stores, page)
	e.states[page] = PageVisible
	e.logger.Debug("page shown", "page", page, "blocks", len(descs))

	return e.reflow(ctx)
}

// Materialize places the blocks of every hidden page into its container,
// calls fn and takes them out again. Pages stay hidden and their virtual
// stores are untouched, so fn sees the full document without a reflow.
func (e *Engine) Materialize(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	type placed struct {
		c     host.Container
		start int
	}
	var undo []placed
	defer func() {
		for _, p := range undo {
			for p.c.Len() > p.start {
				if _, err := p.c.Remove(p.start); err != nil {
					e.logger.Warn("failed to take back materialized block", "page", p.c.Page(), "error", err)
					break
				}
			}
		}
	}()

	for _, page := range e.pages() {
		store, ok := e.stores[page]
		if !ok || e.state(page) != PageHidden {
			continue
		}
		c, err := e.doc.Container(page)
		if err != nil {
			return err
		}
		undo = append(undo, placed{c: c, start: c.Len()})
		for i, d := range store.Descriptors() {
			b, err := e.doc.NewBlock(d)
			if err != nil {
				return fmt.Errorf("failed to materialize block %d of page %d: %w", i, page, err)
			}
			if err := c.Append(b); err != nil {
				return err
			}
		}
	}
	return fn()
}
