package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/nao1215/pageflow/internal/host"
	"github.com/nao1215/pageflow/internal/model"
	"github.com/nao1215/pageflow/internal/virtual"
)

// Snapshot captures the current arrangement of every page.
// It returns ErrQueueDraining while operations are being applied.
func (e *Engine) Snapshot(ctx context.Context) (model.Snapshot, error) {
	if e.queue.Draining() {
		return model.Snapshot{}, ErrQueueDraining
	}
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// snapshot builds a snapshot. e.mu must be held.
//
// Visible pages contribute one descriptor per block with its measured
// height and its bottom relative to the container top. Hidden pages
// contribute their store's estimate. Pages whose container is missing are
// skipped for this snapshot.
func (e *Engine) snapshot() (model.Snapshot, error) {
	if e.queue.Draining() {
		return model.Snapshot{}, ErrQueueDraining
	}

	var (
		descs []model.ContentDescriptor
		pages []int
	)
	for _, page := range e.pages() {
		if store, ok := e.stores[page]; ok && e.state(page) == PageHidden {
			descs = append(descs, store.Estimate(e.referenceGap(page))...)
			pages = append(pages, page)
			continue
		}

		live, err := e.describe(page)
		if err != nil {
			e.logger.Warn("page skipped", "page", page, "error", err)
			continue
		}
		descs = append(descs, live...)
		pages = append(pages, page)
	}

	return model.NewSnapshot(descs, pages...), nil
}

// pages returns every page known to the document or the engine, ascending.
func (e *Engine) pages() []int {
	pages := e.doc.Pages()
	for page := range e.stores {
		if !slices.Contains(pages, page) {
			pages = append(pages, page)
		}
	}
	slices.Sort(pages)
	return pages
}

// describe reads the live blocks of page.
func (e *Engine) describe(page int) ([]model.ContentDescriptor, error) {
	c, err := e.doc.Container(page)
	if err != nil {
		return nil, err
	}

	top := c.Bounds().Top
	rects := c.ChildBounds()
	descs := make([]model.ContentDescriptor, 0, len(rects))
	for i, r := range rects {
		b, err := c.Child(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read block %d of page %d: %w", i, page, err)
		}
		d := host.Describe(b)
		d.Height = r.Height()
		d.BottomPosition = r.Bottom - top
		d.PageNumber = page
		d.ElementIndex = i
		descs = append(descs, d)
	}
	return descs, nil
}

// referenceGap returns the average gap between the blocks of the visible
// page preceding page. The fallback gap is used when that page is hidden,
// missing, or holds fewer than two blocks.
func (e *Engine) referenceGap(page int) float64 {
	var ref int
	for _, p := range e.doc.Pages() {
		if p < page {
			ref = p
		}
	}
	if ref == 0 || e.state(ref) == PageHidden {
		return e.gap
	}

	c, err := e.doc.Container(ref)
	if err != nil {
		return e.gap
	}
	rects := c.ChildBounds()
	if len(rects) < 2 {
		return e.gap
	}
	return virtual.AverageGap(rects)
}
