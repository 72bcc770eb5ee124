package engine

import (
	"context"
	"fmt"
)

// Restore replaces the content of every page with the persisted snapshot
// and reflows. Pages hidden now stay hidden and receive the restored blocks
// in their virtual store. Blocks of pages missing from the document are
// skipped.
func (e *Engine) Restore(ctx context.Context) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.persistence == nil {
		return Result{}, ErrNoBackup
	}
	snapshot, ok, err := e.persistence.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if !ok {
		return Result{}, ErrNoBackup
	}

	for _, page := range e.pages() {
		if store, ok := e.stores[page]; ok {
			store.Reset()
			continue
		}
		if c, err := e.doc.Container(page); err == nil {
			c.Clear()
		}
	}

	restored := 0
	for _, d := range snapshot.Descriptors {
		page := d.PageNumber
		if store, ok := e.stores[page]; ok && e.state(page) == PageHidden {
			d.Height = hiddenHeight(d.Height)
			store.Append(d)
			restored++
			continue
		}

		c, err := e.doc.Container(page)
		if err != nil {
			e.logger.Warn("restored block skipped", "page", page, "error", err)
			continue
		}
		b, err := e.doc.NewBlock(d)
		if err != nil {
			e.logger.Warn("restored block skipped", "page", page, "error", err)
			continue
		}
		if err := c.Append(b); err != nil {
			return Result{}, err
		}
		restored++
	}
	e.logger.Debug("snapshot restored", "blocks", restored)

	// The restored arrangement is what was saved last.
	e.lastSaved = snapshot.Fingerprint()
	return e.reflow(ctx)
}
