package engine

import (
	"context"
	"fmt"

	"github.com/nao1215/pageflow/internal/host"
	"github.com/nao1215/pageflow/internal/model"
)

// apply moves one block. It runs on the queue's drain, with e.mu held by
// the reflow that started the drain.
//
// The destination is resolved before the source is touched, so a dropped
// operation never loses a block. Overflow arrivals are placed first on the
// destination page and underflow arrivals last, whether the destination is
// live or virtual. A block moved between two live pages keeps its node.
func (e *Engine) apply(ctx context.Context, op model.Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from, to := op.FromPage, op.Target()
	if err := e.checkPage(to); err != nil {
		return err
	}

	if e.state(from) == PageHidden {
		return e.applyFromStore(op, from, to)
	}
	return e.applyFromContainer(op, from, to)
}

// checkPage verifies that page can receive a block.
func (e *Engine) checkPage(page int) error {
	if e.state(page) == PageHidden {
		if _, ok := e.stores[page]; ok {
			return nil
		}
	}
	_, err := e.doc.Container(page)
	return err
}

// applyFromContainer detaches a live block and places it on page to.
func (e *Engine) applyFromContainer(op model.Operation, from, to int) error {
	src, err := e.doc.Container(from)
	if err != nil {
		return err
	}
	if op.ElementIndex < 0 || op.ElementIndex >= src.Len() {
		return fmt.Errorf("%w: %s, page %d holds %d blocks", ErrStaleReference, op, from, src.Len())
	}

	if e.state(to) == PageHidden {
		var height float64
		if rects := src.ChildBounds(); op.ElementIndex < len(rects) {
			height = rects[op.ElementIndex].Height()
		}
		b, err := src.Remove(op.ElementIndex)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStaleReference, err)
		}
		d := host.Describe(b)
		d.Height = hiddenHeight(height)
		e.place(op, d)
		return nil
	}

	dst, err := e.doc.Container(to)
	if err != nil {
		return err
	}
	b, err := src.Remove(op.ElementIndex)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStaleReference, err)
	}
	return insert(op, dst, b)
}

// applyFromStore takes a block out of a virtual store and places it on
// page to.
func (e *Engine) applyFromStore(op model.Operation, from, to int) error {
	store := e.stores[from]
	if store == nil || op.ElementIndex < 0 || op.ElementIndex >= store.Len() {
		return fmt.Errorf("%w: %s", ErrStaleReference, op)
	}

	if e.state(to) == PageHidden {
		d, err := store.RemoveAt(op.ElementIndex)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStaleReference, err)
		}
		e.place(op, d)
		return nil
	}

	dst, err := e.doc.Container(to)
	if err != nil {
		return err
	}
	b, err := e.doc.NewBlock(store.Descriptors()[op.ElementIndex])
	if err != nil {
		return err
	}
	if _, err := store.RemoveAt(op.ElementIndex); err != nil {
		return fmt.Errorf("%w: %w", ErrStaleReference, err)
	}
	return insert(op, dst, b)
}

// place adds d to the store of the hidden destination page.
func (e *Engine) place(op model.Operation, d model.ContentDescriptor) {
	store := e.stores[op.Target()]
	if op.Kind == model.OperationOverflow {
		store.Prepend(d)
		return
	}
	store.Append(d)
}

// insert adds b to a live destination container.
func insert(op model.Operation, dst host.Container, b host.Block) error {
	if op.Kind == model.OperationOverflow {
		return dst.Prepend(b)
	}
	return dst.Append(b)
}

// hiddenHeight is the height recorded for a block entering a virtual
// store. Unmeasured blocks count as one line break.
func hiddenHeight(measured float64) float64 {
	if measured > 0 {
		return measured
	}
	return model.LineBreakHeight
}
