package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/pageflow/internal/host"
	"github.com/nao1215/pageflow/internal/model"
)

// buildDoc creates a document with one container per height list. Every
// container has a 24 unit top padding and block i of page p carries the
// markup "p{p}-{i}".
func buildDoc(t *testing.T, pages ...[]float64) *host.HTMLDocument {
	t.Helper()

	var b strings.Builder
	b.WriteString("<html><body>")
	for i, heights := range pages {
		fmt.Fprintf(&b, `<div id="page-container-%d" data-padding-top="24">`, i+1)
		for j, h := range heights {
			fmt.Fprintf(&b, `<p data-height="%g">p%d-%d</p>`, h, i+1, j)
		}
		b.WriteString("</div>")
	}
	b.WriteString("</body></html>")

	doc, err := host.ParseHTML(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}
	return doc
}

func newEngine(t *testing.T, doc host.Document, opts ...Option) *Engine {
	t.Helper()

	base := []Option{
		WithSettleDelay(0),
		WithLogger(slog.New(slog.DiscardHandler)),
	}
	e, err := New(doc, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

// markups returns the markup of every live block of page.
func markups(t *testing.T, doc host.Document, page int) []string {
	t.Helper()

	c, err := doc.Container(page)
	if err != nil {
		t.Fatalf("Container(%d) error = %v", page, err)
	}
	out := make([]string, c.Len())
	for i := range out {
		b, err := c.Child(i)
		if err != nil {
			t.Fatalf("Child(%d) error = %v", i, err)
		}
		out[i] = b.Markup()
	}
	return out
}

// appendBlock adds a block with the given height and markup to page.
func appendBlock(t *testing.T, doc host.Document, page int, height float64, markup string) {
	t.Helper()

	b, err := doc.NewBlock(model.ContentDescriptor{
		TagName:     "p",
		Attributes:  map[string]string{host.HeightAttribute: fmt.Sprint(height)},
		InnerMarkup: markup,
	})
	if err != nil {
		t.Fatalf("NewBlock() error = %v", err)
	}
	c, err := doc.Container(page)
	if err != nil {
		t.Fatalf("Container(%d) error = %v", page, err)
	}
	if err := c.Append(b); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
}

func removeBlock(t *testing.T, doc host.Document, page, index int) {
	t.Helper()

	c, err := doc.Container(page)
	if err != nil {
		t.Fatalf("Container(%d) error = %v", page, err)
	}
	if _, err := c.Remove(index); err != nil {
		t.Fatalf("Remove(%d) error = %v", index, err)
	}
}

func equalStrings(t *testing.T, label string, got, want []string) {
	t.Helper()

	if !slices.Equal(got, want) {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

// memoryPersistence keeps saved snapshots in memory.
type memoryPersistence struct {
	mu      sync.Mutex
	saved   []model.Snapshot
	saveErr error
	loadErr error
}

func (m *memoryPersistence) Save(_ context.Context, snapshot model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, snapshot.Clone())
	return nil
}

func (m *memoryPersistence) Load(_ context.Context) (model.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadErr != nil {
		return model.Snapshot{}, false, m.loadErr
	}
	if len(m.saved) == 0 {
		return model.Snapshot{}, false, nil
	}
	return m.saved[len(m.saved)-1].Clone(), true, nil
}

func (m *memoryPersistence) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

// missingPage hides one container from the engine while still listing it.
type missingPage struct {
	*host.HTMLDocument
	page int
}

func (m missingPage) Container(page int) (host.Container, error) {
	if page == m.page {
		return nil, fmt.Errorf("%w: %s", host.ErrMissingContainer, host.ContainerID(page))
	}
	return m.HTMLDocument.Container(page)
}

func (m missingPage) Pages() []int {
	return append(m.HTMLDocument.Pages(), m.page)
}
