package virtual

import (
	"errors"
	"fmt"

	"github.com/nao1215/pageflow/internal/model"
)

const (
	// DefaultGap is the spacing between blocks when the reference page has
	// fewer than two blocks.
	DefaultGap = 4.0

	// DefaultPadding is the top padding used when the hidden container's
	// padding cannot be read.
	DefaultPadding = 24.0
)

// ErrIndexOutOfRange is returned when a store index does not exist.
var ErrIndexOutOfRange = errors.New("virtual store index out of range")

// Store holds the content descriptors of one hidden page.
type Store struct {
	page    int
	padding float64
	descs   []model.ContentDescriptor
}

// NewStore creates an empty store for page. The padding is the hidden
// container's top padding, read once when the page was emptied.
func NewStore(page int, padding float64) *Store {
	return &Store{
		page:    page,
		padding: padding,
		descs:   make([]model.ContentDescriptor, 0),
	}
}

// Page returns the page number the store belongs to.
func (s *Store) Page() int {
	return s.page
}

// Padding returns the starting offset used by Estimate.
func (s *Store) Padding() float64 {
	return s.padding
}

// Len returns the number of held descriptors.
func (s *Store) Len() int {
	return len(s.descs)
}

// Descriptors returns a copy of the held descriptors in order.
func (s *Store) Descriptors() []model.ContentDescriptor {
	out := make([]model.ContentDescriptor, len(s.descs))
	for i, d := range s.descs {
		out[i] = d.Clone()
	}
	return out
}

// Prepend inserts a descriptor at the top of the page. Content arriving by
// overflow from the previous page lands here.
func (s *Store) Prepend(d model.ContentDescriptor) {
	d = s.adopt(d)
	s.descs = append([]model.ContentDescriptor{d}, s.descs...)
}

// Append inserts a descriptor at the bottom of the page. Content arriving by
// underflow from the next page lands here.
func (s *Store) Append(d model.ContentDescriptor) {
	s.descs = append(s.descs, s.adopt(d))
}

// RemoveAt removes and returns the descriptor at index.
func (s *Store) RemoveAt(index int) (model.ContentDescriptor, error) {
	if index < 0 || index >= len(s.descs) {
		return model.ContentDescriptor{}, fmt.Errorf("%w: index %d, page %d holds %d blocks",
			ErrIndexOutOfRange, index, s.page, len(s.descs))
	}
	d := s.descs[index]
	s.descs = append(s.descs[:index], s.descs[index+1:]...)
	return d, nil
}

// Reset empties the store and returns what it held, in order.
func (s *Store) Reset() []model.ContentDescriptor {
	out := s.descs
	s.descs = make([]model.ContentDescriptor, 0)
	return out
}

// adopt copies d and marks it as owned by this page, not yet placed.
func (s *Store) adopt(d model.ContentDescriptor) model.ContentDescriptor {
	d = d.Clone()
	d.PageNumber = s.page
	d.BottomPosition = 0
	return d
}
