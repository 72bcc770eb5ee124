package host

import (
	"errors"
	"strconv"

	"github.com/nao1215/pageflow/internal/model"
)

// ContainerIDPrefix prefixes the id of every page container.
const ContainerIDPrefix = "page-container-"

var (
	// ErrMissingContainer is returned when a page container does not exist
	// in the host document.
	ErrMissingContainer = errors.New("page container not found")

	// ErrIndexOutOfRange is returned when a container has no block at the
	// requested index.
	ErrIndexOutOfRange = errors.New("block index out of range")

	// ErrNoContainers is returned when a document holds no page container.
	ErrNoContainers = errors.New("document has no page containers")
)

// ContainerID returns the element id of the container for page.
func ContainerID(page int) string {
	return ContainerIDPrefix + strconv.Itoa(page)
}

// Block is one content block of a page.
// A block obtained from Remove or Clear is detached and may be inserted into
// another container of the same document.
type Block interface {
	// Tag returns the lower-case element name.
	Tag() string

	// Attributes returns a copy of the block's attributes.
	Attributes() map[string]string

	// Markup returns the serialized inner content.
	Markup() string
}

// Container is one page container.
type Container interface {
	// Page returns the page number.
	Page() int

	// Len returns the number of blocks.
	Len() int

	// Bounds returns the container's extent.
	Bounds() model.Rect

	// ChildBounds returns the extent of every block in document order.
	ChildBounds() []model.Rect

	// PaddingTop returns the container's top padding and whether it could be
	// read.
	PaddingTop() (float64, bool)

	// Child returns the block at index without detaching it.
	Child(index int) (Block, error)

	// Remove detaches and returns the block at index.
	Remove(index int) (Block, error)

	// Prepend inserts b before the first child.
	Prepend(b Block) error

	// Append inserts b after the last child.
	Append(b Block) error

	// Clear detaches every block and returns them in document order.
	Clear() []Block
}

// Document is a set of page containers.
type Document interface {
	// Pages returns the page numbers of all containers, ascending.
	Pages() []int

	// Container returns the container for page or ErrMissingContainer.
	Container(page int) (Container, error)

	// NewBlock creates a detached block from a descriptor's tag, attributes
	// and markup.
	NewBlock(d model.ContentDescriptor) (Block, error)

	// Observe registers fn to be called with the page number after every
	// structural or content mutation.
	Observe(fn func(page int))
}

// Describe captures a block's tag, attributes and markup. Geometry and
// placement are left to the caller.
func Describe(b Block) model.ContentDescriptor {
	return model.ContentDescriptor{
		TagName:     model.NormalizeTag(b.Tag()),
		Attributes:  b.Attributes(),
		InnerMarkup: b.Markup(),
	}
}
