package host

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/nao1215/pageflow/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Layout defaults for HTMLDocument.
const (
	// DefaultSpacing is the vertical gap between consecutive blocks.
	DefaultSpacing = 4.0

	// DefaultPageStride is the distance between the tops of consecutive
	// page containers.
	DefaultPageStride = 1600.0

	// PaddingAttribute overrides the container's top padding.
	PaddingAttribute = "data-padding-top"
)

// HTMLDocument is a Document backed by a parsed HTML tree.
// It is safe for concurrent use.
type HTMLDocument struct {
	mu sync.Mutex

	// root is the parsed document node.
	root *html.Node

	// containers maps page numbers to container elements.
	containers map[int]*html.Node

	// pages lists page numbers in ascending order.
	pages []int

	measurer  Measurer
	spacing   float64
	stride    float64
	observers []func(page int)
}

// Option configures an HTMLDocument.
type Option func(*HTMLDocument)

// WithMeasurer sets the block height source.
func WithMeasurer(m Measurer) Option {
	return func(d *HTMLDocument) {
		d.measurer = m
	}
}

// WithSpacing sets the vertical gap between consecutive blocks.
func WithSpacing(spacing float64) Option {
	return func(d *HTMLDocument) {
		if spacing >= 0 {
			d.spacing = spacing
		}
	}
}

// WithPageStride sets the distance between the tops of consecutive pages.
func WithPageStride(stride float64) Option {
	return func(d *HTMLDocument) {
		if stride > 0 {
			d.stride = stride
		}
	}
}

// ParseHTML parses an HTML document and indexes its page containers.
// It returns ErrNoContainers when no element id matches page-container-{n}.
func ParseHTML(r io.Reader, opts ...Option) (*HTMLDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	d := &HTMLDocument{
		root:       root,
		containers: make(map[int]*html.Node),
		measurer:   AttributeMeasurer{},
		spacing:    DefaultSpacing,
		stride:     DefaultPageStride,
	}
	for _, opt := range opts {
		opt(d)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if page, ok := containerPage(getAttr(n, "id")); ok {
				if _, dup := d.containers[page]; !dup {
					d.containers[page] = n
					d.pages = append(d.pages, page)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if len(d.pages) == 0 {
		return nil, ErrNoContainers
	}
	slices.Sort(d.pages)

	return d, nil
}

// containerPage extracts n from "page-container-{n}".
func containerPage(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, ContainerIDPrefix)
	if !ok {
		return 0, false
	}
	page, err := strconv.Atoi(rest)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

// Pages implements Document.
func (d *HTMLDocument) Pages() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.pages)
}

// Container implements Document.
func (d *HTMLDocument) Container(page int) (Container, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, ok := d.containers[page]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingContainer, ContainerID(page))
	}
	return &htmlContainer{doc: d, page: page, node: n}, nil
}

// NewBlock implements Document.
func (d *HTMLDocument) NewBlock(desc model.ContentDescriptor) (Block, error) {
	tag := model.NormalizeTag(desc.TagName)
	if tag == "" {
		return nil, fmt.Errorf("cannot create block without a tag name")
	}

	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}

	keys := make([]string, 0, len(desc.Attributes))
	for k := range desc.Attributes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: desc.Attributes[k]})
	}

	if err := setInnerMarkup(n, desc.InnerMarkup); err != nil {
		return nil, err
	}
	return &htmlBlock{node: n}, nil
}

// Observe implements Document.
func (d *HTMLDocument) Observe(fn func(page int)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// SetMarkup replaces the inner markup of the block at index on page.
// It models a content edit and notifies observers.
func (d *HTMLDocument) SetMarkup(page, index int, markup string) error {
	d.mu.Lock()
	n, ok := d.containers[page]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMissingContainer, ContainerID(page))
	}
	child := elementChild(n, index)
	if child == nil {
		d.mu.Unlock()
		return fmt.Errorf("%w: index %d on page %d", ErrIndexOutOfRange, index, page)
	}
	for c := child.FirstChild; c != nil; {
		next := c.NextSibling
		child.RemoveChild(c)
		c = next
	}
	err := setInnerMarkup(child, markup)
	d.mu.Unlock()

	if err != nil {
		return err
	}
	d.notify(page)
	return nil
}

// Render writes the document as HTML.
func (d *HTMLDocument) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// notify calls every observer. It must be called without d.mu held.
func (d *HTMLDocument) notify(page int) {
	d.mu.Lock()
	observers := slices.Clone(d.observers)
	d.mu.Unlock()

	for _, fn := range observers {
		fn(page)
	}
}

// adopt returns a detached node for b, creating one when b does not belong
// to this document.
func (d *HTMLDocument) adopt(b Block) (*html.Node, error) {
	if hb, ok := b.(*htmlBlock); ok && hb.node.Parent == nil {
		return hb.node, nil
	}
	nb, err := d.NewBlock(Describe(b))
	if err != nil {
		return nil, err
	}
	return nb.(*htmlBlock).node, nil
}

// htmlContainer is a Container view over one container element.
type htmlContainer struct {
	doc  *HTMLDocument
	page int
	node *html.Node
}

// Page implements Container.
func (c *htmlContainer) Page() int {
	return c.page
}

// Len implements Container.
func (c *htmlContainer) Len() int {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()
	return len(elementChildren(c.node))
}

// Bounds implements Container.
func (c *htmlContainer) Bounds() model.Rect {
	top := float64(c.page-1) * c.doc.stride
	return model.Rect{Top: top, Bottom: top + c.doc.stride}
}

// ChildBounds implements Container. Blocks are stacked from the container's
// top padding, separated by the document spacing.
func (c *htmlContainer) ChildBounds() []model.Rect {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()

	padding, _ := c.paddingTop()
	children := elementChildren(c.node)
	rects := make([]model.Rect, len(children))

	y := c.Bounds().Top + padding
	for i, child := range children {
		if i > 0 {
			y += c.doc.spacing
		}
		h := c.doc.measurer.Measure(&htmlBlock{node: child})
		rects[i] = model.Rect{Top: y, Bottom: y + h}
		y += h
	}
	return rects
}

// PaddingTop implements Container.
func (c *htmlContainer) PaddingTop() (float64, bool) {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()
	return c.paddingTop()
}

// paddingTop reads PaddingAttribute, then the padding-top declaration of the
// inline style.
func (c *htmlContainer) paddingTop() (float64, bool) {
	if v := getAttr(c.node, PaddingAttribute); v != "" {
		if p, err := parseLength(v); err == nil {
			return p, true
		}
	}
	for _, decl := range strings.Split(getAttr(c.node, "style"), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "padding-top") {
			continue
		}
		if p, err := parseLength(value); err == nil {
			return p, true
		}
	}
	return 0, false
}

// Child implements Container.
func (c *htmlContainer) Child(index int) (Block, error) {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()

	child := elementChild(c.node, index)
	if child == nil {
		return nil, fmt.Errorf("%w: index %d on page %d", ErrIndexOutOfRange, index, c.page)
	}
	return &htmlBlock{node: child}, nil
}

// Remove implements Container.
func (c *htmlContainer) Remove(index int) (Block, error) {
	c.doc.mu.Lock()
	child := elementChild(c.node, index)
	if child == nil {
		c.doc.mu.Unlock()
		return nil, fmt.Errorf("%w: index %d on page %d", ErrIndexOutOfRange, index, c.page)
	}
	c.node.RemoveChild(child)
	c.doc.mu.Unlock()

	c.doc.notify(c.page)
	return &htmlBlock{node: child}, nil
}

// Prepend implements Container.
func (c *htmlContainer) Prepend(b Block) error {
	return c.insert(b, true)
}

// Append implements Container.
func (c *htmlContainer) Append(b Block) error {
	return c.insert(b, false)
}

func (c *htmlContainer) insert(b Block, first bool) error {
	n, err := c.doc.adopt(b)
	if err != nil {
		return err
	}

	c.doc.mu.Lock()
	if first && c.node.FirstChild != nil {
		c.node.InsertBefore(n, c.node.FirstChild)
	} else {
		c.node.AppendChild(n)
	}
	c.doc.mu.Unlock()

	c.doc.notify(c.page)
	return nil
}

// Clear implements Container.
func (c *htmlContainer) Clear() []Block {
	c.doc.mu.Lock()
	var blocks []Block
	for n := c.node.FirstChild; n != nil; {
		next := n.NextSibling
		c.node.RemoveChild(n)
		if n.Type == html.ElementNode {
			blocks = append(blocks, &htmlBlock{node: n})
		}
		n = next
	}
	c.doc.mu.Unlock()

	c.doc.notify(c.page)
	return blocks
}

// htmlBlock is a Block backed by an element node.
type htmlBlock struct {
	node *html.Node
}

// Tag implements Block.
func (b *htmlBlock) Tag() string {
	return b.node.Data
}

// Attributes implements Block.
func (b *htmlBlock) Attributes() map[string]string {
	attrs := make(map[string]string, len(b.node.Attr))
	for _, a := range b.node.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

// Markup implements Block.
func (b *htmlBlock) Markup() string {
	var buf bytes.Buffer
	for c := b.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

// setInnerMarkup parses markup in the context of n and appends the result.
func setInnerMarkup(n *html.Node, markup string) error {
	if markup == "" {
		return nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return fmt.Errorf("failed to parse block markup: %w", err)
	}
	for _, child := range nodes {
		n.AppendChild(child)
	}
	return nil
}

// elementChildren returns the element children of n in document order.
func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// elementChild returns the index-th element child of n, or nil.
func elementChild(n *html.Node, index int) *html.Node {
	if index < 0 {
		return nil
	}
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if i == index {
			return c
		}
		i++
	}
	return nil
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
