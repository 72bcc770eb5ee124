// Package host defines the host rendering environment seen by the reflow
// engine and provides an HTML implementation of it.
//
// The engine never measures text itself. It asks a Document for its page
// containers (identified as page-container-{n}) and asks each Container for
// the geometry of its blocks, its top padding, and for the structural
// mutations needed to move blocks between pages.
//
// HTMLDocument parses a document with golang.org/x/net/html, stacks the
// blocks of each container from its top padding with a fixed spacing, and
// takes block heights from a Measurer. The default measurer reads the
// data-height attribute and falls back to model.EstimateHeight.
package host
