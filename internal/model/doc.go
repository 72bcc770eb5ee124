// Package model defines the core data structures used throughout pageflow.
//
// This package contains the following main types:
//   - ContentDescriptor: a page-agnostic capture of one content block
//   - Snapshot: an ordered capture of every descriptor across all pages
//   - Operation: a single-element move produced by a flow analyzer
//
// The models are kept in their own package so that the analyzers, the virtual
// page store, the engine and the persistence layer can share them without
// import cycles. All types are serializable to JSON for persistence and
// report output; the JSON field names follow the page backup format.
package model
