// Package main provides the entry point for the pageflow CLI.
//
// pageflow keeps the content of a paged HTML document balanced: blocks that
// run past the bottom of a page move to the next page, and pages that gained
// room pull blocks back from the page after them.
//
// Usage:
//
//	pageflow reflow <document.html>
//	pageflow edit <document.html> < edits.txt
//
// See --help for all available options.
package main

// main is the entry point for pageflow.
func main() {
	Execute()
}
