// Package virtual implements the virtual page store.
//
// A virtual page is a page whose live container has been emptied for display
// purposes while its content blocks are still tracked and take part in
// reflow. The store keeps the page's content descriptors in order and
// estimates their stacked vertical extents without the page being present in
// the live layout, using spacing sampled from a visible reference page.
//
// A Store is owned by the reflow engine and is not safe for concurrent use.
package virtual
