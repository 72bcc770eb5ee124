// Package config provides the configuration of pageflow: the layout limits
// used by the reflow engine, the pages that may be hidden, report
// preferences, and the location of the snapshot database.
package config
