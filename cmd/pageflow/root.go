package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pageflow.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pageflow",
		Short: "Reflow content across the pages of an HTML document",
		Long: `pageflow keeps the content of a paged HTML document balanced.

Pages are elements with the id "page-container-<n>". Every element child of a
page container is a content block. When the last block of a page reaches past
the page height threshold it moves to the top of the next page; when a page
has room for the first block of the page after it, that block moves up.

Pages can be hidden. A hidden page keeps its blocks in a virtual store and its
height is estimated from the geometry of the nearest visible page, so hiding a
page does not change where content breaks.

Each stable arrangement is saved to a snapshot database so that it can be
restored later.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewReflowCmd())
	cmd.AddCommand(NewEditCmd())
	cmd.AddCommand(NewRestoreCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
