package main

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=v1.2.3 -X main.commit=abc1234 -X main.date=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildVersion identifies the running pageflow binary.
type buildVersion struct {
	Version string
	Commit  string
	Date    string
}

// currentVersion merges the ldflags values over the build information the
// Go toolchain embeds. Values missing from both read "(devel)" for the
// version and "unknown" otherwise.
var currentVersion = sync.OnceValue(func() buildVersion {
	v := buildVersion{Version: "(devel)", Commit: "unknown", Date: "unknown"}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" {
			v.Version = info.Main.Version
		}
		modified := false
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				v.Commit = s.Value[:min(7, len(s.Value))]
			case "vcs.time":
				v.Date = s.Value
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
		if modified && v.Commit != "unknown" {
			v.Commit += "-dirty"
		}
	}

	for dst, src := range map[*string]string{&v.Version: version, &v.Commit: commit, &v.Date: date} {
		if src != "" {
			*dst = src
		}
	}
	return v
})

// getVersion returns the version recorded in reports and --version.
func getVersion() string {
	return currentVersion().Version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, commit hash, and build date of pageflow.
A commit built from a modified work tree ends in "-dirty".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			short, err := cmd.Flags().GetBool("short")
			if err != nil {
				return err
			}

			v := currentVersion()
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, v.Version)
				return nil
			}
			fmt.Fprintf(out, "pageflow version %s\n", v.Version)
			fmt.Fprintf(out, "  commit: %s\n", v.Commit)
			fmt.Fprintf(out, "  built:  %s\n", v.Date)
			return nil
		},
	}
	cmd.Flags().Bool("short", false, "Print only the version")
	return cmd
}
