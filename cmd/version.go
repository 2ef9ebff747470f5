package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillcat/internal/catalog"
)

// Set with -ldflags "-X github.com/kamusis/skillcat/cmd.version=...".
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var flagVersionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show skillcat version and build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&flagVersionShort, "short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	if flagVersionShort {
		fmt.Println(version)
		return nil
	}
	fmt.Printf("skillcat %s\n", version)
	fmt.Printf("  commit:   %s\n", emptyAsNA(commit))
	fmt.Printf("  built:    %s\n", emptyAsNA(buildDate))
	fmt.Printf("  catalog:  schema %s\n", catalog.SchemaVersion)
	fmt.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
