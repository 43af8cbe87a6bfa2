package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X ...Version=...". Defaults
// to "dev" for local builds.
var Version = "dev"

// VersionCmd prints the binary's version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the boost version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("boost " + Version)
		},
	}
}
