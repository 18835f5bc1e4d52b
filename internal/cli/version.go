package cli

import (
	"fmt"

	"github.com/fmueller/voxbridge/internal/engine"
	"github.com/fmueller/voxbridge/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number and engine backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "voxbridge v%s\n", version.Resolve())
			backend := "whisper.cpp (native)"
			if !engine.NativeAvailable() {
				backend = "unavailable (built without -tags whispercpp)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "engine: %s\n", backend)
			return nil
		},
	}
}
