package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/partdl/internal/downloader"
	"github.com/tanq16/partdl/internal/output"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [OUTPUT_PATH]",
		Short: "Remove the partial file and lock left for an output path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var partial uint64
			if info, err := os.Stat(downloader.TempPath(args[0])); err == nil {
				partial = uint64(info.Size())
			}
			removed, err := downloader.Clean(args[0], nil)
			if err != nil {
				return err
			}
			for _, path := range removed {
				line := fmt.Sprintf("%s removed %s", output.StyleSymbols["bullet"], path)
				if path == downloader.TempPath(args[0]) {
					line += fmt.Sprintf(" (%s discarded)", output.FormatBytes(partial))
				}
				output.PrintDetail(line)
			}
			output.PrintSuccess("Temporary files cleaned up")
			return nil
		},
	}
}
