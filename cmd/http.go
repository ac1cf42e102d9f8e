package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tanq16/partdl/internal/utils"
)

func newHTTPCmd() *cobra.Command {
	var outputPath string
	var title string

	cmd := &cobra.Command{
		Use:   "http [URL] [--output OUTPUT_PATH]",
		Short: "Download file via HTTP/HTTPS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job := newJob("http", args[0], outputPath, title)
			return runJobs(cmd.Context(), []utils.PartdlJob{job})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path")
	cmd.Flags().StringVar(&title, "title", "", "Title shown in the progress row")
	return cmd
}
