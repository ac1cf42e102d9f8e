package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tanq16/partdl/internal/output"
	"github.com/tanq16/partdl/internal/utils"
)

func newBatchCmd() *cobra.Command {
	var s3Profile string
	var apiKey string
	var credentialsFile string

	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE] [OPTIONS]",
		Short: "Process multiple downloads from a YAML file",
		Long: `Process multiple downloads from a YAML file. Sections name the source:

  http:
    - link: https://example.com/a.iso
      op: downloads/a.iso
      title: Ubuntu ISO
  s3:
    - link: s3://bucket/key.bin
  gdrive:
    - link: https://drive.google.com/file/d/<id>/view`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := utils.ReadBatchFile(args[0], globalHTTPConfig, func(msg string) {
				output.PrintWarning(msg)
			})
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				return errors.New("no valid jobs found in the batch file")
			}
			for i := range jobs {
				switch jobs[i].JobType {
				case "s3":
					jobs[i].Metadata["profile"] = s3Profile
				case "gdrive":
					if apiKey != "" {
						jobs[i].Metadata["apiKey"] = apiKey
					}
					if credentialsFile != "" {
						jobs[i].Metadata["credentialsFile"] = credentialsFile
					}
				}
			}
			output.PrintInfo(fmt.Sprintf("Loaded %d jobs from %s", len(jobs), args[0]))
			return runJobs(cmd.Context(), jobs)
		},
	}

	cmd.Flags().StringVar(&s3Profile, "s3-profile", "", "AWS profile for s3 entries")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Google Drive API key for gdrive entries")
	cmd.Flags().StringVar(&credentialsFile, "creds", "", "OAuth credentials JSON file for gdrive entries")
	return cmd
}
