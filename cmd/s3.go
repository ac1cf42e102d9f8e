package cmd

import (
	"time"

	"github.com/spf13/cobra"
	s3resolver "github.com/tanq16/partdl/internal/downloaders/s3"
	"github.com/tanq16/partdl/internal/utils"
)

func newS3Cmd() *cobra.Command {
	var outputPath string
	var title string
	var profile string
	var presignTTL time.Duration

	cmd := &cobra.Command{
		Use:   "s3 [BUCKET/KEY or s3://BUCKET/KEY]",
		Short: "Download objects from AWS S3",
		Long: `Download an object from AWS S3 through a presigned URL, so interrupted
downloads resume like any other HTTP download.

Examples:
  partdl s3 mybucket/path/to/file.zip
  partdl s3 s3://mybucket/file.zip --profile myprofile --presign-ttl 6h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job := newJob("s3", args[0], outputPath, title)
			job.Metadata["profile"] = profile
			job.Metadata["presignTTL"] = presignTTL
			return runJobs(cmd.Context(), []utils.PartdlJob{job})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path")
	cmd.Flags().StringVar(&title, "title", "", "Title shown in the progress row")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile to use")
	cmd.Flags().DurationVar(&presignTTL, "presign-ttl", s3resolver.DefaultPresignTTL, "Lifetime of the presigned download URL")
	return cmd
}
