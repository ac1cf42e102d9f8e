package s3

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/tanq16/partdl/internal/utils"
)

type S3Resolver struct {
	// NewClient defaults to the shared AWS config for the job's profile.
	NewClient ClientFactory
}

func (r *S3Resolver) ValidateJob(job *utils.PartdlJob) error {
	bucket, key, err := parseS3URL(job.URL)
	if err != nil {
		return err
	}
	if key == "" || strings.HasSuffix(key, "/") {
		return fmt.Errorf("s3://%s/%s is not an object key", bucket, key)
	}
	job.Metadata["bucket"] = bucket
	job.Metadata["key"] = key
	log := utils.GetLogger("s3-resolver")
	log.Info().Msgf("job validated for s3://%s/%s", bucket, key)
	return nil
}

func (r *S3Resolver) BuildJob(job *utils.PartdlJob) error {
	log := utils.GetLogger("s3-resolver")
	bucket := job.Metadata["bucket"].(string)
	key := job.Metadata["key"].(string)
	profile, _ := job.Metadata["profile"].(string)
	ttl, ok := job.Metadata["presignTTL"].(time.Duration)
	if !ok || ttl <= 0 {
		ttl = DefaultPresignTTL
	}

	newClient := r.NewClient
	if newClient == nil {
		newClient = defaultClient
	}
	ctx := context.Background()
	client, err := newClient(ctx, profile, utils.NewHTTPClient(job.HTTPClientConfig).HTTPClient())
	if err != nil {
		return fmt.Errorf("error creating S3 client: %w", err)
	}
	size, err := headObject(ctx, client, bucket, key)
	if err != nil {
		return err
	}
	job.Metadata["size"] = size
	log.Debug().Int64("size", size).Msgf("object found at s3://%s/%s", bucket, key)

	downloadURL, err := presignGet(ctx, client, bucket, key, ttl)
	if err != nil {
		return err
	}
	job.DownloadURL = downloadURL
	if job.OutputPath == "" {
		job.OutputPath = path.Base(key)
	}
	if job.Title == "" {
		job.Title = path.Base(key)
	}
	log.Info().Dur("ttl", ttl).Msgf("job built for s3://%s/%s", bucket, key)
	return nil
}
