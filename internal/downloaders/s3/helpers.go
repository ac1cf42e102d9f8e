package s3

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultPresignTTL = time.Hour

// ClientFactory builds the S3 client used for metadata and presigning.
// httpClient carries the proxy and timeouts configured for the job.
type ClientFactory func(ctx context.Context, profile string, httpClient *http.Client) (*s3.Client, error)

func defaultClient(ctx context.Context, profile string, httpClient *http.Client) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRetryMode(aws.RetryModeAdaptive),
		config.WithHTTPClient(httpClient),
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func parseS3URL(raw string) (string, string, error) {
	raw = strings.TrimPrefix(raw, "s3://")
	parts := strings.SplitN(raw, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format")
	}
	bucket := parts[0]
	key := ""
	if len(parts) > 1 {
		key = parts[1]
	}
	return bucket, key, nil
}

func headObject(ctx context.Context, client *s3.Client, bucket, key string) (int64, error) {
	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("error accessing S3 object: %w", err)
	}
	size := int64(-1)
	if head.ContentLength != nil {
		size = *head.ContentLength
	}
	return size, nil
}

// presignGet returns a time-limited HTTPS URL for the object. Range is not a
// signed header, so resumed requests against the URL stay valid.
func presignGet(ctx context.Context, client *s3.Client, bucket, key string, ttl time.Duration) (string, error) {
	presigner := s3.NewPresignClient(client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("error presigning object: %w", err)
	}
	return req.URL, nil
}
