package utils

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var archiveClient *s3.Client
var archiveBucket string

// InitArchiveStorage configures the S3-compatible client used by the
// submission archive worker. Returns false when ARCHIVE_BUCKET_NAME is unset,
// which disables archiving without failing startup.
func InitArchiveStorage() (bool, error) {
	endpoint := os.Getenv("ARCHIVE_ENDPOINT") // e.g. https://<account>.r2.cloudflarestorage.com
	accessKeyID := os.Getenv("ARCHIVE_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("ARCHIVE_ACCESS_KEY_SECRET")
	archiveBucket = os.Getenv("ARCHIVE_BUCKET_NAME")
	if archiveBucket == "" {
		return false, nil
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
	}
	if endpoint != "" {
		opts = append(opts, config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint}, nil
			}),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return false, fmt.Errorf("failed to load archive storage config: %w", err)
	}

	archiveClient = s3.NewFromConfig(cfg)
	return true, nil
}

// UploadArchive writes a JSON blob to the archive bucket under key.
func UploadArchive(ctx context.Context, key string, body []byte) error {
	if archiveClient == nil {
		return fmt.Errorf("archive storage not initialized")
	}

	_, err := archiveClient.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(archiveBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive %s: %w", key, err)
	}
	return nil
}
