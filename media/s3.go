package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/user/streamtube-go/apperror"
	"github.com/user/streamtube-go/config"
)

// S3Store uploads images to an S3-compatible bucket (AWS S3, MinIO).
type S3Store struct {
	client *s3.Client
	cfg    *config.MediaConfig
}

// NewS3Store builds the S3 client from static credentials and an explicit
// base endpoint, so it works against MinIO as well as AWS.
func NewS3Store(cfg *config.MediaConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, apperror.NewExternalServiceError("failed to configure media storage client", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		// MinIO serves buckets under the endpoint path rather than a subdomain.
		o.UsePathStyle = true
	})

	return &S3Store{client: client, cfg: cfg}, nil
}

// objectKey produces a date-partitioned key so bucket listings stay browsable.
func objectKey() string {
	d := time.Now()
	return fmt.Sprintf("images/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

// Upload stores the file and returns its public URL. A failed put surfaces
// immediately; there are no retries.
func (s *S3Store) Upload(ctx context.Context, f *File) (string, error) {
	key := objectKey()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f.Reader,
		ContentType: aws.String(f.ContentType),
	})
	if err != nil {
		return "", apperror.NewExternalServiceError("failed to upload image", err)
	}

	return s.PublicURL(key), nil
}

// PublicURL renders the addressable URL for a stored object.
func (s *S3Store) PublicURL(key string) string {
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	return fmt.Sprintf("%s/%s/%s", base, s.cfg.Bucket, key)
}
