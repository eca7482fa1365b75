package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"campusnet/internal/config"
)

// S3Store keeps objects in S3 or an S3-compatible store such as MinIO.
type S3Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	region     string
	endpoint   string
	publicBase string
	publicRead bool
	now        func() time.Time
}

// NewS3Store loads credentials from the default AWS chain.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, cfg), nil
}

func NewS3StoreWithClient(client *s3.Client, cfg config.StorageConfig) *S3Store {
	return &S3Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		region:     cfg.S3Region,
		endpoint:   cfg.S3Endpoint,
		publicBase: cfg.PublicBaseURL,
		publicRead: cfg.S3PublicRead,
		now:        time.Now,
	}
}

func (s *S3Store) Upload(ctx context.Context, bucket, objectPath, contentType string, body io.Reader) (Object, error) {
	counted := &countingReader{r: body}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(objectPath),
		Body:        counted,
		ContentType: aws.String(contentType),
	}
	if s.publicRead {
		input.ACL = types.ObjectCannedACLPublicRead
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return Object{}, fmt.Errorf("failed to upload %s/%s: %w", bucket, objectPath, err)
	}
	return Object{
		Bucket:      bucket,
		Path:        objectPath,
		ContentType: contentType,
		Size:        counted.n,
		UploadedAt:  s.now(),
	}, nil
}

func (s *S3Store) Open(ctx context.Context, bucket, objectPath string) (io.ReadCloser, Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectPath),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, Object{}, fmt.Errorf("%s/%s: %w", bucket, objectPath, ErrObjectNotFound)
		}
		return nil, Object{}, fmt.Errorf("failed to open %s/%s: %w", bucket, objectPath, err)
	}
	obj := Object{
		Bucket:      bucket,
		Path:        objectPath,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
		UploadedAt:  aws.ToTime(out.LastModified),
	}
	return out.Body, obj, nil
}

// PublicURL prefers the configured public base, then the custom endpoint,
// then the regional virtual-hosted S3 URL.
func (s *S3Store) PublicURL(bucket, objectPath string) string {
	switch {
	case s.publicBase != "":
		return JoinURL(s.publicBase, bucket, objectPath)
	case s.endpoint != "":
		return JoinURL(s.endpoint, bucket, objectPath)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, escapePath(objectPath))
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ Store = (*S3Store)(nil)
