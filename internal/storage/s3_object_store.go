package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3ObjectStore struct {
	client     *s3.Client
	downloader *manager.Downloader
	uploader   *manager.Uploader
	bucket     string
	progress   io.Writer
}

var _ ObjectStore = (*S3ObjectStore)(nil)

func NewS3ObjectStore(bucket string, cfg S3ClientConfig) (*S3ObjectStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	client, err := newS3Client(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize s3 client: %w", err)
	}

	return &S3ObjectStore{
		client:     client,
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
		bucket:     bucket,
	}, nil
}

// SetProgressOutput enables a download progress bar written to w. A nil
// writer disables it.
func (s *S3ObjectStore) SetProgressOutput(w io.Writer) {
	s.progress = w
}

func (s *S3ObjectStore) Fetch(ctx context.Context, key string) (string, func(), error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return "", nil, fmt.Errorf("failed to open s3://%s/%s: %w", s.bucket, key, os.ErrNotExist)
		}
		return "", nil, fmt.Errorf("failed to stat s3://%s/%s: %w", s.bucket, key, err)
	}

	dir, err := os.MkdirTemp("", "checkpoint-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("failed to remove download directory", "dir", dir, "error", err)
		}
	}

	filename := filepath.Join(dir, filepath.Base(key))
	if err := s.download(ctx, key, filename, aws.ToInt64(head.ContentLength)); err != nil {
		cleanup()
		return "", nil, err
	}

	return filename, cleanup, nil
}

func (s *S3ObjectStore) download(ctx context.Context, key, filename string, size int64) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer file.Close()

	var dst io.WriterAt = file
	var bar *progressWriterAt
	if s.progress != nil {
		bar = newProgressWriterAt(file, size, "⏳ downloading "+filepath.Base(key), s.progress)
		dst = bar
	}

	n, err := s.downloader.Download(ctx, dst, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}
	if bar != nil {
		bar.finish()
	}

	slog.Info("checkpoint downloaded", "bucket", s.bucket, "key", key, "bytes", n, "path", filename)
	return nil
}

func (s *S3ObjectStore) CreateBucket(ctx context.Context) error {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var existErr *types.BucketAlreadyExists
		var ownedErr *types.BucketAlreadyOwnedByYou
		if errors.As(err, &existErr) || errors.As(err, &ownedErr) {
			slog.Info("Bucket already exists", "bucket", s.bucket)
			return nil
		}

		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}

	slog.Info("Bucket created successfully", "bucket", s.bucket)
	return nil
}

func (s *S3ObjectStore) PutObject(ctx context.Context, key string, data io.Reader) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   data,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object to s3://%s/%s: %w", s.bucket, key, err)
	}
	slog.Info("Object uploaded successfully", "bucket", s.bucket, "key", key)

	return nil
}
