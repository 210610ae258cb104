package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"photogram/internal/storage"
)

// MinioFileStorage keeps files in an S3 compatible bucket.
type MinioFileStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	maxSize int64
}

type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	BaseURL   string
	MaxSize   int64
}

func NewMinioFileStorage(ctx context.Context, opts MinioOptions) (*MinioFileStorage, error) {
	const op = "filestorage.NewMinioFileStorage"

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: check bucket %q: %w", op, opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: create bucket %q: %w", op, opts.Bucket, err)
		}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, opts.Endpoint, opts.Bucket)
	}

	return &MinioFileStorage{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: baseURL,
		maxSize: opts.MaxSize,
	}, nil
}

func (s *MinioFileStorage) Save(ctx context.Context, key string, r io.Reader) (string, int64, error) {
	objectName, err := cleanKey(key)
	if err != nil {
		return "", 0, err
	}
	objectName = strings.ReplaceAll(objectName, "\\", "/")

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}

	// sniff the content type from the first bytes without losing them
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", 0, fmt.Errorf("failed to read object %q: %w", objectName, err)
	}
	head = head[:n]

	info, err := s.client.PutObject(ctx, s.bucket, objectName, io.MultiReader(bytes.NewReader(head), src), -1, minio.PutObjectOptions{
		ContentType: http.DetectContentType(head),
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload object %q to minio: %w", objectName, err)
	}

	if s.maxSize > 0 && info.Size > s.maxSize {
		_ = s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
		return "", 0, storage.ErrFileTooLarge
	}

	return objectName, info.Size, nil
}

func (s *MinioFileStorage) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, filePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q from minio: %w", filePath, err)
	}

	// GetObject is lazy; Stat surfaces a missing key
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to stat object %q: %w", filePath, err)
	}

	return obj, nil
}

func (s *MinioFileStorage) Delete(ctx context.Context, filePath string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, filePath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %q from minio: %w", filePath, err)
	}

	return nil
}

func (s *MinioFileStorage) URL(filePath string) string {
	return s.baseURL + "/" + strings.TrimLeft(filePath, "/")
}

func (s *MinioFileStorage) PathFromURL(url string) (string, bool) {
	return pathFromURL(s.baseURL, url)
}

func (s *MinioFileStorage) BaseURL() string {
	return s.baseURL
}
