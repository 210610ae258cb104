package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"photogram/internal/storage"
)

// FileStorage stores image bytes and hands out durable URLs for them.
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader) (filePath string, fileSize int64, err error)
	Open(ctx context.Context, filePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, filePath string) error
	URL(filePath string) string
	// PathFromURL maps a URL handed out by URL back to its storage path.
	PathFromURL(url string) (string, bool)
	BaseURL() string
}

// LocalFileStorage реализация для локальной файловой системы
type LocalFileStorage struct {
	baseDir string
	baseURL string
	maxSize int64
}

func NewLocalFileStorage(baseDir, baseURL string, maxSize int64) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
	}, nil
}

func (s *LocalFileStorage) Save(ctx context.Context, key string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	rel, err := cleanKey(key)
	if err != nil {
		return "", 0, err
	}

	filePath := filepath.Join(s.baseDir, rel)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directories: %w", err)
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(dst, src)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(filePath)
			return "", 0, fmt.Errorf("failed to copy file: %w", copyErr)
		}
	case <-ctx.Done():
		_ = os.Remove(filePath)
		return "", 0, ctx.Err()
	}

	if s.maxSize > 0 && size > s.maxSize {
		_ = os.Remove(filePath)
		return "", 0, storage.ErrFileTooLarge
	}

	return filepath.ToSlash(rel), size, nil
}

func (s *LocalFileStorage) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	rel, err := cleanKey(filePath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, rel))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrFileNotFound
		}
		return nil, err
	}

	return f, nil
}

// Delete удаляет файл из хранилища
func (s *LocalFileStorage) Delete(ctx context.Context, filePath string) error {
	rel, err := cleanKey(filePath)
	if err != nil {
		return err
	}

	return os.Remove(filepath.Join(s.baseDir, rel))
}

func (s *LocalFileStorage) URL(filePath string) string {
	return s.baseURL + "/" + strings.TrimLeft(filePath, "/")
}

func (s *LocalFileStorage) PathFromURL(url string) (string, bool) {
	return pathFromURL(s.baseURL, url)
}

func (s *LocalFileStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}

func cleanKey(key string) (string, error) {
	rel := filepath.Clean("/" + filepath.FromSlash(key))
	rel = strings.TrimLeft(rel, string(filepath.Separator))
	if rel == "" || rel == "." {
		return "", storage.ErrInvalidFileType
	}

	return rel, nil
}

func pathFromURL(baseURL, url string) (string, bool) {
	if baseURL == "" || !strings.HasPrefix(url, baseURL+"/") {
		return "", false
	}

	return strings.TrimPrefix(url, baseURL+"/"), true
}
