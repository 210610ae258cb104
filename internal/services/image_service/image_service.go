package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"photogram/internal/lib/logger/sl"
	"photogram/internal/storage"
	filestorage "photogram/internal/storage/filestorage"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptySource   = errors.New("image source is empty")
	ErrFetchFailed   = errors.New("image fetch failed")
	ErrInvalidWidth  = errors.New("image width must be positive")
	ErrSourceTooLong = errors.New("image source exceeds size limit")
)

type Options struct {
	CoverWidth int
	LowWidth   int
	ThumbWidth int
	Quality    int
	LowQuality int
	// MaxBytes caps fetched and decoded sources; zero means no limit.
	MaxBytes int64
}

// Variants are the durable URLs of a stored photo.
type Variants struct {
	Image      string
	ImageLow   string
	ImageThumb string
}

type ImageService struct {
	log    *slog.Logger
	files  filestorage.FileStorage
	client *http.Client
	opts   Options
}

func NewImageService(log *slog.Logger, files filestorage.FileStorage, client *http.Client, opts Options) *ImageService {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.CoverWidth <= 0 {
		opts.CoverWidth = 640
	}
	if opts.LowWidth <= 0 {
		opts.LowWidth = opts.CoverWidth
	}
	if opts.ThumbWidth <= 0 {
		opts.ThumbWidth = 160
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 85
	}
	if opts.LowQuality <= 0 || opts.LowQuality > 100 {
		opts.LowQuality = 45
	}

	return &ImageService{
		log:    log,
		files:  files,
		client: client,
		opts:   opts,
	}
}

// SaveImage stores the source and returns its durable URL. src is an http(s)
// URL, a data URI or raw base64. URLs already held by the store are returned as is.
func (s *ImageService) SaveImage(ctx context.Context, src string) (string, error) {
	const op = "image_service.SaveImage"

	log := s.log.With(slog.String("op", op))

	if _, ok := s.files.PathFromURL(src); ok {
		return src, nil
	}

	data, err := s.read(ctx, src)
	if err != nil {
		log.Error("failed to read image source", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		log.Warn("source is not an image", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, storage.ErrInvalidFileType)
	}

	path, size, err := s.files.Save(ctx, fmt.Sprintf("galleries/originals/%s.%s", uuid.NewString(), format), bytes.NewReader(data))
	if err != nil {
		log.Error("failed to store image", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("image stored", slog.String("path", path), slog.Int64("size", size))

	return s.files.URL(path), nil
}

// ResizeURL scales the image at url to width and encodes it as JPEG.
func (s *ImageService) ResizeURL(ctx context.Context, url string, width int) ([]byte, error) {
	const op = "image_service.ResizeURL"

	out, err := s.resize(ctx, url, width, s.opts.Quality)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Progressive is the low-bandwidth variant: same geometry as ResizeURL at a lower quality.
func (s *ImageService) Progressive(ctx context.Context, url string, width int) ([]byte, error) {
	const op = "image_service.Progressive"

	out, err := s.resize(ctx, url, width, s.opts.LowQuality)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Variants stores src and derives the cover, low and thumbnail images from it.
// The three resizes run concurrently; any failure fails the call.
func (s *ImageService) Variants(ctx context.Context, src string) (Variants, error) {
	const op = "image_service.Variants"

	log := s.log.With(slog.String("op", op))

	original, err := s.SaveImage(ctx, src)
	if err != nil {
		return Variants{}, fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.NewString()

	var v Variants

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := s.ResizeURL(gctx, original, s.opts.CoverWidth)
		if err != nil {
			return err
		}
		v.Image, err = s.store(gctx, fmt.Sprintf("galleries/%s_%d.jpg", id, s.opts.CoverWidth), data)
		return err
	})
	g.Go(func() error {
		data, err := s.Progressive(gctx, original, s.opts.LowWidth)
		if err != nil {
			return err
		}
		v.ImageLow, err = s.store(gctx, fmt.Sprintf("galleries/%s_%d_low.jpg", id, s.opts.LowWidth), data)
		return err
	})
	g.Go(func() error {
		data, err := s.ResizeURL(gctx, original, s.opts.ThumbWidth)
		if err != nil {
			return err
		}
		v.ImageThumb, err = s.store(gctx, fmt.Sprintf("galleries/%s_%d.jpg", id, s.opts.ThumbWidth), data)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("failed to build image variants", sl.Err(err))
		return Variants{}, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (s *ImageService) store(ctx context.Context, key string, data []byte) (string, error) {
	path, _, err := s.files.Save(ctx, key, bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	return s.files.URL(path), nil
}

func (s *ImageService) resize(ctx context.Context, url string, width, quality int) ([]byte, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}

	data, err := s.read(ctx, url)
	if err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidFileType, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scale(src, width), &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// scale fits src to width keeping the aspect ratio. Smaller images are not enlarged.
func scale(src image.Image, width int) image.Image {
	b := src.Bounds()
	if b.Dx() <= width {
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}

	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	return dst
}

func (s *ImageService) read(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptySource
	}

	if path, ok := s.files.PathFromURL(src); ok {
		rc, err := s.files.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		return s.readAll(rc)
	}

	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return s.fetch(ctx, src)
	}

	if strings.HasPrefix(src, "data:") {
		comma := strings.IndexByte(src, ',')
		if comma < 0 || !strings.Contains(src[:comma], ";base64") {
			return nil, storage.ErrInvalidFileType
		}
		src = src[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidFileType, err)
	}
	if s.opts.MaxBytes > 0 && int64(len(data)) > s.opts.MaxBytes {
		return nil, ErrSourceTooLong
	}

	return data, nil
}

func (s *ImageService) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	return s.readAll(resp.Body)
}

func (s *ImageService) readAll(r io.Reader) ([]byte, error) {
	if s.opts.MaxBytes <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.opts.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.opts.MaxBytes {
		return nil, ErrSourceTooLong
	}

	return data, nil
}
