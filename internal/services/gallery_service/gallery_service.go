package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"photogram/internal/domain/models"
	"photogram/internal/lib/logger/sl"
	"photogram/internal/repository"
	images "photogram/internal/services/image_service"
	"photogram/internal/transport/http/dto"

	"github.com/google/uuid"
)

var (
	ErrNotAuthorized   = errors.New("Not Authorized")
	ErrForbidden       = errors.New("Forbidden")
	ErrImageRequired   = errors.New("Upload the first image")
	ErrTextRequired    = errors.New("Text is required")
	ErrTitleRequired   = errors.New("Title is required")
	ErrUnknownFeedMode = errors.New("unknown feed privacity")
)

const (
	defaultLimit        = 24
	defaultCommentLimit = 10
	maxLimit            = 100
	previewComments     = 3
)

// ImageHelper stores a submitted image and derives its resized variants.
type ImageHelper interface {
	Variants(ctx context.Context, src string) (images.Variants, error)
}

// Repositories groups the stores the gallery service reads and writes.
type Repositories struct {
	Galleries  repository.GalleryRepository
	Likes      repository.LikeRepository
	Albums     repository.AlbumRepository
	Comments   repository.CommentRepository
	Activities repository.ActivityRepository
	Users      repository.UserRepository
	Profiles   repository.ProfileRepository
	Follows    repository.FollowRepository
}

type GalleryService struct {
	log        *slog.Logger
	galleries  repository.GalleryRepository
	likes      repository.LikeRepository
	albums     repository.AlbumRepository
	comments   repository.CommentRepository
	activities repository.ActivityRepository
	users      repository.UserRepository
	profiles   repository.ProfileRepository
	follows    repository.FollowRepository
	images     ImageHelper
}

func NewGalleryService(log *slog.Logger, repos Repositories, images ImageHelper) *GalleryService {
	return &GalleryService{
		log:        log,
		galleries:  repos.Galleries,
		likes:      repos.Likes,
		albums:     repos.Albums,
		comments:   repos.Comments,
		activities: repos.Activities,
		users:      repos.Users,
		profiles:   repos.Profiles,
		follows:    repos.Follows,
		images:     images,
	}
}

// Create validates and persists a new photo post. Callers re-fetch for the
// fully included view.
func (s *GalleryService) Create(ctx context.Context, caller *models.User, in dto.CreateGalleryInput) (*models.Gallery, error) {
	const op = "gallery_service.Create"

	if caller == nil {
		return nil, ErrNotAuthorized
	}
	if in.Image == "" {
		return nil, ErrImageRequired
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", caller.ID.String()),
	)

	log.Info("creating gallery")

	gallery := &models.Gallery{
		UserID:    caller.ID,
		User:      caller,
		AlbumID:   in.AlbumID,
		Image:     in.Image,
		Title:     in.Title,
		Address:   in.Address,
		Privacity: in.Privacity,
	}
	if in.Address != nil && in.Address.Geo != nil {
		geo := *in.Address.Geo
		gallery.Location = &geo
	}

	if err := s.save(ctx, caller, gallery, false, true); err != nil {
		log.Error("failed to create gallery", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery created", slog.String("gallery_id", gallery.ID.String()))

	return gallery, nil
}

// Update overwrites the attributes given with a non-empty value. Nothing can
// be cleared through it.
func (s *GalleryService) Update(ctx context.Context, caller *models.User, id uuid.UUID, in dto.UpdateGalleryInput) (*models.Gallery, error) {
	const op = "gallery_service.Update"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
	)

	if caller == nil {
		return nil, ErrNotAuthorized
	}

	gallery, err := s.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if gallery.UserID != caller.ID {
		return nil, ErrForbidden
	}

	previousAlbum := gallery.AlbumID

	imageChanged := false
	if in.Image != "" && in.Image != gallery.Image {
		gallery.Image = in.Image
		imageChanged = true
	}
	if in.Title != "" {
		gallery.Title = in.Title
	}
	if in.AlbumID != nil && *in.AlbumID != uuid.Nil {
		albumID := *in.AlbumID
		gallery.AlbumID = &albumID
	}
	if in.Privacity != "" {
		gallery.Privacity = in.Privacity
	}
	if in.Address != nil {
		gallery.Address = in.Address
		if in.Address.Geo != nil {
			geo := *in.Address.Geo
			gallery.Location = &geo
		}
	}

	if err := s.save(ctx, caller, gallery, true, imageChanged); err != nil {
		log.Error("failed to update gallery", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if previousAlbum != nil && *previousAlbum != *gallery.AlbumID {
		if err := s.detachFromAlbum(ctx, *previousAlbum, gallery.ID); err != nil {
			log.Error("failed to detach from previous album", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	log.Info("gallery updated")

	return gallery, nil
}

// save runs BeforeSave, persists, then runs AfterSave.
func (s *GalleryService) save(ctx context.Context, caller *models.User, gallery *models.Gallery, existed, imageChanged bool) error {
	if err := s.BeforeSave(ctx, caller, gallery, existed, imageChanged); err != nil {
		return err
	}

	if existed {
		if err := s.galleries.UpdateGallery(ctx, gallery); err != nil {
			return err
		}
	} else {
		if _, err := s.galleries.CreateGallery(ctx, gallery); err != nil {
			return err
		}
	}

	return s.AfterSave(ctx, gallery)
}

// Get fetches a gallery with its owner included.
func (s *GalleryService) Get(ctx context.Context, id uuid.UUID) (*models.Gallery, error) {
	const op = "gallery_service.Get"

	gallery, err := s.galleries.GetGalleryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return gallery, nil
}

func (s *GalleryService) GetGallery(ctx context.Context, id uuid.UUID) (*dto.GalleryView, error) {
	const op = "gallery_service.GetGallery"

	gallery, err := s.Get(ctx, id)
	if err != nil {
		s.log.Warn("gallery lookup failed",
			slog.String("op", op),
			slog.String("gallery_id", id.String()),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view := s.ParseGallery(gallery)

	return &view, nil
}

// DestroyGallery deletes the gallery; related rows go through AfterDelete.
func (s *GalleryService) DestroyGallery(ctx context.Context, caller *models.User, id uuid.UUID) error {
	const op = "gallery_service.DestroyGallery"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
	)

	if caller == nil {
		return ErrNotAuthorized
	}

	gallery, err := s.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if gallery.UserID != caller.ID {
		return ErrForbidden
	}

	if err := s.galleries.DeleteGallery(ctx, id); err != nil {
		log.Error("failed to delete gallery", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.AfterDelete(ctx, caller, gallery); err != nil {
		log.Error("gallery cleanup failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery destroyed")

	return nil
}

// pageOf applies the default limit and caps it.
func pageOf(page, limit, def int) repository.Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return repository.NewPage(page, limit)
}
