package services

import (
	"context"
	"fmt"
	"log/slog"

	"photogram/internal/domain/models"
	"photogram/internal/lib/logger/sl"
	"photogram/internal/transport/http/dto"

	"github.com/google/uuid"
)

// LikeGallery toggles the caller's like. likesTotal is recounted from the
// likes table after every toggle. Every toggle by someone other than the
// owner notifies the owner, unlikes included.
func (s *GalleryService) LikeGallery(ctx context.Context, caller *models.User, galleryID uuid.UUID) (*dto.LikeResult, error) {
	const op = "gallery_service.LikeGallery"

	if caller == nil {
		return nil, ErrNotAuthorized
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", galleryID.String()),
		slog.String("user_id", caller.ID.String()),
	)

	gallery, err := s.Get(ctx, galleryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	liked, err := s.likes.IsLiked(ctx, gallery.ID, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if liked {
		err = s.likes.RemoveLike(ctx, gallery.ID, caller.ID)
	} else {
		err = s.likes.AddLike(ctx, gallery.ID, caller.ID)
	}
	if err != nil {
		log.Error("failed to toggle like", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	total, err := s.likes.CountLikes(ctx, gallery.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.galleries.SetLikesTotal(ctx, gallery.ID, total); err != nil {
		log.Error("failed to store likes total", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if caller.ID != gallery.UserID {
		activity := &models.GalleryActivity{
			GalleryID:  gallery.ID,
			FromUserID: caller.ID,
			ToUserID:   gallery.UserID,
			Action:     models.ActionLiked,
		}
		if _, err := s.activities.CreateActivity(ctx, activity); err != nil {
			log.Warn("failed to record like activity", sl.Err(err))
		}
	}

	return &dto.LikeResult{Liked: !liked, LikesTotal: total}, nil
}

func (s *GalleryService) IsGalleryLiked(ctx context.Context, caller *models.User, galleryID uuid.UUID) (bool, error) {
	const op = "gallery_service.IsGalleryLiked"

	if caller == nil {
		return false, ErrNotAuthorized
	}

	liked, err := s.likes.IsLiked(ctx, galleryID, caller.ID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return liked, nil
}

// Activities is the caller's notification list, newest first.
func (s *GalleryService) Activities(ctx context.Context, caller *models.User, page, limit int) ([]dto.ActivityView, error) {
	const op = "gallery_service.Activities"

	if caller == nil {
		return nil, ErrNotAuthorized
	}

	activities, err := s.activities.ListByRecipient(ctx, caller.ID, pageOf(page, limit, defaultLimit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]dto.ActivityView, 0, len(activities))
	for _, a := range activities {
		views = append(views, parseActivity(a))
	}

	return views, nil
}

// CreateAlbum starts an empty album owned by caller.
func (s *GalleryService) CreateAlbum(ctx context.Context, caller *models.User, title string) (*dto.AlbumView, error) {
	const op = "gallery_service.CreateAlbum"

	if caller == nil {
		return nil, ErrNotAuthorized
	}
	if title == "" {
		return nil, ErrTitleRequired
	}

	album := &models.GalleryAlbum{
		UserID: caller.ID,
		Title:  title,
	}

	if _, err := s.albums.CreateAlbum(ctx, album); err != nil {
		s.log.Error("failed to create album",
			slog.String("op", op),
			slog.String("user_id", caller.ID.String()),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.ParseAlbum(album), nil
}
