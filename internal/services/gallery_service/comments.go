package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"photogram/internal/domain/models"
	"photogram/internal/lib/fanout"
	"photogram/internal/lib/logger/sl"
	"photogram/internal/repository"
	"photogram/internal/transport/http/dto"

	"github.com/google/uuid"
)

// CommentGallery pages through a gallery's comments, oldest first. Missing
// profile snapshots on the comments and on the gallery are filled in while
// reading.
func (s *GalleryService) CommentGallery(ctx context.Context, galleryID uuid.UUID, page, limit int) ([]dto.CommentView, error) {
	const op = "gallery_service.CommentGallery"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", galleryID.String()),
	)

	gallery, err := s.Get(ctx, galleryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comments, err := s.comments.ListComments(ctx, repository.CommentQuery{
		GalleryID: galleryID,
		Page:      pageOf(page, limit, defaultCommentLimit),
	})
	if err != nil {
		log.Error("failed to list comments", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(comments) == 0 {
		return []dto.CommentView{}, nil
	}

	if gallery.Profile == nil {
		s.backfillGalleryProfile(ctx, log, gallery)
	}

	batch, err := fanout.Map(ctx, comments, func(ctx context.Context, c models.GalleryComment) fanout.Outcome[dto.CommentView] {
		profile, err := s.profileOf(ctx, c.UserID)
		if err != nil {
			return fanout.Fatal[dto.CommentView](err)
		}

		if c.Profile == nil && profile != nil {
			c.Profile = profile
			if err := s.comments.SetProfile(ctx, c.ID, profile); err != nil {
				return fanout.Degraded(ParseComment(c), err)
			}
		}

		return fanout.OK(ParseComment(c))
	})
	if err != nil {
		log.Error("failed to resolve comment authors", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, err := range batch.Degraded {
		log.Warn("comment profile backfill failed", sl.Err(err))
	}

	return batch.Values, nil
}

func (s *GalleryService) backfillGalleryProfile(ctx context.Context, log *slog.Logger, gallery *models.Gallery) {
	profile, err := s.profileOf(ctx, gallery.UserID)
	if err != nil || profile == nil {
		return
	}

	if err := s.galleries.SetProfile(ctx, gallery.ID, profile); err != nil {
		log.Warn("gallery profile backfill failed", sl.Err(err))
		return
	}

	gallery.Profile = profile
}

// AddComment stores a comment by caller and refreshes the comment counters.
func (s *GalleryService) AddComment(ctx context.Context, caller *models.User, galleryID uuid.UUID, text string) (*dto.CommentView, error) {
	const op = "gallery_service.AddComment"

	if caller == nil {
		return nil, ErrNotAuthorized
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
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

	profile, err := s.profileOf(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comment := &models.GalleryComment{
		GalleryID: gallery.ID,
		UserID:    caller.ID,
		User:      caller,
		Text:      text,
		Profile:   profile,
	}

	if _, err := s.comments.CreateComment(ctx, comment); err != nil {
		log.Error("failed to create comment", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.recountComments(ctx, gallery); err != nil {
		log.Error("failed to recount comments", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view := ParseComment(*comment)

	return &view, nil
}

// RemoveComment deletes a comment. Only its author or the gallery owner may.
func (s *GalleryService) RemoveComment(ctx context.Context, caller *models.User, commentID uuid.UUID) error {
	const op = "gallery_service.RemoveComment"

	if caller == nil {
		return ErrNotAuthorized
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("comment_id", commentID.String()),
	)

	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	gallery, err := s.Get(ctx, comment.GalleryID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if caller.ID != comment.UserID && caller.ID != gallery.UserID {
		return ErrForbidden
	}

	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		log.Error("failed to delete comment", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.recountComments(ctx, gallery); err != nil {
		log.Error("failed to recount comments", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *GalleryService) recountComments(ctx context.Context, gallery *models.Gallery) error {
	total, err := s.comments.CountByGallery(ctx, gallery.ID)
	if err != nil {
		return err
	}

	if err := s.galleries.SetCommentsTotal(ctx, gallery.ID, total); err != nil {
		return err
	}
	gallery.CommentsTotal = total

	return s.recountOwnerComments(ctx, gallery.UserID)
}
