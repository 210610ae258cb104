package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"photogram/internal/domain/models"
	"photogram/internal/lib/fanout"
	"photogram/internal/lib/logger/sl"
	"photogram/internal/lib/search"
	"photogram/internal/repository"
	"photogram/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BeforeSave validates the gallery and fills its derived fields. Search tokens
// follow the title only when the image changed, and the resize pipeline runs on
// creation only: replacing the image of an existing gallery keeps the old variants.
func (s *GalleryService) BeforeSave(ctx context.Context, caller *models.User, gallery *models.Gallery, existed, imageChanged bool) error {
	const op = "gallery_service.BeforeSave"

	owner := caller
	if owner == nil {
		owner = gallery.User
	}
	if owner == nil && gallery.UserID != uuid.Nil {
		owner = &models.User{ID: gallery.UserID}
	}
	if owner == nil {
		return ErrNotAuthorized
	}

	if gallery.Image == "" {
		return ErrImageRequired
	}

	if !imageChanged {
		return nil
	}

	gallery.Words = search.Words(gallery.Title)
	gallery.Hashtags = search.Hashtags(gallery.Title)

	if existed {
		return nil
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", owner.ID.String()),
	)

	variants, err := s.images.Variants(ctx, gallery.Image)
	if err != nil {
		log.Error("failed to resize image", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	gallery.Image = variants.Image
	gallery.ImageLow = variants.ImageLow
	gallery.ImageThumb = variants.ImageThumb

	gallery.LikesTotal = 0
	gallery.CommentsTotal = 0
	gallery.Views = 0

	profile, err := s.profileOf(ctx, owner.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	gallery.UserID = owner.ID
	gallery.User = owner
	gallery.IsApproved = true
	gallery.Profile = profile

	return nil
}

// AfterSave attaches the gallery to its album and refreshes the owner's
// gallery total.
func (s *GalleryService) AfterSave(ctx context.Context, gallery *models.Gallery) error {
	const op = "gallery_service.AfterSave"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", gallery.ID.String()),
	)

	if gallery.AlbumID != nil {
		album, err := s.albums.GetAlbumByID(ctx, *gallery.AlbumID)
		if err != nil {
			log.Error("album lookup failed", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.albums.AddPhoto(ctx, album.ID, gallery.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		album.Image = gallery.Image
		album.ImageThumb = gallery.ImageThumb

		if err := s.recountAlbum(ctx, album); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		gallery.Album = album
	}

	if err := s.recountGalleries(ctx, gallery.UserID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// AfterDelete removes the comments and activities of a deleted gallery and
// refreshes every counter that depended on it.
func (s *GalleryService) AfterDelete(ctx context.Context, caller *models.User, gallery *models.Gallery) error {
	const op = "gallery_service.AfterDelete"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", gallery.ID.String()),
	)
	if caller != nil {
		log = log.With(slog.String("caller_id", caller.ID.String()))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		comments, err := s.comments.ListComments(gctx, repository.CommentQuery{GalleryID: gallery.ID})
		if err != nil {
			return err
		}

		_, err = fanout.All(gctx, comments, func(ctx context.Context, c models.GalleryComment) (struct{}, error) {
			return struct{}{}, s.comments.DeleteComment(ctx, c.ID)
		})
		if err != nil {
			return err
		}

		log.Debug("comments removed", slog.Int("count", len(comments)))

		return s.recountOwnerComments(gctx, gallery.UserID)
	})

	g.Go(func() error {
		activities, err := s.activities.ListByGallery(gctx, gallery.ID)
		if err != nil {
			return err
		}

		_, err = fanout.All(gctx, activities, func(ctx context.Context, a models.GalleryActivity) (struct{}, error) {
			return struct{}{}, s.activities.DeleteActivity(ctx, a.ID)
		})
		if err != nil {
			return err
		}

		log.Debug("activities removed", slog.Int("count", len(activities)))

		return nil
	})

	g.Go(func() error {
		return s.recountGalleries(gctx, gallery.UserID)
	})

	if gallery.AlbumID != nil {
		g.Go(func() error {
			return s.recountAlbumByID(gctx, *gallery.AlbumID)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("cascade failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// detachFromAlbum unlinks a gallery that moved out of albumID and recounts it.
func (s *GalleryService) detachFromAlbum(ctx context.Context, albumID, galleryID uuid.UUID) error {
	if err := s.albums.RemovePhoto(ctx, albumID, galleryID); err != nil {
		return err
	}

	return s.recountAlbumByID(ctx, albumID)
}

// recountAlbumByID is recountAlbum for an album that may be gone already.
func (s *GalleryService) recountAlbumByID(ctx context.Context, albumID uuid.UUID) error {
	album, err := s.albums.GetAlbumByID(ctx, albumID)
	if err != nil {
		if errors.Is(err, storage.ErrAlbumNotFound) {
			return nil
		}
		return err
	}

	return s.recountAlbum(ctx, album)
}

func (s *GalleryService) recountAlbum(ctx context.Context, album *models.GalleryAlbum) error {
	qty, err := s.galleries.CountByAlbum(ctx, album.ID)
	if err != nil {
		return err
	}

	album.QtyPhotos = qty

	return s.albums.UpdateAlbum(ctx, album)
}

func (s *GalleryService) recountGalleries(ctx context.Context, userID uuid.UUID) error {
	total, err := s.galleries.CountByUser(ctx, userID)
	if err != nil {
		return err
	}

	return ignoreMissingProfile(s.profiles.UpdateGalleriesTotal(ctx, userID, total))
}

func (s *GalleryService) recountOwnerComments(ctx context.Context, ownerID uuid.UUID) error {
	total, err := s.comments.CountByGalleryOwner(ctx, ownerID)
	if err != nil {
		return err
	}

	return ignoreMissingProfile(s.profiles.UpdateCommentsTotal(ctx, ownerID, total))
}

func ignoreMissingProfile(err error) error {
	if errors.Is(err, storage.ErrProfileNotFound) {
		return nil
	}
	return err
}

// profileOf returns nil without error for users that have no profile yet.
func (s *GalleryService) profileOf(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.ProfileByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return profile, nil
}
