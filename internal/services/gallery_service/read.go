package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"photogram/internal/domain/models"
	"photogram/internal/lib/fanout"
	"photogram/internal/lib/logger/sl"
	"photogram/internal/lib/search"
	"photogram/internal/repository"
	"photogram/internal/storage"
	"photogram/internal/transport/http/dto"

	"github.com/google/uuid"
)

const (
	FeedPublic    = "public"
	FeedFollowers = "followers"
	FeedMe        = "me"
)

// Search returns approved galleries whose words and hashtags contain every
// token of text, newest first.
func (s *GalleryService) Search(ctx context.Context, caller *models.User, text string, page, limit int) ([]dto.GalleryView, error) {
	const op = "gallery_service.Search"

	log := s.log.With(slog.String("op", op))

	galleries, err := s.galleries.ListGalleries(ctx, repository.GalleryQuery{
		AllWords:     search.Words(text),
		AllHashtags:  search.Hashtags(text),
		ApprovedOnly: true,
		Page:         pageOf(page, limit, defaultLimit),
	})
	if err != nil {
		log.Error("search query failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	batch, err := fanout.Map(ctx, galleries, func(ctx context.Context, g models.Gallery) fanout.Outcome[dto.GalleryView] {
		// the owner profile is resolved but not shown
		if _, err := s.profileOf(ctx, g.UserID); err != nil {
			return fanout.Fatal[dto.GalleryView](err)
		}

		view := s.ParseGallery(&g)

		liked, err := s.isLiked(ctx, caller, g.ID)
		if err != nil {
			return fanout.Fatal[dto.GalleryView](err)
		}
		view.IsLiked = liked

		comments, err := s.latestComments(ctx, g.ID)
		if err != nil {
			return fanout.Fatal[dto.GalleryView](err)
		}
		view.Comments = parseComments(comments)

		return fanout.OK(view)
	})
	if err != nil {
		log.Error("search enrichment failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return batch.Values, nil
}

// GetAlbum lists the photos of an album, newest first.
func (s *GalleryService) GetAlbum(ctx context.Context, albumID uuid.UUID, page, limit int) ([]dto.GalleryView, error) {
	const op = "gallery_service.GetAlbum"

	album, err := s.albums.GetAlbumByID(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	galleries, err := s.galleries.ListGalleries(ctx, repository.GalleryQuery{
		AlbumID: &album.ID,
		Page:    pageOf(page, limit, defaultLimit),
	})
	if err != nil {
		s.log.Error("album photos query failed",
			slog.String("op", op),
			slog.String("album_id", albumID.String()),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]dto.GalleryView, 0, len(galleries))
	for i := range galleries {
		views = append(views, s.ParseGallery(&galleries[i]))
	}

	return views, nil
}

// Feed lists approved galleries, newest first. The author filter is picked
// in order: username, then privacity followers, me, public.
func (s *GalleryService) Feed(ctx context.Context, caller *models.User, params dto.FeedParams) ([]dto.GalleryView, error) {
	const op = "gallery_service.Feed"

	log := s.log.With(
		slog.String("op", op),
		slog.String("privacity", params.Privacity),
		slog.String("username", params.Username),
	)

	q := repository.GalleryQuery{
		ID:           params.ID,
		ApprovedOnly: true,
		Page:         pageOf(params.Page, params.Limit, defaultLimit),
	}

	if filter := strings.ToLower(strings.TrimSpace(params.Filter)); filter != "" {
		if strings.HasPrefix(filter, "#") {
			q.HashtagLike = filter
		} else {
			q.WordLike = filter
		}
	}
	if len(params.Hashtags) > 0 {
		q.AllHashtags = normalizeHashtags(params.Hashtags)
	}

	switch {
	case params.Username != "":
		user, err := s.users.GetUserByUsername(ctx, params.Username)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return []dto.GalleryView{}, nil
			}
			log.Error("user lookup failed", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		q.UserIDs = []uuid.UUID{user.ID}
		q.PublicOnly = true

	case params.Privacity == FeedFollowers:
		if caller == nil {
			return nil, ErrNotAuthorized
		}
		following, err := s.follows.FollowingIDs(ctx, caller.ID)
		if err != nil {
			log.Error("following lookup failed", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		q.UserIDs = authorsOf(following, caller.ID)
		q.PublicOnly = true

	case params.Privacity == FeedMe:
		if caller == nil {
			return nil, ErrNotAuthorized
		}
		q.UserIDs = []uuid.UUID{caller.ID}

	case params.Privacity == "" || params.Privacity == FeedPublic:
		q.PublicOnly = true

	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownFeedMode, params.Privacity)
	}

	galleries, err := s.galleries.ListGalleries(ctx, q)
	if err != nil {
		log.Error("feed query failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	batch, err := fanout.Map(ctx, galleries, func(ctx context.Context, g models.Gallery) fanout.Outcome[dto.GalleryView] {
		view := s.ParseGallery(&g)

		liked, err := s.isLiked(ctx, caller, g.ID)
		if err != nil {
			return fanout.Fatal[dto.GalleryView](err)
		}
		view.IsLiked = liked

		comments, err := s.latestComments(ctx, g.ID)
		if err != nil {
			return fanout.Degraded(view, err)
		}
		view.Comments = parseComments(comments)

		return fanout.OK(view)
	})
	if err != nil {
		log.Error("feed enrichment failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, err := range batch.Degraded {
		log.Warn("feed row without comments", sl.Err(err))
	}

	return batch.Values, nil
}

// authorsOf deduplicates the followed ids and adds self.
func authorsOf(following []uuid.UUID, self uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(following)+1)
	authors := make([]uuid.UUID, 0, len(following)+1)

	for _, id := range append(following, self) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		authors = append(authors, id)
	}

	return authors
}

func normalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		out = append(out, tag)
	}
	return out
}

func (s *GalleryService) isLiked(ctx context.Context, caller *models.User, galleryID uuid.UUID) (bool, error) {
	if caller == nil {
		return false, nil
	}
	return s.likes.IsLiked(ctx, galleryID, caller.ID)
}

func (s *GalleryService) latestComments(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryComment, error) {
	return s.comments.ListComments(ctx, repository.CommentQuery{
		GalleryID:   galleryID,
		NewestFirst: true,
		Page:        repository.Page{Limit: previewComments},
	})
}
