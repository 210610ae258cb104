package repository

import (
	"github.com/google/uuid"
)

// Page is a limit/offset window. A zero Limit means no limit.
type Page struct {
	Limit  uint64
	Offset uint64
}

// NewPage converts a 1-based page number into a window.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	return Page{
		Limit:  uint64(limit),
		Offset: uint64(page*limit - limit),
	}
}

// GalleryQuery filters ListGalleries. Empty fields do not filter.
type GalleryQuery struct {
	ID      *uuid.UUID
	AlbumID *uuid.UUID
	// UserIDs restricts authors; a non-nil empty slice matches nothing.
	UserIDs []uuid.UUID
	// PublicOnly keeps rows whose privacity is NULL, "" or "public".
	PublicOnly   bool
	ApprovedOnly bool
	// AllWords and AllHashtags must all be present on a row.
	AllWords    []string
	AllHashtags []string
	// WordLike and HashtagLike match rows having a word (hashtag) that
	// contains them.
	WordLike    string
	HashtagLike string
	Page        Page
}

type CommentQuery struct {
	GalleryID   uuid.UUID
	NewestFirst bool
	Page        Page
}
