package dto

import (
	"time"

	"photogram/internal/domain/models"

	"github.com/google/uuid"
)

// GalleryView is the public shape of a photo post.
type GalleryView struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Address       *models.Address `json:"address,omitempty"`
	Album         *AlbumView      `json:"album,omitempty"`
	AlbumID       *uuid.UUID      `json:"album_id,omitempty"`
	LikesTotal    int             `json:"likes_total"`
	CommentsTotal int             `json:"comments_total"`
	Image         string          `json:"image"`
	ImageLow      string          `json:"image_low"`
	ImageThumb    string          `json:"image_thumb"`
	Privacity     string          `json:"privacity"`
	IsLiked       bool            `json:"is_liked"`
	Comments      []CommentView   `json:"comments"`
	User          *UserView       `json:"user,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type AlbumView struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Image      string    `json:"image"`
	ImageThumb string    `json:"image_thumb"`
	QtyPhotos  int       `json:"qty_photos"`
	CreatedAt  time.Time `json:"created_at"`
}

type CommentView struct {
	ID        uuid.UUID       `json:"id"`
	GalleryID uuid.UUID       `json:"gallery_id"`
	Text      string          `json:"text"`
	User      *UserView       `json:"user,omitempty"`
	Profile   *models.Profile `json:"profile,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type ActivityView struct {
	ID         uuid.UUID `json:"id"`
	GalleryID  uuid.UUID `json:"gallery_id"`
	FromUserID uuid.UUID `json:"from_user_id"`
	Action     string    `json:"action"`
	CreatedAt  time.Time `json:"created_at"`
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesTotal int  `json:"likes_total"`
}

// FeedParams selects a feed mode. Username wins over Privacity.
type FeedParams struct {
	Username  string   `query:"username"`
	Privacity string   `query:"privacity" validate:"omitempty,oneof=public followers me"`
	Filter    string   `query:"filter"`
	Hashtags  []string `query:"hashtags"`
	Page      int      `query:"page" validate:"omitempty,min=1"`
	Limit     int      `query:"limit" validate:"omitempty,min=1,max=100"`

	// ID narrows the feed to one gallery; the handler parses it.
	ID *uuid.UUID
}

type CreateGalleryInput struct {
	Image     string          `json:"image"`
	Title     string          `json:"title" validate:"max=2200"`
	AlbumID   *uuid.UUID      `json:"album_id"`
	Address   *models.Address `json:"address"`
	Privacity string          `json:"privacity" validate:"omitempty,oneof=public followers private"`
}

// UpdateGalleryInput overwrites only the non-empty fields.
type UpdateGalleryInput struct {
	Image     string          `json:"image"`
	Title     string          `json:"title" validate:"max=2200"`
	AlbumID   *uuid.UUID      `json:"album_id"`
	Address   *models.Address `json:"address"`
	Privacity string          `json:"privacity" validate:"omitempty,oneof=public followers private"`
}
