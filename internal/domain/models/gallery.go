package models

import (
	"time"

	"github.com/google/uuid"
)

// Visibility values stored in Gallery.Privacity. An empty value reads as public.
const (
	PrivacityPublic    = "public"
	PrivacityFollowers = "followers"
	PrivacityPrivate   = "private"
)

// Gallery is a single photo post.
type Gallery struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	User          *User         `json:"user,omitempty"`
	AlbumID       *uuid.UUID    `json:"album_id,omitempty"`
	Album         *GalleryAlbum `json:"album,omitempty"`
	Image         string        `json:"image"`
	ImageLow      string        `json:"image_low"`
	ImageThumb    string        `json:"image_thumb"`
	Title         string        `json:"title"`
	Words         []string      `json:"words"`
	Hashtags      []string      `json:"hashtags"`
	Address       *Address      `json:"address,omitempty"`
	Location      *GeoPoint     `json:"location,omitempty"`
	Privacity     string        `json:"privacity"`
	LikesTotal    int           `json:"likes_total"`
	CommentsTotal int           `json:"comments_total"`
	Views         int           `json:"views"`
	IsApproved    bool          `json:"is_approved"`
	Profile       *Profile      `json:"profile,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsPublic reports whether the gallery is visible to everyone.
func (g *Gallery) IsPublic() bool {
	return g.Privacity == "" || g.Privacity == PrivacityPublic
}

type Address struct {
	Line    string    `json:"line,omitempty"`
	City    string    `json:"city,omitempty"`
	Country string    `json:"country,omitempty"`
	Geo     *GeoPoint `json:"geo,omitempty"`
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GalleryAlbum groups galleries under a cover taken from the latest photo.
type GalleryAlbum struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Title      string    `json:"title"`
	Image      string    `json:"image"`
	ImageThumb string    `json:"image_thumb"`
	QtyPhotos  int       `json:"qty_photos"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type GalleryComment struct {
	ID        uuid.UUID `json:"id"`
	GalleryID uuid.UUID `json:"gallery_id"`
	UserID    uuid.UUID `json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Text      string    `json:"text"`
	Profile   *Profile  `json:"profile,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActionLiked is the activity label recorded when a photo is liked.
const ActionLiked = "liked your photo"

type GalleryActivity struct {
	ID         uuid.UUID `json:"id"`
	GalleryID  uuid.UUID `json:"gallery_id"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	Action     string    `json:"action"`
	CreatedAt  time.Time `json:"created_at"`
}
