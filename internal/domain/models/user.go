package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Profile is the public user data snapshot copied onto galleries and comments.
type Profile struct {
	UserID         uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Photo          string    `json:"photo,omitempty"`
	Status         string    `json:"status,omitempty"`
	GalleriesTotal int       `json:"galleries_total"`
	CommentsTotal  int       `json:"comments_total"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Follow struct {
	ID         uuid.UUID `json:"id"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	CreatedAt  time.Time `json:"created_at"`
}
