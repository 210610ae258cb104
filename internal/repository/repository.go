package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	db       *pgxpool.Pool
	User     *UserRepo
	Profile  *ProfileRepo
	Follow   *FollowRepo
	Gallery  *GalleryRepo
	Like     *LikeRepo
	Album    *AlbumRepo
	Comment  *CommentRepo
	Activity *ActivityRepo
	Chat     *ChatRepo
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db:       db,
		User:     NewUserRepository(db),
		Profile:  NewProfileRepository(db),
		Follow:   NewFollowRepository(db),
		Gallery:  NewGalleryRepo(db),
		Like:     NewLikeRepo(db),
		Album:    NewAlbumRepo(db),
		Comment:  NewCommentRepo(db),
		Activity: NewActivityRepo(db),
		Chat:     NewChatRepo(db),
	}
}

func Connect(ctx context.Context, dsn string) (*Repository, error) {
	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewRepository(db), nil
}

func (r *Repository) Close() {
	r.db.Close()
}

// jsonbArg encodes v for a jsonb column; nil pointers become SQL NULL.
func jsonbArg[T any](v *T) interface{} {
	if v == nil {
		return nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	return b
}

func jsonbScan[T any](raw []byte) *T {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	return &v
}
