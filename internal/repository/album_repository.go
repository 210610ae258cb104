package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photogram/internal/domain/models"
	"photogram/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type AlbumRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAlbumRepo(db *pgxpool.Pool) *AlbumRepo {
	return &AlbumRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *AlbumRepo) CreateAlbum(ctx context.Context, album *models.GalleryAlbum) (uuid.UUID, error) {
	const op = "repository.AlbumRepo.CreateAlbum"

	query, args, err := r.sb.Insert("gallery_albums").
		Columns("user_id", "title", "image", "image_thumb", "qty_photos").
		Values(album.UserID, album.Title, album.Image, album.ImageThumb, album.QtyPhotos).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&album.ID, &album.CreatedAt, &album.UpdatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return album.ID, nil
}

func (r *AlbumRepo) GetAlbumByID(ctx context.Context, id uuid.UUID) (*models.GalleryAlbum, error) {
	const op = "repository.AlbumRepo.GetAlbumByID"

	query, args, err := r.sb.Select(
		"id", "user_id", "title", "image", "image_thumb", "qty_photos", "created_at", "updated_at",
	).
		From("gallery_albums").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var a models.GalleryAlbum
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.UserID, &a.Title, &a.Image, &a.ImageThumb, &a.QtyPhotos, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlbumNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &a, nil
}

func (r *AlbumRepo) UpdateAlbum(ctx context.Context, album *models.GalleryAlbum) error {
	const op = "repository.AlbumRepo.UpdateAlbum"

	album.UpdatedAt = time.Now().UTC()

	query, args, err := r.sb.Update("gallery_albums").
		Set("title", album.Title).
		Set("image", album.Image).
		Set("image_thumb", album.ImageThumb).
		Set("qty_photos", album.QtyPhotos).
		Set("updated_at", album.UpdatedAt).
		Where(sq.Eq{"id": album.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrAlbumNotFound)
	}

	return nil
}

// AddPhoto links a gallery into the album's photo set.
func (r *AlbumRepo) AddPhoto(ctx context.Context, albumID, galleryID uuid.UUID) error {
	const op = "repository.AlbumRepo.AddPhoto"

	query, args, err := r.sb.Insert("gallery_album_photos").
		Columns("album_id", "gallery_id").
		Values(albumID, galleryID).
		Suffix("ON CONFLICT (album_id, gallery_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *AlbumRepo) RemovePhoto(ctx context.Context, albumID, galleryID uuid.UUID) error {
	const op = "repository.AlbumRepo.RemovePhoto"

	query, args, err := r.sb.Delete("gallery_album_photos").
		Where(sq.Eq{"album_id": albumID, "gallery_id": galleryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
