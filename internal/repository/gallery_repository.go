package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"photogram/internal/domain/models"
	"photogram/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

type GalleryRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewGalleryRepo(db *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// gallery columns followed by the included owner and album
var galleryColumns = []string{
	"g.id",
	"g.user_id",
	"g.album_id",
	"g.image",
	"g.image_low",
	"g.image_thumb",
	"g.title",
	"g.words",
	"g.hashtags",
	"g.address",
	"g.latitude",
	"g.longitude",
	"COALESCE(g.privacity, '')",
	"g.likes_total",
	"g.comments_total",
	"g.views",
	"g.is_approved",
	"g.profile",
	"g.created_at",
	"g.updated_at",
	"u.username",
	"u.name",
	"u.email",
	"u.created_at",
	"COALESCE(a.title, '')",
	"COALESCE(a.image, '')",
	"COALESCE(a.image_thumb, '')",
	"COALESCE(a.qty_photos, 0)",
	"a.user_id",
	"a.created_at",
	"a.updated_at",
}

func (r *GalleryRepo) selectGalleries() squirrel.SelectBuilder {
	return r.sb.Select(galleryColumns...).
		From("galleries g").
		Join("users u ON u.id = g.user_id").
		LeftJoin("gallery_albums a ON a.id = g.album_id")
}

func scanGallery(row pgx.Row) (*models.Gallery, error) {
	var (
		g                  models.Gallery
		owner              models.User
		albumID, albumUser uuid.NullUUID
		lat, lng           sql.NullFloat64
		address, profile   []byte
		album              models.GalleryAlbum
		albumCreated       sql.NullTime
		albumUpdated       sql.NullTime
	)

	err := row.Scan(
		&g.ID,
		&g.UserID,
		&albumID,
		&g.Image,
		&g.ImageLow,
		&g.ImageThumb,
		&g.Title,
		pq.Array(&g.Words),
		pq.Array(&g.Hashtags),
		&address,
		&lat,
		&lng,
		&g.Privacity,
		&g.LikesTotal,
		&g.CommentsTotal,
		&g.Views,
		&g.IsApproved,
		&profile,
		&g.CreatedAt,
		&g.UpdatedAt,
		&owner.Username,
		&owner.Name,
		&owner.Email,
		&owner.CreatedAt,
		&album.Title,
		&album.Image,
		&album.ImageThumb,
		&album.QtyPhotos,
		&albumUser,
		&albumCreated,
		&albumUpdated,
	)
	if err != nil {
		return nil, err
	}

	owner.ID = g.UserID
	g.User = &owner
	g.Address = jsonbScan[models.Address](address)
	g.Profile = jsonbScan[models.Profile](profile)

	if lat.Valid && lng.Valid {
		g.Location = &models.GeoPoint{Latitude: lat.Float64, Longitude: lng.Float64}
	}

	if albumID.Valid {
		id := albumID.UUID
		g.AlbumID = &id
		album.ID = id
		album.UserID = albumUser.UUID
		album.CreatedAt = albumCreated.Time
		album.UpdatedAt = albumUpdated.Time
		g.Album = &album
	}

	return &g, nil
}

func locationArgs(g *models.Gallery) (interface{}, interface{}) {
	if g.Location == nil {
		return nil, nil
	}
	return g.Location.Latitude, g.Location.Longitude
}

func nullableUUID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// CreateGallery inserts the gallery and fills its ID and timestamps.
func (r *GalleryRepo) CreateGallery(ctx context.Context, gallery *models.Gallery) (uuid.UUID, error) {
	const op = "repository.GalleryRepo.CreateGallery"

	lat, lng := locationArgs(gallery)

	query, args, err := r.sb.Insert("galleries").
		Columns(
			"user_id",
			"album_id",
			"image",
			"image_low",
			"image_thumb",
			"title",
			"words",
			"hashtags",
			"address",
			"latitude",
			"longitude",
			"privacity",
			"likes_total",
			"comments_total",
			"views",
			"is_approved",
			"profile",
		).
		Values(
			gallery.UserID,
			nullableUUID(gallery.AlbumID),
			gallery.Image,
			gallery.ImageLow,
			gallery.ImageThumb,
			gallery.Title,
			nonNil(gallery.Words),
			nonNil(gallery.Hashtags),
			jsonbArg(gallery.Address),
			lat,
			lng,
			gallery.Privacity,
			gallery.LikesTotal,
			gallery.CommentsTotal,
			gallery.Views,
			gallery.IsApproved,
			jsonbArg(gallery.Profile),
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&gallery.ID, &gallery.CreatedAt, &gallery.UpdatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return gallery.ID, nil
}

// UpdateGallery writes every mutable column of the gallery.
func (r *GalleryRepo) UpdateGallery(ctx context.Context, gallery *models.Gallery) error {
	const op = "repository.GalleryRepo.UpdateGallery"

	lat, lng := locationArgs(gallery)
	gallery.UpdatedAt = time.Now().UTC()

	query, args, err := r.sb.Update("galleries").
		Set("album_id", nullableUUID(gallery.AlbumID)).
		Set("image", gallery.Image).
		Set("image_low", gallery.ImageLow).
		Set("image_thumb", gallery.ImageThumb).
		Set("title", gallery.Title).
		Set("words", nonNil(gallery.Words)).
		Set("hashtags", nonNil(gallery.Hashtags)).
		Set("address", jsonbArg(gallery.Address)).
		Set("latitude", lat).
		Set("longitude", lng).
		Set("privacity", gallery.Privacity).
		Set("likes_total", gallery.LikesTotal).
		Set("comments_total", gallery.CommentsTotal).
		Set("views", gallery.Views).
		Set("is_approved", gallery.IsApproved).
		Set("profile", jsonbArg(gallery.Profile)).
		Set("updated_at", gallery.UpdatedAt).
		Where(squirrel.Eq{"id": gallery.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}

// DeleteGallery удаляет галерею по ID
func (r *GalleryRepo) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	const op = "repository.GalleryRepo.DeleteGallery"

	query, args, err := r.sb.Delete("galleries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}

// GetGalleryByID returns the gallery with its owner and album included.
func (r *GalleryRepo) GetGalleryByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGalleryByID"

	query, args, err := r.selectGalleries().
		Where(squirrel.Eq{"g.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	gallery, err := scanGallery(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return gallery, nil
}

// ListGalleries returns the newest galleries matching q.
func (r *GalleryRepo) ListGalleries(ctx context.Context, q GalleryQuery) ([]models.Gallery, error) {
	const op = "repository.GalleryRepo.ListGalleries"

	galleries := make([]models.Gallery, 0)

	if q.UserIDs != nil && len(q.UserIDs) == 0 {
		return galleries, nil
	}

	builder := r.selectGalleries()

	if q.ID != nil {
		builder = builder.Where(squirrel.Eq{"g.id": *q.ID})
	}
	if q.AlbumID != nil {
		builder = builder.Where(squirrel.Eq{"g.album_id": *q.AlbumID})
	}
	if len(q.UserIDs) > 0 {
		builder = builder.Where(squirrel.Eq{"g.user_id": q.UserIDs})
	}
	if q.PublicOnly {
		builder = builder.Where(squirrel.Or{
			squirrel.Eq{"g.privacity": nil},
			squirrel.Eq{"g.privacity": []string{"", models.PrivacityPublic}},
		})
	}
	if q.ApprovedOnly {
		builder = builder.Where(squirrel.Eq{"g.is_approved": true})
	}
	if len(q.AllWords) > 0 {
		builder = builder.Where("g.words @> ?", q.AllWords)
	}
	if len(q.AllHashtags) > 0 {
		builder = builder.Where("g.hashtags @> ?", q.AllHashtags)
	}
	if q.WordLike != "" {
		builder = builder.Where("EXISTS (SELECT 1 FROM unnest(g.words) AS w WHERE w LIKE ? ESCAPE '\\')", "%"+escapeLike(q.WordLike)+"%")
	}
	if q.HashtagLike != "" {
		builder = builder.Where("EXISTS (SELECT 1 FROM unnest(g.hashtags) AS h WHERE h LIKE ? ESCAPE '\\')", "%"+escapeLike(q.HashtagLike)+"%")
	}

	builder = builder.OrderBy("g.created_at DESC")
	if q.Page.Limit > 0 {
		builder = builder.Limit(q.Page.Limit)
	}
	if q.Page.Offset > 0 {
		builder = builder.Offset(q.Page.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		gallery, err := scanGallery(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		galleries = append(galleries, *gallery)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return galleries, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *GalleryRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const op = "repository.GalleryRepo.CountByUser"

	return r.count(ctx, op, squirrel.Eq{"user_id": userID})
}

func (r *GalleryRepo) CountByAlbum(ctx context.Context, albumID uuid.UUID) (int, error) {
	const op = "repository.GalleryRepo.CountByAlbum"

	return r.count(ctx, op, squirrel.Eq{"album_id": albumID})
}

func (r *GalleryRepo) count(ctx context.Context, op string, where squirrel.Eq) (int, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("galleries").
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (r *GalleryRepo) SetLikesTotal(ctx context.Context, id uuid.UUID, total int) error {
	const op = "repository.GalleryRepo.SetLikesTotal"

	return r.set(ctx, op, id, "likes_total", total)
}

func (r *GalleryRepo) SetCommentsTotal(ctx context.Context, id uuid.UUID, total int) error {
	const op = "repository.GalleryRepo.SetCommentsTotal"

	return r.set(ctx, op, id, "comments_total", total)
}

func (r *GalleryRepo) SetProfile(ctx context.Context, id uuid.UUID, profile *models.Profile) error {
	const op = "repository.GalleryRepo.SetProfile"

	return r.set(ctx, op, id, "profile", jsonbArg(profile))
}

func (r *GalleryRepo) set(ctx context.Context, op string, id uuid.UUID, column string, value interface{}) error {
	query, args, err := r.sb.Update("galleries").
		Set(column, value).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}
