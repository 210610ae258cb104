package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

type LikeRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewLikeRepo(db *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// AddLike is idempotent: a second like from the same user is ignored.
func (r *LikeRepo) AddLike(ctx context.Context, galleryID, userID uuid.UUID) error {
	const op = "repository.LikeRepo.AddLike"

	query, args, err := r.sb.Insert("gallery_likes").
		Columns("gallery_id", "user_id").
		Values(galleryID, userID).
		Suffix("ON CONFLICT (gallery_id, user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *LikeRepo) RemoveLike(ctx context.Context, galleryID, userID uuid.UUID) error {
	const op = "repository.LikeRepo.RemoveLike"

	query, args, err := r.sb.Delete("gallery_likes").
		Where(sq.Eq{"gallery_id": galleryID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *LikeRepo) IsLiked(ctx context.Context, galleryID, userID uuid.UUID) (bool, error) {
	const op = "repository.LikeRepo.IsLiked"

	query, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("gallery_likes").
		Where(sq.Eq{"gallery_id": galleryID, "user_id": userID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (r *LikeRepo) CountLikes(ctx context.Context, galleryID uuid.UUID) (int, error) {
	const op = "repository.LikeRepo.CountLikes"

	query, args, err := r.sb.Select("COUNT(*)").
		From("gallery_likes").
		Where(sq.Eq{"gallery_id": galleryID}).
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
