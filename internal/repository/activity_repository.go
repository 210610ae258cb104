package repository

import (
	"context"
	"fmt"

	"photogram/internal/domain/models"
	"photogram/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type ActivityRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewActivityRepo(db *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var activityColumns = []string{"id", "gallery_id", "from_user_id", "to_user_id", "action", "created_at"}

func (r *ActivityRepo) CreateActivity(ctx context.Context, activity *models.GalleryActivity) (uuid.UUID, error) {
	const op = "repository.ActivityRepo.CreateActivity"

	query, args, err := r.sb.Insert("gallery_activities").
		Columns("gallery_id", "from_user_id", "to_user_id", "action").
		Values(activity.GalleryID, activity.FromUserID, activity.ToUserID, activity.Action).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&activity.ID, &activity.CreatedAt); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return activity.ID, nil
}

func (r *ActivityRepo) ListByGallery(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryActivity, error) {
	const op = "repository.ActivityRepo.ListByGallery"

	query, args, err := r.sb.Select(activityColumns...).
		From("gallery_activities").
		Where(sq.Eq{"gallery_id": galleryID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	activities, err := r.list(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return activities, nil
}

// ListByRecipient is the notification feed of userID, newest first.
func (r *ActivityRepo) ListByRecipient(ctx context.Context, userID uuid.UUID, page Page) ([]models.GalleryActivity, error) {
	const op = "repository.ActivityRepo.ListByRecipient"

	builder := r.sb.Select(activityColumns...).
		From("gallery_activities").
		Where(sq.Eq{"to_user_id": userID}).
		OrderBy("created_at DESC")
	if page.Limit > 0 {
		builder = builder.Limit(page.Limit)
	}
	if page.Offset > 0 {
		builder = builder.Offset(page.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	activities, err := r.list(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return activities, nil
}

func (r *ActivityRepo) list(ctx context.Context, query string, args []interface{}) ([]models.GalleryActivity, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]models.GalleryActivity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

func scanActivity(row pgx.Row) (models.GalleryActivity, error) {
	var a models.GalleryActivity
	err := row.Scan(&a.ID, &a.GalleryID, &a.FromUserID, &a.ToUserID, &a.Action, &a.CreatedAt)
	return a, err
}

func (r *ActivityRepo) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	const op = "repository.ActivityRepo.DeleteActivity"

	query, args, err := r.sb.Delete("gallery_activities").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrActivityNotFound)
	}

	return nil
}
