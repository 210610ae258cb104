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

type UserRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewUserRepository(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *UserRepo) GetUserById(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "repository.user_repository.GetUserById"

	return r.userBy(ctx, op, sq.Eq{"id": userID})
}

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	const op = "repository.user_repository.GetUserByUsername"

	return r.userBy(ctx, op, sq.Eq{"username": username})
}

func (r *UserRepo) userBy(ctx context.Context, op string, where sq.Eq) (models.User, error) {
	sql, args, err := r.sb.Select("id", "username", "name", "email", "created_at").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var user models.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.Username, &user.Name, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

type ProfileRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ProfileRepo) ProfileByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "repository.ProfileRepo.ProfileByUser"

	sql, args, err := r.sb.Select(
		"user_id", "username", "name", "photo", "status",
		"galleries_total", "comments_total", "updated_at",
	).
		From("user_profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var p models.Profile
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.UserID, &p.Username, &p.Name, &p.Photo, &p.Status,
		&p.GalleriesTotal, &p.CommentsTotal, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrProfileNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}

func (r *ProfileRepo) UpdateGalleriesTotal(ctx context.Context, userID uuid.UUID, total int) error {
	const op = "repository.ProfileRepo.UpdateGalleriesTotal"

	return r.setCounter(ctx, op, userID, "galleries_total", total)
}

func (r *ProfileRepo) UpdateCommentsTotal(ctx context.Context, userID uuid.UUID, total int) error {
	const op = "repository.ProfileRepo.UpdateCommentsTotal"

	return r.setCounter(ctx, op, userID, "comments_total", total)
}

func (r *ProfileRepo) setCounter(ctx context.Context, op string, userID uuid.UUID, column string, total int) error {
	query, args, err := r.sb.Update("user_profiles").
		Set(column, total).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrProfileNotFound)
	}

	return nil
}

type FollowRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewFollowRepository(db *pgxpool.Pool) *FollowRepo {
	return &FollowRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FollowingIDs lists the users followed by fromUserID. Duplicates are possible.
func (r *FollowRepo) FollowingIDs(ctx context.Context, fromUserID uuid.UUID) ([]uuid.UUID, error) {
	const op = "repository.FollowRepo.FollowingIDs"

	query, args, err := r.sb.Select("to_user_id").
		From("user_follows").
		Where(sq.Eq{"from_user_id": fromUserID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}
