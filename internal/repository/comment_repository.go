package repository

import (
	"context"
	"errors"
	"fmt"

	"photogram/internal/domain/models"
	"photogram/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type CommentRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewCommentRepo(db *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *CommentRepo) selectComments() sq.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.gallery_id", "c.user_id", "c.text", "c.profile", "c.created_at", "c.updated_at",
		"u.username", "u.name", "u.email", "u.created_at",
	).
		From("gallery_comments c").
		Join("users u ON u.id = c.user_id")
}

func scanComment(row pgx.Row) (*models.GalleryComment, error) {
	var (
		c       models.GalleryComment
		author  models.User
		profile []byte
	)

	err := row.Scan(
		&c.ID, &c.GalleryID, &c.UserID, &c.Text, &profile, &c.CreatedAt, &c.UpdatedAt,
		&author.Username, &author.Name, &author.Email, &author.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	author.ID = c.UserID
	c.User = &author
	c.Profile = jsonbScan[models.Profile](profile)

	return &c, nil
}

func (r *CommentRepo) CreateComment(ctx context.Context, comment *models.GalleryComment) (uuid.UUID, error) {
	const op = "repository.CommentRepo.CreateComment"

	query, args, err := r.sb.Insert("gallery_comments").
		Columns("gallery_id", "user_id", "text", "profile").
		Values(comment.GalleryID, comment.UserID, comment.Text, jsonbArg(comment.Profile)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return comment.ID, nil
}

func (r *CommentRepo) GetCommentByID(ctx context.Context, id uuid.UUID) (*models.GalleryComment, error) {
	const op = "repository.CommentRepo.GetCommentByID"

	query, args, err := r.selectComments().
		Where(sq.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comment, err := scanComment(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrCommentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return comment, nil
}

// ListComments pages through a gallery's comments, oldest first unless NewestFirst is set.
func (r *CommentRepo) ListComments(ctx context.Context, q CommentQuery) ([]models.GalleryComment, error) {
	const op = "repository.CommentRepo.ListComments"

	order := "c.created_at ASC"
	if q.NewestFirst {
		order = "c.created_at DESC"
	}

	builder := r.selectComments().
		Where(sq.Eq{"c.gallery_id": q.GalleryID}).
		OrderBy(order, "c.id")
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

	comments := make([]models.GalleryComment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		comments = append(comments, *comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return comments, nil
}

func (r *CommentRepo) DeleteComment(ctx context.Context, id uuid.UUID) error {
	const op = "repository.CommentRepo.DeleteComment"

	query, args, err := r.sb.Delete("gallery_comments").
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
		return fmt.Errorf("%s: %w", op, storage.ErrCommentNotFound)
	}

	return nil
}

// SetProfile stores the author snapshot on a comment.
func (r *CommentRepo) SetProfile(ctx context.Context, id uuid.UUID, profile *models.Profile) error {
	const op = "repository.CommentRepo.SetProfile"

	query, args, err := r.sb.Update("gallery_comments").
		Set("profile", jsonbArg(profile)).
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
		return fmt.Errorf("%s: %w", op, storage.ErrCommentNotFound)
	}

	return nil
}

func (r *CommentRepo) CountByGallery(ctx context.Context, galleryID uuid.UUID) (int, error) {
	const op = "repository.CommentRepo.CountByGallery"

	query, args, err := r.sb.Select("COUNT(*)").
		From("gallery_comments").
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

// CountByGalleryOwner counts comments received on all galleries of ownerID.
func (r *CommentRepo) CountByGalleryOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	const op = "repository.CommentRepo.CountByGalleryOwner"

	query, args, err := r.sb.Select("COUNT(*)").
		From("gallery_comments c").
		Join("galleries g ON g.id = c.gallery_id").
		Where(sq.Eq{"g.user_id": ownerID}).
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
