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

type ChatRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewChatRepo(db *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// CreateChannel inserts a channel and its members in one transaction.
func (r *ChatRepo) CreateChannel(ctx context.Context, memberIDs []uuid.UUID) (*models.ChatChannel, error) {
	const op = "repository.ChatRepo.CreateChannel"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback(ctx)

	channel := &models.ChatChannel{}
	err = tx.QueryRow(ctx,
		"INSERT INTO chat_channels DEFAULT VALUES RETURNING id, created_at, updated_at",
	).Scan(&channel.ID, &channel.CreatedAt, &channel.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: insert channel: %w", op, err)
	}

	insert := r.sb.Insert("chat_channel_users").
		Columns("channel_id", "user_id").
		Suffix("ON CONFLICT DO NOTHING")

	seen := make(map[uuid.UUID]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		insert = insert.Values(channel.ID, id)
		channel.UserIDs = append(channel.UserIDs, id)
	}

	if len(channel.UserIDs) > 0 {
		query, args, err := insert.ToSql()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("%s: insert members: %w", op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return channel, nil
}

// ChannelsByMember lists the channels userID belongs to, most recently active first.
func (r *ChatRepo) ChannelsByMember(ctx context.Context, userID uuid.UUID) ([]models.ChatChannel, error) {
	const op = "repository.ChatRepo.ChannelsByMember"

	query, args, err := r.sb.Select("c.id", "c.created_at", "c.updated_at").
		From("chat_channels c").
		Join("chat_channel_users cu ON cu.channel_id = c.id").
		Where(sq.Eq{"cu.user_id": userID}).
		OrderBy("c.updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	channels := make([]models.ChatChannel, 0)
	for rows.Next() {
		var c models.ChatChannel
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		channels = append(channels, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return channels, nil
}

func (r *ChatRepo) ChannelMembers(ctx context.Context, channelID uuid.UUID) ([]models.User, error) {
	const op = "repository.ChatRepo.ChannelMembers"

	query, args, err := r.sb.Select("u.id", "u.username", "u.name", "u.email", "u.created_at").
		From("chat_channel_users cu").
		Join("users u ON u.id = cu.user_id").
		Where(sq.Eq{"cu.channel_id": channelID}).
		OrderBy("u.username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

func (r *ChatRepo) IsMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	const op = "repository.ChatRepo.IsMember"

	query, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("chat_channel_users").
		Where(sq.Eq{"channel_id": channelID, "user_id": userID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var ok bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// CreateMessage stores the message and bumps the channel's updated_at.
func (r *ChatRepo) CreateMessage(ctx context.Context, message *models.ChatMessage) (uuid.UUID, error) {
	const op = "repository.ChatRepo.CreateMessage"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback(ctx)

	query, args, err := r.sb.Insert("chat_messages").
		Columns("channel_id", "user_id", "body").
		Values(message.ChannelID, message.UserID, message.Body).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&message.ID, &message.CreatedAt); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err = r.sb.Update("chat_channels").
		Set("updated_at", message.CreatedAt).
		Where(sq.Eq{"id": message.ChannelID}).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrChannelNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return message.ID, nil
}

func (r *ChatRepo) selectMessages() sq.SelectBuilder {
	return r.sb.Select(
		"m.id", "m.channel_id", "m.user_id", "m.body", "m.created_at",
		"u.username", "u.name", "u.email", "u.created_at",
	).
		From("chat_messages m").
		Join("users u ON u.id = m.user_id")
}

func scanMessage(row pgx.Row) (*models.ChatMessage, error) {
	var (
		m      models.ChatMessage
		author models.User
	)

	err := row.Scan(
		&m.ID, &m.ChannelID, &m.UserID, &m.Body, &m.CreatedAt,
		&author.Username, &author.Name, &author.Email, &author.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	author.ID = m.UserID
	m.User = &author

	return &m, nil
}

// LatestMessage returns the newest message of a channel.
func (r *ChatRepo) LatestMessage(ctx context.Context, channelID uuid.UUID) (*models.ChatMessage, error) {
	const op = "repository.ChatRepo.LatestMessage"

	query, args, err := r.selectMessages().
		Where(sq.Eq{"m.channel_id": channelID}).
		OrderBy("m.created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	message, err := scanMessage(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrMessageNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return message, nil
}

// ListMessages returns a page of a channel's messages, newest first.
func (r *ChatRepo) ListMessages(ctx context.Context, channelID uuid.UUID, page Page) ([]models.ChatMessage, error) {
	const op = "repository.ChatRepo.ListMessages"

	builder := r.selectMessages().
		Where(sq.Eq{"m.channel_id": channelID}).
		OrderBy("m.created_at DESC")
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

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		messages = append(messages, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return messages, nil
}
