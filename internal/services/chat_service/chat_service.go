package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"photogram/internal/domain/models"
	"photogram/internal/lib/fanout"
	"photogram/internal/lib/logger/sl"
	"photogram/internal/repository"
	"photogram/internal/storage"
	"photogram/internal/transport/http/dto"

	"github.com/google/uuid"
)

var (
	ErrNotAuthorized = errors.New("Not Authorized")
	ErrUsersRequired = errors.New("Not users")
	ErrNotMember     = errors.New("not a channel member")
	ErrBodyRequired  = errors.New("Message is required")
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

type ChatService struct {
	log      *slog.Logger
	chats    repository.ChatRepository
	users    repository.UserRepository
	profiles repository.ProfileRepository
}

func NewChatService(
	log *slog.Logger,
	chats repository.ChatRepository,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
) *ChatService {
	return &ChatService{
		log:      log,
		chats:    chats,
		users:    users,
		profiles: profiles,
	}
}

// CreateChatChannel opens a channel between caller and userIDs. Every id must
// resolve to a user. A non-empty message is posted as the first message.
func (s *ChatService) CreateChatChannel(ctx context.Context, caller *models.User, userIDs []uuid.UUID, message string) (*models.ChatChannel, error) {
	const op = "chat_service.CreateChatChannel"

	if caller == nil {
		return nil, ErrNotAuthorized
	}
	if len(userIDs) == 0 {
		return nil, ErrUsersRequired
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", caller.ID.String()),
		slog.Int("users", len(userIDs)),
	)

	users, err := fanout.All(ctx, userIDs, func(ctx context.Context, id uuid.UUID) (models.User, error) {
		return s.users.GetUserById(ctx, id)
	})
	if err != nil {
		log.Warn("failed to resolve channel users", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	members := make([]uuid.UUID, 0, len(users)+1)
	members = append(members, caller.ID)
	for _, u := range users {
		members = append(members, u.ID)
	}

	channel, err := s.chats.CreateChannel(ctx, members)
	if err != nil {
		log.Error("failed to create channel", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("channel created", slog.String("channel_id", channel.ID.String()))

	// a failed first message does not undo the channel
	if body := strings.TrimSpace(message); body != "" {
		if _, err := s.post(ctx, caller, channel.ID, body); err != nil {
			log.Warn("failed to post first message", sl.Err(err))
		}
	}

	return channel, nil
}

// GetChatChannel lists the caller's channels, most recently active first.
// Each channel shows the other members and its newest message.
func (s *ChatService) GetChatChannel(ctx context.Context, caller *models.User) ([]dto.ChannelView, error) {
	const op = "chat_service.GetChatChannel"

	if caller == nil {
		return nil, ErrNotAuthorized
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", caller.ID.String()),
	)

	channels, err := s.chats.ChannelsByMember(ctx, caller.ID)
	if err != nil {
		log.Error("failed to list channels", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	batch, err := fanout.Map(ctx, channels, func(ctx context.Context, ch models.ChatChannel) fanout.Outcome[dto.ChannelView] {
		view := dto.ChannelView{
			ID:        ch.ID,
			CreatedAt: ch.CreatedAt,
			UpdatedAt: ch.UpdatedAt,
		}

		members, err := s.chats.ChannelMembers(ctx, ch.ID)
		if err != nil {
			return fanout.Fatal[dto.ChannelView](err)
		}

		others := make([]models.User, 0, len(members))
		for _, m := range members {
			if m.ID != caller.ID {
				others = append(others, m)
			}
		}

		profiles, err := fanout.All(ctx, others, s.profileOf)
		if err != nil {
			return fanout.Fatal[dto.ChannelView](err)
		}
		view.Users = profiles

		latest, err := s.chats.LatestMessage(ctx, ch.ID)
		if err != nil {
			if !errors.Is(err, storage.ErrMessageNotFound) {
				return fanout.Degraded(view, err)
			}
			return fanout.OK(view)
		}
		view.Message = dto.NewMessageView(latest)

		return fanout.OK(view)
	})
	if err != nil {
		log.Error("failed to load channels", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, err := range batch.Degraded {
		log.Warn("channel without latest message", sl.Err(err))
	}

	return batch.Values, nil
}

// profileOf falls back to the account fields for members without a profile.
func (s *ChatService) profileOf(ctx context.Context, u models.User) (models.Profile, error) {
	profile, err := s.profiles.ProfileByUser(ctx, u.ID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return models.Profile{UserID: u.ID, Username: u.Username, Name: u.Name}, nil
		}
		return models.Profile{}, err
	}

	return *profile, nil
}

// SendMessage posts body to a channel the caller belongs to.
func (s *ChatService) SendMessage(ctx context.Context, caller *models.User, channelID uuid.UUID, body string) (*models.ChatMessage, error) {
	const op = "chat_service.SendMessage"

	if caller == nil {
		return nil, ErrNotAuthorized
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrBodyRequired
	}

	if err := s.requireMember(ctx, caller, channelID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	message, err := s.post(ctx, caller, channelID, body)
	if err != nil {
		s.log.Error("failed to send message",
			slog.String("op", op),
			slog.String("channel_id", channelID.String()),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return message, nil
}

// Messages pages through a channel, newest first.
func (s *ChatService) Messages(ctx context.Context, caller *models.User, channelID uuid.UUID, page, limit int) ([]dto.MessageView, error) {
	const op = "chat_service.Messages"

	if caller == nil {
		return nil, ErrNotAuthorized
	}

	if err := s.requireMember(ctx, caller, channelID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	messages, err := s.chats.ListMessages(ctx, channelID, repository.NewPage(page, limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]dto.MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, *dto.NewMessageView(&messages[i]))
	}

	return views, nil
}

func (s *ChatService) requireMember(ctx context.Context, caller *models.User, channelID uuid.UUID) error {
	ok, err := s.chats.IsMember(ctx, channelID, caller.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

func (s *ChatService) post(ctx context.Context, caller *models.User, channelID uuid.UUID, body string) (*models.ChatMessage, error) {
	message := &models.ChatMessage{
		ChannelID: channelID,
		UserID:    caller.ID,
		User:      caller,
		Body:      body,
	}

	if _, err := s.chats.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}
