package dto

import (
	"time"

	"photogram/internal/domain/models"

	"github.com/google/uuid"
)

// ChannelView is a channel as seen by one member.
type ChannelView struct {
	ID        uuid.UUID        `json:"id"`
	Users     []models.Profile `json:"users"`
	Message   *MessageView     `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type MessageView struct {
	ID        uuid.UUID `json:"id"`
	ChannelID uuid.UUID `json:"channel_id"`
	Body      string    `json:"body"`
	User      *UserView `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessageView(m *models.ChatMessage) *MessageView {
	if m == nil {
		return nil
	}

	return &MessageView{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Body:      m.Body,
		User:      NewUserView(m.User),
		CreatedAt: m.CreatedAt,
	}
}
