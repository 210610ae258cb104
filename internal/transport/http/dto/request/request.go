package request

import "github.com/google/uuid"

type PageQuery struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

type SearchQuery struct {
	Text  string `query:"text"`
	Page  int    `query:"page" validate:"omitempty,min=1"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

type AddCommentRequest struct {
	Text string `json:"text" validate:"required,max=2200"`
}

type CreateAlbumRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type CreateChannelRequest struct {
	Users   []uuid.UUID `json:"users"`
	Message string      `json:"message" validate:"max=4000"`
}

type SendMessageRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}
