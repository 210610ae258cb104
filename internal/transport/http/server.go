package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"photogram/internal/domain/models"
	"photogram/internal/lib/logger/sl"
	"photogram/internal/middleware"
	chats "photogram/internal/services/chat_service"
	galleries "photogram/internal/services/gallery_service"
	images "photogram/internal/services/image_service"
	"photogram/internal/storage"
	"photogram/internal/transport/http/dto"
	"photogram/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	_ "photogram/docs"
)

type GalleryService interface {
	Create(ctx context.Context, caller *models.User, in dto.CreateGalleryInput) (*models.Gallery, error)
	Update(ctx context.Context, caller *models.User, id uuid.UUID, in dto.UpdateGalleryInput) (*models.Gallery, error)
	GetGallery(ctx context.Context, id uuid.UUID) (*dto.GalleryView, error)
	DestroyGallery(ctx context.Context, caller *models.User, id uuid.UUID) error
	Feed(ctx context.Context, caller *models.User, params dto.FeedParams) ([]dto.GalleryView, error)
	Search(ctx context.Context, caller *models.User, text string, page, limit int) ([]dto.GalleryView, error)
	CommentGallery(ctx context.Context, galleryID uuid.UUID, page, limit int) ([]dto.CommentView, error)
	AddComment(ctx context.Context, caller *models.User, galleryID uuid.UUID, text string) (*dto.CommentView, error)
	RemoveComment(ctx context.Context, caller *models.User, commentID uuid.UUID) error
	LikeGallery(ctx context.Context, caller *models.User, galleryID uuid.UUID) (*dto.LikeResult, error)
	IsGalleryLiked(ctx context.Context, caller *models.User, galleryID uuid.UUID) (bool, error)
	GetAlbum(ctx context.Context, albumID uuid.UUID, page, limit int) ([]dto.GalleryView, error)
	CreateAlbum(ctx context.Context, caller *models.User, title string) (*dto.AlbumView, error)
	Activities(ctx context.Context, caller *models.User, page, limit int) ([]dto.ActivityView, error)
}

type ChatService interface {
	CreateChatChannel(ctx context.Context, caller *models.User, userIDs []uuid.UUID, message string) (*models.ChatChannel, error)
	GetChatChannel(ctx context.Context, caller *models.User) ([]dto.ChannelView, error)
	SendMessage(ctx context.Context, caller *models.User, channelID uuid.UUID, body string) (*models.ChatMessage, error)
	Messages(ctx context.Context, caller *models.User, channelID uuid.UUID, page, limit int) ([]dto.MessageView, error)
}

type Routers struct {
	log            *slog.Logger
	GalleryService GalleryService
	ChatService    ChatService
}

func NewRouter(log *slog.Logger, galleryService GalleryService, chatService ChatService) *Routers {
	return &Routers{
		log:            log,
		GalleryService: galleryService,
		ChatService:    chatService,
	}
}

var ErrInvalidUUID = errors.New("not valid UUID")

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is matched in order with errors.Is.
var errorMappings = []errorMapping{
	{galleries.ErrNotAuthorized, http.StatusUnauthorized, "not_authorized"},
	{chats.ErrNotAuthorized, http.StatusUnauthorized, "not_authorized"},
	{galleries.ErrForbidden, http.StatusForbidden, "forbidden"},
	{chats.ErrNotMember, http.StatusForbidden, "forbidden"},

	{galleries.ErrImageRequired, http.StatusBadRequest, "invalid_request"},
	{galleries.ErrTextRequired, http.StatusBadRequest, "invalid_request"},
	{galleries.ErrTitleRequired, http.StatusBadRequest, "invalid_request"},
	{galleries.ErrUnknownFeedMode, http.StatusBadRequest, "invalid_request"},
	{chats.ErrUsersRequired, http.StatusBadRequest, "invalid_request"},
	{chats.ErrBodyRequired, http.StatusBadRequest, "invalid_request"},
	{images.ErrEmptySource, http.StatusBadRequest, "invalid_image"},
	{images.ErrFetchFailed, http.StatusUnprocessableEntity, "invalid_image"},
	{storage.ErrInvalidFileType, http.StatusUnsupportedMediaType, "invalid_image"},
	{images.ErrSourceTooLong, http.StatusRequestEntityTooLarge, "image_too_large"},
	{storage.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "image_too_large"},

	{storage.ErrGalleryNotFound, http.StatusNotFound, "not_found"},
	{storage.ErrAlbumNotFound, http.StatusNotFound, "not_found"},
	{storage.ErrCommentNotFound, http.StatusNotFound, "not_found"},
	{storage.ErrUserNotFound, http.StatusNotFound, "not_found"},
	{storage.ErrChannelNotFound, http.StatusNotFound, "not_found"},
}

// fail writes the error response for a service error. Known errors keep
// their message; anything else is a 500 with no details.
func (r *Routers) fail(c echo.Context, log *slog.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			log.Warn("request rejected", slog.Int("status", m.status), sl.Err(err))
			return c.JSON(m.status, response.ErrorResponseWithDetails(m.code, m.err.Error()))
		}
	}

	log.Error("request failed", sl.Err(err))

	return c.JSON(http.StatusInternalServerError, response.ErrInternal)
}

// bind decodes and validates req. When ok is false the 400 has been written.
func (r *Routers) bind(c echo.Context, log *slog.Logger, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		log.Warn("invalid request format", sl.Err(err))
		return false, c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid request", sl.Err(err))
		return false, c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	return true, nil
}

// paramID parses a uuid path parameter, writing a 400 when it is malformed.
func paramID(c echo.Context, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false, c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", ErrInvalidUUID.Error()))
	}

	return id, true, nil
}

func caller(c echo.Context) *models.User {
	return middleware.Caller(c)
}

// Health godoc
// @Summary Проверка доступности
// @Tags system
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (r *Routers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "ok"})
}
