package http

import (
	"log/slog"
	"net/http"

	"photogram/internal/metrics"
	"photogram/internal/transport/http/dto"
	"photogram/internal/transport/http/dto/request"
	"photogram/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// CreateChannel godoc
// @Summary Новый чат
// @Description Участники: текущий пользователь и переданные users. Непустое message становится первым сообщением.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body request.CreateChannelRequest true "Участники"
// @Success 201 {object} response.Response{data=models.ChatChannel}
// @Failure 400 {object} response.ErrorResponse "Not users"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Security ApiKeyAuth
// @Router /api/v1/chat/channels [post]
func (r *Routers) CreateChannel(c echo.Context) error {
	const op = "http.routers.CreateChannel"

	log := r.log.With(slog.String("op", op))

	var req request.CreateChannelRequest
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	channel, err := r.ChatService.CreateChatChannel(c.Request().Context(), caller(c), req.Users, req.Message)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(channel))
}

// GetChatChannel godoc
// @Summary Чаты пользователя
// @Description Собеседники и последнее сообщение каждого чата.
// @Tags chat
// @Produce json
// @Success 200 {object} response.Response{data=[]dto.ChannelView}
// @Security ApiKeyAuth
// @Router /api/v1/chat/channels [get]
func (r *Routers) GetChatChannel(c echo.Context) error {
	const op = "http.routers.GetChatChannel"

	log := r.log.With(slog.String("op", op))

	views, err := r.ChatService.GetChatChannel(c.Request().Context(), caller(c))
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(views))
}

// SendMessage godoc
// @Summary Отправка сообщения
// @Tags chat
// @Accept json
// @Produce json
// @Param id path string true "UUID чата" format(uuid)
// @Param request body request.SendMessageRequest true "Сообщение"
// @Success 201 {object} response.Response{data=dto.MessageView}
// @Failure 403 {object} response.ErrorResponse "Не участник чата"
// @Security ApiKeyAuth
// @Router /api/v1/chat/channels/{id}/messages [post]
func (r *Routers) SendMessage(c echo.Context) error {
	const op = "http.routers.SendMessage"

	log := r.log.With(slog.String("op", op))

	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}

	var req request.SendMessageRequest
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	message, err := r.ChatService.SendMessage(c.Request().Context(), caller(c), id, req.Body)
	if err != nil {
		return r.fail(c, log, err)
	}

	metrics.ChatMessages.Inc()

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.NewMessageView(message)))
}

// Messages godoc
// @Summary История чата
// @Description Новые сообщения первыми.
// @Tags chat
// @Produce json
// @Param id path string true "UUID чата" format(uuid)
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response{data=[]dto.MessageView}
// @Failure 403 {object} response.ErrorResponse "Не участник чата"
// @Security ApiKeyAuth
// @Router /api/v1/chat/channels/{id}/messages [get]
func (r *Routers) Messages(c echo.Context) error {
	const op = "http.routers.Messages"

	log := r.log.With(slog.String("op", op))

	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}

	var q request.PageQuery
	if ok, err := r.bind(c, log, &q); !ok {
		return err
	}

	views, err := r.ChatService.Messages(c.Request().Context(), caller(c), id, q.Page, q.Limit)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(views))
}
