package http

import (
	"log/slog"
	"net/http"

	"photogram/internal/metrics"
	"photogram/internal/transport/http/dto"
	"photogram/internal/transport/http/dto/request"
	"photogram/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CreateGallery godoc
// @Summary Публикация фотографии
// @Description Принимает URL, data URI или base64 изображения. Возвращает созданную галерею.
// @Tags galleries
// @Accept json
// @Produce json
// @Param request body dto.CreateGalleryInput true "Данные галереи"
// @Success 201 {object} response.Response{data=dto.GalleryView}
// @Failure 400 {object} response.ErrorResponse "Нет изображения или неверный формат"
// @Failure 401 {object} response.ErrorResponse "Требуется авторизация"
// @Security ApiKeyAuth
// @Router /api/v1/galleries [post]
func (r *Routers) CreateGallery(c echo.Context) error {
	const op = "http.routers.CreateGallery"

	log := r.log.With(slog.String("op", op))

	var req dto.CreateGalleryInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	ctx := c.Request().Context()

	gallery, err := r.GalleryService.Create(ctx, caller(c), req)
	if err != nil {
		return r.fail(c, log, err)
	}

	metrics.GalleryEvents.WithLabelValues("created").Inc()

	view, err := r.GalleryService.GetGallery(ctx, gallery.ID)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(view))
}

// UpdateGallery godoc
// @Summary Изменение галереи
// @Description Перезаписывает только непустые поля.
// @Tags galleries
// @Accept json
// @Produce json
// @Param id path string true "UUID галереи" format(uuid)
// @Param request body dto.UpdateGalleryInput true "Изменяемые поля"
// @Success 200 {object} response.Response{data=dto.GalleryView}
// @Failure 403 {object} response.ErrorResponse "Галерея принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Галерея не найдена"
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id} [put]
func (r *Routers) UpdateGallery(c echo.Context) error {
	const op = "http.routers.UpdateGallery"

	log := r.log.With(slog.String("op", op))

	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}

	var req dto.UpdateGalleryInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	ctx := c.Request().Context()

	if _, err := r.GalleryService.Update(ctx, caller(c), id, req); err != nil {
		return r.fail(c, log, err)
	}

	metrics.GalleryEvents.WithLabelValues("updated").Inc()

	view, err := r.GalleryService.GetGallery(ctx, id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(view))
}

// GetGallery godoc
// @Summary Галерея по ID
// @Tags galleries
// @Produce json
// @Param id path string true "UUID галереи" format(uuid)
// @Success 200 {object} response.Response{data=dto.GalleryView}
// @Failure 404 {object} response.ErrorResponse "Галерея не найдена"
// @Router /api/v1/galleries/{id} [get]
func (r *Routers) GetGallery(c echo.Context) error {
	const op = "http.routers.GetGallery"

	log := r.log.With(slog.String("op", op))

	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}

	view, err := r.GalleryService.GetGallery(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(view))
}

// DestroyGallery godoc
// @Summary Удаление галереи
// @Description Удаляет галерею вместе с комментариями и уведомлениями.
// @Tags galleries
// @Param id path string true "UUID галереи" format(uuid)
// @Success 204
// @Failure 403 {object} response.ErrorResponse "Галерея принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Галерея не найдена"
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id} [delete]
func (r *Routers) DestroyGallery(c echo.Context) error {
	const op = "http.routers.DestroyGallery"

	log := r.log.With(slog.String("op", op))

	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}

	if err := r.GalleryService.DestroyGallery(c.Request().Context(), caller(c), id); err != nil {
		return r.fail(c, log, err)
	}

	metrics.GalleryEvents.WithLabelValues("destroyed").Inc()

	return c.NoContent(http.StatusNoContent)
}

// Feed godoc
// @Summary Лента
// @Description Режим выбирается по порядку: username, затем privacity (followers, me, public).
// @Tags galleries
// @Produce json
// @Param username query string false "Лента пользователя"
// @Param privacity query string false "Режим" Enums(public, followers, me)
// @Param filter query string false "Подстрока слова"
// @Param hashtags query []string false "Хэштеги" collectionFormat(multi)
// @Param id query string false "UUID галереи" format(uuid)
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response{data=[]dto.GalleryView}
// @Failure 400 {object} response.ErrorResponse "Неизвестный режим"
// @Failure 401 {object} response.ErrorResponse "Режим требует авторизации"
// @Router /api/v1/galleries/feed [get]
func (r *Routers) Feed(c echo.Context) error {
	const op = "http.routers.Feed"

	log := r.log.With(slog.String("op", op))

	var params dto.FeedParams
	if ok, err := r.bind(c, log, &params); !ok {
		return err
	}

	if raw := c.QueryParam("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", ErrInvalidUUID.Error()))
		}
		params.ID = &id
	}

	views, err := r.GalleryService.Feed(c.Request().Context(), caller(c), params)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(views))
}

// Search godoc
// @Summary Поиск
// @Description Все слова и хэштеги текста должны присутствовать в заголовке.
// @Tags galleries
// @Produce json
// @Param text query string false "Текст поиска"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response{data=[]dto.GalleryView}
// @Router /api/v1/galleries/search [get]
func (r *Routers) Search(c echo.Context) error {
	const op = "http.routers.Search"

	log := r.log.With(slog.String("op", op))

	var q request.SearchQuery
	if ok, err := r.bind(c, log, &q); !ok {
		return err
	}

	views, err := r.GalleryService.Search(c.Request().Context(), caller(c), q.Text, q.Page, q.Limit)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(views))
}

// CommentGallery godoc
// @Summary Комментарии галереи
// @Description Старые первыми, по 10 на страницу.
// @Tags comments
// @Produce json
// @Param id path string true "UUID галереи" format(uuid)
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response{data=[]dto.CommentView}
// @Failure 404 {object} response.ErrorResponse "Галерея не найдена"
// @Router /api/v1/galleries/{id}/comments [get]
func (r *Routers) CommentGallery(c echo.Context) error {
	const op = "http.routers.CommentGallery"

	log := r.log.With(slog.String("op", op))

	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}

	var q request.PageQuery
	if ok, err := r.bind(c, log, &q); !ok {
		return err
	}

	views, err := r.GalleryService.CommentGallery(c.Request().Context(), id, q.Page, q.Limit)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(views))
}

// AddComment godoc
// @Summary Новый комментарий
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "UUID галереи" format(uuid)
// @Param request body request.AddCommentRequest true "Текст"
// @Success 201 {object} response.Response{data=dto.CommentView}
// @Failure 400 {object} response.ErrorResponse "Пустой текст"
// @Failure 404 {object} response.ErrorResponse "Галерея не найдена"
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id}/comments [post]
func (r *Routers) AddComment(c echo.Context) error {
	const op = "http.routers.AddComment"

	log := r.log.With(slog.String("op", op))

	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}

	var req request.AddCommentRequest
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	view, err := r.GalleryService.AddComment(c.Request().Context(), caller(c), id, req.Text)
	if err != nil {
		return r.fail(c, log, err)
	}

	metrics.GalleryEvents.WithLabelValues("commented").Inc()

	return c.JSON(http.StatusCreated, response.SuccessResponse(view))
}

// RemoveComment godoc
// @Summary Удаление комментария
// @Description Доступно автору комментария и владельцу галереи.
// @Tags comments
// @Param id path string true "UUID комментария" format(uuid)
// @Success 204
// @Failure 403 {object} response.ErrorResponse "Нет прав"
// @Failure 404 {object} response.ErrorResponse "Комментарий не найден"
// @Security ApiKeyAuth
// @Router /api/v1/comments/{id} [delete]
func (r *Routers) RemoveComment(c echo.Context) error {
	const op = "http.routers.RemoveComment"

	log := r.log.With(slog.String("op", op))

	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}

	if err := r.GalleryService.RemoveComment(c.Request().Context(), caller(c), id); err != nil {
		return r.fail(c, log, err)
	}

	metrics.GalleryEvents.WithLabelValues("uncommented").Inc()

	return c.NoContent(http.StatusNoContent)
}

// LikeGallery godoc
// @Summary Лайк
// @Description Переключает лайк текущего пользователя.
// @Tags likes
// @Produce json
// @Param id path string true "UUID галереи" format(uuid)
// @Success 200 {object} response.Response{data=dto.LikeResult}
// @Failure 401 {object} response.ErrorResponse "Требуется авторизация"
// @Failure 404 {object} response.ErrorResponse "Галерея не найдена"
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id}/like [post]
func (r *Routers) LikeGallery(c echo.Context) error {
	const op = "http.routers.LikeGallery"

	log := r.log.With(slog.String("op", op))

	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}

	result, err := r.GalleryService.LikeGallery(c.Request().Context(), caller(c), id)
	if err != nil {
		return r.fail(c, log, err)
	}

	event := "unliked"
	if result.Liked {
		event = "liked"
	}
	metrics.GalleryEvents.WithLabelValues(event).Inc()

	return c.JSON(http.StatusOK, response.SuccessResponse(result))
}

// IsGalleryLiked godoc
// @Summary Проверка лайка
// @Tags likes
// @Produce json
// @Param id path string true "UUID галереи" format(uuid)
// @Success 200 {object} response.Response{data=object{liked=bool}}
// @Security ApiKeyAuth
// @Router /api/v1/galleries/{id}/liked [get]
func (r *Routers) IsGalleryLiked(c echo.Context) error {
	const op = "http.routers.IsGalleryLiked"

	log := r.log.With(slog.String("op", op))

	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}

	liked, err := r.GalleryService.IsGalleryLiked(c.Request().Context(), caller(c), id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]bool{"liked": liked}))
}

// GetAlbum godoc
// @Summary Фотографии альбома
// @Tags albums
// @Produce json
// @Param id path string true "UUID альбома" format(uuid)
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response{data=[]dto.GalleryView}
// @Failure 404 {object} response.ErrorResponse "Альбом не найден"
// @Router /api/v1/albums/{id}/photos [get]
func (r *Routers) GetAlbum(c echo.Context) error {
	const op = "http.routers.GetAlbum"

	log := r.log.With(slog.String("op", op))

	id, ok, err := paramID(c, "id")
	if !ok {
		return err
	}

	var q request.PageQuery
	if ok, err := r.bind(c, log, &q); !ok {
		return err
	}

	views, err := r.GalleryService.GetAlbum(c.Request().Context(), id, q.Page, q.Limit)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(views))
}

// CreateAlbum godoc
// @Summary Новый альбом
// @Tags albums
// @Accept json
// @Produce json
// @Param request body request.CreateAlbumRequest true "Название"
// @Success 201 {object} response.Response{data=dto.AlbumView}
// @Security ApiKeyAuth
// @Router /api/v1/albums [post]
func (r *Routers) CreateAlbum(c echo.Context) error {
	const op = "http.routers.CreateAlbum"

	log := r.log.With(slog.String("op", op))

	var req request.CreateAlbumRequest
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	album, err := r.GalleryService.CreateAlbum(c.Request().Context(), caller(c), req.Title)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(album))
}

// Activities godoc
// @Summary Уведомления
// @Description Уведомления текущего пользователя, новые первыми.
// @Tags activities
// @Produce json
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response{data=[]dto.ActivityView}
// @Security ApiKeyAuth
// @Router /api/v1/activities [get]
func (r *Routers) Activities(c echo.Context) error {
	const op = "http.routers.Activities"

	log := r.log.With(slog.String("op", op))

	var q request.PageQuery
	if ok, err := r.bind(c, log, &q); !ok {
		return err
	}

	views, err := r.GalleryService.Activities(c.Request().Context(), caller(c), q.Page, q.Limit)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(views))
}
