package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	appmiddleware "photogram/internal/middleware"
	httprouters "photogram/internal/transport/http"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	users   appmiddleware.UserProvider
	host    string
	port    string
	token   string
}

func New(log *slog.Logger, token string, host, port string, readTimeout, writeTimeout time.Duration, routers *httprouters.Routers, users appmiddleware.UserProvider) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = readTimeout
	e.Server.WriteTimeout = writeTimeout

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("16M"))
	e.Use(appmiddleware.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogMethod:   true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	mux := http.NewServeMux()
	err := statsviz.Register(mux)
	if err != nil {
		log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		users:   users,
		host:    host,
		port:    port,
		token:   token,
	}
}

// ServeFiles exposes a local upload directory under prefix.
func (s *Server) ServeFiles(prefix, dir string) {
	s.e.Static(prefix, dir)
}

// Handler exposes the echo instance for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) addr() string {
	return fmt.Sprintf("%s:%s", s.host, s.port)
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	identity := appmiddleware.Identity(s.log, s.users)
	required := []echo.MiddlewareFunc{appmiddleware.RequireToken(s.token), identity}
	optional := []echo.MiddlewareFunc{appmiddleware.OptionalToken(s.token), identity}

	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echoprometheus.NewHandler())

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := s.e.Group("/api/v1")
	{
		api.GET("/galleries/feed", s.routers.Feed, optional...)
		api.GET("/galleries/search", s.routers.Search, optional...)
		api.GET("/galleries/:id", s.routers.GetGallery, optional...)
		api.GET("/galleries/:id/comments", s.routers.CommentGallery, optional...)
		api.GET("/albums/:id/photos", s.routers.GetAlbum, optional...)

		api.POST("/galleries", s.routers.CreateGallery, required...)
		api.PUT("/galleries/:id", s.routers.UpdateGallery, required...)
		api.DELETE("/galleries/:id", s.routers.DestroyGallery, required...)
		api.POST("/galleries/:id/comments", s.routers.AddComment, required...)
		api.DELETE("/comments/:id", s.routers.RemoveComment, required...)
		api.POST("/galleries/:id/like", s.routers.LikeGallery, required...)
		api.GET("/galleries/:id/liked", s.routers.IsGalleryLiked, required...)
		api.POST("/albums", s.routers.CreateAlbum, required...)
		api.GET("/activities", s.routers.Activities, required...)
	}

	chat := api.Group("/chat", required...)
	{
		chat.POST("/channels", s.routers.CreateChannel)
		chat.GET("/channels", s.routers.GetChatChannel)
		chat.POST("/channels/:id/messages", s.routers.SendMessage)
		chat.GET("/channels/:id/messages", s.routers.Messages)
	}
}
