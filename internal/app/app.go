package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpapp "photogram/internal/app/http"
	"photogram/internal/config"
	"photogram/internal/lib/logger/sl"
	"photogram/internal/repository"
	chats "photogram/internal/services/chat_service"
	galleries "photogram/internal/services/gallery_service"
	images "photogram/internal/services/image_service"
	filestorage "photogram/internal/storage/filestorage"
	"photogram/internal/storage/postgresql"
	redisapp "photogram/internal/storage/redis"
	httprouters "photogram/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server

	log     *slog.Logger
	storage *postgresql.Storage
	redis   *redisapp.Client
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := storage.Migrate(ctx); err != nil {
		storage.Stop()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	repo := repository.NewRepository(storage.Pool())

	a := &App{log: log, storage: storage}

	profiles := repository.NewCachedProfileRepo(log, repo.Profile, a.profileCache(ctx, cfg.Redis), cfg.Redis.ProfileTTL)

	files, err := newFileStorage(ctx, cfg)
	if err != nil {
		a.Stop()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	imageService := images.NewImageService(log, files, &http.Client{Timeout: 30 * time.Second}, images.Options{
		CoverWidth: cfg.Images.CoverWidth,
		LowWidth:   cfg.Images.LowWidth,
		ThumbWidth: cfg.Images.ThumbWidth,
		Quality:    cfg.Images.Quality,
		LowQuality: cfg.Images.LowQuality,
		MaxBytes:   cfg.FileStorage.MaxSize,
	})

	galleryService := galleries.NewGalleryService(log, galleries.Repositories{
		Galleries:  repo.Gallery,
		Likes:      repo.Like,
		Albums:     repo.Album,
		Comments:   repo.Comment,
		Activities: repo.Activity,
		Users:      repo.User,
		Profiles:   profiles,
		Follows:    repo.Follow,
	}, imageService)

	chatService := chats.NewChatService(log, repo.Chat, repo.User, profiles)

	routers := httprouters.NewRouter(log, galleryService, chatService)

	a.HTTPServer = httpapp.New(
		log,
		cfg.Auth.Secret,
		cfg.HTTP.Host,
		cfg.HTTP.Port,
		cfg.HTTP.ReadTimeout,
		cfg.HTTP.WriteTimeout,
		routers,
		repo.User,
	)

	if local, ok := files.(*filestorage.LocalFileStorage); ok {
		a.HTTPServer.ServeFiles("/uploads", local.GetBaseDir())
	}

	return a, nil
}

// profileCache prefers redis and falls back to an in-process cache when
// redis is not configured or not reachable.
func (a *App) profileCache(ctx context.Context, cfg config.RedisConf) repository.ProfileCache {
	if cfg.RedisAddr != "" {
		client := redisapp.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		err := client.HealthCheck(pingCtx)
		if err == nil {
			a.redis = client
			return repository.NewRedisProfileCache(client)
		}

		a.log.Warn("redis unavailable, using memory profile cache",
			slog.String("addr", cfg.RedisAddr),
			sl.Err(err),
		)
		client.Close()
	}

	return repository.NewMemoryProfileCache(cfg.ProfileTTL, 2*cfg.ProfileTTL)
}

func newFileStorage(ctx context.Context, cfg *config.Config) (filestorage.FileStorage, error) {
	switch cfg.FileStorage.Type {
	case "minio":
		return filestorage.NewMinioFileStorage(ctx, filestorage.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
			BaseURL:   cfg.Minio.BaseURL,
			MaxSize:   cfg.FileStorage.MaxSize,
		})
	case "local", "":
		return filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL, cfg.FileStorage.MaxSize)
	default:
		return nil, fmt.Errorf("unknown file storage type %q", cfg.FileStorage.Type)
	}
}

func (a *App) Stop() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.storage.Stop()
}
