package repository

import (
	"context"

	"photogram/internal/domain/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	GetUserById(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

type ProfileRepository interface {
	ProfileByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateGalleriesTotal(ctx context.Context, userID uuid.UUID, total int) error
	UpdateCommentsTotal(ctx context.Context, userID uuid.UUID, total int) error
}

type FollowRepository interface {
	FollowingIDs(ctx context.Context, fromUserID uuid.UUID) ([]uuid.UUID, error)
}

type GalleryRepository interface {
	CreateGallery(ctx context.Context, gallery *models.Gallery) (uuid.UUID, error)
	UpdateGallery(ctx context.Context, gallery *models.Gallery) error
	DeleteGallery(ctx context.Context, id uuid.UUID) error
	GetGalleryByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error)
	ListGalleries(ctx context.Context, q GalleryQuery) ([]models.Gallery, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	CountByAlbum(ctx context.Context, albumID uuid.UUID) (int, error)
	SetLikesTotal(ctx context.Context, id uuid.UUID, total int) error
	SetCommentsTotal(ctx context.Context, id uuid.UUID, total int) error
	SetProfile(ctx context.Context, id uuid.UUID, profile *models.Profile) error
}

// LikeRepository is the gallery <-> user "likes" membership.
type LikeRepository interface {
	AddLike(ctx context.Context, galleryID, userID uuid.UUID) error
	RemoveLike(ctx context.Context, galleryID, userID uuid.UUID) error
	IsLiked(ctx context.Context, galleryID, userID uuid.UUID) (bool, error)
	CountLikes(ctx context.Context, galleryID uuid.UUID) (int, error)
}

type AlbumRepository interface {
	CreateAlbum(ctx context.Context, album *models.GalleryAlbum) (uuid.UUID, error)
	GetAlbumByID(ctx context.Context, id uuid.UUID) (*models.GalleryAlbum, error)
	UpdateAlbum(ctx context.Context, album *models.GalleryAlbum) error
	AddPhoto(ctx context.Context, albumID, galleryID uuid.UUID) error
	RemovePhoto(ctx context.Context, albumID, galleryID uuid.UUID) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.GalleryComment) (uuid.UUID, error)
	GetCommentByID(ctx context.Context, id uuid.UUID) (*models.GalleryComment, error)
	ListComments(ctx context.Context, q CommentQuery) ([]models.GalleryComment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
	SetProfile(ctx context.Context, id uuid.UUID, profile *models.Profile) error
	CountByGallery(ctx context.Context, galleryID uuid.UUID) (int, error)
	CountByGalleryOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
}

type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity *models.GalleryActivity) (uuid.UUID, error)
	ListByGallery(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryActivity, error)
	ListByRecipient(ctx context.Context, userID uuid.UUID, page Page) ([]models.GalleryActivity, error)
	DeleteActivity(ctx context.Context, id uuid.UUID) error
}

type ChatRepository interface {
	CreateChannel(ctx context.Context, memberIDs []uuid.UUID) (*models.ChatChannel, error)
	ChannelsByMember(ctx context.Context, userID uuid.UUID) ([]models.ChatChannel, error)
	ChannelMembers(ctx context.Context, channelID uuid.UUID) ([]models.User, error)
	IsMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error)
	CreateMessage(ctx context.Context, message *models.ChatMessage) (uuid.UUID, error)
	LatestMessage(ctx context.Context, channelID uuid.UUID) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, channelID uuid.UUID, page Page) ([]models.ChatMessage, error)
}
