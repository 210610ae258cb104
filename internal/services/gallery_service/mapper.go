package services

import (
	"photogram/internal/domain/models"
	"photogram/internal/transport/http/dto"
)

// ParseGallery maps a gallery to its public shape. IsLiked is always false
// here; readers that know the caller overlay it.
func (s *GalleryService) ParseGallery(g *models.Gallery) dto.GalleryView {
	view := dto.GalleryView{
		ID:            g.ID,
		Title:         g.Title,
		Address:       g.Address,
		Album:         s.ParseAlbum(g.Album),
		AlbumID:       g.AlbumID,
		LikesTotal:    g.LikesTotal,
		CommentsTotal: g.CommentsTotal,
		Image:         g.Image,
		ImageLow:      orImage(g.ImageLow, g.Image),
		ImageThumb:    orImage(g.ImageThumb, g.Image),
		Privacity:     g.Privacity,
		IsLiked:       false,
		Comments:      []dto.CommentView{},
		CreatedAt:     g.CreatedAt,
	}

	if g.User != nil {
		view.User = dto.NewUserView(g.User)
	}

	return view
}

func orImage(variant, image string) string {
	if variant == "" {
		return image
	}
	return variant
}

func (s *GalleryService) ParseAlbum(a *models.GalleryAlbum) *dto.AlbumView {
	if a == nil {
		return nil
	}

	return &dto.AlbumView{
		ID:         a.ID,
		Title:      a.Title,
		Image:      a.Image,
		ImageThumb: a.ImageThumb,
		QtyPhotos:  a.QtyPhotos,
		CreatedAt:  a.CreatedAt,
	}
}

// ParseComment is the comment formatter.
func ParseComment(c models.GalleryComment) dto.CommentView {
	return dto.CommentView{
		ID:        c.ID,
		GalleryID: c.GalleryID,
		Text:      c.Text,
		User:      dto.NewUserView(c.User),
		Profile:   c.Profile,
		CreatedAt: c.CreatedAt,
	}
}

func parseComments(comments []models.GalleryComment) []dto.CommentView {
	views := make([]dto.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, ParseComment(c))
	}
	return views
}

func parseActivity(a models.GalleryActivity) dto.ActivityView {
	return dto.ActivityView{
		ID:         a.ID,
		GalleryID:  a.GalleryID,
		FromUserID: a.FromUserID,
		Action:     a.Action,
		CreatedAt:  a.CreatedAt,
	}
}
