package services

import (
	"context"
	"errors"
	"testing"

	"photogram/internal/domain/models"
	"photogram/internal/lib/logger/handlers/slogdiscard"
	"photogram/internal/repository"
	images "photogram/internal/services/image_service"
	"photogram/internal/storage"
	"photogram/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*GalleryService, *memDB, *fakeImages) {
	t.Helper()

	db := newMemDB()
	imgs := &fakeImages{}

	return NewGalleryService(slogdiscard.NewDiscardLogger(), db.repos(), imgs), db, imgs
}

func createGallery(t *testing.T, s *GalleryService, owner *models.User, in dto.CreateGalleryInput) *models.Gallery {
	t.Helper()

	if in.Image == "" {
		in.Image = "http://cdn.test/" + uuid.NewString() + ".png"
	}

	g, err := s.Create(context.Background(), owner, in)
	require.NoError(t, err)

	return g
}

func TestGalleryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("not authorized", func(t *testing.T) {
		s, _, imgs := newTestService(t)

		_, err := s.Create(ctx, nil, dto.CreateGalleryInput{Image: "http://cdn.test/a.png"})

		assert.ErrorIs(t, err, ErrNotAuthorized)
		assert.Zero(t, imgs.Calls())
	})

	t.Run("image required", func(t *testing.T) {
		s, db, imgs := newTestService(t)
		owner := db.addUser("alice")

		_, err := s.Create(ctx, owner, dto.CreateGalleryInput{Title: "Sunset"})

		assert.ErrorIs(t, err, ErrImageRequired)
		assert.Equal(t, "Upload the first image", ErrImageRequired.Error())
		assert.Zero(t, imgs.Calls())
	})

	t.Run("derives tokens variants and profile", func(t *testing.T) {
		s, db, imgs := newTestService(t)
		owner := db.addUser("alice")

		g := createGallery(t, s, owner, dto.CreateGalleryInput{
			Image: "http://cdn.test/sunset.png",
			Title: "Sunset #nofilter",
			Address: &models.Address{
				City: "Lisbon",
				Geo:  &models.GeoPoint{Latitude: 38.72, Longitude: -9.14},
			},
		})

		assert.Contains(t, g.Words, "sunset")
		assert.Equal(t, []string{"#nofilter"}, g.Hashtags)
		assert.Zero(t, g.LikesTotal)
		assert.Zero(t, g.CommentsTotal)
		assert.True(t, g.IsApproved)
		assert.Equal(t, owner.ID, g.UserID)

		assert.Equal(t, "http://cdn.test/sunset.png?w=640", g.Image)
		assert.Equal(t, "http://cdn.test/sunset.png?w=640&q=low", g.ImageLow)
		assert.Equal(t, "http://cdn.test/sunset.png?w=160", g.ImageThumb)
		assert.Equal(t, 1, imgs.Calls())

		require.NotNil(t, g.Location)
		assert.InDelta(t, 38.72, g.Location.Latitude, 1e-9)

		require.NotNil(t, g.Profile)
		assert.Equal(t, "alice", g.Profile.Username)

		stored, ok := db.gallery(g.ID)
		require.True(t, ok)
		assert.Equal(t, g.Words, stored.Words)

		assert.Equal(t, 1, db.profile(owner.ID).GalleriesTotal)
	})

	t.Run("resize failure aborts", func(t *testing.T) {
		db := newMemDB()
		imgs := new(MockImageHelper)
		s := NewGalleryService(slogdiscard.NewDiscardLogger(), db.repos(), imgs)
		owner := db.addUser("alice")

		imgs.On("Variants", mock.Anything, "http://cdn.test/broken.png").
			Return(images.Variants{}, images.ErrFetchFailed)

		_, err := s.Create(ctx, owner, dto.CreateGalleryInput{Image: "http://cdn.test/broken.png"})

		assert.ErrorIs(t, err, images.ErrFetchFailed)
		assert.Zero(t, db.profile(owner.ID).GalleriesTotal)
		imgs.AssertExpectations(t)
	})

	t.Run("album gains the photo and its cover", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("alice")

		album, err := s.CreateAlbum(ctx, owner, "Holidays")
		require.NoError(t, err)
		assert.Zero(t, album.QtyPhotos)

		g := createGallery(t, s, owner, dto.CreateGalleryInput{
			Image:   "http://cdn.test/beach.png",
			AlbumID: &album.ID,
		})

		require.NotNil(t, g.Album)
		assert.Equal(t, 1, g.Album.QtyPhotos)
		assert.Equal(t, g.Image, g.Album.Image)
		assert.Equal(t, g.ImageThumb, g.Album.ImageThumb)

		stored, err := db.repos().Albums.GetAlbumByID(ctx, album.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.QtyPhotos)
		assert.True(t, db.photos[album.ID][g.ID])
	})

	t.Run("unknown album", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("alice")
		missing := uuid.New()

		_, err := s.Create(ctx, owner, dto.CreateGalleryInput{Image: "http://cdn.test/a.png", AlbumID: &missing})

		assert.ErrorIs(t, err, storage.ErrAlbumNotFound)
	})
}

func TestGalleryService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("title alone keeps tokens", func(t *testing.T) {
		s, db, imgs := newTestService(t)
		owner := db.addUser("alice")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{Title: "Sunset #nofilter"})

		updated, err := s.Update(ctx, owner, g.ID, dto.UpdateGalleryInput{Title: "Mountains #hiking"})
		require.NoError(t, err)

		assert.Equal(t, "Mountains #hiking", updated.Title)
		assert.Equal(t, []string{"#nofilter"}, updated.Hashtags)
		assert.Equal(t, 1, imgs.Calls())
	})

	t.Run("moving to another album recounts both", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("alice")

		from, err := s.CreateAlbum(ctx, owner, "Summer")
		require.NoError(t, err)
		to, err := s.CreateAlbum(ctx, owner, "Winter")
		require.NoError(t, err)

		g := createGallery(t, s, owner, dto.CreateGalleryInput{AlbumID: &from.ID})
		createGallery(t, s, owner, dto.CreateGalleryInput{AlbumID: &from.ID})
		require.Equal(t, 2, db.album(from.ID).QtyPhotos)

		_, err = s.Update(ctx, owner, g.ID, dto.UpdateGalleryInput{AlbumID: &to.ID})
		require.NoError(t, err)

		assert.Equal(t, 1, db.album(from.ID).QtyPhotos)
		assert.False(t, db.inAlbum(from.ID, g.ID))
		assert.Equal(t, 1, db.album(to.ID).QtyPhotos)
		assert.True(t, db.inAlbum(to.ID, g.ID))
	})

	t.Run("same album is left alone", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("alice")

		album, err := s.CreateAlbum(ctx, owner, "Summer")
		require.NoError(t, err)
		g := createGallery(t, s, owner, dto.CreateGalleryInput{AlbumID: &album.ID})

		_, err = s.Update(ctx, owner, g.ID, dto.UpdateGalleryInput{AlbumID: &album.ID, Title: "again"})
		require.NoError(t, err)

		assert.Equal(t, 1, db.album(album.ID).QtyPhotos)
		assert.True(t, db.inAlbum(album.ID, g.ID))
	})

	t.Run("new image retokenizes without resizing", func(t *testing.T) {
		s, db, imgs := newTestService(t)
		owner := db.addUser("alice")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{Title: "Sunset"})
		thumb := g.ImageThumb

		updated, err := s.Update(ctx, owner, g.ID, dto.UpdateGalleryInput{
			Image: "http://cdn.test/new.png",
			Title: "Forest #green",
		})
		require.NoError(t, err)

		assert.Equal(t, "http://cdn.test/new.png", updated.Image)
		assert.Equal(t, thumb, updated.ImageThumb)
		assert.Equal(t, []string{"forest", "green"}, updated.Words)
		assert.Equal(t, []string{"#green"}, updated.Hashtags)
		assert.Equal(t, 1, imgs.Calls())
	})

	t.Run("empty fields are not cleared", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("alice")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{Title: "Sunset", Privacity: models.PrivacityFollowers})

		updated, err := s.Update(ctx, owner, g.ID, dto.UpdateGalleryInput{})
		require.NoError(t, err)

		assert.Equal(t, "Sunset", updated.Title)
		assert.Equal(t, models.PrivacityFollowers, updated.Privacity)
	})

	t.Run("only the owner", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("alice")
		other := db.addUser("bob")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{})

		_, err := s.Update(ctx, other, g.ID, dto.UpdateGalleryInput{Title: "mine"})
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = s.Update(ctx, nil, g.ID, dto.UpdateGalleryInput{Title: "mine"})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("missing gallery", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("alice")

		_, err := s.Update(ctx, owner, uuid.New(), dto.UpdateGalleryInput{Title: "x"})
		assert.ErrorIs(t, err, storage.ErrGalleryNotFound)
	})
}

func TestGalleryService_BeforeSave(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()

	t.Run("no owner at all", func(t *testing.T) {
		err := s.BeforeSave(ctx, nil, &models.Gallery{Image: "x"}, false, true)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("owner taken from the record", func(t *testing.T) {
		owner := db.addUser("carol")
		g := &models.Gallery{UserID: owner.ID, Image: "http://cdn.test/c.png", Title: "Hello"}

		require.NoError(t, s.BeforeSave(ctx, nil, g, false, true))

		assert.Equal(t, owner.ID, g.UserID)
		assert.Equal(t, []string{"hello"}, g.Words)
		require.NotNil(t, g.Profile)
	})

	t.Run("user without profile", func(t *testing.T) {
		g := &models.Gallery{Image: "http://cdn.test/d.png"}
		caller := &models.User{ID: uuid.New()}

		require.NoError(t, s.BeforeSave(ctx, caller, g, false, true))
		assert.Nil(t, g.Profile)
	})
}

func TestGalleryService_LikeGallery(t *testing.T) {
	ctx := context.Background()

	t.Run("toggle twice restores state", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("carol")
		fan := db.addUser("alice")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{})

		res, err := s.LikeGallery(ctx, fan, g.ID)
		require.NoError(t, err)
		assert.Equal(t, &dto.LikeResult{Liked: true, LikesTotal: 1}, res)

		liked, err := s.IsGalleryLiked(ctx, fan, g.ID)
		require.NoError(t, err)
		assert.True(t, liked)

		res, err = s.LikeGallery(ctx, fan, g.ID)
		require.NoError(t, err)
		assert.Equal(t, &dto.LikeResult{Liked: false, LikesTotal: 0}, res)

		liked, err = s.IsGalleryLiked(ctx, fan, g.ID)
		require.NoError(t, err)
		assert.False(t, liked)

		stored, _ := db.gallery(g.ID)
		assert.Zero(t, stored.LikesTotal)
		assert.Equal(t, 2, db.activityCount(g.ID))
	})

	t.Run("unlike notifies the owner, own likes do not", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("carol")
		fan := db.addUser("alice")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{})

		for i := 0; i < 2; i++ {
			_, err := s.LikeGallery(ctx, owner, g.ID)
			require.NoError(t, err)
		}
		assert.Zero(t, db.activityCount(g.ID))

		for i := 0; i < 2; i++ {
			_, err := s.LikeGallery(ctx, fan, g.ID)
			require.NoError(t, err)
		}

		views, err := s.Activities(ctx, owner, 1, 0)
		require.NoError(t, err)
		require.Len(t, views, 2)
		for _, v := range views {
			assert.Equal(t, models.ActionLiked, v.Action)
		}
	})

	t.Run("two fans and the owner", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("carol")
		a := db.addUser("alice")
		b := db.addUser("bob")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{})

		for _, u := range []*models.User{a, b, owner} {
			_, err := s.LikeGallery(ctx, u, g.ID)
			require.NoError(t, err)
		}

		stored, _ := db.gallery(g.ID)
		assert.Equal(t, 3, stored.LikesTotal)

		views, err := s.Activities(ctx, owner, 1, 0)
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, b.ID, views[0].FromUserID)
		assert.Equal(t, a.ID, views[1].FromUserID)
		for _, v := range views {
			assert.Equal(t, models.ActionLiked, v.Action)
		}

		mine, err := s.Activities(ctx, a, 1, 0)
		require.NoError(t, err)
		assert.Empty(t, mine)
	})

	t.Run("not authorized", func(t *testing.T) {
		s, _, _ := newTestService(t)

		_, err := s.LikeGallery(ctx, nil, uuid.New())
		assert.ErrorIs(t, err, ErrNotAuthorized)

		_, err = s.IsGalleryLiked(ctx, nil, uuid.New())
		assert.ErrorIs(t, err, ErrNotAuthorized)

		_, err = s.Activities(ctx, nil, 1, 10)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("store failure", func(t *testing.T) {
		db := newMemDB()
		likes := new(MockLikeRepository)
		repos := db.repos()
		repos.Likes = likes
		s := NewGalleryService(slogdiscard.NewDiscardLogger(), repos, &fakeImages{})

		owner := db.addUser("carol")
		fan := db.addUser("alice")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{})

		likes.On("IsLiked", mock.Anything, g.ID, fan.ID).Return(false, nil)
		likes.On("AddLike", mock.Anything, g.ID, fan.ID).Return(errors.New("connection reset"))

		_, err := s.LikeGallery(ctx, fan, g.ID)

		assert.Error(t, err)
		assert.Zero(t, db.activityCount(g.ID))
		likes.AssertNotCalled(t, "CountLikes", mock.Anything, mock.Anything)
		likes.AssertExpectations(t)
	})
}

func TestGalleryService_DestroyGallery(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades comments activities and counters", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("carol")
		a := db.addUser("alice")
		b := db.addUser("bob")

		album, err := s.CreateAlbum(ctx, owner, "Trip")
		require.NoError(t, err)

		keep := createGallery(t, s, owner, dto.CreateGalleryInput{AlbumID: &album.ID})
		g := createGallery(t, s, owner, dto.CreateGalleryInput{AlbumID: &album.ID})
		assert.Equal(t, 2, db.profile(owner.ID).GalleriesTotal)

		for _, text := range []string{"nice", "wow", "love it"} {
			_, err := s.AddComment(ctx, a, g.ID, text)
			require.NoError(t, err)
		}
		_, err = s.AddComment(ctx, b, keep.ID, "ok")
		require.NoError(t, err)

		for _, u := range []*models.User{a, b} {
			_, err := s.LikeGallery(ctx, u, g.ID)
			require.NoError(t, err)
		}

		assert.Equal(t, 4, db.profile(owner.ID).CommentsTotal)
		assert.Equal(t, 2, db.activityCount(g.ID))

		require.NoError(t, s.DestroyGallery(ctx, owner, g.ID))

		_, ok := db.gallery(g.ID)
		assert.False(t, ok)
		assert.Zero(t, db.commentCount(g.ID))
		assert.Zero(t, db.activityCount(g.ID))
		assert.Equal(t, 1, db.commentCount(keep.ID))

		profile := db.profile(owner.ID)
		assert.Equal(t, 1, profile.GalleriesTotal)
		assert.Equal(t, 1, profile.CommentsTotal)

		stored, err := db.repos().Albums.GetAlbumByID(ctx, album.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.QtyPhotos)
	})

	t.Run("only the owner", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("carol")
		other := db.addUser("alice")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{})

		assert.ErrorIs(t, s.DestroyGallery(ctx, other, g.ID), ErrForbidden)
		assert.ErrorIs(t, s.DestroyGallery(ctx, nil, g.ID), ErrNotAuthorized)

		_, ok := db.gallery(g.ID)
		assert.True(t, ok)
	})

	t.Run("missing gallery", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("carol")

		assert.ErrorIs(t, s.DestroyGallery(ctx, owner, uuid.New()), storage.ErrGalleryNotFound)
	})
}

func TestGalleryService_CreateAlbum(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	owner := db.addUser("carol")

	_, err := s.CreateAlbum(ctx, owner, "")
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = s.CreateAlbum(ctx, nil, "Trip")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	album, err := s.CreateAlbum(ctx, owner, "Trip")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, album.ID)
	assert.Equal(t, "Trip", album.Title)
}

func TestParseGallery(t *testing.T) {
	s, _, _ := newTestService(t)
	user := &models.User{ID: uuid.New(), Username: "alice", Name: "Alice"}

	t.Run("variants fall back to the image", func(t *testing.T) {
		view := s.ParseGallery(&models.Gallery{ID: uuid.New(), Image: "http://cdn.test/a.jpg"})

		assert.Equal(t, "http://cdn.test/a.jpg", view.ImageLow)
		assert.Equal(t, "http://cdn.test/a.jpg", view.ImageThumb)
		assert.NotNil(t, view.Comments)
		assert.Empty(t, view.Comments)
		assert.False(t, view.IsLiked)
		assert.Nil(t, view.User)
		assert.Nil(t, view.Album)
	})

	t.Run("owner and album", func(t *testing.T) {
		album := &models.GalleryAlbum{ID: uuid.New(), Title: "Trip", QtyPhotos: 2}
		view := s.ParseGallery(&models.Gallery{
			ID:         uuid.New(),
			User:       user,
			Album:      album,
			AlbumID:    &album.ID,
			Image:      "a",
			ImageLow:   "b",
			ImageThumb: "c",
			LikesTotal: 5,
		})

		require.NotNil(t, view.User)
		assert.Equal(t, "alice", view.User.Username)
		require.NotNil(t, view.Album)
		assert.Equal(t, 2, view.Album.QtyPhotos)
		assert.Equal(t, "b", view.ImageLow)
		assert.Equal(t, "c", view.ImageThumb)
		assert.Equal(t, 5, view.LikesTotal)
	})
}

func TestPageOf(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        repository.Page
	}{
		{name: "defaults", page: 0, limit: 0, want: repository.NewPage(1, defaultLimit)},
		{name: "second page", page: 2, limit: 10, want: repository.NewPage(2, 10)},
		{name: "capped", page: 1, limit: 1000, want: repository.NewPage(1, maxLimit)},
		{name: "negative", page: -3, limit: -1, want: repository.NewPage(1, defaultLimit)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageOf(tt.page, tt.limit, defaultLimit))
		})
	}
}

func TestAuthorsOf(t *testing.T) {
	self := uuid.New()
	a, b := uuid.New(), uuid.New()

	assert.Equal(t, []uuid.UUID{self}, authorsOf(nil, self))
	assert.Equal(t, []uuid.UUID{a, b, self}, authorsOf([]uuid.UUID{a, b, a}, self))
	assert.Equal(t, []uuid.UUID{a, self}, authorsOf([]uuid.UUID{a, self}, self))
}
