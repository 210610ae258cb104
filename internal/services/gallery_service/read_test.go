package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"photogram/internal/domain/models"
	"photogram/internal/lib/logger/handlers/slogdiscard"
	"photogram/internal/storage"
	"photogram/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type feedFixture struct {
	alice, bob, carol *models.User

	alicePublic, alicePrivate *models.Gallery
	bobPublic, bobFollowers   *models.Gallery
	carolPublic               *models.Gallery
}

// newFeedFixture: alice follows bob, nobody follows carol.
func newFeedFixture(t *testing.T, s *GalleryService, db *memDB) feedFixture {
	t.Helper()

	f := feedFixture{
		alice: db.addUser("alice"),
		bob:   db.addUser("bob"),
		carol: db.addUser("carol"),
	}
	db.follow(f.alice.ID, f.bob.ID)

	f.alicePublic = createGallery(t, s, f.alice, dto.CreateGalleryInput{Title: "Sunset at the #beach"})
	f.alicePrivate = createGallery(t, s, f.alice, dto.CreateGalleryInput{Title: "Diary", Privacity: models.PrivacityPrivate})
	f.bobPublic = createGallery(t, s, f.bob, dto.CreateGalleryInput{Title: "Sunset #city", Privacity: models.PrivacityPublic})
	f.bobFollowers = createGallery(t, s, f.bob, dto.CreateGalleryInput{Title: "Family", Privacity: models.PrivacityFollowers})
	f.carolPublic = createGallery(t, s, f.carol, dto.CreateGalleryInput{Title: "Beach day #Beach"})

	return f
}

func ids(views []dto.GalleryView) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestGalleryService_Feed(t *testing.T) {
	ctx := context.Background()
	s, db, _ := newTestService(t)
	f := newFeedFixture(t, s, db)

	tests := []struct {
		name   string
		caller *models.User
		params dto.FeedParams
		want   []uuid.UUID
	}{
		{
			name:   "public",
			params: dto.FeedParams{},
			want:   []uuid.UUID{f.carolPublic.ID, f.bobPublic.ID, f.alicePublic.ID},
		},
		{
			name:   "explicit public",
			caller: f.alice,
			params: dto.FeedParams{Privacity: FeedPublic},
			want:   []uuid.UUID{f.carolPublic.ID, f.bobPublic.ID, f.alicePublic.ID},
		},
		{
			name:   "followers",
			caller: f.alice,
			params: dto.FeedParams{Privacity: FeedFollowers},
			want:   []uuid.UUID{f.bobPublic.ID, f.alicePublic.ID},
		},
		{
			name:   "me includes private",
			caller: f.alice,
			params: dto.FeedParams{Privacity: FeedMe},
			want:   []uuid.UUID{f.alicePrivate.ID, f.alicePublic.ID},
		},
		{
			name:   "username wins over privacity",
			caller: f.alice,
			params: dto.FeedParams{Username: "bob", Privacity: FeedMe},
			want:   []uuid.UUID{f.bobPublic.ID},
		},
		{
			name:   "unknown username",
			params: dto.FeedParams{Username: "nobody"},
			want:   []uuid.UUID{},
		},
		{
			name:   "word filter",
			params: dto.FeedParams{Filter: "SUN"},
			want:   []uuid.UUID{f.bobPublic.ID, f.alicePublic.ID},
		},
		{
			name:   "filter with a leading hash matches hashtags",
			params: dto.FeedParams{Filter: "#Bea"},
			want:   []uuid.UUID{f.carolPublic.ID, f.alicePublic.ID},
		},
		{
			name:   "hash filter does not match plain words",
			params: dto.FeedParams{Filter: "#sunset"},
			want:   []uuid.UUID{},
		},
		{
			name:   "hashtag filter",
			params: dto.FeedParams{Hashtags: []string{"Beach"}},
			want:   []uuid.UUID{f.carolPublic.ID, f.alicePublic.ID},
		},
		{
			name:   "single gallery",
			params: dto.FeedParams{ID: &f.bobPublic.ID},
			want:   []uuid.UUID{f.bobPublic.ID},
		},
		{
			name:   "paged",
			params: dto.FeedParams{Page: 2, Limit: 2},
			want:   []uuid.UUID{f.alicePublic.ID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := s.Feed(ctx, tt.caller, tt.params)

			require.NoError(t, err)
			require.NotNil(t, views)
			assert.Equal(t, tt.want, ids(views))
		})
	}

	t.Run("auth required", func(t *testing.T) {
		_, err := s.Feed(ctx, nil, dto.FeedParams{Privacity: FeedFollowers})
		assert.ErrorIs(t, err, ErrNotAuthorized)

		_, err = s.Feed(ctx, nil, dto.FeedParams{Privacity: FeedMe})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := s.Feed(ctx, f.alice, dto.FeedParams{Privacity: "friends"})
		assert.ErrorIs(t, err, ErrUnknownFeedMode)
	})

	t.Run("liked flag and comment preview", func(t *testing.T) {
		_, err := s.LikeGallery(ctx, f.alice, f.carolPublic.ID)
		require.NoError(t, err)

		for i := 1; i <= 4; i++ {
			_, err := s.AddComment(ctx, f.bob, f.carolPublic.ID, fmt.Sprintf("comment %d", i))
			require.NoError(t, err)
		}

		views, err := s.Feed(ctx, f.alice, dto.FeedParams{ID: &f.carolPublic.ID})
		require.NoError(t, err)
		require.Len(t, views, 1)

		assert.True(t, views[0].IsLiked)
		assert.Equal(t, 1, views[0].LikesTotal)
		require.Len(t, views[0].Comments, 3)
		assert.Equal(t, "comment 4", views[0].Comments[0].Text)
		assert.Equal(t, "comment 2", views[0].Comments[2].Text)

		anon, err := s.Feed(ctx, nil, dto.FeedParams{ID: &f.carolPublic.ID})
		require.NoError(t, err)
		require.Len(t, anon, 1)
		assert.False(t, anon[0].IsLiked)
	})
}

func TestGalleryService_Feed_Empty(t *testing.T) {
	s, db, _ := newTestService(t)
	alice := db.addUser("alice")

	views, err := s.Feed(context.Background(), alice, dto.FeedParams{Privacity: FeedFollowers})

	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestGalleryService_Feed_PartialFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("comment preview failure keeps the row", func(t *testing.T) {
		db := newMemDB()
		repos := db.repos()
		repos.Comments = &failingComments{fakeComments: fakeComments{db}, err: errors.New("timeout")}
		s := NewGalleryService(slogdiscard.NewDiscardLogger(), repos, &fakeImages{})

		owner := db.addUser("carol")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{Title: "Lake"})

		views, err := s.Feed(ctx, owner, dto.FeedParams{})

		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, g.ID, views[0].ID)
		assert.Empty(t, views[0].Comments)
	})

	t.Run("like check failure fails the feed", func(t *testing.T) {
		db := newMemDB()
		likes := new(MockLikeRepository)
		repos := db.repos()
		repos.Likes = likes
		s := NewGalleryService(slogdiscard.NewDiscardLogger(), repos, &fakeImages{})

		owner := db.addUser("carol")
		createGallery(t, s, owner, dto.CreateGalleryInput{Title: "Lake"})

		likes.On("IsLiked", mock.Anything, mock.Anything, owner.ID).Return(false, errors.New("timeout"))

		views, err := s.Feed(ctx, owner, dto.FeedParams{})

		assert.Error(t, err)
		assert.Nil(t, views)
		likes.AssertExpectations(t)
	})
}

func TestGalleryService_Search(t *testing.T) {
	ctx := context.Background()
	s, db, _ := newTestService(t)
	f := newFeedFixture(t, s, db)

	t.Run("all tokens must match", func(t *testing.T) {
		views, err := s.Search(ctx, nil, "sunset #beach", 1, 0)

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{f.alicePublic.ID}, ids(views))
	})

	t.Run("privacy is not filtered", func(t *testing.T) {
		views, err := s.Search(ctx, nil, "diary", 1, 0)

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{f.alicePrivate.ID}, ids(views))
	})

	t.Run("empty text lists everything", func(t *testing.T) {
		views, err := s.Search(ctx, nil, "", 1, 0)

		require.NoError(t, err)
		assert.Len(t, views, 5)
	})

	t.Run("no match", func(t *testing.T) {
		views, err := s.Search(ctx, f.alice, "volcano", 1, 0)

		require.NoError(t, err)
		assert.NotNil(t, views)
		assert.Empty(t, views)
	})

	t.Run("overlays like and comments", func(t *testing.T) {
		_, err := s.LikeGallery(ctx, f.bob, f.carolPublic.ID)
		require.NoError(t, err)
		_, err = s.AddComment(ctx, f.alice, f.carolPublic.ID, "great shot")
		require.NoError(t, err)

		views, err := s.Search(ctx, f.bob, "beach day", 1, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)

		assert.True(t, views[0].IsLiked)
		require.Len(t, views[0].Comments, 1)
		assert.Equal(t, "great shot", views[0].Comments[0].Text)
		require.NotNil(t, views[0].Comments[0].User)
		assert.Equal(t, "alice", views[0].Comments[0].User.Username)
	})
}

func TestGalleryService_GetAlbum(t *testing.T) {
	ctx := context.Background()
	s, db, _ := newTestService(t)
	owner := db.addUser("carol")

	album, err := s.CreateAlbum(ctx, owner, "Trip")
	require.NoError(t, err)

	first := createGallery(t, s, owner, dto.CreateGalleryInput{AlbumID: &album.ID})
	createGallery(t, s, owner, dto.CreateGalleryInput{})
	second := createGallery(t, s, owner, dto.CreateGalleryInput{AlbumID: &album.ID})

	views, err := s.GetAlbum(ctx, album.ID, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID, first.ID}, ids(views))
	require.NotNil(t, views[0].Album)
	assert.Equal(t, 2, views[0].Album.QtyPhotos)
	assert.Equal(t, second.Image, views[0].Album.Image)

	_, err = s.GetAlbum(ctx, uuid.New(), 1, 0)
	assert.ErrorIs(t, err, storage.ErrAlbumNotFound)
}

func TestGalleryService_CommentGallery(t *testing.T) {
	ctx := context.Background()

	t.Run("no comments", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("carol")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{})

		views, err := s.CommentGallery(ctx, g.ID, 1, 0)

		require.NoError(t, err)
		assert.NotNil(t, views)
		assert.Empty(t, views)
	})

	t.Run("oldest first and paged", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("carol")
		fan := db.addUser("alice")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{})

		for i := 1; i <= 12; i++ {
			_, err := s.AddComment(ctx, fan, g.ID, fmt.Sprintf("c%d", i))
			require.NoError(t, err)
		}

		page1, err := s.CommentGallery(ctx, g.ID, 1, 0)
		require.NoError(t, err)
		require.Len(t, page1, defaultCommentLimit)
		assert.Equal(t, "c1", page1[0].Text)

		page2, err := s.CommentGallery(ctx, g.ID, 2, 0)
		require.NoError(t, err)
		require.Len(t, page2, 2)
		assert.Equal(t, "c12", page2[1].Text)
	})

	t.Run("backfills missing profiles", func(t *testing.T) {
		s, db, _ := newTestService(t)
		owner := db.addUser("carol")
		fan := db.addUser("alice")
		g := createGallery(t, s, owner, dto.CreateGalleryInput{})

		comment, err := s.AddComment(ctx, fan, g.ID, "hi")
		require.NoError(t, err)

		db.mu.Lock()
		stored := db.galleries[g.ID]
		stored.Profile = nil
		db.galleries[g.ID] = stored
		c := db.comments[comment.ID]
		c.Profile = nil
		db.comments[comment.ID] = c
		db.mu.Unlock()

		views, err := s.CommentGallery(ctx, g.ID, 1, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		require.NotNil(t, views[0].Profile)
		assert.Equal(t, "alice", views[0].Profile.Username)

		db.mu.Lock()
		defer db.mu.Unlock()
		require.NotNil(t, db.comments[comment.ID].Profile)
		assert.Equal(t, fan.ID, db.comments[comment.ID].Profile.UserID)
		require.NotNil(t, db.galleries[g.ID].Profile)
		assert.Equal(t, owner.ID, db.galleries[g.ID].Profile.UserID)
	})

	t.Run("missing gallery", func(t *testing.T) {
		s, _, _ := newTestService(t)

		_, err := s.CommentGallery(ctx, uuid.New(), 1, 0)
		assert.ErrorIs(t, err, storage.ErrGalleryNotFound)
	})
}

func TestGalleryService_Comments(t *testing.T) {
	ctx := context.Background()
	s, db, _ := newTestService(t)
	owner := db.addUser("carol")
	fan := db.addUser("alice")
	stranger := db.addUser("bob")
	g := createGallery(t, s, owner, dto.CreateGalleryInput{})

	_, err := s.AddComment(ctx, fan, g.ID, "   ")
	assert.ErrorIs(t, err, ErrTextRequired)

	_, err = s.AddComment(ctx, nil, g.ID, "hi")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	first, err := s.AddComment(ctx, fan, g.ID, "  first  ")
	require.NoError(t, err)
	assert.Equal(t, "first", first.Text)
	require.NotNil(t, first.Profile)
	assert.Equal(t, "alice", first.Profile.Username)

	second, err := s.AddComment(ctx, fan, g.ID, "second")
	require.NoError(t, err)

	stored, _ := db.gallery(g.ID)
	assert.Equal(t, 2, stored.CommentsTotal)
	assert.Equal(t, 2, db.profile(owner.ID).CommentsTotal)

	assert.ErrorIs(t, s.RemoveComment(ctx, stranger, first.ID), ErrForbidden)
	assert.ErrorIs(t, s.RemoveComment(ctx, nil, first.ID), ErrNotAuthorized)

	require.NoError(t, s.RemoveComment(ctx, fan, first.ID))
	require.NoError(t, s.RemoveComment(ctx, owner, second.ID))

	stored, _ = db.gallery(g.ID)
	assert.Zero(t, stored.CommentsTotal)
	assert.Zero(t, db.profile(owner.ID).CommentsTotal)

	assert.ErrorIs(t, s.RemoveComment(ctx, fan, first.ID), storage.ErrCommentNotFound)
}
