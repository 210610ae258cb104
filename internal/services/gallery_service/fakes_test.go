package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"photogram/internal/domain/models"
	"photogram/internal/repository"
	images "photogram/internal/services/image_service"
	"photogram/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memDB is an in-memory stand-in for the postgres repositories.
type memDB struct {
	mu sync.Mutex

	clock      time.Time
	users      map[uuid.UUID]models.User
	profiles   map[uuid.UUID]models.Profile
	follows    map[uuid.UUID][]uuid.UUID
	galleries  map[uuid.UUID]models.Gallery
	likes      map[uuid.UUID]map[uuid.UUID]bool
	albums     map[uuid.UUID]models.GalleryAlbum
	photos     map[uuid.UUID]map[uuid.UUID]bool
	comments   map[uuid.UUID]models.GalleryComment
	activities map[uuid.UUID]models.GalleryActivity
}

func newMemDB() *memDB {
	return &memDB{
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:      map[uuid.UUID]models.User{},
		profiles:   map[uuid.UUID]models.Profile{},
		follows:    map[uuid.UUID][]uuid.UUID{},
		galleries:  map[uuid.UUID]models.Gallery{},
		likes:      map[uuid.UUID]map[uuid.UUID]bool{},
		albums:     map[uuid.UUID]models.GalleryAlbum{},
		photos:     map[uuid.UUID]map[uuid.UUID]bool{},
		comments:   map[uuid.UUID]models.GalleryComment{},
		activities: map[uuid.UUID]models.GalleryActivity{},
	}
}

// tick must be called with mu held.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *memDB) addUser(username string) *models.User {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := models.User{ID: uuid.New(), Username: username, Name: strings.ToUpper(username), CreatedAt: db.tick()}
	db.users[u.ID] = u
	db.profiles[u.ID] = models.Profile{UserID: u.ID, Username: u.Username, Name: u.Name}

	return &u
}

func (db *memDB) follow(from, to uuid.UUID) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.follows[from] = append(db.follows[from], to)
}

func (db *memDB) profile(userID uuid.UUID) models.Profile {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.profiles[userID]
}

func (db *memDB) album(id uuid.UUID) models.GalleryAlbum {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.albums[id]
}

func (db *memDB) inAlbum(albumID, galleryID uuid.UUID) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.photos[albumID][galleryID]
}

func (db *memDB) gallery(id uuid.UUID) (models.Gallery, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, ok := db.galleries[id]
	return g, ok
}

func (db *memDB) commentCount(galleryID uuid.UUID) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := 0
	for _, c := range db.comments {
		if c.GalleryID == galleryID {
			n++
		}
	}
	return n
}

func (db *memDB) activityCount(galleryID uuid.UUID) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := 0
	for _, a := range db.activities {
		if a.GalleryID == galleryID {
			n++
		}
	}
	return n
}

func (db *memDB) repos() Repositories {
	return Repositories{
		Galleries:  &fakeGalleries{db},
		Likes:      &fakeLikes{db},
		Albums:     &fakeAlbums{db},
		Comments:   &fakeComments{db},
		Activities: &fakeActivities{db},
		Users:      &fakeUsers{db},
		Profiles:   &fakeProfiles{db},
		Follows:    &fakeFollows{db},
	}
}

func window[T any](rows []T, page repository.Page) []T {
	if page.Offset >= uint64(len(rows)) {
		return []T{}
	}
	rows = rows[page.Offset:]
	if page.Limit > 0 && page.Limit < uint64(len(rows)) {
		rows = rows[:page.Limit]
	}
	return rows
}

type fakeGalleries struct{ db *memDB }

func (r *fakeGalleries) CreateGallery(_ context.Context, g *models.Gallery) (uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	g.ID = uuid.New()
	g.CreatedAt = r.db.tick()
	g.UpdatedAt = g.CreatedAt
	stored := *g
	stored.User = nil
	stored.Album = nil
	r.db.galleries[g.ID] = stored

	return g.ID, nil
}

func (r *fakeGalleries) UpdateGallery(_ context.Context, g *models.Gallery) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.galleries[g.ID]; !ok {
		return storage.ErrGalleryNotFound
	}
	stored := *g
	stored.User = nil
	stored.Album = nil
	r.db.galleries[g.ID] = stored

	return nil
}

func (r *fakeGalleries) DeleteGallery(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.galleries[id]; !ok {
		return storage.ErrGalleryNotFound
	}
	delete(r.db.galleries, id)
	delete(r.db.likes, id)
	for _, set := range r.db.photos {
		delete(set, id)
	}

	return nil
}

// include must be called with mu held.
func (r *fakeGalleries) include(g models.Gallery) models.Gallery {
	if u, ok := r.db.users[g.UserID]; ok {
		g.User = &u
	}
	if g.AlbumID != nil {
		if a, ok := r.db.albums[*g.AlbumID]; ok {
			g.Album = &a
		}
	}
	return g
}

func (r *fakeGalleries) GetGalleryByID(_ context.Context, id uuid.UUID) (*models.Gallery, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	g, ok := r.db.galleries[id]
	if !ok {
		return nil, storage.ErrGalleryNotFound
	}
	g = r.include(g)

	return &g, nil
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fakeGalleries) ListGalleries(_ context.Context, q repository.GalleryQuery) ([]models.Gallery, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rows := make([]models.Gallery, 0)
	for _, g := range r.db.galleries {
		if q.ID != nil && g.ID != *q.ID {
			continue
		}
		if q.AlbumID != nil && (g.AlbumID == nil || *g.AlbumID != *q.AlbumID) {
			continue
		}
		if q.UserIDs != nil {
			match := false
			for _, id := range q.UserIDs {
				if id == g.UserID {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		if q.PublicOnly && !g.IsPublic() {
			continue
		}
		if q.ApprovedOnly && !g.IsApproved {
			continue
		}
		if !containsAll(g.Words, q.AllWords) || !containsAll(g.Hashtags, q.AllHashtags) {
			continue
		}
		if q.WordLike != "" && !anyContains(g.Words, q.WordLike) {
			continue
		}
		if q.HashtagLike != "" && !anyContains(g.Hashtags, q.HashtagLike) {
			continue
		}
		rows = append(rows, r.include(g))
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })

	return window(rows, q.Page), nil
}

func (r *fakeGalleries) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := 0
	for _, g := range r.db.galleries {
		if g.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeGalleries) CountByAlbum(_ context.Context, albumID uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := 0
	for _, g := range r.db.galleries {
		if g.AlbumID != nil && *g.AlbumID == albumID {
			n++
		}
	}
	return n, nil
}

func (r *fakeGalleries) update(id uuid.UUID, fn func(g *models.Gallery)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	g, ok := r.db.galleries[id]
	if !ok {
		return storage.ErrGalleryNotFound
	}
	fn(&g)
	r.db.galleries[id] = g

	return nil
}

func (r *fakeGalleries) SetLikesTotal(_ context.Context, id uuid.UUID, total int) error {
	return r.update(id, func(g *models.Gallery) { g.LikesTotal = total })
}

func (r *fakeGalleries) SetCommentsTotal(_ context.Context, id uuid.UUID, total int) error {
	return r.update(id, func(g *models.Gallery) { g.CommentsTotal = total })
}

func (r *fakeGalleries) SetProfile(_ context.Context, id uuid.UUID, profile *models.Profile) error {
	return r.update(id, func(g *models.Gallery) { g.Profile = profile })
}

type fakeLikes struct{ db *memDB }

func (r *fakeLikes) AddLike(_ context.Context, galleryID, userID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.likes[galleryID] == nil {
		r.db.likes[galleryID] = map[uuid.UUID]bool{}
	}
	r.db.likes[galleryID][userID] = true

	return nil
}

func (r *fakeLikes) RemoveLike(_ context.Context, galleryID, userID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.likes[galleryID], userID)

	return nil
}

func (r *fakeLikes) IsLiked(_ context.Context, galleryID, userID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.likes[galleryID][userID], nil
}

func (r *fakeLikes) CountLikes(_ context.Context, galleryID uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return len(r.db.likes[galleryID]), nil
}

type fakeAlbums struct{ db *memDB }

func (r *fakeAlbums) CreateAlbum(_ context.Context, a *models.GalleryAlbum) (uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	a.ID = uuid.New()
	a.CreatedAt = r.db.tick()
	r.db.albums[a.ID] = *a

	return a.ID, nil
}

func (r *fakeAlbums) GetAlbumByID(_ context.Context, id uuid.UUID) (*models.GalleryAlbum, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	a, ok := r.db.albums[id]
	if !ok {
		return nil, storage.ErrAlbumNotFound
	}
	return &a, nil
}

func (r *fakeAlbums) UpdateAlbum(_ context.Context, a *models.GalleryAlbum) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.albums[a.ID]; !ok {
		return storage.ErrAlbumNotFound
	}
	r.db.albums[a.ID] = *a

	return nil
}

func (r *fakeAlbums) AddPhoto(_ context.Context, albumID, galleryID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.photos[albumID] == nil {
		r.db.photos[albumID] = map[uuid.UUID]bool{}
	}
	r.db.photos[albumID][galleryID] = true

	return nil
}

func (r *fakeAlbums) RemovePhoto(_ context.Context, albumID, galleryID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.photos[albumID], galleryID)

	return nil
}

type fakeComments struct{ db *memDB }

func (r *fakeComments) CreateComment(_ context.Context, c *models.GalleryComment) (uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c.ID = uuid.New()
	c.CreatedAt = r.db.tick()
	stored := *c
	stored.User = nil
	r.db.comments[c.ID] = stored

	return c.ID, nil
}

func (r *fakeComments) GetCommentByID(_ context.Context, id uuid.UUID) (*models.GalleryComment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.comments[id]
	if !ok {
		return nil, storage.ErrCommentNotFound
	}
	return &c, nil
}

func (r *fakeComments) ListComments(_ context.Context, q repository.CommentQuery) ([]models.GalleryComment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rows := make([]models.GalleryComment, 0)
	for _, c := range r.db.comments {
		if c.GalleryID != q.GalleryID {
			continue
		}
		if u, ok := r.db.users[c.UserID]; ok {
			c.User = &u
		}
		rows = append(rows, c)
	}

	sort.Slice(rows, func(i, j int) bool {
		if q.NewestFirst {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})

	return window(rows, q.Page), nil
}

func (r *fakeComments) DeleteComment(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.comments[id]; !ok {
		return storage.ErrCommentNotFound
	}
	delete(r.db.comments, id)

	return nil
}

func (r *fakeComments) SetProfile(_ context.Context, id uuid.UUID, profile *models.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.comments[id]
	if !ok {
		return storage.ErrCommentNotFound
	}
	c.Profile = profile
	r.db.comments[id] = c

	return nil
}

func (r *fakeComments) CountByGallery(_ context.Context, galleryID uuid.UUID) (int, error) {
	return r.db.commentCount(galleryID), nil
}

func (r *fakeComments) CountByGalleryOwner(_ context.Context, ownerID uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := 0
	for _, c := range r.db.comments {
		if g, ok := r.db.galleries[c.GalleryID]; ok && g.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

type fakeActivities struct{ db *memDB }

func (r *fakeActivities) CreateActivity(_ context.Context, a *models.GalleryActivity) (uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	a.ID = uuid.New()
	a.CreatedAt = r.db.tick()
	r.db.activities[a.ID] = *a

	return a.ID, nil
}

func (r *fakeActivities) ListByGallery(_ context.Context, galleryID uuid.UUID) ([]models.GalleryActivity, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rows := make([]models.GalleryActivity, 0)
	for _, a := range r.db.activities {
		if a.GalleryID == galleryID {
			rows = append(rows, a)
		}
	}
	return rows, nil
}

func (r *fakeActivities) ListByRecipient(_ context.Context, userID uuid.UUID, page repository.Page) ([]models.GalleryActivity, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rows := make([]models.GalleryActivity, 0)
	for _, a := range r.db.activities {
		if a.ToUserID == userID {
			rows = append(rows, a)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })

	return window(rows, page), nil
}

func (r *fakeActivities) DeleteActivity(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.activities[id]; !ok {
		return storage.ErrActivityNotFound
	}
	delete(r.db.activities, id)

	return nil
}

type fakeUsers struct{ db *memDB }

func (r *fakeUsers) GetUserById(_ context.Context, id uuid.UUID) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUsers) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, storage.ErrUserNotFound
}

type fakeProfiles struct{ db *memDB }

func (r *fakeProfiles) ProfileByUser(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.profiles[userID]
	if !ok {
		return nil, storage.ErrProfileNotFound
	}
	return &p, nil
}

func (r *fakeProfiles) UpdateGalleriesTotal(_ context.Context, userID uuid.UUID, total int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.profiles[userID]
	if !ok {
		return storage.ErrProfileNotFound
	}
	p.GalleriesTotal = total
	r.db.profiles[userID] = p

	return nil
}

func (r *fakeProfiles) UpdateCommentsTotal(_ context.Context, userID uuid.UUID, total int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.profiles[userID]
	if !ok {
		return storage.ErrProfileNotFound
	}
	p.CommentsTotal = total
	r.db.profiles[userID] = p

	return nil
}

type fakeFollows struct{ db *memDB }

func (r *fakeFollows) FollowingIDs(_ context.Context, fromUserID uuid.UUID) ([]uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return append([]uuid.UUID(nil), r.db.follows[fromUserID]...), nil
}

// fakeImages derives predictable variant URLs from the source.
type fakeImages struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeImages) Variants(_ context.Context, src string) (images.Variants, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	return images.Variants{
		Image:      src + "?w=640",
		ImageLow:   src + "?w=640&q=low",
		ImageThumb: src + "?w=160",
	}, nil
}

func (f *fakeImages) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

type MockImageHelper struct {
	mock.Mock
}

func (m *MockImageHelper) Variants(ctx context.Context, src string) (images.Variants, error) {
	args := m.Called(ctx, src)
	return args.Get(0).(images.Variants), args.Error(1)
}

type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) AddLike(ctx context.Context, galleryID, userID uuid.UUID) error {
	return m.Called(ctx, galleryID, userID).Error(0)
}

func (m *MockLikeRepository) RemoveLike(ctx context.Context, galleryID, userID uuid.UUID) error {
	return m.Called(ctx, galleryID, userID).Error(0)
}

func (m *MockLikeRepository) IsLiked(ctx context.Context, galleryID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, galleryID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) CountLikes(ctx context.Context, galleryID uuid.UUID) (int, error) {
	args := m.Called(ctx, galleryID)
	return args.Int(0), args.Error(1)
}

// failingComments breaks the comment listing only.
type failingComments struct {
	fakeComments
	err error
}

func (r *failingComments) ListComments(context.Context, repository.CommentQuery) ([]models.GalleryComment, error) {
	return nil, r.err
}

func anyContains(tokens []string, part string) bool {
	for _, t := range tokens {
		if strings.Contains(t, part) {
			return true
		}
	}
	return false
}
