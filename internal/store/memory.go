package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"reelhouse/internal/models"
)

// Option configures a backend
type Option func(*options)

type options struct {
	now         func() time.Time
	defaultType string
}

// WithClock overrides the clock used for uploadedAt and likedAt
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithDefaultVideoType sets the type given to videos created without one
func WithDefaultVideoType(t string) Option {
	return func(o *options) { o.defaultType = t }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, defaultType: models.DefaultVideoType}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Memory is an in-process Repository. Reads return copies.
type Memory struct {
	mu   sync.RWMutex
	opts options

	videos     map[int64]*models.Video
	order      []int64
	categories map[int64]*models.Category
	catOrder   []int64
	users      map[int64]*models.User
	byUsername map[string]int64
	// likes[userID][videoID] = likedAt
	likes map[int64]map[int64]time.Time

	nextVideoID    int64
	nextCategoryID int64
	nextUserID     int64
}

// NewMemory returns an empty in-memory store
func NewMemory(opts ...Option) *Memory {
	m := &Memory{opts: buildOptions(opts)}
	m.reset()
	return m
}

// Reset drops all data and restarts id assignment
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *Memory) reset() {
	m.videos = make(map[int64]*models.Video)
	m.order = nil
	m.categories = make(map[int64]*models.Category)
	m.catOrder = nil
	m.users = make(map[int64]*models.User)
	m.byUsername = make(map[string]int64)
	m.likes = make(map[int64]map[int64]time.Time)
	m.nextVideoID, m.nextCategoryID, m.nextUserID = 1, 1, 1
}

// Close is a no-op for the memory store
func (m *Memory) Close() error { return nil }

func (m *Memory) collect(keep func(*models.Video) bool) []models.Video {
	out := make([]models.Video, 0, len(m.order))
	for _, id := range m.order {
		v := m.videos[id]
		if keep == nil || keep(v) {
			out = append(out, v.Clone())
		}
	}
	return out
}

func (m *Memory) ListVideos(ctx context.Context) ([]models.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(nil), nil
}

func (m *Memory) ListVideosByCategory(ctx context.Context, categoryID int64) ([]models.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(v *models.Video) bool { return v.CategoryID == categoryID }), nil
}

func (m *Memory) ListVideosByType(ctx context.Context, videoType string) ([]models.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(v *models.Video) bool { return v.Type == videoType }), nil
}

func (m *Memory) FindVideo(ctx context.Context, id int64) (models.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	return v.Clone(), nil
}

func (m *Memory) SearchVideos(ctx context.Context, term string) ([]models.Video, error) {
	needle := strings.ToLower(term)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(v *models.Video) bool { return matches(v, needle) }), nil
}

func (m *Memory) CreateVideo(ctx context.Context, in models.VideoCreate) (models.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[in.CategoryID]; !ok {
		return models.Video{}, ErrInvalidReference
	}

	v := &models.Video{
		ID:           m.nextVideoID,
		Title:        in.Title,
		Description:  in.Description,
		ThumbnailURL: in.ThumbnailURL,
		VideoURL:     in.VideoURL,
		Duration:     durationOf(in),
		UploadedAt:   m.opts.now().UTC(),
		CategoryID:   in.CategoryID,
		Tags:         copyTags(in.Tags),
		UploadedBy:   in.UploadedBy,
		IsPopular:    flag(in.IsPopular),
		IsFeatured:   flag(in.IsFeatured),
		Type:         resolveType(in, m.opts.defaultType),
	}
	m.nextVideoID++
	m.videos[v.ID] = v
	m.order = append(m.order, v.ID)
	return v.Clone(), nil
}

func (m *Memory) DeleteVideo(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.videos[id]; !ok {
		return false, nil
	}
	delete(m.videos, id)
	for i, vid := range m.order {
		if vid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	for _, liked := range m.likes {
		delete(liked, id)
	}
	return true, nil
}

func (m *Memory) RecordView(ctx context.Context, id int64) (models.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	v.Views++
	return v.Clone(), nil
}

func (m *Memory) SetLiked(ctx context.Context, username string, videoID int64, liked bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	userID, ok := m.byUsername[username]
	if !ok {
		return false, nil
	}
	v, ok := m.videos[videoID]
	if !ok {
		return false, nil
	}

	set := m.likes[userID]
	_, already := set[videoID]
	switch {
	case liked && !already:
		if set == nil {
			set = make(map[int64]time.Time)
			m.likes[userID] = set
		}
		set[videoID] = m.opts.now().UTC()
		v.Likes++
	case !liked && already:
		delete(set, videoID)
		if v.Likes > 0 {
			v.Likes--
		}
	}
	return true, nil
}

func (m *Memory) LikedVideoIDs(ctx context.Context, username string) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	userID, ok := m.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	set := m.likes[userID]
	ids := make([]int64, 0, len(set))
	for _, id := range m.order {
		if _, ok := set[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *Memory) SetFeatured(ctx context.Context, id int64, featured bool) (models.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	v.IsFeatured = featured
	return v.Clone(), nil
}

func (m *Memory) SetPopular(ctx context.Context, ids []int64) error {
	popular := make(map[int64]bool, len(ids))
	for _, id := range ids {
		popular[id] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, v := range m.videos {
		v.IsPopular = popular[id]
	}
	return nil
}

func (m *Memory) ListCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Category, 0, len(m.catOrder))
	for _, id := range m.catOrder {
		out = append(out, *m.categories[id])
	}
	return out, nil
}

func (m *Memory) FindCategoryByID(ctx context.Context, id int64) (models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	if !ok {
		return models.Category{}, ErrNotFound
	}
	return *c, nil
}

func (m *Memory) FindCategoryBySlug(ctx context.Context, slug string) (models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.catOrder {
		if c := m.categories[id]; c.Slug == slug {
			return *c, nil
		}
	}
	return models.Category{}, ErrNotFound
}

func (m *Memory) CreateCategory(ctx context.Context, in models.CategoryCreate) (models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Slug == in.Slug {
			return models.Category{}, ErrDuplicate
		}
	}
	c := &models.Category{ID: m.nextCategoryID, Name: in.Name, Icon: in.Icon, Slug: in.Slug}
	m.nextCategoryID++
	m.categories[c.ID] = c
	m.catOrder = append(m.catOrder, c.ID)
	return *c, nil
}

func (m *Memory) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byUsername[username]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return *m.users[id], nil
}

func (m *Memory) CreateUser(ctx context.Context, in models.UserCreate) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[in.Username]; ok {
		return models.User{}, ErrDuplicate
	}
	u := &models.User{ID: m.nextUserID, Username: in.Username, PasswordHash: in.PasswordHash, IsAdmin: in.IsAdmin}
	m.nextUserID++
	m.users[u.ID] = u
	m.byUsername[u.Username] = u.ID
	return *u, nil
}

var _ Repository = (*Memory)(nil)
