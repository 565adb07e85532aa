// Package store holds the catalog: videos, categories, users and the like
// relation between users and videos.
package store

import (
	"context"
	"errors"
	"strings"

	"reelhouse/internal/models"
)

var (
	// ErrNotFound is returned when a lookup by id, slug or username matches nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidReference is returned when a video names a category that does not exist.
	ErrInvalidReference = errors.New("store: invalid reference")
	// ErrDuplicate is returned when a unique slug or username is taken.
	ErrDuplicate = errors.New("store: duplicate")
)

// Repository is the catalog contract shared by every backend.
// Implementations must be safe for concurrent use.
type Repository interface {
	ListVideos(ctx context.Context) ([]models.Video, error)
	ListVideosByCategory(ctx context.Context, categoryID int64) ([]models.Video, error)
	ListVideosByType(ctx context.Context, videoType string) ([]models.Video, error)
	FindVideo(ctx context.Context, id int64) (models.Video, error)
	SearchVideos(ctx context.Context, term string) ([]models.Video, error)
	CreateVideo(ctx context.Context, in models.VideoCreate) (models.Video, error)
	DeleteVideo(ctx context.Context, id int64) (bool, error)
	RecordView(ctx context.Context, id int64) (models.Video, error)
	SetLiked(ctx context.Context, username string, videoID int64, liked bool) (bool, error)
	LikedVideoIDs(ctx context.Context, username string) ([]int64, error)
	SetFeatured(ctx context.Context, id int64, featured bool) (models.Video, error)
	SetPopular(ctx context.Context, ids []int64) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategoryByID(ctx context.Context, id int64) (models.Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (models.Category, error)
	CreateCategory(ctx context.Context, in models.CategoryCreate) (models.Category, error)

	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, in models.UserCreate) (models.User, error)

	Close() error
}

// matches reports whether the lowercased needle occurs in the title,
// the description or any tag of v.
func matches(v *models.Video, needle string) bool {
	if strings.Contains(strings.ToLower(v.Title), needle) ||
		strings.Contains(strings.ToLower(v.Description), needle) {
		return true
	}
	for _, tag := range v.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func resolveType(in models.VideoCreate, fallback string) string {
	if in.Type != "" {
		return in.Type
	}
	if fallback != "" {
		return fallback
	}
	return models.DefaultVideoType
}

func durationOf(in models.VideoCreate) int {
	if in.Duration == nil {
		return 0
	}
	return *in.Duration
}

func flag(b *bool) bool {
	return b != nil && *b
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
