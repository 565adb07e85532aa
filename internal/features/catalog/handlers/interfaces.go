package handlers

import (
	"context"

	"reelhouse/internal/models"
	"reelhouse/internal/recommend"
)

// CatalogInterface is the catalog service as seen by the HTTP handlers.
// Errors are *core.AppError values.
type CatalogInterface interface {
	ListVideos(ctx context.Context, videoType string) ([]models.Video, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	VideosByCategory(ctx context.Context, categoryID int64) ([]models.Video, error)
	VideosBySlug(ctx context.Context, slug string) (models.Category, []models.Video, error)
	WatchVideo(ctx context.Context, id int64) (models.Video, error)
	Related(ctx context.Context, id int64, limit int) ([]recommend.Scored, error)
	RelatedTo(ctx context.Context, video models.Video, limit int) ([]recommend.Scored, error)
	Search(ctx context.Context, term string) ([]models.Video, error)
	CreateVideo(ctx context.Context, in models.VideoCreate, uploadedBy string) (models.Video, error)
	DeleteVideo(ctx context.Context, id int64) error
	SetFeatured(ctx context.Context, id int64, update models.FeaturedUpdate) (models.Video, error)
	CreateCategory(ctx context.Context, in models.CategoryCreate) (models.Category, error)
	SetLiked(ctx context.Context, username string, id int64, liked bool) (models.Video, error)
	LikedVideoIDs(ctx context.Context, username string) ([]int64, error)
}
