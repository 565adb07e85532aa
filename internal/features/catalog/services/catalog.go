package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"reelhouse/internal/core"
	"reelhouse/internal/metrics"
	"reelhouse/internal/models"
	"reelhouse/internal/recommend"
	"reelhouse/internal/store"
)

// CatalogService applies request rules on top of a store and maps store errors to AppErrors
type CatalogService struct {
	repo       store.Repository
	selector   *recommend.Selector
	maxRelated int
	logger     *core.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo store.Repository, selector *recommend.Selector, maxRelated int, logger *core.Logger) *CatalogService {
	if maxRelated < selector.Config().Limit {
		maxRelated = selector.Config().Limit
	}
	return &CatalogService{
		repo:       repo,
		selector:   selector,
		maxRelated: maxRelated,
		logger:     logger,
	}
}

// storeError converts a store error into an AppError
func storeError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return core.NewNotFoundError(notFound, err)
	default:
		return core.NewDatabaseError("Catalog storage failed", err)
	}
}

// ListVideos returns every video, or only those of videoType when it is set
func (s *CatalogService) ListVideos(ctx context.Context, videoType string) ([]models.Video, error) {
	var (
		videos []models.Video
		err    error
	)
	if videoType != "" {
		videos, err = s.repo.ListVideosByType(ctx, videoType)
	} else {
		videos, err = s.repo.ListVideos(ctx)
	}
	if err != nil {
		return nil, storeError(err, "")
	}
	return videos, nil
}

// ListCategories returns all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, storeError(err, "")
	}
	return categories, nil
}

// VideosByCategory returns the videos of a category; the category must exist
func (s *CatalogService) VideosByCategory(ctx context.Context, categoryID int64) ([]models.Video, error) {
	if _, err := s.repo.FindCategoryByID(ctx, categoryID); err != nil {
		return nil, storeError(err, "Category not found")
	}
	videos, err := s.repo.ListVideosByCategory(ctx, categoryID)
	if err != nil {
		return nil, storeError(err, "")
	}
	return videos, nil
}

// VideosBySlug returns the category named by slug and its videos.
// The trending slug returns every video.
func (s *CatalogService) VideosBySlug(ctx context.Context, slug string) (models.Category, []models.Video, error) {
	category, err := s.repo.FindCategoryBySlug(ctx, slug)
	switch {
	case errors.Is(err, store.ErrNotFound) && slug == models.TrendingSlug:
		category = models.Category{Name: "Trending", Icon: "fire", Slug: models.TrendingSlug}
	case err != nil:
		return models.Category{}, nil, storeError(err, "Category not found")
	}

	var videos []models.Video
	if slug == models.TrendingSlug {
		videos, err = s.repo.ListVideos(ctx)
	} else {
		videos, err = s.repo.ListVideosByCategory(ctx, category.ID)
	}
	if err != nil {
		return models.Category{}, nil, storeError(err, "")
	}
	return category, videos, nil
}

// GetVideo returns a video without recording a view
func (s *CatalogService) GetVideo(ctx context.Context, id int64) (models.Video, error) {
	video, err := s.repo.FindVideo(ctx, id)
	if err != nil {
		return models.Video{}, storeError(err, "Video not found")
	}
	return video, nil
}

// WatchVideo records a view and returns the updated video
func (s *CatalogService) WatchVideo(ctx context.Context, id int64) (models.Video, error) {
	video, err := s.repo.RecordView(ctx, id)
	if err != nil {
		return models.Video{}, storeError(err, "Video not found")
	}
	metrics.RecordView()
	return video, nil
}

// Related ranks the catalog against the video id. limit <= 0 uses the
// configured default and larger values are capped.
func (s *CatalogService) Related(ctx context.Context, id int64, limit int) ([]recommend.Scored, error) {
	video, err := s.repo.FindVideo(ctx, id)
	if err != nil {
		return nil, storeError(err, "Video not found")
	}
	return s.RelatedTo(ctx, video, limit)
}

// RelatedTo ranks the catalog against video, which need not be stored
func (s *CatalogService) RelatedTo(ctx context.Context, video models.Video, limit int) ([]recommend.Scored, error) {
	all, err := s.repo.ListVideos(ctx)
	if err != nil {
		return nil, storeError(err, "")
	}

	if limit > s.maxRelated {
		limit = s.maxRelated
	}

	start := time.Now()
	ranked := s.selector.Rank(video, all, limit)
	metrics.RecordRecommendation(time.Since(start), len(ranked))
	return ranked, nil
}

// Search matches term against titles, descriptions and tags.
// A blank term is a validation error.
func (s *CatalogService) Search(ctx context.Context, term string) ([]models.Video, error) {
	if strings.TrimSpace(term) == "" {
		return nil, core.NewValidationError("Search query is required", nil).
			WithDetails(map[string]any{"field": "q"})
	}

	videos, err := s.repo.SearchVideos(ctx, term)
	if err != nil {
		return nil, storeError(err, "")
	}
	metrics.RecordSearch(len(videos))
	return videos, nil
}

// CreateVideo validates in and stores it. The uploader is always uploadedBy,
// the caller's identity; any uploader in the payload is ignored.
func (s *CatalogService) CreateVideo(ctx context.Context, in models.VideoCreate, uploadedBy string) (models.Video, error) {
	if err := core.ValidateStruct(&in); err != nil {
		return models.Video{}, err
	}
	in.UploadedBy = uploadedBy

	video, err := s.repo.CreateVideo(ctx, in)
	if errors.Is(err, store.ErrInvalidReference) {
		return models.Video{}, core.NewNotFoundError("Category not found", err).
			WithDetails(map[string]any{"categoryId": in.CategoryID})
	}
	if err != nil {
		return models.Video{}, storeError(err, "")
	}

	metrics.RecordMutation("create_video")
	s.logger.WithContext(ctx).Info("Created video", "video_id", video.ID, "title", video.Title, "uploaded_by", video.UploadedBy)
	return video, nil
}

// DeleteVideo removes a video
func (s *CatalogService) DeleteVideo(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeleteVideo(ctx, id)
	if err != nil {
		return storeError(err, "")
	}
	if !deleted {
		return core.NewNotFoundError("Video not found", nil)
	}

	metrics.RecordMutation("delete_video")
	s.logger.WithContext(ctx).Info("Deleted video", "video_id", id)
	return nil
}

// SetFeatured changes the featured flag of a video
func (s *CatalogService) SetFeatured(ctx context.Context, id int64, update models.FeaturedUpdate) (models.Video, error) {
	if err := core.ValidateStruct(&update); err != nil {
		return models.Video{}, err
	}
	video, err := s.repo.SetFeatured(ctx, id, *update.Featured)
	if err != nil {
		return models.Video{}, storeError(err, "Video not found")
	}
	metrics.RecordMutation("set_featured")
	return video, nil
}

// CreateCategory validates in and stores it; slugs are unique
func (s *CatalogService) CreateCategory(ctx context.Context, in models.CategoryCreate) (models.Category, error) {
	if err := core.ValidateStruct(&in); err != nil {
		return models.Category{}, err
	}

	category, err := s.repo.CreateCategory(ctx, in)
	if errors.Is(err, store.ErrDuplicate) {
		return models.Category{}, core.NewValidationError("Category slug already exists", err).
			WithDetails(map[string]any{"field": "slug", "slug": in.Slug})
	}
	if err != nil {
		return models.Category{}, storeError(err, "")
	}

	metrics.RecordMutation("create_category")
	return category, nil
}

// SetLiked likes or unlikes a video for username and returns the updated video
func (s *CatalogService) SetLiked(ctx context.Context, username string, id int64, liked bool) (models.Video, error) {
	ok, err := s.repo.SetLiked(ctx, username, id, liked)
	if err != nil {
		return models.Video{}, storeError(err, "")
	}
	if !ok {
		return models.Video{}, core.NewNotFoundError("User or video not found", nil)
	}
	metrics.RecordLike(liked)

	video, err := s.repo.FindVideo(ctx, id)
	if err != nil {
		return models.Video{}, storeError(err, "Video not found")
	}
	return video, nil
}

// LikedVideoIDs returns the ids of the videos username likes
func (s *CatalogService) LikedVideoIDs(ctx context.Context, username string) ([]int64, error) {
	ids, err := s.repo.LikedVideoIDs(ctx, username)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return ids, nil
}

// RefreshPopular marks the count most-viewed videos popular and returns their ids
func (s *CatalogService) RefreshPopular(ctx context.Context, count int) ([]int64, error) {
	all, err := s.repo.ListVideos(ctx)
	if err != nil {
		return nil, storeError(err, "")
	}
	ids := recommend.TopViewed(all, count)
	if err := s.repo.SetPopular(ctx, ids); err != nil {
		return nil, storeError(err, "")
	}
	return ids, nil
}
