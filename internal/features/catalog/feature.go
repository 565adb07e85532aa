package catalog

import (
	"context"
	"fmt"
	"net/http"

	"reelhouse/internal/auth"
	"reelhouse/internal/core"
	"reelhouse/internal/features/catalog/handlers"
	"reelhouse/internal/features/catalog/services"
	"reelhouse/internal/recommend"
	"reelhouse/internal/store"
)

// Feature serves the video catalog: browsing, search, likes and related videos
type Feature struct {
	*core.BaseFeature
	config     *Config
	catalog    *services.CatalogService
	refresher  *services.PopularityRefresher
	seeder     *Seeder
	identity   *auth.Middleware
	apiHandler *handlers.APIHandler
	webHandler *handlers.WebHandler
}

// NewFeature creates the catalog feature over repo. seeder may be nil.
func NewFeature(logger *core.Logger, repo store.Repository, identity *auth.Middleware, seeder *Seeder, config *Config) *Feature {
	baseFeature := core.NewBaseFeature(
		"catalog",
		"Video catalog with search, likes and recommendations",
		config.Enabled,
		logger,
		config,
	)
	featureLogger := baseFeature.Logger()

	selector := recommend.NewSelector(config.Recommend)
	catalog := services.NewCatalogService(repo, selector, config.MaxRelated, featureLogger)

	return &Feature{
		BaseFeature: baseFeature,
		config:      config,
		catalog:     catalog,
		refresher:   services.NewPopularityRefresher(catalog, featureLogger, config.PopularInterval, config.PopularCount),
		seeder:      seeder,
		identity:    identity,
		apiHandler:  handlers.NewAPIHandler(featureLogger, catalog),
		webHandler:  handlers.NewWebHandler(featureLogger, catalog),
	}
}

// Init validates the configuration, seeds the store and starts the popularity refresher
func (f *Feature) Init(ctx context.Context) error {
	if err := f.BaseFeature.Init(ctx); err != nil {
		return err
	}

	if err := f.config.Validate(); err != nil {
		return fmt.Errorf("invalid catalog config: %w", err)
	}

	if f.seeder != nil {
		if err := f.seeder.Seed(ctx); err != nil {
			return err
		}
	}

	if err := f.refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start popularity refresher: %w", err)
	}

	f.Logger().Info("Catalog feature initialized")
	return nil
}

// Service returns the catalog service
func (f *Feature) Service() *services.CatalogService {
	return f.catalog
}

// Routes returns the HTTP routes for the catalog feature
func (f *Feature) Routes() []core.Route {
	api, web := f.apiHandler, f.webHandler
	admin := []func(http.Handler) http.Handler{f.identity.RequireAdmin}
	user := []func(http.Handler) http.Handler{f.identity.RequireUser}

	return []core.Route{
		// Web routes
		{Method: http.MethodGet, Path: "/", Handler: web.Home},
		{Method: http.MethodGet, Path: "/watch/{id}", Handler: web.Watch},

		// Public API
		{Method: http.MethodGet, Path: "/api/videos", Handler: api.ListVideos},
		{Method: http.MethodGet, Path: "/api/videos/{id}", Handler: api.GetVideo},
		{Method: http.MethodGet, Path: "/api/videos/{id}/related", Handler: api.RelatedVideos},
		{Method: http.MethodGet, Path: "/api/categories", Handler: api.ListCategories},
		{Method: http.MethodGet, Path: "/api/categories/{id}/videos", Handler: api.CategoryVideos},
		{Method: http.MethodGet, Path: "/api/categories/slug/{slug}/videos", Handler: api.CategorySlugVideos},
		{Method: http.MethodGet, Path: "/api/search", Handler: api.Search},

		// Admin API
		{Method: http.MethodPost, Path: "/api/videos", Handler: api.CreateVideo, Middleware: admin},
		{Method: http.MethodDelete, Path: "/api/videos/{id}", Handler: api.DeleteVideo, Middleware: admin},
		{Method: http.MethodPut, Path: "/api/videos/{id}/featured", Handler: api.SetFeatured, Middleware: admin},
		{Method: http.MethodPost, Path: "/api/categories", Handler: api.CreateCategory, Middleware: admin},

		// User API
		{Method: http.MethodPost, Path: "/api/videos/{id}/like", Handler: api.LikeVideo, Middleware: user},
		{Method: http.MethodDelete, Path: "/api/videos/{id}/like", Handler: api.UnlikeVideo, Middleware: user},
		{Method: http.MethodGet, Path: "/api/me/likes", Handler: api.MyLikes, Middleware: user},
	}
}

// Shutdown stops the popularity refresher
func (f *Feature) Shutdown(ctx context.Context) error {
	if err := f.refresher.Stop(ctx); err != nil {
		return err
	}
	return f.BaseFeature.Shutdown(ctx)
}
