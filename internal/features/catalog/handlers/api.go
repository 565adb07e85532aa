package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"reelhouse/internal/auth"
	"reelhouse/internal/core"
	"reelhouse/internal/models"
)

// APIHandler serves the JSON catalog API
type APIHandler struct {
	logger  *core.Logger
	catalog CatalogInterface
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(logger *core.Logger, catalog CatalogInterface) *APIHandler {
	return &APIHandler{
		logger:  logger,
		catalog: catalog,
	}
}

// idParam parses a positive integer path parameter
func idParam(r *http.Request, name, label string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError("Invalid "+label+" ID", err).
			WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

// fail writes err, logging anything that is not a client error
func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !core.IsCode(err, core.ErrCodeValidation) && !core.IsCode(err, core.ErrCodeNotFound) {
		h.logger.WithContext(r.Context()).Error("Catalog request failed", "path", r.URL.Path, "error", err)
	}
	core.HandleError(w, err)
}

// ListVideos handles GET /api/videos
func (h *APIHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.catalog.ListVideos(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, videos)
}

// ListCategories handles GET /api/categories
func (h *APIHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, categories)
}

// CategoryVideos handles GET /api/categories/{id}/videos
func (h *APIHandler) CategoryVideos(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "category")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	videos, err := h.catalog.VideosByCategory(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, videos)
}

// CategorySlugVideos handles GET /api/categories/slug/{slug}/videos
func (h *APIHandler) CategorySlugVideos(w http.ResponseWriter, r *http.Request) {
	_, videos, err := h.catalog.VideosBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, videos)
}

// GetVideo handles GET /api/videos/{id}; every fetch counts as a view
func (h *APIHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "video")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	video, err := h.catalog.WatchVideo(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, video)
}

// RelatedVideos handles GET /api/videos/{id}/related
func (h *APIHandler) RelatedVideos(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "video")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.fail(w, r, core.NewValidationError("limit must be a positive integer", err).
				WithDetails(map[string]any{"field": "limit"}))
			return
		}
	}

	related, err := h.catalog.Related(r.Context(), id, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, related)
}

// Search handles GET /api/search?q=
func (h *APIHandler) Search(w http.ResponseWriter, r *http.Request) {
	videos, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, videos)
}

// CreateVideo handles POST /api/videos
func (h *APIHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var in models.VideoCreate
	if err := core.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	video, err := h.catalog.CreateVideo(r.Context(), in, auth.GetIdentity(r.Context()).Username)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusCreated, video)
}

// DeleteVideo handles DELETE /api/videos/{id}
func (h *APIHandler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "video")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.catalog.DeleteVideo(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetFeatured handles PUT /api/videos/{id}/featured
func (h *APIHandler) SetFeatured(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "video")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var update models.FeaturedUpdate
	if err := core.DecodeJSON(w, r, &update); err != nil {
		h.fail(w, r, err)
		return
	}

	video, err := h.catalog.SetFeatured(r.Context(), id, update)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, video)
}

// CreateCategory handles POST /api/categories
func (h *APIHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryCreate
	if err := core.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusCreated, category)
}

// LikeVideo handles POST /api/videos/{id}/like
func (h *APIHandler) LikeVideo(w http.ResponseWriter, r *http.Request) {
	h.setLiked(w, r, true)
}

// UnlikeVideo handles DELETE /api/videos/{id}/like
func (h *APIHandler) UnlikeVideo(w http.ResponseWriter, r *http.Request) {
	h.setLiked(w, r, false)
}

func (h *APIHandler) setLiked(w http.ResponseWriter, r *http.Request, liked bool) {
	id, err := idParam(r, "id", "video")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	video, err := h.catalog.SetLiked(r.Context(), auth.GetIdentity(r.Context()).Username, id, liked)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, video)
}

// MyLikes handles GET /api/me/likes
func (h *APIHandler) MyLikes(w http.ResponseWriter, r *http.Request) {
	ids, err := h.catalog.LikedVideoIDs(r.Context(), auth.GetIdentity(r.Context()).Username)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, ids)
}
