package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"reelhouse/internal/core"
	"reelhouse/internal/models"
	"reelhouse/internal/views"
)

// WebHandler serves the server-rendered pages
type WebHandler struct {
	logger  *core.Logger
	catalog CatalogInterface
}

// NewWebHandler creates a new web handler
func NewWebHandler(logger *core.Logger, catalog CatalogInterface) *WebHandler {
	return &WebHandler{
		logger:  logger,
		catalog: catalog,
	}
}

// Home renders the browse page: search results for ?q=, otherwise the
// videos of ?category= (trending by default)
func (h *WebHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := views.HomeData{Categories: categories}
	if query := strings.TrimSpace(r.URL.Query().Get("q")); query != "" {
		data.Query = query
		data.Heading = "Results for \"" + query + "\""
		data.Videos, err = h.catalog.Search(ctx, query)
	} else {
		slug := r.URL.Query().Get("category")
		if slug == "" {
			slug = models.TrendingSlug
		}
		var category models.Category
		category, data.Videos, err = h.catalog.VideosBySlug(ctx, slug)
		data.Active = category.Slug
		data.Heading = category.Name
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, views.HomePage(data))
}

// Watch renders the player page; it records a view like the API does
func (h *WebHandler) Watch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "id", "video")
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	video, err := h.catalog.WatchVideo(ctx, id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	related, err := h.catalog.RelatedTo(ctx, video, 0)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := views.WatchData{Categories: categories, Video: video, Related: related}
	for i := range categories {
		if categories[i].ID == video.CategoryID {
			data.Category = &categories[i]
			break
		}
	}

	h.render(w, r, http.StatusOK, views.WatchPage(data))
}

// render writes a component with status. Rendering goes through a buffer so
// a failed render can still produce a 500.
func (h *WebHandler) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	var buf strings.Builder
	if err := component.Render(r.Context(), &buf); err != nil {
		h.logger.WithContext(r.Context()).Error("Failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(buf.String()))
}

func (h *WebHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *core.AppError
	if !errors.As(err, &appErr) {
		appErr = core.NewInternalError("An unexpected error occurred", err)
	}
	status := core.GetHTTPStatusCode(appErr)
	if status >= http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).Error("Page request failed", "path", r.URL.Path, "error", err)
	}
	http.Error(w, appErr.Message, status)
}
