package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"reelhouse/internal/auth"
	"reelhouse/internal/core"
	"reelhouse/internal/models"
	"reelhouse/internal/recommend"
	"reelhouse/internal/store"
)

type testApp struct {
	repo    *store.Memory
	feature *Feature
	router  chi.Router
}

func testConfig() *Config {
	return &Config{
		Enabled:          true,
		DefaultVideoType: models.DefaultVideoType,
		PopularCount:     2,
		Recommend:        recommend.Config{CategoryWeight: 10, TagWeight: 5, Limit: 3},
		MaxRelated:       4,
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	logger := core.Discard()

	repo := store.NewMemory()
	authService := auth.NewService(repo, auth.NewPassword(bcrypt.MinCost), logger)
	identity := auth.NewMiddleware(authService, logger)
	seeder := NewSeeder(repo, authService, "jscreator", "admin123", logger)

	feature := NewFeature(logger, repo, identity, seeder, testConfig())
	if err := feature.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { feature.Shutdown(context.Background()) })

	if _, err := authService.CreateUser(ctx, "viewer", "secret1", false); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	registry := core.NewRegistry(logger)
	if err := registry.Register(feature); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	router := chi.NewRouter()
	router.Use(identity.Identify)
	registry.Mount(router)

	return &testApp{repo: repo, feature: feature, router: router}
}

func (a *testApp) do(t *testing.T, method, path, username, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if username != "" {
		req.Header.Set(auth.HeaderUsername, username)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestSeedIsIdempotent(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	if err := app.feature.seeder.Seed(ctx); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	categories, _ := app.repo.ListCategories(ctx)
	if len(categories) != len(demoCategories) {
		t.Errorf("expected %d categories, got %d", len(demoCategories), len(categories))
	}
	videos, _ := app.repo.ListVideos(ctx)
	if len(videos) != len(demoVideos) {
		t.Errorf("expected %d videos, got %d", len(demoVideos), len(videos))
	}

	admin, err := app.repo.FindUserByUsername(ctx, "jscreator")
	if err != nil || !admin.IsAdmin {
		t.Fatalf("expected seeded admin, got %+v (%v)", admin, err)
	}

	movies, _ := app.repo.FindCategoryBySlug(ctx, "movies")
	for _, v := range videos {
		if v.CategoryID != movies.ID {
			t.Errorf("video %q in category %d, want movies (%d)", v.Title, v.CategoryID, movies.ID)
		}
	}
}

func TestAPIStatusCodes(t *testing.T) {
	app := newTestApp(t)

	validBody := `{"title":"New","description":"d","thumbnailUrl":"https://example.com/t.jpg","videoUrl":"https://example.com/v.mp4","duration":60,"categoryId":2,"tags":["new"]}`

	tests := []struct {
		name     string
		method   string
		path     string
		username string
		body     string
		want     int
	}{
		{"list videos", "GET", "/api/videos", "", "", http.StatusOK},
		{"list categories", "GET", "/api/categories", "", "", http.StatusOK},
		{"empty search", "GET", "/api/search?q=", "", "", http.StatusBadRequest},
		{"blank search", "GET", "/api/search?q=%20%20", "", "", http.StatusBadRequest},
		{"non-numeric id", "GET", "/api/videos/abc", "", "", http.StatusBadRequest},
		{"unknown video", "GET", "/api/videos/999", "", "", http.StatusNotFound},
		{"unknown category", "GET", "/api/categories/99/videos", "", "", http.StatusNotFound},
		{"unknown slug", "GET", "/api/categories/slug/nope/videos", "", "", http.StatusNotFound},
		{"related bad limit", "GET", "/api/videos/1/related?limit=abc", "", "", http.StatusBadRequest},
		{"related unknown", "GET", "/api/videos/999/related", "", "", http.StatusNotFound},
		{"create anonymous", "POST", "/api/videos", "", validBody, http.StatusUnauthorized},
		{"create non-admin", "POST", "/api/videos", "viewer", validBody, http.StatusForbidden},
		{"create unknown user", "POST", "/api/videos", "ghost", validBody, http.StatusForbidden},
		{"create invalid", "POST", "/api/videos", "jscreator", `{"title":"x"}`, http.StatusBadRequest},
		{"create malformed", "POST", "/api/videos", "jscreator", `{`, http.StatusBadRequest},
		{"create missing category", "POST", "/api/videos", "jscreator", strings.Replace(validBody, `"categoryId":2`, `"categoryId":42`, 1), http.StatusNotFound},
		{"create", "POST", "/api/videos", "jscreator", validBody, http.StatusCreated},
		{"delete non-admin", "DELETE", "/api/videos/1", "viewer", "", http.StatusForbidden},
		{"delete unknown", "DELETE", "/api/videos/999", "jscreator", "", http.StatusNotFound},
		{"featured missing flag", "PUT", "/api/videos/1/featured", "jscreator", `{}`, http.StatusBadRequest},
		{"featured unknown", "PUT", "/api/videos/999/featured", "jscreator", `{"featured":true}`, http.StatusNotFound},
		{"category duplicate slug", "POST", "/api/categories", "jscreator", `{"name":"Movies 2","icon":"film","slug":"movies"}`, http.StatusBadRequest},
		{"category bad slug", "POST", "/api/categories", "jscreator", `{"name":"Bad","icon":"x","slug":"Not A Slug"}`, http.StatusBadRequest},
		{"category", "POST", "/api/categories", "jscreator", `{"name":"Anime","icon":"star","slug":"anime"}`, http.StatusCreated},
		{"like anonymous", "POST", "/api/videos/1/like", "", "", http.StatusUnauthorized},
		{"like unknown user", "POST", "/api/videos/1/like", "ghost", "", http.StatusNotFound},
		{"like unknown video", "POST", "/api/videos/999/like", "viewer", "", http.StatusNotFound},
		{"likes anonymous", "GET", "/api/me/likes", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := app.do(t, tt.method, tt.path, tt.username, tt.body)
			if rr.Code != tt.want {
				t.Errorf("%s %s: expected status %d, got %d (%s)", tt.method, tt.path, tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestErrorEnvelope(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(t, "GET", "/api/search?q=", "", "")
	resp := decode[core.ErrorResponse](t, rr)
	if resp.Success || resp.Error == nil {
		t.Fatalf("expected failure envelope, got %s", rr.Body.String())
	}
	if resp.Error.Code != core.ErrCodeValidation {
		t.Errorf("expected %s, got %s", core.ErrCodeValidation, resp.Error.Code)
	}
}

func TestCreateVideoResponse(t *testing.T) {
	app := newTestApp(t)

	body := `{"title":"Fresh Cut","description":"d","thumbnailUrl":"https://example.com/t.jpg","videoUrl":"https://example.com/v.mp4","duration":60,"categoryId":2}`
	rr := app.do(t, "POST", "/api/videos", "jscreator", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	video := decode[models.Video](t, rr)
	if video.ID != 6 {
		t.Errorf("expected id 6 after five seeded videos, got %d", video.ID)
	}
	if video.UploadedBy != "jscreator" {
		t.Errorf("expected uploader from identity, got %q", video.UploadedBy)
	}
	if video.Type != models.DefaultVideoType || video.Views != 0 || video.Likes != 0 {
		t.Errorf("unexpected defaults: %+v", video)
	}
	if video.Tags == nil || len(video.Tags) != 0 {
		t.Errorf("expected empty tags, got %#v", video.Tags)
	}
}

func TestCreateVideoUploaderIsCaller(t *testing.T) {
	app := newTestApp(t)

	body := `{"title":"Spoofed","description":"d","thumbnailUrl":"https://example.com/t.jpg","videoUrl":"https://example.com/v.mp4","duration":60,"categoryId":2,"uploadedBy":"mallory"}`
	rr := app.do(t, "POST", "/api/videos", "jscreator", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := decode[models.Video](t, rr).UploadedBy; got != "jscreator" {
		t.Errorf("expected uploader jscreator from the identity header, got %q", got)
	}
}

func TestCreateVideoRejectsBlankText(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"blank title", `{"title":"   ","description":"d","thumbnailUrl":"https://example.com/t.jpg","videoUrl":"https://example.com/v.mp4","duration":60,"categoryId":2}`},
		{"blank description", `{"title":"t","description":"\t\n ","thumbnailUrl":"https://example.com/t.jpg","videoUrl":"https://example.com/v.mp4","duration":60,"categoryId":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := app.do(t, "POST", "/api/videos", "jscreator", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestGetVideoRecordsView(t *testing.T) {
	app := newTestApp(t)

	for want := int64(1); want <= 3; want++ {
		rr := app.do(t, "GET", "/api/videos/3", "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if got := decode[models.Video](t, rr).Views; got != want {
			t.Errorf("expected %d views, got %d", want, got)
		}
	}
}

func TestDeleteVideo(t *testing.T) {
	app := newTestApp(t)

	if rr := app.do(t, "DELETE", "/api/videos/5", "jscreator", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr := app.do(t, "DELETE", "/api/videos/5", "jscreator", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rr.Code)
	}
	if rr := app.do(t, "GET", "/api/videos/5", "", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected deleted video to be gone, got %d", rr.Code)
	}
}

func TestLikeFlow(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(t, "POST", "/api/videos/1/like", "viewer", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if likes := decode[models.Video](t, rr).Likes; likes != 1 {
		t.Errorf("expected 1 like, got %d", likes)
	}

	// liking twice does not count twice
	rr = app.do(t, "POST", "/api/videos/1/like", "viewer", "")
	if likes := decode[models.Video](t, rr).Likes; likes != 1 {
		t.Errorf("expected repeated like to be idempotent, got %d", likes)
	}

	rr = app.do(t, "GET", "/api/me/likes", "viewer", "")
	ids := decode[[]int64](t, rr)
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("expected liked ids [1], got %v", ids)
	}

	rr = app.do(t, "DELETE", "/api/videos/1/like", "viewer", "")
	if likes := decode[models.Video](t, rr).Likes; likes != 0 {
		t.Errorf("expected 0 likes after unlike, got %d", likes)
	}
}

func TestFeaturedAndSlugRoutes(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(t, "PUT", "/api/videos/2/featured", "jscreator", `{"featured":true}`)
	if rr.Code != http.StatusOK || !decode[models.Video](t, rr).IsFeatured {
		t.Fatalf("expected featured video, got %d %s", rr.Code, rr.Body.String())
	}

	rr = app.do(t, "GET", "/api/categories/slug/trending/videos", "", "")
	if got := len(decode[[]models.Video](t, rr)); got != 5 {
		t.Errorf("expected trending to list all 5 videos, got %d", got)
	}

	rr = app.do(t, "GET", "/api/categories/slug/music/videos", "", "")
	if got := decode[[]models.Video](t, rr); len(got) != 0 {
		t.Errorf("expected no music videos, got %d", len(got))
	}

	rr = app.do(t, "GET", "/api/videos?type=movie", "", "")
	if got := len(decode[[]models.Video](t, rr)); got != 5 {
		t.Errorf("expected 5 movies, got %d", got)
	}
	rr = app.do(t, "GET", "/api/videos?type=series", "", "")
	if got := len(decode[[]models.Video](t, rr)); got != 0 {
		t.Errorf("expected no series, got %d", got)
	}
}

func TestSearchRoute(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(t, "GET", "/api/search?q=ROBOT", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	videos := decode[[]models.Video](t, rr)
	if len(videos) != 2 {
		t.Fatalf("expected 2 robot matches, got %d", len(videos))
	}
}

func TestRelatedRoute(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(t, "GET", "/api/videos/4/related", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	related := decode[[]recommend.Scored](t, rr)
	if len(related) != 3 {
		t.Fatalf("expected default limit 3, got %d", len(related))
	}
	// Moana 2 shares category and all three tags with The Wild Robot
	if related[0].Video.ID != 5 || related[0].Score != 25 {
		t.Errorf("expected video 5 scored 25 first, got %d scored %v", related[0].Video.ID, related[0].Score)
	}
	for _, r := range related {
		if r.Video.ID == 4 {
			t.Errorf("related list contains the video itself")
		}
	}

	rr = app.do(t, "GET", "/api/videos/4/related?limit=100", "", "")
	if got := len(decode[[]recommend.Scored](t, rr)); got != 4 {
		t.Errorf("expected limit capped at 4, got %d", got)
	}
}

func TestWebPages(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(t, "GET", "/", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"<h1", "Trending", "A Minecraft Movie", `href="/watch/1"`} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %q", ct)
	}

	rr = app.do(t, "GET", "/?q=panda", "", "")
	if body := rr.Body.String(); !strings.Contains(body, "Kung fu Panda 4") || strings.Contains(body, "Moana 2") {
		t.Errorf("search page did not filter results")
	}

	rr = app.do(t, "GET", "/?category=nope", "", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown category, got %d", rr.Code)
	}

	rr = app.do(t, "GET", "/watch/4", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "The Wild Robot") || !strings.Contains(body, "Up next") {
		t.Errorf("watch page missing title or related list")
	}
	if v, _ := app.repo.FindVideo(context.Background(), 4); v.Views != 1 {
		t.Errorf("expected watch page to record a view, got %d", v.Views)
	}

	if rr := app.do(t, "GET", "/watch/999", "", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
	if rr := app.do(t, "GET", "/watch/abc", "", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"missing type", func(c *Config) { c.DefaultVideoType = "" }, false},
		{"negative interval", func(c *Config) { c.PopularInterval = -1 }, false},
		{"sub-second interval", func(c *Config) { c.PopularInterval = 1 }, false},
		{"zero limit", func(c *Config) { c.Recommend.Limit = 0 }, false},
		{"max below limit", func(c *Config) { c.MaxRelated = 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
