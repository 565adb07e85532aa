package services

import (
	"context"
	"testing"
	"time"

	"reelhouse/internal/core"
	"reelhouse/internal/models"
	"reelhouse/internal/recommend"
	"reelhouse/internal/store"
)

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func validVideo(categoryID int64, title string, tags ...string) models.VideoCreate {
	return models.VideoCreate{
		Title:        title,
		Description:  title + " description",
		ThumbnailURL: "https://example.com/thumb.jpg",
		VideoURL:     "https://example.com/video.mp4",
		Duration:     intPtr(120),
		CategoryID:   categoryID,
		Tags:         tags,
	}
}

type fixture struct {
	repo    *store.Memory
	catalog *CatalogService
	movies  models.Category
	music   models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := store.NewMemory()
	svc := NewCatalogService(repo, recommend.NewSelector(recommend.Config{CategoryWeight: 10, TagWeight: 5, Limit: 2}), 3, core.Discard())

	movies, err := svc.CreateCategory(ctx, models.CategoryCreate{Name: "Movies", Icon: "film", Slug: "movies"})
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	music, err := svc.CreateCategory(ctx, models.CategoryCreate{Name: "Music", Icon: "music", Slug: "music"})
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if _, err := repo.CreateUser(ctx, models.UserCreate{Username: "viewer", PasswordHash: []byte("x")}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return &fixture{repo: repo, catalog: svc, movies: movies, music: music}
}

func (f *fixture) video(t *testing.T, in models.VideoCreate) models.Video {
	t.Helper()
	v, err := f.catalog.CreateVideo(context.Background(), in, "jscreator")
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}
	return v
}

func TestSearchRejectsBlankTerm(t *testing.T) {
	f := newFixture(t)
	for _, term := range []string{"", "   ", "\t"} {
		_, err := f.catalog.Search(context.Background(), term)
		if !core.IsCode(err, core.ErrCodeValidation) {
			t.Errorf("Search(%q): expected validation error, got %v", term, err)
		}
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	v := f.video(t, validVideo(f.movies.ID, "Noodle House", "Ramen"))

	for _, term := range []string{"ramen", "RAMEN", "Ramen"} {
		got, err := f.catalog.Search(context.Background(), term)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", term, err)
		}
		if len(got) != 1 || got[0].ID != v.ID {
			t.Errorf("Search(%q): expected [%d], got %v", term, v.ID, got)
		}
	}
}

func TestCreateVideoValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := []struct {
		name string
		edit func(*models.VideoCreate)
	}{
		{"missing title", func(in *models.VideoCreate) { in.Title = "" }},
		{"missing description", func(in *models.VideoCreate) { in.Description = "" }},
		{"malformed thumbnail", func(in *models.VideoCreate) { in.ThumbnailURL = "not a url" }},
		{"malformed video url", func(in *models.VideoCreate) { in.VideoURL = "/relative.mp4" }},
		{"missing duration", func(in *models.VideoCreate) { in.Duration = nil }},
		{"negative duration", func(in *models.VideoCreate) { in.Duration = intPtr(-1) }},
		{"missing category", func(in *models.VideoCreate) { in.CategoryID = 0 }},
		{"empty tag", func(in *models.VideoCreate) { in.Tags = []string{"ok", ""} }},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			in := validVideo(f.movies.ID, "Valid")
			tt.edit(&in)
			_, err := f.catalog.CreateVideo(ctx, in, "jscreator")
			if !core.IsCode(err, core.ErrCodeValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}

	_, err := f.catalog.CreateVideo(ctx, validVideo(99, "Orphan"), "jscreator")
	if !core.IsCode(err, core.ErrCodeNotFound) {
		t.Errorf("Expected not found for unknown category, got %v", err)
	}

	zero := validVideo(f.movies.ID, "Zero length")
	zero.Duration = intPtr(0)
	zero.UploadedBy = "mallory"
	v, err := f.catalog.CreateVideo(ctx, zero, "jscreator")
	if err != nil {
		t.Fatalf("Expected zero duration to be accepted, got %v", err)
	}
	if v.UploadedBy != "jscreator" {
		t.Errorf("Expected uploader to be the caller, got %q", v.UploadedBy)
	}
}

func TestVideosBySlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.video(t, validVideo(f.movies.ID, "A"))
	b := f.video(t, validVideo(f.music.ID, "B"))

	category, videos, err := f.catalog.VideosBySlug(ctx, "music")
	if err != nil {
		t.Fatalf("VideosBySlug failed: %v", err)
	}
	if category.ID != f.music.ID || len(videos) != 1 || videos[0].ID != b.ID {
		t.Errorf("Unexpected music result %+v %v", category, videos)
	}

	category, videos, err = f.catalog.VideosBySlug(ctx, models.TrendingSlug)
	if err != nil {
		t.Fatalf("VideosBySlug(trending) failed: %v", err)
	}
	if category.Slug != models.TrendingSlug || len(videos) != 2 || videos[0].ID != a.ID {
		t.Errorf("Expected trending to list everything, got %v", videos)
	}

	if _, _, err := f.catalog.VideosBySlug(ctx, "nope"); !core.IsCode(err, core.ErrCodeNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, err := f.catalog.VideosByCategory(ctx, 42); !core.IsCode(err, core.ErrCodeNotFound) {
		t.Errorf("Expected not found for unknown category id, got %v", err)
	}
}

func TestWatchAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.video(t, validVideo(f.movies.ID, "Watched"))

	for i := int64(1); i <= 3; i++ {
		got, err := f.catalog.WatchVideo(ctx, v.ID)
		if err != nil {
			t.Fatalf("WatchVideo failed: %v", err)
		}
		if got.Views != i {
			t.Errorf("Expected %d views, got %d", i, got.Views)
		}
	}

	if err := f.catalog.DeleteVideo(ctx, v.ID); err != nil {
		t.Fatalf("DeleteVideo failed: %v", err)
	}
	if err := f.catalog.DeleteVideo(ctx, v.ID); !core.IsCode(err, core.ErrCodeNotFound) {
		t.Errorf("Expected not found on second delete, got %v", err)
	}
	if _, err := f.catalog.WatchVideo(ctx, v.ID); !core.IsCode(err, core.ErrCodeNotFound) {
		t.Errorf("Expected not found for deleted video, got %v", err)
	}
}

func TestSetLiked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.video(t, validVideo(f.movies.ID, "Likeable"))

	got, err := f.catalog.SetLiked(ctx, "viewer", v.ID, true)
	if err != nil || got.Likes != 1 {
		t.Fatalf("Expected 1 like, got %d, %v", got.Likes, err)
	}
	got, err = f.catalog.SetLiked(ctx, "viewer", v.ID, true)
	if err != nil || got.Likes != 1 {
		t.Errorf("Expected repeated like to keep 1, got %d, %v", got.Likes, err)
	}
	ids, err := f.catalog.LikedVideoIDs(ctx, "viewer")
	if err != nil || len(ids) != 1 || ids[0] != v.ID {
		t.Errorf("Expected liked ids [%d], got %v, %v", v.ID, ids, err)
	}
	got, err = f.catalog.SetLiked(ctx, "viewer", v.ID, false)
	if err != nil || got.Likes != 0 {
		t.Errorf("Expected likes back to 0, got %d, %v", got.Likes, err)
	}

	if _, err := f.catalog.SetLiked(ctx, "ghost", v.ID, true); !core.IsCode(err, core.ErrCodeNotFound) {
		t.Errorf("Expected not found for unknown user, got %v", err)
	}
	if _, err := f.catalog.SetLiked(ctx, "viewer", 999, true); !core.IsCode(err, core.ErrCodeNotFound) {
		t.Errorf("Expected not found for unknown video, got %v", err)
	}
	if _, err := f.catalog.LikedVideoIDs(ctx, "ghost"); !core.IsCode(err, core.ErrCodeNotFound) {
		t.Errorf("Expected not found for unknown user likes, got %v", err)
	}
}

func TestSetFeatured(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.video(t, validVideo(f.movies.ID, "Star"))

	got, err := f.catalog.SetFeatured(ctx, v.ID, models.FeaturedUpdate{Featured: boolPtr(true)})
	if err != nil || !got.IsFeatured {
		t.Fatalf("Expected featured video, got %+v, %v", got, err)
	}
	if _, err := f.catalog.SetFeatured(ctx, v.ID, models.FeaturedUpdate{}); !core.IsCode(err, core.ErrCodeValidation) {
		t.Errorf("Expected validation error for missing flag, got %v", err)
	}
	if _, err := f.catalog.SetFeatured(ctx, 999, models.FeaturedUpdate{Featured: boolPtr(true)}); !core.IsCode(err, core.ErrCodeNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestCreateCategoryRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.catalog.CreateCategory(ctx, models.CategoryCreate{Name: "Films", Icon: "film", Slug: "movies"}); !core.IsCode(err, core.ErrCodeValidation) {
		t.Errorf("Expected duplicate slug to be a validation error, got %v", err)
	}
	if _, err := f.catalog.CreateCategory(ctx, models.CategoryCreate{Name: "Bad", Icon: "x", Slug: "Not A Slug"}); !core.IsCode(err, core.ErrCodeValidation) {
		t.Errorf("Expected malformed slug to be a validation error, got %v", err)
	}
}

func TestRelated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ref := f.video(t, validVideo(f.movies.ID, "Ref", "animated"))
	sibling := f.video(t, validVideo(f.movies.ID, "Sibling", "animated"))
	cousin := f.video(t, validVideo(f.music.ID, "Cousin", "animated"))
	stranger := f.video(t, validVideo(f.music.ID, "Stranger"))
	f.video(t, validVideo(f.music.ID, "Other"))

	ranked, err := f.catalog.Related(ctx, ref.ID, 0)
	if err != nil {
		t.Fatalf("Related failed: %v", err)
	}
	if len(ranked) != 2 || ranked[0].Video.ID != sibling.ID || ranked[1].Video.ID != cousin.ID {
		t.Errorf("Expected [sibling cousin] with default limit, got %+v", ranked)
	}

	ranked, err = f.catalog.Related(ctx, ref.ID, 100)
	if err != nil {
		t.Fatalf("Related failed: %v", err)
	}
	if len(ranked) != 3 || ranked[2].Video.ID != stranger.ID {
		t.Errorf("Expected limit capped at 3 ending with backfill, got %+v", ranked)
	}

	if _, err := f.catalog.Related(ctx, 999, 0); !core.IsCode(err, core.ErrCodeNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestRefreshPopular(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.video(t, validVideo(f.movies.ID, "A"))
	b := f.video(t, validVideo(f.movies.ID, "B"))
	c := f.video(t, validVideo(f.movies.ID, "C"))
	for i := 0; i < 3; i++ {
		f.catalog.WatchVideo(ctx, c.ID)
	}
	f.catalog.WatchVideo(ctx, b.ID)

	refresher := NewPopularityRefresher(f.catalog, core.Discard(), time.Hour, 2)
	refresher.RefreshNow(ctx)

	for _, id := range []int64{a.ID, b.ID, c.ID} {
		v, err := f.catalog.GetVideo(ctx, id)
		if err != nil {
			t.Fatalf("GetVideo failed: %v", err)
		}
		if want := id != a.ID; v.IsPopular != want {
			t.Errorf("Video %d: expected popular=%v", id, want)
		}
	}
}

func TestRefresherLifecycle(t *testing.T) {
	f := newFixture(t)
	v := f.video(t, validVideo(f.movies.ID, "Only"))

	refresher := NewPopularityRefresher(f.catalog, core.Discard(), 10*time.Millisecond, 1)
	if err := refresher.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := refresher.Start(context.Background()); err != nil {
		t.Fatalf("Second Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		got, _ := f.catalog.GetVideo(context.Background(), v.ID)
		if got.IsPopular {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Refresher never marked the video popular")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := refresher.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := refresher.Stop(ctx); err != nil {
		t.Fatalf("Second Stop failed: %v", err)
	}

	disabled := NewPopularityRefresher(f.catalog, core.Discard(), 0, 1)
	if err := disabled.Start(context.Background()); err != nil {
		t.Fatalf("Start of disabled refresher failed: %v", err)
	}
	if err := disabled.Stop(ctx); err != nil {
		t.Fatalf("Stop of disabled refresher failed: %v", err)
	}
}
