// Package views renders the server-rendered pages as templ components.
package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/dustin/go-humanize"

	"reelhouse/internal/models"
	"reelhouse/internal/recommend"
)

// HomeData is the content of the browse page
type HomeData struct {
	Categories []models.Category
	Active     string
	Query      string
	Heading    string
	Videos     []models.Video
}

// WatchData is the content of the watch page
type WatchData struct {
	Categories []models.Category
	Video      models.Video
	Category   *models.Category
	Related    []recommend.Scored
}

// cx merges tailwind classes, later classes winning conflicts
func cx(classes ...string) string {
	return twmerge.Merge(strings.Join(classes, " "))
}

func activeClass(active bool) string {
	if active {
		return "bg-red-600 text-white"
	}
	return ""
}

func featuredClass(v models.Video) string {
	if v.IsFeatured {
		return "bg-neutral-800 ring-2 ring-red-500"
	}
	return ""
}

func watchPath(id int64) string {
	return "/watch/" + strconv.FormatInt(id, 10)
}

func activeSlug(category *models.Category) string {
	if category == nil {
		return ""
	}
	return category.Slug
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// watchMeta is the line under the player: views, likes, age and category
func watchMeta(v models.Video, category *models.Category) string {
	parts := []string{FormatViews(v.Views), strconv.FormatInt(v.Likes, 10) + " likes"}
	if uploaded := FormatUploaded(v.UploadedAt); uploaded != "" {
		parts = append(parts, uploaded)
	}
	if category != nil {
		parts = append(parts, category.Name)
	}
	return strings.Join(parts, " · ")
}

// FormatDuration renders seconds as "1h 34m" or "4:05"
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatViews renders a view counter
func FormatViews(views int64) string {
	if views == 1 {
		return "1 view"
	}
	return humanize.Comma(views) + " views"
}

// FormatUploaded renders an upload time relative to now
func FormatUploaded(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}
