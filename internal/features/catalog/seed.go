package catalog

import (
	"context"
	"fmt"

	"reelhouse/internal/auth"
	"reelhouse/internal/core"
	"reelhouse/internal/models"
	"reelhouse/internal/store"
)

// Seeder loads the demo catalog into an empty store
type Seeder struct {
	repo          store.Repository
	users         *auth.Service
	adminUsername string
	adminPassword string
	logger        *core.Logger
}

// NewSeeder creates a seeder that also ensures the administrator account
func NewSeeder(repo store.Repository, users *auth.Service, adminUsername, adminPassword string, logger *core.Logger) *Seeder {
	return &Seeder{
		repo:          repo,
		users:         users,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		logger:        logger,
	}
}

var demoCategories = []models.CategoryCreate{
	{Name: "Trending", Icon: "fire", Slug: "trending"},
	{Name: "Movies", Icon: "film", Slug: "movies"},
	{Name: "Music", Icon: "music", Slug: "music"},
	{Name: "Gaming", Icon: "gamepad", Slug: "gaming"},
	{Name: "Education", Icon: "graduation-cap", Slug: "education"},
	{Name: "Cooking", Icon: "utensils", Slug: "cooking"},
	{Name: "Fitness", Icon: "dumbbell", Slug: "fitness"},
	{Name: "Programming", Icon: "code", Slug: "programming"},
}

type demoVideo struct {
	title        string
	description  string
	duration     int
	thumbnailURL string
	videoURL     string
	tags         []string
	popular      bool
}

// Demo videos all belong to the movies category
var demoVideos = []demoVideo{
	{
		title:        "A Minecraft Movie",
		description:  "A mysterious portal pulls four misfits into the Overworld, a bizarre, cubic wonderland that thrives on imagination. To get back home, they'll have to master the terrain while embarking on a magical quest with an unexpected crafter named Steve.",
		duration:     5644,
		thumbnailURL: "https://img.megaplextheatres.com/FilmBackdrop/HO00003457",
		videoURL:     "https://ia601602.us.archive.org/8/items/a-minecraft-movie-nova-show-01/A%20Minecraft%20Movie%20-%20NovaShow-01.mp4",
		tags:         []string{"minecraft", "gaming", "mojang"},
		popular:      true,
	},
	{
		title:        "Sonic The Hedgehog 3",
		description:  "Sonic, Knuckles and Tails reunite to battle Shadow, a mysterious new enemy with powers unlike anything they've faced before. With their abilities outmatched in every way, they seek out an unlikely alliance to stop Shadow and protect the planet.",
		duration:     6617,
		thumbnailURL: "https://i.ytimg.com/vi/qYAn4js_TsQ/hq720.jpg?sqp=-oaymwEhCK4FEIIDSFryq4qpAxMIARUAAAAAGAElAADIQj0AgKJD&rs=AOn4CLBWISLhBT_uZWzaWDMDCgJRl4fG1w",
		videoURL:     "https://ia601907.us.archive.org/19/items/sonic3_202504/1630858463-01.mp4",
		tags:         []string{"sonic", "gaming", "sega"},
		popular:      true,
	},
	{
		title:        "Kung fu Panda 4",
		description:  "Po must train a new warrior when he's chosen to become the spiritual leader of the Valley of Peace. However, when a powerful shape-shifting sorceress sets her eyes on his Staff of Wisdom, he suddenly realizes he's going to need some help. Teaming up with a quick-witted corsac fox, Po soon discovers that heroes can be found in the most unexpected places.",
		duration:     5713,
		thumbnailURL: "https://4kwallpapers.com/images/wallpapers/kung-fu-panda-4-1920x1080-15545.jpg",
		videoURL:     "https://ia801504.us.archive.org/9/items/kungfupanda4_202504/Watch%20Kung%20Fu%20Panda%204%202024%20Full%20HD%20Movie%20YesMovies%20to-01.mp4",
		tags:         []string{"dreamworks", "animated", "panda"},
	},
	{
		title:        "The Wild Robot",
		description:  "After a shipwreck, an intelligent robot is stranded on an uninhabited island. To survive the harsh surroundings, she bonds with the native animals and cares for an orphaned baby goose. The film was nominated for 3 Oscars.",
		duration:     6106,
		thumbnailURL: "https://images3.alphacoders.com/136/1367325.jpeg",
		videoURL:     "https://ia800709.us.archive.org/15/items/wild-robot/1630858186-01.mp4",
		tags:         []string{"universal", "animated", "robot"},
	},
	{
		title:        "Moana 2",
		description:  "After receiving an unexpected call from her wayfinding ancestors, a strong-willed girl journeys with her crew to the far seas of Oceania and into dangerous, long-lost waters for an adventure unlike anything she has ever faced.",
		duration:     5494,
		thumbnailURL: "https://images.squarespace-cdn.com/content/v1/5fbc4a62c2150e62cfcb09aa/1733125328711-J0YEMFJCDGLKYNC2S030/Moana%2B2%2BCollision.png",
		videoURL:     "https://ia601404.us.archive.org/14/items/moana-2_202504/Watch%20Moana%202%202024%20Full%20HD%20Movie%20YesMovies%20to.mp4",
		tags:         []string{"universal", "animated", "robot"},
	},
}

// Seed ensures the administrator exists and loads the demo categories and
// videos. The catalog part is skipped when any category already exists.
func (s *Seeder) Seed(ctx context.Context) error {
	if _, err := s.users.EnsureAdmin(ctx, s.adminUsername, s.adminPassword); err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}

	existing, err := s.repo.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("Catalog already seeded", "categories", len(existing))
		return nil
	}

	var moviesID int64
	for _, in := range demoCategories {
		category, err := s.repo.CreateCategory(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", in.Slug, err)
		}
		if category.Slug == "movies" {
			moviesID = category.ID
		}
	}

	for _, demo := range demoVideos {
		duration, popular := demo.duration, demo.popular
		_, err := s.repo.CreateVideo(ctx, models.VideoCreate{
			Title:        demo.title,
			Description:  demo.description,
			ThumbnailURL: demo.thumbnailURL,
			VideoURL:     demo.videoURL,
			Duration:     &duration,
			CategoryID:   moviesID,
			Tags:         demo.tags,
			UploadedBy:   s.adminUsername,
			IsPopular:    &popular,
		})
		if err != nil {
			return fmt.Errorf("failed to seed video %q: %w", demo.title, err)
		}
	}

	s.logger.Info("Seeded demo catalog", "categories", len(demoCategories), "videos", len(demoVideos))
	return nil
}
