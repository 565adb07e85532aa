package models

// TrendingSlug is the reserved slug meaning "every video"
const TrendingSlug = "trending"

// Category represents a browsable group of videos
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
	Slug string `json:"slug"`
}

// CategoryCreate represents the data needed to create a new category
type CategoryCreate struct {
	Name string `json:"name" validate:"required,notblank,max=50"`
	Icon string `json:"icon" validate:"required,notblank"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}
