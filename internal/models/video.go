package models

import (
	"time"
)

// DefaultVideoType is used when a video is created without a type
const DefaultVideoType = "movie"

// Video represents a catalog entry
type Video struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	VideoURL     string    `json:"videoUrl"`
	Duration     int       `json:"duration"` // seconds
	Views        int64     `json:"views"`
	UploadedAt   time.Time `json:"uploadedAt"`
	CategoryID   int64     `json:"categoryId"`
	Tags         []string  `json:"tags"`
	UploadedBy   string    `json:"uploadedBy"`
	IsPopular    bool      `json:"isPopular"`
	Likes        int64     `json:"likes"`
	IsFeatured   bool      `json:"isFeatured"`
	Type         string    `json:"type"`
}

// Clone returns a copy of v that shares no mutable state with it
func (v Video) Clone() Video {
	if v.Tags != nil {
		tags := make([]string, len(v.Tags))
		copy(tags, v.Tags)
		v.Tags = tags
	}
	return v
}

// VideoCreate represents the data needed to create a new video
type VideoCreate struct {
	Title        string   `json:"title" validate:"required,notblank"`
	Description  string   `json:"description" validate:"required,notblank"`
	ThumbnailURL string   `json:"thumbnailUrl" validate:"required,url"`
	VideoURL     string   `json:"videoUrl" validate:"required,url"`
	Duration     *int     `json:"duration" validate:"required,min=0"`
	CategoryID   int64    `json:"categoryId" validate:"required,min=1"`
	Tags         []string `json:"tags" validate:"omitempty,dive,required,notblank"`
	UploadedBy   string   `json:"uploadedBy"`
	IsPopular    *bool    `json:"isPopular"`
	IsFeatured   *bool    `json:"isFeatured"`
	Type         string   `json:"type"`
}

// FeaturedUpdate is the body of a featured flag change
type FeaturedUpdate struct {
	Featured *bool `json:"featured" validate:"required"`
}
