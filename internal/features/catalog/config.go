package catalog

import (
	"fmt"
	"time"

	"reelhouse/internal/core"
	"reelhouse/internal/recommend"
)

// Config represents catalog feature configuration
type Config struct {
	Enabled          bool
	DefaultVideoType string
	PopularInterval  time.Duration
	PopularCount     int
	Recommend        recommend.Config
	MaxRelated       int
}

// NewConfig creates catalog config from core config
func NewConfig(coreConfig *core.Config) *Config {
	rc := coreConfig.Features.Recommend
	return &Config{
		Enabled:          coreConfig.Features.Catalog.Enabled,
		DefaultVideoType: coreConfig.Features.Catalog.DefaultVideoType,
		PopularInterval:  coreConfig.Features.Catalog.PopularInterval,
		PopularCount:     coreConfig.Features.Catalog.PopularCount,
		Recommend: recommend.Config{
			CategoryWeight: rc.CategoryWeight,
			TagWeight:      rc.TagWeight,
			Limit:          rc.Limit,
		},
		MaxRelated: rc.MaxLimit,
	}
}

// Validate validates the catalog configuration
func (c *Config) Validate() error {
	if c.DefaultVideoType == "" {
		return fmt.Errorf("default video type is required")
	}

	// A zero interval disables the popularity refresher
	if c.PopularInterval < 0 {
		return fmt.Errorf("popular interval must not be negative")
	}
	if c.PopularInterval > 0 && c.PopularInterval < time.Second {
		return fmt.Errorf("popular interval must be at least one second")
	}
	if c.PopularCount < 0 {
		return fmt.Errorf("popular count must not be negative")
	}

	if c.Recommend.Limit <= 0 {
		return fmt.Errorf("recommendation limit must be positive")
	}
	if c.MaxRelated < c.Recommend.Limit {
		return fmt.Errorf("max related (%d) must be at least the default limit (%d)", c.MaxRelated, c.Recommend.Limit)
	}

	return nil
}
