// Package recommend ranks related videos for a watched video.
//
// The score of a candidate c for a reference video v is
//
//	score(c) = CategoryWeight * [c.CategoryID == v.CategoryID]
//	         + TagWeight * |tags(c) ∩ tags(v)|
//
// where tags are compared case-insensitively. Candidates are ordered by
// score descending, then views descending, then id ascending, so zero-score
// candidates fill any remaining slots with the most-viewed videos.
package recommend

import (
	"sort"
	"strings"

	"reelhouse/internal/models"
)

// Default weights and result size
const (
	DefaultCategoryWeight = 10
	DefaultTagWeight      = 5
	DefaultLimit          = 5
)

// Reasons a candidate was selected
const (
	ReasonCategory = "same_category"
	ReasonTags     = "shared_tags"
	ReasonBoth     = "same_category_and_tags"
	ReasonPopular  = "popular"
)

// Config contains the scoring weights and the default result size
type Config struct {
	CategoryWeight float64
	TagWeight      float64
	Limit          int
}

// DefaultConfig returns the default selector configuration
func DefaultConfig() Config {
	return Config{
		CategoryWeight: DefaultCategoryWeight,
		TagWeight:      DefaultTagWeight,
		Limit:          DefaultLimit,
	}
}

// Scored is a ranked candidate
type Scored struct {
	Video      models.Video `json:"video"`
	Score      float64      `json:"score"`
	SharedTags int          `json:"sharedTags"`
	Reason     string       `json:"reason"`
}

// Selector is stateless and safe for concurrent use
type Selector struct {
	cfg Config
}

// NewSelector creates a selector. Negative weights are treated as zero and a
// non-positive limit falls back to DefaultLimit.
func NewSelector(cfg Config) *Selector {
	if cfg.CategoryWeight < 0 {
		cfg.CategoryWeight = 0
	}
	if cfg.TagWeight < 0 {
		cfg.TagWeight = 0
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	return &Selector{cfg: cfg}
}

// Config returns the effective configuration
func (s *Selector) Config() Config {
	return s.cfg
}

// Select returns at most n videos related to v, drawn from all.
// A non-positive n uses the configured limit.
func (s *Selector) Select(v models.Video, all []models.Video, n int) []models.Video {
	ranked := s.Rank(v, all, n)
	out := make([]models.Video, len(ranked))
	for i, r := range ranked {
		out[i] = r.Video
	}
	return out
}

// Rank is Select with scores and reasons attached
func (s *Selector) Rank(v models.Video, all []models.Video, n int) []Scored {
	if n <= 0 {
		n = s.cfg.Limit
	}

	refTags := tagSet(v.Tags)
	seen := make(map[int64]bool, len(all))
	candidates := make([]Scored, 0, len(all))
	for _, c := range all {
		if c.ID == v.ID || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		candidates = append(candidates, s.score(v, refTags, c))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j])
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// Score returns the relevance of c to v
func (s *Selector) Score(v, c models.Video) float64 {
	return s.score(v, tagSet(v.Tags), c).Score
}

func (s *Selector) score(v models.Video, refTags map[string]struct{}, c models.Video) Scored {
	shared := sharedTags(refTags, c.Tags)
	sameCategory := c.CategoryID == v.CategoryID

	result := Scored{Video: c, SharedTags: shared}
	if sameCategory {
		result.Score += s.cfg.CategoryWeight
	}
	result.Score += s.cfg.TagWeight * float64(shared)

	switch {
	case sameCategory && shared > 0:
		result.Reason = ReasonBoth
	case sameCategory:
		result.Reason = ReasonCategory
	case shared > 0:
		result.Reason = ReasonTags
	default:
		result.Reason = ReasonPopular
	}
	return result
}

// less orders by score desc, views desc, id asc
func less(a, b Scored) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Video.Views != b.Video.Views {
		return a.Video.Views > b.Video.Views
	}
	return a.Video.ID < b.Video.ID
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

// sharedTags counts the distinct tags of c present in ref
func sharedTags(ref map[string]struct{}, tags []string) int {
	if len(ref) == 0 {
		return 0
	}
	counted := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		key := strings.ToLower(t)
		if _, ok := ref[key]; !ok {
			continue
		}
		if _, dup := counted[key]; dup {
			continue
		}
		counted[key] = struct{}{}
	}
	return len(counted)
}

// TopViewed returns the ids of the k most-viewed videos, ties broken by id ascending
func TopViewed(all []models.Video, k int) []int64 {
	if k <= 0 || len(all) == 0 {
		return nil
	}
	sorted := make([]models.Video, len(all))
	copy(sorted, all)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Views != sorted[j].Views {
			return sorted[i].Views > sorted[j].Views
		}
		return sorted[i].ID < sorted[j].ID
	})
	if k > len(sorted) {
		k = len(sorted)
	}
	ids := make([]int64, k)
	for i := range ids {
		ids[i] = sorted[i].ID
	}
	return ids
}
