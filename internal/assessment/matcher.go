package assessment

import (
	"fmt"
	"math"
	"sort"
)

const (
	defaultMaxExpectedTraitScore = 20
	defaultMatchCeiling          = 98
	defaultMatchFloor            = 45
	defaultRecommendationLimit   = 5
)

// ScoringConfig holds the match-score tuning values.
type ScoringConfig struct {
	// MaxExpectedTraitScore is the summed trait score that maps to 100%.
	MaxExpectedTraitScore float64
	// Ceiling caps every match score.
	Ceiling int
	// Floor is the minimum score any catalog course is shown with.
	Floor int
	// Limit is how many recommendations are returned.
	Limit int
}

// DefaultScoringConfig returns the production tuning: 20 / 98 / 45, top 5.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		MaxExpectedTraitScore: defaultMaxExpectedTraitScore,
		Ceiling:               defaultMatchCeiling,
		Floor:                 defaultMatchFloor,
		Limit:                 defaultRecommendationLimit,
	}
}

// Validate checks the config is usable.
func (c ScoringConfig) Validate() error {
	if c.MaxExpectedTraitScore <= 0 {
		return fmt.Errorf("max expected trait score must be positive, got %v", c.MaxExpectedTraitScore)
	}
	if c.Ceiling > 100 {
		return fmt.Errorf("match ceiling must be at most 100, got %d", c.Ceiling)
	}
	if c.Floor < 0 || c.Floor > c.Ceiling {
		return fmt.Errorf("match floor must be in [0, %d], got %d", c.Ceiling, c.Floor)
	}
	if c.Limit <= 0 {
		return fmt.Errorf("recommendation limit must be positive, got %d", c.Limit)
	}
	return nil
}

// Matcher ranks a stream's courses against accumulated trait scores.
type Matcher struct {
	bank *Bank
	cfg  ScoringConfig
}

// NewMatcher creates a Matcher. cfg is used as given; start from
// DefaultScoringConfig to change only some values.
func NewMatcher(bank *Bank, cfg ScoringConfig) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{bank: bank, cfg: cfg}, nil
}

// Config returns the matcher's scoring config.
func (m *Matcher) Config() ScoringConfig {
	return m.cfg
}

// MatchScore computes the bounded match percentage for a course's required
// traits. Traits missing from scores count as zero.
func (m *Matcher) MatchScore(required []string, scores map[string]int) int {
	raw := 0
	for _, t := range required {
		raw += scores[t]
	}

	normalized := int(math.Round(float64(raw) / m.cfg.MaxExpectedTraitScore * 100))
	normalized = min(normalized, m.cfg.Ceiling)
	return max(normalized, m.cfg.Floor)
}

// Recommend scores every course in the stream's catalog and returns the top
// Limit, highest first. Equal scores keep catalog order. An unknown stream
// yields no recommendations.
func (m *Matcher) Recommend(st Stream, scores map[string]int) []CourseRecommendation {
	courses := m.bank.CoursesByStream(st)
	recs := make([]CourseRecommendation, 0, len(courses))
	for _, c := range courses {
		recs = append(recs, CourseRecommendation{
			CourseCatalogEntry: c,
			MatchScore:         m.MatchScore(c.RequiredTraits, scores),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchScore > recs[j].MatchScore
	})

	if len(recs) > m.cfg.Limit {
		recs = recs[:m.cfg.Limit]
	}
	return recs
}
