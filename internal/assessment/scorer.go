package assessment

import (
	"math"
	"sort"
)

// TraitScores counts how often each trait was selected in a session.
// Order records traits in the order they were first encountered, which
// breaks ties in TopTraits.
type TraitScores struct {
	Counts map[string]int `json:"counts"`
	Order  []string       `json:"order"`
}

// Get returns the count for trait, zero if absent.
func (s TraitScores) Get(trait string) int {
	return s.Counts[trait]
}

// Total is the sum of all trait counts.
func (s TraitScores) Total() int {
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}

// Map returns a copy of the counts.
func (s TraitScores) Map() map[string]int {
	out := make(map[string]int, len(s.Counts))
	for k, v := range s.Counts {
		out[k] = v
	}
	return out
}

func (s *TraitScores) add(trait string) {
	if _, ok := s.Counts[trait]; !ok {
		s.Order = append(s.Order, trait)
	}
	s.Counts[trait]++
}

// CalculateTraitScores tallies the traits of every chosen option. Questions
// without an answer, and answers naming an option the question does not have,
// contribute nothing.
func CalculateTraitScores(questions []Question, answers AnswerMap) TraitScores {
	scores := TraitScores{Counts: make(map[string]int), Order: []string{}}
	for _, q := range questions {
		optID, ok := answers[q.ID]
		if !ok {
			continue
		}
		opt, ok := q.Option(optID)
		if !ok {
			continue
		}
		for _, t := range opt.Traits {
			scores.add(t)
		}
	}
	return scores
}

// TraitScore is one row of a trait ranking.
type TraitScore struct {
	Trait string `json:"trait"`
	Score int    `json:"score"`
	// Share is the trait's percentage of all trait selections, rounded.
	Share int `json:"share"`
}

// TopTraits ranks traits by score, highest first, with ties kept in
// first-seen order. count <= 0 returns every trait.
func TopTraits(scores TraitScores, count int) []TraitScore {
	total := scores.Total()
	ranked := make([]TraitScore, 0, len(scores.Order))
	for _, t := range scores.Order {
		n := scores.Counts[t]
		share := 0
		if total > 0 {
			share = int(math.Round(float64(n) / float64(total) * 100))
		}
		ranked = append(ranked, TraitScore{Trait: t, Score: n, Share: share})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if count > 0 && count < len(ranked) {
		ranked = ranked[:count]
	}
	return ranked
}
