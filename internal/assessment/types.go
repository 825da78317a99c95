// Package assessment implements the career-assessment engine: per-stream
// question banks, the non-repeating question selector, the trait scorer and
// the course matcher. Everything here is pure and safe to call from many
// goroutines as long as callers do not share a Rand.
package assessment

import "fmt"

// Stream is an academic track. It selects the question bank and course catalog.
type Stream string

const (
	StreamPCM      Stream = "pcm"  // science with maths
	StreamPCB      Stream = "pcb"  // science with biology
	StreamPCMB     Stream = "pcmb" // combined science
	StreamCommerce Stream = "commerce"
	StreamArts     Stream = "arts"
)

// AllStreams lists the supported streams in display order.
var AllStreams = []Stream{StreamPCM, StreamPCB, StreamPCMB, StreamCommerce, StreamArts}

// ParseStream validates a stream identifier.
func ParseStream(s string) (Stream, error) {
	for _, st := range AllStreams {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stream %q", s)
}

// OptionsPerQuestion is the fixed number of options every question carries.
const OptionsPerQuestion = 4

// Question is a multiple-choice scenario question.
type Question struct {
	ID       string   `json:"id"`
	Scenario string   `json:"scenario"`
	Options  []Option `json:"options"`
}

// Option is one answer to a Question. Traits is never empty.
type Option struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	Traits []string `json:"traits"`
}

// Option returns the option with the given ID.
func (q Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// SeenSet holds question IDs a user has already been shown.
type SeenSet map[string]struct{}

// NewSeenSet builds a SeenSet from a list of IDs.
func NewSeenSet(ids ...string) SeenSet {
	s := make(SeenSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s SeenSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// AnswerMap maps a question ID to the chosen option ID for one session.
type AnswerMap map[string]string

// CourseCatalogEntry is a course a stream can lead to.
type CourseCatalogEntry struct {
	Name           string   `json:"name"`
	RequiredTraits []string `json:"required_traits"`
	Careers        []string `json:"careers,omitempty"`
	SalaryRange    string   `json:"salary_range,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	Description    string   `json:"description,omitempty"`
}

// CourseRecommendation is a catalog entry with its computed match percentage.
type CourseRecommendation struct {
	CourseCatalogEntry
	MatchScore int `json:"match_score"`
}
