package assessment

import (
	"errors"
	"fmt"
)

// StreamInfo describes a stream for display.
type StreamInfo struct {
	Stream      Stream `json:"stream"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// StreamContent is everything the engine needs for one stream.
type StreamContent struct {
	Info      StreamInfo
	Questions []Question
	Courses   []CourseCatalogEntry
}

// Bank is the immutable question bank and course catalog for all streams.
type Bank struct {
	streams map[Stream]StreamContent
	order   []Stream
}

// NewBank checks catalog integrity and builds a Bank. Every question must
// have exactly four options with unique IDs, every option at least one trait,
// question IDs must be unique within a stream, and every stream needs at least
// one question and one course. All violations are reported together.
func NewBank(contents ...StreamContent) (*Bank, error) {
	b := &Bank{streams: make(map[Stream]StreamContent, len(contents))}

	var errs []error
	for _, c := range contents {
		st := c.Info.Stream
		if _, err := ParseStream(string(st)); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := b.streams[st]; dup {
			errs = append(errs, fmt.Errorf("stream %s: defined more than once", st))
			continue
		}
		errs = append(errs, validateStream(c)...)
		b.streams[st] = c
		b.order = append(b.order, st)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("catalog integrity: %w", err)
	}
	return b, nil
}

func validateStream(c StreamContent) []error {
	st := c.Info.Stream
	var errs []error

	if len(c.Questions) == 0 {
		errs = append(errs, fmt.Errorf("stream %s: no questions", st))
	}
	if len(c.Courses) == 0 {
		errs = append(errs, fmt.Errorf("stream %s: empty course catalog", st))
	}

	ids := make(map[string]bool, len(c.Questions))
	for _, q := range c.Questions {
		if q.ID == "" {
			errs = append(errs, fmt.Errorf("stream %s: question with empty id", st))
			continue
		}
		if ids[q.ID] {
			errs = append(errs, fmt.Errorf("stream %s: duplicate question id %s", st, q.ID))
		}
		ids[q.ID] = true

		if len(q.Options) != OptionsPerQuestion {
			errs = append(errs, fmt.Errorf("question %s: has %d options, want %d", q.ID, len(q.Options), OptionsPerQuestion))
		}
		optIDs := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if o.ID == "" || optIDs[o.ID] {
				errs = append(errs, fmt.Errorf("question %s: missing or duplicate option id %q", q.ID, o.ID))
			}
			optIDs[o.ID] = true
			if len(o.Traits) == 0 {
				errs = append(errs, fmt.Errorf("question %s option %s: no traits", q.ID, o.ID))
			}
		}
	}

	for _, course := range c.Courses {
		if course.Name == "" {
			errs = append(errs, fmt.Errorf("stream %s: course with empty name", st))
		}
		if len(course.RequiredTraits) == 0 {
			errs = append(errs, fmt.Errorf("stream %s course %q: no required traits", st, course.Name))
		}
	}
	return errs
}

// Streams returns the streams in the bank, in load order.
func (b *Bank) Streams() []StreamInfo {
	out := make([]StreamInfo, 0, len(b.order))
	for _, st := range b.order {
		out = append(out, b.streams[st].Info)
	}
	return out
}

// HasStream reports whether the bank has content for st.
func (b *Bank) HasStream(st Stream) bool {
	_, ok := b.streams[st]
	return ok
}

// QuestionsByStream returns the stream's questions. The slice is a copy;
// the questions share their option slices with the bank and must not be mutated.
func (b *Bank) QuestionsByStream(st Stream) []Question {
	qs := b.streams[st].Questions
	out := make([]Question, len(qs))
	copy(out, qs)
	return out
}

// CoursesByStream returns the stream's course catalog in declaration order.
func (b *Bank) CoursesByStream(st Stream) []CourseCatalogEntry {
	cs := b.streams[st].Courses
	out := make([]CourseCatalogEntry, len(cs))
	copy(out, cs)
	return out
}
