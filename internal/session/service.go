package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/career-guide/internal/assessment"
	"github.com/p-n-ai/career-guide/internal/progress"
)

const (
	DefaultSessionSize = 20
	DefaultTopTraits   = 5
)

// ServiceConfig holds dependencies for the Service.
type ServiceConfig struct {
	Bank        *assessment.Bank
	Matcher     *assessment.Matcher
	Seen        progress.SeenStore
	Sessions    Store
	Events      EventLogger      // default NopEventLogger
	Rand        assessment.Rand  // default PCG seeded from the runtime
	SessionSize int              // questions drawn per session (default 20)
	TopTraits   int              // traits reported per Result (default 5)
	Now         func() time.Time // default time.Now
}

// Service coordinates the question bank, seen history, session storage
// and course matching.
type Service struct {
	bank     *assessment.Bank
	matcher  *assessment.Matcher
	seen     progress.SeenStore
	sessions Store
	events   EventLogger

	rngMu sync.Mutex
	rng   assessment.Rand

	sessionSize int
	topTraits   int
	now         func() time.Time
}

// NewService creates a Service. Bank, Matcher, Seen and Sessions are required.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Bank == nil {
		return nil, fmt.Errorf("question bank is nil")
	}
	if cfg.Matcher == nil {
		return nil, fmt.Errorf("matcher is nil")
	}
	if cfg.Seen == nil {
		return nil, fmt.Errorf("seen store is nil")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session store is nil")
	}

	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	size := cfg.SessionSize
	if size <= 0 {
		size = DefaultSessionSize
	}
	top := cfg.TopTraits
	if top <= 0 {
		top = DefaultTopTraits
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		bank:        cfg.Bank,
		matcher:     cfg.Matcher,
		seen:        cfg.Seen,
		sessions:    cfg.Sessions,
		events:      events,
		rng:         rng,
		sessionSize: size,
		topTraits:   top,
		now:         now,
	}, nil
}

// Streams lists the streams the bank carries.
func (s *Service) Streams() []assessment.StreamInfo {
	return s.bank.Streams()
}

// Start draws a fresh question set for the user and stores it as a session.
func (s *Service) Start(ctx context.Context, userID string, stream assessment.Stream) (*Session, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if !s.bank.HasStream(stream) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStream, stream)
	}

	seen, err := s.seen.Seen(ctx, userID, stream)
	if err != nil {
		return nil, fmt.Errorf("load seen questions: %w", err)
	}

	sel := s.selectQuestions(s.bank.QuestionsByStream(stream), seen)

	if sel.NeedsReset {
		if err := s.seen.Reset(ctx, userID, stream); err != nil {
			return nil, fmt.Errorf("reset seen questions: %w", err)
		}
		slog.Info("seen history reset", "user_id", userID, "stream", stream)
	}

	ids := make([]string, len(sel.Questions))
	for i, q := range sel.Questions {
		ids[i] = q.ID
	}
	if err := s.seen.MarkSeen(ctx, userID, stream, ids); err != nil {
		return nil, fmt.Errorf("mark questions seen: %w", err)
	}

	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Stream:    stream,
		Questions: sel.Questions,
		Reset:     sel.NeedsReset,
		StartedAt: s.now(),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logEvent(ctx, Event{
		SessionID: sess.ID,
		UserID:    userID,
		Stream:    stream,
		EventType: EventSessionStarted,
		Data: map[string]any{
			"question_count": len(sess.Questions),
			"reset":          sel.NeedsReset,
		},
	})

	slog.Info("assessment session started",
		"session_id", sess.ID,
		"user_id", userID,
		"stream", stream,
		"questions", len(sess.Questions),
	)
	return sess, nil
}

// Complete scores the answers for a session and recommends courses.
// Answers for questions the session did not present are dropped.
func (s *Service) Complete(ctx context.Context, sessionID string, answers assessment.AnswerMap) (*Result, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Completed() {
		return nil, ErrAlreadyCompleted
	}

	presented := make(map[string]struct{}, len(sess.Questions))
	for _, q := range sess.Questions {
		presented[q.ID] = struct{}{}
	}
	kept := make(assessment.AnswerMap, len(answers))
	for qid, oid := range answers {
		if _, ok := presented[qid]; !ok {
			slog.Warn("ignoring answer for question not in session",
				"session_id", sessionID,
				"question_id", qid,
			)
			continue
		}
		kept[qid] = oid
	}

	scores := assessment.CalculateTraitScores(sess.Questions, kept)
	result := &Result{
		SessionID:       sess.ID,
		UserID:          sess.UserID,
		Stream:          sess.Stream,
		Answered:        len(kept),
		Scores:          scores.Map(),
		TopTraits:       assessment.TopTraits(scores, s.topTraits),
		Recommendations: s.matcher.Recommend(sess.Stream, scores.Map()),
		CompletedAt:     s.now(),
	}

	if err := s.sessions.Complete(ctx, sess.ID, result); err != nil {
		if errors.Is(err, ErrAlreadyCompleted) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("store result: %w", err)
	}

	data := map[string]any{
		"answered":   result.Answered,
		"top_traits": traitNames(result.TopTraits),
	}
	if len(result.Recommendations) > 0 {
		data["top_course"] = result.Recommendations[0].Name
		data["top_match"] = result.Recommendations[0].MatchScore
	}
	s.logEvent(ctx, Event{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Stream:    sess.Stream,
		EventType: EventSessionCompleted,
		Data:      data,
	})

	slog.Info("assessment session completed",
		"session_id", sess.ID,
		"user_id", sess.UserID,
		"stream", sess.Stream,
		"answered", result.Answered,
	)
	return result, nil
}

// Result returns the scored result of a completed session.
func (s *Service) Result(ctx context.Context, sessionID string) (*Result, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Completed() {
		return nil, ErrNotCompleted
	}
	return sess.Result, nil
}

// Recommend matches caller-held trait scores against a stream's courses.
func (s *Service) Recommend(stream assessment.Stream, scores map[string]int) ([]assessment.CourseRecommendation, error) {
	if !s.bank.HasStream(stream) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStream, stream)
	}
	return s.matcher.Recommend(stream, scores), nil
}

func (s *Service) selectQuestions(all []assessment.Question, seen assessment.SeenSet) assessment.Selection {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return assessment.SelectQuestionsForUser(all, seen, s.sessionSize, s.rng)
}

// logEvent records an analytics event. Failures are logged, never returned.
func (s *Service) logEvent(ctx context.Context, event Event) {
	if err := s.events.LogEvent(ctx, event); err != nil {
		slog.Warn("failed to log event",
			"type", event.EventType,
			"session_id", event.SessionID,
			"error", err,
		)
	}
}

func traitNames(ts []assessment.TraitScore) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Trait
	}
	return names
}
