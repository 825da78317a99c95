// Package api exposes the assessment service over HTTP and WebSocket.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/career-guide/internal/assessment"
	"github.com/p-n-ai/career-guide/internal/report"
	"github.com/p-n-ai/career-guide/internal/session"
)

const (
	maxBodyBytes  = 1 << 20
	healthTimeout = 2 * time.Second
)

// HealthChecker is a dependency checked by /readyz.
type HealthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// Handler serves the assessment API.
type Handler struct {
	svc      *session.Service
	checkers []HealthChecker
}

// NewHandler creates a Handler backed by svc.
func NewHandler(svc *session.Service, checkers ...HealthChecker) *Handler {
	return &Handler{svc: svc, checkers: checkers}
}

// NewMux creates the HTTP router.
func NewMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.HandleFunc("GET /readyz", h.handleReadyz)
	mux.HandleFunc("GET /v1/streams", h.handleStreams)
	mux.HandleFunc("POST /v1/sessions", h.handleStartSession)
	mux.HandleFunc("POST /v1/sessions/{id}/answers", h.handleSubmitAnswers)
	mux.HandleFunc("GET /v1/sessions/{id}/report", h.handleReport)
	mux.HandleFunc("POST /v1/recommendations", h.handleRecommend)
	mux.HandleFunc("GET /v1/ws/assessment", h.handleAssessmentWS)
	return mux
}

// OptionView is an answer choice as shown to the user; traits stay server-side.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is a question as shown to the user.
type QuestionView struct {
	ID       string       `json:"id"`
	Scenario string       `json:"scenario"`
	Options  []OptionView `json:"options"`
}

func newQuestionView(q assessment.Question) QuestionView {
	opts := make([]OptionView, len(q.Options))
	for i, o := range q.Options {
		opts[i] = OptionView{ID: o.ID, Text: o.Text}
	}
	return QuestionView{ID: q.ID, Scenario: q.Scenario, Options: opts}
}

type startSessionRequest struct {
	UserID string `json:"user_id"`
	Stream string `json:"stream"`
}

type sessionResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Stream    string         `json:"stream"`
	Reset     bool           `json:"reset"`
	Questions []QuestionView `json:"questions"`
}

type submitAnswersRequest struct {
	Answers assessment.AnswerMap `json:"answers"`
}

type recommendRequest struct {
	Stream string         `json:"stream"`
	Scores map[string]int `json:"scores"`
}

type recommendResponse struct {
	Recommendations []assessment.CourseRecommendation `json:"recommendations"`
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	failed := map[string]string{}
	for _, c := range h.checkers {
		if err := c.HealthCheck(ctx); err != nil {
			slog.Warn("readiness check failed", "dependency", c.Name(), "error", err)
			failed[c.Name()] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) handleStreams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"streams": h.svc.Streams()})
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stream, err := assessment.ParseStream(req.Stream)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.svc.Start(r.Context(), req.UserID, stream)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := sessionResponse{
		ID:        sess.ID,
		UserID:    sess.UserID,
		Stream:    string(sess.Stream),
		Reset:     sess.Reset,
		Questions: make([]QuestionView, len(sess.Questions)),
	}
	for i, q := range sess.Questions {
		resp.Questions[i] = newQuestionView(q)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleSubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req submitAnswersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Complete(r.Context(), r.PathValue("id"), req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := h.svc.Result(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, res); err != nil {
		slog.Error("failed to build report", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="career-report-%s.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stream, err := assessment.ParseStream(req.Stream)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := h.svc.Recommend(stream, req.Scores)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendResponse{Recommendations: recs})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownStream), errors.Is(err, session.ErrEmptyUserID):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrAlreadyCompleted), errors.Is(err, session.ErrNotCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
