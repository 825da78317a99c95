package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/career-guide/internal/assessment"
	"github.com/p-n-ai/career-guide/internal/session"
)

// Live assessment frame types.
const (
	FrameQuestion = "question"
	FrameAnswer   = "answer"
	FrameResult   = "result"
	FrameError    = "error"
)

// wsIdleTimeout bounds how long the server waits for each answer.
const wsIdleTimeout = 10 * time.Minute

// Frame is one message of the live assessment protocol. The server sends
// question frames one at a time, the client replies with an answer frame
// for each, and the last server frame carries the result.
type Frame struct {
	Type       string          `json:"type"`
	SessionID  string          `json:"session_id,omitempty"`
	Index      int             `json:"index,omitempty"`
	Total      int             `json:"total,omitempty"`
	Question   *QuestionView   `json:"question,omitempty"`
	QuestionID string          `json:"question_id,omitempty"`
	OptionID   string          `json:"option_id,omitempty"`
	Result     *session.Result `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

func (h *Handler) handleAssessmentWS(w http.ResponseWriter, r *http.Request) {
	stream, err := assessment.ParseStream(r.URL.Query().Get("stream"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, session.ErrEmptyUserID.Error())
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	sess, err := h.svc.Start(ctx, userID, stream)
	if err != nil {
		h.closeWithError(ctx, conn, err)
		return
	}

	answers := make(assessment.AnswerMap, len(sess.Questions))
	for i := 0; i < len(sess.Questions); {
		q := sess.Questions[i]
		view := newQuestionView(q)
		if err := wsjson.Write(ctx, conn, Frame{
			Type:      FrameQuestion,
			SessionID: sess.ID,
			Index:     i + 1,
			Total:     len(sess.Questions),
			Question:  &view,
		}); err != nil {
			slog.Info("websocket write failed", "session_id", sess.ID, "error", err)
			return
		}

		in, err := readFrame(ctx, conn)
		if err != nil {
			slog.Info("websocket closed before completion", "session_id", sess.ID, "error", err)
			return
		}
		if in.Type != FrameAnswer || (in.QuestionID != "" && in.QuestionID != q.ID) {
			if err := wsjson.Write(ctx, conn, Frame{Type: FrameError, Error: "expected answer for " + q.ID}); err != nil {
				return
			}
			continue
		}
		if _, ok := q.Option(in.OptionID); !ok {
			if err := wsjson.Write(ctx, conn, Frame{Type: FrameError, Error: "unknown option " + in.OptionID}); err != nil {
				return
			}
			continue
		}
		answers[q.ID] = in.OptionID
		i++
	}

	res, err := h.svc.Complete(ctx, sess.ID, answers)
	if err != nil {
		h.closeWithError(ctx, conn, err)
		return
	}
	if err := wsjson.Write(ctx, conn, Frame{Type: FrameResult, SessionID: sess.ID, Result: res}); err != nil {
		slog.Info("websocket write failed", "session_id", sess.ID, "error", err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "assessment complete")
}

func readFrame(ctx context.Context, conn *websocket.Conn) (Frame, error) {
	ctx, cancel := context.WithTimeout(ctx, wsIdleTimeout)
	defer cancel()

	var f Frame
	err := wsjson.Read(ctx, conn, &f)
	return f, err
}

func (h *Handler) closeWithError(ctx context.Context, conn *websocket.Conn, err error) {
	msg := err.Error()
	code := websocket.StatusPolicyViolation
	if statusFor(err) == http.StatusInternalServerError {
		slog.Error("live assessment failed", "error", err)
		msg = "internal error"
		code = websocket.StatusInternalError
	}
	if werr := wsjson.Write(ctx, conn, Frame{Type: FrameError, Error: msg}); werr != nil && !errors.Is(werr, context.Canceled) {
		slog.Info("websocket write failed", "error", werr)
	}
	conn.Close(code, msg)
}
