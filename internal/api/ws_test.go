package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/career-guide/internal/api"
)

func dialAssessment(t *testing.T, query string) (*websocket.Conn, context.Context) {
	t.Helper()
	srv := httptest.NewServer(api.NewMux(api.NewHandler(testService(t))))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/assessment?" + query
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

func TestAssessmentWS_FullRun(t *testing.T) {
	conn, ctx := dialAssessment(t, "user_id=u1&stream=commerce")

	var sessionID string
	for i := 1; i <= 3; i++ {
		var q api.Frame
		if err := wsjson.Read(ctx, conn, &q); err != nil {
			t.Fatalf("read question %d: %v", i, err)
		}
		if q.Type != api.FrameQuestion || q.Question == nil {
			t.Fatalf("frame %d = %+v, want question", i, q)
		}
		if q.Index != i || q.Total != 3 {
			t.Errorf("frame %d index/total = %d/%d, want %d/3", i, q.Index, q.Total, i)
		}
		sessionID = q.SessionID

		if err := wsjson.Write(ctx, conn, api.Frame{Type: api.FrameAnswer, QuestionID: q.Question.ID, OptionID: "B"}); err != nil {
			t.Fatalf("write answer %d: %v", i, err)
		}
	}

	var res api.Frame
	if err := wsjson.Read(ctx, conn, &res); err != nil {
		t.Fatalf("read result: %v", err)
	}
	if res.Type != api.FrameResult || res.Result == nil {
		t.Fatalf("final frame = %+v, want result", res)
	}
	if res.Result.SessionID != sessionID || res.Result.Answered != 3 {
		t.Errorf("result = %+v, want 3 answers for %s", res.Result, sessionID)
	}
	if res.Result.Scores["persuasive"] != 3 {
		t.Errorf("persuasive = %d, want 3", res.Result.Scores["persuasive"])
	}

	_, _, err := conn.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		t.Errorf("close status = %v, want normal closure", websocket.CloseStatus(err))
	}
}

func TestAssessmentWS_RejectsBadAnswer(t *testing.T) {
	conn, ctx := dialAssessment(t, "user_id=u1&stream=commerce")

	var q api.Frame
	if err := wsjson.Read(ctx, conn, &q); err != nil {
		t.Fatalf("read question: %v", err)
	}

	if err := wsjson.Write(ctx, conn, api.Frame{Type: api.FrameAnswer, QuestionID: q.Question.ID, OptionID: "Z"}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	var errFrame api.Frame
	if err := wsjson.Read(ctx, conn, &errFrame); err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	if errFrame.Type != api.FrameError {
		t.Errorf("frame = %+v, want error", errFrame)
	}

	// The same question is asked again.
	var again api.Frame
	if err := wsjson.Read(ctx, conn, &again); err != nil {
		t.Fatalf("read repeated question: %v", err)
	}
	if again.Question == nil || again.Question.ID != q.Question.ID || again.Index != 1 {
		t.Errorf("repeated frame = %+v, want question %s again", again, q.Question.ID)
	}
}

func TestAssessmentWS_BadQuery(t *testing.T) {
	srv := httptest.NewServer(api.NewMux(api.NewHandler(testService(t))))
	defer srv.Close()

	tests := []struct {
		name  string
		query string
	}{
		{"missing stream", "user_id=u1"},
		{"unknown stream", "user_id=u1&stream=law"},
		{"missing user", "stream=commerce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/v1/ws/assessment?" + tt.query)
			if err != nil {
				t.Fatalf("GET error = %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestAssessmentWS_StreamNotInBank(t *testing.T) {
	conn, ctx := dialAssessment(t, "user_id=u1&stream=arts")

	var f api.Frame
	if err := wsjson.Read(ctx, conn, &f); err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.Type != api.FrameError {
		t.Errorf("frame = %+v, want error", f)
	}
	_, _, err := conn.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusPolicyViolation {
		t.Errorf("close status = %v, want policy violation", websocket.CloseStatus(err))
	}
}
