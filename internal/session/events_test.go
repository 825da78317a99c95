package session_test

import (
	"context"
	"testing"

	"github.com/p-n-ai/career-guide/internal/session"
)

func TestMemoryEventLogger_LogEvent(t *testing.T) {
	logger := session.NewMemoryEventLogger()

	err := logger.LogEvent(context.Background(), session.Event{
		SessionID: "s-1",
		UserID:    "user-1",
		EventType: session.EventSessionCompleted,
		Data: map[string]any{
			"answered": 20,
		},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].EventType != session.EventSessionCompleted {
		t.Errorf("EventType = %q, want %q", events[0].EventType, session.EventSessionCompleted)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryEventLogger_RequiresType(t *testing.T) {
	logger := session.NewMemoryEventLogger()
	if err := logger.LogEvent(context.Background(), session.Event{SessionID: "s-1"}); err == nil {
		t.Error("expected error for empty event type")
	}
}

func TestNopEventLogger(t *testing.T) {
	if err := (session.NopEventLogger{}).LogEvent(context.Background(), session.Event{}); err != nil {
		t.Errorf("NopEventLogger.LogEvent() error = %v", err)
	}
}

func TestPostgresEventLogger_NilPool(t *testing.T) {
	logger := session.NewPostgresEventLogger(nil)

	err := logger.LogEvent(context.Background(), session.Event{
		SessionID: "s-1",
		EventType: session.EventSessionStarted,
	})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
	if err := logger.Migrate(context.Background()); err == nil {
		t.Fatal("expected Migrate error for nil pool")
	}
}
