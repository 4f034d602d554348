package recommend_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-classmatch/internal/platform/database/dbtest"
	"github.com/p-n-ai/pai-classmatch/internal/recommend"
)

func TestMemoryEventLogger_LogEvent(t *testing.T) {
	logger := recommend.NewMemoryEventLogger()

	err := logger.LogEvent(context.Background(), recommend.Event{
		StudentID: "student-1",
		EventType: recommend.EventAlternativesRanked,
		Data: map[string]any{
			"matches": 2,
		},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].EventType != recommend.EventAlternativesRanked {
		t.Errorf("EventType = %q, want %s", events[0].EventType, recommend.EventAlternativesRanked)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if events[0].ID == uuid.Nil {
		t.Error("ID should be set")
	}
}

func TestMemoryEventLogger_RequiresType(t *testing.T) {
	logger := recommend.NewMemoryEventLogger()
	if err := logger.LogEvent(context.Background(), recommend.Event{StudentID: "s"}); err == nil {
		t.Fatal("expected error for missing event type")
	}
	if len(logger.Events()) != 0 {
		t.Error("invalid event should not be stored")
	}
}

func TestPostgresEventLogger_LogEvent_NilPool(t *testing.T) {
	logger := recommend.NewPostgresEventLogger(nil)

	err := logger.LogEvent(context.Background(), recommend.Event{
		EventType: recommend.EventAlternativesRanked,
	})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
}

func TestPostgresEventLogger_LogEvent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	logger := recommend.NewPostgresEventLogger(db.Pool)

	id := uuid.New()
	err := logger.LogEvent(ctx, recommend.Event{
		ID:        id,
		StudentID: "student-1",
		EventType: recommend.EventAlternativesRanked,
		Data:      map[string]any{"top_class_id": "class-b"},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	var eventType, topClass string
	err = db.Pool.QueryRow(ctx,
		`SELECT event_type, data->>'top_class_id' FROM recommendation_events WHERE id = $1`,
		id.String(),
	).Scan(&eventType, &topClass)
	if err != nil {
		t.Fatalf("querying event: %v", err)
	}
	if eventType != recommend.EventAlternativesRanked || topClass != "class-b" {
		t.Errorf("stored event = %s %s", eventType, topClass)
	}
}
