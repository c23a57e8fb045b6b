package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

type captureWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func (c *captureWriter) Close() error { c.closed = true; return nil }

func TestPublisher_CaseCreated(t *testing.T) {
	w := &captureWriter{}
	p := &Publisher{w: w}
	created := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	rec := &domain.Record{
		ID: "case-9",
		Result: ai.Result{
			Summary: "patient has chest pain",
			Metadata: ai.Metadata{
				ProcessingMethod: "openai:gpt-4o-mini",
				FilesProcessed:   ai.FilesProcessed{LabFiles: 1, XrayFiles: 2},
			},
		},
		CreatedAt: created,
	}
	if err := p.CaseCreated(context.Background(), rec); err != nil {
		t.Fatalf("CaseCreated() error = %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "case-9" {
		t.Errorf("Key = %q", msg.Key)
	}

	var ev CaseCreatedEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := CaseCreatedEvent{CaseID: "case-9", ProcessingMethod: "openai:gpt-4o-mini", LabFiles: 1, XrayFiles: 2, CreatedAt: created}
	if !ev.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", ev.CreatedAt, want.CreatedAt)
	}
	ev.CreatedAt = want.CreatedAt
	if ev != want {
		t.Errorf("event = %+v, want %+v", ev, want)
	}
	if containsSummary(msg.Value) {
		t.Error("event leaks clinical summary")
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close() = %v, closed = %v", err, w.closed)
	}
}

func containsSummary(b []byte) bool {
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	_, ok := m["summary"]
	return ok
}
