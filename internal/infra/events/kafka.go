// Package events publishes case lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

const DefaultTopic = "medcase.case.created"

// CaseCreatedEvent carries metadata only; clinical content stays in the store.
type CaseCreatedEvent struct {
	CaseID           string    `json:"caseId"`
	ProcessingMethod string    `json:"processingMethod"`
	LabFiles         int       `json:"labFiles"`
	XrayFiles        int       `json:"xrayFiles"`
	TextFiles        int       `json:"textFiles"`
	CreatedAt        time.Time `json:"createdAt"`
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	w writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}}
}

// CaseCreated implements domain.EventPublisher.
func (p *Publisher) CaseCreated(ctx context.Context, rec *domain.Record) error {
	ev := CaseCreatedEvent{
		CaseID:           string(rec.ID),
		ProcessingMethod: rec.Metadata.ProcessingMethod,
		LabFiles:         rec.Metadata.FilesProcessed.LabFiles,
		XrayFiles:        rec.Metadata.FilesProcessed.XrayFiles,
		TextFiles:        rec.Metadata.FilesProcessed.TextFiles,
		CreatedAt:        rec.CreatedAt,
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.CaseID),
		Value: b,
		Time:  rec.CreatedAt,
	})
}

func (p *Publisher) Close() error { return p.w.Close() }
