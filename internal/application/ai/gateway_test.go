package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
)

type providerFunc func(ctx context.Context, req ai.Request) (ai.Output, error)

func (f providerFunc) Infer(ctx context.Context, req ai.Request) (ai.Output, error) {
	return f(ctx, req)
}

func TestGateway_Invoke_Provenance(t *testing.T) {
	p := providerFunc(func(ctx context.Context, req ai.Request) (ai.Output, error) {
		return ai.Output{Text: "  Likely musculoskeletal; recommend ECG\n", Model: "m"}, nil
	})
	g := NewGateway(p, "openai:gpt-4o-mini", time.Second)

	req := ai.Request{
		Narrative: "Patient reports chest pain",
		Tables:    []ai.Attachment{{Name: "labs.csv"}, {Name: "cbc.pdf"}},
		Images:    []ai.Attachment{{Name: "chest.png"}},
		TextFiles: 1,
	}
	res, err := g.Invoke(context.Background(), req)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.Summary != "Likely musculoskeletal; recommend ECG" {
		t.Errorf("Summary = %q", res.Summary)
	}
	if res.SOAPNote != nil {
		t.Errorf("SOAPNote = %+v, want nil for plain text", res.SOAPNote)
	}
	want := ai.Metadata{
		ProcessingMethod: "openai:gpt-4o-mini",
		FilesProcessed:   ai.FilesProcessed{LabFiles: 2, XrayFiles: 1, TextFiles: 1},
	}
	if res.Metadata != want {
		t.Errorf("Metadata = %+v, want %+v", res.Metadata, want)
	}
}

func TestGateway_Invoke_Timeout(t *testing.T) {
	p := providerFunc(func(ctx context.Context, req ai.Request) (ai.Output, error) {
		<-ctx.Done()
		return ai.Output{}, ctx.Err()
	})
	g := NewGateway(p, "test", 20*time.Millisecond)

	_, err := g.Invoke(context.Background(), ai.Request{})
	if !errors.Is(err, ai.ErrProviderTimeout) {
		t.Fatalf("Invoke() error = %v, want ErrProviderTimeout", err)
	}
}

func TestGateway_Invoke_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited passes through", ai.ErrProviderRateLimited, ai.ErrProviderRateLimited},
		{"rejected passes through", ai.ErrProviderRejected, ai.ErrProviderRejected},
		{"deadline becomes timeout", context.DeadlineExceeded, ai.ErrProviderTimeout},
		{"opaque becomes unavailable", errors.New("connection reset"), ai.ErrProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := providerFunc(func(ctx context.Context, req ai.Request) (ai.Output, error) {
				return ai.Output{}, tt.err
			})
			_, err := NewGateway(p, "test", time.Second).Invoke(context.Background(), ai.Request{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Invoke() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGateway_Invoke_EmptyOutput(t *testing.T) {
	p := providerFunc(func(ctx context.Context, req ai.Request) (ai.Output, error) {
		return ai.Output{Text: "   "}, nil
	})
	_, err := NewGateway(p, "test", time.Second).Invoke(context.Background(), ai.Request{})
	if !errors.Is(err, ai.ErrProviderUnavailable) {
		t.Fatalf("Invoke() error = %v, want ErrProviderUnavailable", err)
	}
}

func TestParseSOAPNote(t *testing.T) {
	fenced := "```json\n{\"Subjective\": \"chest pain\", \"Objective\": {\"Vital_Signs\": \"n/a\",}, \"Assessment\": \"MSK\", \"Plan\": {\"Immediate\": \"ECG\"},}\n```"
	note := ParseSOAPNote(fenced)
	if note == nil {
		t.Fatal("ParseSOAPNote() = nil, want note")
	}
	if note.Subjective != "chest pain" || note.Assessment != "MSK" || note.Plan.Immediate != "ECG" || note.Objective.VitalSigns != "n/a" {
		t.Errorf("note = %+v", note)
	}

	for _, in := range []string{"plain text summary", "{}", "{not json", `{"foo": "bar"}`} {
		if got := ParseSOAPNote(in); got != nil {
			t.Errorf("ParseSOAPNote(%q) = %+v, want nil", in, got)
		}
	}
}
