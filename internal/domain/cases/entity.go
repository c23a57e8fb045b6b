package cases

import (
	"time"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
)

// CaseID is the opaque retrieval key of a Record.
type CaseID string

// Record is the durable case entity. It is created once per successful
// analysis and never mutated afterwards.
type Record struct {
	ID CaseID `json:"case_id"`
	ai.Result
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy so stores never share memory with callers.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.SOAPNote != nil {
		note := *r.SOAPNote
		out.SOAPNote = &note
	}
	return &out
}
