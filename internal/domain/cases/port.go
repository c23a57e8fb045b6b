package cases

import (
	"context"
)

// Repository port (case store). Put never overwrites and Get never creates.
type Repository interface {
	Put(ctx context.Context, r *Record) error
	Get(ctx context.Context, id CaseID) (*Record, error)
}

// UploadArchive keeps the raw submitted files of a case for audit.
type UploadArchive interface {
	ArchiveUploads(ctx context.Context, id CaseID, files []ValidatedFile) error
}

// EventPublisher announces newly persisted cases.
type EventPublisher interface {
	CaseCreated(ctx context.Context, r *Record) error
}
