package ai

import "context"

// Provider is the external model-inference service. Implementations must be safe
// for concurrent use and must classify their failures with the errors in errors.go.
type Provider interface {
	Infer(ctx context.Context, req Request) (Output, error)
}
