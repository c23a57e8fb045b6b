package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
)

// DefaultTimeout bounds one provider call when the gateway is built without one.
const DefaultTimeout = 120 * time.Second

// Gateway sends one request to the provider and turns the answer into a Result.
// It never retries; that decision belongs to the caller.
type Gateway struct {
	provider ai.Provider
	method   string
	timeout  time.Duration
}

func NewGateway(provider ai.Provider, method string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{provider: provider, method: method, timeout: timeout}
}

// Method is the processing-method label stamped on every result.
func (g *Gateway) Method() string { return g.method }

func (g *Gateway) Invoke(ctx context.Context, req ai.Request) (ai.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.provider.Infer(ctx, req)
	if err != nil {
		return ai.Result{}, classify(ctx, err)
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return ai.Result{}, fmt.Errorf("empty completion: %w", ai.ErrProviderUnavailable)
	}

	return ai.Result{
		Summary:  text,
		SOAPNote: ParseSOAPNote(text),
		Metadata: ai.Metadata{
			ProcessingMethod: g.method,
			FilesProcessed: ai.FilesProcessed{
				LabFiles:  len(req.Tables),
				XrayFiles: len(req.Images),
				TextFiles: req.TextFiles,
			},
		},
	}, nil
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ai.ErrProviderTimeout),
		errors.Is(err, ai.ErrProviderRateLimited),
		errors.Is(err, ai.ErrProviderRejected),
		errors.Is(err, ai.ErrProviderUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ai.ErrProviderTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ai.ErrProviderUnavailable, err)
	}
}
