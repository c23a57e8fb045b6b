// Package gemini adapts Google's Gemini API to the ai.Provider port.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
	"github.com/bryanwahyu/medcase/internal/infra/ai/content"
	"github.com/bryanwahyu/medcase/internal/infra/ai/prompt"
)

const DefaultModel = "gemini-1.5-flash"

type Options struct {
	APIKey      string
	Model       string
	Endpoint    string
	MaxTokens   int
	Temperature float32
}

type Client struct {
	cl   *genai.Client
	opts Options
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	if opts.APIKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	cl, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Client{cl: cl, opts: opts}, nil
}

func (c *Client) Model() string { return c.opts.Model }

func (c *Client) Close() error { return c.cl.Close() }

func (c *Client) Infer(ctx context.Context, req ai.Request) (ai.Output, error) {
	m := c.cl.GenerativeModel(c.opts.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(c.opts.Temperature),
		ResponseMIMEType: "application/json",
	}
	if c.opts.MaxTokens > 0 {
		m.GenerationConfig.MaxOutputTokens = ptrInt32(int32(c.opts.MaxTokens))
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.SystemPrompt())}}

	parts, err := buildParts(ctx, req)
	if err != nil {
		return ai.Output{}, fmt.Errorf("%w: %v", ai.ErrProviderRejected, err)
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return ai.Output{}, classify(ctx, err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return ai.Output{}, fmt.Errorf("%w: empty gemini response", ai.ErrProviderUnavailable)
	}
	return ai.Output{Text: txt, Model: c.opts.Model}, nil
}

// buildParts puts the prompt text first, then one blob per image.
func buildParts(ctx context.Context, req ai.Request) ([]genai.Part, error) {
	images, err := content.Images(req.Images)
	if err != nil {
		return nil, err
	}
	labs := content.RenderLabs(ctx, req.Tables)

	parts := []genai.Part{genai.Text(prompt.UserPrompt(req.Narrative, labs, len(images)))}
	for _, img := range images {
		parts = append(parts, genai.Blob{MIMEType: img.MIME, Data: img.Data})
	}
	return parts, nil
}

// httpCoder matches apierror.APIError without importing gax.
type httpCoder interface{ HTTPCode() int }

func classify(ctx context.Context, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code != 0 {
		return fmt.Errorf("%w: %v", ai.ClassifyStatus(gErr.Code), err)
	}
	var hc httpCoder
	if errors.As(err, &hc) && hc.HTTPCode() > 0 {
		return fmt.Errorf("%w: %v", ai.ClassifyStatus(hc.HTTPCode()), err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ai.ErrProviderTimeout, err)
	}
	return fmt.Errorf("%w: %v", ai.ErrProviderUnavailable, err)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
