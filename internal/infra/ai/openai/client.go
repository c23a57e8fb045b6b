// Package openai adapts any OpenAI-compatible chat completion API (OpenAI, Groq)
// to the ai.Provider port.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
	"github.com/bryanwahyu/medcase/internal/infra/ai/content"
	"github.com/bryanwahyu/medcase/internal/infra/ai/prompt"
)

const (
	DefaultModel     = "gpt-4o-mini"
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	GroqDefaultModel = "meta-llama/llama-4-scout-17b-16e-instruct"

	defaultMaxTokens = 2048
)

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	// JSONMode asks the API to enforce a JSON object response.
	JSONMode bool
}

type Client struct {
	api  *openai.Client
	opts Options
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	return &Client{api: openai.NewClientWithConfig(cfg), opts: opts}
}

// NewGroq points the client at Groq's OpenAI-compatible endpoint.
func NewGroq(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = GroqBaseURL
	}
	if opts.Model == "" {
		opts.Model = GroqDefaultModel
	}
	return NewClient(opts)
}

func (c *Client) Model() string { return c.opts.Model }

// Infer sends the SOAP prompt with lab text and inline images in one chat completion.
func (c *Client) Infer(ctx context.Context, req ai.Request) (ai.Output, error) {
	labs := content.RenderLabs(ctx, req.Tables)
	images, err := content.Images(req.Images)
	if err != nil {
		return ai.Output{}, fmt.Errorf("%w: %v", ai.ErrProviderRejected, err)
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	text := prompt.UserPrompt(req.Narrative, labs, len(images))
	if len(images) == 0 {
		user.Content = text
	} else {
		user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: text})
		for _, img := range images {
			user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: img.DataURL(), Detail: openai.ImageURLDetailAuto},
			})
		}
	}

	creq := openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.SystemPrompt()},
			user,
		},
	}
	if c.opts.JSONMode {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	// reasoning models (o1/o3/o4/gpt-5*) only accept MaxCompletionTokens
	if isReasoningModel(c.opts.Model) {
		creq.MaxCompletionTokens = c.opts.MaxTokens
		creq.Temperature = 0
	} else {
		creq.MaxTokens = c.opts.MaxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, creq)
	if err != nil {
		return ai.Output{}, classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return ai.Output{}, fmt.Errorf("%w: no choices in completion", ai.ErrProviderUnavailable)
	}
	model := resp.Model
	if model == "" {
		model = c.opts.Model
	}
	return ai.Output{Text: resp.Choices[0].Message.Content, Model: model}, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func classify(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return fmt.Errorf("%w: %v", ai.ClassifyStatus(apiErr.HTTPStatusCode), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return fmt.Errorf("%w: %v", ai.ClassifyStatus(reqErr.HTTPStatusCode), err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ai.ErrProviderTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ai.ErrProviderTimeout, err)
	}
	return fmt.Errorf("%w: %v", ai.ErrProviderUnavailable, err)
}
