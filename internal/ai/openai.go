package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/v0xg/mobileuse/internal/executor"
)

const (
	openAIMaxRetries   = 3
	openAIRetryBackoff = time.Second
)

// OpenAIProvider implements the Provider interface using OpenAI
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	opts    Options
	backoff time.Duration // grows linearly per attempt
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(model string, opts Options) (*OpenAIProvider, error) {
	apiKey := os.Getenv("MOBILEUSE_OPENAI_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("MOBILEUSE_OPENAI_KEY or OPENAI_API_KEY environment variable required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL := os.Getenv("MOBILEUSE_OPENAI_BASE_URL"); baseURL != "" {
		config.BaseURL = baseURL
	}
	return newOpenAIProvider(model, opts, config), nil
}

func newOpenAIProvider(model string, opts Options, config openai.ClientConfig) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		opts:    opts.withDefaults(),
		backoff: openAIRetryBackoff,
	}
}

// Run drives the task until the model stops calling tools
func (p *OpenAIProvider) Run(ctx context.Context, task string, tools Tools) (*Result, error) {
	toolDefs := openAITools(tools.Specs())
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: task,
		},
	}
	result := &Result{}

	for step := 1; step <= p.opts.MaxSteps; step++ {
		resp, err := p.createChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    p.model,
			Messages: messages,
			Tools:    toolDefs,
		})
		if err != nil {
			return nil, fmt.Errorf("OpenAI API error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("empty response from OpenAI")
		}
		result.Steps = step

		msg := resp.Choices[0].Message
		messages = append(messages, msg)
		if len(msg.ToolCalls) == 0 {
			result.Text = msg.Content
			return result, nil
		}

		// tool messages cannot carry images, so screenshots follow as a user message
		var images []openai.ChatMessagePart
		for _, tc := range msg.ToolCalls {
			res, _ := callTool(ctx, tools, p.opts, step, tc.Function.Name, json.RawMessage(tc.Function.Arguments))
			result.ToolCalls++

			content := res.Text
			if res.IsImage() {
				content = screenshotNote
				images = append(images, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(res.Image),
						Detail: openai.ImageURLDetailAuto,
					},
				})
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    content,
				Name:       tc.Function.Name,
				ToolCallID: tc.ID,
			})
		}
		if len(images) > 0 {
			parts := append([]openai.ChatMessagePart{{
				Type: openai.ChatMessagePartTypeText,
				Text: "Current screen:",
			}}, images...)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			})
		}
	}

	return nil, fmt.Errorf("%w (%d)", ErrMaxSteps, p.opts.MaxSteps)
}

// createChatCompletion retries rate limits and server errors with linear backoff
func (p *OpenAIProvider) createChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	var (
		resp openai.ChatCompletionResponse
		err  error
	)
	for attempt := 0; attempt <= openAIMaxRetries; attempt++ {
		if attempt > 0 {
			p.opts.Logger.WithError(err).WithField("attempt", attempt).Warn("retrying OpenAI request")
			select {
			case <-time.After(time.Duration(attempt) * p.backoff):
			case <-ctx.Done():
				return resp, ctx.Err()
			}
		}
		resp, err = p.client.CreateChatCompletion(ctx, req)
		if err == nil || !retryable(err) {
			return resp, err
		}
	}
	return resp, err
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return false
}

func openAITools(specs []executor.ToolSpec) []openai.Tool {
	out := make([]openai.Tool, 0, len(specs))
	for _, s := range specs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  s.Schema(),
			},
		})
	}
	return out
}
