package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/v0xg/mobileuse/internal/executor"
)

// ClaudeProvider implements the Provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client *anthropic.Client
	model  string
	opts   Options
}

// NewClaudeProvider creates a new Claude provider
func NewClaudeProvider(model string, opts Options) (*ClaudeProvider, error) {
	apiKey := os.Getenv("MOBILEUSE_ANTHROPIC_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("MOBILEUSE_ANTHROPIC_KEY or ANTHROPIC_API_KEY environment variable required")
	}
	return newClaudeProvider(model, opts, option.WithAPIKey(apiKey), option.WithMaxRetries(3)), nil
}

func newClaudeProvider(model string, opts Options, reqOpts ...option.RequestOption) *ClaudeProvider {
	client := anthropic.NewClient(reqOpts...)
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}
	return &ClaudeProvider{
		client: &client,
		model:  model,
		opts:   opts.withDefaults(),
	}
}

// Run drives the task until Claude stops calling tools
func (p *ClaudeProvider) Run(ctx context.Context, task string, tools Tools) (*Result, error) {
	toolParams := claudeTools(tools.Specs())
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(task)),
	}
	result := &Result{}

	for step := 1; step <= p.opts.MaxSteps; step++ {
		resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(p.model),
			MaxTokens: 4096,
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: messages,
			Tools:    toolParams,
		})
		if err != nil {
			return nil, fmt.Errorf("Claude API error: %w", err)
		}
		result.Steps = step
		messages = append(messages, resp.ToParam())

		var (
			text    []string
			results []anthropic.ContentBlockParamUnion
		)
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				text = append(text, block.Text)
			case "tool_use":
				res, isErr := callTool(ctx, tools, p.opts, step, block.Name, block.Input)
				result.ToolCalls++
				results = append(results, claudeToolResult(block.ID, res, isErr))
			}
		}

		if len(results) == 0 {
			result.Text = strings.TrimSpace(strings.Join(text, "\n"))
			return result, nil
		}
		messages = append(messages, anthropic.NewUserMessage(results...))
	}

	return nil, fmt.Errorf("%w (%d)", ErrMaxSteps, p.opts.MaxSteps)
}

func claudeTools(specs []executor.ToolSpec) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, s := range specs {
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        s.Name,
				Description: anthropic.String(s.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: s.Properties,
					Required:   s.Required,
				},
			},
		})
	}
	return out
}

func claudeToolResult(toolUseID string, res *executor.Result, isErr bool) anthropic.ContentBlockParamUnion {
	if !res.IsImage() {
		return anthropic.NewToolResultBlock(toolUseID, res.Text, isErr)
	}
	return anthropic.ContentBlockParamUnion{
		OfToolResult: &anthropic.ToolResultBlockParam{
			ToolUseID: toolUseID,
			Content: []anthropic.ToolResultBlockParamContentUnion{
				{
					OfImage: &anthropic.ImageBlockParam{
						Source: anthropic.ImageBlockParamSourceUnion{
							OfBase64: &anthropic.Base64ImageSourceParam{
								Data:      base64.StdEncoding.EncodeToString(res.Image),
								MediaType: anthropic.Base64ImageSourceMediaTypeImagePNG,
							},
						},
					},
				},
			},
		},
	}
}
