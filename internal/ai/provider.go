package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/v0xg/mobileuse/internal/executor"
)

// ErrMaxSteps is returned when the model keeps calling tools past the step limit
var ErrMaxSteps = errors.New("max steps reached")

// DefaultMaxSteps bounds the number of model turns per task
const DefaultMaxSteps = 100

// Tools is what the agent loop can call
type Tools interface {
	Specs() []executor.ToolSpec
	Call(ctx context.Context, name string, input json.RawMessage) (*executor.Result, error)
}

// Result is the outcome of a finished task
type Result struct {
	Text      string // final assistant message
	Steps     int    // model turns taken
	ToolCalls int
}

// Options configures the agent loop
type Options struct {
	MaxSteps int
	Logger   logrus.FieldLogger

	// OnToolCall is invoked before each tool call, for progress output
	OnToolCall func(step int, call string)
}

func (o Options) withDefaults() Options {
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		o.Logger = l
	}
	return o
}

// Provider runs a task to completion with an LLM driving the tools
type Provider interface {
	Run(ctx context.Context, task string, tools Tools) (*Result, error)
}

// NewProvider creates a new AI provider based on the provider name
func NewProvider(name, model string, opts Options) (Provider, error) {
	switch name {
	case "claude", "anthropic":
		return NewClaudeProvider(model, opts)
	case "openai", "gpt":
		return NewOpenAIProvider(model, opts)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", name)
	}
}

// callTool runs one tool call, logging it and notifying the progress hook.
// Tool failures are returned as results so the model can react to them.
func callTool(ctx context.Context, tools Tools, opts Options, step int, name string, input json.RawMessage) (*executor.Result, bool) {
	call := describeCall(name, input)
	if opts.OnToolCall != nil {
		opts.OnToolCall(step, call)
	}

	res, err := tools.Call(ctx, name, input)
	log := opts.Logger.WithFields(logrus.Fields{"step": step, "tool": name})
	if err != nil {
		log.WithError(err).Warn("tool call failed")
		return &executor.Result{Text: toolErrorText(err)}, true
	}
	log.Debug("tool call done")
	return res, false
}
