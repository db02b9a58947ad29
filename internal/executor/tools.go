package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/v0xg/mobileuse/internal/device"
)

// ErrUnknownTool is returned by Toolbox.Call for unregistered tool names
var ErrUnknownTool = errors.New("unknown tool")

// Tool names exposed to the model
const (
	ToolComputer = "computer"
	ToolOpenApp  = "open_app"
	ToolListApps = "list_apps"
)

// ToolSpec describes a tool in a provider-neutral way
type ToolSpec struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

// Schema returns the JSON schema object for the tool input
func (s ToolSpec) Schema() map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": s.Properties,
	}
	if len(s.Required) > 0 {
		schema["required"] = s.Required
	}
	return schema
}

const computerDescription = `Mobile tool to perform actions on a mobile device.
The display is %dx%d pixels. Coordinates are [x, y] in device pixels.
You have the following actions:
dump_ui: Use this action to get current screen and associated UI elements that you can interact with.
tap: Use this to tap. You need to provide coordinate.
double_tap: Use this to double tap. You need to provide coordinate.
swipe: Use this to swipe. You need to provide start_coordinate and end_coordinate to start your swipe to end.
type: Use this to type what you want to. Provide what you want to type in text.
press: Any key you want to press. Provide the key as text. Supported keys: %s.
wait: Wait for duration milliseconds.
screenshot: Take a screenshot of the current screen.`

var coordinateSchema = map[string]any{
	"type":     "array",
	"items":    map[string]any{"type": "number"},
	"minItems": 2,
	"maxItems": 2,
}

// Toolbox exposes the device to the model as tools
type Toolbox struct {
	exec   *Executor
	dev    Device
	screen device.Size
}

// NewToolbox creates a toolbox. screen is advertised in the computer tool
// description.
func NewToolbox(exec *Executor, dev Device, screen device.Size) *Toolbox {
	return &Toolbox{exec: exec, dev: dev, screen: screen}
}

// Specs returns the tool definitions
func (t *Toolbox) Specs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        ToolComputer,
			Description: fmt.Sprintf(computerDescription, t.screen.Width, t.screen.Height, strings.Join(device.SupportedKeys(), ", ")),
			Properties: map[string]any{
				"action": map[string]any{
					"type": "string",
					"enum": []string{
						ActionDumpUI, ActionTap, ActionDoubleTap, ActionSwipe,
						ActionType, ActionPress, ActionWait, ActionScreenshot,
					},
				},
				"coordinate":       coordinateSchema,
				"start_coordinate": coordinateSchema,
				"end_coordinate":   coordinateSchema,
				"text":             map[string]any{"type": "string"},
				"duration":         map[string]any{"type": "integer", "description": "milliseconds"},
			},
			Required: []string{"action"},
		},
		{
			Name:        ToolOpenApp,
			Description: "Open an app on the android device.",
			Properties: map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "package name of the app to open such as com.google.android.dialer",
				},
			},
			Required: []string{"name"},
		},
		{
			Name:        ToolListApps,
			Description: "Use this to list installed packages.",
			Properties: map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Name of the package to filter.",
				},
			},
		},
	}
}

type appInput struct {
	Name string `json:"name"`
}

// Call dispatches a tool invocation
func (t *Toolbox) Call(ctx context.Context, name string, input json.RawMessage) (*Result, error) {
	switch name {
	case ToolComputer:
		var action Action
		if err := json.Unmarshal(input, &action); err != nil {
			return nil, fmt.Errorf("invalid computer input: %w", err)
		}
		return t.exec.Execute(ctx, action)

	case ToolOpenApp:
		var in appInput
		if err := json.Unmarshal(input, &in); err != nil {
			return nil, fmt.Errorf("invalid open_app input: %w", err)
		}
		if in.Name == "" {
			return nil, fmt.Errorf("%w: name is required for open_app", ErrMissingArgument)
		}
		if err := t.dev.OpenApp(ctx, in.Name); err != nil {
			return nil, err
		}
		return &Result{Text: "Successfully opened " + in.Name}, nil

	case ToolListApps:
		var in appInput
		if len(input) > 0 {
			if err := json.Unmarshal(input, &in); err != nil {
				return nil, fmt.Errorf("invalid list_apps input: %w", err)
			}
		}
		pkgs, err := t.dev.ListPackages(ctx, in.Name)
		if err != nil {
			return nil, err
		}
		if len(pkgs) == 0 {
			return &Result{Text: "No packages found."}, nil
		}
		return &Result{Text: strings.Join(pkgs, "\n")}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}
