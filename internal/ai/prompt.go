package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced mobile automation engineer.
Your job is to navigate an android device and perform actions to fulfill the request of the user.

<steps>
If the user asks to use a specific app in the request, open it before performing any other action.
If you do not know the package name of an app, use list_apps with a part of its name.
Do not take ui dump more than once per action. Every tap, swipe, type and press already returns the new ui dump, so only call dump_ui when you have no current view of the screen.
</steps>

<ui_dump>
The ui dump is a tree of elements. Each element has a type (button, input, text, image, checkbox, radio, list, card, dialpad_button, view),
optional text, desc and id, whether it is clickable, and its bounds as "[x1,y1][x2,y2]" in device pixels.
To tap an element, tap the center of its bounds.
</ui_dump>

When the task is complete, reply with a short summary of what you did and do not call any more tools.`

const toolErrorPrefix = "Error: "

const screenshotNote = "Screenshot attached in the next message."

func toolErrorText(err error) string {
	return toolErrorPrefix + err.Error()
}

// describeCall renders a tool call for progress output, e.g.
// `computer tap [540,1200]`
func describeCall(name string, input json.RawMessage) string {
	var fields map[string]any
	if err := json.Unmarshal(input, &fields); err != nil || len(fields) == 0 {
		return name
	}
	parts := []string{name}
	if action, ok := fields["action"].(string); ok {
		parts = append(parts, action)
	}
	for _, key := range []string{"name", "coordinate", "start_coordinate", "end_coordinate", "text", "duration"} {
		v, ok := fields[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%q", val))
		default:
			b, _ := json.Marshal(val)
			parts = append(parts, string(b))
		}
	}
	return strings.Join(parts, " ")
}
