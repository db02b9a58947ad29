package device

import (
	"errors"
	"sort"
)

// ErrUnsupportedKey is returned by KeyPress for keys without a keycode mapping
var ErrUnsupportedKey = errors.New("unsupported key")

// keyEvents maps agent-facing key names to Android keycodes
var keyEvents = map[string]string{
	"Enter":      "KEYCODE_ENTER",
	"Backspace":  "KEYCODE_DEL",
	"Tab":        "KEYCODE_TAB",
	"ArrowUp":    "KEYCODE_DPAD_UP",
	"ArrowDown":  "KEYCODE_DPAD_DOWN",
	"ArrowLeft":  "KEYCODE_DPAD_LEFT",
	"ArrowRight": "KEYCODE_DPAD_RIGHT",
	"Escape":     "KEYCODE_ESCAPE",
	"Home":       "KEYCODE_HOME",
	"Back":       "KEYCODE_BACK",
}

// KeyCode returns the Android keycode for a key name
func KeyCode(key string) (string, bool) {
	code, ok := keyEvents[key]
	return code, ok
}

// SupportedKeys lists the key names accepted by KeyPress, sorted
func SupportedKeys() []string {
	keys := make([]string, 0, len(keyEvents))
	for k := range keyEvents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
