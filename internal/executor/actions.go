package executor

// Action represents a single device action requested by the model
type Action struct {
	Type            string    `json:"action"`                     // dump_ui, tap, double_tap, swipe, type, press, wait, screenshot
	Coordinate      []float64 `json:"coordinate,omitempty"`       // [x, y] for tap and double_tap
	StartCoordinate []float64 `json:"start_coordinate,omitempty"` // [x, y] swipe start
	EndCoordinate   []float64 `json:"end_coordinate,omitempty"`   // [x, y] swipe end
	Text            string    `json:"text,omitempty"`             // text to type, or key name for press
	Duration        int       `json:"duration,omitempty"`         // ms, for swipe and wait
}

// Action types
const (
	ActionDumpUI     = "dump_ui"
	ActionTap        = "tap"
	ActionDoubleTap  = "double_tap"
	ActionSwipe      = "swipe"
	ActionType       = "type"
	ActionPress      = "press"
	ActionWait       = "wait"
	ActionScreenshot = "screenshot"
)

// Result is what an action returns to the model: either text or a PNG image
type Result struct {
	Text  string
	Image []byte
}

// IsImage reports whether the result carries a screenshot
func (r *Result) IsImage() bool {
	return len(r.Image) > 0
}

// MarkerKind is the kind of touch drawn on a recorded frame
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerTap
	MarkerSwipe
)

// Marker records where a touch happened, in device pixels
type Marker struct {
	Kind MarkerKind
	X    int
	Y    int
	EndX int // swipe only
	EndY int
}
