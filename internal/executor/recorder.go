package executor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"sync"
)

// Frame is one recorded screen with the touch that led to it
type Frame struct {
	Image  image.Image
	Marker Marker
}

// Recorder collects frames for a session recording
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Add decodes a PNG screenshot and appends it as a frame
func (r *Recorder) Add(png []byte, marker Marker) error {
	img, _, err := image.Decode(bytes.NewReader(png))
	if err != nil {
		return fmt.Errorf("decode screenshot: %w", err)
	}
	r.mu.Lock()
	r.frames = append(r.frames, Frame{Image: img, Marker: marker})
	r.mu.Unlock()
	return nil
}

// Frames returns the recorded frames in order
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}
