package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/v0xg/mobileuse/internal/executor"
)

// RippleRadius is the radius of the tap indicator in device pixels
const RippleRadius = 40

var (
	rippleColor = color.RGBA{66, 133, 244, 255}
	trailColor  = color.RGBA{234, 67, 53, 255}
)

// ApplyMarkers draws each frame's touch marker and returns the new images
func ApplyMarkers(frames []executor.Frame) []image.Image {
	result := make([]image.Image, len(frames))
	for i, f := range frames {
		result[i] = drawMarkerOnFrame(f.Image, f.Marker)
	}
	return result
}

// drawMarkerOnFrame creates a new image with the touch marker overlaid
func drawMarkerOnFrame(frame image.Image, m executor.Marker) *image.RGBA {
	bounds := frame.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, frame, bounds.Min, draw.Src)

	switch m.Kind {
	case executor.MarkerTap:
		drawRipple(result, m.X, m.Y, RippleRadius)
		drawRipple(result, m.X, m.Y, RippleRadius/2)
	case executor.MarkerSwipe:
		drawThickLine(result, m.X, m.Y, m.EndX, m.EndY, trailColor)
		drawRipple(result, m.X, m.Y, RippleRadius/2)
		drawArrowHead(result, m.X, m.Y, m.EndX, m.EndY)
	}
	return result
}

// drawRipple draws a 3px circle outline
func drawRipple(img *image.RGBA, x, y, radius int) {
	for angle := 0.0; angle < 360; angle += 0.5 {
		rad := angle * math.Pi / 180
		px := x + int(float64(radius)*math.Cos(rad))
		py := y + int(float64(radius)*math.Sin(rad))
		for d := -1; d <= 1; d++ {
			setPixelSafe(img, px+d, py, rippleColor)
			setPixelSafe(img, px, py+d, rippleColor)
		}
	}
}

func drawThickLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	for d := -2; d <= 2; d++ {
		drawLine(img, x1+d, y1, x2+d, y2, c)
		drawLine(img, x1, y1+d, x2, y2+d, c)
	}
}

// drawArrowHead draws two short strokes at the swipe end pointing back
// along the swipe direction
func drawArrowHead(img *image.RGBA, x1, y1, x2, y2 int) {
	angle := math.Atan2(float64(y2-y1), float64(x2-x1))
	length := float64(RippleRadius)
	for _, spread := range []float64{math.Pi / 6, -math.Pi / 6} {
		a := angle + math.Pi + spread
		ex := x2 + int(length*math.Cos(a))
		ey := y2 + int(length*math.Sin(a))
		drawThickLine(img, x2, y2, ex, ey, trailColor)
	}
}

// drawLine draws a line between two points using Bresenham's algorithm
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		setPixelSafe(img, x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func setPixelSafe(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
