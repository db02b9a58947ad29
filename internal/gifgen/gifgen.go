package gifgen

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"sort"
	"time"

	"github.com/nfnt/resize"
)

// Options configures GIF generation
type Options struct {
	FrameDelay time.Duration // how long each screen is shown
	MaxWidth   uint
}

const (
	defaultFrameDelay = 1500 * time.Millisecond
	defaultMaxWidth   = 360
)

// Generate writes frames as a looping GIF to outputPath and returns the file size
func Generate(frames []image.Image, outputPath string, opts Options) (int64, error) {
	if len(frames) == 0 {
		return 0, fmt.Errorf("no frames to encode")
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return 0, err
	}

	if err := Encode(f, frames, opts); err != nil {
		f.Close()
		os.Remove(outputPath)
		return 0, err
	}
	if err := f.Close(); err != nil {
		os.Remove(outputPath)
		return 0, err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Encode writes frames as a looping GIF to w
func Encode(w io.Writer, frames []image.Image, opts Options) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	if opts.FrameDelay <= 0 {
		opts.FrameDelay = defaultFrameDelay
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = defaultMaxWidth
	}

	// Delay is in 100ths of a second
	delay := int(opts.FrameDelay / (10 * time.Millisecond))

	for i, frame := range frames {
		if frame == nil || frame.Bounds().Empty() {
			return fmt.Errorf("frame %d is empty", i)
		}
	}

	bounds := frames[0].Bounds()
	outputWidth := opts.MaxWidth
	if uint(bounds.Dx()) < outputWidth {
		outputWidth = uint(bounds.Dx())
	}
	aspectRatio := float64(bounds.Dy()) / float64(bounds.Dx())
	outputHeight := uint(float64(outputWidth) * aspectRatio)

	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		LoopCount: 0, // Infinite loop
	}

	palette := generatePalette(frames[0])

	for i, frame := range frames {
		resized := resize.Resize(outputWidth, outputHeight, frame, resize.Lanczos3)

		paletted := image.NewPaletted(resized.Bounds(), palette)
		draw.FloydSteinberg.Draw(paletted, resized.Bounds(), resized, image.Point{})

		g.Image[i] = paletted
		g.Delay[i] = delay
	}

	return gif.EncodeAll(w, g)
}

// generatePalette builds a 256-color palette from the most frequent colors
// of a sampled image, padded with grays
func generatePalette(img image.Image) color.Palette {
	bounds := img.Bounds()
	colorMap := make(map[color.RGBA]int)

	step := 4
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, _ := img.At(x, y).RGBA()
			c := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
			colorMap[c]++
		}
	}

	type colorCount struct {
		c     color.RGBA
		count int
	}
	colors := make([]colorCount, 0, len(colorMap))
	for c, count := range colorMap {
		colors = append(colors, colorCount{c, count})
	}
	sort.Slice(colors, func(i, j int) bool {
		if colors[i].count != colors[j].count {
			return colors[i].count > colors[j].count
		}
		a, b := colors[i].c, colors[j].c
		return uint32(a.R)<<16|uint32(a.G)<<8|uint32(a.B) < uint32(b.R)<<16|uint32(b.G)<<8|uint32(b.B)
	})

	palette := make(color.Palette, 0, 256)
	// marker colors always survive quantization
	palette = append(palette,
		color.RGBA{66, 133, 244, 255},
		color.RGBA{234, 67, 53, 255},
	)
	for i := 0; i < len(colors) && len(palette) < 256; i++ {
		palette = append(palette, colors[i].c)
	}
	for len(palette) < 256 {
		gray := uint8(len(palette))
		palette = append(palette, color.RGBA{gray, gray, gray, 255})
	}
	return palette
}
