package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/mobileuse/internal/device"
	"github.com/v0xg/mobileuse/internal/uidump"
)

type fakeDevice struct {
	calls []string
	tree  *uidump.Element
	png   []byte
	pkgs  []string
	err   error
}

func (f *fakeDevice) Tap(ctx context.Context, p device.Point) error {
	f.calls = append(f.calls, fmt.Sprintf("tap %d %d", p.X, p.Y))
	return f.err
}

func (f *fakeDevice) DoubleTap(ctx context.Context, p device.Point) error {
	f.calls = append(f.calls, fmt.Sprintf("double_tap %d %d", p.X, p.Y))
	return f.err
}

func (f *fakeDevice) Swipe(ctx context.Context, start, end device.Point, d time.Duration) error {
	f.calls = append(f.calls, fmt.Sprintf("swipe %d %d %d %d %s", start.X, start.Y, end.X, end.Y, d))
	return f.err
}

func (f *fakeDevice) Type(ctx context.Context, text string) error {
	f.calls = append(f.calls, "type "+text)
	return f.err
}

func (f *fakeDevice) KeyPress(ctx context.Context, key string) error {
	f.calls = append(f.calls, "press "+key)
	return f.err
}

func (f *fakeDevice) Screenshot(ctx context.Context) ([]byte, error) {
	f.calls = append(f.calls, "screenshot")
	return f.png, f.err
}

func (f *fakeDevice) DumpUI(ctx context.Context) (*uidump.Element, error) {
	f.calls = append(f.calls, "dump_ui")
	return f.tree, nil
}

func (f *fakeDevice) ListPackages(ctx context.Context, filter string) ([]string, error) {
	f.calls = append(f.calls, "list "+filter)
	return f.pkgs, f.err
}

func (f *fakeDevice) OpenApp(ctx context.Context, pkg string) error {
	f.calls = append(f.calls, "open "+pkg)
	return f.err
}

var okTree = &uidump.Element{Type: "button", Text: "OK", Clickable: true, Bounds: "[0,0][10,10]"}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestExecute_TapDumpsAfterwards(t *testing.T) {
	dev := &fakeDevice{tree: okTree}
	res, err := New(dev, Options{}).Execute(context.Background(), Action{Type: ActionTap, Coordinate: []float64{5, 6}})
	require.NoError(t, err)

	assert.Equal(t, []string{"tap 5 6", "dump_ui"}, dev.calls)
	assert.JSONEq(t, `{"type":"button","text":"OK","clickable":true,"bounds":"[0,0][10,10]"}`, res.Text)
	assert.False(t, res.IsImage())
}

func TestExecute_Summary(t *testing.T) {
	dev := &fakeDevice{tree: okTree}
	res, err := New(dev, Options{Summary: true}).Execute(context.Background(), Action{Type: ActionDumpUI})
	require.NoError(t, err)
	assert.Equal(t, "Found 1 interactive elements:\n1. \"OK\" button at [0,0][10,10]\n", res.Text)
}

func TestExecute_Actions(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   []string
	}{
		{"double tap", Action{Type: ActionDoubleTap, Coordinate: []float64{1, 2}}, []string{"double_tap 1 2", "dump_ui"}},
		{"swipe", Action{Type: ActionSwipe, StartCoordinate: []float64{0, 500}, EndCoordinate: []float64{0, 100}, Duration: 200},
			[]string{"swipe 0 500 0 100 200ms", "dump_ui"}},
		{"type", Action{Type: ActionType, Text: "hello"}, []string{"type hello", "dump_ui"}},
		{"press", Action{Type: ActionPress, Text: "Enter"}, []string{"press Enter", "dump_ui"}},
		{"screenshot", Action{Type: ActionScreenshot}, []string{"screenshot"}},
		{"wait", Action{Type: ActionWait, Duration: 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{tree: okTree, png: []byte("png")}
			_, err := New(dev, Options{}).Execute(context.Background(), tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dev.calls)
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	ex := New(&fakeDevice{tree: okTree}, Options{})
	ctx := context.Background()

	_, err := ex.Execute(ctx, Action{Type: "fly"})
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = ex.Execute(ctx, Action{Type: ActionTap, Coordinate: []float64{1}})
	assert.ErrorIs(t, err, ErrMissingArgument)

	_, err = ex.Execute(ctx, Action{Type: ActionSwipe, StartCoordinate: []float64{1, 2}})
	assert.ErrorIs(t, err, ErrMissingArgument)

	_, err = ex.Execute(ctx, Action{Type: ActionType})
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestExecute_WaitHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&fakeDevice{}, Options{}).Execute(ctx, Action{Type: ActionWait, Duration: 60000})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute_Records(t *testing.T) {
	rec := NewRecorder()
	dev := &fakeDevice{tree: okTree, png: testPNG(t)}
	ex := New(dev, Options{Recorder: rec})

	_, err := ex.Execute(context.Background(), Action{Type: ActionTap, Coordinate: []float64{2, 3}})
	require.NoError(t, err)
	_, err = ex.Execute(context.Background(), Action{Type: ActionSwipe, StartCoordinate: []float64{0, 3}, EndCoordinate: []float64{0, 0}})
	require.NoError(t, err)

	frames := rec.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, Marker{Kind: MarkerTap, X: 2, Y: 3}, frames[0].Marker)
	assert.Equal(t, Marker{Kind: MarkerSwipe, X: 0, Y: 3, EndX: 0, EndY: 0}, frames[1].Marker)
	assert.Equal(t, 4, frames[0].Image.Bounds().Dx())
}

func TestToolbox_Call(t *testing.T) {
	dev := &fakeDevice{tree: okTree, pkgs: []string{"com.a", "com.b"}}
	tb := NewToolbox(New(dev, Options{}), dev, device.Size{Width: 1080, Height: 2340})
	ctx := context.Background()

	res, err := tb.Call(ctx, ToolOpenApp, json.RawMessage(`{"name":"com.android.dialer"}`))
	require.NoError(t, err)
	assert.Equal(t, "Successfully opened com.android.dialer", res.Text)

	res, err = tb.Call(ctx, ToolListApps, json.RawMessage(`{"name":"com"}`))
	require.NoError(t, err)
	assert.Equal(t, "com.a\ncom.b", res.Text)

	_, err = tb.Call(ctx, ToolComputer, json.RawMessage(`{"action":"tap","coordinate":[10,20]}`))
	require.NoError(t, err)
	_, err = tb.Call(ctx, ToolComputer, json.RawMessage(`{"action":"swipe","start_coordinate":[540.5,1200],"end_coordinate":[540.4,99.6]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"open com.android.dialer", "list com",
		"tap 10 20", "dump_ui",
		"swipe 541 1200 540 100 0s", "dump_ui",
	}, dev.calls)

	_, err = tb.Call(ctx, "teleport", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)

	_, err = tb.Call(ctx, ToolOpenApp, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestToolbox_Specs(t *testing.T) {
	tb := NewToolbox(nil, nil, device.Size{Width: 1080, Height: 2340})
	specs := tb.Specs()
	require.Len(t, specs, 3)
	assert.Equal(t, ToolComputer, specs[0].Name)
	assert.Contains(t, specs[0].Description, "1080x2340")
	assert.Equal(t, []string{"action"}, specs[0].Schema()["required"])

	_, hasRequired := specs[2].Schema()["required"]
	assert.False(t, hasRequired)
}
