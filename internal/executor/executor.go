package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/v0xg/mobileuse/internal/device"
	"github.com/v0xg/mobileuse/internal/uidump"
)

var (
	// ErrUnknownAction is returned for action types the executor does not handle
	ErrUnknownAction = errors.New("unknown action")
	// ErrMissingArgument is returned when an action lacks a required field
	ErrMissingArgument = errors.New("missing argument")
)

const defaultWait = time.Second

// Device is the subset of the adb client the executor drives
type Device interface {
	Tap(ctx context.Context, p device.Point) error
	DoubleTap(ctx context.Context, p device.Point) error
	Swipe(ctx context.Context, start, end device.Point, duration time.Duration) error
	Type(ctx context.Context, text string) error
	KeyPress(ctx context.Context, key string) error
	Screenshot(ctx context.Context) ([]byte, error)
	DumpUI(ctx context.Context) (*uidump.Element, error)
	ListPackages(ctx context.Context, filter string) ([]string, error)
	OpenApp(ctx context.Context, pkg string) error
}

// Options configures execution behavior
type Options struct {
	Summary  bool // return the text summary instead of the JSON tree after actions
	Recorder *Recorder
	Logger   logrus.FieldLogger
}

// Executor runs actions against a device
type Executor struct {
	dev  Device
	opts Options
	log  logrus.FieldLogger
}

// New creates an executor
func New(dev Device, opts Options) *Executor {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Executor{dev: dev, opts: opts, log: log}
}

// Execute runs one action. Every action that changes the screen is
// followed by a fresh UI dump so the model sees the new state.
func (e *Executor) Execute(ctx context.Context, action Action) (*Result, error) {
	log := e.log.WithField("action", action.Type)
	var marker Marker

	switch action.Type {
	case ActionDumpUI:
		return e.dumpUI(ctx)

	case ActionScreenshot:
		png, err := e.dev.Screenshot(ctx)
		if err != nil {
			return nil, err
		}
		return &Result{Image: png}, nil

	case ActionTap, ActionDoubleTap:
		p, err := point(action.Coordinate, "coordinate")
		if err != nil {
			return nil, err
		}
		if action.Type == ActionTap {
			err = e.dev.Tap(ctx, p)
		} else {
			err = e.dev.DoubleTap(ctx, p)
		}
		if err != nil {
			return nil, err
		}
		marker = Marker{Kind: MarkerTap, X: p.X, Y: p.Y}

	case ActionSwipe:
		start, err := point(action.StartCoordinate, "start_coordinate")
		if err != nil {
			return nil, err
		}
		end, err := point(action.EndCoordinate, "end_coordinate")
		if err != nil {
			return nil, err
		}
		duration := time.Duration(action.Duration) * time.Millisecond
		if err := e.dev.Swipe(ctx, start, end, duration); err != nil {
			return nil, err
		}
		marker = Marker{Kind: MarkerSwipe, X: start.X, Y: start.Y, EndX: end.X, EndY: end.Y}

	case ActionType:
		if action.Text == "" {
			return nil, fmt.Errorf("%w: text is required for type", ErrMissingArgument)
		}
		if err := e.dev.Type(ctx, action.Text); err != nil {
			return nil, err
		}

	case ActionPress:
		if action.Text == "" {
			return nil, fmt.Errorf("%w: text (key name) is required for press", ErrMissingArgument)
		}
		if err := e.dev.KeyPress(ctx, action.Text); err != nil {
			return nil, err
		}

	case ActionWait:
		d := time.Duration(action.Duration) * time.Millisecond
		if d <= 0 {
			d = defaultWait
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &Result{Text: fmt.Sprintf("Waited %dms", d.Milliseconds())}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action.Type)
	}

	log.Debug("action done")
	e.record(ctx, marker)
	return e.dumpUI(ctx)
}

func (e *Executor) dumpUI(ctx context.Context) (*Result, error) {
	tree, err := e.dev.DumpUI(ctx)
	if err != nil {
		return nil, err
	}
	if e.opts.Summary {
		return &Result{Text: uidump.Describe(tree)}, nil
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ui tree: %w", err)
	}
	return &Result{Text: string(data)}, nil
}

// record captures a frame for the session recording; failures only log
func (e *Executor) record(ctx context.Context, marker Marker) {
	if e.opts.Recorder == nil {
		return
	}
	png, err := e.dev.Screenshot(ctx)
	if err != nil {
		e.log.WithError(err).Warn("recording: screenshot failed")
		return
	}
	if err := e.opts.Recorder.Add(png, marker); err != nil {
		e.log.WithError(err).Warn("recording: frame skipped")
	}
}

// point rounds a model-supplied [x, y] pair to device pixels
func point(coord []float64, field string) (device.Point, error) {
	if len(coord) != 2 {
		return device.Point{}, fmt.Errorf("%w: %s must be [x, y]", ErrMissingArgument, field)
	}
	return device.Point{X: int(math.Round(coord[0])), Y: int(math.Round(coord[1]))}, nil
}
