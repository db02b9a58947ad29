package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/v0xg/mobileuse/internal/uidump"
)

var (
	// ErrAppNotFound is returned by OpenApp when the package has no launchable activity
	ErrAppNotFound = errors.New("app not found")
	// ErrInvalidPackage is returned for package names that are not plain Java identifiers
	ErrInvalidPackage = errors.New("invalid package name")
)

const (
	defaultSwipeDuration = 300 * time.Millisecond
	defaultTimeout       = 30 * time.Second
	uiDumpPath           = "/sdcard/window_dump.xml"
)

var (
	physicalSizeRe = regexp.MustCompile(`Physical size: (\d+)x(\d+)`)
	packageNameRe  = regexp.MustCompile(`^[A-Za-z0-9._]+$`)
)

// Options configures the adb client
type Options struct {
	ADBPath string        // adb binary, defaults to "adb"
	Serial  string        // device serial passed as -s, empty for the only attached device
	Timeout time.Duration // per-command timeout
	Runner  Runner
	Logger  logrus.FieldLogger

	// MaxDepth bounds the parsed UI hierarchy depth, 0 for the default
	MaxDepth int
}

// Point is a screen coordinate in device pixels
type Point struct {
	X int
	Y int
}

// Size is the physical display size in pixels
type Size struct {
	Width  int
	Height int
}

// Client drives an Android device through adb
type Client struct {
	adb      string
	serial   string
	timeout  time.Duration
	runner   Runner
	log      logrus.FieldLogger
	maxDepth int
}

// New creates an adb client
func New(opts Options) *Client {
	if opts.ADBPath == "" {
		opts.ADBPath = "adb"
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		opts.Logger = l
	}
	return &Client{
		adb:      opts.ADBPath,
		serial:   opts.Serial,
		timeout:  opts.Timeout,
		runner:   opts.Runner,
		log:      opts.Logger,
		maxDepth: opts.MaxDepth,
	}
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, []byte, error) {
	if c.serial != "" {
		args = append([]string{"-s", c.serial}, args...)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, err := c.runner.Run(ctx, c.adb, args...)
	c.log.WithFields(logrus.Fields{
		"args":     strings.Join(args, " "),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("adb")
	return stdout, stderr, err
}

// Shell runs a command in the device shell
func (c *Client) Shell(ctx context.Context, command string) (stdout, stderr string, err error) {
	out, errOut, err := c.run(ctx, "shell", command)
	return string(out), string(errOut), err
}

// Tap taps at a point
func (c *Client) Tap(ctx context.Context, p Point) error {
	_, _, err := c.Shell(ctx, fmt.Sprintf("input tap %d %d", p.X, p.Y))
	if err != nil {
		return fmt.Errorf("tap (%d, %d): %w", p.X, p.Y, err)
	}
	return nil
}

// DoubleTap taps twice at the same point
func (c *Client) DoubleTap(ctx context.Context, p Point) error {
	if err := c.Tap(ctx, p); err != nil {
		return err
	}
	return c.Tap(ctx, p)
}

// Swipe drags from start to end. A zero duration uses 300ms.
func (c *Client) Swipe(ctx context.Context, start, end Point, duration time.Duration) error {
	if duration <= 0 {
		duration = defaultSwipeDuration
	}
	cmd := fmt.Sprintf("input swipe %d %d %d %d %d", start.X, start.Y, end.X, end.Y, duration.Milliseconds())
	if _, _, err := c.Shell(ctx, cmd); err != nil {
		return fmt.Errorf("swipe: %w", err)
	}
	return nil
}

// Type enters text into the focused field. Line breaks are sent as Enter
// key presses between the lines.
func (c *Client) Type(ctx context.Context, text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			if _, _, err := c.Shell(ctx, "input keyevent KEYCODE_ENTER"); err != nil {
				return fmt.Errorf("type text: %w", err)
			}
		}
		escaped := escapeInputText(line)
		if escaped == "" {
			continue
		}
		if _, _, err := c.Shell(ctx, "input text "+escaped); err != nil {
			return fmt.Errorf("type text: %w", err)
		}
	}
	return nil
}

// escapeInputText prepares one line for `input text`: spaces become %s,
// shell metacharacters are backslash-escaped and control characters are
// dropped.
func escapeInputText(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == ' ':
			b.WriteString("%s")
		case unicode.IsControl(r):
			// dropped
		case strings.ContainsRune("\\\"'`$&|;<>()*~?!#[]{}", r):
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// shellQuote wraps s in single quotes for the device shell
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// KeyPress sends a named key such as "Enter" or "Backspace"
func (c *Client) KeyPress(ctx context.Context, key string) error {
	code, ok := KeyCode(key)
	if !ok {
		return fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedKey, key, strings.Join(SupportedKeys(), ", "))
	}
	if _, _, err := c.Shell(ctx, "input keyevent "+code); err != nil {
		return fmt.Errorf("key press %s: %w", key, err)
	}
	return nil
}

// Screenshot captures the screen as PNG bytes
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	out, _, err := c.run(ctx, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		return nil, fmt.Errorf("screenshot: unexpected output (%d bytes)", len(out))
	}
	return out, nil
}

// ScreenSize returns the physical display size
func (c *Client) ScreenSize(ctx context.Context) (Size, error) {
	out, _, err := c.Shell(ctx, "wm size")
	if err != nil {
		return Size{}, fmt.Errorf("screen size: %w", err)
	}
	m := physicalSizeRe.FindStringSubmatch(out)
	if m == nil {
		return Size{}, fmt.Errorf("failed to get viewport size from %q", strings.TrimSpace(out))
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	return Size{Width: w, Height: h}, nil
}

// ListPackages returns installed package names, optionally filtered
func (c *Client) ListPackages(ctx context.Context, filter string) ([]string, error) {
	cmd := "pm list packages"
	if filter != "" {
		cmd += " " + shellQuote(filter)
	}
	out, _, err := c.Shell(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	var pkgs []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "package:"))
		if line != "" {
			pkgs = append(pkgs, line)
		}
	}
	return pkgs, nil
}

// OpenApp launches the default activity of a package
func (c *Client) OpenApp(ctx context.Context, pkg string) error {
	if !packageNameRe.MatchString(pkg) {
		return fmt.Errorf("%w: %q", ErrInvalidPackage, pkg)
	}
	out, errOut, err := c.Shell(ctx, fmt.Sprintf("monkey -p %s 1", pkg))
	if strings.Contains(errOut, "No activities found") || strings.Contains(out, "No activities found") {
		return fmt.Errorf("%w: %s", ErrAppNotFound, pkg)
	}
	if err != nil {
		return fmt.Errorf("open app %s: %w", pkg, err)
	}
	return nil
}

// CaptureUIHierarchy returns the raw uiautomator XML for the current screen
func (c *Client) CaptureUIHierarchy(ctx context.Context) (string, error) {
	if _, _, err := c.Shell(ctx, "uiautomator dump "+uiDumpPath); err != nil {
		return "", fmt.Errorf("failed to get UI hierarchy: %w", err)
	}
	out, _, err := c.Shell(ctx, "cat "+uiDumpPath)
	if err != nil {
		return "", fmt.Errorf("failed to get UI hierarchy: %w", err)
	}
	if _, _, err := c.Shell(ctx, "rm "+uiDumpPath); err != nil {
		c.log.WithError(err).Warn("failed to remove ui dump")
	}
	return out, nil
}

// DumpUI captures and simplifies the current UI hierarchy
func (c *Client) DumpUI(ctx context.Context) (*uidump.Element, error) {
	raw, err := c.CaptureUIHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	el, err := uidump.DumpString(raw, uidump.WithMaxDepth(c.maxDepth))
	if err != nil {
		return nil, fmt.Errorf("failed to get UI hierarchy: %w", err)
	}
	c.log.WithField("elements", el.Count()).Debug("ui dump")
	return el, nil
}
