package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/v0xg/mobileuse/internal/ai"
	"github.com/v0xg/mobileuse/internal/device"
	"github.com/v0xg/mobileuse/internal/executor"
	"github.com/v0xg/mobileuse/internal/gifgen"
	"github.com/v0xg/mobileuse/internal/overlay"
	"github.com/v0xg/mobileuse/internal/uidump"
)

var (
	provider   string
	model      string
	maxSteps   int
	serial     string
	adbPath    string
	timeout    time.Duration
	maxDepth   int
	summary    bool
	record     string
	frameDelay int
	output     string
	verbose    bool
)

var logger = logrus.New()

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "mobileuse",
		Short: "Drive an Android device with an LLM agent",
		Long: `mobileuse connects to an Android device over adb, feeds a compact view of the
current screen to an LLM and lets it tap, swipe and type until your task is done.

Example:
  mobileuse run "open the dialer and call 123"`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			} else {
				logger.SetLevel(logrus.WarnLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&serial, "serial", "s", os.Getenv("ANDROID_SERIAL"), "Device serial (default: the only attached device)")
	rootCmd.PersistentFlags().StringVar(&adbPath, "adb", envOr("MOBILEUSE_ADB", "adb"), "Path to the adb binary")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for each adb command")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "UI hierarchy depth ceiling (default 256)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress")

	runCmd := &cobra.Command{
		Use:   "run <task>",
		Short: "Let the agent perform a task on the device",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	runCmd.Flags().StringVar(&provider, "provider", "", "AI provider: claude, openai (default: from env or claude)")
	runCmd.Flags().StringVar(&model, "model", "", "Specific model override")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", ai.DefaultMaxSteps, "Maximum model turns")
	runCmd.Flags().BoolVar(&summary, "summary", false, "Send the text summary instead of the JSON tree to the model")
	runCmd.Flags().StringVar(&record, "record", "", "Record the session as a GIF to this file")
	runCmd.Flags().IntVar(&frameDelay, "frame-delay", 1500, "Time each recorded screen is shown (ms)")

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the simplified UI hierarchy of the current screen",
		Args:  cobra.NoArgs,
		RunE:  dump,
	}
	dumpCmd.Flags().BoolVar(&summary, "summary", false, "Print the interactive element summary instead of JSON")

	screenshotCmd := &cobra.Command{
		Use:   "screenshot",
		Short: "Save a screenshot of the device",
		Args:  cobra.NoArgs,
		RunE:  screenshot,
	}
	screenshotCmd.Flags().StringVarP(&output, "output", "o", "screenshot.png", "Output filename")

	appsCmd := &cobra.Command{
		Use:   "apps [filter]",
		Short: "List installed packages",
		Args:  cobra.MaximumNArgs(1),
		RunE:  apps,
	}

	rootCmd.AddCommand(runCmd, dumpCmd, screenshotCmd, appsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newDevice() *device.Client {
	return device.New(device.Options{
		ADBPath:  adbPath,
		Serial:   serial,
		Timeout:  timeout,
		Logger:   logger,
		MaxDepth: maxDepth,
	})
}

func run(cmd *cobra.Command, args []string) error {
	task := args[0]
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	selectedProvider := provider
	if selectedProvider == "" {
		selectedProvider = envOr("MOBILEUSE_DEFAULT_PROVIDER", "claude")
	}

	logVerbose("Starting mobileuse")
	logVerbose("  Task: %s", task)
	logVerbose("  Provider: %s", selectedProvider)

	// Step 1: Connect to the device
	dev := newDevice()
	fmt.Printf("→ Connecting to device... ")
	size, err := dev.ScreenSize(ctx)
	if err != nil {
		fmt.Println("failed")
		return fmt.Errorf("device not reachable: %w", err)
	}
	fmt.Printf("done (%dx%d)\n", size.Width, size.Height)

	// Step 2: Set up the agent
	aiProvider, err := ai.NewProvider(selectedProvider, model, ai.Options{
		MaxSteps: maxSteps,
		Logger:   logger,
		OnToolCall: func(step int, call string) {
			fmt.Printf("  [%d] %s\n", step, call)
		},
	})
	if err != nil {
		return fmt.Errorf("AI provider init failed: %w", err)
	}

	var recorder *executor.Recorder
	if record != "" {
		recorder = executor.NewRecorder()
	}
	exec := executor.New(dev, executor.Options{
		Summary:  summary,
		Recorder: recorder,
		Logger:   logger,
	})
	tools := executor.NewToolbox(exec, dev, size)

	// Step 3: Run the agent loop
	fmt.Printf("→ Running task via %s...\n", selectedProvider)
	result, runErr := aiProvider.Run(ctx, task, tools)

	// Step 4: Write the recording, even for a failed run
	if recorder != nil {
		if err := writeRecording(recorder); err != nil {
			logger.WithError(err).Warn("recording not saved")
		}
	}

	if runErr != nil {
		return fmt.Errorf("task failed: %w", runErr)
	}

	fmt.Printf("✓ Done in %d steps (%d tool calls)\n", result.Steps, result.ToolCalls)
	if result.Text != "" {
		fmt.Println(result.Text)
	}
	return nil
}

func writeRecording(recorder *executor.Recorder) error {
	frames := recorder.Frames()
	if len(frames) == 0 {
		fmt.Println("→ Nothing recorded")
		return nil
	}

	fmt.Printf("→ Generating GIF (%d frames)... ", len(frames))
	images := overlay.ApplyMarkers(frames)
	fileSize, err := gifgen.Generate(images, record, gifgen.Options{
		FrameDelay: time.Duration(frameDelay) * time.Millisecond,
	})
	if err != nil {
		fmt.Println("failed")
		return fmt.Errorf("GIF generation failed: %w", err)
	}
	fmt.Println("done")
	fmt.Printf("✓ Saved to %s (%.1f MB)\n", record, float64(fileSize)/(1024*1024))
	return nil
}

func dump(cmd *cobra.Command, args []string) error {
	tree, err := newDevice().DumpUI(cmd.Context())
	if err != nil {
		return err
	}
	if summary {
		fmt.Println(strings.TrimSuffix(uidump.Describe(tree), "\n"))
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}

func screenshot(cmd *cobra.Command, args []string) error {
	png, err := newDevice().Screenshot(cmd.Context())
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, png, 0o644); err != nil {
		return err
	}
	fmt.Printf("✓ Saved to %s\n", output)
	return nil
}

func apps(cmd *cobra.Command, args []string) error {
	filter := ""
	if len(args) > 0 {
		filter = args[0]
	}
	pkgs, err := newDevice().ListPackages(cmd.Context(), filter)
	if err != nil {
		return err
	}
	for _, p := range pkgs {
		fmt.Println(p)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}
