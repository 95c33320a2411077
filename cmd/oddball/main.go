package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"

	"github.com/prakash-kavi/Triggers/engine"
	"github.com/prakash-kavi/Triggers/trigger"
	_ "github.com/prakash-kavi/Triggers/trigger/midiport"
)

func init() {
	// SDL3 requires the main thread for some operations.
	runtime.LockOSThread()
}

func main() {
	cfg := engine.DefaultConfig()

	flag.StringVar(&cfg.Subject, "subject", "", "Subject code (required)")
	flag.StringVar(&cfg.StimuliDir, "stimuli-dir", cfg.StimuliDir, "Directory containing the stimulus sounds")
	flag.StringVar(&cfg.StandardFile, "standard", cfg.StandardFile, "Standard stimulus file")
	flag.StringVar(&cfg.DeviantFile, "deviant", cfg.DeviantFile, "Deviant stimulus file")
	flag.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Results directory")
	flag.StringVar(&cfg.TriggerDevice, "trigger", cfg.TriggerDevice,
		"Trigger device as kind[:address], kinds: "+strings.Join(trigger.Kinds(), ", "))
	volume := flag.Float64("volume", float64(cfg.Volume), "Stimulus volume (0-1)")

	flag.DurationVar(&cfg.SOA, "soa", cfg.SOA, "Stimulus onset asynchrony")
	flag.DurationVar(&cfg.PulseDuration, "pulse", cfg.PulseDuration, "Trigger pulse duration")
	flag.DurationVar(&cfg.PollTick, "tick", cfg.PollTick, "Timing poll granularity")
	flag.DurationVar(&cfg.InitialDelay, "initial-delay", cfg.InitialDelay, "Delay before the first block")
	flag.DurationVar(&cfg.InterBlockDelay, "block-delay", cfg.InterBlockDelay, "Delay between blocks")
	flag.IntVar(&cfg.AutoBlocks, "auto-blocks", cfg.AutoBlocks, "Number of automatic blocks")
	flag.IntVar(&cfg.ManualSets, "manual-sets", cfg.ManualSets, "Number of operator-started sets")
	flag.IntVar(&cfg.BlocksPerSet, "set-blocks", cfg.BlocksPerSet, "Blocks per manual set")
	standardCode := flag.Uint("standard-code", uint(cfg.Codes.Standard), "Trigger code for standard stimuli")
	deviantCode := flag.Uint("deviant-code", uint(cfg.Codes.Deviant), "Trigger code for deviant stimuli")
	flag.Uint64Var(&cfg.Seed, "seed", 0, "Sequence seed (0 = random)")

	flag.BoolVar(&cfg.Headless, "headless", false, "No window: abort with Ctrl-C, confirm sets on the terminal")
	flag.BoolVar(&cfg.NoAudio, "no-audio", false, "Do not open an audio device (dry run)")
	flag.BoolVar(&cfg.TimingLog, "timing-log", false, "Also write intended/actual onsets")
	flag.BoolVar(&cfg.Debug, "debug", false, "Log every stimulus")
	flag.StringVar(&cfg.StartSplash, "start-splash", "", "Start splash image")
	flag.StringVar(&cfg.EndSplash, "end-splash", "", "End splash image")
	flag.StringVar(&cfg.FontFile, "font", "", "TTF font file")
	flag.IntVar(&cfg.FontSize, "font-size", cfg.FontSize, "Font size")
	flag.IntVar(&cfg.ScreenWidth, "width", cfg.ScreenWidth, "Window width")
	flag.IntVar(&cfg.ScreenHeight, "height", cfg.ScreenHeight, "Window height")
	noFixation := flag.Bool("no-fixation", false, "Disable fixation cross")
	flag.BoolVar(&cfg.Fullscreen, "fullscreen", false, "Enable fullscreen")
	bgColorStr := flag.String("bg-color", "0,0,0,255", "Background color (R,G,B,A)")
	textColorStr := flag.String("text-color", "255,255,255,255", "Text color (R,G,B,A)")
	fixColorStr := flag.String("fixation-color", "255,255,255,255", "Fixation color (R,G,B,A)")
	listPorts := flag.Bool("list-ports", false, "List serial ports and exit")

	flag.Parse()

	engine.SetupLogger(cfg.Debug)

	if *listPorts {
		if err := trigger.ListSerialPorts(os.Stdout); err != nil {
			slog.Error("list serial ports", "err", err)
			os.Exit(1)
		}
		return
	}

	if *standardCode > 255 || *deviantCode > 255 {
		fmt.Fprintln(os.Stderr, "Error: trigger codes must fit in 8 bits.")
		os.Exit(2)
	}
	cfg.Codes = engine.TriggerCodes{Standard: trigger.Code(*standardCode), Deviant: trigger.Code(*deviantCode)}
	cfg.Volume = float32(*volume)
	cfg.UseFixation = !*noFixation
	cfg.BGColor = engine.ParseColor(*bgColorStr)
	cfg.TextColor = engine.ParseColor(*textColorStr)
	cfg.FixationColor = engine.ParseColor(*fixColorStr)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	if err := engine.Run(cfg); err != nil {
		slog.Error("experiment failed", "err", err)
		if errors.Is(err, trigger.ErrUnavailable) || errors.Is(err, trigger.ErrUnknownKind) || errors.Is(err, trigger.ErrCodeRange) {
			slog.Error("no working trigger channel, nothing was played")
		}
		os.Exit(1)
	}
}
