package engine

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/prakash-kavi/Triggers/trigger"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Subject       string
	StimuliDir    string
	StandardFile  string
	DeviantFile   string
	OutputDir     string
	TriggerDevice string
	StartSplash   string
	EndSplash     string
	FontFile      string
	FontSize      int
	ScreenWidth   int
	ScreenHeight  int
	Volume        float32

	SOA             time.Duration
	PulseDuration   time.Duration
	PollTick        time.Duration
	InitialDelay    time.Duration
	InterBlockDelay time.Duration
	AutoBlocks      int
	ManualSets      int
	BlocksPerSet    int
	Layout          SequenceLayout
	Codes           TriggerCodes
	Seed            uint64

	TimingLog     bool
	Headless      bool
	NoAudio       bool
	UseFixation   bool
	Fullscreen    bool
	Debug         bool
	BGColor       sdl.Color
	TextColor     sdl.Color
	FixationColor sdl.Color
}

func DefaultConfig() *Config {
	return &Config{
		StimuliDir:    "stim",
		StandardFile:  "std.wav",
		DeviantFile:   "dev.wav",
		OutputDir:     "Res",
		TriggerDevice: "parport:/dev/parport0",
		FontSize:      24,
		ScreenWidth:   800,
		ScreenHeight:  600,
		Volume:        0.2,

		SOA:             2 * time.Second,
		PulseDuration:   10 * time.Millisecond,
		PollTick:        DefaultPollTick,
		InitialDelay:    60 * time.Second,
		InterBlockDelay: 30 * time.Second,
		AutoBlocks:      20,
		ManualSets:      2,
		BlocksPerSet:    5,
		Layout:          DefaultLayout,
		Codes:           TriggerCodes{Standard: 1, Deviant: 2},

		UseFixation:   true,
		BGColor:       sdl.Color{R: 0, G: 0, B: 0, A: 255},
		TextColor:     sdl.Color{R: 255, G: 255, B: 255, A: 255},
		FixationColor: sdl.Color{R: 255, G: 255, B: 255, A: 255},
	}
}

func (cfg *Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(strings.TrimSpace(cfg.Subject) != "", "subject code is required")
	check(!strings.ContainsAny(cfg.Subject, `/\`), "subject code %q must not contain path separators", cfg.Subject)
	check(cfg.SOA > 0, "SOA must be positive, got %v", cfg.SOA)
	check(cfg.PulseDuration > 0, "pulse duration must be positive, got %v", cfg.PulseDuration)
	check(cfg.PulseDuration < cfg.SOA, "pulse duration %v must be shorter than SOA %v", cfg.PulseDuration, cfg.SOA)
	check(cfg.PollTick > 0, "poll tick must be positive, got %v", cfg.PollTick)
	check(cfg.InitialDelay >= 0 && cfg.InterBlockDelay >= 0, "delays must not be negative")
	check(cfg.AutoBlocks >= 0 && cfg.ManualSets >= 0 && cfg.BlocksPerSet >= 0, "block and set counts must not be negative")
	check(cfg.Codes.Standard != trigger.Idle && cfg.Codes.Deviant != trigger.Idle, "trigger codes must be non-zero")
	check(cfg.Codes.Standard != cfg.Codes.Deviant, "standard and deviant trigger codes must differ")
	check(cfg.Volume >= 0 && cfg.Volume <= 1, "volume must be in [0,1], got %v", cfg.Volume)
	if err := cfg.Layout.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (cfg *Config) Timing() Timing {
	return Timing{SOA: cfg.SOA, PulseDuration: cfg.PulseDuration, PollTick: cfg.PollTick}
}

func (cfg *Config) Plan() Plan {
	return Plan{
		InitialDelay:    cfg.InitialDelay,
		InterBlockDelay: cfg.InterBlockDelay,
		AutoBlocks:      cfg.AutoBlocks,
		ManualSets:      cfg.ManualSets,
		BlocksPerSet:    cfg.BlocksPerSet,
	}
}

func (cfg *Config) StimulusNames() StimulusNames {
	return StimulusNames{Standard: cfg.StandardFile, Deviant: cfg.DeviantFile}
}

func ParseColor(s string) sdl.Color {
	var r, g, b, a uint8
	n, _ := fmt.Sscanf(s, "%d,%d,%d,%d", &r, &g, &b, &a)
	if n == 3 {
		a = 255
	}
	return sdl.Color{R: r, G: g, B: b, A: a}
}

const CacheFile = ".oddball_cache"

// SaveCache remembers the setup screen fields between sessions. The subject
// code is not cached.
func (cfg *Config) SaveCache(path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "stimuli_dir=%s\n", cfg.StimuliDir)
	fmt.Fprintf(&b, "output_dir=%s\n", cfg.OutputDir)
	fmt.Fprintf(&b, "trigger_device=%s\n", cfg.TriggerDevice)
	fmt.Fprintf(&b, "screen_w=%d\n", cfg.ScreenWidth)
	fmt.Fprintf(&b, "screen_h=%d\n", cfg.ScreenHeight)
	fmt.Fprintf(&b, "volume=%g\n", cfg.Volume)
	fmt.Fprintf(&b, "use_fixation=%s\n", boolFlag(cfg.UseFixation))
	fmt.Fprintf(&b, "fullscreen=%s\n", boolFlag(cfg.Fullscreen))
	fmt.Fprintf(&b, "timing_log=%s\n", boolFlag(cfg.TimingLog))
	fmt.Fprintf(&b, "bg_color=%d,%d,%d\n", cfg.BGColor.R, cfg.BGColor.G, cfg.BGColor.B)
	fmt.Fprintf(&b, "text_color=%d,%d,%d\n", cfg.TextColor.R, cfg.TextColor.G, cfg.TextColor.B)
	fmt.Fprintf(&b, "fixation_color=%d,%d,%d\n", cfg.FixationColor.R, cfg.FixationColor.G, cfg.FixationColor.B)
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// LoadCache overlays cached fields on cfg. A missing file is not an error.
func (cfg *Config) LoadCache(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)

		switch key {
		case "stimuli_dir":
			cfg.StimuliDir = val
		case "output_dir":
			cfg.OutputDir = val
		case "trigger_device":
			cfg.TriggerDevice = val
		case "screen_w":
			fmt.Sscanf(val, "%d", &cfg.ScreenWidth)
		case "screen_h":
			fmt.Sscanf(val, "%d", &cfg.ScreenHeight)
		case "volume":
			if v, err := strconv.ParseFloat(val, 32); err == nil {
				cfg.Volume = float32(v)
			}
		case "use_fixation":
			cfg.UseFixation = val != "0"
		case "fullscreen":
			cfg.Fullscreen = val != "0"
		case "timing_log":
			cfg.TimingLog = val != "0"
		case "bg_color":
			cfg.BGColor = ParseColor(val)
		case "text_color":
			cfg.TextColor = ParseColor(val)
		case "fixation_color":
			cfg.FixationColor = ParseColor(val)
		}
	}
	return nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
