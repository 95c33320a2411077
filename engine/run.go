package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"

	"github.com/prakash-kavi/Triggers/trigger"
)

// Collaborators are the outside-world dependencies of an experiment.
type Collaborators struct {
	Player  Player
	Channel trigger.Channel
	Abort   AbortSource
	Confirm Confirmer
	Clock   Clock
	Rand    *rand.Rand
}

// NewExperiment assembles the generator, block runner and controller for cfg.
func NewExperiment(cfg *Config, c Collaborators) *Experiment {
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	runner := &BlockRunner{
		Timing:  cfg.Timing(),
		Codes:   cfg.Codes,
		Names:   cfg.StimulusNames(),
		Player:  c.Player,
		Channel: c.Channel,
		Abort:   c.Abort,
		Clock:   c.Clock,
	}
	return &Experiment{
		Plan:      cfg.Plan(),
		Subject:   cfg.Subject,
		Generator: NewSequenceGenerator(cfg.Layout, c.Rand),
		Runner:    runner,
		Confirm:   c.Confirm,
		Abort:     c.Abort,
		Clock:     c.Clock,
		PollTick:  cfg.PollTick,
	}
}

// NewRand returns a PCG source for seed, or for a random seed when seed is 0.
// The seed actually used is returned so it can be logged.
func NewRand(seed uint64) (*rand.Rand, uint64) {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed>>32|seed<<32)), seed
}

// Run sets up the trigger device, audio and operator I/O, runs the
// experiment and saves the event log. Nothing is played unless the trigger
// device opened successfully.
func Run(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("results directory: %w", err)
	}

	dev, err := trigger.Open(cfg.TriggerDevice)
	if err != nil {
		return fmt.Errorf("trigger channel: %w", err)
	}
	defer dev.Close()
	if err := trigger.CheckCodes(dev, cfg.Codes.Standard, cfg.Codes.Deviant); err != nil {
		return fmt.Errorf("trigger channel %s: %w", cfg.TriggerDevice, err)
	}
	slog.Info("trigger channel ready", "device", cfg.TriggerDevice)

	flags := sdl.INIT_EVENTS
	if !cfg.NoAudio {
		flags |= sdl.INIT_AUDIO
	}
	if !cfg.Headless {
		flags |= sdl.INIT_VIDEO
	}
	if err := sdl.Init(flags); err != nil {
		return fmt.Errorf("SDL_Init: %w", err)
	}
	defer sdl.Quit()

	var player Player = SilentPlayer{}
	if !cfg.NoAudio {
		std, devSound, err := LoadStimuli(cfg)
		if err != nil {
			return err
		}
		mixer := NewAudioMixer()
		spec := OutputSpec
		cb := sdl.NewAudioStreamCallback(mixer.Callback)
		stream := sdl.AUDIO_DEVICE_DEFAULT_PLAYBACK.OpenAudioDeviceStream(&spec, cb)
		if stream == nil {
			return errors.New("failed to open audio stream")
		}
		defer stream.Destroy()
		stream.ResumeDevice()
		player = &RolePlayer{Mixer: mixer, Standard: std, Deviant: devSound}
	}

	rng, seed := NewRand(cfg.Seed)
	slog.Info("sequence seed", "seed", seed)

	c := Collaborators{Player: player, Channel: dev, Rand: rng}
	var screen *Screen
	if cfg.Headless {
		abort := NewSignalAbort()
		defer abort.Stop()
		console, err := NewConsoleConfirmer()
		if err != nil {
			return fmt.Errorf("console: %w", err)
		}
		defer console.Close()
		c.Abort, c.Confirm = abort, console
	} else {
		s, cleanup, err := openScreen(cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		screen = s
		c.Abort, c.Confirm = &SDLAbort{}, screen
	}

	exp := NewExperiment(cfg, c)
	if screen != nil {
		exp.OnState = screen.Update
		if !screen.Splash(cfg.StartSplash) {
			return nil
		}
	}

	result := exp.Run()

	if screen != nil && result.State.Outcome == Completed {
		screen.Splash(cfg.EndSplash)
	}

	outputName := OutputPath(cfg.OutputDir, cfg.Subject, time.Now())
	if err := result.Log.Save(outputName); err != nil {
		return fmt.Errorf("save event log: %w", err)
	}
	slog.Info("results saved", "path", outputName, "events", result.Log.Len(), "outcome", result.State.Outcome)

	if cfg.TimingLog {
		timingName := TimingPath(outputName)
		if err := result.Log.SaveTiming(timingName); err != nil {
			return fmt.Errorf("save timing log: %w", err)
		}
		slog.Info("timing saved", "path", timingName)
	}
	return nil
}

func openScreen(cfg *Config) (*Screen, func(), error) {
	if err := ttf.Init(); err != nil {
		return nil, nil, fmt.Errorf("TTF_Init: %w", err)
	}

	windowFlags := sdl.WINDOW_RESIZABLE
	if cfg.Fullscreen {
		windowFlags |= sdl.WINDOW_FULLSCREEN
	}
	window, renderer, err := sdl.CreateWindowAndRenderer("Oddball", cfg.ScreenWidth, cfg.ScreenHeight, windowFlags)
	if err != nil {
		ttf.Quit()
		return nil, nil, fmt.Errorf("CreateWindowAndRenderer: %w", err)
	}

	fontPath := cfg.FontFile
	if fontPath == "" {
		fontPath = GetDefaultFontPath()
	}
	var font *ttf.Font
	if fontPath != "" {
		font, err = ttf.OpenFont(fontPath, float32(cfg.FontSize))
		if err != nil {
			slog.Warn("failed to load font, prompts will be blank", "path", fontPath, "err", err)
			font = nil
		}
	}

	cleanup := func() {
		if font != nil {
			font.Close()
		}
		renderer.Destroy()
		window.Destroy()
		ttf.Quit()
	}
	return &Screen{Renderer: renderer, Font: font, Config: cfg}, cleanup, nil
}
