package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unsafe"

	"github.com/Zyko0/go-sdl3/sdl"
)

func GetDefaultFontPath() string {
	// Check local fonts directory
	entries, err := os.ReadDir("fonts")
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := strings.ToLower(filepath.Ext(entry.Name()))
				if ext == ".ttf" || ext == ".ttc" {
					return filepath.Join("fonts", entry.Name())
				}
			}
		}
	}

	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{"C:\\Windows\\Fonts\\arial.ttf"}
	case "darwin":
		paths = []string{"/System/Library/Fonts/Helvetica.ttc"}
	default:
		paths = []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

type SoundResource struct {
	Name string
	Data []byte
	Spec sdl.AudioSpec
}

// LoadSound reads a WAV file, converts it to OutputSpec and scales it by
// volume.
func LoadSound(path string, volume float32) (*SoundResource, error) {
	spec := &sdl.AudioSpec{}
	data, err := sdl.LoadWAV(path, spec)
	if err != nil {
		return nil, fmt.Errorf("load sound %s: %w", path, err)
	}

	if spec.Format != OutputSpec.Format || spec.Channels != OutputSpec.Channels || spec.Freq != OutputSpec.Freq {
		target := OutputSpec
		data, err = sdl.ConvertAudioSamples(spec, data, &target)
		if err != nil {
			return nil, fmt.Errorf("convert sound %s: %w", path, err)
		}
	}

	applyGain(data, volume)
	return &SoundResource{Name: filepath.Base(path), Data: data, Spec: OutputSpec}, nil
}

// applyGain scales S16 samples in place.
func applyGain(data []byte, gain float32) {
	if gain == 1 || len(data) < 2 {
		return
	}
	samples := unsafe.Slice((*int16)(unsafe.Pointer(&data[0])), len(data)/2)
	for i, s := range samples {
		samples[i] = clampS16(int32(float32(s) * gain))
	}
}

// LoadStimuli loads the standard and deviant sounds of cfg.
func LoadStimuli(cfg *Config) (std, dev *SoundResource, err error) {
	std, err = LoadSound(filepath.Join(cfg.StimuliDir, cfg.StandardFile), cfg.Volume)
	if err != nil {
		return nil, nil, err
	}
	dev, err = LoadSound(filepath.Join(cfg.StimuliDir, cfg.DeviantFile), cfg.Volume)
	if err != nil {
		return nil, nil, err
	}
	return std, dev, nil
}
