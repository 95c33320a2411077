package engine

import (
	"log/slog"
	"sync"
	"unsafe"

	"github.com/Zyko0/go-sdl3/sdl"
)

const (
	MaxActiveSounds   = 16
	AudioScratchBytes = 4096
)

// OutputSpec is the format every stimulus is converted to at load time and
// the format of the playback stream.
var OutputSpec = sdl.AudioSpec{Format: sdl.AUDIO_S16, Channels: 2, Freq: 44100}

type ActiveSound struct {
	Resource *SoundResource
	PlayPos  uint32
	Active   bool
}

// AudioMixer sums up to MaxActiveSounds S16 sounds into the SDL stream. Play
// only claims a slot; samples are pushed from SDL's audio thread.
type AudioMixer struct {
	Slots   [MaxActiveSounds]ActiveSound
	Mutex   sync.Mutex
	Scratch []byte
}

func NewAudioMixer() *AudioMixer {
	return &AudioMixer{
		Scratch: make([]byte, AudioScratchBytes),
	}
}

func (m *AudioMixer) Callback(stream *sdl.AudioStream, additionalAmount, totalAmount int32) {
	remaining := int(additionalAmount)
	for remaining > 0 {
		chunk := remaining
		if chunk > AudioScratchBytes {
			chunk = AudioScratchBytes
		}
		clear(m.Scratch[:chunk])

		m.Mutex.Lock()
		m.mix(m.Scratch[:chunk])
		m.Mutex.Unlock()

		stream.PutData(m.Scratch[:chunk])
		remaining -= chunk
	}
}

func (m *AudioMixer) mix(out []byte) {
	dst := unsafe.Slice((*int16)(unsafe.Pointer(&out[0])), len(out)/2)
	for i := range m.Slots {
		s := &m.Slots[i]
		if !s.Active {
			continue
		}

		soundRemaining := uint32(len(s.Resource.Data)) - s.PlayPos
		toMix := uint32(len(out))
		if toMix > soundRemaining {
			toMix = soundRemaining
		}

		if toMix >= 2 {
			src := unsafe.Slice((*int16)(unsafe.Pointer(&s.Resource.Data[s.PlayPos])), toMix/2)
			for j := range src {
				dst[j] = clampS16(int32(dst[j]) + int32(src[j]))
			}
		}

		s.PlayPos += toMix
		if s.PlayPos >= uint32(len(s.Resource.Data)) {
			s.Active = false
		}
	}
}

func (m *AudioMixer) Play(res *SoundResource) bool {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	for i := range m.Slots {
		if !m.Slots[i].Active {
			m.Slots[i] = ActiveSound{Resource: res, Active: true}
			return true
		}
	}
	return false
}

func clampS16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// RolePlayer maps stimulus roles to loaded sounds.
type RolePlayer struct {
	Mixer    *AudioMixer
	Standard *SoundResource
	Deviant  *SoundResource
	Logger   *slog.Logger
}

func (p *RolePlayer) Play(role StimulusRole) {
	res := p.Standard
	if role == Deviant {
		res = p.Deviant
	}
	if !p.Mixer.Play(res) {
		p.logger().Warn("no free mixer slot", "role", role)
	}
}

func (p *RolePlayer) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// SilentPlayer plays nothing. It is used for dry runs without an audio device.
type SilentPlayer struct{}

func (SilentPlayer) Play(StimulusRole) {}
