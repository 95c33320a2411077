// Package midiport sends trigger codes as MIDI notes: a non-idle code is a
// note-on with key = code, Idle releases the sounding note. Importing the
// package registers the "midi" trigger kind; the address selects the first
// output port whose name contains it (empty = first port).
package midiport

import (
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/prakash-kavi/Triggers/trigger"
)

const (
	Channel  = 0
	Velocity = 127

	// MaxNote is the highest MIDI key; larger codes are rejected at setup.
	MaxNote trigger.Code = 127
)

func init() {
	trigger.Register("midi", func(address string) (trigger.Device, error) {
		return Open(address)
	})
}

type Port struct {
	drv  *rtmididrv.Driver
	out  drivers.Out
	note trigger.Code
	log  *slog.Logger
}

func Open(name string) (*Port, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	outs, err := drv.Outs()
	if err != nil {
		drv.Close()
		return nil, err
	}

	var found drivers.Out
	for _, out := range outs {
		if name == "" || strings.Contains(out.String(), name) {
			found = out
			break
		}
	}
	if found == nil {
		drv.Close()
		return nil, fmt.Errorf("MIDI output %q not found", name)
	}
	if err := found.Open(); err != nil {
		drv.Close()
		return nil, err
	}

	p := &Port{drv: drv, out: found, log: slog.Default().With("device", found.String())}
	p.log.Info("MIDI output connected")
	return p, nil
}

func (p *Port) MaxCode() trigger.Code { return MaxNote }

func (p *Port) SetLevel(code trigger.Code) {
	var msg midi.Message
	switch {
	case code == trigger.Idle && p.note == trigger.Idle:
		return
	case code == trigger.Idle:
		msg = midi.NoteOff(Channel, uint8(p.note))
	default:
		if p.note != trigger.Idle && p.note != code {
			p.send(midi.NoteOff(Channel, uint8(p.note)))
		}
		msg = midi.NoteOn(Channel, uint8(code), Velocity)
	}
	p.note = code
	p.send(msg)
}

func (p *Port) send(msg midi.Message) {
	if err := p.out.Send(msg); err != nil {
		p.log.Error("send error", "msg", msg.String(), "err", err)
	}
}

func (p *Port) Close() error {
	p.SetLevel(trigger.Idle)
	err := p.out.Close()
	if cerr := p.drv.Close(); err == nil {
		err = cerr
	}
	return err
}
