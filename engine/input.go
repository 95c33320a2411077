package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/chzyer/readline"
)

// SDLAbort drains the SDL event queue on every poll. Escape or closing the
// window aborts; once seen the abort stays set.
type SDLAbort struct {
	aborted bool
}

func (a *SDLAbort) Aborted() bool {
	if a.aborted {
		return true
	}
	var ev sdl.Event
	for sdl.PollEvent(&ev) {
		switch ev.Type {
		case sdl.EVENT_QUIT:
			a.aborted = true
		case sdl.EVENT_KEY_DOWN:
			if ev.KeyboardEvent().Key == sdl.K_ESCAPE {
				a.aborted = true
			}
		}
	}
	return a.aborted
}

// SignalAbort aborts on SIGINT or SIGTERM, for runs without a window.
type SignalAbort struct {
	ch      chan os.Signal
	aborted bool
}

func NewSignalAbort() *SignalAbort {
	a := &SignalAbort{ch: make(chan os.Signal, 1)}
	signal.Notify(a.ch, os.Interrupt, syscall.SIGTERM)
	return a
}

func (a *SignalAbort) Aborted() bool {
	if a.aborted {
		return true
	}
	select {
	case sig := <-a.ch:
		slog.Info("abort requested", "signal", sig)
		a.aborted = true
	default:
	}
	return a.aborted
}

// Stop restores default signal handling.
func (a *SignalAbort) Stop() {
	signal.Stop(a.ch)
}

type lineReader interface {
	Readline() (string, error)
}

// ConsoleConfirmer asks for the manual set go-ahead on the terminal. An
// empty answer, "y" or "yes" starts the set; anything else, end of input or
// Ctrl-C declines it.
type ConsoleConfirmer struct {
	rl  lineReader
	out io.Writer
}

func NewConsoleConfirmer() (*ConsoleConfirmer, error) {
	rl, err := readline.New("> ")
	if err != nil {
		return nil, err
	}
	return &ConsoleConfirmer{rl: rl, out: rl.Stdout()}, nil
}

func (c *ConsoleConfirmer) Confirm(set, total int) bool {
	fmt.Fprintf(c.out, "Start manual set %d of %d? [Y/n]\n", set, total)
	line, err := c.rl.Readline()
	if err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, readline.ErrInterrupt) {
			slog.Error("reading confirmation", "err", err)
		}
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	}
	return false
}

func (c *ConsoleConfirmer) Close() error {
	if cl, ok := c.rl.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
