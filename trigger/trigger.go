// Package trigger drives the hardware line that marks stimulus onsets for
// external recording equipment (EEG amplifiers, response boxes).
//
// A Device is opened once at setup from a spec string of the form
// "kind[:address]", e.g. "dlp:/dev/ttyUSB0" or "parport:/dev/parport0".
// Backends register themselves by kind; the MIDI backend lives in its own
// package so that cgo is only linked when it is imported.
package trigger

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Code is the value put on the trigger line. Idle (0) means no trigger.
type Code uint8

const Idle Code = 0

// Channel sets the output line level. SetLevel must return quickly and never
// queue; write failures are reported by the backend, not to the caller.
type Channel interface {
	SetLevel(code Code)
}

// Device is an opened Channel that owns an OS resource.
type Device interface {
	Channel
	io.Closer
}

// Opener opens a backend at the given address. The address is the part of
// the device spec after the first colon and may be empty.
type Opener func(address string) (Device, error)

var (
	ErrUnknownKind = errors.New("unknown trigger device kind")
	ErrUnavailable = errors.New("trigger device unavailable")
	ErrNoResponse  = errors.New("trigger device did not respond")
	ErrCodeRange   = errors.New("trigger code out of range for device")
)

// Ranged is implemented by devices that cannot carry every 8-bit code.
type Ranged interface {
	MaxCode() Code
}

// CheckCodes reports an ErrCodeRange error if ch is Ranged and any code
// exceeds its maximum. Channels that are not Ranged accept every code.
func CheckCodes(ch Channel, codes ...Code) error {
	r, ok := ch.(Ranged)
	if !ok {
		return nil
	}
	limit := r.MaxCode()
	for _, c := range codes {
		if c > limit {
			return fmt.Errorf("%w: %d > %d", ErrCodeRange, c, limit)
		}
	}
	return nil
}

var (
	mu      sync.Mutex
	openers = map[string]Opener{}
)

// Register makes a backend available under kind. It panics on duplicates,
// which can only happen through a programming error.
func Register(kind string, open Opener) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := openers[kind]; dup {
		panic("trigger: Register called twice for kind " + kind)
	}
	openers[kind] = open
}

// Kinds lists registered backend kinds in sorted order.
func Kinds() []string {
	mu.Lock()
	defer mu.Unlock()
	kinds := make([]string, 0, len(openers))
	for k := range openers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ParseSpec splits "kind[:address]".
func ParseSpec(spec string) (kind, address string) {
	kind, address, _ = strings.Cut(strings.TrimSpace(spec), ":")
	return strings.ToLower(kind), address
}

// Open opens the device described by spec. Any failure wraps ErrUnknownKind
// or ErrUnavailable.
func Open(spec string) (Device, error) {
	kind, address := ParseSpec(spec)
	if kind == "" {
		return nil, fmt.Errorf("%w: empty device spec", ErrUnavailable)
	}

	mu.Lock()
	open, ok := openers[kind]
	mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownKind, kind, strings.Join(Kinds(), ", "))
	}

	dev, err := open(address)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %q: %w", ErrUnavailable, kind, address, err)
	}
	return dev, nil
}
