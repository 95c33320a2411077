package trigger

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.bug.st/serial"
)

const (
	DLPBaudRate    = 9600
	dlpPingTimeout = time.Second
)

// DLP-IO8-G command bytes: ' pings (answer 'Q'), \ selects binary mode.
// Lines 1..8 are raised with '1'..'8' and lowered with the keys below them
// on a QWERTY keyboard.
var (
	dlpPing   = []byte{0x27}
	dlpBinary = []byte{0x5C}
	dlpSet    = [8]byte{'1', '2', '3', '4', '5', '6', '7', '8'}
	dlpUnset  = [8]byte{'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I'}
)

func init() {
	Register("dlp", func(address string) (Device, error) {
		return OpenDLPIO8G(address, DLPBaudRate)
	})
}

// DLPIO8G is a DLP-IO8-G USB digital I/O box. Bit k of a Code drives line k+1.
type DLPIO8G struct {
	port  io.ReadWriteCloser
	level Code
	buf   []byte
	log   *slog.Logger
}

func OpenDLPIO8G(device string, baudrate int) (*DLPIO8G, error) {
	if device == "" {
		return nil, fmt.Errorf("%w: dlp: no serial device given", ErrUnavailable)
	}
	mode := &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(dlpPingTimeout); err != nil {
		port.Close()
		return nil, err
	}
	return newDLPIO8G(port)
}

func newDLPIO8G(port io.ReadWriteCloser) (*DLPIO8G, error) {
	d := &DLPIO8G{port: port, buf: make([]byte, 0, 16), log: slog.Default().With("device", "dlp")}

	if !d.Ping() {
		port.Close()
		return nil, ErrNoResponse
	}

	if _, err := port.Write(dlpBinary); err != nil {
		port.Close()
		return nil, err
	}
	// Start from a known state: all lines low.
	d.level = 0xFF
	d.SetLevel(Idle)
	return d, nil
}

func (d *DLPIO8G) Close() error {
	if d.port == nil {
		return nil
	}
	d.SetLevel(Idle)
	err := d.port.Close()
	d.port = nil
	return err
}

func (d *DLPIO8G) Ping() bool {
	if _, err := d.port.Write(dlpPing); err != nil {
		return false
	}

	buf := make([]byte, 1)
	n, err := d.port.Read(buf)
	return err == nil && n == 1 && buf[0] == 'Q'
}

// SetLevel raises the lines set in code and lowers the ones that were high
// but are clear in code, in a single write.
func (d *DLPIO8G) SetLevel(code Code) {
	cmd := d.buf[:0]
	for bit := 0; bit < 8; bit++ {
		mask := Code(1) << bit
		was, want := d.level&mask != 0, code&mask != 0
		switch {
		case want && !was:
			cmd = append(cmd, dlpSet[bit])
		case !want && was:
			cmd = append(cmd, dlpUnset[bit])
		}
	}
	d.level = code
	if len(cmd) == 0 {
		return
	}
	if _, err := d.port.Write(cmd); err != nil {
		d.log.Error("write error", "code", code, "err", err)
	}
}
