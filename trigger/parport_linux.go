//go:build linux

package trigger

import (
	"fmt"
	"log/slog"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ppdev ioctls from <linux/ppdev.h>.
const (
	ppClaim   = 0x708b     // _IO('p', 0x8b)
	ppRelease = 0x708c     // _IO('p', 0x8c)
	ppWData   = 0x40017086 // _IOW('p', 0x86, unsigned char)
)

const DefaultParallelPort = "/dev/parport0"

func init() {
	Register("parport", func(address string) (Device, error) {
		return OpenParallelPort(address)
	})
}

// ParallelPort writes codes to the data pins of a parallel port through the
// Linux ppdev interface. The port is claimed for the lifetime of the value.
type ParallelPort struct {
	fd   int
	path string
	log  *slog.Logger
}

func OpenParallelPort(path string) (*ParallelPort, error) {
	if path == "" {
		path = DefaultParallelPort
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := ioctl(fd, ppClaim, 0); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("claim %s: %w", path, err)
	}
	p := &ParallelPort{fd: fd, path: path, log: slog.Default().With("device", path)}
	p.SetLevel(Idle)
	return p, nil
}

func (p *ParallelPort) SetLevel(code Code) {
	b := byte(code)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(p.fd), ppWData, uintptr(unsafe.Pointer(&b)))
	if errno != 0 {
		p.log.Error("write error", "code", code, "err", errno)
	}
}

func (p *ParallelPort) Close() error {
	if p.fd < 0 {
		return nil
	}
	p.SetLevel(Idle)
	ioctl(p.fd, ppRelease, 0)
	err := unix.Close(p.fd)
	p.fd = -1
	return err
}

func ioctl(fd int, req, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}
