//go:build !linux

package trigger

import (
	"fmt"
	"runtime"
)

func init() {
	Register("parport", func(address string) (Device, error) {
		return nil, fmt.Errorf("%w: parport is only supported on linux, not %s", ErrUnavailable, runtime.GOOS)
	})
}
