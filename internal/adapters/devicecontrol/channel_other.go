//go:build !windows

package devicecontrol

import (
	"fmt"
	"runtime"

	"github.com/felixgeelhaar/junction/internal/ports"
)

func open(string, ports.Access) (ports.Handle, error) {
	return nil, fmt.Errorf("%w: %s has no DeviceIoControl", ports.ErrNotSupported, runtime.GOOS)
}
