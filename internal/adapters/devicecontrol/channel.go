// Package devicecontrol implements ports.DeviceControl with CreateFile and
// DeviceIoControl. Every raw OS call made for reparse points lives here.
package devicecontrol

import (
	"github.com/felixgeelhaar/junction/internal/domain/platform"
	"github.com/felixgeelhaar/junction/internal/ports"
)

// Channel opens reparse handles after checking the host can use them.
type Channel struct {
	platform *platform.Platform
}

// New creates a Channel gated on p.
func New(p *platform.Platform) *Channel {
	return &Channel{platform: p}
}

// Supported reports whether the platform has reparse points.
func (c *Channel) Supported() error {
	return c.platform.CheckReparseSupport()
}

// Open opens path as a reparse point. It fails with an error wrapping
// ports.ErrNotSupported when the platform lacks reparse points, and with an
// *os.PathError carrying the OS error code when the open itself fails.
func (c *Channel) Open(path string, access ports.Access) (ports.Handle, error) {
	if err := c.Supported(); err != nil {
		return nil, err
	}
	return open(path, access)
}

// Ensure Channel implements ports.DeviceControl.
var _ ports.DeviceControl = (*Channel)(nil)
