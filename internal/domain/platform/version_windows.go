//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// kernelVersion reads the real kernel version. RtlGetVersion is not subject
// to the compatibility shims that make GetVersionEx lie to unmanifested binaries.
func kernelVersion() string {
	v := windows.RtlGetVersion()
	return fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber)
}
