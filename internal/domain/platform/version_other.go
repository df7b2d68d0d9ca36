//go:build !windows

package platform

func kernelVersion() string {
	return ""
}
