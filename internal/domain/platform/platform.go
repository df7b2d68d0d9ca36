// Package platform provides host detection and the runtime capability gate
// for reparse point manipulation.
package platform

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/felixgeelhaar/junction/internal/ports"
	"golang.org/x/mod/semver"
)

// MinReparseVersion is the first Windows kernel (NTFS 5, Windows 2000) with
// mount-point reparse points.
const MinReparseVersion = "v5.0.0"

// OS represents the operating system type.
type OS string

const (
	// OSDarwin is macOS.
	OSDarwin OS = "darwin"
	// OSLinux is Linux (native or WSL).
	OSLinux OS = "linux"
	// OSWindows is Windows.
	OSWindows OS = "windows"
	// OSUnknown is an unsupported OS.
	OSUnknown OS = "unknown"
)

// Environment represents the execution environment.
type Environment string

const (
	// EnvNative is a native OS environment.
	EnvNative Environment = "native"
	// EnvWSL1 is Windows Subsystem for Linux version 1.
	EnvWSL1 Environment = "wsl1"
	// EnvWSL2 is Windows Subsystem for Linux version 2.
	EnvWSL2 Environment = "wsl2"
)

// Platform contains detected platform information.
type Platform struct {
	os          OS
	arch        string
	environment Environment
	version     string // kernel version, e.g. 10.0.22631
}

var (
	detected     *Platform
	detectOnce   sync.Once
	testPlatform *Platform // For testing
	testMu       sync.RWMutex
)

// Detect returns the current platform information.
// Results are cached after the first call.
func Detect() *Platform {
	testMu.RLock()
	p := testPlatform
	testMu.RUnlock()
	if p != nil {
		return p
	}

	detectOnce.Do(func() {
		detected = detect()
	})
	return detected
}

// SetTestPlatform sets a mock platform for testing.
// Pass nil to reset to actual detection.
func SetTestPlatform(p *Platform) {
	testMu.Lock()
	defer testMu.Unlock()
	testPlatform = p
}

func detect() *Platform {
	p := &Platform{
		arch:        runtime.GOARCH,
		environment: EnvNative,
		version:     kernelVersion(),
	}

	switch runtime.GOOS {
	case "darwin":
		p.os = OSDarwin
	case "linux":
		p.os = OSLinux
		p.detectWSL()
	case "windows":
		p.os = OSWindows
	default:
		p.os = OSUnknown
	}

	return p
}

// detectWSL marks the platform as WSL when /proc/version names Microsoft.
func (p *Platform) detectWSL() {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return
	}

	version := strings.ToLower(string(data))
	if !strings.Contains(version, "microsoft") && !strings.Contains(version, "wsl") {
		return
	}

	// WSL 2 uses a real Linux kernel and has /run/WSL
	if _, err := os.Stat("/run/WSL"); err == nil || strings.Contains(version, "wsl2") {
		p.environment = EnvWSL2
		return
	}
	p.environment = EnvWSL1
}

// OS returns the operating system.
func (p *Platform) OS() OS {
	return p.os
}

// Arch returns the architecture.
func (p *Platform) Arch() string {
	return p.arch
}

// Environment returns the execution environment.
func (p *Platform) Environment() Environment {
	return p.environment
}

// Version returns the kernel version, empty when unknown.
func (p *Platform) Version() string {
	return p.version
}

// IsWindows returns true if running on Windows (native).
func (p *Platform) IsWindows() bool {
	return p.os == OSWindows
}

// IsWSL returns true if running in WSL (1 or 2).
func (p *Platform) IsWSL() bool {
	return p.environment == EnvWSL1 || p.environment == EnvWSL2
}

// SupportsReparsePoints reports whether the host can set, query and clear
// mount-point reparse points.
func (p *Platform) SupportsReparsePoints() bool {
	if p.os != OSWindows {
		return false
	}
	v := canonicalVersion(p.version)
	return v != "" && semver.Compare(v, MinReparseVersion) >= 0
}

// CheckReparseSupport returns an error wrapping ports.ErrNotSupported when
// SupportsReparsePoints is false.
func (p *Platform) CheckReparseSupport() error {
	if p.SupportsReparsePoints() {
		return nil
	}
	if p.IsWSL() {
		return fmt.Errorf("%w: %s (run the Windows build from the Windows side)", ports.ErrNotSupported, p)
	}
	return fmt.Errorf("%w: %s", ports.ErrNotSupported, p)
}

// canonicalVersion turns "10.0.19045" into "v10.0.19045", or "" if it is not
// a dotted numeric version.
func canonicalVersion(version string) string {
	if version == "" {
		return ""
	}
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// String returns a human-readable description.
func (p *Platform) String() string {
	parts := []string{string(p.os), p.arch}

	if p.environment != EnvNative && p.environment != "" {
		parts = append(parts, string(p.environment))
	}
	if p.version != "" {
		parts = append(parts, p.version)
	}

	return strings.Join(parts, "/")
}

// New creates a Platform with specified values (for testing).
func New(os OS, arch string, env Environment, version string) *Platform {
	return &Platform{
		os:          os,
		arch:        arch,
		environment: env,
		version:     version,
	}
}
