package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using host introspection.
type RealDetector struct {
	// hostInfo is a seam over gopsutil for tests.
	hostInfo func(ctx context.Context) (*host.InfoStat, error)
	goos     string
	goarch   string
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{
		hostInfo: host.InfoWithContext,
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
	}
}

// Detect reads the kernel name and machine architecture and resolves them to
// a supported target.
//
// gopsutil supplies the kernel's view (OS, KernelArch, distro). If it fails,
// detection falls back to the Go runtime values, which match the binary that
// is running and are good enough to choose an artifact. A cancelled context
// is always a hard failure.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	kernel, machine := d.goos, d.goarch

	stat, err := d.hostInfo(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		stat = nil
	}
	if stat != nil {
		if stat.OS != "" {
			kernel = stat.OS
		}
		if stat.KernelArch != "" {
			machine = stat.KernelArch
		}
	}

	info, err := Resolve(kernel, machine)
	if err != nil {
		return nil, err
	}

	// Distro details are informational; missing values are fine.
	if info.IsLinux() && stat != nil {
		if p := normalizePlatform(stat.Platform); p != "" {
			info.Platform = p
			info.Family = mapFamily(stat.PlatformFamily)
			info.Version = normalizePlatform(stat.PlatformVersion)
		}
	}

	return info, nil
}
