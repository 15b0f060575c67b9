//go:build !linux

package sysprobe

import (
	"fmt"
	"runtime"
)

func statDiskUsage(path string) (DiskUsage, error) {
	return DiskUsage{}, fmt.Errorf("disk usage not supported on %s", runtime.GOOS)
}
