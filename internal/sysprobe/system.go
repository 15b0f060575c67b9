package sysprobe

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"unicode"
)

// SystemInfo summarizes the operating system, CPU, memory, disk and
// uptime of the host. CPU, Memory and Disk are nil when their source
// was unavailable; Uptime is empty in the same case.
type SystemInfo struct {
	OS     string
	Kernel string

	CPU    *CPUStats
	Memory *MemoryStats
	Disk   *DiskStats

	Uptime string
}

// CPUStats describes the processor.
type CPUStats struct {
	Model         string
	Cores         int
	PhysicalCores int

	// UsagePercent is the busy share of all CPU time accumulated since
	// boot, from /proc/stat. One decimal.
	UsagePercent float64
}

// MemoryStats describes physical memory from /proc/meminfo.
type MemoryStats struct {
	TotalGB     float64
	UsedPercent float64
}

// DiskStats describes the root filesystem.
type DiskStats struct {
	TotalGB     float64
	UsedPercent float64
}

// System collects OS, CPU, memory, disk and uptime information. The
// top-level result is always non-nil; sub-groups degrade to nil
// independently when their source cannot be read.
func (h *Host) System(ctx context.Context) *SystemInfo {
	info := &SystemInfo{
		OS:     osName(runtime.GOOS),
		Kernel: h.kernelRelease(ctx),
		CPU:    h.cpuStats(),
		Memory: h.memoryStats(),
		Uptime: h.uptime(),
	}

	if du, err := h.diskUsage(h.path("/")); err != nil {
		h.log().Debug("root disk usage unavailable", "error", err)
	} else {
		info.Disk = &DiskStats{
			TotalGB:     round2(float64(du.Total) / (1 << 30)),
			UsedPercent: du.UsedPercent(),
		}
	}

	return info
}

// osName maps a GOOS value to the conventional capitalized OS name.
func osName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	}
	r := []rune(goos)
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r)
}

// kernelRelease reads the kernel version from /proc, falling back to
// uname -r and then to "unknown".
func (h *Host) kernelRelease(ctx context.Context) string {
	if rel := h.readTrimmed("/proc/sys/kernel/osrelease"); rel != "" {
		return rel
	}
	if out, err := h.commandOutput(ctx, "uname", "-r"); err == nil {
		if rel := strings.TrimSpace(out); rel != "" {
			return rel
		}
	}
	h.log().Debug("kernel release unavailable")
	return "unknown"
}

// cpuStats combines the cpuinfo model and core counts with the
// boot-to-now usage percentage from /proc/stat. Nil when /proc/stat
// cannot be parsed, since the usage figure is the live datum of the
// group.
func (h *Host) cpuStats() *CPUStats {
	pct, err := h.cpuBusyPercent()
	if err != nil {
		h.log().Debug("cpu usage unavailable", "error", err)
		return nil
	}

	logical, physical := h.coreCounts()
	return &CPUStats{
		Model:         h.cpuModel(),
		Cores:         logical,
		PhysicalCores: physical,
		UsagePercent:  pct,
	}
}

// cpuModel extracts the "model name" line from /proc/cpuinfo.
func (h *Host) cpuModel() string {
	data, err := h.readFile("/proc/cpuinfo")
	if err != nil {
		h.log().Debug("cpuinfo unavailable", "error", err)
		return "Unknown CPU"
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(key) == "model name" {
			if model := strings.TrimSpace(value); model != "" {
				return model
			}
		}
	}
	return "Unknown CPU"
}

// coreCounts returns the logical core count and the number of distinct
// physical cores from /proc/cpuinfo. Falls back to runtime.NumCPU for
// both when cpuinfo is unreadable or carries no topology.
func (h *Host) coreCounts() (logical, physical int) {
	data, err := h.readFile("/proc/cpuinfo")
	if err != nil {
		n := runtime.NumCPU()
		return n, n
	}

	physSeen := make(map[string]struct{})
	var physicalID string
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "processor":
			logical++
		case "physical id":
			physicalID = value
		case "core id":
			physSeen[physicalID+"/"+value] = struct{}{}
		}
	}

	if logical == 0 {
		logical = runtime.NumCPU()
	}
	physical = len(physSeen)
	if physical == 0 {
		physical = logical
	}
	return logical, physical
}

// cpuBusyPercent computes the share of non-idle CPU time accumulated
// since boot from the aggregate cpu line of /proc/stat.
func (h *Host) cpuBusyPercent() (float64, error) {
	data, err := h.readFile("/proc/stat")
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}
		var total, idle float64
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return 0, fmt.Errorf("parse /proc/stat field %q: %w", f, err)
			}
			total += v
			// idle + iowait count as not busy.
			if i == 3 || i == 4 {
				idle += v
			}
		}
		if total == 0 {
			return 0, fmt.Errorf("empty cpu line in /proc/stat")
		}
		return round1((total - idle) / total * 100), nil
	}
	return 0, fmt.Errorf("no aggregate cpu line in /proc/stat")
}

// memoryStats derives total size and used percentage from
// /proc/meminfo. Used follows the MemAvailable convention, with
// MemFree as a fallback on kernels that predate it.
func (h *Host) memoryStats() *MemoryStats {
	fields, err := h.meminfo()
	if err != nil {
		h.log().Debug("meminfo unavailable", "error", err)
		return nil
	}
	total, ok := fields["MemTotal"]
	if !ok || total == 0 {
		h.log().Debug("meminfo missing MemTotal")
		return nil
	}
	avail, ok := fields["MemAvailable"]
	if !ok {
		avail = fields["MemFree"]
	}
	return &MemoryStats{
		TotalGB:     round2(float64(total) / (1 << 20)),
		UsedPercent: round1(float64(total-avail) / float64(total) * 100),
	}
}

// meminfo parses /proc/meminfo into a map of kB values.
func (h *Host) meminfo() (map[string]uint64, error) {
	data, err := h.readFile("/proc/meminfo")
	if err != nil {
		return nil, err
	}
	fields := make(map[string]uint64)
	for _, line := range strings.Split(string(data), "\n") {
		key, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		parts := strings.Fields(rest)
		if len(parts) == 0 {
			continue
		}
		v, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			continue
		}
		fields[strings.TrimSpace(key)] = v
	}
	return fields, nil
}

// uptime renders /proc/uptime as "D days, H hours, M minutes".
func (h *Host) uptime() string {
	secs := h.uptimeSeconds()
	if secs <= 0 {
		h.log().Debug("uptime unavailable")
		return ""
	}
	total := int64(secs)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	return fmt.Sprintf("%d days, %d hours, %d minutes", days, hours, minutes)
}
