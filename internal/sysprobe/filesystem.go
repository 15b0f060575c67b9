package sysprobe

import (
	"os"
	"strconv"
	"strings"
)

// DiskMount describes one mounted block device.
type DiskMount struct {
	Device     string
	Mountpoint string
	FSType     string
	TotalGB    float64
	UsedGB     float64
	Percent    float64
}

// FilesystemInfo lists block-device mounts and cumulative IO
// operation counts.
type FilesystemInfo struct {
	Disks []DiskMount

	IORead  uint64
	IOWrite uint64
}

// Filesystem reads /proc/mounts for block-device mounts and
// /proc/diskstats for IO totals. Mounts whose usage cannot be stated
// are skipped. Nil when the mount table is unreadable.
func (h *Host) Filesystem() *FilesystemInfo {
	data, err := h.readFile("/proc/mounts")
	if err != nil {
		h.log().Debug("mount table unavailable", "error", err)
		return nil
	}

	info := &FilesystemInfo{}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.HasPrefix(fields[0], "/dev") {
			continue
		}
		mount := unescapeMount(fields[1])
		du, err := h.diskUsage(h.path(mount))
		if err != nil {
			h.log().Debug("disk usage unavailable", "mount", mount, "error", err)
			continue
		}
		info.Disks = append(info.Disks, DiskMount{
			Device:     fields[0],
			Mountpoint: mount,
			FSType:     fields[2],
			TotalGB:    round2(float64(du.Total) / (1 << 30)),
			UsedGB:     round2(float64(du.Used) / (1 << 30)),
			Percent:    du.UsedPercent(),
		})
	}

	info.IORead, info.IOWrite = h.diskOps()
	return info
}

// unescapeMount decodes the octal escapes /proc/mounts uses for
// whitespace in paths, "\040" for space most commonly.
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// diskOps sums completed read and write operations from
// /proc/diskstats. Partition rows are excluded when /sys/block names
// the whole devices; without that listing every row counts.
func (h *Host) diskOps() (reads, writes uint64) {
	data, err := h.readFile("/proc/diskstats")
	if err != nil {
		h.log().Debug("diskstats unavailable", "error", err)
		return 0, 0
	}

	wholeDisks := make(map[string]struct{})
	if entries, err := os.ReadDir(h.path("/sys/block")); err == nil {
		for _, e := range entries {
			wholeDisks[e.Name()] = struct{}{}
		}
	}

	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 8 {
			continue
		}
		if len(wholeDisks) > 0 {
			if _, ok := wholeDisks[fields[2]]; !ok {
				continue
			}
		}
		r, _ := strconv.ParseUint(fields[3], 10, 64)
		w, _ := strconv.ParseUint(fields[7], 10, 64)
		reads += r
		writes += w
	}
	return reads, writes
}
