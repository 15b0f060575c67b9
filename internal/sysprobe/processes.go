package sysprobe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Kernel ticks per second (USER_HZ). Fixed at 100 on every supported
// kernel; /proc cpu times are expressed in these units.
const clockTicks = 100

// ProcessInfo summarizes the process table.
type ProcessInfo struct {
	Total   int
	Running int

	// TopCPU and TopMemory hold up to five entries "name (X.X%)",
	// heaviest first. Processes at 0% are left out.
	TopCPU    []string
	TopMemory []string
}

// Processes scans /proc for per-process CPU and memory consumption.
// CPU share is lifetime usage (utime+stime over process age), so no
// sampling delay is needed. Nil when /proc cannot be listed.
func (h *Host) Processes() *ProcessInfo {
	pids, err := h.listPids()
	if err != nil {
		h.log().Debug("process table unavailable", "error", err)
		return nil
	}

	uptime := h.uptimeSeconds()
	memTotal := h.memTotalKB()

	type proc struct {
		name string
		cpu  float64
		mem  float64
	}
	procs := make([]proc, 0, len(pids))
	info := &ProcessInfo{}

	for _, pid := range pids {
		stat, err := h.readFile(filepath.Join("/proc", pid, "stat"))
		if err != nil {
			// Raced with process exit, or no permission.
			continue
		}
		state, fields := statAfterComm(string(stat))
		if state == "" {
			continue
		}
		info.Total++
		if state == "R" {
			info.Running++
		}

		p := proc{name: h.processName(pid)}
		if p.name == "" {
			continue
		}

		if uptime > 0 && len(fields) > 19 {
			utime, _ := strconv.ParseFloat(fields[11], 64)
			stime, _ := strconv.ParseFloat(fields[12], 64)
			start, _ := strconv.ParseFloat(fields[19], 64)
			age := uptime - start/clockTicks
			if age > 0 {
				p.cpu = (utime + stime) / clockTicks / age * 100
			}
		}
		if memTotal > 0 {
			if rss := h.vmRSSKB(pid); rss > 0 {
				p.mem = float64(rss) / float64(memTotal) * 100
			}
		}
		procs = append(procs, p)
	}

	byCPU := make([]proc, len(procs))
	copy(byCPU, procs)
	sort.SliceStable(byCPU, func(i, j int) bool { return byCPU[i].cpu > byCPU[j].cpu })
	for _, p := range head(byCPU, 5) {
		if p.cpu > 0 {
			info.TopCPU = append(info.TopCPU, fmt.Sprintf("%s (%.1f%%)", p.name, p.cpu))
		}
	}

	byMem := procs
	sort.SliceStable(byMem, func(i, j int) bool { return byMem[i].mem > byMem[j].mem })
	for _, p := range head(byMem, 5) {
		if p.mem > 0 {
			info.TopMemory = append(info.TopMemory, fmt.Sprintf("%s (%.1f%%)", p.name, p.mem))
		}
	}

	return info
}

// listPids returns the numeric entries of /proc.
func (h *Host) listPids() ([]string, error) {
	entries, err := os.ReadDir(h.path("/proc"))
	if err != nil {
		return nil, err
	}
	var pids []string
	for _, e := range entries {
		if e.IsDir() && isDigits(e.Name()) {
			pids = append(pids, e.Name())
		}
	}
	return pids, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// processName resolves a pid to its short command name via comm, with
// the stat comm field as fallback.
func (h *Host) processName(pid string) string {
	if name := h.readTrimmed(filepath.Join("/proc", pid, "comm")); name != "" {
		return name
	}
	data, err := h.readFile(filepath.Join("/proc", pid, "stat"))
	if err != nil {
		return ""
	}
	s := string(data)
	open := strings.IndexByte(s, '(')
	closing := strings.LastIndexByte(s, ')')
	if open >= 0 && closing > open {
		return s[open+1 : closing]
	}
	return ""
}

// statAfterComm splits a /proc/[pid]/stat line at the closing paren of
// the comm field. The comm itself may contain spaces and parens, so
// field offsets only become stable after the last ')'.
func statAfterComm(stat string) (state string, fields []string) {
	closing := strings.LastIndexByte(stat, ')')
	if closing < 0 {
		return "", nil
	}
	fields = strings.Fields(stat[closing+1:])
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields
}

// vmRSSKB reads the resident set size from /proc/[pid]/status.
func (h *Host) vmRSSKB(pid string) uint64 {
	data, err := h.readFile(filepath.Join("/proc", pid, "status"))
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line[len("VmRSS:"):])
		if len(fields) == 0 {
			return 0
		}
		v, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return 0
}

// uptimeSeconds returns /proc/uptime as a float, 0 when unreadable.
func (h *Host) uptimeSeconds() float64 {
	fields := strings.Fields(h.readTrimmed("/proc/uptime"))
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return v
}

// memTotalKB returns MemTotal from /proc/meminfo, 0 when unreadable.
func (h *Host) memTotalKB() uint64 {
	fields, err := h.meminfo()
	if err != nil {
		return 0
	}
	return fields["MemTotal"]
}

// head returns at most n leading elements of s.
func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
