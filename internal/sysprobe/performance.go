package sysprobe

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LoadAverages is the 1/5/15 minute run-queue triple from
// /proc/loadavg.
type LoadAverages struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// PerformanceInfo aggregates load, process count, cumulative network
// totals and swap pressure. Load is nil and the numeric fields are
// negative when their source was unavailable.
type PerformanceInfo struct {
	Load *LoadAverages

	ProcessCount int

	NetSentMB float64
	NetRecvMB float64

	SwapPercent float64

	// BootTime is "2006-01-02 15:04:05" in local time, empty when the
	// boot timestamp could not be read.
	BootTime string
}

// Performance collects the performance snapshot. Every field degrades
// independently of its siblings.
func (h *Host) Performance() *PerformanceInfo {
	info := &PerformanceInfo{
		Load:         h.loadAverages(),
		ProcessCount: -1,
		NetSentMB:    -1,
		NetRecvMB:    -1,
		SwapPercent:  -1,
	}

	if pids, err := h.listPids(); err == nil {
		info.ProcessCount = len(pids)
	} else {
		h.log().Debug("process table unavailable", "error", err)
	}

	if counters, err := h.readNetDev(); err == nil {
		total := sumNetDev(counters)
		info.NetSentMB = round2(float64(total.BytesSent) / (1 << 20))
		info.NetRecvMB = round2(float64(total.BytesRecv) / (1 << 20))
	} else {
		h.log().Debug("network counters unavailable", "error", err)
	}

	if pct, err := h.swapPercent(); err == nil {
		info.SwapPercent = pct
	} else {
		h.log().Debug("swap usage unavailable", "error", err)
	}

	if bt, err := h.bootTime(); err == nil {
		info.BootTime = bt.Format("2006-01-02 15:04:05")
	} else {
		h.log().Debug("boot time unavailable", "error", err)
	}

	return info
}

func (h *Host) loadAverages() *LoadAverages {
	line := h.readTrimmed("/proc/loadavg")
	fields := strings.Fields(line)
	if len(fields) < 3 {
		h.log().Debug("load averages unavailable")
		return nil
	}
	var vals [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			h.log().Debug("load averages unparseable", "value", fields[i], "error", err)
			return nil
		}
		vals[i] = v
	}
	return &LoadAverages{Load1: vals[0], Load5: vals[1], Load15: vals[2]}
}

// swapPercent reports used swap from /proc/meminfo. A host without
// swap reports 0, not an error.
func (h *Host) swapPercent() (float64, error) {
	fields, err := h.meminfo()
	if err != nil {
		return 0, err
	}
	total, ok := fields["SwapTotal"]
	if !ok {
		return 0, fmt.Errorf("meminfo missing SwapTotal")
	}
	if total == 0 {
		return 0, nil
	}
	free := fields["SwapFree"]
	return round1(float64(total-free) / float64(total) * 100), nil
}

// bootTime reads the btime line of /proc/stat.
func (h *Host) bootTime() (time.Time, error) {
	data, err := h.readFile("/proc/stat")
	if err != nil {
		return time.Time{}, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "btime" {
			secs, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return time.Time{}, fmt.Errorf("parse btime %q: %w", fields[1], err)
			}
			return time.Unix(secs, 0), nil
		}
	}
	return time.Time{}, fmt.Errorf("no btime line in /proc/stat")
}
