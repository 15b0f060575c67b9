package sysprobe

import (
	"strconv"
	"strings"
	"time"
)

// SampleInterval separates the two counter snapshots behind the
// traffic probe. This is the only deliberate delay in the catalog.
const SampleInterval = time.Second

// InterfaceTraffic holds the cumulative counters of a single NIC.
type InterfaceTraffic struct {
	SentMB      float64
	ReceivedMB  float64
	PacketsSent uint64
	PacketsRecv uint64
}

// TrafficInfo reports current throughput and cumulative transfer
// totals. Speeds come from the delta between two snapshots one
// SampleInterval apart; totals come from the second snapshot.
type TrafficInfo struct {
	DownloadKBps float64
	UploadKBps   float64

	TotalSentMB float64
	TotalRecvMB float64
	PacketsSent uint64
	PacketsRecv uint64

	PerInterface map[string]InterfaceTraffic
}

// Traffic samples /proc/net/dev twice and derives throughput. Blocks
// for SampleInterval between the snapshots.
func (h *Host) Traffic() *TrafficInfo {
	first, err := h.readNetDev()
	if err != nil {
		h.log().Debug("network counters unavailable", "error", err)
		return nil
	}
	h.sleep(SampleInterval)
	second, err := h.readNetDev()
	if err != nil {
		h.log().Debug("network counters unavailable", "error", err)
		return nil
	}

	t1 := sumNetDev(first)
	t2 := sumNetDev(second)

	info := &TrafficInfo{
		DownloadKBps: round2(float64(counterDelta(t1.BytesRecv, t2.BytesRecv)) / 1024),
		UploadKBps:   round2(float64(counterDelta(t1.BytesSent, t2.BytesSent)) / 1024),
		TotalSentMB:  round2(float64(t2.BytesSent) / (1 << 20)),
		TotalRecvMB:  round2(float64(t2.BytesRecv) / (1 << 20)),
		PacketsSent:  t2.PacketsSent,
		PacketsRecv:  t2.PacketsRecv,
		PerInterface: make(map[string]InterfaceTraffic, len(second)),
	}
	for name, c := range second {
		info.PerInterface[name] = InterfaceTraffic{
			SentMB:      round2(float64(c.BytesSent) / (1 << 20)),
			ReceivedMB:  round2(float64(c.BytesRecv) / (1 << 20)),
			PacketsSent: c.PacketsSent,
			PacketsRecv: c.PacketsRecv,
		}
	}
	return info
}

type netDevCounters struct {
	BytesRecv   uint64
	BytesSent   uint64
	PacketsRecv uint64
	PacketsSent uint64
}

// readNetDev parses /proc/net/dev into per-interface cumulative
// counters. Loopback is included, matching the kernel's own totals.
func (h *Host) readNetDev() (map[string]netDevCounters, error) {
	data, err := h.readFile("/proc/net/dev")
	if err != nil {
		return nil, err
	}
	counters := make(map[string]netDevCounters)
	for _, line := range strings.Split(string(data), "\n") {
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			// Header lines carry no colon-separated interface name.
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 10 {
			continue
		}
		var c netDevCounters
		c.BytesRecv, _ = strconv.ParseUint(fields[0], 10, 64)
		c.PacketsRecv, _ = strconv.ParseUint(fields[1], 10, 64)
		c.BytesSent, _ = strconv.ParseUint(fields[8], 10, 64)
		c.PacketsSent, _ = strconv.ParseUint(fields[9], 10, 64)
		counters[strings.TrimSpace(name)] = c
	}
	return counters, nil
}

func sumNetDev(m map[string]netDevCounters) netDevCounters {
	var total netDevCounters
	for _, c := range m {
		total.BytesRecv += c.BytesRecv
		total.BytesSent += c.BytesSent
		total.PacketsRecv += c.PacketsRecv
		total.PacketsSent += c.PacketsSent
	}
	return total
}

// counterDelta guards against counter resets between snapshots.
func counterDelta(before, after uint64) uint64 {
	if after < before {
		return 0
	}
	return after - before
}
