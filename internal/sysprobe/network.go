package sysprobe

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/douxx-tech/marechan/internal/httpkit"
)

// NetworkInfo describes the host's network identity and internet
// reachability.
type NetworkInfo struct {
	Hostname   string
	LocalIP    string
	MAC        string
	Interfaces []string

	InternetAvailable bool

	// LatencyMS is the round trip of the reachability check in
	// milliseconds, -1 when the check failed.
	LatencyMS float64
}

// Network collects hostname, addressing and reachability. Any response
// from the probe URL counts as available, whatever its status code.
func (h *Host) Network(ctx context.Context) *NetworkInfo {
	info := &NetworkInfo{
		LocalIP:   localIP(),
		MAC:       firstMAC(),
		LatencyMS: -1,
	}

	if name, err := os.Hostname(); err == nil {
		info.Hostname = name
	} else {
		h.log().Debug("hostname unavailable", "error", err)
	}

	if ifaces, err := net.Interfaces(); err == nil {
		for _, iface := range ifaces {
			info.Interfaces = append(info.Interfaces, iface.Name)
		}
	} else {
		h.log().Debug("interface list unavailable", "error", err)
	}

	if ms, ok := h.checkInternet(ctx); ok {
		info.InternetAvailable = true
		info.LatencyMS = ms
	}

	return info
}

// localIP discovers the outbound interface address by opening a UDP
// socket toward a broadcast address. No packet is sent.
func localIP() string {
	conn, err := net.Dial("udp", "10.255.255.255:1")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}

// firstMAC returns the hardware address of the first up non-loopback
// interface, or "".
func firstMAC() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if mac := iface.HardwareAddr.String(); mac != "" {
			return mac
		}
	}
	return ""
}

// checkInternet performs one GET against the probe URL and measures
// the round trip.
func (h *Host) checkInternet(ctx context.Context) (float64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.probeURL(), nil)
	if err != nil {
		return 0, false
	}
	start := time.Now()
	resp, err := h.httpClient().Do(req)
	if err != nil {
		h.log().Debug("connectivity check failed", "url", h.probeURL(), "error", err)
		return 0, false
	}
	httpkit.DrainAndClose(resp.Body, 4096)
	return round2(float64(time.Since(start)) / float64(time.Millisecond)), true
}
