package sysprobe

import (
	"context"
	"runtime"
	"strings"
)

// criticalServiceNames flag a service as critical when they appear as
// a substring of its lowercased name.
var criticalServiceNames = []string{
	"sshd", "httpd", "apache2", "nginx", "mysql", "mariadb",
	"postgresql", "mongodb", "redis", "memcached", "docker", "containerd",
	"firewalld", "ufw", "ntpd", "systemd", "networkmanager", "cron",
}

// windowsCriticalServices is the equivalent list for `net start`
// output, matched case-insensitively against the full display name.
var windowsCriticalServices = []string{
	"Windows Firewall", "Windows Defender", "Windows Update",
	"SQL Server", "IIS", "DHCP", "DNS", "Print Spooler",
	"Remote Desktop", "Windows Time",
}

// ServicesInfo reports running services and the critical subset.
type ServicesInfo struct {
	Running []string

	// Critical is deduplicated by exact name, first appearance kept.
	Critical []string
}

// Services enumerates running services through the platform service
// manager. systemctl is tried first on Linux, then the SysV service
// listing. When neither reports anything, the process list is scanned
// for critical daemon names; that path fills Critical only.
func (h *Host) Services(ctx context.Context) *ServicesInfo {
	info := &ServicesInfo{}

	switch runtime.GOOS {
	case "linux":
		h.linuxServices(ctx, info)
	case "windows":
		h.windowsServices(ctx, info)
	}

	if len(info.Running) == 0 {
		h.scanProcessCritical(info)
	}

	info.Critical = dedupeKeepOrder(info.Critical)
	return info
}

func (h *Host) linuxServices(ctx context.Context, info *ServicesInfo) {
	if out, err := h.commandOutput(ctx, "systemctl", "list-units", "--type=service", "--state=running"); err == nil {
		for _, line := range strings.Split(out, "\n") {
			if !strings.Contains(line, ".service") || !strings.Contains(line, "running") {
				continue
			}
			name, _, _ := strings.Cut(line, ".service")
			name = strings.TrimSpace(name)
			info.Running = append(info.Running, name)
			if isCriticalService(name) {
				info.Critical = append(info.Critical, name)
			}
		}
		return
	}

	// Non-systemd hosts.
	out, err := h.commandOutput(ctx, "service", "--status-all")
	if err != nil {
		h.log().Debug("service enumeration unavailable", "error", err)
		return
	}
	for _, line := range strings.Split(out, "\n") {
		_, after, ok := strings.Cut(line, "[ + ]")
		if !ok {
			continue
		}
		name := strings.TrimSpace(after)
		if name == "" {
			continue
		}
		info.Running = append(info.Running, name)
		if isCriticalService(name) {
			info.Critical = append(info.Critical, name)
		}
	}
}

func (h *Host) windowsServices(ctx context.Context, info *ServicesInfo) {
	out, err := h.commandOutput(ctx, "net", "start")
	if err != nil {
		h.log().Debug("service enumeration unavailable", "error", err)
		return
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "The following") || strings.HasPrefix(line, "The command") {
			continue
		}
		info.Running = append(info.Running, line)
		lower := strings.ToLower(line)
		for _, critical := range windowsCriticalServices {
			if strings.Contains(lower, strings.ToLower(critical)) {
				info.Critical = append(info.Critical, line)
				break
			}
		}
	}
}

// scanProcessCritical marks critical daemons straight from the
// process list when no service manager answered.
func (h *Host) scanProcessCritical(info *ServicesInfo) {
	pids, err := h.listPids()
	if err != nil {
		h.log().Debug("process table unavailable", "error", err)
		return
	}
	for _, pid := range pids {
		if name := h.processName(pid); name != "" && isCriticalService(name) {
			info.Critical = append(info.Critical, name)
		}
	}
}

func isCriticalService(name string) bool {
	lower := strings.ToLower(name)
	for _, critical := range criticalServiceNames {
		if strings.Contains(lower, critical) {
			return true
		}
	}
	return false
}

// dedupeKeepOrder drops exact duplicates, keeping first appearances in
// place. Near-duplicates like "nginx" and "nginx.service" stay
// distinct.
func dedupeKeepOrder(names []string) []string {
	if len(names) < 2 {
		return names
	}
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
