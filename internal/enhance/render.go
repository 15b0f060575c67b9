package enhance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/douxx-tech/marechan/internal/sysprobe"
)

// Renderers are pure functions from a probe result to the lines it
// contributes. A nil result contributes nothing, and inside a result
// each absent field drops only its own line. Label wording is a
// contract: the prompts built from these lines are what the model and
// the tests see.

func renderTime(ti *sysprobe.TimeInfo) []string {
	if ti == nil {
		return nil
	}
	return []string{
		"Current time: " + ti.Full,
		"UTC time: " + ti.UTC,
	}
}

func renderSystem(si *sysprobe.SystemInfo) []string {
	if si == nil {
		return nil
	}
	lines := []string{fmt.Sprintf("System: %s %s", si.OS, si.Kernel)}
	if si.CPU != nil {
		lines = append(lines, fmt.Sprintf("CPU: %s (%d cores, %s%% usage)",
			si.CPU.Model, si.CPU.Cores, num(si.CPU.UsagePercent)))
	}
	if si.Memory != nil {
		lines = append(lines, fmt.Sprintf("RAM: %sGB total, %s%% used",
			num(si.Memory.TotalGB), num(si.Memory.UsedPercent)))
	}
	if si.Disk != nil {
		lines = append(lines, fmt.Sprintf("Disk: %sGB total, %s%% used",
			num(si.Disk.TotalGB), num(si.Disk.UsedPercent)))
	}
	if si.Uptime != "" {
		lines = append(lines, "System uptime: "+si.Uptime)
	}
	return lines
}

func renderNetwork(ni *sysprobe.NetworkInfo) []string {
	if ni == nil {
		return nil
	}
	lines := []string{fmt.Sprintf("Network: IP %s, hostname %s", ni.LocalIP, ni.Hostname)}
	if len(ni.Interfaces) > 0 {
		lines = append(lines, "Network interfaces: "+strings.Join(ni.Interfaces, ", "))
	}
	if ni.InternetAvailable {
		lines = append(lines, fmt.Sprintf("Internet connection: Available (latency: %sms)", num(ni.LatencyMS)))
	} else {
		lines = append(lines, "Internet connection: Unavailable")
	}
	return lines
}

func renderLocale(li *sysprobe.LocaleInfo) []string {
	if li == nil {
		return nil
	}
	return []string{
		fmt.Sprintf("System locale: %s, %s", li.Language, li.Encoding),
		"Currency: " + li.Currency,
		"Time format: " + li.TimeFormat,
		"Date format: " + li.DateFormat,
	}
}

func renderTimezone(zi *sysprobe.TimezoneInfo) []string {
	if zi == nil {
		return nil
	}
	return []string{
		"Timezone information:",
		"  Current timezone: " + zi.Name,
		"  UTC offset: " + zi.UTCOffset,
		fmt.Sprintf("  DST active: %t", zi.DSTActive),
	}
}

func renderPerformance(pi *sysprobe.PerformanceInfo) []string {
	if pi == nil {
		return nil
	}
	lines := []string{"System performance:"}
	if pi.Load != nil {
		lines = append(lines, fmt.Sprintf("  CPU load: 1min: %s, 5min: %s, 15min: %s",
			num(pi.Load.Load1), num(pi.Load.Load5), num(pi.Load.Load15)))
	} else {
		lines = append(lines, "  CPU load: 1min: -1, 5min: -1, 15min: -1")
	}
	if pi.ProcessCount >= 0 {
		lines = append(lines, fmt.Sprintf("  Process count: %d", pi.ProcessCount))
	}
	if pi.NetSentMB >= 0 && pi.NetRecvMB >= 0 {
		lines = append(lines, fmt.Sprintf("  Network usage: %sMB sent, %sMB received",
			num(pi.NetSentMB), num(pi.NetRecvMB)))
	}
	if pi.SwapPercent >= 0 {
		lines = append(lines, fmt.Sprintf("  Swap usage: %s%%", num(pi.SwapPercent)))
	}
	return lines
}

func renderHardware(hi *sysprobe.HardwareInfo) []string {
	if hi == nil {
		return nil
	}
	return []string{
		"Hardware information:",
		"  Machine type: " + hi.MachineType,
		"  Processor: " + hi.Processor,
		"  BIOS version: " + hi.BIOSVersion,
		"  Boot mode: " + hi.BootMode,
	}
}

func renderUsers(ui *sysprobe.UsersInfo) []string {
	if ui == nil {
		return nil
	}
	lines := []string{
		"Users information:",
		fmt.Sprintf("  Logged in users: %d", len(ui.LoggedUsers)),
	}
	if len(ui.LoggedUsers) > 0 {
		shown := strings.Join(take(ui.LoggedUsers, 5), ", ")
		if extra := len(ui.LoggedUsers) - 5; extra > 0 {
			shown += fmt.Sprintf(" and %d more", extra)
		}
		lines = append(lines, "  Current users: "+shown)
	}
	lines = append(lines,
		fmt.Sprintf("  System users: %d", len(ui.SystemUsers)),
		fmt.Sprintf("  User sessions: %d", ui.SessionCount),
	)
	return lines
}

func renderTraffic(ti *sysprobe.TrafficInfo) []string {
	if ti == nil {
		return nil
	}
	return []string{
		"Network traffic:",
		fmt.Sprintf("  Current download speed: %s KB/s", num(ti.DownloadKBps)),
		fmt.Sprintf("  Current upload speed: %s KB/s", num(ti.UploadKBps)),
		fmt.Sprintf("  Total downloaded: %s MB", num(ti.TotalRecvMB)),
		fmt.Sprintf("  Total uploaded: %s MB", num(ti.TotalSentMB)),
		fmt.Sprintf("  Packets received: %d", ti.PacketsRecv),
		fmt.Sprintf("  Packets sent: %d", ti.PacketsSent),
	}
}

func renderPorts(pi *sysprobe.PortsInfo) []string {
	if pi == nil {
		return nil
	}
	lines := []string{
		"Open ports and connections:",
		fmt.Sprintf("  Total connections: %d", pi.TotalConnections),
	}
	if len(pi.ListeningPorts) > 0 {
		shown := make([]string, 0, 10)
		for _, p := range take(pi.ListeningPorts, 10) {
			shown = append(shown, strconv.Itoa(p))
		}
		lines = append(lines, "  Listening ports: "+strings.Join(shown, ", "))
		if extra := len(pi.ListeningPorts) - 10; extra > 0 {
			lines = append(lines, fmt.Sprintf("    and %d more...", extra))
		}
	}
	lines = append(lines, fmt.Sprintf("  Established connections: %d", pi.Established))
	if len(pi.TopProcesses) > 0 {
		lines = append(lines, "  Top processes using network: "+strings.Join(take(pi.TopProcesses, 5), ", "))
	}
	return lines
}

func renderProcesses(pi *sysprobe.ProcessInfo) []string {
	if pi == nil {
		return nil
	}
	lines := []string{
		"Process information:",
		fmt.Sprintf("  Total processes: %d", pi.Total),
		fmt.Sprintf("  Running processes: %d", pi.Running),
	}
	if len(pi.TopCPU) > 0 {
		lines = append(lines, "  Top CPU processes: "+strings.Join(take(pi.TopCPU, 5), ", "))
	}
	if len(pi.TopMemory) > 0 {
		lines = append(lines, "  Top memory processes: "+strings.Join(take(pi.TopMemory, 5), ", "))
	}
	return lines
}

func renderFilesystem(fi *sysprobe.FilesystemInfo) []string {
	if fi == nil {
		return nil
	}
	lines := []string{"Filesystem information:"}
	for _, d := range take(fi.Disks, 3) {
		lines = append(lines, fmt.Sprintf("  %s: %s, %s, %sGB total, %s%% used",
			d.Device, d.Mountpoint, d.FSType, num(d.TotalGB), num(d.Percent)))
	}
	if extra := len(fi.Disks) - 3; extra > 0 {
		lines = append(lines, fmt.Sprintf("  ... and %d more filesystems", extra))
	}
	lines = append(lines, fmt.Sprintf("  Total file operations: %d reads, %d writes", fi.IORead, fi.IOWrite))
	return lines
}

func renderServices(si *sysprobe.ServicesInfo) []string {
	if si == nil {
		return nil
	}
	lines := []string{
		"System services:",
		fmt.Sprintf("  Running services: %d", len(si.Running)),
	}
	if len(si.Critical) > 0 {
		lines = append(lines, "  Critical services: "+strings.Join(take(si.Critical, 5), ", "))
		if extra := len(si.Critical) - 5; extra > 0 {
			lines = append(lines, fmt.Sprintf("    ... and %d more", extra))
		}
	}
	return lines
}

// num renders a float in its shortest decimal form while keeping a
// decimal point on whole values: 500 prints as "500.0", 1023.4375
// rounded upstream prints as "1023.44".
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// take returns at most n leading elements of s.
func take[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
