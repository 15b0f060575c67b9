// Package sysprobe collects host telemetry for prompt enrichment.
//
// Each probe gathers one facet of machine state (clock, CPU, network
// counters, service managers) and degrades to a partial or nil result
// when a source is missing. Probes never return errors: a host with no
// /proc, no systemctl, and no network still yields whatever subset is
// observable. Failures are logged through the Host's logger and
// otherwise absorbed.
package sysprobe

// Kind identifies one probe in the catalog.
type Kind string

// The probe catalog. Kinds() preserves this declaration order.
const (
	KindTime           Kind = "time"
	KindSystem         Kind = "system"
	KindNetwork        Kind = "network"
	KindLocale         Kind = "locale"
	KindTimezone       Kind = "timezone"
	KindPerformance    Kind = "performance"
	KindHardware       Kind = "hardware"
	KindUsers          Kind = "users"
	KindNetworkTraffic Kind = "network_traffic"
	KindPorts          Kind = "ports"
	KindProcesses      Kind = "processes"
	KindFilesystem     Kind = "filesystem"
	KindServices       Kind = "services"
)

// Kinds returns the full probe catalog in its declared order.
func Kinds() []Kind {
	return []Kind{
		KindTime,
		KindSystem,
		KindNetwork,
		KindLocale,
		KindTimezone,
		KindPerformance,
		KindHardware,
		KindUsers,
		KindNetworkTraffic,
		KindPorts,
		KindProcesses,
		KindFilesystem,
		KindServices,
	}
}

// Known reports whether k names a probe in the catalog.
func Known(k Kind) bool {
	for _, kind := range Kinds() {
		if kind == k {
			return true
		}
	}
	return false
}
