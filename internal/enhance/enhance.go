// Package enhance builds the enriched prompt sent to the completion
// API: it resolves a persona's enhancement selection, collects the
// matching telemetry probes, and splices the rendered lines between
// the persona prompt and the email body marker.
package enhance

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/douxx-tech/marechan/internal/sysprobe"
)

// The enriched prompt sandwiches the telemetry block between these
// two markers. Their wording is part of the outbound API contract.
const (
	infoHeader  = "Here is real-time information you can use if relevant:"
	infoTrailer = "The email is:"
)

// AllSentinel expands to the whole probe catalog when it appears
// anywhere in a selection.
const AllSentinel = "all"

// Resolve maps a selection to probe kinds. The "all" sentinel expands
// to the full catalog and overrides everything else in the selection.
// Other tokens pass through in caller order, duplicates and unknown
// names included; unknown names simply match no probe later.
func Resolve(selection []string) []sysprobe.Kind {
	for _, s := range selection {
		if s == AllSentinel {
			return sysprobe.Kinds()
		}
	}
	kinds := make([]sysprobe.Kind, 0, len(selection))
	for _, s := range selection {
		kinds = append(kinds, sysprobe.Kind(s))
	}
	return kinds
}

// Enhancer enriches prompts with live host telemetry.
type Enhancer struct {
	host   *sysprobe.Host
	logger *slog.Logger
}

// New returns an Enhancer reading from the given host context.
func New(host *sysprobe.Host, logger *slog.Logger) *Enhancer {
	if host == nil {
		host = sysprobe.NewHost(logger)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Enhancer{host: host, logger: logger}
}

// Enhance returns base with the selected telemetry spliced in, or
// base verbatim when the selection produced no lines. There is no
// failure mode: broken probes shrink the block, never the prompt.
func (e *Enhancer) Enhance(ctx context.Context, base string, selection []string) string {
	var lines []string
	for _, kind := range Resolve(selection) {
		block := e.collect(ctx, kind)
		e.logger.Debug("collected enhancement", "kind", kind, "lines", len(block))
		lines = append(lines, block...)
	}
	if len(lines) == 0 {
		return base
	}
	return base + "\n\n" + infoHeader + "\n" + strings.Join(lines, "\n") + "\n\n" + infoTrailer
}

// collect runs the probe behind one kind and renders its block.
// Kinds outside the catalog yield nothing.
func (e *Enhancer) collect(ctx context.Context, kind sysprobe.Kind) []string {
	switch kind {
	case sysprobe.KindTime:
		return renderTime(e.host.Time())
	case sysprobe.KindSystem:
		return renderSystem(e.host.System(ctx))
	case sysprobe.KindNetwork:
		return renderNetwork(e.host.Network(ctx))
	case sysprobe.KindLocale:
		return renderLocale(e.host.Locale())
	case sysprobe.KindTimezone:
		return renderTimezone(e.host.Timezone())
	case sysprobe.KindPerformance:
		return renderPerformance(e.host.Performance())
	case sysprobe.KindHardware:
		return renderHardware(e.host.Hardware())
	case sysprobe.KindUsers:
		return renderUsers(e.host.Users(ctx))
	case sysprobe.KindNetworkTraffic:
		return renderTraffic(e.host.Traffic())
	case sysprobe.KindPorts:
		return renderPorts(e.host.Ports(ctx))
	case sysprobe.KindProcesses:
		return renderProcesses(e.host.Processes())
	case sysprobe.KindFilesystem:
		return renderFilesystem(e.host.Filesystem())
	case sysprobe.KindServices:
		return renderServices(e.host.Services(ctx))
	}
	return nil
}
