package sysprobe

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/douxx-tech/marechan/internal/httpkit"
)

// ConnectivityURL is the default target for the internet reachability
// check in the network probe.
const ConnectivityURL = "https://www.google.com"

// ConnectivityTimeout bounds the reachability check.
const ConnectivityTimeout = 2 * time.Second

// Host is the execution context shared by all probes. The zero value
// reads the live machine; tests override Root to point file reads at a
// fabricated /proc and /sys tree and swap the functional fields for
// fakes.
type Host struct {
	// Root is prepended to every file path the probes read.
	Root string

	// Logger receives probe failure diagnostics. Nil discards them.
	Logger *slog.Logger

	// LookPath resolves external binaries. Default: exec.LookPath.
	LookPath func(name string) (string, error)

	// RunCmd executes an external command and returns its stdout.
	// Default: exec.CommandContext.
	RunCmd func(ctx context.Context, name string, args ...string) ([]byte, error)

	// Now and Sleep feed the time probe and the traffic sampling delay.
	Now   func() time.Time
	Sleep func(d time.Duration)

	// HTTP and ProbeURL drive the connectivity check.
	HTTP     *http.Client
	ProbeURL string

	// DiskUsage reports filesystem usage for a mount point.
	// Default: statfs on the live host.
	DiskUsage func(path string) (DiskUsage, error)
}

// NewHost returns a Host wired to the live machine.
func NewHost(logger *slog.Logger) *Host {
	return &Host{Logger: logger}
}

func (h *Host) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (h *Host) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Host) sleep(d time.Duration) {
	if h.Sleep != nil {
		h.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (h *Host) lookPath(name string) (string, error) {
	if h.LookPath != nil {
		return h.LookPath(name)
	}
	return exec.LookPath(name)
}

func (h *Host) httpClient() *http.Client {
	if h.HTTP == nil {
		h.HTTP = httpkit.NewClient(httpkit.WithTimeout(ConnectivityTimeout))
	}
	return h.HTTP
}

func (h *Host) probeURL() string {
	if h.ProbeURL != "" {
		return h.ProbeURL
	}
	return ConnectivityURL
}

func (h *Host) diskUsage(path string) (DiskUsage, error) {
	if h.DiskUsage != nil {
		return h.DiskUsage(path)
	}
	return statDiskUsage(path)
}

// path maps an absolute host path through the Root prefix.
func (h *Host) path(p string) string {
	if h.Root == "" {
		return p
	}
	return filepath.Join(h.Root, p)
}

func (h *Host) readFile(p string) ([]byte, error) {
	return os.ReadFile(h.path(p))
}

// readTrimmed returns the trimmed contents of a file, or "" on any error.
func (h *Host) readTrimmed(p string) string {
	data, err := h.readFile(p)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (h *Host) pathExists(p string) bool {
	_, err := os.Stat(h.path(p))
	return err == nil
}

// commandOutput resolves and runs an external command, returning its
// stdout as a string.
func (h *Host) commandOutput(ctx context.Context, name string, args ...string) (string, error) {
	if _, err := h.lookPath(name); err != nil {
		return "", err
	}
	run := h.RunCmd
	if run == nil {
		run = defaultRunCmd
	}
	out, err := run(ctx, name, args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func defaultRunCmd(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// round2 rounds byte-derived MB/GB/KB values to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 matches the one-decimal precision conventional for percentages.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
