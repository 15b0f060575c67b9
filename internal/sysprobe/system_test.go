package sysprobe

import (
	"context"
	"fmt"
	"testing"
)

const testCPUInfo = `processor	: 0
model name	: AMD EPYC 7313P 16-Core Processor
physical id	: 0
core id		: 0

processor	: 1
model name	: AMD EPYC 7313P 16-Core Processor
physical id	: 0
core id		: 0
`

func TestSystem(t *testing.T) {
	h := fakeHost(t, map[string]string{
		"proc/sys/kernel/osrelease": "6.1.0-test\n",
		"proc/cpuinfo":              testCPUInfo,
		"proc/stat":                 "cpu  100 0 100 700 100 0 0 0 0 0\ncpu0 50 0 50 350 50 0 0 0 0 0\nbtime 1700000000\n",
		"proc/meminfo":              "MemTotal:       16000000 kB\nMemFree:         2000000 kB\nMemAvailable:    4000000 kB\n",
		"proc/uptime":               "90061.27 180000.00\n",
	})
	h.DiskUsage = func(string) (DiskUsage, error) {
		return DiskUsage{Total: 100 << 30, Used: 40 << 30, Avail: 60 << 30}, nil
	}

	got := h.System(context.Background())
	if got == nil {
		t.Fatal("System() = nil")
	}
	if got.Kernel != "6.1.0-test" {
		t.Errorf("Kernel = %q", got.Kernel)
	}

	if got.CPU == nil {
		t.Fatal("CPU = nil")
	}
	if got.CPU.Model != "AMD EPYC 7313P 16-Core Processor" {
		t.Errorf("CPU.Model = %q", got.CPU.Model)
	}
	if got.CPU.Cores != 2 {
		t.Errorf("CPU.Cores = %d, want 2", got.CPU.Cores)
	}
	if got.CPU.PhysicalCores != 1 {
		t.Errorf("CPU.PhysicalCores = %d, want 1", got.CPU.PhysicalCores)
	}
	// busy = (1000 - 700 - 100) / 1000
	if got.CPU.UsagePercent != 20.0 {
		t.Errorf("CPU.UsagePercent = %v, want 20", got.CPU.UsagePercent)
	}

	if got.Memory == nil {
		t.Fatal("Memory = nil")
	}
	if got.Memory.TotalGB != 15.26 {
		t.Errorf("Memory.TotalGB = %v, want 15.26", got.Memory.TotalGB)
	}
	if got.Memory.UsedPercent != 75.0 {
		t.Errorf("Memory.UsedPercent = %v, want 75", got.Memory.UsedPercent)
	}

	if got.Disk == nil {
		t.Fatal("Disk = nil")
	}
	if got.Disk.TotalGB != 100.0 {
		t.Errorf("Disk.TotalGB = %v, want 100", got.Disk.TotalGB)
	}
	if got.Disk.UsedPercent != 40.0 {
		t.Errorf("Disk.UsedPercent = %v, want 40", got.Disk.UsedPercent)
	}

	if got.Uptime != "1 days, 1 hours, 1 minutes" {
		t.Errorf("Uptime = %q", got.Uptime)
	}
}

func TestKernelFallsBackToUname(t *testing.T) {
	h := fakeHost(t, nil)
	h.LookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	h.RunCmd = func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name == "uname" && len(args) == 1 && args[0] == "-r" {
			return []byte("5.15.99-generic\n"), nil
		}
		return nil, fmt.Errorf("unexpected command %s %v", name, args)
	}

	if got := h.kernelRelease(context.Background()); got != "5.15.99-generic" {
		t.Errorf("kernelRelease = %q, want 5.15.99-generic", got)
	}
}

func TestMemoryFallsBackToMemFree(t *testing.T) {
	h := fakeHost(t, map[string]string{
		"proc/meminfo": "MemTotal: 8000000 kB\nMemFree: 2000000 kB\n",
	})
	got := h.memoryStats()
	if got == nil {
		t.Fatal("memoryStats = nil")
	}
	if got.UsedPercent != 75.0 {
		t.Errorf("UsedPercent = %v, want 75 from MemFree", got.UsedPercent)
	}
}

func TestOSName(t *testing.T) {
	tests := []struct{ goos, want string }{
		{"linux", "Linux"},
		{"darwin", "Darwin"},
		{"windows", "Windows"},
		{"freebsd", "Freebsd"},
	}
	for _, tt := range tests {
		if got := osName(tt.goos); got != tt.want {
			t.Errorf("osName(%q) = %q, want %q", tt.goos, got, tt.want)
		}
	}
}
