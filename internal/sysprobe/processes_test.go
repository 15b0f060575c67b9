package sysprobe

import (
	"strconv"
	"testing"
)

func TestProcesses(t *testing.T) {
	h := fakeHost(t, map[string]string{
		"proc/uptime":  "100.00 200.00\n",
		"proc/meminfo": "MemTotal: 16000000 kB\n",

		// nginx: 8 s of cpu over 90 s of life, 512 MB resident.
		"proc/100/stat":   "100 (nginx) S 1 100 100 0 -1 4194304 0 0 0 0 500 300 0 0 20 0 1 0 1000 0\n",
		"proc/100/comm":   "nginx\n",
		"proc/100/status": "Name:\tnginx\nState:\tS (sleeping)\nVmRSS:\t  512000 kB\n",

		// idle worker: running state, no cpu, no resident set.
		"proc/200/stat": "200 (worker) R 1 200 200 0 -1 4194304 0 0 0 0 0 0 0 0 20 0 1 0 2000 0\n",
		"proc/200/comm": "worker\n",
	})

	got := h.Processes()
	if got == nil {
		t.Fatal("Processes() = nil")
	}
	if got.Total != 2 {
		t.Errorf("Total = %d, want 2", got.Total)
	}
	if got.Running != 1 {
		t.Errorf("Running = %d, want 1", got.Running)
	}

	if len(got.TopCPU) != 1 || got.TopCPU[0] != "nginx (8.9%)" {
		t.Errorf("TopCPU = %v, want [nginx (8.9%%)]", got.TopCPU)
	}
	if len(got.TopMemory) != 1 || got.TopMemory[0] != "nginx (3.2%)" {
		t.Errorf("TopMemory = %v, want [nginx (3.2%%)]", got.TopMemory)
	}
}

func TestProcessNameFromStat(t *testing.T) {
	// No comm file, and a name with spaces and parens that forces the
	// parse past the last closing paren.
	h := fakeHost(t, map[string]string{
		"proc/300/stat": "300 (my (weird) proc) S 1 300 300 0 -1 4194304 0 0 0 0 10 10 0 0 20 0 1 0 3000 0\n",
	})
	if got := h.processName("300"); got != "my (weird) proc" {
		t.Errorf("processName = %q, want %q", got, "my (weird) proc")
	}
}

func TestStatAfterComm(t *testing.T) {
	state, fields := statAfterComm("42 (a b) R 1 2 3\n")
	if state != "R" {
		t.Errorf("state = %q, want R", state)
	}
	if len(fields) != 4 {
		t.Errorf("fields = %v, want 4 entries", fields)
	}

	if state, _ := statAfterComm("no closing paren"); state != "" {
		t.Errorf("state = %q, want empty on malformed input", state)
	}
}

func TestTopFiveCap(t *testing.T) {
	files := map[string]string{
		"proc/uptime":  "1000.00 2000.00\n",
		"proc/meminfo": "MemTotal: 16000000 kB\n",
	}
	// Seven processes, each with distinct cpu time and resident set.
	for i := 0; i < 7; i++ {
		pid := 100 + i
		files[procPath(pid, "stat")] = procStatLine(pid, (i+1)*10000)
		files[procPath(pid, "comm")] = procComm(pid)
		files[procPath(pid, "status")] = procStatus((i + 1) * 10000)
	}
	h := fakeHost(t, files)

	got := h.Processes()
	if got == nil {
		t.Fatal("Processes() = nil")
	}
	if got.Total != 7 {
		t.Errorf("Total = %d, want 7", got.Total)
	}
	if len(got.TopCPU) != 5 {
		t.Errorf("len(TopCPU) = %d, want 5", len(got.TopCPU))
	}
	if len(got.TopMemory) != 5 {
		t.Errorf("len(TopMemory) = %d, want 5", len(got.TopMemory))
	}
	// Heaviest first: pid 106 had the most of both.
	if len(got.TopCPU) > 0 && got.TopCPU[0] != "p106 (70.0%)" {
		t.Errorf("TopCPU[0] = %q, want p106 (70.0%%)", got.TopCPU[0])
	}
}

func procPath(pid int, file string) string {
	return "proc/" + strconv.Itoa(pid) + "/" + file
}

func procStatLine(pid, utime int) string {
	return strconv.Itoa(pid) + " (p" + strconv.Itoa(pid) + ") S 1 1 1 0 -1 4194304 0 0 0 0 " +
		strconv.Itoa(utime) + " 0 0 0 20 0 1 0 0 0\n"
}

func procComm(pid int) string { return "p" + strconv.Itoa(pid) + "\n" }

func procStatus(rssKB int) string {
	return "VmRSS:\t" + strconv.Itoa(rssKB) + " kB\n"
}
