package sysprobe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// Socket states from the kernel's tcp_states.h, as they appear in the
// st column of /proc/net/tcp.
const (
	tcpEstablished = "01"
	tcpListen      = "0A"
)

// PortsInfo summarizes socket activity on the host.
type PortsInfo struct {
	// ListeningPorts is deduplicated and sorted ascending.
	ListeningPorts []int

	TotalConnections int
	Established      int

	// TopProcesses lists the five processes owning the most sockets,
	// formatted "name (count)".
	TopProcesses []string
}

// Ports walks the /proc/net socket tables and attributes sockets to
// processes through their fd links. When the tables yield no listening
// ports on Linux, netstat output serves as a fallback for that one
// field. Nil when no table could be read at all.
func (h *Host) Ports(ctx context.Context) *PortsInfo {
	rows, readable := h.socketRows()
	if readable == 0 {
		h.log().Debug("no socket tables readable")
		return nil
	}

	info := &PortsInfo{TotalConnections: len(rows)}
	seen := make(map[int]struct{})
	for _, row := range rows {
		if row.proto != "tcp" {
			continue
		}
		switch row.state {
		case tcpListen:
			if _, dup := seen[row.port]; !dup {
				seen[row.port] = struct{}{}
				info.ListeningPorts = append(info.ListeningPorts, row.port)
			}
		case tcpEstablished:
			info.Established++
		}
	}

	info.TopProcesses = h.topSocketOwners(rows)

	if len(info.ListeningPorts) == 0 && runtime.GOOS == "linux" {
		info.ListeningPorts = h.netstatListening(ctx)
	}
	sort.Ints(info.ListeningPorts)

	return info
}

type socketRow struct {
	proto string
	port  int
	state string
	inode string
}

// socketRows parses the tcp/tcp6/udp/udp6 tables. readable counts how
// many of the four tables could be opened.
func (h *Host) socketRows() (rows []socketRow, readable int) {
	tables := []struct{ path, proto string }{
		{"/proc/net/tcp", "tcp"},
		{"/proc/net/tcp6", "tcp"},
		{"/proc/net/udp", "udp"},
		{"/proc/net/udp6", "udp"},
	}
	for _, t := range tables {
		data, err := h.readFile(t.path)
		if err != nil {
			h.log().Debug("socket table unavailable", "path", t.path, "error", err)
			continue
		}
		readable++
		for i, line := range strings.Split(string(data), "\n") {
			if i == 0 {
				// Column header.
				continue
			}
			fields := strings.Fields(line)
			if len(fields) < 10 {
				continue
			}
			port, err := localPort(fields[1])
			if err != nil {
				continue
			}
			rows = append(rows, socketRow{
				proto: t.proto,
				port:  port,
				state: fields[3],
				inode: fields[9],
			})
		}
	}
	return rows, readable
}

// localPort extracts the port from a kernel hex address like
// "0100007F:0016".
func localPort(addr string) (int, error) {
	idx := strings.LastIndexByte(addr, ':')
	if idx < 0 {
		return 0, fmt.Errorf("no port in address %q", addr)
	}
	v, err := strconv.ParseInt(addr[idx+1:], 16, 32)
	return int(v), err
}

// topSocketOwners counts sockets per owning process and formats the
// five heaviest as "name (count)".
func (h *Host) topSocketOwners(rows []socketRow) []string {
	inodes := make(map[string]struct{})
	for _, r := range rows {
		if r.inode != "" && r.inode != "0" {
			inodes[r.inode] = struct{}{}
		}
	}
	if len(inodes) == 0 {
		return nil
	}

	owners := h.socketOwners(inodes)
	counts := make(map[string]int)
	for _, r := range rows {
		if name, ok := owners[r.inode]; ok {
			counts[name]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	type entry struct {
		name string
		n    int
	}
	entries := make([]entry, 0, len(counts))
	for name, n := range counts {
		entries = append(entries, entry{name, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].n != entries[j].n {
			return entries[i].n > entries[j].n
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > 5 {
		entries = entries[:5]
	}

	top := make([]string, 0, len(entries))
	for _, e := range entries {
		top = append(top, fmt.Sprintf("%s (%d)", e.name, e.n))
	}
	return top
}

// socketOwners maps socket inodes to process names by walking the fd
// tables of every process. Unreadable fd directories (foreign
// processes without privilege) are skipped.
func (h *Host) socketOwners(inodes map[string]struct{}) map[string]string {
	pids, err := h.listPids()
	if err != nil {
		h.log().Debug("process table unavailable", "error", err)
		return nil
	}

	owners := make(map[string]string)
	for _, pid := range pids {
		fdDir := filepath.Join("/proc", pid, "fd")
		entries, err := os.ReadDir(h.path(fdDir))
		if err != nil {
			continue
		}
		var name string
		for _, e := range entries {
			target, err := os.Readlink(h.path(filepath.Join(fdDir, e.Name())))
			if err != nil {
				continue
			}
			inode, ok := strings.CutPrefix(target, "socket:[")
			if !ok {
				continue
			}
			inode = strings.TrimSuffix(inode, "]")
			if _, want := inodes[inode]; !want {
				continue
			}
			if name == "" {
				name = h.processName(pid)
				if name == "" {
					break
				}
			}
			owners[inode] = name
		}
	}
	return owners
}

// netstatListening recovers listening ports from `netstat -tuln`.
func (h *Host) netstatListening(ctx context.Context) []int {
	out, err := h.commandOutput(ctx, "netstat", "-tuln")
	if err != nil {
		h.log().Debug("netstat unavailable", "error", err)
		return nil
	}
	var ports []int
	seen := make(map[int]struct{})
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "LISTEN") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 4 {
			continue
		}
		addr := parts[3]
		idx := strings.LastIndexByte(addr, ':')
		if idx < 0 {
			continue
		}
		p, err := strconv.Atoi(addr[idx+1:])
		if err != nil {
			continue
		}
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			ports = append(ports, p)
		}
	}
	return ports
}
