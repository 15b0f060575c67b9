package sysprobe

import (
	"context"
	"runtime"
	"strings"
)

// UsersInfo reports who is logged in and which accounts exist.
type UsersInfo struct {
	// LoggedUsers is deduplicated in order of first appearance.
	// SessionCount counts every session line, duplicates included.
	LoggedUsers  []string
	SessionCount int

	SystemUsers []string
}

// Users collects session and account information from `who` and
// /etc/passwd. A missing `who` binary zeroes the session fields only.
func (h *Host) Users(ctx context.Context) *UsersInfo {
	info := &UsersInfo{}

	if out, err := h.commandOutput(ctx, "who"); err == nil {
		seen := make(map[string]struct{})
		for _, line := range strings.Split(out, "\n") {
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			info.SessionCount++
			if _, dup := seen[fields[0]]; !dup {
				seen[fields[0]] = struct{}{}
				info.LoggedUsers = append(info.LoggedUsers, fields[0])
			}
		}
	} else {
		h.log().Debug("who unavailable", "error", err)
	}

	info.SystemUsers = h.systemUsers(ctx)
	return info
}

// systemUsers enumerates accounts from /etc/passwd, or `net user` on
// Windows.
func (h *Host) systemUsers(ctx context.Context) []string {
	if runtime.GOOS == "windows" {
		return h.windowsUsers(ctx)
	}
	data, err := h.readFile("/etc/passwd")
	if err != nil {
		h.log().Debug("passwd unavailable", "error", err)
		return nil
	}
	var users []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, _, ok := strings.Cut(line, ":"); ok && name != "" {
			users = append(users, name)
		}
	}
	return users
}

func (h *Host) windowsUsers(ctx context.Context) []string {
	out, err := h.commandOutput(ctx, "net", "user")
	if err != nil {
		h.log().Debug("net user unavailable", "error", err)
		return nil
	}
	var users []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") ||
			strings.HasPrefix(line, "User accounts") ||
			strings.HasPrefix(line, "The command") {
			continue
		}
		users = append(users, strings.Fields(line)...)
	}
	return users
}
