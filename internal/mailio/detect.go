package mailio

import (
	"strings"

	"github.com/douxx-tech/marechan/internal/config"
)

// noReplyMarkers flag automated senders that must never get an answer.
var noReplyMarkers = []string{"noreply", "no-reply", "daemon"}

// IsNoReply reports whether sender should be ignored: automated
// no-reply addresses, mailer daemons, and the assistants' own sending
// addresses (answering our own mail would loop).
func IsNoReply(sender string, reg config.Registry) bool {
	s := strings.ToLower(sender)

	for _, marker := range noReplyMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}

	for _, name := range reg.Names() {
		if addr := reg[name].Email.Sender; addr != "" && s == strings.ToLower(addr) {
			return true
		}
	}

	return false
}

// DetectAssistant picks the assistant whose name appears in the
// recipient address. Names are checked in sorted order so overlapping
// configurations resolve the same way on every run. The reserved
// "default" entry never matches by name; it answers everything else.
func DetectAssistant(recipient string, reg config.Registry, defaultName string) string {
	r := strings.ToLower(recipient)

	for _, name := range reg.Names() {
		if name == "default" {
			continue
		}
		if strings.Contains(r, strings.ToLower(name)) {
			return name
		}
	}

	return defaultName
}
