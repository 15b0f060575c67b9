package mailio

import (
	"testing"

	"github.com/douxx-tech/marechan/internal/config"
)

func testRegistry() config.Registry {
	return config.Registry{
		"default": &config.Assistant{
			Name:  "default",
			Email: config.EmailSettings{Sender: "assistant@douxx.tech"},
		},
		"marvin": &config.Assistant{
			Name:  "marvin",
			Email: config.EmailSettings{Sender: "Marvin@douxx.tech"},
		},
		"zoe": &config.Assistant{Name: "zoe"},
	}
}

func TestIsNoReply(t *testing.T) {
	reg := testRegistry()

	tests := []struct {
		name   string
		sender string
		want   bool
	}{
		{"plain noreply", "noreply@shop.example", true},
		{"hyphenated in display form", "Support <no-reply@shop.example>", true},
		{"mailer daemon", "MAILER-DAEMON@mx.example", true},
		{"ordinary sender", "alice@example.com", false},
		{"own assistant address", "marvin@douxx.tech", true},
		{"assistant address with display name", "Marvin <marvin@douxx.tech>", false},
		{"default assistant address", "assistant@douxx.tech", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNoReply(tt.sender, reg); got != tt.want {
				t.Errorf("IsNoReply(%q) = %t, want %t", tt.sender, got, tt.want)
			}
		})
	}
}

func TestDetectAssistant(t *testing.T) {
	reg := testRegistry()

	tests := []struct {
		name      string
		recipient string
		want      string
	}{
		{"exact local part", "marvin@douxx.tech", "marvin"},
		{"uppercase recipient", "MARVIN@DOUXX.TECH", "marvin"},
		{"plus addressing", "zoe+fun@douxx.tech", "zoe"},
		{"no match falls back", "bob@somewhere.example", "default"},
		{"empty recipient falls back", "", "default"},
		{"default name never matches itself", "default@douxx.tech", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectAssistant(tt.recipient, reg, "default"); got != tt.want {
				t.Errorf("DetectAssistant(%q) = %q, want %q", tt.recipient, got, tt.want)
			}
		})
	}
}

// Overlapping names resolve in sorted order on every run.
func TestDetectAssistantDeterministicOrder(t *testing.T) {
	reg := testRegistry()
	if got := DetectAssistant("marvin-zoe@douxx.tech", reg, "default"); got != "marvin" {
		t.Errorf("DetectAssistant = %q, want the alphabetically first match", got)
	}
}

func TestDetectAssistantCustomDefault(t *testing.T) {
	reg := testRegistry()
	if got := DetectAssistant("nobody@nowhere.example", reg, "marvin"); got != "marvin" {
		t.Errorf("DetectAssistant = %q, want the configured default", got)
	}
}
