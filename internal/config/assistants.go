package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultPrompt is used when an assistant declares no prompt of its own.
const DefaultPrompt = "Reply to the following prompt:"

// Registry maps assistant names to their personas. The name "default"
// is special: it answers mail that matches no other assistant and
// backs the error-reply path.
type Registry map[string]*Assistant

// Assistant describes one persona: the prompt it answers with, which
// telemetry enhancements it wants, and the mailbox it sends from.
type Assistant struct {
	// Name is the registry key, injected at load time.
	Name string `yaml:"-"`

	Prompt string `yaml:"prompt"`

	// EnhancePrompt enables telemetry enrichment of the prompt.
	EnhancePrompt bool `yaml:"enhance_prompt"`

	// Enhancements selects which telemetry probes to run. Accepts the
	// scalar "all" or an ordered list of probe names.
	Enhancements EnhancementList `yaml:"enhancements"`

	// Signature is an optional footer line appended to the HTML reply.
	Signature string `yaml:"signature"`

	Email EmailSettings `yaml:"email"`
}

// EmailSettings holds the per-assistant outbound mail account.
type EmailSettings struct {
	// Sender is the From address for this assistant's replies.
	Sender string `yaml:"sender"`

	// SMTPServer is the submission host. Default: localhost.
	SMTPServer string `yaml:"smtp_server"`

	// SMTPPort is the submission port. Default: 587 (STARTTLS);
	// 465 uses implicit TLS.
	SMTPPort int `yaml:"smtp_port"`

	// SMTPUser and SMTPPassword enable AUTH when both are set.
	// Support environment variable expansion (e.g., ${SMTP_PASSWORD}).
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
}

// EnhancementList accepts either a single YAML scalar or a sequence,
// so both of these forms work:
//
//	enhancements: all
//	enhancements: [time, system, network]
type EnhancementList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *EnhancementList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = EnhancementList{s}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = EnhancementList(items)
		return nil
	default:
		return fmt.Errorf("line %d: enhancements must be a string or a list", value.Line)
	}
}

// LoadAssistants reads the assistant registry from a YAML file.
// Environment variables in the file are expanded, matching the main
// config loader.
func LoadAssistants(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	reg := Registry{}
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for name, a := range reg {
		if a == nil {
			a = &Assistant{}
			reg[name] = a
		}
		a.Name = name
		a.ApplyDefaults()
	}

	return reg, nil
}

// ApplyDefaults fills zero-value fields with sensible defaults.
func (a *Assistant) ApplyDefaults() {
	if a.Prompt == "" {
		a.Prompt = DefaultPrompt
	}
	if a.Email.SMTPServer == "" {
		a.Email.SMTPServer = "localhost"
	}
	if a.Email.SMTPPort == 0 {
		a.Email.SMTPPort = 587
	}
}

// Validate checks that the registry is usable. Returns an error
// describing the first problem found.
func (r Registry) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("assistants file defines no assistants")
	}
	if _, ok := r["default"]; !ok {
		return fmt.Errorf("assistants file must define a %q assistant", "default")
	}
	for _, name := range r.Names() {
		a := r[name]
		if a.Email.SMTPPort < 1 || a.Email.SMTPPort > 65535 {
			return fmt.Errorf("assistant %q: smtp_port %d out of range (1-65535)", name, a.Email.SMTPPort)
		}
	}
	return nil
}

// Names returns the assistant names in sorted order, for deterministic
// iteration during recipient matching.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
