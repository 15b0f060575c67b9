// Package config handles Marechan configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/marechan/config.yaml, /etc/marechan/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "marechan", "config.yaml"))
	}

	paths = append(paths, "/etc/marechan/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all Marechan configuration.
type Config struct {
	General GeneralConfig `yaml:"general"`
	API     APIConfig     `yaml:"api"`
	Discord DiscordConfig `yaml:"discord"`
	IMAP    IMAPConfig    `yaml:"imap"`

	// Dir is the directory the config file was loaded from. Relative
	// paths in the config (assistants file, log files) resolve against it.
	Dir string `yaml:"-"`
}

// GeneralConfig holds pipeline-wide settings.
type GeneralConfig struct {
	// DefaultAssistant answers mail whose recipient matches no
	// configured assistant name. Default: "default".
	DefaultAssistant string `yaml:"default_assistant"`

	// LogFile is the append-only run log shared by every invocation.
	LogFile string `yaml:"log_file"`

	// RawEmailLog receives a verbatim copy of every inbound message.
	RawEmailLog string `yaml:"raw_email_log"`

	// TempLogDir holds the per-run transcript files that get attached
	// to webhook notifications.
	TempLogDir string `yaml:"temp_log_dir"`

	// AssistantsFile is the assistant registry. Relative paths resolve
	// against the config file's directory. Default: assistants.yaml.
	AssistantsFile string `yaml:"assistants_file"`

	LogLevel string `yaml:"log_level"`
}

// APIConfig defines the AI completion endpoint.
type APIConfig struct {
	URL string `yaml:"url"`

	// TimeoutSeconds bounds the API call and is also forwarded to the
	// endpoint as the "timeout" query parameter. Default: 60.
	TimeoutSeconds int `yaml:"timeout"`
}

// Timeout returns the API timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// DiscordConfig defines the optional notification webhook.
type DiscordConfig struct {
	// WebhookURL is the Discord webhook endpoint. Empty disables
	// notifications. Supports environment variable expansion
	// (e.g., ${DISCORD_WEBHOOK_URL}).
	WebhookURL string `yaml:"webhook_url"`
}

// IMAPConfig holds the optional mailbox used by -fetch mode.
// Leave host empty to read mail from stdin only.
type IMAPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"` // Default: 993 (IMAPS)
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Mailbox  string `yaml:"mailbox"` // Default: INBOX
}

// Configured reports whether -fetch mode has a mailbox to talk to.
func (c IMAPConfig) Configured() bool {
	return c.Host != "" && c.Username != ""
}

// Load reads configuration from a YAML file. A .env file next to the
// config is loaded into the environment first, so secrets referenced
// as ${VAR} in the YAML resolve without living in the file itself.
func Load(path string) (*Config, error) {
	dir := filepath.Dir(path)

	// Missing .env is fine; a malformed one is not.
	if envPath := filepath.Join(dir, ".env"); fileExists(envPath) {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.Dir = dir
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.General.DefaultAssistant == "" {
		c.General.DefaultAssistant = "default"
	}
	if c.General.LogFile == "" {
		c.General.LogFile = "logs/marechan.log"
	}
	if c.General.RawEmailLog == "" {
		c.General.RawEmailLog = "logs/raw_email.log"
	}
	if c.General.TempLogDir == "" {
		c.General.TempLogDir = filepath.Join(os.TempDir(), "marechan")
	}
	if c.General.AssistantsFile == "" {
		c.General.AssistantsFile = "assistants.yaml"
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 60
	}
	if c.IMAP.Port == 0 {
		c.IMAP.Port = 993
	}
	if c.IMAP.Mailbox == "" {
		c.IMAP.Mailbox = "INBOX"
	}
}

// AssistantsPath returns the assistant registry path, resolving
// relative values against the config file's directory.
func (c *Config) AssistantsPath() string {
	p := c.General.AssistantsFile
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// Validate checks that the configuration is internally consistent.
// Returns an error describing the first problem found.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("api.url is required")
	}
	if c.API.TimeoutSeconds < 1 {
		return fmt.Errorf("api.timeout %d must be positive", c.API.TimeoutSeconds)
	}
	if _, err := ParseLogLevel(c.General.LogLevel); err != nil {
		return fmt.Errorf("general.log_level: %w", err)
	}
	if c.IMAP.Host != "" {
		if c.IMAP.Username == "" {
			return fmt.Errorf("imap.username is required when imap.host is set")
		}
		if c.IMAP.Port < 1 || c.IMAP.Port > 65535 {
			return fmt.Errorf("imap.port %d out of range (1-65535)", c.IMAP.Port)
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
