package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every runtime knob. It is constructed once in main and
// handed to the components that need it; nothing reads the environment
// after startup.
type Config struct {
	// ProcessName is matched case-insensitively as a substring against
	// the live OS process list.
	ProcessName string `json:"process_name" yaml:"process_name"`

	// Terminal API endpoint and client identity.
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	ClientID int    `json:"client_id" yaml:"client_id"`

	// Activity sinks.
	DBFile   string `json:"db_file" yaml:"db_file"`
	JSONFile string `json:"json_file" yaml:"json_file"`

	// Telegram credentials; both empty disables notifications.
	TelegramToken  string `json:"telegram_token,omitempty" yaml:"telegram_token,omitempty"`
	TelegramChatID string `json:"telegram_chat_id,omitempty" yaml:"telegram_chat_id,omitempty"`

	// PollInterval is the wait between readiness checks; RetryInterval is
	// the longer wait after a failed session open.
	PollInterval  Duration `json:"poll_interval" yaml:"poll_interval"`
	RetryInterval Duration `json:"retry_interval" yaml:"retry_interval"`

	// ListenAddr is the ops HTTP surface (health, status, metrics).
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// Duration wraps time.Duration so YAML and JSON configs can use strings
// like "5s".
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d Duration) MarshalYAML() (any, error) { return d.Std().String(), nil }

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.Std().String()) }

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when nothing is provided.
func Default() *Config {
	return &Config{
		ProcessName:   "tws.exe",
		Host:          "127.0.0.1",
		Port:          7497,
		ClientID:      123,
		DBFile:        "activity.db",
		JSONFile:      "activity.json",
		PollInterval:  Duration(5 * time.Second),
		RetryInterval: Duration(10 * time.Second),
		ListenAddr:    ":8077",
	}
}

// Load builds the effective configuration: defaults, overlaid by the
// optional config file, overlaid by the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TERMWATCH_CONFIG")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.mergeEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// mergeFile overlays settings from a YAML or JSON file.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, c); err != nil {
		if jerr := json.Unmarshal(data, c); jerr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

// mergeEnv overlays settings from the process environment.
func (c *Config) mergeEnv() {
	c.ProcessName = getEnv("TERMINAL_PROCESS_NAME", c.ProcessName)
	c.Host = getEnv("TERMINAL_HOST", c.Host)
	c.Port = getEnvInt("TERMINAL_PORT", c.Port)
	c.ClientID = getEnvInt("TERMINAL_CLIENT_ID", c.ClientID)
	c.DBFile = getEnv("DB_FILE", c.DBFile)
	c.JSONFile = getEnv("JSON_LOG_FILE", c.JSONFile)
	c.TelegramToken = getEnv("TELEGRAM_TOKEN", c.TelegramToken)
	c.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", c.TelegramChatID)
	c.PollInterval = getEnvDuration("POLL_INTERVAL", c.PollInterval)
	c.RetryInterval = getEnvDuration("RETRY_INTERVAL", c.RetryInterval)
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProcessName) == "" {
		return fmt.Errorf("process_name is required")
	}
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.DBFile == "" {
		return fmt.Errorf("db_file is required")
	}
	if c.JSONFile == "" {
		return fmt.Errorf("json_file is required")
	}
	if c.PollInterval.Std() <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.RetryInterval.Std() <= 0 {
		return fmt.Errorf("retry_interval must be positive")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	return nil
}
