package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName = "electric-lullaby"

	DefaultAPIHost         = "https://electric-lullaby.herokuapp.com"
	DefaultDisplayInterval = 5000
)

type Config struct {
	APIHost           string `json:"api_host"`
	WorkspacePath     string `json:"workspace_path"`
	DisplayIntervalMS int    `json:"display_interval_ms"`
	Notifications     bool   `json:"notifications"`
	CameraDevice      string `json:"camera_device"`
	CameraFormat      string `json:"camera_format"`
}

// Default returns the configuration used on first run.
func Default() *Config {
	workspace := "."
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		workspace = filepath.Join(home, "."+AppName)
	}
	return &Config{
		APIHost:           DefaultAPIHost,
		WorkspacePath:     workspace,
		DisplayIntervalMS: DefaultDisplayInterval,
		Notifications:     true,
		CameraDevice:      "/dev/video0",
		CameraFormat:      "v4l2",
	}
}

func (c *Config) DisplayInterval() time.Duration {
	if c.DisplayIntervalMS <= 0 {
		return DefaultDisplayInterval * time.Millisecond
	}
	return time.Duration(c.DisplayIntervalMS) * time.Millisecond
}

func (c *Config) LogsDir() string     { return filepath.Join(c.WorkspacePath, "logs") }
func (c *Config) DataDir() string     { return filepath.Join(c.WorkspacePath, "data") }
func (c *Config) CapturesDir() string { return filepath.Join(c.WorkspacePath, "captures") }

// CredentialsPath is the sqlite file backing the credential store.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.DataDir(), "credentials.db")
}

// NotificationsURL derives the websocket endpoint from the API host.
func (c *Config) NotificationsURL() string {
	host := strings.TrimRight(c.APIHost, "/")
	switch {
	case strings.HasPrefix(host, "https://"):
		host = "wss://" + strings.TrimPrefix(host, "https://")
	case strings.HasPrefix(host, "http://"):
		host = "ws://" + strings.TrimPrefix(host, "http://")
	}
	return host + "/notifications"
}

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	appDir := filepath.Join(configDir, AppName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(appDir, "config.json"), nil
}

// LoadConfig reads the config file, falling back to defaults when it does not
// exist yet, and applies environment overrides.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(path)
}

func LoadConfigFrom(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %v", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("LULLABY_API_HOST")); v != "" {
		cfg.APIHost = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("LULLABY_WORKSPACE")); v != "" {
		cfg.WorkspacePath = v
	}
}

func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigTo(path, cfg)
}

func SaveConfigTo(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// InitializeStructure creates the workspace folders the client writes to.
func InitializeStructure(cfg *Config) error {
	folders := []string{
		cfg.WorkspacePath,
		cfg.LogsDir(),
		cfg.DataDir(),
		cfg.CapturesDir(),
	}

	for _, folder := range folders {
		if err := os.MkdirAll(folder, 0755); err != nil {
			return fmt.Errorf("failed to create folder %s: %v", folder, err)
		}
	}

	return nil
}
