package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	SessionConfig
	ChatConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetDataFolder() string
	GetStorePath() string
	GetStoreKey() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	Session
	Chat
}

// New returns a configuration backed only by environment variables and defaults.
func New() Config {
	return NewWithOverlay(nil)
}

// NewWithOverlay returns a configuration where overlay values sit between the
// environment (highest precedence) and the built-in defaults.
func NewWithOverlay(overlay map[string]string) Config {
	src := source{overlay: overlay}
	return mainConfig{
		EnvVars: EnvVars{src: src},
		Session: Session{src: src},
		Chat:    Chat{src: src},
	}
}

// fileConfig is the YAML layout of the optional config file. Every key maps
// onto the environment variable of the same setting.
type fileConfig struct {
	AppName       string `yaml:"app_name"`
	BaseURL       string `yaml:"base_url"`
	DataFolder    string `yaml:"data_folder"`
	StorePath     string `yaml:"store_path"`
	Env           string `yaml:"env"`
	LogLevel      string `yaml:"log_level"`
	RefreshMargin string `yaml:"refresh_margin"`
	HTTPTimeout   string `yaml:"http_timeout"`
	RememberMe    string `yaml:"remember_me"`
	ChatPath      string `yaml:"chat_path"`
	UploadPath    string `yaml:"upload_path"`
	DefaultRole   string `yaml:"default_role"`
}

// Load reads the YAML file at path (if any) and returns the merged configuration.
// An empty path or a missing file yields the environment/default configuration.
func Load(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return New(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	overlay := map[string]string{
		appNameVar:       fc.AppName,
		baseURLVar:       fc.BaseURL,
		folderEnvVar:     fc.DataFolder,
		storePathVar:     fc.StorePath,
		envVar:           fc.Env,
		logLevelVar:      fc.LogLevel,
		refreshMarginVar: fc.RefreshMargin,
		httpTimeoutVar:   fc.HTTPTimeout,
		rememberMeVar:    fc.RememberMe,
		chatPathVar:      fc.ChatPath,
		uploadPathVar:    fc.UploadPath,
		defaultRoleVar:   fc.DefaultRole,
	}
	return NewWithOverlay(overlay), nil
}

type source struct {
	overlay map[string]string
}

func (s source) get(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value := s.overlay[envVar]; value != "" {
		return value
	}
	return defaultValue
}
