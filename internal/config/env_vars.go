package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appNameVar   = "ESTATE_APP_NAME"
	baseURLVar   = "ESTATE_BASE_URL"
	folderEnvVar = "ESTATE_DATA_FOLDER"
	storePathVar = "ESTATE_STORE_PATH"
	storeKeyVar  = "ESTATE_STORE_KEY"
	envVar       = "ESTATE_ENV"
	logLevelVar  = "ESTATE_LOG_LEVEL"
)

type EnvVars struct {
	src source
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.src.get(appNameVar, "Estate Chat")
}

// GetBaseURL returns the backend base URL without a trailing slash
// (e.g., "http://localhost:8000").
func (e EnvVars) GetBaseURL() string {
	return strings.TrimRight(e.src.get(baseURLVar, "http://localhost:8000"), "/")
}

func (e EnvVars) GetDataFolder() string {
	if folder := e.src.get(folderEnvVar, ""); folder != "" {
		return folder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".estate")
}

// GetStorePath is the file that persists the credential pair and user profile.
func (e EnvVars) GetStorePath() string {
	return e.src.get(storePathVar, filepath.Join(e.GetDataFolder(), "session.json"))
}

// GetStoreKey, when set, encrypts the persisted credentials with a key derived
// from it.
func (e EnvVars) GetStoreKey() string {
	return e.src.get(storeKeyVar, "")
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(e.src.get(envVar, "DEV"))
}

func (e EnvVars) GetLogLevel() string {
	return e.src.get(logLevelVar, "info")
}
