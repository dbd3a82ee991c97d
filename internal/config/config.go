// Package config reads the host-provided project configuration. The JSON
// file supplies appid/projectversionid/sharecode; environment variables
// (optionally sourced from a .env file) override individual keys.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment override keys.
const (
	EnvAppID            = "INTERACTIVE_APP_ID"
	EnvProjectVersionID = "INTERACTIVE_PROJECT_VERSION_ID"
	EnvShareCode        = "INTERACTIVE_SHARE_CODE"
)

// Project identifies the interactive project this process connects as.
type Project struct {
	AppID            string `json:"appid"`
	ProjectVersionID string `json:"projectversionid"`
	ShareCode        string `json:"sharecode,omitempty"`
}

// Load reads the JSON file at path, then applies environment overrides.
// A missing file is not an error when the environment supplies both ids.
func Load(path string) (Project, error) {
	var project Project

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &project); err != nil {
				return Project{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to environment
		default:
			return Project{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// .env is optional; absence is the common case.
	_ = godotenv.Load()

	if v := os.Getenv(EnvAppID); v != "" {
		project.AppID = v
	}
	if v := os.Getenv(EnvProjectVersionID); v != "" {
		project.ProjectVersionID = v
	}
	if v := os.Getenv(EnvShareCode); v != "" {
		project.ShareCode = v
	}

	return project, nil
}

// Complete reports whether both required identifiers are present.
func (p Project) Complete() bool {
	return p.AppID != "" && p.ProjectVersionID != ""
}
