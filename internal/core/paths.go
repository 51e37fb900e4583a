package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Paths struct {
	HomeDir    string
	DataDir    string
	LogFile    string
	ConfigFile string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		defaultPaths = NewPaths(homeDir)

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

// NewPaths lays out the launcher's files under homeDir.
func NewPaths(homeDir string) *Paths {
	dataDir := filepath.Join(homeDir, ".local", "share", "launcher")
	configDir := filepath.Join(homeDir, ".config", "launcher")
	return &Paths{
		HomeDir:    homeDir,
		DataDir:    dataDir,
		LogFile:    filepath.Join(dataDir, "launcher.log"),
		ConfigFile: filepath.Join(configDir, "config.yaml"),
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}

// HideHomeDir shortens a path under homeDir to the ~ form for display.
func HideHomeDir(homeDir string, path string) string {
	if homeDir == "" {
		return path
	}
	if path == homeDir {
		return "~"
	}
	if strings.HasPrefix(path, homeDir+string(filepath.Separator)) {
		return fmt.Sprintf("~%s", path[len(homeDir):])
	}
	return path
}
