package ux

import (
	"os"
	"path/filepath"
)

// DirName is the per-user and per-project settings directory.
const DirName = ".autosdlc"

// ConfigFileName is the configuration file inside DirName.
const ConfigFileName = "config.yaml"

// HomeDir returns ~/.autosdlc, or ./.autosdlc when the home directory is
// unknown.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// LogDir returns the directory log files are written to.
func LogDir() string {
	return filepath.Join(HomeDir(), "logs")
}

// DefaultExportDir returns where artifacts of a project are exported when
// no directory is given.
func DefaultExportDir(projectID string) string {
	return "autosdlc-" + projectID
}

// DiscoverConfigFile looks for .autosdlc/config.yaml in start and its parent
// directories, stopping at a git root, then in the home directory. It
// returns "" when none exists.
func DiscoverConfigFile(start string) string {
	dir := start
	for dir != "" {
		path := filepath.Join(dir, DirName, ConfigFileName)
		if fileExists(path) {
			return path
		}

		if fileExists(filepath.Join(dir, ".git")) {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	path := filepath.Join(HomeDir(), ConfigFileName)
	if fileExists(path) {
		return path
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
