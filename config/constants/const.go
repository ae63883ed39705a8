package constants

import (
	"os"
	"path/filepath"
)

const DefaultHomeEnv string = "HOP_HOME"
const ConfigEnv string = "HOP_CONFIG"

// Name of the config file, without extension
const ConfigName string = "hop"

var DefaultHome string

func init() {
	if home := os.Getenv(DefaultHomeEnv); home != "" {
		DefaultHome = home
		return
	}
	// ~/.hop default
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		DefaultHome = "/data"
	} else {
		DefaultHome = filepath.Join(userHomeDir, ".hop")
	}
}
