package appdirs

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "atk"

// Dirs holds the on-disk locations used by atk
type Dirs struct {
	ConfigPath     string
	DataPath       string
	PublishLogPath string
}

// New resolves XDG-compliant locations. configOverride replaces the config
// file path when non-empty.
func New(configOverride string) *Dirs {
	configPath := filepath.Join(xdg.ConfigHome, appName, "config.yaml")
	if configOverride != "" {
		configPath = configOverride
	}

	dataPath := filepath.Join(xdg.DataHome, appName)

	return &Dirs{
		ConfigPath:     configPath,
		DataPath:       dataPath,
		PublishLogPath: filepath.Join(dataPath, "publishes.json"),
	}
}

// Rooted places every location under root. Used by tests and portable setups.
func Rooted(root string) *Dirs {
	dataPath := filepath.Join(root, "data")
	return &Dirs{
		ConfigPath:     filepath.Join(root, "config", "config.yaml"),
		DataPath:       dataPath,
		PublishLogPath: filepath.Join(dataPath, "publishes.json"),
	}
}
