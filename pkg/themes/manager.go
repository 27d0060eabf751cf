package themes

import (
	"os"
	"path/filepath"

	"github.com/getgauge/common"

	"github.com/lirany1/pickles-explorer/pkg/config"
	"github.com/lirany1/pickles-explorer/pkg/logger"
)

// Manager resolves dashboard themes and copies their static assets
type Manager struct {
	config *config.Config
}

// NewManager creates a new theme manager
func NewManager(cfg *config.Config) *Manager {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Manager{config: cfg}
}

// CopyAssets mirrors the assets directory of the theme into outputDir and
// returns the copied files. Themes without assets are skipped.
func (m *Manager) CopyAssets(themeName, outputDir string) ([]string, error) {
	assetsPath := filepath.Join(m.ThemePath(themeName), "assets")

	if _, err := os.Stat(assetsPath); os.IsNotExist(err) {
		logger.Debugf("Theme %q has no assets at %s", themeName, assetsPath)
		return nil, nil
	}

	return common.MirrorDir(assetsPath, outputDir)
}

// ThemePath returns the directory of a theme. Absolute names are used as is,
// otherwise the data directory's themes folder wins over the bundled one.
func (m *Manager) ThemePath(themeName string) string {
	if filepath.IsAbs(themeName) {
		return themeName
	}

	projectThemes := filepath.Join(m.config.DataDir, "themes", themeName)
	if _, err := os.Stat(projectThemes); err == nil {
		return projectThemes
	}

	return filepath.Join("web", "themes", themeName)
}
