package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/conorfennell/knoldeck/internal/config"
	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/web"
)

var _ web.SettingsManager = (*SettingsManager)(nil)

// SettingsManager applies settings changes made over the API. A changed database path
// opens the new store before the old one is closed, so a failure leaves the old store
// in place.
type SettingsManager struct {
	cfg  *config.Config
	path string
	app  *App
}

// NewSettingsManager manages cfg for a, persisting changes to the config file at path.
// An empty path keeps changes in memory only.
func NewSettingsManager(cfg *config.Config, path string, a *App) *SettingsManager {
	return &SettingsManager{cfg: cfg, path: path, app: a}
}

// App is the application currently serving requests.
func (m *SettingsManager) App() *App {
	return m.app
}

func (m *SettingsManager) Current() web.Settings {
	return web.Settings{Theme: m.cfg.Theme, DatabasePath: m.cfg.Database.Path}
}

func (m *SettingsManager) Apply(ctx context.Context, s web.Settings) (web.Deps, error) {
	next := *m.cfg
	next.Theme = s.Theme
	next.Database.Path = s.DatabasePath
	if err := next.Validate(); err != nil {
		return web.Deps{}, &domain.ValidationError{Field: "settings", Message: err.Error()}
	}

	current := m.app
	if next.Database.Path != m.cfg.Database.Path {
		opened, err := m.app.Reconfigure(ctx, &next)
		if err != nil {
			return web.Deps{}, domain.Persistence("open database", err)
		}
		current = opened
	}

	if m.path != "" {
		if err := config.Save(m.path, &next); err != nil {
			if current != m.app {
				current.Close()
			}
			return web.Deps{}, fmt.Errorf("failed to save settings: %w", err)
		}
	}

	if current != m.app {
		if err := m.app.Close(); err != nil {
			slog.Warn("failed to close previous store", "error", err)
		}
		slog.Info("switched store", "from", m.cfg.Database.Path, "to", next.Database.Path)
	}
	m.cfg = &next
	m.app = current
	return current.Deps(m), nil
}
