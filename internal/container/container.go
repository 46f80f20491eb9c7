package container

import (
	"fmt"

	"leadboard/app"
	"leadboard/internal"
	"leadboard/internal/auth"
	"leadboard/internal/config"
	"leadboard/internal/dataset"
	"leadboard/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Storage
	Files *dataset.FileStore
	Store ports.DatasetStore

	// Access control
	Gate     *auth.Gate
	Throttle *auth.LoginThrottle

	// Services
	Dashboard *app.DashboardService
	Admin     *app.AdminService
}

// New builds every component from cfg
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	c := &Container{
		Config: cfg,
		Logger: logger,
		Files:  dataset.NewFileStore(cfg.Data.File),
	}
	c.Store = dataset.NewCachedStore(c.Files, cfg.Dashboard.CacheTTL)

	gate, err := auth.NewGate(cfg.Admin)
	if err != nil {
		return nil, err
	}
	c.Gate = gate
	c.Throttle = auth.NewLoginThrottle(cfg.Admin.LoginPerMin)

	c.Dashboard = app.NewDashboardService(c.Store, app.DashboardSettings{
		TopGroups:   cfg.Dashboard.TopGroups,
		TopStatuses: cfg.Dashboard.TopStatuses,
		PageSize:    cfg.Dashboard.PageSize,
	}, logger)
	c.Admin = app.NewAdminService(c.Store, cfg.Dashboard.TopStatuses, logger)

	logger.Info("Container ready (data file %s, cache ttl %s)", cfg.Data.File, cfg.Dashboard.CacheTTL)
	return c, nil
}
