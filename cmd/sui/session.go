package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/hairizuanbinnoorazman/uiscript/browser"
	"github.com/hairizuanbinnoorazman/uiscript/browser/rodbrowser"
	"github.com/hairizuanbinnoorazman/uiscript/browser/staticdom"
	"github.com/hairizuanbinnoorazman/uiscript/database"
	"github.com/hairizuanbinnoorazman/uiscript/runner"
	"github.com/hairizuanbinnoorazman/uiscript/testrun"
	"gorm.io/gorm"
)

// driverFactory opens one browser session per job.
func (a *app) driverFactory(static bool) runner.DriverFactory {
	if static || strings.EqualFold(a.cfg.Browser.Driver, "static") {
		return func(ctx context.Context) (browser.Driver, error) {
			return staticdom.New(), nil
		}
	}

	opts := rodbrowser.Options{
		ControlURL: a.cfg.Browser.ControlURL,
		Bin:        a.cfg.Browser.Bin,
		Headless:   a.cfg.Browser.Headless,
		Width:      a.cfg.Browser.Width,
		Height:     a.cfg.Browser.Height,
	}
	return func(ctx context.Context) (browser.Driver, error) {
		d, err := rodbrowser.Launch(ctx, opts)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// history bundles the run history stores over one connection.
type history struct {
	db        *gorm.DB
	runs      testrun.Store
	steps     testrun.StepStore
	artifacts testrun.ArtifactStore
}

func (h *history) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// openHistory connects to the history database and applies pending
// migrations.
func (a *app) openHistory(ctx context.Context) (*history, error) {
	dbCfg := a.cfg.dbConfig()
	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	driver, err := database.NormalizeDriver(dbCfg.Driver)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := database.RunMigrations(sqlDB, driver); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a.logger.Debug(ctx, "history database ready", map[string]interface{}{
		"driver": driver,
	})

	return &history{
		db:        db,
		runs:      testrun.NewGormStore(db, a.logger),
		steps:     testrun.NewGormStepStore(db, a.logger),
		artifacts: testrun.NewGormArtifactStore(db, a.logger),
	}, nil
}
