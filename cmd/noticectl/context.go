package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"noticeboard/internal/adapters/storage"
	"noticeboard/internal/config"
)

type commandContext struct {
	dbFlag      *string
	envFileFlag *string
	jsonFlag    *bool

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(dbFlag, envFileFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		dbFlag:      dbFlag,
		envFileFlag: envFileFlag,
		jsonFlag:    jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		var files []string
		if c.envFileFlag != nil && strings.TrimSpace(*c.envFileFlag) != "" {
			files = append(files, *c.envFileFlag)
		}
		cfg, err := config.Load(files...)
		if err != nil {
			c.configErr = err
			return
		}
		if c.dbFlag != nil && strings.TrimSpace(*c.dbFlag) != "" {
			cfg.DBPath = strings.TrimSpace(*c.dbFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) wantJSON() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// openDB opens the configured database without migrating it.
func (c *commandContext) openDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return storage.Open(ctx, cfg.DSN())
}

// withDB runs fn against a database already at the latest schema.
// Commands other than migrate never change the schema.
func (c *commandContext) withDB(ctx context.Context, fn func(storage.SQLDB) error) error {
	db, err := c.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := storage.SchemaVersion(db)
	if err != nil {
		return err
	}
	if latest := storage.LatestSchemaVersion(); version < latest {
		return fmt.Errorf("database schema is at version %d, need %d: run `noticectl migrate`", version, latest)
	}
	return fn(db)
}
