package main

import (
	"github.com/medalboard/backend/migration"
	"github.com/medalboard/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.loadDatabase()

	if err := migration.AutoMigrate(s.ctx); err != nil {
		return err
	}

	if version := cctx.String("version"); version != "" {
		return migration.Run(s.ctx, version)
	}

	if err := migration.Migrate(s.ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migrated the database")
	return nil
}
