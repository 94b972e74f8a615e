package migration

import (
	"context"
	"errors"
	"sort"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type Migrator func(context.Context) error

var Migrators = map[string]Migrator{
	"0001": migrate0001,
	"0002": migrate0002,
}

// Migrate applies every registered migrator whose version is not recorded
// yet, in version order. Each migrator runs in its own transaction.
func Migrate(ctx context.Context) error {
	versions := make([]string, 0, len(Migrators))
	for version := range Migrators {
		versions = append(versions, version)
	}
	sort.Strings(versions)

	for _, version := range versions {
		if err := Run(ctx, version); err != nil {
			return err
		}
	}

	return nil
}

// Run applies one migrator unless its version is already recorded.
func Run(ctx context.Context, version string) error {
	migrator, ok := Migrators[version]
	if !ok {
		return errors.New("not found migrator version " + version)
	}

	var record entity.Migration
	err := xcontext.DB(ctx).Take(&record, "version=?", version).Error
	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := migrator(ctx); err != nil {
		return err
	}

	if err := xcontext.DB(ctx).Create(&entity.Migration{Version: version}).Error; err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}
