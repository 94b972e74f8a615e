package testutil

import (
	"context"
	"time"

	"github.com/medalboard/backend/config"
	"github.com/medalboard/backend/migration"
	"github.com/medalboard/backend/pkg/logger"
	"github.com/medalboard/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MockContext returns a context holding a fresh in-memory database with every
// table migrated. The database is private to the returned context.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Each connection to ":memory:" opens a different database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Configs{
		Env: "test",
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 10,
		},
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
		},
		Redis: config.RedisConfigs{
			PopularTTL: time.Hour,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
