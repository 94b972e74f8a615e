package xcontext

import (
	"context"
	"net/http"

	"github.com/medalboard/backend/config"
	"github.com/medalboard/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	dbKey            struct{}
	dbTransactionKey struct{}
	loggerKey        struct{}
	configsKey       struct{}
	requestUserIDKey struct{}
	httpRequestKey   struct{}
	errorKey         struct{}
)

// dbTransaction is the transaction attached to a context. A nested transaction
// shares the outermost one and never commits or rolls back by itself.
type dbTransaction struct {
	tx     *gorm.DB
	nested bool
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current transaction if the context is in one, otherwise the
// plain database handle.
func DB(ctx context.Context) *gorm.DB {
	if t, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction); ok {
		return t.tx
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db.WithContext(ctx)
}

// WithDBTransaction begins a transaction and returns a context whose DB() is
// that transaction. Calling it on a context already in a transaction joins the
// outer transaction.
func WithDBTransaction(ctx context.Context) context.Context {
	if t, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction); ok {
		return context.WithValue(ctx, dbTransactionKey{}, &dbTransaction{tx: t.tx, nested: true})
	}

	return context.WithValue(ctx, dbTransactionKey{}, &dbTransaction{tx: DB(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) error {
	t, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction)
	if !ok || t.nested {
		return nil
	}

	return t.tx.Commit().Error
}

// WithRollbackDBTransaction is safe to defer after a commit.
func WithRollbackDBTransaction(ctx context.Context) {
	t, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction)
	if !ok || t.nested {
		return
	}

	t.tx.Rollback()
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.SILENCE)
	}

	return l
}

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, _ := ctx.Value(configsKey{}).(config.Configs)
	return cfg
}

func WithRequestUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, requestUserIDKey{}, userID)
}

func RequestUserID(ctx context.Context) string {
	id, _ := ctx.Value(requestUserIDKey{}).(string)
	return id
}

func WithHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

func HTTPRequest(ctx context.Context) *http.Request {
	req, _ := ctx.Value(httpRequestKey{}).(*http.Request)
	return req
}

func WithError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, errorKey{}, err)
}

func Error(ctx context.Context) error {
	err, _ := ctx.Value(errorKey{}).(error)
	return err
}
