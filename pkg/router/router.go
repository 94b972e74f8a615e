package router

import (
	"context"
	"net/http"

	"github.com/medalboard/backend/config"
	"github.com/medalboard/backend/pkg/logger"
	"github.com/medalboard/backend/pkg/xcontext"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. A non-nil returned context replaces
// the request context. A non-nil error stops the chain and is sent to client.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response is written, even if the request failed.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux     *http.ServeMux
	db      *gorm.DB
	cfg     config.Configs
	logger  logger.Logger
	befores []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// Branch returns a router sharing the same mux and copying the middlewares
// registered so far.
func (r *Router) Branch() *Router {
	return &Router{
		mux:     r.mux,
		db:      r.db,
		cfg:     r.cfg,
		logger:  r.logger,
		befores: append([]MiddlewareFunc{}, r.befores...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func (r *Router) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   r.cfg.ApiServer.AllowOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Authorization"},
		AllowCredentials: true,
	}).Handler(r.mux)
}

func (r *Router) newContext(req *http.Request) context.Context {
	ctx := req.Context()
	ctx = xcontext.WithDB(ctx, r.db)
	ctx = xcontext.WithConfigs(ctx, r.cfg)
	ctx = xcontext.WithLogger(ctx, r.logger)
	ctx = xcontext.WithHTTPRequest(ctx, req)
	return ctx
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodPost, pattern, handler)
}

func route[Request, Response any](
	r *Router, method, pattern string, handler HandlerFunc[Request, Response],
) {
	befores := append([]MiddlewareFunc{}, r.befores...)
	closers := append([]CloserFunc{}, r.closers...)

	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		ctx := r.newContext(req)

		resp, err := func() (any, error) {
			if req.Method != method {
				return nil, errMethodNotAllowed
			}

			for _, before := range befores {
				newCtx, err := before(ctx)
				if err != nil {
					return nil, err
				}

				if newCtx != nil {
					ctx = newCtx
				}
			}

			var request Request
			if err := parseRequest(req, method, &request); err != nil {
				ctx = xcontext.WithError(ctx, err)
				xcontext.Logger(ctx).Debugf("Cannot parse request: %v", err)
				return nil, errBadRequest
			}

			return handler(ctx, &request)
		}()

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeError(ctx, w, err)
		} else {
			writeResponse(ctx, w, resp)
		}

		for _, closer := range closers {
			closer(ctx)
		}
	})
}
