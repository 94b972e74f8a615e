package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/router"
	"github.com/medalboard/backend/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		if req == nil {
			return
		}

		info := fmt.Sprintf("%s | %s", req.Method, req.URL.Path)
		if userID := xcontext.RequestUserID(ctx); userID != "" {
			info = fmt.Sprintf("%s | %s", info, userID)
		}

		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) && errx.Code != errorx.Unknown.Code {
				xcontext.Logger(ctx).Warnf("%s | %d", info, errx.Code)
			} else {
				xcontext.Logger(ctx).Errorf("%s | %v", info, err)
			}
		} else {
			xcontext.Logger(ctx).Infof(info)
		}
	}
}
