package middleware

import (
	"context"
	"strings"

	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/pkg/authenticator"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/router"
	"github.com/medalboard/backend/pkg/xcontext"
)

type AuthVerifier struct {
	tokenEngine authenticator.TokenEngine[model.AccessToken]
	optional    bool
}

func NewAuthVerifier(tokenEngine authenticator.TokenEngine[model.AccessToken]) *AuthVerifier {
	return &AuthVerifier{tokenEngine: tokenEngine}
}

// Optional lets requests without a token pass as anonymous. A token that is
// present must still be valid.
func (a *AuthVerifier) Optional() *AuthVerifier {
	a.optional = true
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := accessToken(ctx)
		if token == "" {
			if a.optional {
				return nil, nil
			}

			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		info, err := a.tokenEngine.Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		if info.ID == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, info.ID), nil
	}
}

// accessToken reads the bearer token from the Authorization header, then
// falls back to the access token cookie.
func accessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return ""
	}

	authorization := req.Header.Get("Authorization")
	if token, found := strings.CutPrefix(authorization, "Bearer "); found {
		return strings.TrimSpace(token)
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
