package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/authenticator"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/testutil"
	"github.com/medalboard/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func TestAuthVerifier(t *testing.T) {
	engine := authenticator.NewTokenEngine[model.AccessToken]("secret", time.Minute)
	token, err := engine.Generate(testutil.User1.ID, model.AccessToken{ID: testutil.User1.ID})
	require.NoError(t, err)

	otherEngine := authenticator.NewTokenEngine[model.AccessToken]("other-secret", time.Minute)
	forged, err := otherEngine.Generate(testutil.User1.ID, model.AccessToken{ID: testutil.User1.ID})
	require.NoError(t, err)

	tests := []struct {
		name     string
		optional bool
		setup    func(req *http.Request)
		wantUser string
		wantErr  error
	}{
		{
			name:     "bearer token",
			setup:    func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) },
			wantUser: testutil.User1.ID,
		},
		{
			name: "cookie",
			setup: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
			},
			wantUser: testutil.User1.ID,
		},
		{
			name:    "no token",
			setup:   func(req *http.Request) {},
			wantErr: errorx.New(errorx.Unauthenticated, "You need to authenticate before"),
		},
		{
			name:     "no token on optional",
			optional: true,
			setup:    func(req *http.Request) {},
		},
		{
			name:     "invalid token on optional",
			optional: true,
			setup:    func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+forged) },
			wantErr:  errorx.New(errorx.Unauthenticated, "Invalid access token"),
		},
		{
			name:    "wrong secret",
			setup:   func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+forged) },
			wantErr: errorx.New(errorx.Unauthenticated, "Invalid access token"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/getMe", nil)
			tt.setup(req)
			ctx := xcontext.WithHTTPRequest(testutil.MockContext(), req)

			verifier := NewAuthVerifier(engine)
			if tt.optional {
				verifier = verifier.Optional()
			}

			newCtx, err := verifier.Middleware()(ctx)
			if tt.wantErr != nil {
				require.Equal(t, tt.wantErr, err)
				return
			}

			require.NoError(t, err)
			if tt.wantUser == "" {
				require.Nil(t, newCtx)
				return
			}

			require.Equal(t, tt.wantUser, xcontext.RequestUserID(newCtx))
		})
	}
}

func TestOnlyAdmin(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	onlyAdmin := NewOnlyAdmin(repository.NewUserRepository())
	_, err := onlyAdmin.Middleware()(ctx)
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Only admin can access this api"), err)

	ctx = xcontext.WithRequestUserID(ctx, testutil.Admin1.ID)
	_, err = onlyAdmin.Middleware()(ctx)
	require.NoError(t, err)
}
