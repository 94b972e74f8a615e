package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medalboard/backend/internal/middleware"
	"github.com/medalboard/backend/pkg/router"
	"github.com/medalboard/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadDatabase()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadTokenEngine()
	s.loadRepos()
	s.loadStatistic()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.ApiServer.Host, cfg.ApiServer.Port),
		Handler: s.router.Handler(),
	}

	go s.waitForShutdown()

	xcontext.Logger(s.ctx).Infof("Starting server on port: %s", cfg.ApiServer.Port)
	var err error
	if cfg.ApiServer.Cert != "" && cfg.ApiServer.Key != "" {
		err = s.server.ListenAndServeTLS(cfg.ApiServer.Cert, cfg.ApiServer.Key)
	} else {
		err = s.server.ListenAndServe()
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// waitForShutdown drains in-flight requests on SIGINT or SIGTERM, then
// releases the broker and cache connections.
func (s *srv) waitForShutdown() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	xcontext.Logger(s.ctx).Infof("Shutting down server")
	if err := s.server.Shutdown(ctx); err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot shutdown server: %v", err)
	}

	for _, c := range []any{s.publisher, s.redisClient} {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				xcontext.Logger(s.ctx).Errorf("Cannot close connection: %v", err)
			}
		}
	}
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, xcontext.Configs(s.ctx), xcontext.Logger(s.ctx))
	s.router.AddCloser(middleware.Logger())

	// These following APIs need an access token.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.NewAuthVerifier(s.tokenEngine).Middleware())
	{
		// User API
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)
		router.POST(authRouter, "/updateUser", s.userDomain.Update)

		// Ownership API
		router.POST(authRouter, "/grantMedal", s.userMedalDomain.Grant)
		router.POST(authRouter, "/revokeMedal", s.userMedalDomain.Revoke)
		router.POST(authRouter, "/reorderMedals", s.userMedalDomain.Reorder)
		router.POST(authRouter, "/updateEarnedAt", s.userMedalDomain.UpdateEarnedAt)
		router.POST(authRouter, "/markTrackedAsEarned", s.userMedalDomain.MarkTrackedAsEarned)
		router.POST(authRouter, "/addVouch", s.userMedalDomain.AddVouch)
		router.POST(authRouter, "/removeVouch", s.userMedalDomain.RemoveVouch)

		// Task API
		router.POST(authRouter, "/completeTask", s.userTaskDomain.Complete)
		router.POST(authRouter, "/uncompleteTask", s.userTaskDomain.Uncomplete)

		// Gift API
		router.POST(authRouter, "/sendGift", s.giftDomain.Send)
		router.POST(authRouter, "/acceptGift", s.giftDomain.Accept)
		router.POST(authRouter, "/rejectGift", s.giftDomain.Reject)
		router.POST(authRouter, "/cancelGift", s.giftDomain.Cancel)
		router.GET(authRouter, "/getReceivedGifts", s.giftDomain.GetReceived)
		router.GET(authRouter, "/getSentGifts", s.giftDomain.GetSent)

		// Watchlist API
		router.POST(authRouter, "/trackMedal", s.watchlistDomain.TrackMedal)
		router.POST(authRouter, "/untrackMedal", s.watchlistDomain.UntrackMedal)
		router.POST(authRouter, "/trackCollection", s.watchlistDomain.TrackCollection)
		router.POST(authRouter, "/untrackCollection", s.watchlistDomain.UntrackCollection)

		// Collection API
		router.POST(authRouter, "/createCollection", s.collectionDomain.Create)
		router.POST(authRouter, "/updateCollection", s.collectionDomain.Update)
		router.POST(authRouter, "/deleteCollection", s.collectionDomain.Delete)

		// Follow API
		router.POST(authRouter, "/follow", s.followDomain.Follow)
		router.POST(authRouter, "/unfollow", s.followDomain.Unfollow)
	}

	// These following APIs are only for admin.
	adminRouter := authRouter.Branch()
	adminRouter.Before(middleware.NewOnlyAdmin(s.userRepo).Middleware())
	{
		router.GET(adminRouter, "/getUsers", s.userDomain.GetList)
		router.POST(adminRouter, "/updateUserByAdmin", s.userDomain.UpdateByAdmin)
		router.POST(adminRouter, "/deleteUser", s.userDomain.Delete)

		router.POST(adminRouter, "/createCategory", s.categoryDomain.Create)
		router.POST(adminRouter, "/updateCategory", s.categoryDomain.UpdateByID)
		router.POST(adminRouter, "/deleteCategory", s.categoryDomain.DeleteByID)

		router.POST(adminRouter, "/createMedal", s.medalDomain.Create)
		router.POST(adminRouter, "/updateMedal", s.medalDomain.Update)
		router.POST(adminRouter, "/deleteMedal", s.medalDomain.Delete)

		router.GET(adminRouter, "/auditGifts", s.giftDomain.Audit)
	}

	// Public API. An access token is read if present, so that the caller can
	// default to itself.
	publicRouter := s.router.Branch()
	publicRouter.Before(middleware.NewAuthVerifier(s.tokenEngine).Optional().Middleware())
	{
		router.POST(publicRouter, "/createUser", s.userDomain.Create)
		router.GET(publicRouter, "/getUser", s.userDomain.Get)

		router.GET(publicRouter, "/getCategories", s.categoryDomain.GetList)
		router.GET(publicRouter, "/getMedal", s.medalDomain.Get)
		router.GET(publicRouter, "/getMedals", s.medalDomain.GetList)
		router.GET(publicRouter, "/getPopularMedals", s.statisticDomain.GetPopularMedals)

		router.GET(publicRouter, "/getUserMedals", s.userMedalDomain.GetList)
		router.GET(publicRouter, "/getUserMedal", s.userMedalDomain.Get)
		router.GET(publicRouter, "/isOwned", s.userMedalDomain.IsOwned)
		router.GET(publicRouter, "/getVouches", s.userMedalDomain.GetVouches)

		router.GET(publicRouter, "/getCompletedCounts", s.userTaskDomain.GetCompletedCounts)
		router.GET(publicRouter, "/getCompletedTasks", s.userTaskDomain.GetCompletedTasks)

		router.GET(publicRouter, "/isTracked", s.watchlistDomain.IsTracked)
		router.GET(publicRouter, "/getTrackedMedals", s.watchlistDomain.GetTrackedMedals)
		router.GET(publicRouter, "/isTrackingCollection", s.watchlistDomain.IsTrackingCollection)
		router.GET(publicRouter, "/getTrackedCollections", s.watchlistDomain.GetTrackedCollections)

		router.GET(publicRouter, "/getCollection", s.collectionDomain.Get)
		router.GET(publicRouter, "/getCollections", s.collectionDomain.GetList)

		router.GET(publicRouter, "/isFollowing", s.followDomain.IsFollowing)
		router.GET(publicRouter, "/getFollowers", s.followDomain.GetFollowers)
		router.GET(publicRouter, "/getFollowing", s.followDomain.GetFollowing)
	}
}
