package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/testutil"
	"github.com/medalboard/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestFollowDomain(publisher *testutil.MockPublisher) *followDomain {
	return NewFollowDomain(
		repository.NewFollowRepository(),
		repository.NewUserRepository(),
		publisher,
	)
}

func Test_followDomain_Follow(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	publisher := &testutil.MockPublisher{}
	d := newTestFollowDomain(publisher)

	_, err := d.Follow(ctx, &model.FollowRequest{UserID: testutil.User1.ID})
	require.Equal(t, errorx.New(errorx.SelfFollow, "Cannot follow yourself"), err)

	_, err = d.Follow(ctx, &model.FollowRequest{UserID: "invalid-user"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found user"), err)

	_, err = d.Follow(ctx, &model.FollowRequest{UserID: testutil.User2.ID})
	require.NoError(t, err)

	_, err = d.Follow(ctx, &model.FollowRequest{UserID: testutil.User2.ID})
	require.Equal(t, errorx.New(errorx.AlreadyFollowing, "User is already followed"), err)

	resp, err := d.IsFollowing(ctx, &model.IsFollowingRequest{
		FollowerID:  testutil.User1.ID,
		FollowingID: testutil.User2.ID,
	})
	require.NoError(t, err)
	require.True(t, resp.Following)

	resp, err = d.IsFollowing(ctx, &model.IsFollowingRequest{
		FollowerID:  testutil.User2.ID,
		FollowingID: testutil.User1.ID,
	})
	require.NoError(t, err)
	require.False(t, resp.Following)

	require.Equal(t, []string{model.UserFollowedTopic}, publisher.Topics())
}

func Test_followDomain_Unfollow(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestFollowDomain(&testutil.MockPublisher{})

	_, err := d.Unfollow(ctx, &model.UnfollowRequest{UserID: testutil.User2.ID})
	require.Equal(t, errorx.New(errorx.NotFollowing, "User is not followed"), err)

	_, err = d.Follow(ctx, &model.FollowRequest{UserID: testutil.User2.ID})
	require.NoError(t, err)

	_, err = d.Unfollow(ctx, &model.UnfollowRequest{UserID: testutil.User2.ID})
	require.NoError(t, err)

	resp, err := d.IsFollowing(ctx, &model.IsFollowingRequest{FollowingID: testutil.User2.ID})
	require.NoError(t, err)
	require.False(t, resp.Following)
}

func Test_followDomain_GetFollowers_Cursor(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestFollowDomain(&testutil.MockPublisher{})

	userRepo := repository.NewUserRepository()
	followRepo := repository.NewFollowRepository()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		follower := &entity.User{
			Base:     entity.Base{ID: fmt.Sprintf("follower%02d", i)},
			Username: fmt.Sprintf("follower%02d", i),
			Email:    fmt.Sprintf("follower%02d@medalboard.dev", i),
		}
		require.NoError(t, userRepo.Create(ctx, follower))
		require.NoError(t, followRepo.Create(ctx, &entity.Follow{
			FollowerID:  follower.ID,
			FollowingID: testutil.User1.ID,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	page1, err := d.GetFollowers(ctx, &model.GetFollowersRequest{UserID: testutil.User1.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page1.Users, 10)
	require.Equal(t, int64(15), page1.Total)
	require.Equal(t, "follower14", page1.Users[0].User.ID)
	require.Equal(t, "follower05", page1.Users[9].User.ID)
	require.Equal(t, "follower05", page1.NextCursor)

	// A new edge ahead of the window does not shift the next page.
	require.NoError(t, followRepo.Create(ctx, &entity.Follow{
		FollowerID:  testutil.User2.ID,
		FollowingID: testutil.User1.ID,
	}))

	page2, err := d.GetFollowers(ctx, &model.GetFollowersRequest{
		UserID: testutil.User1.ID,
		Cursor: page1.NextCursor,
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, page2.Users, 5)
	require.Equal(t, int64(16), page2.Total)
	require.Equal(t, "follower04", page2.Users[0].User.ID)
	require.Equal(t, "follower00", page2.Users[4].User.ID)
	require.Empty(t, page2.NextCursor)
}

func Test_followDomain_GetFollowers_TotalIndependentOfCursor(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestFollowDomain(&testutil.MockPublisher{})

	userRepo := repository.NewUserRepository()
	followRepo := repository.NewFollowRepository()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		follower := &entity.User{
			Base:     entity.Base{ID: fmt.Sprintf("follower%02d", i)},
			Username: fmt.Sprintf("follower%02d", i),
			Email:    fmt.Sprintf("follower%02d@medalboard.dev", i),
		}
		require.NoError(t, userRepo.Create(ctx, follower))
		require.NoError(t, followRepo.Create(ctx, &entity.Follow{
			FollowerID:  follower.ID,
			FollowingID: testutil.User1.ID,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	page1, err := d.GetFollowers(ctx, &model.GetFollowersRequest{UserID: testutil.User1.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page1.Users, 10)
	require.NotEmpty(t, page1.NextCursor)
	require.Equal(t, int64(15), page1.Total)

	page2, err := d.GetFollowers(ctx, &model.GetFollowersRequest{
		UserID: testutil.User1.ID,
		Cursor: page1.NextCursor,
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, page2.Users, 5)
	require.Empty(t, page2.NextCursor)
	require.Equal(t, int64(15), page2.Total)

	// A cursor whose edge no longer exists gives an empty page.
	page3, err := d.GetFollowers(ctx, &model.GetFollowersRequest{
		UserID: testutil.User1.ID,
		Cursor: "invalid-user",
		Limit:  10,
	})
	require.NoError(t, err)
	require.Empty(t, page3.Users)
	require.Empty(t, page3.NextCursor)
	require.Equal(t, int64(15), page3.Total)
}

func Test_followDomain_GetFollowing(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestFollowDomain(&testutil.MockPublisher{})

	user1Ctx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	for _, id := range []string{testutil.User2.ID, testutil.User3.ID, testutil.Admin1.ID} {
		_, err := d.Follow(user1Ctx, &model.FollowRequest{UserID: id})
		require.NoError(t, err)
	}

	page1, err := d.GetFollowing(ctx, &model.GetFollowingRequest{UserID: testutil.User1.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1.Users, 2)
	require.Equal(t, int64(3), page1.Total)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := d.GetFollowing(ctx, &model.GetFollowingRequest{
		UserID: testutil.User1.ID,
		Cursor: page1.NextCursor,
		Limit:  2,
	})
	require.NoError(t, err)
	require.Len(t, page2.Users, 1)
	require.Empty(t, page2.NextCursor)

	seen := map[string]bool{}
	for _, u := range append(page1.Users, page2.Users...) {
		seen[u.User.ID] = true
	}
	require.Len(t, seen, 3)

	_, err = d.GetFollowing(ctx, &model.GetFollowingRequest{UserID: testutil.User1.ID, Limit: -1})
	require.Equal(t, errorx.New(errorx.BadRequest, "Limit must be positive"), err)
}
