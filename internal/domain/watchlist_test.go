package domain

import (
	"context"
	"testing"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestWatchlistDomain() *watchlistDomain {
	return NewWatchlistDomain(
		repository.NewMedalRepository(),
		repository.NewUserMedalRepository(),
		repository.NewCollectionRepository(),
		repository.NewTrackedMedalRepository(),
		repository.NewTrackedCollectionRepository(),
	)
}

func Test_watchlistDomain_TrackMedal(t *testing.T) {
	type args struct {
		ctx context.Context
		req *model.TrackMedalRequest
	}

	tests := []struct {
		name    string
		args    args
		setup   func(ctx context.Context)
		wantErr error
	}{
		{
			name: "happy case",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.TrackMedalRequest{MedalID: testutil.Medal1.ID},
			},
		},
		{
			name: "track twice",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.TrackMedalRequest{MedalID: testutil.Medal1.ID},
			},
			setup: func(ctx context.Context) {
				err := repository.NewTrackedMedalRepository().Upsert(ctx, &entity.TrackedMedal{
					UserID:  testutil.User1.ID,
					MedalID: testutil.Medal1.ID,
				})
				if err != nil {
					panic(err)
				}
			},
		},
		{
			name: "gift only medal",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.TrackMedalRequest{MedalID: testutil.MedalGiftOnly.ID},
			},
			wantErr: errorx.New(errorx.NotEarnable, "Only earnable medals can be tracked"),
		},
		{
			name: "unavailable medal",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.TrackMedalRequest{MedalID: testutil.MedalUnavailable.ID},
			},
			wantErr: errorx.New(errorx.NotEarnable, "Only earnable medals can be tracked"),
		},
		{
			name: "already owned",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.TrackMedalRequest{MedalID: testutil.Medal1.ID},
			},
			setup: func(ctx context.Context) {
				err := repository.NewUserMedalRepository().Create(ctx, &entity.UserMedal{
					UserID:  testutil.User1.ID,
					MedalID: testutil.Medal1.ID,
				})
				if err != nil {
					panic(err)
				}
			},
			wantErr: errorx.New(errorx.AlreadyOwned, "User already owns the medal"),
		},
		{
			name: "not found medal",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.TrackMedalRequest{MedalID: "invalid-medal"},
			},
			wantErr: errorx.New(errorx.NotFound, "Not found medal"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.CreateFixtureDb(tt.args.ctx)
			if tt.setup != nil {
				tt.setup(tt.args.ctx)
			}

			d := newTestWatchlistDomain()
			_, err := d.TrackMedal(tt.args.ctx, tt.args.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.Equal(t, tt.wantErr, err)
				return
			}

			require.NoError(t, err)

			resp, err := d.IsTracked(tt.args.ctx, &model.IsTrackedRequest{MedalID: tt.args.req.MedalID})
			require.NoError(t, err)
			require.True(t, resp.Tracked)
		})
	}
}

func Test_watchlistDomain_UntrackMedal(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestWatchlistDomain()

	_, err := d.UntrackMedal(ctx, &model.UntrackMedalRequest{MedalID: testutil.Medal1.ID})
	require.Equal(t, errorx.New(errorx.NotTracked, "User is not tracking the medal"), err)

	_, err = d.TrackMedal(ctx, &model.TrackMedalRequest{MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	tracked, err := d.GetTrackedMedals(ctx, &model.GetTrackedMedalsRequest{})
	require.NoError(t, err)
	require.Len(t, tracked.Medals, 1)
	require.Equal(t, testutil.Medal1.ID, tracked.Medals[0].Medal.ID)
	require.Len(t, tracked.Medals[0].Medal.Tasks, 4)

	_, err = d.UntrackMedal(ctx, &model.UntrackMedalRequest{MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	resp, err := d.IsTracked(ctx, &model.IsTrackedRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)
	require.False(t, resp.Tracked)
}

func Test_watchlistDomain_TrackCollection(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestWatchlistDomain()

	_, err := d.TrackCollection(ctx, &model.TrackCollectionRequest{CollectionID: "invalid-collection"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found collection"), err)

	_, err = d.TrackCollection(ctx, &model.TrackCollectionRequest{CollectionID: testutil.Collection1.ID})
	require.NoError(t, err)

	_, err = d.TrackCollection(ctx, &model.TrackCollectionRequest{CollectionID: testutil.Collection1.ID})
	require.NoError(t, err)

	resp, err := d.IsTrackingCollection(ctx, &model.IsTrackingCollectionRequest{CollectionID: testutil.Collection1.ID})
	require.NoError(t, err)
	require.True(t, resp.Tracked)

	collections, err := d.GetTrackedCollections(ctx, &model.GetTrackedCollectionsRequest{})
	require.NoError(t, err)
	require.Len(t, collections.Collections, 1)
	require.Equal(t, testutil.Collection1.ID, collections.Collections[0].Collection.ID)
	require.Equal(t, testutil.User1.ID, collections.Collections[0].Collection.Owner.ID)
	require.Len(t, collections.Collections[0].Collection.Medals, 2)

	_, err = d.UntrackCollection(ctx, &model.UntrackCollectionRequest{CollectionID: testutil.Collection1.ID})
	require.NoError(t, err)

	_, err = d.UntrackCollection(ctx, &model.UntrackCollectionRequest{CollectionID: testutil.Collection1.ID})
	require.Equal(t, errorx.New(errorx.NotTracked, "User is not tracking the collection"), err)
}
