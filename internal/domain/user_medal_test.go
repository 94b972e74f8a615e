package domain

import (
	"context"
	"testing"

	"github.com/medalboard/backend/internal/domain/statistic"
	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/testutil"
	"github.com/medalboard/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// lockRecordingUserMedalRepository records the database handle of every
// ownership lock. beforeLock runs once, right before the next lock.
type lockRecordingUserMedalRepository struct {
	repository.UserMedalRepository
	beforeLock func(ctx context.Context)
	lockDBs    []*gorm.DB
}

func (r *lockRecordingUserMedalRepository) GetForUpdate(
	ctx context.Context, userID, medalID string,
) (*entity.UserMedal, error) {
	if f := r.beforeLock; f != nil {
		r.beforeLock = nil
		f(ctx)
	}

	r.lockDBs = append(r.lockDBs, xcontext.DB(ctx))
	return r.UserMedalRepository.GetForUpdate(ctx, userID, medalID)
}

type createRecordingVouchRepository struct {
	repository.UserMedalVouchRepository
	createDBs []*gorm.DB
}

func (r *createRecordingVouchRepository) Create(ctx context.Context, data *entity.UserMedalVouch) error {
	r.createDBs = append(r.createDBs, xcontext.DB(ctx))
	return r.UserMedalVouchRepository.Create(ctx, data)
}

func newTestUserMedalDomain(publisher *testutil.MockPublisher) *userMedalDomain {
	userMedalRepo := repository.NewUserMedalRepository()
	return NewUserMedalDomain(
		repository.NewUserRepository(),
		repository.NewMedalRepository(),
		userMedalRepo,
		repository.NewUserMedalVouchRepository(),
		repository.NewTrackedMedalRepository(),
		publisher,
		statistic.New(userMedalRepo, nil),
	)
}

func Test_userMedalDomain_Grant(t *testing.T) {
	type args struct {
		ctx context.Context
		req *model.GrantMedalRequest
	}

	tests := []struct {
		name    string
		args    args
		wantErr error
	}{
		{
			name: "happy case",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID},
			},
		},
		{
			name: "admin grants gift only medal",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.Admin1.ID),
				req: &model.GrantMedalRequest{UserID: testutil.User2.ID, MedalID: testutil.MedalGiftOnly.ID},
			},
		},
		{
			name: "user grants gift only medal",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.MedalGiftOnly.ID},
			},
			wantErr: errorx.New(errorx.NotEarnable, "Medal Golden Heart is not earnable"),
		},
		{
			name: "user grants unavailable medal",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.MedalUnavailable.ID},
			},
			wantErr: errorx.New(errorx.NotEarnable, "Medal Retired Legend is not earnable"),
		},
		{
			name: "grant to other user",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.GrantMedalRequest{UserID: testutil.User2.ID, MedalID: testutil.Medal1.ID},
			},
			wantErr: errorx.New(errorx.PermissionDenied, "Cannot grant medal to other users"),
		},
		{
			name: "not found medal",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: "invalid-medal"},
			},
			wantErr: errorx.New(errorx.NotFound, "Not found medal"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.CreateFixtureDb(tt.args.ctx)
			publisher := &testutil.MockPublisher{}
			d := newTestUserMedalDomain(publisher)

			_, err := d.Grant(tt.args.ctx, tt.args.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.Equal(t, tt.wantErr, err)
				require.Empty(t, publisher.Topics())
				return
			}

			require.NoError(t, err)
			require.Equal(t, []string{model.MedalGrantedTopic}, publisher.Topics())

			resp, err := d.IsOwned(tt.args.ctx, &model.IsOwnedRequest{
				UserID:  tt.args.req.UserID,
				MedalID: tt.args.req.MedalID,
			})
			require.NoError(t, err)
			require.True(t, resp.Owned)
		})
	}
}

func Test_userMedalDomain_Grant_Twice(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestUserMedalDomain(&testutil.MockPublisher{})

	req := &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID}
	_, err := d.Grant(ctx, req)
	require.NoError(t, err)

	_, err = d.Grant(ctx, req)
	require.True(t, errorx.Is(err, errorx.AlreadyOwned))
	require.Equal(t, errorx.KindConflict, err.(errorx.Error).Kind())

	count, err := repository.NewUserMedalRepository().Count(ctx, repository.UserMedalFilter{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func Test_userMedalDomain_Grant_AppendsToEnd(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestUserMedalDomain(&testutil.MockPublisher{})

	for _, medalID := range []string{testutil.Medal2.ID, testutil.Medal1.ID} {
		_, err := d.Grant(ctx, &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: medalID})
		require.NoError(t, err)
	}

	resp, err := d.GetList(ctx, &model.GetUserMedalsRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.Total)
	require.Equal(t, testutil.Medal2.ID, resp.UserMedals[0].Medal.ID)
	require.Equal(t, 0, resp.UserMedals[0].SortOrder)
	require.Equal(t, testutil.Medal1.ID, resp.UserMedals[1].Medal.ID)
	require.Equal(t, 1, resp.UserMedals[1].SortOrder)
}

func Test_userMedalDomain_Grant_AfterRevokeKeepsOrderUnique(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestUserMedalDomain(&testutil.MockPublisher{})

	_, err := d.Grant(ctx, &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)
	_, err = d.Grant(ctx, &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal2.ID})
	require.NoError(t, err)

	// Two owned medals at 0 and 1, removing the first leaves a single row at 1.
	_, err = d.Revoke(ctx, &model.RevokeMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	_, err = d.Grant(ctx, &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	resp, err := d.GetList(ctx, &model.GetUserMedalsRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Len(t, resp.UserMedals, 2)
	require.Equal(t, testutil.Medal2.ID, resp.UserMedals[0].Medal.ID)
	require.Equal(t, 1, resp.UserMedals[0].SortOrder)
	require.Equal(t, testutil.Medal1.ID, resp.UserMedals[1].Medal.ID)
	require.Equal(t, 2, resp.UserMedals[1].SortOrder)
}

func Test_userMedalDomain_Reorder(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Admin1.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestUserMedalDomain(&testutil.MockPublisher{})

	medalIDs := []string{testutil.Medal1.ID, testutil.Medal2.ID, testutil.MedalGiftOnly.ID}
	for _, medalID := range medalIDs {
		_, err := d.Grant(ctx, &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: medalID})
		require.NoError(t, err)
	}

	userCtx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	_, err := d.Reorder(userCtx, &model.ReorderMedalsRequest{
		Medals: []model.MedalOrder{
			{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID, SortOrder: 2},
			{UserID: testutil.User1.ID, MedalID: testutil.Medal2.ID, SortOrder: 0},
			{UserID: testutil.User1.ID, MedalID: testutil.MedalGiftOnly.ID, SortOrder: 1},
		},
	})
	require.NoError(t, err)

	resp, err := d.GetList(userCtx, &model.GetUserMedalsRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Len(t, resp.UserMedals, 3)
	require.Equal(t, testutil.Medal2.ID, resp.UserMedals[0].Medal.ID)
	require.Equal(t, testutil.MedalGiftOnly.ID, resp.UserMedals[1].Medal.ID)
	require.Equal(t, testutil.Medal1.ID, resp.UserMedals[2].Medal.ID)

	// Another user cannot reorder.
	otherCtx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	_, err = d.Reorder(otherCtx, &model.ReorderMedalsRequest{
		Medals: []model.MedalOrder{{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID, SortOrder: 0}},
	})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Cannot reorder medals of other users"), err)

	// A medal not owned aborts the whole reorder.
	_, err = d.Reorder(userCtx, &model.ReorderMedalsRequest{
		Medals: []model.MedalOrder{
			{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID, SortOrder: 0},
			{UserID: testutil.User1.ID, MedalID: testutil.MedalUnavailable.ID, SortOrder: 1},
		},
	})
	require.True(t, errorx.Is(err, errorx.NotOwned))

	resp, err = d.GetList(userCtx, &model.GetUserMedalsRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Equal(t, testutil.Medal1.ID, resp.UserMedals[2].Medal.ID)
	require.Equal(t, 2, resp.UserMedals[2].SortOrder)
}

func Test_userMedalDomain_GetList_Filter(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestUserMedalDomain(&testutil.MockPublisher{})

	for _, medalID := range []string{testutil.Medal1.ID, testutil.Medal2.ID} {
		_, err := d.Grant(ctx, &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: medalID})
		require.NoError(t, err)
	}

	resp, err := d.GetList(ctx, &model.GetUserMedalsRequest{UserID: testutil.User1.ID, Q: "MARATHON"})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Total)
	require.Equal(t, testutil.Medal1.ID, resp.UserMedals[0].Medal.ID)

	resp, err = d.GetList(ctx, &model.GetUserMedalsRequest{UserID: testutil.User1.ID, CategoryName: "Art"})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Total)
	require.Equal(t, testutil.Medal2.ID, resp.UserMedals[0].Medal.ID)

	resp, err = d.GetList(ctx, &model.GetUserMedalsRequest{UserID: testutil.User1.ID, Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.UserMedals, 1)
	require.Equal(t, testutil.Medal2.ID, resp.UserMedals[0].Medal.ID)

	_, err = d.GetList(ctx, &model.GetUserMedalsRequest{UserID: testutil.User1.ID, Limit: 51})
	require.Equal(t, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (50)"), err)
}

func Test_userMedalDomain_Revoke_CleansVouches(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	publisher := &testutil.MockPublisher{}
	d := newTestUserMedalDomain(publisher)

	_, err := d.Grant(ctx, &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	for _, voucher := range []string{testutil.User2.ID, testutil.User3.ID} {
		_, err := d.AddVouch(xcontext.WithRequestUserID(ctx, voucher), &model.AddVouchRequest{
			UserID:  testutil.User1.ID,
			MedalID: testutil.Medal1.ID,
		})
		require.NoError(t, err)
	}

	vouches, err := d.GetVouches(ctx, &model.GetVouchesRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), vouches.Total)

	// Only the owner or an admin can revoke.
	_, err = d.Revoke(xcontext.WithRequestUserID(ctx, testutil.User2.ID), &model.RevokeMedalRequest{
		UserID:  testutil.User1.ID,
		MedalID: testutil.Medal1.ID,
	})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Cannot revoke medal of other users"), err)

	_, err = d.Revoke(ctx, &model.RevokeMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)
	require.Equal(t, []string{model.MedalGrantedTopic, model.MedalRevokedTopic}, publisher.Topics())

	vouches, err = d.GetVouches(ctx, &model.GetVouchesRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)
	require.Equal(t, int64(0), vouches.Total)
	require.Empty(t, vouches.Vouches)

	_, err = d.Revoke(ctx, &model.RevokeMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.True(t, errorx.Is(err, errorx.NotOwned))
}

func Test_userMedalDomain_Vouch(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestUserMedalDomain(&testutil.MockPublisher{})

	user2Ctx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	_, err := d.AddVouch(user2Ctx, &model.AddVouchRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.Equal(t, errorx.New(errorx.NotOwned, "User does not own the medal"), err)

	_, err = d.Grant(ctx, &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	first, err := d.AddVouch(user2Ctx, &model.AddVouchRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	// Repeated vouching is kept as another endorsement.
	_, err = d.AddVouch(user2Ctx, &model.AddVouchRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	resp, err := d.GetVouches(ctx, &model.GetVouchesRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.Total)
	require.Equal(t, testutil.User2.ID, resp.Vouches[0].VouchedBy.ID)

	_, err = d.RemoveVouch(ctx, &model.RemoveVouchRequest{ID: first.ID})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Only the voucher can remove the vouch"), err)

	_, err = d.RemoveVouch(user2Ctx, &model.RemoveVouchRequest{ID: first.ID})
	require.NoError(t, err)

	_, err = d.RemoveVouch(user2Ctx, &model.RemoveVouchRequest{ID: first.ID})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found vouch"), err)

	resp, err = d.GetVouches(ctx, &model.GetVouchesRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Total)
}

func Test_userMedalDomain_AddVouch_LocksOwnership(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	userMedalRepo := &lockRecordingUserMedalRepository{UserMedalRepository: repository.NewUserMedalRepository()}
	vouchRepo := &createRecordingVouchRepository{UserMedalVouchRepository: repository.NewUserMedalVouchRepository()}
	d := NewUserMedalDomain(
		repository.NewUserRepository(),
		repository.NewMedalRepository(),
		userMedalRepo,
		vouchRepo,
		repository.NewTrackedMedalRepository(),
		&testutil.MockPublisher{},
		statistic.New(userMedalRepo, nil),
	)

	_, err := d.Grant(ctx, &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	user2Ctx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	_, err = d.AddVouch(user2Ctx, &model.AddVouchRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	// The vouch is inserted in the transaction holding the ownership lock.
	require.Len(t, userMedalRepo.lockDBs, 1)
	require.Len(t, vouchRepo.createDBs, 1)
	require.Same(t, userMedalRepo.lockDBs[0], vouchRepo.createDBs[0])

	// The ownership is revoked right before the lock is taken.
	userMedalRepo.beforeLock = func(lockCtx context.Context) {
		_, err := d.Revoke(xcontext.WithRequestUserID(lockCtx, testutil.User1.ID), &model.RevokeMedalRequest{
			UserID:  testutil.User1.ID,
			MedalID: testutil.Medal1.ID,
		})
		require.NoError(t, err)
	}

	user3Ctx := xcontext.WithRequestUserID(ctx, testutil.User3.ID)
	_, err = d.AddVouch(user3Ctx, &model.AddVouchRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.Equal(t, errorx.New(errorx.NotOwned, "User does not own the medal"), err)
	require.Len(t, vouchRepo.createDBs, 1)

	// Revoke takes the same lock before cleaning vouches.
	_, err = d.Revoke(ctx, &model.RevokeMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	resp, err := d.GetVouches(ctx, &model.GetVouchesRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)
	require.Equal(t, int64(0), resp.Total)
}

func Test_userMedalDomain_UpdateEarnedAt(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestUserMedalDomain(&testutil.MockPublisher{})

	_, err := d.Grant(ctx, &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	_, err = d.UpdateEarnedAt(ctx, &model.UpdateEarnedAtRequest{
		UserID:   testutil.User1.ID,
		MedalID:  testutil.Medal1.ID,
		EarnedAt: "2020-01-02T03:04:05Z",
	})
	require.NoError(t, err)

	resp, err := d.Get(ctx, &model.GetUserMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)
	require.Equal(t, "2020-01-02T03:04:05Z", resp.EarnedAt)

	_, err = d.UpdateEarnedAt(ctx, &model.UpdateEarnedAtRequest{
		UserID:   testutil.User1.ID,
		MedalID:  testutil.Medal1.ID,
		EarnedAt: "yesterday",
	})
	require.Equal(t, errorx.New(errorx.BadRequest, "Invalid earned time"), err)

	_, err = d.UpdateEarnedAt(ctx, &model.UpdateEarnedAtRequest{
		UserID:   testutil.User1.ID,
		MedalID:  testutil.Medal2.ID,
		EarnedAt: "2020-01-02T03:04:05Z",
	})
	require.True(t, errorx.Is(err, errorx.NotOwned))
}

func Test_userMedalDomain_MarkTrackedAsEarned(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestUserMedalDomain(&testutil.MockPublisher{})
	trackedMedalRepo := repository.NewTrackedMedalRepository()

	_, err := d.MarkTrackedAsEarned(ctx, &model.MarkTrackedAsEarnedRequest{MedalID: testutil.Medal1.ID})
	require.True(t, errorx.Is(err, errorx.NotTracked))

	err = trackedMedalRepo.Upsert(ctx, &entity.TrackedMedal{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	_, err = d.MarkTrackedAsEarned(ctx, &model.MarkTrackedAsEarnedRequest{MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	owned, err := d.IsOwned(ctx, &model.IsOwnedRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)
	require.True(t, owned.Owned)

	tracked, err := trackedMedalRepo.Exists(ctx, testutil.User1.ID, testutil.Medal1.ID)
	require.NoError(t, err)
	require.False(t, tracked)
}

func Test_userMedalDomain_MarkTrackedAsEarned_RollbackWhenOwned(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)
	d := newTestUserMedalDomain(&testutil.MockPublisher{})
	trackedMedalRepo := repository.NewTrackedMedalRepository()

	_, err := d.Grant(ctx, &model.GrantMedalRequest{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	err = trackedMedalRepo.Upsert(ctx, &entity.TrackedMedal{UserID: testutil.User1.ID, MedalID: testutil.Medal1.ID})
	require.NoError(t, err)

	_, err = d.MarkTrackedAsEarned(ctx, &model.MarkTrackedAsEarnedRequest{MedalID: testutil.Medal1.ID})
	require.True(t, errorx.Is(err, errorx.AlreadyOwned))

	// The failed grant leaves the tracking row untouched.
	tracked, err := trackedMedalRepo.Exists(ctx, testutil.User1.ID, testutil.Medal1.ID)
	require.NoError(t, err)
	require.True(t, tracked)
}
