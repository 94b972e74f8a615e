package domain

import (
	"context"
	"sync"
	"testing"

	"github.com/medalboard/backend/internal/domain/statistic"
	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/testutil"
	"github.com/medalboard/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestGiftDomain(publisher *testutil.MockPublisher) *giftDomain {
	userMedalRepo := repository.NewUserMedalRepository()
	return NewGiftDomain(
		repository.NewGiftedMedalRepository(),
		repository.NewUserRepository(),
		repository.NewMedalRepository(),
		userMedalRepo,
		publisher,
		statistic.New(userMedalRepo, nil),
	)
}

func sendTestGift(t *testing.T, ctx context.Context, d *giftDomain, from, to, medalID string) string {
	resp, err := d.Send(xcontext.WithRequestUserID(ctx, from), &model.SendGiftRequest{
		MedalID:    medalID,
		GiftedToID: to,
		Message:    "for you",
	})
	require.NoError(t, err)
	return resp.ID
}

func Test_giftDomain_Send(t *testing.T) {
	type args struct {
		ctx context.Context
		req *model.SendGiftRequest
	}

	tests := []struct {
		name    string
		args    args
		setup   func(ctx context.Context, d *giftDomain)
		wantErr error
	}{
		{
			name: "happy case",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.SendGiftRequest{MedalID: testutil.MedalGiftOnly.ID, GiftedToID: testutil.User2.ID},
			},
		},
		{
			name: "self gift",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.SendGiftRequest{MedalID: testutil.MedalGiftOnly.ID, GiftedToID: testutil.User1.ID},
			},
			wantErr: errorx.New(errorx.SelfGift, "Cannot gift a medal to yourself"),
		},
		{
			name: "not found recipient",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.SendGiftRequest{MedalID: testutil.MedalGiftOnly.ID, GiftedToID: "invalid-user"},
			},
			wantErr: errorx.New(errorx.NotFound, "Not found recipient"),
		},
		{
			name: "unavailable medal",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.SendGiftRequest{MedalID: testutil.MedalUnavailable.ID, GiftedToID: testutil.User2.ID},
			},
			wantErr: errorx.New(errorx.Unavailable, "Medal Retired Legend is unavailable"),
		},
		{
			name: "duplicate pending gift from another sender",
			args: args{
				ctx: testutil.MockContextWithUserID(testutil.User1.ID),
				req: &model.SendGiftRequest{MedalID: testutil.MedalGiftOnly.ID, GiftedToID: testutil.User2.ID},
			},
			setup: func(ctx context.Context, d *giftDomain) {
				_, err := d.Send(xcontext.WithRequestUserID(ctx, testutil.User3.ID), &model.SendGiftRequest{
					MedalID:    testutil.MedalGiftOnly.ID,
					GiftedToID: testutil.User2.ID,
				})
				if err != nil {
					panic(err)
				}
			},
			wantErr: errorx.New(errorx.DuplicateGift, "The recipient already has a pending gift of this medal"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.CreateFixtureDb(tt.args.ctx)
			d := newTestGiftDomain(&testutil.MockPublisher{})
			if tt.setup != nil {
				tt.setup(tt.args.ctx, d)
			}

			resp, err := d.Send(tt.args.ctx, tt.args.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.Equal(t, tt.wantErr, err)
				return
			}

			require.NoError(t, err)

			gift, err := repository.NewGiftedMedalRepository().GetByID(tt.args.ctx, resp.ID)
			require.NoError(t, err)
			require.Equal(t, entity.GiftPending, gift.Status)
			require.Equal(t, testutil.User1.ID, gift.GiftedByID)
		})
	}
}

func Test_giftDomain_Accept(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	publisher := &testutil.MockPublisher{}
	d := newTestGiftDomain(publisher)
	giftID := sendTestGift(t, ctx, d, testutil.User1.ID, testutil.User2.ID, testutil.MedalGiftOnly.ID)

	// Only the recipient can accept.
	_, err := d.Accept(xcontext.WithRequestUserID(ctx, testutil.User1.ID), &model.AcceptGiftRequest{ID: giftID})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Only the recipient can accept the gift"), err)

	recipientCtx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	_, err = d.Accept(recipientCtx, &model.AcceptGiftRequest{ID: giftID})
	require.NoError(t, err)

	_, err = d.Accept(recipientCtx, &model.AcceptGiftRequest{ID: giftID})
	require.Equal(t, errorx.New(errorx.NotPending, "Gift is already ACCEPTED"), err)

	// Outsiders learn nothing about a resolved gift.
	_, err = d.Accept(xcontext.WithRequestUserID(ctx, testutil.User3.ID), &model.AcceptGiftRequest{ID: giftID})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Only the recipient can accept the gift"), err)

	userMedal, err := repository.NewUserMedalRepository().Get(ctx, testutil.User2.ID, testutil.MedalGiftOnly.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.User1.ID, userMedal.GiftedByID.String)
	require.Equal(t, 0, userMedal.SortOrder)

	gift, err := repository.NewGiftedMedalRepository().GetByID(ctx, giftID)
	require.NoError(t, err)
	require.Equal(t, entity.GiftAccepted, gift.Status)
	require.True(t, gift.AcceptedAt.Valid)
	require.False(t, gift.PendingKey.Valid)

	require.Equal(t, []string{
		model.GiftSentTopic,
		model.GiftAcceptedTopic,
		model.MedalGrantedTopic,
	}, publisher.Topics())

	// The pair is free again once the gift is resolved.
	sendTestGift(t, ctx, d, testutil.User3.ID, testutil.User2.ID, testutil.MedalGiftOnly.ID)
}

func Test_giftDomain_Accept_AlreadyOwned(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	publisher := &testutil.MockPublisher{}
	d := newTestGiftDomain(publisher)
	giftID := sendTestGift(t, ctx, d, testutil.User1.ID, testutil.User2.ID, testutil.Medal1.ID)

	// The recipient earns the medal before accepting.
	_, err := newTestUserMedalDomain(&testutil.MockPublisher{}).Grant(
		xcontext.WithRequestUserID(ctx, testutil.User2.ID),
		&model.GrantMedalRequest{UserID: testutil.User2.ID, MedalID: testutil.Medal1.ID},
	)
	require.NoError(t, err)

	_, err = d.Accept(xcontext.WithRequestUserID(ctx, testutil.User2.ID), &model.AcceptGiftRequest{ID: giftID})
	require.NoError(t, err)

	count, err := repository.NewUserMedalRepository().Count(ctx, repository.UserMedalFilter{UserID: testutil.User2.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	userMedal, err := repository.NewUserMedalRepository().Get(ctx, testutil.User2.ID, testutil.Medal1.ID)
	require.NoError(t, err)
	require.False(t, userMedal.GiftedByID.Valid)

	require.Equal(t, []string{model.GiftSentTopic, model.GiftAcceptedTopic}, publisher.Topics())
}

func Test_giftDomain_Accept_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestGiftDomain(&testutil.MockPublisher{})
	giftID := sendTestGift(t, ctx, d, testutil.User1.ID, testutil.User2.ID, testutil.MedalGiftOnly.ID)

	recipientCtx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)

	const n = 5
	errs := make([]error, n)
	wg := sync.WaitGroup{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.Accept(recipientCtx, &model.AcceptGiftRequest{ID: giftID})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		require.True(t, errorx.Is(err, errorx.NotPending), err)
	}
	require.Equal(t, 1, succeeded)

	count, err := repository.NewUserMedalRepository().Count(ctx, repository.UserMedalFilter{UserID: testutil.User2.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func Test_giftDomain_RejectAndCancel(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	publisher := &testutil.MockPublisher{}
	d := newTestGiftDomain(publisher)
	senderCtx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	recipientCtx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)

	giftID := sendTestGift(t, ctx, d, testutil.User1.ID, testutil.User2.ID, testutil.MedalGiftOnly.ID)

	_, err := d.Reject(senderCtx, &model.RejectGiftRequest{ID: giftID})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Only the recipient can reject the gift"), err)

	_, err = d.Reject(recipientCtx, &model.RejectGiftRequest{ID: giftID})
	require.NoError(t, err)

	_, err = d.Cancel(senderCtx, &model.CancelGiftRequest{ID: giftID})
	require.Equal(t, errorx.New(errorx.NotPending, "Gift is already REJECTED"), err)

	_, err = d.Cancel(recipientCtx, &model.CancelGiftRequest{ID: giftID})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Only the sender can cancel the gift"), err)

	owned, err := repository.NewUserMedalRepository().Exists(ctx, testutil.User2.ID, testutil.MedalGiftOnly.ID)
	require.NoError(t, err)
	require.False(t, owned)

	giftID = sendTestGift(t, ctx, d, testutil.User1.ID, testutil.User2.ID, testutil.MedalGiftOnly.ID)

	_, err = d.Cancel(recipientCtx, &model.CancelGiftRequest{ID: giftID})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Only the sender can cancel the gift"), err)

	_, err = d.Cancel(senderCtx, &model.CancelGiftRequest{ID: giftID})
	require.NoError(t, err)

	_, err = d.Accept(recipientCtx, &model.AcceptGiftRequest{ID: giftID})
	require.Equal(t, errorx.New(errorx.NotPending, "Gift is already CANCELLED"), err)

	_, err = d.Accept(recipientCtx, &model.AcceptGiftRequest{ID: "invalid-gift"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found gift"), err)

	require.Equal(t, []string{
		model.GiftSentTopic,
		model.GiftRejectedTopic,
		model.GiftSentTopic,
		model.GiftCancelledTopic,
	}, publisher.Topics())
}

func Test_giftDomain_GetList(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestGiftDomain(&testutil.MockPublisher{})

	sendTestGift(t, ctx, d, testutil.User1.ID, testutil.User2.ID, testutil.MedalGiftOnly.ID)
	rejectedID := sendTestGift(t, ctx, d, testutil.User1.ID, testutil.User2.ID, testutil.Medal1.ID)
	sendTestGift(t, ctx, d, testutil.User3.ID, testutil.User1.ID, testutil.Medal2.ID)

	_, err := d.Reject(xcontext.WithRequestUserID(ctx, testutil.User2.ID), &model.RejectGiftRequest{ID: rejectedID})
	require.NoError(t, err)

	user2Ctx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	received, err := d.GetReceived(user2Ctx, &model.GetReceivedGiftsRequest{})
	require.NoError(t, err)
	require.Len(t, received.Gifts, 2)

	received, err = d.GetReceived(user2Ctx, &model.GetReceivedGiftsRequest{Status: string(entity.GiftPending)})
	require.NoError(t, err)
	require.Len(t, received.Gifts, 1)
	require.Equal(t, testutil.MedalGiftOnly.ID, received.Gifts[0].Medal.ID)
	require.Equal(t, testutil.User1.ID, received.Gifts[0].GiftedBy.ID)

	sent, err := d.GetSent(user2Ctx, &model.GetSentGiftsRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Len(t, sent.Gifts, 2)

	_, err = d.GetSent(user2Ctx, &model.GetSentGiftsRequest{Status: "DONE"})
	require.Equal(t, errorx.New(errorx.BadRequest, "Invalid gift status"), err)
}

func Test_giftDomain_Audit(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestGiftDomain(&testutil.MockPublisher{})

	first := sendTestGift(t, ctx, d, testutil.User1.ID, testutil.User2.ID, testutil.MedalGiftOnly.ID)
	second := sendTestGift(t, ctx, d, testutil.User3.ID, testutil.User1.ID, testutil.Medal2.ID)

	_, err := d.Audit(xcontext.WithRequestUserID(ctx, testutil.User1.ID), &model.AuditGiftsRequest{})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Only admin can audit gifts"), err)

	adminCtx := xcontext.WithRequestUserID(ctx, testutil.Admin1.ID)
	resp, err := d.Audit(adminCtx, &model.AuditGiftsRequest{Sort: "asc"})
	require.NoError(t, err)
	require.Len(t, resp.Gifts, 2)
	require.Equal(t, first, resp.Gifts[0].ID)
	require.Equal(t, second, resp.Gifts[1].ID)

	resp, err = d.Audit(adminCtx, &model.AuditGiftsRequest{Username: "USER3"})
	require.NoError(t, err)
	require.Len(t, resp.Gifts, 1)
	require.Equal(t, second, resp.Gifts[0].ID)

	resp, err = d.Audit(adminCtx, &model.AuditGiftsRequest{From: "2000-01-01T00:00:00Z", To: "2000-12-31T00:00:00Z"})
	require.NoError(t, err)
	require.Empty(t, resp.Gifts)

	_, err = d.Audit(adminCtx, &model.AuditGiftsRequest{Sort: "random"})
	require.Equal(t, errorx.New(errorx.BadRequest, "Sort must be asc or desc"), err)
}
