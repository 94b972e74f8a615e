package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medalboard/backend/internal/common"
	"github.com/medalboard/backend/internal/domain/statistic"
	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/internal/repository"
	"github.com/medalboard/backend/pkg/enum"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/pubsub"
	"github.com/medalboard/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GiftDomain interface {
	Send(context.Context, *model.SendGiftRequest) (*model.SendGiftResponse, error)
	Accept(context.Context, *model.AcceptGiftRequest) (*model.AcceptGiftResponse, error)
	Reject(context.Context, *model.RejectGiftRequest) (*model.RejectGiftResponse, error)
	Cancel(context.Context, *model.CancelGiftRequest) (*model.CancelGiftResponse, error)
	GetReceived(context.Context, *model.GetReceivedGiftsRequest) (*model.GetReceivedGiftsResponse, error)
	GetSent(context.Context, *model.GetSentGiftsRequest) (*model.GetSentGiftsResponse, error)
	Audit(context.Context, *model.AuditGiftsRequest) (*model.AuditGiftsResponse, error)
}

type giftDomain struct {
	giftRepo           repository.GiftedMedalRepository
	userRepo           repository.UserRepository
	medalRepo          repository.MedalRepository
	userMedalRepo      repository.UserMedalRepository
	publisher          pubsub.Publisher
	popularity         statistic.Popularity
	globalRoleVerifier *common.GlobalRoleVerifier
}

func NewGiftDomain(
	giftRepo repository.GiftedMedalRepository,
	userRepo repository.UserRepository,
	medalRepo repository.MedalRepository,
	userMedalRepo repository.UserMedalRepository,
	publisher pubsub.Publisher,
	popularity statistic.Popularity,
) *giftDomain {
	return &giftDomain{
		giftRepo:           giftRepo,
		userRepo:           userRepo,
		medalRepo:          medalRepo,
		userMedalRepo:      userMedalRepo,
		publisher:          publisher,
		popularity:         popularity,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
	}
}

func (d *giftDomain) Send(
	ctx context.Context, req *model.SendGiftRequest,
) (*model.SendGiftResponse, error) {
	requestUserID := xcontext.RequestUserID(ctx)
	if req.GiftedToID == requestUserID {
		return nil, errorx.New(errorx.SelfGift, "Cannot gift a medal to yourself")
	}

	if _, err := d.userRepo.GetByID(ctx, req.GiftedToID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found recipient")
		}

		xcontext.Logger(ctx).Errorf("Cannot get recipient: %v", err)
		return nil, errorx.Unknown
	}

	medal, err := d.medalRepo.GetByID(ctx, req.MedalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot get medal: %v", err)
		return nil, errorx.Unknown
	}

	if medal.Status == entity.MedalUnavailable {
		return nil, errorx.New(errorx.Unavailable, "Medal %s is unavailable", medal.Name)
	}

	_, err = d.giftRepo.GetPending(ctx, req.GiftedToID, req.MedalID)
	if err == nil {
		return nil, errorx.New(errorx.DuplicateGift, "The recipient already has a pending gift of this medal")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get pending gift: %v", err)
		return nil, errorx.Unknown
	}

	gift := &entity.GiftedMedal{
		ID:         uuid.NewString(),
		MedalID:    req.MedalID,
		GiftedByID: requestUserID,
		GiftedToID: req.GiftedToID,
		Message:    req.Message,
		Status:     entity.GiftPending,
		PendingKey: sql.NullString{
			String: entity.GiftPendingKey(req.GiftedToID, req.MedalID),
			Valid:  true,
		},
	}

	if err := d.giftRepo.Create(ctx, gift); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errorx.New(errorx.DuplicateGift, "The recipient already has a pending gift of this medal")
		}

		xcontext.Logger(ctx).Errorf("Cannot create gift: %v", err)
		return nil, errorx.Unknown
	}

	publishEvent(ctx, d.publisher, model.GiftSentTopic, gift.ID, giftEvent(gift, entity.GiftPending))

	return &model.SendGiftResponse{ID: gift.ID}, nil
}

func (d *giftDomain) Accept(
	ctx context.Context, req *model.AcceptGiftRequest,
) (*model.AcceptGiftResponse, error) {
	gift, err := d.getPendingGift(ctx, req.ID, true, "accept")
	if err != nil {
		return nil, err
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	now := time.Now()
	if err := d.resolve(ctx, gift.ID, entity.GiftAccepted, sql.NullTime{Time: now, Valid: true}); err != nil {
		return nil, err
	}

	sortOrder, err := d.userMedalRepo.NextSortOrder(ctx, gift.GiftedToID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get next sort order: %v", err)
		return nil, errorx.Unknown
	}

	// The recipient may have earned the medal meanwhile, ownership is created
	// at most once.
	created, err := d.userMedalRepo.CreateIfNotExists(ctx, &entity.UserMedal{
		UserID:     gift.GiftedToID,
		MedalID:    gift.MedalID,
		EarnedAt:   now,
		SortOrder:  sortOrder,
		GiftedByID: sql.NullString{String: gift.GiftedByID, Valid: true},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user medal: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	publishEvent(ctx, d.publisher, model.GiftAcceptedTopic, gift.ID, giftEvent(gift, entity.GiftAccepted))
	if created {
		d.popularity.Change(ctx, gift.MedalID, 1)
		publishEvent(ctx, d.publisher, model.MedalGrantedTopic, gift.GiftedToID, &model.OwnershipEvent{
			UserID:     gift.GiftedToID,
			MedalID:    gift.MedalID,
			GiftedByID: gift.GiftedByID,
		})
	}

	return &model.AcceptGiftResponse{}, nil
}

func (d *giftDomain) Reject(
	ctx context.Context, req *model.RejectGiftRequest,
) (*model.RejectGiftResponse, error) {
	gift, err := d.getPendingGift(ctx, req.ID, true, "reject")
	if err != nil {
		return nil, err
	}

	if err := d.resolve(ctx, gift.ID, entity.GiftRejected, sql.NullTime{}); err != nil {
		return nil, err
	}

	publishEvent(ctx, d.publisher, model.GiftRejectedTopic, gift.ID, giftEvent(gift, entity.GiftRejected))

	return &model.RejectGiftResponse{}, nil
}

func (d *giftDomain) Cancel(
	ctx context.Context, req *model.CancelGiftRequest,
) (*model.CancelGiftResponse, error) {
	gift, err := d.getPendingGift(ctx, req.ID, false, "cancel")
	if err != nil {
		return nil, err
	}

	if err := d.resolve(ctx, gift.ID, entity.GiftCancelled, sql.NullTime{}); err != nil {
		return nil, err
	}

	publishEvent(ctx, d.publisher, model.GiftCancelledTopic, gift.ID, giftEvent(gift, entity.GiftCancelled))

	return &model.CancelGiftResponse{}, nil
}

func (d *giftDomain) GetReceived(
	ctx context.Context, req *model.GetReceivedGiftsRequest,
) (*model.GetReceivedGiftsResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	gifts, err := d.getList(ctx, repository.GiftFilter{GiftedToID: userID}, req.Status)
	if err != nil {
		return nil, err
	}

	return &model.GetReceivedGiftsResponse{Gifts: gifts}, nil
}

func (d *giftDomain) GetSent(
	ctx context.Context, req *model.GetSentGiftsRequest,
) (*model.GetSentGiftsResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	gifts, err := d.getList(ctx, repository.GiftFilter{GiftedByID: userID}, req.Status)
	if err != nil {
		return nil, err
	}

	return &model.GetSentGiftsResponse{Gifts: gifts}, nil
}

func (d *giftDomain) getList(ctx context.Context, filter repository.GiftFilter, status string) ([]model.Gift, error) {
	if status != "" {
		var err error
		filter.Status, err = enum.ToEnum[entity.GiftStatus](status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid gift status")
		}
	}

	gifts, err := d.giftRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get gift list: %v", err)
		return nil, errorx.Unknown
	}

	clientGifts := []model.Gift{}
	for i := range gifts {
		clientGifts = append(clientGifts, convertGift(&gifts[i]))
	}

	return clientGifts, nil
}

func (d *giftDomain) Audit(
	ctx context.Context, req *model.AuditGiftsRequest,
) (*model.AuditGiftsResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GlobalAdminRoles...); err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Only admin can audit gifts")
	}

	filter := repository.GiftAuditFilter{Username: req.Username}

	var err error
	if req.From != "" {
		filter.From, err = parseTime(req.From)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid from time")
		}
	}

	if req.To != "" {
		filter.To, err = parseTime(req.To)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid to time")
		}
	}

	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, errorx.New(errorx.BadRequest, "From time must be before to time")
	}

	switch req.Sort {
	case "", "desc":
	case "asc":
		filter.Asc = true
	default:
		return nil, errorx.New(errorx.BadRequest, "Sort must be asc or desc")
	}

	gifts, err := d.giftRepo.Audit(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot audit gifts: %v", err)
		return nil, errorx.Unknown
	}

	clientGifts := []model.Gift{}
	for i := range gifts {
		clientGifts = append(clientGifts, convertGift(&gifts[i]))
	}

	return &model.AuditGiftsResponse{Gifts: clientGifts}, nil
}

// getPendingGift loads the gift and checks that the requester is the expected
// party before revealing its status.
func (d *giftDomain) getPendingGift(
	ctx context.Context, id string, byRecipient bool, action string,
) (*entity.GiftedMedal, error) {
	gift, err := d.giftRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found gift")
		}

		xcontext.Logger(ctx).Errorf("Cannot get gift: %v", err)
		return nil, errorx.Unknown
	}

	party, partyName := gift.GiftedByID, "sender"
	if byRecipient {
		party, partyName = gift.GiftedToID, "recipient"
	}

	if party != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Only the %s can %s the gift", partyName, action)
	}

	if gift.Status != entity.GiftPending {
		return nil, errorx.New(errorx.NotPending, "Gift is already %s", gift.Status)
	}

	return gift, nil
}

func (d *giftDomain) resolve(
	ctx context.Context, id string, status entity.GiftStatus, acceptedAt sql.NullTime,
) error {
	if err := d.giftRepo.Resolve(ctx, id, status, acceptedAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotPending, "Gift is not pending")
		}

		xcontext.Logger(ctx).Errorf("Cannot resolve gift: %v", err)
		return errorx.Unknown
	}

	return nil
}

func giftEvent(gift *entity.GiftedMedal, status entity.GiftStatus) *model.GiftEvent {
	return &model.GiftEvent{
		GiftID:     gift.ID,
		MedalID:    gift.MedalID,
		GiftedByID: gift.GiftedByID,
		GiftedToID: gift.GiftedToID,
		Status:     string(status),
	}
}
