package migration

import (
	"context"

	"github.com/medalboard/backend/internal/entity"
	"github.com/medalboard/backend/pkg/xcontext"
)

// migrate0001 backfills the pending key of gifts created before the column
// existed.
func migrate0001(ctx context.Context) error {
	migrator := xcontext.DB(ctx).Migrator()
	if !migrator.HasColumn(&entity.GiftedMedal{}, "pending_key") {
		if err := migrator.AddColumn(&entity.GiftedMedal{}, "PendingKey"); err != nil {
			return err
		}
	}

	var gifts []entity.GiftedMedal
	err := xcontext.DB(ctx).
		Where("status=? AND pending_key IS NULL", entity.GiftPending).
		Order("created_at ASC").
		Find(&gifts).Error
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, gift := range gifts {
		key := entity.GiftPendingKey(gift.GiftedToID, gift.MedalID)
		if seen[key] {
			// Keep the oldest pending gift for the pair.
			err := xcontext.DB(ctx).
				Model(&entity.GiftedMedal{}).
				Where("id=?", gift.ID).
				Update("status", entity.GiftCancelled).Error
			if err != nil {
				return err
			}
			continue
		}

		seen[key] = true
		err := xcontext.DB(ctx).
			Model(&entity.GiftedMedal{}).
			Where("id=?", gift.ID).
			Update("pending_key", key).Error
		if err != nil {
			return err
		}
	}

	return nil
}
