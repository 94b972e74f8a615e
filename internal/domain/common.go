package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/medalboard/backend/internal/model"
	"github.com/medalboard/backend/pkg/errorx"
	"github.com/medalboard/backend/pkg/pubsub"
	"github.com/medalboard/backend/pkg/xcontext"
)

// checkLimit applies the default limit and rejects limits out of range.
func checkLimit(ctx context.Context, limit int) (int, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if limit == 0 {
		limit = apiCfg.DefaultLimit
	}

	if limit < 0 {
		return 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if limit > apiCfg.MaxLimit {
		return 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	return limit, nil
}

func checkOffset(offset int) error {
	if offset < 0 {
		return errorx.New(errorx.BadRequest, "Offset must be non-negative")
	}

	return nil
}

// publishEvent sends a committed change to the broker. A failure is logged
// and never returned because the change is already visible.
func publishEvent(ctx context.Context, publisher pubsub.Publisher, topic, key string, event any) {
	if publisher == nil {
		return
	}

	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal %s event: %v", topic, err)
		return
	}

	err = publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(key), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish %s event: %v", topic, err)
	}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(model.DefaultTimeLayout, s)
}
