package entity

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/medalboard/backend/pkg/enum"
)

type GiftStatus string

var (
	GiftPending   = enum.New(GiftStatus("PENDING"))
	GiftAccepted  = enum.New(GiftStatus("ACCEPTED"))
	GiftRejected  = enum.New(GiftStatus("REJECTED"))
	GiftCancelled = enum.New(GiftStatus("CANCELLED"))
)

type GiftedMedal struct {
	ID         string `gorm:"primarykey"`
	MedalID    string `gorm:"index;not null"`
	Medal      Medal  `gorm:"foreignKey:MedalID"`
	GiftedByID string `gorm:"index;not null"`
	GiftedBy   User   `gorm:"foreignKey:GiftedByID"`
	GiftedToID string `gorm:"index;not null"`
	GiftedTo   User   `gorm:"foreignKey:GiftedToID"`
	Message    string
	Status     GiftStatus `gorm:"index"`

	// PendingKey is set only while the gift is PENDING. Its unique index keeps
	// at most one pending gift per recipient and medal.
	PendingKey sql.NullString `gorm:"unique"`

	CreatedAt  time.Time
	AcceptedAt sql.NullTime
}

func GiftPendingKey(giftedToID, medalID string) string {
	return fmt.Sprintf("%s:%s", giftedToID, medalID)
}
