package entity

import (
	"database/sql"
	"time"
)

type UserMedal struct {
	UserID  string `gorm:"primaryKey"`
	User    User   `gorm:"foreignKey:UserID"`
	MedalID string `gorm:"primaryKey"`
	Medal   Medal  `gorm:"foreignKey:MedalID"`

	EarnedAt   time.Time
	SortOrder  int
	GiftedByID sql.NullString
	GiftedBy   User `gorm:"foreignKey:GiftedByID"`
}

// UserMedalVouch is an endorsement of the ownership (UserID, MedalID) by
// VouchedByID. The same endorser may vouch more than once.
type UserMedalVouch struct {
	ID          string `gorm:"primarykey"`
	UserID      string `gorm:"index:idx_user_medal_vouches_owner"`
	MedalID     string `gorm:"index:idx_user_medal_vouches_owner"`
	VouchedByID string `gorm:"index"`
	VouchedBy   User   `gorm:"foreignKey:VouchedByID"`
	CreatedAt   time.Time
}

type UserTask struct {
	UserID      string `gorm:"primaryKey"`
	User        User   `gorm:"foreignKey:UserID"`
	TaskID      string `gorm:"primaryKey"`
	Task        Task   `gorm:"foreignKey:TaskID"`
	CompletedAt time.Time
}
