package entity

import "time"

type Follow struct {
	FollowerID  string    `gorm:"primaryKey"`
	Follower    User      `gorm:"foreignKey:FollowerID"`
	FollowingID string    `gorm:"primaryKey;index:idx_follows_following_created,priority:1"`
	Following   User      `gorm:"foreignKey:FollowingID"`
	CreatedAt   time.Time `gorm:"index:idx_follows_following_created,priority:2"`
}
