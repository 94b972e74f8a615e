package entity

import "time"

type TrackedMedal struct {
	UserID    string `gorm:"primaryKey"`
	User      User   `gorm:"foreignKey:UserID"`
	MedalID   string `gorm:"primaryKey"`
	Medal     Medal  `gorm:"foreignKey:MedalID"`
	CreatedAt time.Time
}

type TrackedCollection struct {
	UserID       string     `gorm:"primaryKey"`
	User         User       `gorm:"foreignKey:UserID"`
	CollectionID string     `gorm:"primaryKey"`
	Collection   Collection `gorm:"foreignKey:CollectionID"`
	StartedAt    time.Time
}
