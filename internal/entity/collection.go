package entity

type Collection struct {
	Base
	Name        string
	Slug        string `gorm:"index"`
	Description string
	Image       string
	OwnerID     string `gorm:"index;not null"`
	Owner       User   `gorm:"foreignKey:OwnerID"`
}

type CollectionMedal struct {
	CollectionID string     `gorm:"primaryKey"`
	Collection   Collection `gorm:"foreignKey:CollectionID"`
	MedalID      string     `gorm:"primaryKey"`
	Medal        Medal      `gorm:"foreignKey:MedalID"`
	Position     int
}
