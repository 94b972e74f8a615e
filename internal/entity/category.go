package entity

type Category struct {
	Base
	Name string `gorm:"unique"`
}

type MedalCategory struct {
	MedalID    string   `gorm:"primaryKey"`
	Medal      Medal    `gorm:"foreignKey:MedalID"`
	CategoryID string   `gorm:"primaryKey"`
	Category   Category `gorm:"foreignKey:CategoryID"`
}
