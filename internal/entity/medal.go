package entity

import (
	"github.com/medalboard/backend/pkg/enum"
	"github.com/shopspring/decimal"
)

type MedalStatus string

var (
	MedalEarnable    = enum.New(MedalStatus("EARNABLE"))
	MedalGiftOnly    = enum.New(MedalStatus("GIFT_ONLY"))
	MedalUnavailable = enum.New(MedalStatus("UNAVAILABLE"))
)

// AllowTasks reports whether a medal in this status may own tasks.
func (s MedalStatus) AllowTasks() bool {
	return s == MedalEarnable
}

type Medal struct {
	Base
	Name        string
	Description string
	Image       string
	Status      MedalStatus         `gorm:"default:EARNABLE"`
	Price       decimal.NullDecimal `gorm:"type:decimal(20,2)"`

	Tasks []Task `gorm:"foreignKey:MedalID"`
}

// Task belongs to exactly one medal. Tasks removed from a medal are soft
// deleted so that completion records keep their reference.
type Task struct {
	Base
	Title       string
	Description string
	MedalID     string `gorm:"index;not null"`
	Medal       Medal  `gorm:"foreignKey:MedalID"`
}
