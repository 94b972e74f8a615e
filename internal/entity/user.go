package entity

import "github.com/medalboard/backend/pkg/enum"

type GlobalRole string

var (
	RoleUser  = enum.New(GlobalRole("USER"))
	RoleAdmin = enum.New(GlobalRole("ADMIN"))
)

var GlobalAdminRoles = []GlobalRole{RoleAdmin}

type User struct {
	Base
	Username string `gorm:"unique;size:30"`
	Name     string
	Email    string `gorm:"unique"`
	Image    string
	Role     GlobalRole `gorm:"default:USER"`
}
