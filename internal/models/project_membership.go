package models

import "gorm.io/gorm"

// Role is a user's permission level inside one project.
type Role string

const (
	RoleManager Role = "MP"
	RoleTester  Role = "TST"
)

func (r Role) Valid() bool {
	return r == RoleManager || r == RoleTester
}

type ProjectMembership struct {
	gorm.Model

	UserID    uint `gorm:"not null;uniqueIndex:idx_user_project"`
	ProjectID uint `gorm:"not null;uniqueIndex:idx_user_project"`
	Role      Role `gorm:"type:varchar(3);not null"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
