package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	// Relationships
	ProjectMemberships []ProjectMembership `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ReportedBugs       []Bug               `gorm:"foreignKey:ReporterID"`
	AssignedBugs       []Bug               `gorm:"foreignKey:AssignedToUserID"`
}
