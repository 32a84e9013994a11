package models

import "gorm.io/gorm"

type Project struct {
	gorm.Model

	Name          string `gorm:"not null"`
	RepositoryURL string `gorm:"column:repository_url;not null"`

	// Relationships
	ProjectMemberships []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Bugs               []Bug               `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
