package models

import "gorm.io/gorm"

type BugStatus string

const (
	BugStatusOpen     BugStatus = "open"
	BugStatusAssigned BugStatus = "assigned"
	BugStatusResolved BugStatus = "resolved"
)

// Level is shared by severity and priority.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

type Bug struct {
	gorm.Model

	ProjectID        uint      `gorm:"not null;index"`
	ReporterID       uint      `gorm:"not null;index"`
	AssignedToUserID *uint     `gorm:"index"`
	Title            string    `gorm:"not null"`
	Description      string    `gorm:"type:text;not null"`
	Severity         Level     `gorm:"type:varchar(10);not null"`
	Priority         Level     `gorm:"type:varchar(10);not null"`
	Status           BugStatus `gorm:"type:varchar(10);not null;default:open;index"`
	ReportedCommit   string    `gorm:"not null"`
	ResolvedCommit   *string

	// Relationships
	Project  Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Reporter User    `gorm:"foreignKey:ReporterID"`
	Assignee *User   `gorm:"foreignKey:AssignedToUserID"`
}
