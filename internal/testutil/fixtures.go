package testutil

import (
	"testing"

	"github.com/monocle-dev/bugtracker/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of every fixture user.
const DefaultPassword = "password123"

type Fixtures struct {
	t    *testing.T
	db   *gorm.DB
	hash string
}

func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash fixture password: %v", err)
	}

	return &Fixtures{t: t, db: db, hash: string(hash)}
}

func (f *Fixtures) CreateUser(email string) models.User {
	f.t.Helper()

	user := models.User{Email: email, PasswordHash: f.hash}
	if err := f.db.Create(&user).Error; err != nil {
		f.t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// CreateProject creates a project with manager as its MP.
func (f *Fixtures) CreateProject(name string, manager models.User) models.Project {
	f.t.Helper()

	project := models.Project{Name: name, RepositoryURL: "https://github.com/acme/" + name}
	if err := f.db.Create(&project).Error; err != nil {
		f.t.Fatalf("create project %s: %v", name, err)
	}

	f.AddMember(project, manager, models.RoleManager)
	return project
}

func (f *Fixtures) AddMember(project models.Project, user models.User, role models.Role) models.ProjectMembership {
	f.t.Helper()

	membership := models.ProjectMembership{UserID: user.ID, ProjectID: project.ID, Role: role}
	if err := f.db.Create(&membership).Error; err != nil {
		f.t.Fatalf("add %s to project %d: %v", user.Email, project.ID, err)
	}
	return membership
}

// CreateBug inserts an open bug reported by reporter.
func (f *Fixtures) CreateBug(project models.Project, reporter models.User, title string) models.Bug {
	f.t.Helper()

	bug := models.Bug{
		ProjectID:      project.ID,
		ReporterID:     reporter.ID,
		Title:          title,
		Description:    "steps to reproduce",
		Severity:       models.LevelHigh,
		Priority:       models.LevelMedium,
		Status:         models.BugStatusOpen,
		ReportedCommit: "abc123",
	}
	if err := f.db.Create(&bug).Error; err != nil {
		f.t.Fatalf("create bug %s: %v", title, err)
	}
	return bug
}

func (f *Fixtures) ReloadBug(id uint) models.Bug {
	f.t.Helper()

	var bug models.Bug
	if err := f.db.First(&bug, id).Error; err != nil {
		f.t.Fatalf("reload bug %d: %v", id, err)
	}
	return bug
}
