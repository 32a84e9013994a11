package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/monocle-dev/bugtracker/internal/apperr"
	"github.com/monocle-dev/bugtracker/internal/auth"
	"github.com/monocle-dev/bugtracker/internal/repository"
	"github.com/monocle-dev/bugtracker/internal/services"
	"github.com/monocle-dev/bugtracker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type publishedEvent struct {
	ProjectID uint
	Event     string
	BugID     uint
}

type recordingEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recordingEvents) Publish(projectID uint, event string, bugID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{projectID, event, bugID})
}

func (r *recordingEvents) All() []publishedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]publishedEvent(nil), r.events...)
}

type env struct {
	db       *gorm.DB
	fixtures *testutil.Fixtures
	auth     *services.AuthService
	projects *services.ProjectService
	bugs     *services.BugService
	events   *recordingEvents
	tokens   *auth.Manager
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.SetupTestDB(t)
	users := repository.NewUserStore(db)
	projects := repository.NewProjectStore(db)
	memberships := repository.NewMembershipStore(db)
	bugs := repository.NewBugStore(db)

	tokens, err := auth.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	events := &recordingEvents{}

	return &env{
		db:       db,
		fixtures: testutil.NewFixtures(t, db),
		auth:     services.NewAuthService(users, tokens),
		projects: services.NewProjectService(projects, memberships, users),
		bugs:     services.NewBugService(bugs, memberships, events),
		events:   events,
		tokens:   tokens,
	}
}

func assertKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, want, apperr.KindOf(err), "error: %v", err)
	}
}
