package repository_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/monocle-dev/bugtracker/internal/models"
	"github.com/monocle-dev/bugtracker/internal/repository"
	"github.com/monocle-dev/bugtracker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserStore_CreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.NewUserStore(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := &models.User{Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, store.Create(ctx, user))
	assert.NotZero(t, user.ID)

	byEmail, err := store.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = store.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.NewUserStore(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	require.NoError(t, store.Create(ctx, &models.User{Email: "a@x.com", PasswordHash: "one"}))

	err := store.Create(ctx, &models.User{Email: "a@x.com", PasswordHash: "two"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestProjectStore_CreateWithManager(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := repository.NewProjectStore(db)
	memberships := repository.NewMembershipStore(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser("owner@x.com")

	project := &models.Project{Name: "Demo", RepositoryURL: "https://github.com/o/r"}
	membership, err := store.CreateWithManager(ctx, project, owner.ID)
	require.NoError(t, err)
	assert.NotZero(t, project.ID)
	assert.Equal(t, models.RoleManager, membership.Role)

	found, err := memberships.Find(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, found.Role)
}

func TestProjectStore_CreateWithManager_RollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := repository.NewProjectStore(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser("owner@x.com")

	err := db.Callback().Create().Before("gorm:create").Register("test:fail_membership", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "project_memberships" {
			tx.AddError(errors.New("membership insert failed"))
		}
	})
	require.NoError(t, err)

	_, err = store.CreateWithManager(ctx, &models.Project{Name: "Orphan", RepositoryURL: "https://github.com/o/orphan"}, owner.ID)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Project{}).Count(&count).Error)
	assert.Zero(t, count, "project must not outlive a failed membership insert")
}

func TestProjectStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := repository.NewProjectStore(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser("owner@x.com")
	project := fixtures.CreateProject("demo", owner)

	updated, err := store.Update(ctx, project.ID, map[string]interface{}{"name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, project.RepositoryURL, updated.RepositoryURL)

	_, err = store.Update(ctx, 9999, map[string]interface{}{"name": "Nope"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMembershipStore_DuplicateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := repository.NewMembershipStore(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser("owner@x.com")
	tester := fixtures.CreateUser("tester@x.com")
	first := fixtures.CreateProject("first", owner)
	second := fixtures.CreateProject("second", owner)

	require.NoError(t, store.Create(ctx, &models.ProjectMembership{UserID: tester.ID, ProjectID: first.ID, Role: models.RoleTester}))

	err := store.Create(ctx, &models.ProjectMembership{UserID: tester.ID, ProjectID: first.ID, Role: models.RoleManager})
	assert.ErrorIs(t, err, repository.ErrConflict)

	list, err := store.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Project.Name)
	assert.Equal(t, "second", list[1].Project.Name)
	assert.Equal(t, second.ID, list[1].ProjectID)

	_, err = store.Find(ctx, tester.ID, second.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBugStore_AssignAndResolve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := repository.NewBugStore(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser("mp@x.com")
	other := fixtures.CreateUser("mp2@x.com")
	tester := fixtures.CreateUser("tst@x.com")
	project := fixtures.CreateProject("demo", manager)
	bug := fixtures.CreateBug(project, tester, "crash")

	// resolving an open bug is not allowed
	assert.ErrorIs(t, store.Resolve(ctx, bug.ID, manager.ID, "deadbeef"), repository.ErrConflict)

	require.NoError(t, store.Assign(ctx, bug.ID, manager.ID))
	assert.ErrorIs(t, store.Assign(ctx, bug.ID, other.ID), repository.ErrConflict)

	// only the assignee can resolve
	assert.ErrorIs(t, store.Resolve(ctx, bug.ID, other.ID, "cafe"), repository.ErrConflict)

	require.NoError(t, store.Resolve(ctx, bug.ID, manager.ID, "deadbeef"))
	assert.ErrorIs(t, store.Resolve(ctx, bug.ID, manager.ID, "again"), repository.ErrConflict)

	loaded, err := store.FindByID(ctx, bug.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BugStatusResolved, loaded.Status)
	require.NotNil(t, loaded.ResolvedCommit)
	assert.Equal(t, "deadbeef", *loaded.ResolvedCommit)
	require.NotNil(t, loaded.Assignee)
	assert.Equal(t, "mp@x.com", loaded.Assignee.Email)
	assert.Equal(t, "tst@x.com", loaded.Reporter.Email)
}

func TestBugStore_ConcurrentAssign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := repository.NewBugStore(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tester := fixtures.CreateUser("tst@x.com")
	managers := []models.User{
		fixtures.CreateUser("mp1@x.com"),
		fixtures.CreateUser("mp2@x.com"),
		fixtures.CreateUser("mp3@x.com"),
		fixtures.CreateUser("mp4@x.com"),
	}
	project := fixtures.CreateProject("demo", managers[0])
	bug := fixtures.CreateBug(project, tester, "race")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for _, m := range managers {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			err := store.Assign(ctx, bug.ID, userID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, repository.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(m.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, len(managers)-1, conflicts)

	reloaded := fixtures.ReloadBug(bug.ID)
	assert.Equal(t, models.BugStatusAssigned, reloaded.Status)
	assert.NotNil(t, reloaded.AssignedToUserID)
}

func TestBugStore_ListByProjects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := repository.NewBugStore(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser("mp@x.com")
	tester := fixtures.CreateUser("tst@x.com")
	first := fixtures.CreateProject("first", manager)
	second := fixtures.CreateProject("second", manager)
	third := fixtures.CreateProject("third", manager)

	fixtures.CreateBug(first, tester, "a")
	fixtures.CreateBug(second, tester, "b")
	fixtures.CreateBug(third, tester, "c")

	bugs, err := store.ListByProjects(ctx, []uint{first.ID, third.ID})
	require.NoError(t, err)
	require.Len(t, bugs, 2)
	assert.Equal(t, "a", bugs[0].Title)
	assert.Equal(t, "c", bugs[1].Title)
	assert.Nil(t, bugs[0].Assignee)

	empty, err := store.ListByProjects(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestBugStore_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.NewBugStore(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.FindByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
