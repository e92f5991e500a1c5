package repositories

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alimgiray/crewledger/internal/models"
	"github.com/alimgiray/crewledger/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenAndMigrate(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, repo *UserRepository, email string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: email}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func createWorker(t *testing.T, repo *WorkerRepository, owner uuid.UUID, name string) *models.Worker {
	t.Helper()
	worker := &models.Worker{
		OwnerID:     owner,
		Name:        name,
		Email:       name + "@example.com",
		PhoneNumber: "+90 555 000 0000",
		GitHubLink:  "https://github.com/" + name,
		IsActive:    true,
	}
	require.NoError(t, repo.Create(context.Background(), worker))
	return worker
}

func TestUserRepositoryOTPLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	user := createUser(t, repo, "owner@example.com")

	t.Run("Lookup by email and id", func(t *testing.T) {
		byEmail, err := repo.GetByEmail(ctx, "owner@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		byID, err := repo.GetByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", byID.Email)
		assert.False(t, byID.HasPendingOTP())

		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("Set, count and clear", func(t *testing.T) {
		expiresAt := time.Now().Add(5 * time.Minute)
		require.NoError(t, repo.SetOTP(ctx, user.ID.String(), "hash", expiresAt))

		otpHash, attempts, err := repo.ClaimOTPAttempt(ctx, user.ID.String(), 3)
		require.NoError(t, err)
		assert.Equal(t, "hash", otpHash)
		assert.Equal(t, 1, attempts)
		_, attempts, err = repo.ClaimOTPAttempt(ctx, user.ID.String(), 3)
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)

		stored, err := repo.GetByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.True(t, stored.HasPendingOTP())
		assert.Equal(t, 2, stored.OTPAttempts)
		require.NotNil(t, stored.OTPExpiresAt)
		assert.WithinDuration(t, expiresAt, *stored.OTPExpiresAt, time.Second)

		// a new code resets the counter
		require.NoError(t, repo.SetOTP(ctx, user.ID.String(), "hash2", expiresAt))
		stored, err = repo.GetByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, 0, stored.OTPAttempts)

		require.NoError(t, repo.ClearOTP(ctx, user.ID.String()))
		stored, err = repo.GetByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.False(t, stored.HasPendingOTP())
		assert.Nil(t, stored.OTPExpiresAt)
	})

	t.Run("Attempts stop at the limit", func(t *testing.T) {
		require.NoError(t, repo.SetOTP(ctx, user.ID.String(), "hash", time.Now().Add(5*time.Minute)))

		for i := 1; i <= 2; i++ {
			_, attempts, err := repo.ClaimOTPAttempt(ctx, user.ID.String(), 2)
			require.NoError(t, err)
			assert.Equal(t, i, attempts)
		}

		_, _, err := repo.ClaimOTPAttempt(ctx, user.ID.String(), 2)
		assert.ErrorIs(t, err, sql.ErrNoRows)

		stored, err := repo.GetByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, 2, stored.OTPAttempts)
	})

	t.Run("Concurrent claims never exceed the limit", func(t *testing.T) {
		require.NoError(t, repo.SetOTP(ctx, user.ID.String(), "hash", time.Now().Add(5*time.Minute)))

		var (
			wg      sync.WaitGroup
			claimed atomic.Int32
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, _, err := repo.ClaimOTPAttempt(ctx, user.ID.String(), 3); err == nil {
					claimed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(3), claimed.Load())
	})

	t.Run("No pending OTP", func(t *testing.T) {
		require.NoError(t, repo.ClearOTP(ctx, user.ID.String()))
		_, _, err := repo.ClaimOTPAttempt(ctx, user.ID.String(), 3)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("Unknown user", func(t *testing.T) {
		err := repo.ClearOTP(ctx, uuid.NewString())
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestUserRepositoryClearExpiredOTPs(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	now := time.Now().UTC()

	expired := createUser(t, repo, "expired@example.com")
	fresh := createUser(t, repo, "fresh@example.com")
	createUser(t, repo, "idle@example.com")

	require.NoError(t, repo.SetOTP(ctx, expired.ID.String(), "hash", now.Add(-time.Minute)))
	require.NoError(t, repo.SetOTP(ctx, fresh.ID.String(), "hash", now.Add(time.Minute)))

	cleared, err := repo.ClearExpiredOTPs(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	stored, err := repo.GetByID(ctx, fresh.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.HasPendingOTP())

	stored, err = repo.GetByID(ctx, expired.ID.String())
	require.NoError(t, err)
	assert.False(t, stored.HasPendingOTP())
}

func TestWorkerRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewWorkerRepository(db)

	owner := createUser(t, users, "owner@example.com")
	other := createUser(t, users, "other@example.com")

	alice := createWorker(t, repo, owner.ID, "alice")
	bob := createWorker(t, repo, owner.ID, "bob")
	createWorker(t, repo, other.ID, "carol")

	t.Run("Create assigns id and timestamps", func(t *testing.T) {
		assert.NotEqual(t, uuid.Nil, alice.ID)
		assert.False(t, alice.CreatedAt.IsZero())
	})

	t.Run("Filter by status", func(t *testing.T) {
		require.NoError(t, repo.Deactivate(ctx, bob.ID.String(), owner.ID.String()))

		active, err := repo.GetByOwnerID(ctx, owner.ID.String(), models.StatusActive)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, alice.ID, active[0].ID)

		deleted, err := repo.GetByOwnerID(ctx, owner.ID.String(), models.StatusDeleted)
		require.NoError(t, err)
		require.Len(t, deleted, 1)
		assert.Equal(t, bob.ID, deleted[0].ID)
		assert.False(t, deleted[0].IsActive)

		all, err := repo.GetByOwnerID(ctx, owner.ID.String(), models.StatusAll)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("Deactivate is idempotent", func(t *testing.T) {
		assert.NoError(t, repo.Deactivate(ctx, bob.ID.String(), owner.ID.String()))
	})

	t.Run("Owner scoped writes", func(t *testing.T) {
		err := repo.Deactivate(ctx, alice.ID.String(), other.ID.String())
		assert.ErrorIs(t, err, sql.ErrNoRows)

		foreign := *alice
		foreign.OwnerID = other.ID
		foreign.Name = "mallory"
		assert.ErrorIs(t, repo.Update(ctx, &foreign), sql.ErrNoRows)
	})

	t.Run("Update", func(t *testing.T) {
		alice.PhoneNumber = "+1 202 555 0100"
		require.NoError(t, repo.Update(ctx, alice))

		stored, err := repo.GetByID(ctx, alice.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "+1 202 555 0100", stored.PhoneNumber)
		assert.Equal(t, "alice", stored.Name)
	})

	t.Run("Empty list is not nil", func(t *testing.T) {
		stranger := createUser(t, users, "stranger@example.com")
		workers, err := repo.GetByOwnerID(ctx, stranger.ID.String(), models.StatusAll)
		require.NoError(t, err)
		assert.NotNil(t, workers)
		assert.Empty(t, workers)
	})
}

func TestProjectRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	workers := NewWorkerRepository(db)
	repo := NewProjectRepository(db)

	owner := createUser(t, users, "owner@example.com")
	other := createUser(t, users, "other@example.com")
	alice := createWorker(t, workers, owner.ID, "alice")
	bob := createWorker(t, workers, owner.ID, "bob")

	newProject := func(name string, owner uuid.UUID, assignments ...models.WorkerAssignment) *models.Project {
		project := &models.Project{
			Name:           name,
			OwnerID:        owner,
			StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:        time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			TotalBudget:    decimal.NewFromInt(1000),
			ProjectAdvance: decimal.NewFromInt(200),
			Status:         true,
			Workers:        assignments,
		}
		require.NoError(t, repo.Create(ctx, project))
		return project
	}

	website := newProject("Website", owner.ID,
		models.WorkerAssignment{WorkerID: bob.ID, TotalPayment: decimal.NewFromInt(600), AdvanceGiven: decimal.NewFromInt(100)},
		models.WorkerAssignment{WorkerID: alice.ID, TotalPayment: decimal.RequireFromString("250.50"), AdvanceGiven: decimal.Zero},
	)
	empty := newProject("Empty", owner.ID)
	newProject("Foreign", other.ID)

	t.Run("Round trip keeps raw inputs and order", func(t *testing.T) {
		stored, err := repo.GetByID(ctx, website.ID.String())
		require.NoError(t, err)

		assert.Equal(t, "Website", stored.Name)
		assert.Equal(t, owner.ID, stored.OwnerID)
		assert.True(t, stored.TotalBudget.Equal(decimal.NewFromInt(1000)))
		assert.True(t, stored.ProjectAdvance.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, "2024-01-01", stored.StartDate.UTC().Format(models.DateLayout))
		assert.Equal(t, "2024-03-31", stored.EndDate.UTC().Format(models.DateLayout))
		assert.True(t, stored.Status)

		require.Len(t, stored.Workers, 2)
		assert.Equal(t, bob.ID, stored.Workers[0].WorkerID)
		assert.Equal(t, alice.ID, stored.Workers[1].WorkerID)
		assert.True(t, stored.Workers[1].TotalPayment.Equal(decimal.RequireFromString("250.5")))
	})

	t.Run("Project without workers", func(t *testing.T) {
		stored, err := repo.GetByID(ctx, empty.ID.String())
		require.NoError(t, err)
		assert.NotNil(t, stored.Workers)
		assert.Empty(t, stored.Workers)
	})

	t.Run("Unknown worker violates the foreign key", func(t *testing.T) {
		project := &models.Project{
			Name:        "Broken",
			OwnerID:     owner.ID,
			TotalBudget: decimal.NewFromInt(10),
			Status:      true,
			Workers: []models.WorkerAssignment{
				{WorkerID: uuid.New(), TotalPayment: decimal.NewFromInt(1)},
			},
		}
		assert.Error(t, repo.Create(ctx, project))

		projects, err := repo.GetByOwnerID(ctx, owner.ID.String(), models.StatusAll)
		require.NoError(t, err)
		for _, p := range projects {
			assert.NotEqual(t, "Broken", p.Name)
		}
	})

	t.Run("Soft delete and filters", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, empty.ID.String(), owner.ID.String()))

		deleted, err := repo.GetByID(ctx, empty.ID.String())
		require.NoError(t, err)
		assert.True(t, deleted.IsDeleted())

		all, err := repo.GetByOwnerID(ctx, owner.ID.String(), models.StatusAll)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		active, err := repo.GetByOwnerID(ctx, owner.ID.String(), models.StatusActive)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, website.ID, active[0].ID)
		assert.Len(t, active[0].Workers, 2)

		onlyDeleted, err := repo.GetByOwnerID(ctx, owner.ID.String(), models.StatusDeleted)
		require.NoError(t, err)
		require.Len(t, onlyDeleted, 1)
		assert.Equal(t, empty.ID, onlyDeleted[0].ID)
	})

	t.Run("Soft delete of a foreign project", func(t *testing.T) {
		err := repo.SoftDelete(ctx, website.ID.String(), other.ID.String())
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("Full payment flag", func(t *testing.T) {
		require.NoError(t, repo.SetFullPaymentDone(ctx, website.ID.String(), owner.ID.String(), true))

		stored, err := repo.GetByID(ctx, website.ID.String())
		require.NoError(t, err)
		assert.True(t, stored.FullPaymentDone)

		err = repo.SetFullPaymentDone(ctx, website.ID.String(), other.ID.String(), false)
		assert.ErrorIs(t, err, sql.ErrNoRows)

		stored, err = repo.GetByID(ctx, website.ID.String())
		require.NoError(t, err)
		assert.True(t, stored.FullPaymentDone)
	})

	t.Run("Update assignment", func(t *testing.T) {
		err := repo.UpdateAssignment(ctx, website.ID.String(), models.WorkerAssignment{
			WorkerID:     bob.ID,
			TotalPayment: decimal.NewFromInt(700),
			AdvanceGiven: decimal.NewFromInt(300),
		})
		require.NoError(t, err)

		stored, err := repo.GetByID(ctx, website.ID.String())
		require.NoError(t, err)
		assignment := stored.Assignment(bob.ID)
		require.NotNil(t, assignment)
		assert.True(t, assignment.TotalPayment.Equal(decimal.NewFromInt(700)))
		assert.True(t, assignment.AdvanceGiven.Equal(decimal.NewFromInt(300)))

		err = repo.UpdateAssignment(ctx, website.ID.String(), models.WorkerAssignment{WorkerID: uuid.New()})
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
