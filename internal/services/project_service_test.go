package services

import (
	"context"
	"testing"

	"github.com/alimgiray/crewledger/internal/ledger"
	"github.com/alimgiray/crewledger/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectLedger(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.newOwner(t, "owner@example.com")
	worker := env.newWorker(t, owner, "alice")

	project, err := env.projects.CreateProject(ctx, owner, projectInput("Website",
		ledger.PaymentRequest{WorkerID: worker.ID.String(), TotalPayment: amount("600"), AdvanceGiven: amount("100")},
	))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, project.ID)
	assert.Equal(t, owner, project.OwnerID)
	assert.True(t, project.Status)
	assert.True(t, project.TotalSpending.Equal(decimal.NewFromInt(600)))
	assert.True(t, project.TotalSpent.Equal(decimal.NewFromInt(100)))
	assert.True(t, project.RemainingFromClient.Equal(decimal.NewFromInt(800)))
	assert.True(t, project.RemainingAfterSpending.Equal(decimal.NewFromInt(400)))
	assert.True(t, project.CashOnHand.Equal(decimal.NewFromInt(100)))
	assert.True(t, project.AdvancePaymentStatus)

	// the stored record derives the same ledger
	stored, err := env.projects.GetProjectDetails(ctx, project.ID.String(), owner)
	require.NoError(t, err)
	assert.Equal(t, project.Ledger.TotalSpending.String(), stored.TotalSpending.String())
	assert.Equal(t, project.Ledger.CashOnHand.String(), stored.CashOnHand.String())
	require.Len(t, stored.Workers, 1)
	assert.True(t, stored.Workers[0].RemainingPayment.Equal(decimal.NewFromInt(500)))
}

func TestCreateProjectValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.newOwner(t, "owner@example.com")
	other := env.newOwner(t, "other@example.com")
	mine := env.newWorker(t, owner, "alice")
	retired := env.newWorker(t, owner, "bob")
	foreign := env.newWorker(t, other, "carol")
	require.NoError(t, env.workers.DeleteWorker(ctx, retired.ID.String(), owner))

	t.Run("Advance above budget", func(t *testing.T) {
		input := projectInput("Website")
		input.ProjectAdvance = amount("1500")
		_, err := env.projects.CreateProject(ctx, owner, input)
		requireErrorAs[*models.ValidationError](t, err)
	})

	t.Run("Missing totalPayment", func(t *testing.T) {
		_, err := env.projects.CreateProject(ctx, owner, projectInput("Website",
			ledger.PaymentRequest{WorkerID: mine.ID.String()},
		))
		ve := requireErrorAs[*models.ValidationError](t, err)
		assert.Equal(t, "workers[0].totalPayment", ve.Field)
	})

	t.Run("Unknown worker", func(t *testing.T) {
		_, err := env.projects.CreateProject(ctx, owner, projectInput("Website",
			ledger.PaymentRequest{WorkerID: uuid.NewString(), TotalPayment: amount("10")},
		))
		requireErrorAs[*models.ValidationError](t, err)
	})

	t.Run("Inactive worker", func(t *testing.T) {
		_, err := env.projects.CreateProject(ctx, owner, projectInput("Website",
			ledger.PaymentRequest{WorkerID: retired.ID.String(), TotalPayment: amount("10")},
		))
		requireErrorAs[*models.ValidationError](t, err)
	})

	t.Run("Another owner's worker", func(t *testing.T) {
		_, err := env.projects.CreateProject(ctx, owner, projectInput("Website",
			ledger.PaymentRequest{WorkerID: foreign.ID.String(), TotalPayment: amount("10")},
		))
		foreignErr := requireErrorAs[*models.ValidationError](t, err)

		missingID := uuid.NewString()
		_, err = env.projects.CreateProject(ctx, owner, projectInput("Website",
			ledger.PaymentRequest{WorkerID: missingID, TotalPayment: amount("10")},
		))
		missingErr := requireErrorAs[*models.ValidationError](t, err)

		assert.Equal(t, "Worker "+foreign.ID.String()+" not found", foreignErr.Message)
		assert.Equal(t, "Worker "+missingID+" not found", missingErr.Message)
		assert.Equal(t, missingErr.Field, foreignErr.Field)
	})

	t.Run("Nothing is stored on failure", func(t *testing.T) {
		projects, err := env.projects.ListProjects(ctx, owner, models.StatusAll)
		require.NoError(t, err)
		assert.Empty(t, projects)
	})
}

func TestSoftDeletedProjectVisibility(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.newOwner(t, "owner@example.com")

	kept, err := env.projects.CreateProject(ctx, owner, projectInput("Kept"))
	require.NoError(t, err)
	removed, err := env.projects.CreateProject(ctx, owner, projectInput("Removed"))
	require.NoError(t, err)

	require.NoError(t, env.projects.DeleteProject(ctx, removed.ID.String(), owner))

	t.Run("Detail lookup still returns it", func(t *testing.T) {
		project, err := env.projects.GetProjectDetails(ctx, removed.ID.String(), owner)
		require.NoError(t, err)
		assert.False(t, project.Status)
	})

	t.Run("Default listing includes it", func(t *testing.T) {
		projects, err := env.projects.ListProjects(ctx, owner, models.StatusAll)
		require.NoError(t, err)
		assert.Len(t, projects, 2)
	})

	t.Run("Active listing excludes it", func(t *testing.T) {
		projects, err := env.projects.ListProjects(ctx, owner, models.StatusActive)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, kept.ID, projects[0].ID)
	})

	t.Run("Summary covers active projects", func(t *testing.T) {
		summary, err := env.projects.ProjectSummary(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Projects)
		assert.True(t, summary.TotalBudget.Equal(decimal.NewFromInt(1000)))
	})
}

func TestProjectOwnership(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.newOwner(t, "owner@example.com")
	other := env.newOwner(t, "other@example.com")

	project, err := env.projects.CreateProject(ctx, owner, projectInput("Website"))
	require.NoError(t, err)

	t.Run("Delete by another owner", func(t *testing.T) {
		err := env.projects.DeleteProject(ctx, project.ID.String(), other)
		requireErrorAs[*models.NotFoundError](t, err)

		stored, err := env.projects.GetProjectDetails(ctx, project.ID.String(), owner)
		require.NoError(t, err)
		assert.True(t, stored.Status)
	})

	t.Run("Details for another owner", func(t *testing.T) {
		_, err := env.projects.GetProjectDetails(ctx, project.ID.String(), other)
		requireErrorAs[*models.NotFoundError](t, err)
	})

	t.Run("Unknown id", func(t *testing.T) {
		err := env.projects.DeleteProject(ctx, uuid.NewString(), owner)
		requireErrorAs[*models.NotFoundError](t, err)
	})

	t.Run("Malformed id", func(t *testing.T) {
		_, err := env.projects.GetProjectDetails(ctx, "not-a-uuid", owner)
		requireErrorAs[*models.ValidationError](t, err)
	})

	t.Run("Empty list for a new owner", func(t *testing.T) {
		projects, err := env.projects.ListProjects(ctx, other, models.StatusAll)
		require.NoError(t, err)
		assert.NotNil(t, projects)
		assert.Empty(t, projects)
	})
}

func TestUpdateAssignment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.newOwner(t, "owner@example.com")
	other := env.newOwner(t, "other@example.com")
	alice := env.newWorker(t, owner, "alice")
	bob := env.newWorker(t, owner, "bob")

	project, err := env.projects.CreateProject(ctx, owner, projectInput("Website",
		ledger.PaymentRequest{WorkerID: alice.ID.String(), TotalPayment: amount("600"), AdvanceGiven: amount("100")},
	))
	require.NoError(t, err)

	t.Run("Ledger follows the change", func(t *testing.T) {
		updated, err := env.projects.UpdateAssignment(ctx, project.ID.String(), alice.ID.String(), owner,
			models.AssignmentUpdate{AdvanceGiven: amount("250")})
		require.NoError(t, err)
		assert.True(t, updated.TotalSpent.Equal(decimal.NewFromInt(250)))
		assert.True(t, updated.CashOnHand.Equal(decimal.NewFromInt(-50)))

		stored, err := env.projects.GetProjectDetails(ctx, project.ID.String(), owner)
		require.NoError(t, err)
		assert.True(t, stored.TotalSpent.Equal(decimal.NewFromInt(250)))
		assert.True(t, stored.Workers[0].RemainingPayment.Equal(decimal.NewFromInt(350)))
	})

	t.Run("Advance above payment", func(t *testing.T) {
		_, err := env.projects.UpdateAssignment(ctx, project.ID.String(), alice.ID.String(), owner,
			models.AssignmentUpdate{TotalPayment: amount("100")})
		requireErrorAs[*models.ValidationError](t, err)
	})

	t.Run("Empty update", func(t *testing.T) {
		_, err := env.projects.UpdateAssignment(ctx, project.ID.String(), alice.ID.String(), owner, models.AssignmentUpdate{})
		requireErrorAs[*models.ValidationError](t, err)
	})

	t.Run("Worker not on project", func(t *testing.T) {
		_, err := env.projects.UpdateAssignment(ctx, project.ID.String(), bob.ID.String(), owner,
			models.AssignmentUpdate{AdvanceGiven: amount("1")})
		requireErrorAs[*models.NotFoundError](t, err)
	})

	t.Run("Another owner", func(t *testing.T) {
		_, err := env.projects.UpdateAssignment(ctx, project.ID.String(), alice.ID.String(), other,
			models.AssignmentUpdate{AdvanceGiven: amount("1")})
		requireErrorAs[*models.NotFoundError](t, err)
	})
}

func TestUpdateProjectFullPayment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.newOwner(t, "owner@example.com")
	other := env.newOwner(t, "other@example.com")

	project, err := env.projects.CreateProject(ctx, owner, projectInput("Website"))
	require.NoError(t, err)
	assert.False(t, project.FullPaymentDone)

	done := true

	t.Run("Marks the project paid", func(t *testing.T) {
		updated, err := env.projects.UpdateProject(ctx, project.ID.String(), owner, models.ProjectUpdate{FullPaymentDone: &done})
		require.NoError(t, err)
		assert.True(t, updated.FullPaymentDone)
		assert.True(t, updated.RemainingAfterSpending.Equal(project.RemainingAfterSpending))

		stored, err := env.projects.GetProjectDetails(ctx, project.ID.String(), owner)
		require.NoError(t, err)
		assert.True(t, stored.FullPaymentDone)
	})

	t.Run("Can be reverted", func(t *testing.T) {
		notDone := false
		updated, err := env.projects.UpdateProject(ctx, project.ID.String(), owner, models.ProjectUpdate{FullPaymentDone: &notDone})
		require.NoError(t, err)
		assert.False(t, updated.FullPaymentDone)
	})

	t.Run("Empty update", func(t *testing.T) {
		_, err := env.projects.UpdateProject(ctx, project.ID.String(), owner, models.ProjectUpdate{})
		requireErrorAs[*models.ValidationError](t, err)
	})

	t.Run("Another owner", func(t *testing.T) {
		_, err := env.projects.UpdateProject(ctx, project.ID.String(), other, models.ProjectUpdate{FullPaymentDone: &done})
		requireErrorAs[*models.NotFoundError](t, err)

		stored, err := env.projects.GetProjectDetails(ctx, project.ID.String(), owner)
		require.NoError(t, err)
		assert.False(t, stored.FullPaymentDone)
	})

	t.Run("Unknown project", func(t *testing.T) {
		_, err := env.projects.UpdateProject(ctx, uuid.NewString(), owner, models.ProjectUpdate{FullPaymentDone: &done})
		requireErrorAs[*models.NotFoundError](t, err)
	})
}
