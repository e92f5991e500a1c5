package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alimgiray/crewledger/internal/models"
	"github.com/alimgiray/crewledger/internal/repositories"
	"github.com/google/uuid"
)

// AccessGate is the one place where owner scoping is decided. A record that
// does not exist and a record owned by someone else are both reported as
// NotFoundError so callers cannot discover foreign ids.
type AccessGate struct {
	projectRepo *repositories.ProjectRepository
	workerRepo  *repositories.WorkerRepository
}

func NewAccessGate(projectRepo *repositories.ProjectRepository, workerRepo *repositories.WorkerRepository) *AccessGate {
	return &AccessGate{
		projectRepo: projectRepo,
		workerRepo:  workerRepo,
	}
}

// Project loads a project the owner may see, soft deleted ones included
func (g *AccessGate) Project(ctx context.Context, id string, owner uuid.UUID) (*models.Project, error) {
	parsed, err := parseID("project", id)
	if err != nil {
		return nil, err
	}

	project, err := g.projectRepo.GetByID(ctx, parsed.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}

	if project.OwnerID != owner {
		return nil, models.ErrProjectNotFound
	}

	return project, nil
}

// Worker loads a worker the owner may see, inactive ones included
func (g *AccessGate) Worker(ctx context.Context, id string, owner uuid.UUID) (*models.Worker, error) {
	parsed, err := parseID("worker", id)
	if err != nil {
		return nil, err
	}

	worker, err := g.workerRepo.GetByID(ctx, parsed.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrWorkerNotFound
		}
		return nil, fmt.Errorf("get worker %s: %w", id, err)
	}

	if worker.OwnerID != owner {
		return nil, models.ErrWorkerNotFound
	}

	return worker, nil
}

// AssignableWorker checks that a worker can be put on one of owner's
// projects: it must exist, be active and belong to owner.
func (g *AccessGate) AssignableWorker(ctx context.Context, id uuid.UUID, owner uuid.UUID) error {
	worker, err := g.workerRepo.GetByID(ctx, id.String())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get worker %s: %w", id, err)
	}

	// another owner's worker reads exactly like a missing one
	if err != nil || worker.OwnerID != owner {
		return models.NewValidationError("workerId", "Worker %s not found", id)
	}

	if !worker.IsActive {
		return models.NewValidationError("workerId", "Worker %s is no longer active", id)
	}

	return nil
}

func parseID(entity, id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.Nil, models.MissingField(entity + " id")
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, models.NewValidationError("id", "Invalid %s id format", entity)
	}
	return parsed, nil
}
