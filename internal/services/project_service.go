package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alimgiray/crewledger/internal/ledger"
	"github.com/alimgiray/crewledger/internal/metrics"
	"github.com/alimgiray/crewledger/internal/models"
	"github.com/alimgiray/crewledger/internal/repositories"
	"github.com/alimgiray/crewledger/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProjectService struct {
	projectRepo *repositories.ProjectRepository
	gate        *AccessGate
}

func NewProjectService(projectRepo *repositories.ProjectRepository, gate *AccessGate) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		gate:        gate,
	}
}

// CreateProject validates input, derives the ledger and stores the project
func (s *ProjectService) CreateProject(ctx context.Context, owner uuid.UUID, input ledger.ProjectInput) (*models.Project, error) {
	if owner == uuid.Nil {
		return nil, errors.New("owner ID is required")
	}

	project, err := ledger.Build(input)
	if err != nil {
		return nil, err
	}
	project.OwnerID = owner

	for _, assignment := range project.Workers {
		if err := s.gate.AssignableWorker(ctx, assignment.WorkerID, owner); err != nil {
			return nil, err
		}
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	metrics.ProjectsCreated.Inc()
	logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"owner_id":   owner,
		"workers":    len(project.Workers),
	}).Info("Project created")

	return project, nil
}

// ListProjects returns the owner's projects with derived ledger fields
func (s *ProjectService) ListProjects(ctx context.Context, owner uuid.UUID, filter models.StatusFilter) ([]*models.Project, error) {
	projects, err := s.projectRepo.GetByOwnerID(ctx, owner.String(), filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	for _, project := range projects {
		ledger.Derive(project)
	}

	return projects, nil
}

// GetProjectDetails returns one project of owner, soft deleted or not
func (s *ProjectService) GetProjectDetails(ctx context.Context, id string, owner uuid.UUID) (*models.Project, error) {
	project, err := s.gate.Project(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	ledger.Derive(project)
	return project, nil
}

// DeleteProject soft deletes a project. Absent and foreign projects are
// indistinguishable to the caller.
func (s *ProjectService) DeleteProject(ctx context.Context, id string, owner uuid.UUID) error {
	projectID, err := parseID("project", id)
	if err != nil {
		return err
	}

	if err := s.projectRepo.SoftDelete(ctx, projectID.String(), owner.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrProjectNotFound
		}
		return fmt.Errorf("delete project %s: %w", id, err)
	}

	logger.WithFields(logrus.Fields{
		"project_id": id,
		"owner_id":   owner,
	}).Info("Project deleted")

	return nil
}

// UpdateProject marks whether the client paid the project in full and
// returns the project with its ledger
func (s *ProjectService) UpdateProject(ctx context.Context, id string, owner uuid.UUID, update models.ProjectUpdate) (*models.Project, error) {
	if update.IsEmpty() {
		return nil, models.NewValidationError("body", "Nothing to update: provide fullPaymentDone")
	}

	project, err := s.gate.Project(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.SetFullPaymentDone(ctx, project.ID.String(), owner.String(), *update.FullPaymentDone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.OperationFailedError{Operation: "update project"}
		}
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}

	project.FullPaymentDone = *update.FullPaymentDone
	ledger.Derive(project)

	logger.WithFields(logrus.Fields{
		"project_id":        id,
		"full_payment_done": project.FullPaymentDone,
	}).Info("Project updated")

	return project, nil
}

// UpdateAssignment changes the payment amounts of one worker on a project
// and returns the project with its ledger recomputed
func (s *ProjectService) UpdateAssignment(ctx context.Context, projectID, workerID string, owner uuid.UUID, update models.AssignmentUpdate) (*models.Project, error) {
	if update.IsEmpty() {
		return nil, models.NewValidationError("body", "Nothing to update: provide totalPayment or advanceGiven")
	}

	workerUUID, err := parseID("worker", workerID)
	if err != nil {
		return nil, err
	}

	project, err := s.gate.Project(ctx, projectID, owner)
	if err != nil {
		return nil, err
	}

	current := project.Assignment(workerUUID)
	if current == nil {
		return nil, &models.NotFoundError{Entity: "Worker assignment"}
	}

	next, err := ledger.Apply(*current, update)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.UpdateAssignment(ctx, project.ID.String(), next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.OperationFailedError{Operation: "update worker assignment"}
		}
		return nil, fmt.Errorf("update assignment: %w", err)
	}

	*current = next
	ledger.Derive(project)

	logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"worker_id":  workerID,
	}).Info("Worker assignment updated")

	return project, nil
}

// ProjectSummary totals the ledgers of the owner's active projects
func (s *ProjectService) ProjectSummary(ctx context.Context, owner uuid.UUID) (models.PortfolioSummary, error) {
	projects, err := s.projectRepo.GetByOwnerID(ctx, owner.String(), models.StatusActive)
	if err != nil {
		return models.PortfolioSummary{}, fmt.Errorf("summarize projects: %w", err)
	}

	return ledger.Summarize(projects), nil
}
