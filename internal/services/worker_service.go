package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alimgiray/crewledger/internal/models"
	"github.com/alimgiray/crewledger/internal/repositories"
	"github.com/alimgiray/crewledger/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type WorkerService struct {
	workerRepo *repositories.WorkerRepository
	gate       *AccessGate
}

func NewWorkerService(workerRepo *repositories.WorkerRepository, gate *AccessGate) *WorkerService {
	return &WorkerService{
		workerRepo: workerRepo,
		gate:       gate,
	}
}

// AddWorkerRequest is the body of an add-worker call
type AddWorkerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	GitHubLink  string `json:"githubLink"`
}

// AddWorker creates an active worker owned by owner
func (s *WorkerService) AddWorker(ctx context.Context, owner uuid.UUID, req AddWorkerRequest) (*models.Worker, error) {
	worker := &models.Worker{
		OwnerID:     owner,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		GitHubLink:  req.GitHubLink,
		IsActive:    true,
	}
	worker.Normalize()
	if err := worker.Validate(); err != nil {
		return nil, err
	}

	if err := s.workerRepo.Create(ctx, worker); err != nil {
		return nil, fmt.Errorf("create worker: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"worker_id": worker.ID,
		"owner_id":  owner,
	}).Info("Worker added")

	return worker, nil
}

// ListWorkersByOwner returns the owner's workers; an empty list is not an error
func (s *WorkerService) ListWorkersByOwner(ctx context.Context, owner uuid.UUID, filter models.StatusFilter) ([]*models.Worker, error) {
	workers, err := s.workerRepo.GetByOwnerID(ctx, owner.String(), filter)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	return workers, nil
}

// GetWorkerByID returns one of the owner's workers
func (s *WorkerService) GetWorkerByID(ctx context.Context, id string, owner uuid.UUID) (*models.Worker, error) {
	return s.gate.Worker(ctx, id, owner)
}

// UpdateWorker applies a partial update to one of the owner's workers
func (s *WorkerService) UpdateWorker(ctx context.Context, id string, owner uuid.UUID, update models.WorkerUpdate) (*models.Worker, error) {
	if update.IsEmpty() {
		return nil, models.NewValidationError("body", "Nothing to update")
	}

	worker, err := s.gate.Worker(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	if err := update.Apply(worker); err != nil {
		return nil, err
	}

	if err := s.workerRepo.Update(ctx, worker); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.OperationFailedError{Operation: "update worker"}
		}
		return nil, fmt.Errorf("update worker %s: %w", id, err)
	}

	return worker, nil
}

// DeleteWorker soft deletes one of the owner's workers. Existing project
// assignments keep referring to it.
func (s *WorkerService) DeleteWorker(ctx context.Context, id string, owner uuid.UUID) error {
	worker, err := s.gate.Worker(ctx, id, owner)
	if err != nil {
		return err
	}

	if err := s.workerRepo.Deactivate(ctx, worker.ID.String(), owner.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.OperationFailedError{Operation: "delete worker"}
		}
		return fmt.Errorf("delete worker %s: %w", id, err)
	}

	logger.WithFields(logrus.Fields{
		"worker_id": id,
		"owner_id":  owner,
	}).Info("Worker deactivated")

	return nil
}
