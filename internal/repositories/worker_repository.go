package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/alimgiray/crewledger/internal/models"
	"github.com/google/uuid"
)

type WorkerRepository struct {
	db *sql.DB
}

func NewWorkerRepository(db *sql.DB) *WorkerRepository {
	return &WorkerRepository{
		db: db,
	}
}

const workerColumns = `id, owner_id, name, email, phone_number, github_link, is_active, created_at, updated_at`

// Create creates a new worker
func (r *WorkerRepository) Create(ctx context.Context, worker *models.Worker) error {
	query := `
		INSERT INTO workers (id, owner_id, name, email, phone_number, github_link, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	worker.ID = uuid.New()
	worker.CreatedAt = now
	worker.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		worker.ID.String(),
		worker.OwnerID.String(),
		worker.Name,
		worker.Email,
		worker.PhoneNumber,
		worker.GitHubLink,
		worker.IsActive,
		worker.CreatedAt,
		worker.UpdatedAt,
	)
	return err
}

// GetByID retrieves a worker by ID, including inactive ones
func (r *WorkerRepository) GetByID(ctx context.Context, id string) (*models.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE id = ?`

	worker := &models.Worker{}
	if err := scanWorker(r.db.QueryRowContext(ctx, query, id), worker); err != nil {
		return nil, err
	}
	return worker, nil
}

// GetByOwnerID retrieves the workers of an owner, filtered by active state
func (r *WorkerRepository) GetByOwnerID(ctx context.Context, ownerID string, filter models.StatusFilter) ([]*models.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE owner_id = ?`
	switch filter {
	case models.StatusActive:
		query += ` AND is_active = 1`
	case models.StatusDeleted:
		query += ` AND is_active = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := make([]*models.Worker, 0)
	for rows.Next() {
		worker := &models.Worker{}
		if err := scanWorker(rows, worker); err != nil {
			return nil, err
		}
		workers = append(workers, worker)
	}

	return workers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorker(row rowScanner, worker *models.Worker) error {
	return row.Scan(
		&worker.ID,
		&worker.OwnerID,
		&worker.Name,
		&worker.Email,
		&worker.PhoneNumber,
		&worker.GitHubLink,
		&worker.IsActive,
		&worker.CreatedAt,
		&worker.UpdatedAt,
	)
}

// Update updates the contact fields of a worker owned by worker.OwnerID
func (r *WorkerRepository) Update(ctx context.Context, worker *models.Worker) error {
	query := `
		UPDATE workers
		SET name = ?, email = ?, phone_number = ?, github_link = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	worker.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		worker.Name,
		worker.Email,
		worker.PhoneNumber,
		worker.GitHubLink,
		worker.UpdatedAt,
		worker.ID.String(),
		worker.OwnerID.String(),
	)
	if err != nil {
		return err
	}

	return requireRows(result)
}

// Deactivate performs a soft delete of a worker
func (r *WorkerRepository) Deactivate(ctx context.Context, id, ownerID string) error {
	query := `
		UPDATE workers
		SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}

	return requireRows(result)
}

// requireRows turns a write that touched nothing into sql.ErrNoRows
func requireRows(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
