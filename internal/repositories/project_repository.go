package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alimgiray/crewledger/internal/models"
	"github.com/google/uuid"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{
		db: db,
	}
}

const projectColumns = `id, owner_id, name, start_date, end_date, total_budget, project_advance, full_payment_done, status, created_at, updated_at`

// Create stores a project and its worker assignments in one transaction.
// Only raw ledger inputs are written.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	project.ID = uuid.New()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (id, owner_id, name, start_date, end_date, total_budget, project_advance, full_payment_done, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		project.ID.String(),
		project.OwnerID.String(),
		project.Name,
		project.StartDate,
		project.EndDate,
		project.TotalBudget.String(),
		project.ProjectAdvance.String(),
		project.FullPaymentDone,
		project.Status,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	for i, assignment := range project.Workers {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO project_workers (project_id, worker_id, position, total_payment, advance_given, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			project.ID.String(),
			assignment.WorkerID.String(),
			i,
			assignment.TotalPayment.String(),
			assignment.AdvanceGiven.String(),
			now,
		)
		if err != nil {
			return fmt.Errorf("insert assignment %s: %w", assignment.WorkerID, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a project with its assignments, including soft deleted ones
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	project := &models.Project{}
	if err := scanProject(r.db.QueryRowContext(ctx, query, id), project); err != nil {
		return nil, err
	}

	assignments, err := r.loadAssignments(ctx, `
		SELECT project_id, worker_id, total_payment, advance_given
		FROM project_workers
		WHERE project_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	project.Workers = assignments[project.ID]
	if project.Workers == nil {
		project.Workers = []models.WorkerAssignment{}
	}

	return project, nil
}

// GetByOwnerID retrieves all projects for an owner, newest first
func (r *ProjectRepository) GetByOwnerID(ctx context.Context, ownerID string, filter models.StatusFilter) ([]*models.Project, error) {
	statusClause := ""
	switch filter {
	case models.StatusActive:
		statusClause = ` AND status = 1`
	case models.StatusDeleted:
		statusClause = ` AND status = 0`
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE owner_id = ?`+statusClause+` ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		project := &models.Project{}
		if err := scanProject(rows, project); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(projects) == 0 {
		return projects, nil
	}

	assignments, err := r.loadAssignments(ctx, `
		SELECT pw.project_id, pw.worker_id, pw.total_payment, pw.advance_given
		FROM project_workers pw
		JOIN projects p ON p.id = pw.project_id
		WHERE p.owner_id = ?`+statusClause+`
		ORDER BY pw.project_id, pw.position
	`, ownerID)
	if err != nil {
		return nil, err
	}

	for _, project := range projects {
		project.Workers = assignments[project.ID]
		if project.Workers == nil {
			project.Workers = []models.WorkerAssignment{}
		}
	}

	return projects, nil
}

func (r *ProjectRepository) loadAssignments(ctx context.Context, query string, args ...interface{}) (map[uuid.UUID][]models.WorkerAssignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make(map[uuid.UUID][]models.WorkerAssignment)
	for rows.Next() {
		var projectID uuid.UUID
		var assignment models.WorkerAssignment
		if err := rows.Scan(
			&projectID,
			&assignment.WorkerID,
			&assignment.TotalPayment,
			&assignment.AdvanceGiven,
		); err != nil {
			return nil, err
		}
		assignments[projectID] = append(assignments[projectID], assignment)
	}

	return assignments, rows.Err()
}

func scanProject(row rowScanner, project *models.Project) error {
	return row.Scan(
		&project.ID,
		&project.OwnerID,
		&project.Name,
		&project.StartDate,
		&project.EndDate,
		&project.TotalBudget,
		&project.ProjectAdvance,
		&project.FullPaymentDone,
		&project.Status,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
}

// SoftDelete marks a project deleted. The id and owner must both match.
func (r *ProjectRepository) SoftDelete(ctx context.Context, id, ownerID string) error {
	query := `
		UPDATE projects
		SET status = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}

	return requireRows(result)
}

// SetFullPaymentDone records whether the client settled the project. The id
// and owner must both match.
func (r *ProjectRepository) SetFullPaymentDone(ctx context.Context, id, ownerID string, done bool) error {
	query := `
		UPDATE projects
		SET full_payment_done = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, done, id, ownerID)
	if err != nil {
		return err
	}

	return requireRows(result)
}

// UpdateAssignment stores new amounts for one assignment of a project
func (r *ProjectRepository) UpdateAssignment(ctx context.Context, projectID string, assignment models.WorkerAssignment) error {
	query := `
		UPDATE project_workers
		SET total_payment = ?, advance_given = ?, updated_at = CURRENT_TIMESTAMP
		WHERE project_id = ? AND worker_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		assignment.TotalPayment.String(),
		assignment.AdvanceGiven.String(),
		projectID,
		assignment.WorkerID.String(),
	)
	if err != nil {
		return err
	}

	if err := requireRows(result); err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `UPDATE projects SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, projectID)
	return err
}
