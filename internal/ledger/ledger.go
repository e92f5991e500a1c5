// Package ledger validates project budgets and derives the financial fields
// of a project from its raw inputs: the budget, the client's advance and the
// payment owed and advanced to each assigned worker.
//
// Only raw inputs are persisted. Every derived field is recomputed by Derive,
// so a change to any assignment is reflected the next time a project is read.
package ledger

import (
	"fmt"
	"strings"

	"github.com/alimgiray/crewledger/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest is one worker entry of a project creation request
type PaymentRequest struct {
	WorkerID     string           `json:"workerId"`
	TotalPayment *decimal.Decimal `json:"totalPayment"`
	AdvanceGiven *decimal.Decimal `json:"advanceGiven"`
}

// ProjectInput is the raw input of a project creation request
type ProjectInput struct {
	Name           string           `json:"name"`
	StartDate      string           `json:"startDate"`
	EndDate        string           `json:"endDate"`
	TotalBudget    *decimal.Decimal `json:"totalBudget"`
	ProjectAdvance *decimal.Decimal `json:"projectAdvance"`
	Workers        []PaymentRequest `json:"workers"`
}

// Build validates input and returns a project with every derived field
// materialized. ID, OwnerID and timestamps are left for the caller.
func Build(input ProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, models.MissingField("name")
	}
	if strings.TrimSpace(input.StartDate) == "" {
		return nil, models.MissingField("startDate")
	}
	if strings.TrimSpace(input.EndDate) == "" {
		return nil, models.MissingField("endDate")
	}
	if input.TotalBudget == nil {
		return nil, models.MissingField("totalBudget")
	}

	startDate, err := models.ParseDate("startDate", input.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := models.ParseDate("endDate", input.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, models.NewValidationError("endDate", "endDate must not be before startDate")
	}

	project := &models.Project{
		Name:           name,
		StartDate:      startDate,
		EndDate:        endDate,
		TotalBudget:    *input.TotalBudget,
		ProjectAdvance: decimal.Zero,
		Status:         true,
		Workers:        make([]models.WorkerAssignment, 0, len(input.Workers)),
	}
	if input.ProjectAdvance != nil {
		project.ProjectAdvance = *input.ProjectAdvance
	}

	if err := ValidateBudget(project.TotalBudget, project.ProjectAdvance); err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(input.Workers))
	for i, request := range input.Workers {
		assignment, err := buildAssignment(i, request)
		if err != nil {
			return nil, err
		}
		if seen[assignment.WorkerID] {
			return nil, models.NewValidationError(fieldName(i, "workerId"), "worker %s is assigned more than once", assignment.WorkerID)
		}
		seen[assignment.WorkerID] = true
		project.Workers = append(project.Workers, assignment)
	}

	Derive(project)
	return project, nil
}

func buildAssignment(index int, request PaymentRequest) (models.WorkerAssignment, error) {
	if strings.TrimSpace(request.WorkerID) == "" {
		return models.WorkerAssignment{}, models.MissingField(fieldName(index, "workerId"))
	}
	workerID, err := uuid.Parse(strings.TrimSpace(request.WorkerID))
	if err != nil {
		return models.WorkerAssignment{}, models.NewValidationError(fieldName(index, "workerId"), "Invalid worker id %q", request.WorkerID)
	}
	if request.TotalPayment == nil {
		return models.WorkerAssignment{}, models.MissingField(fieldName(index, "totalPayment"))
	}

	assignment := models.WorkerAssignment{
		WorkerID:     workerID,
		TotalPayment: *request.TotalPayment,
		AdvanceGiven: decimal.Zero,
	}
	if request.AdvanceGiven != nil {
		assignment.AdvanceGiven = *request.AdvanceGiven
	}

	if err := ValidateAssignment(assignment); err != nil {
		if ve, ok := err.(*models.ValidationError); ok {
			ve.Field = fieldName(index, ve.Field)
		}
		return models.WorkerAssignment{}, err
	}
	return assignment, nil
}

func fieldName(index int, field string) string {
	return fmt.Sprintf("workers[%d].%s", index, field)
}

// ValidateBudget enforces 0 <= projectAdvance <= totalBudget
func ValidateBudget(totalBudget, projectAdvance decimal.Decimal) error {
	if totalBudget.IsNegative() {
		return models.NewValidationError("totalBudget", "totalBudget must not be negative")
	}
	if projectAdvance.IsNegative() {
		return models.NewValidationError("projectAdvance", "projectAdvance must not be negative")
	}
	if projectAdvance.GreaterThan(totalBudget) {
		return models.NewValidationError("projectAdvance", "projectAdvance cannot exceed totalBudget")
	}
	return nil
}

// ValidateAssignment enforces 0 <= advanceGiven <= totalPayment, which keeps
// remainingPayment non-negative
func ValidateAssignment(a models.WorkerAssignment) error {
	if a.TotalPayment.IsNegative() {
		return models.NewValidationError("totalPayment", "totalPayment must not be negative")
	}
	if a.AdvanceGiven.IsNegative() {
		return models.NewValidationError("advanceGiven", "advanceGiven must not be negative")
	}
	if a.AdvanceGiven.GreaterThan(a.TotalPayment) {
		return models.NewValidationError("advanceGiven", "advanceGiven cannot exceed totalPayment")
	}
	return nil
}

// Apply validates update against the current assignment and returns the
// updated copy
func Apply(current models.WorkerAssignment, update models.AssignmentUpdate) (models.WorkerAssignment, error) {
	next := current
	if update.TotalPayment != nil {
		next.TotalPayment = *update.TotalPayment
	}
	if update.AdvanceGiven != nil {
		next.AdvanceGiven = *update.AdvanceGiven
	}
	if err := ValidateAssignment(next); err != nil {
		return current, err
	}
	next.RemainingPayment = next.TotalPayment.Sub(next.AdvanceGiven)
	return next, nil
}

// Derive recomputes every derived field of p from its raw inputs
func Derive(p *models.Project) {
	totalSpending := decimal.Zero
	totalSpent := decimal.Zero

	for i := range p.Workers {
		a := &p.Workers[i]
		a.RemainingPayment = a.TotalPayment.Sub(a.AdvanceGiven)
		totalSpending = totalSpending.Add(a.TotalPayment)
		totalSpent = totalSpent.Add(a.AdvanceGiven)
	}

	p.Ledger = models.Ledger{
		TotalSpending:          totalSpending,
		TotalSpent:             totalSpent,
		RemainingFromClient:    p.TotalBudget.Sub(p.ProjectAdvance),
		RemainingAfterSpending: p.TotalBudget.Sub(totalSpending),
		CashOnHand:             p.ProjectAdvance.Sub(totalSpent),
		AdvancePaymentStatus:   p.ProjectAdvance.IsPositive(),
	}
}

// Summarize totals the ledgers of projects. Each project is derived first.
func Summarize(projects []*models.Project) models.PortfolioSummary {
	summary := models.PortfolioSummary{
		TotalBudget:         decimal.Zero,
		TotalAdvance:        decimal.Zero,
		TotalSpending:       decimal.Zero,
		TotalSpent:          decimal.Zero,
		RemainingFromClient: decimal.Zero,
		CashOnHand:          decimal.Zero,
	}

	for _, p := range projects {
		Derive(p)
		summary.Projects++
		summary.TotalBudget = summary.TotalBudget.Add(p.TotalBudget)
		summary.TotalAdvance = summary.TotalAdvance.Add(p.ProjectAdvance)
		summary.TotalSpending = summary.TotalSpending.Add(p.TotalSpending)
		summary.TotalSpent = summary.TotalSpent.Add(p.TotalSpent)
		summary.RemainingFromClient = summary.RemainingFromClient.Add(p.RemainingFromClient)
		summary.CashOnHand = summary.CashOnHand.Add(p.CashOnHand)
	}

	return summary
}
