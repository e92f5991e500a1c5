package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used by the API
const DateLayout = "2006-01-02"

type Project struct {
	ID              uuid.UUID          `json:"id"`
	Name            string             `json:"name"`
	StartDate       time.Time          `json:"startDate"`
	EndDate         time.Time          `json:"endDate"`
	TotalBudget     decimal.Decimal    `json:"totalBudget"`
	ProjectAdvance  decimal.Decimal    `json:"projectAdvance"`
	OwnerID         uuid.UUID          `json:"ownerId"`
	Status          bool               `json:"status"`
	FullPaymentDone bool               `json:"fullPaymentDone"`
	Workers         []WorkerAssignment `json:"workers"`
	Ledger
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Ledger holds the fields derived from the budget and the assignments.
// They are never stored; see ledger.Derive.
type Ledger struct {
	TotalSpending          decimal.Decimal `json:"totalSpending"`
	TotalSpent             decimal.Decimal `json:"totalSpent"`
	RemainingFromClient    decimal.Decimal `json:"remainingFromClient"`
	RemainingAfterSpending decimal.Decimal `json:"remainingAfterSpending"`
	CashOnHand             decimal.Decimal `json:"cashOnHand"`
	AdvancePaymentStatus   bool            `json:"advancePaymentStatus"`
}

// WorkerAssignment is a worker's payment entry inside a project
type WorkerAssignment struct {
	WorkerID         uuid.UUID       `json:"workerId"`
	TotalPayment     decimal.Decimal `json:"totalPayment"`
	AdvanceGiven     decimal.Decimal `json:"advanceGiven"`
	RemainingPayment decimal.Decimal `json:"remainingPayment"`
}

// Assignment returns the entry for workerID, or nil
func (p *Project) Assignment(workerID uuid.UUID) *WorkerAssignment {
	for i := range p.Workers {
		if p.Workers[i].WorkerID == workerID {
			return &p.Workers[i]
		}
	}
	return nil
}

// IsDeleted reports whether the project was soft deleted
func (p *Project) IsDeleted() bool {
	return !p.Status
}

// AssignmentUpdate changes the amounts of one assignment; nil fields are kept
type AssignmentUpdate struct {
	TotalPayment *decimal.Decimal `json:"totalPayment"`
	AdvanceGiven *decimal.Decimal `json:"advanceGiven"`
}

// IsEmpty reports whether the update changes nothing
func (u *AssignmentUpdate) IsEmpty() bool {
	return u.TotalPayment == nil && u.AdvanceGiven == nil
}

// ProjectUpdate changes the settlement flag of a project
type ProjectUpdate struct {
	FullPaymentDone *bool `json:"fullPaymentDone"`
}

// IsEmpty reports whether the update changes nothing
func (u *ProjectUpdate) IsEmpty() bool {
	return u.FullPaymentDone == nil
}

// PortfolioSummary totals the ledgers of several projects
type PortfolioSummary struct {
	Projects            int             `json:"projects"`
	TotalBudget         decimal.Decimal `json:"totalBudget"`
	TotalAdvance        decimal.Decimal `json:"totalAdvance"`
	TotalSpending       decimal.Decimal `json:"totalSpending"`
	TotalSpent          decimal.Decimal `json:"totalSpent"`
	RemainingFromClient decimal.Decimal `json:"remainingFromClient"`
	CashOnHand          decimal.Decimal `json:"cashOnHand"`
}

// ParseDate accepts a calendar date or an RFC3339 timestamp and returns
// midnight UTC of that day
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, MissingField(field)
	}

	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, NewValidationError(field, "%s must be a date (YYYY-MM-DD)", field)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
