package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/crewledger/internal/models"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	workersSheet = "Workers"
)

// ExportService renders project ledgers as xlsx workbooks
type ExportService struct {
	projectService *ProjectService
	gate           *AccessGate
}

func NewExportService(projectService *ProjectService, gate *AccessGate) *ExportService {
	return &ExportService{
		projectService: projectService,
		gate:           gate,
	}
}

// ExportProject builds a workbook with a summary sheet and one row per
// assigned worker. The caller must Close the returned file.
func (s *ExportService) ExportProject(ctx context.Context, id string, owner uuid.UUID) (*models.Project, *excelize.File, error) {
	project, err := s.projectService.GetProjectDetails(ctx, id, owner)
	if err != nil {
		return nil, nil, err
	}

	names := make(map[uuid.UUID]string, len(project.Workers))
	for _, assignment := range project.Workers {
		worker, err := s.gate.Worker(ctx, assignment.WorkerID.String(), owner)
		if err != nil {
			names[assignment.WorkerID] = assignment.WorkerID.String()
			continue
		}
		names[assignment.WorkerID] = worker.Name
	}

	f, err := BuildLedgerWorkbook(project, names)
	if err != nil {
		return nil, nil, err
	}
	return project, f, nil
}

// BuildLedgerWorkbook writes project into a new workbook. names maps worker
// ids to display names; missing ids are shown as the raw id.
func BuildLedgerWorkbook(project *models.Project, names map[uuid.UUID]string) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, err
	}

	status := "Active"
	if project.IsDeleted() {
		status = "Deleted"
	}

	summary := [][]interface{}{
		{"Project", project.Name},
		{"Status", status},
		{"Start date", project.StartDate.Format(models.DateLayout)},
		{"End date", project.EndDate.Format(models.DateLayout)},
		{"Total budget", project.TotalBudget.InexactFloat64()},
		{"Project advance", project.ProjectAdvance.InexactFloat64()},
		{"Remaining from client", project.RemainingFromClient.InexactFloat64()},
		{"Total spending", project.TotalSpending.InexactFloat64()},
		{"Total spent", project.TotalSpent.InexactFloat64()},
		{"Remaining after spending", project.RemainingAfterSpending.InexactFloat64()},
		{"Cash on hand", project.CashOnHand.InexactFloat64()},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if _, err := f.NewSheet(workersSheet); err != nil {
		f.Close()
		return nil, err
	}

	header := []interface{}{"Worker", "Worker ID", "Total payment", "Advance given", "Remaining payment"}
	if err := f.SetSheetRow(workersSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	for i, a := range project.Workers {
		name, ok := names[a.WorkerID]
		if !ok {
			name = a.WorkerID.String()
		}
		row := []interface{}{
			name,
			a.WorkerID.String(),
			a.TotalPayment.InexactFloat64(),
			a.AdvanceGiven.InexactFloat64(),
			a.RemainingPayment.InexactFloat64(),
		}
		if err := f.SetSheetRow(workersSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}
