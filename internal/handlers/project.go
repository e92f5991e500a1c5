package handlers

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/alimgiray/crewledger/internal/ledger"
	"github.com/alimgiray/crewledger/internal/models"
	"github.com/alimgiray/crewledger/internal/services"
	"github.com/alimgiray/crewledger/pkg/logger"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type ProjectHandler struct {
	projectService *services.ProjectService
	exportService  *services.ExportService
}

func NewProjectHandler(projectService *services.ProjectService, exportService *services.ExportService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		exportService:  exportService,
	}
}

// CreateProject creates a project with its worker assignments
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input ledger.ProjectInput
	if !bindJSON(c, &input) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), user.ID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// ListProjects lists the current user's projects filtered by ?status=
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter, err := models.ParseStatusFilter(c.Query("status"), models.StatusAll)
	if err != nil {
		respondError(c, err)
		return
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// ProjectSummary totals the ledgers of the current user's active projects
func (h *ProjectHandler) ProjectSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.projectService.ProjectSummary(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetProject returns one project with its derived ledger
func (h *ProjectHandler) GetProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProjectDetails(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// DeleteProject soft deletes a project
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// UpdateProject sets the full payment flag of a project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var update models.ProjectUpdate
	if !bindJSON(c, &update) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("id"), user.ID, update)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// UpdateAssignment changes the payment amounts of one assigned worker
func (h *ProjectHandler) UpdateAssignment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var update models.AssignmentUpdate
	if !bindJSON(c, &update) {
		return
	}

	project, err := h.projectService.UpdateAssignment(c.Request.Context(), c.Param("id"), c.Param("workerId"), user.ID, update)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// ExportProject streams the project ledger as an xlsx workbook
func (h *ProjectHandler) ExportProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	project, f, err := h.exportService.ExportProject(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	filename := unsafeFilenameChars.ReplaceAllString(project.Name, "_")
	if filename == "" || filename == "_" {
		filename = project.ID.String()
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.WithError(err).WithField("project_id", project.ID).Error("Failed to write workbook")
	}
}
