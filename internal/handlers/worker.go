package handlers

import (
	"net/http"

	"github.com/alimgiray/crewledger/internal/models"
	"github.com/alimgiray/crewledger/internal/services"
	"github.com/gin-gonic/gin"
)

type WorkerHandler struct {
	workerService *services.WorkerService
	githubService *services.GitHubService
}

func NewWorkerHandler(workerService *services.WorkerService, githubService *services.GitHubService) *WorkerHandler {
	return &WorkerHandler{
		workerService: workerService,
		githubService: githubService,
	}
}

// AddWorker registers a worker for the current user
func (h *WorkerHandler) AddWorker(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.AddWorkerRequest
	if !bindJSON(c, &req) {
		return
	}

	worker, err := h.workerService.AddWorker(c.Request.Context(), user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"worker": worker})
}

// ListWorkers lists the current user's workers filtered by ?status=
func (h *WorkerHandler) ListWorkers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter, err := models.ParseStatusFilter(c.Query("status"), models.StatusActive)
	if err != nil {
		respondError(c, err)
		return
	}

	workers, err := h.workerService.ListWorkersByOwner(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"workers": workers})
}

// GetWorker returns one worker
func (h *WorkerHandler) GetWorker(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	worker, err := h.workerService.GetWorkerByID(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"worker": worker})
}

// UpdateWorker applies a partial update to a worker
func (h *WorkerHandler) UpdateWorker(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var update models.WorkerUpdate
	if !bindJSON(c, &update) {
		return
	}

	worker, err := h.workerService.UpdateWorker(c.Request.Context(), c.Param("id"), user.ID, update)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"worker": worker})
}

// DeleteWorker soft deletes a worker
func (h *WorkerHandler) DeleteWorker(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.workerService.DeleteWorker(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Worker deleted successfully"})
}

// GitHubProfile returns the public GitHub profile linked to a worker
func (h *WorkerHandler) GitHubProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.githubService.WorkerProfile(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
