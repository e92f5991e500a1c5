package handlers

import (
	"errors"
	"net/http"

	"github.com/alimgiray/crewledger/internal/middleware"
	"github.com/alimgiray/crewledger/internal/models"
	"github.com/alimgiray/crewledger/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "Something went wrong!"

// statusFor maps a service error to its HTTP status; ok is false for errors
// outside the domain taxonomy
func statusFor(err error) (status int, ok bool) {
	var (
		validationErr   *models.ValidationError
		notFoundErr     *models.NotFoundError
		authzErr        *models.AuthorizationError
		opFailedErr     *models.OperationFailedError
		unauthorizedErr *models.UnauthorizedError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, true
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, true
	case errors.As(err, &authzErr):
		return http.StatusForbidden, true
	case errors.As(err, &opFailedErr):
		return http.StatusBadRequest, true
	case errors.As(err, &unauthorizedErr):
		return http.StatusUnauthorized, true
	}
	return http.StatusInternalServerError, false
}

// respondError writes err as {"error": message}. Unknown errors are logged and
// hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	status, ok := statusFor(err)
	if ok {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	fields := logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}
	if user := middleware.GetUser(c); user != nil {
		fields["user_id"] = user.ID
	}
	logger.WithFields(fields).WithError(err).Error("Request failed")

	c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
}

// bindJSON decodes the request body into dst and reports malformed input as
// a validation error
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, models.NewValidationError("body", "Invalid request body"))
		return false
	}
	return true
}

// currentUser returns the authenticated user or writes a 401
func currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.GetUser(c)
	if user == nil {
		respondError(c, &models.UnauthorizedError{})
		return nil, false
	}
	return user, true
}
