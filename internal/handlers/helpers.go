package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hospital-app-server/internal/authz"
	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var statusByCode = map[string]int{
	"AlreadyProcessed":     http.StatusBadRequest,
	"MissingRequiredField": http.StatusBadRequest,
	"InvalidStatusValue":   http.StatusBadRequest,
	"PreconditionFailed":   http.StatusBadRequest,
	"InvalidInput":         http.StatusBadRequest,
	"NotFound":             http.StatusNotFound,
	"Forbidden":            http.StatusForbidden,
	"Conflict":             http.StatusConflict,
	"Unauthorized":         http.StatusUnauthorized,
}

// respondError writes the response for a service error. Unexpected errors are
// logged and reported as 500 without their cause.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	code := services.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		utils.InternalServerError(c, "Internal server error")
		return
	}
	utils.Fail(c, status, code, err.Error())
}

// dbError reports a failed query, mapping a missing row to 404.
func dbError(c *gin.Context, logger *zap.Logger, err error, what string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFound(c, what+" not found")
		return
	}
	logger.Error("database error", zap.String("entity", what), zap.Error(err))
	utils.InternalServerError(c, "Database error")
}

func currentActor(c *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
	}
	return actor, ok
}

// bindOptionalJSON is BindAndValidate for endpoints whose body may be empty.
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

// parseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a date (YYYY-MM-DD) or RFC 3339 timestamp", services.ErrInvalidInput, raw)
	}
	return &t, nil
}
