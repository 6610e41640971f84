package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResponseData is the envelope of every JSON response. Code names the error kind
// on failures so clients can branch without parsing Error.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// Success sends a 200 response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Fail sends an error response carrying an error kind.
func Fail(c *gin.Context, statusCode int, code, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: "An error occurred",
		Error:   errorMessage,
		Code:    code,
	})
}

func BadRequest(c *gin.Context, errorMessage string) {
	Fail(c, http.StatusBadRequest, "InvalidInput", errorMessage)
}

func Unauthorized(c *gin.Context, errorMessage string) {
	Fail(c, http.StatusUnauthorized, "Unauthorized", errorMessage)
}

func Forbidden(c *gin.Context, errorMessage string) {
	Fail(c, http.StatusForbidden, "Forbidden", errorMessage)
}

func NotFound(c *gin.Context, errorMessage string) {
	Fail(c, http.StatusNotFound, "NotFound", errorMessage)
}

func Conflict(c *gin.Context, errorMessage string) {
	Fail(c, http.StatusConflict, "Conflict", errorMessage)
}

// InternalServerError hides the cause; log it before calling.
func InternalServerError(c *gin.Context, errorMessage string) {
	Fail(c, http.StatusInternalServerError, "", errorMessage)
}
