// Package response contains response utility functions and types
package response

import (
	"errors"
	"net/http"

	"github.com/cubetrack/wcifhistoryapi/internal/apperror"
	"github.com/labstack/echo/v4"
)

// Response represents the standard API response structure
type Response struct {
	Status    string      `json:"status"`
	Data      interface{} `json:"data,omitempty"`
	ErrorType string      `json:"error_type,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// SuccessResponse sends a successful JSON response
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// ErrorResponse sends an error JSON response
func ErrorResponse(c echo.Context, httpStatus int, errorType, message string) error {
	return c.JSON(httpStatus, Response{
		Status:    "error",
		ErrorType: errorType,
		Message:   message,
	})
}

// AppErrorResponse maps an error to its HTTP response by kind:
// auth errors become 401, missing resources 404, upstream API failures
// 502, everything else 500.
func AppErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperror.ErrAuth):
		return ErrorResponse(c, http.StatusUnauthorized, "AuthorizationException", err.Error())
	case errors.Is(err, apperror.ErrNotFound):
		return ErrorResponse(c, http.StatusNotFound, "NotFoundException", err.Error())
	case errors.Is(err, apperror.ErrUpstream):
		return ErrorResponse(c, http.StatusBadGateway, "UpstreamException", err.Error())
	default:
		return ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
}
