package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "abcstore/pkg/errors"
)

// Pagination is the list-view paging block.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

// Paginated shapes a product list response: items under the given key,
// paging block alongside.
func Paginated(c echo.Context, key string, items interface{}, page, limit int, total int64) error {
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		key: items,
		"pagination": Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	})
}

// Error maps application and validation errors onto the wire contract:
// {"error": message, "details": [...]} with the status the error carries.
func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return handleValidationError(c, validationErr)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body := ErrorBody{Error: appErr.Message}
		for _, d := range appErr.Details {
			body.Details = append(body.Details, d.String())
		}
		if len(body.Details) > 0 {
			body.Error = "Validation failed"
		}
		return c.JSON(appErr.Status, body)
	}

	return c.JSON(http.StatusInternalServerError, ErrorBody{
		Error: "An unexpected error occurred",
	})
}

func handleValidationError(c echo.Context, validationErr validator.ValidationErrors) error {
	details := make([]string, 0, len(validationErr))
	for _, err := range validationErr {
		field := strings.ToLower(err.Field())
		tag := err.Tag()
		param := err.Param()

		var message string
		switch tag {
		case "required":
			message = field + " is required"
		case "min":
			message = field + " must be at least " + param
		case "max":
			message = field + " must be at most " + param
		case "gt":
			message = field + " must be greater than " + param
		case "lte":
			message = field + " must be at most " + param
		case "oneof":
			message = field + " must be one of: " + param
		case "email":
			message = field + " must be a valid email address"
		default:
			message = field + " is invalid"
		}
		details = append(details, field+": "+message)
	}

	return c.JSON(http.StatusBadRequest, ErrorBody{
		Error:   "Validation failed",
		Details: details,
	})
}
