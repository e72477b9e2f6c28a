package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"workspace-service/internal/apperror"
	"workspace-service/internal/service"
	"workspace-service/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler serves the HTTP API on top of the resource services
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Validator adapts validator/v10 to echo
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperror.Validation(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	}
	return field + " is invalid"
}

// bind decodes and validates a request
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		logger.FromContext(c).Warn("Failed to parse request", zap.Error(err))
		return apperror.Validation("invalid request")
	}
	return c.Validate(req)
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"data": data})
}

func deleted(c echo.Context, id string) error {
	return respond(c, http.StatusOK, echo.Map{"id": id})
}

// ErrorHandler renders every failure as {"error": message, "code": code}
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   echo.Map
	)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		body = echo.Map{"error": fmt.Sprint(he.Message), "code": httpCode(he.Code)}
	} else {
		appErr := apperror.As(err)
		status = appErr.Status()
		body = echo.Map{"error": appErr.Message, "code": appErr.Code.Code}
		if status >= http.StatusInternalServerError {
			logger.FromContext(c).Error("Request failed",
				zap.String("code", appErr.Code.Code),
				zap.Error(err))
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.FromContext(c).Error("Failed to write error response", zap.Error(err))
	}
}

func httpCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return apperror.CodeUnauthorized.Code
	case http.StatusNotFound:
		return apperror.CodeNotFound.Code
	case http.StatusBadRequest:
		return apperror.CodeValidation.Code
	}
	if status >= http.StatusInternalServerError {
		return apperror.CodeInternal.Code
	}
	return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
