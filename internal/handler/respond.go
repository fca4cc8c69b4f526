package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/apperr"
	"github.com/iliyamo/venue-booking/internal/middleware"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

// statusError forces a specific HTTP status for a classified error; profile
// updates report field errors as 422 instead of 400.
type statusError struct {
	status int
	err    *apperr.Error
}

func (s *statusError) Error() string { return s.err.Error() }
func (s *statusError) Unwrap() error { return s.err }

func unprocessable(fields []apperr.FieldError) error {
	return &statusError{status: http.StatusUnprocessableEntity, err: apperr.InvalidFields("invalid profile", fields)}
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:   http.StatusBadRequest,
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindConflict:     http.StatusConflict,
	apperr.KindUnauthorized: http.StatusUnauthorized,
	apperr.KindForbidden:    http.StatusForbidden,
}

// errorResponse maps err to a status code and body.  Unclassified errors
// become a bare 500 so that driver messages never reach clients.
func errorResponse(err error) (int, errorBody) {
	var se *statusError
	if errors.As(err, &se) {
		return se.status, errorBody{Error: se.err.Message, Code: se.err.Code, Fields: se.err.Fields}
	}
	if ae, ok := apperr.As(err); ok {
		if status, ok := kindStatus[ae.Kind]; ok {
			return status, errorBody{Error: ae.Message, Code: ae.Code, Fields: ae.Fields}
		}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, errorBody{Error: msg, Code: strings.ReplaceAll(strings.ToLower(http.StatusText(he.Code)), " ", "_")}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal server error", Code: "internal"}
}

// ErrorHandler is installed as echo's HTTPErrorHandler.  Handlers return
// errors and this writes them; 5xx responses are logged with the cause.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", zap.String("method", c.Request().Method),
				zap.String("path", c.Path()), zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

// bind decodes the request body, reporting failures as a validation error.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return apperr.Validation("invalid_body", "invalid request body")
	}
	return nil
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid_id", name+" must be a positive integer")
	}
	return id, nil
}

// currentUser returns the authenticated user id set by the JWT middleware.
func currentUser(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, apperr.Unauthorized("authentication required")
	}
	return id, nil
}

func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}
