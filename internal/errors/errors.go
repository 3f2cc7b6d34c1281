package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// AppError is the only error shape that reaches a client. Message and Details
// are safe to show; Err is logged and never serialized.
type AppError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of the error carrying a details string
func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Status:  e.Status,
		Message: e.Message,
		Details: details,
		Err:     e.Err,
	}
}

func NewAppError(status int, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, message, err)
}

func Unauthorized(message string, err error) *AppError {
	return NewAppError(http.StatusUnauthorized, message, err)
}

func Forbidden(message string, err error) *AppError {
	return NewAppError(http.StatusForbidden, message, err)
}

func NotFound(message string, err error) *AppError {
	return NewAppError(http.StatusNotFound, message, err)
}

func Conflict(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, message, err)
}

func PayloadTooLarge(message string, err error) *AppError {
	return NewAppError(http.StatusRequestEntityTooLarge, message, err)
}

func BadGateway(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, message, err)
}

func Internal(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "Internal server error", err)
}

// Configuration reports a missing server-side setting. The client sees a
// generic message, the log gets the name of what is missing.
func Configuration(missing string) *AppError {
	return NewAppError(http.StatusInternalServerError, "Server is not configured for this operation",
		fmt.Errorf("missing configuration: %s", missing))
}

// NewValidationError turns a binding error into a 400 naming the offending fields.
func NewValidationError(err error) *AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		var missing, invalid []string
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				missing = append(missing, fe.Field())
				continue
			}
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			invalid = append(invalid, fe.Field()+" ("+rule+")")
		}
		if len(missing) > 0 {
			return BadRequest("Missing required fields", err).WithDetails(strings.Join(missing, ", "))
		}
		return BadRequest("Invalid fields", err).WithDetails(strings.Join(invalid, ", "))
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return BadRequest("Invalid request body", err).WithDetails(typeErr.Field + " has the wrong type")
	case errors.As(err, &syntaxErr):
		return BadRequest("Invalid request body", err).WithDetails("malformed JSON")
	}
	return BadRequest("Invalid request body", err)
}

var registerOnce sync.Once

// RegisterJSONFieldNames makes validation errors report json field names
// instead of Go struct field names.
func RegisterJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
	})
}

// IsUniqueViolation reports whether err is a duplicate key error from either
// gorm (with TranslateError) or pgx.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsNotFound reports whether err is a missing row from either driver.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, pgx.ErrNoRows)
}

// FromDB classifies a storage error. what names the record, e.g. "Category".
func FromDB(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case IsNotFound(err):
		return NotFound(what+" not found", err)
	case IsUniqueViolation(err):
		return Conflict(what+" already exists", err)
	}
	return Internal(err)
}
