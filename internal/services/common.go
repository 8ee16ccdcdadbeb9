package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode"

	intconfig "campusbus/internal/config"
	intdb "campusbus/internal/db"
	"campusbus/internal/domain"
	"campusbus/internal/repositories"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func dbOrDefault(db *sql.DB) *sql.DB {
	if db != nil {
		return db
	}
	return intconfig.DB
}

func nowOrDefault(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

// validateInput runs struct tags and reports the first failing field.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.ValidationError{Field: snakeCase(fe.Field()), Msg: validationMessage(fe), Err: err}
	}
	return domain.ValidationError{Msg: err.Error(), Err: err}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(rune(s[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lookupErr turns a repository read error into the matching domain error.
func lookupErr(err error, resource string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return domain.InternalError{Err: err}
}

// writeErr maps a repository write error, surfacing unique-key violations as conflicts.
func writeErr(err error, resource string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return domain.NotFoundError{Resource: resource, Err: err}
	case intdb.IsDuplicateKey(err):
		return domain.ConflictError{Resource: resource, Msg: "already exists", Err: err}
	default:
		return domain.InternalError{Err: err}
	}
}
