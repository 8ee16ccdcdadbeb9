package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"campusbus/internal/domain"
	"campusbus/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// Stringish tolerates string/number/bool JSON values and keeps them as text.
type Stringish string

func (s *Stringish) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case string(b) == "null" || len(b) == 0:
		*s = ""
		return nil
	case len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Stringish(str)
		return nil
	default:
		*s = Stringish(strings.Trim(string(b), `"`))
		return nil
	}
}

func (s Stringish) String() string { return strings.TrimSpace(string(s)) }

// Int parses the value as an integer, returning 0 when it is not one.
func (s Stringish) Int() int {
	n, err := strconv.Atoi(s.String())
	if err != nil {
		return 0
	}
	return n
}

func (s Stringish) Int64() int64 {
	n, err := strconv.ParseInt(s.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// firstSet returns the first non-empty value among alternative spellings of
// the same field.
func firstSet(vals ...Stringish) Stringish {
	for _, v := range vals {
		if v.String() != "" {
			return v
		}
	}
	return ""
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid payload: "+err.Error(), nil)
		return false
	}
	return true
}

// idParam parses a numeric path parameter. Non-numeric ids are reported as
// not found, like unknown ones.
func idParam(c *gin.Context, name, resource string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondDomainError(c, domain.NotFoundError{Resource: resource})
		return 0, false
	}
	return id, true
}

func requestContext(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{
		UserID:    domain.ID(middleware.UserID(c)),
		Role:      middleware.UserRole(c),
		RequestID: middleware.GetRequestID(c),
	}
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	return n
}
