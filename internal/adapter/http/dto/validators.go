package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"
	"time"

	"booking-finance-engine/pkg/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// ParseDateRange parses RFC 3339 start and end dates and enforces that the
// end is strictly after the start. Date validation belongs here at the
// boundary; the pricing engine itself never rejects a range.
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	startAt, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("start_date must be RFC 3339")
	}
	endAt, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("end_date must be RFC 3339")
	}
	if !endAt.After(startAt) {
		return time.Time{}, time.Time{}, apperror.ErrInvalidDateRange()
	}
	return startAt, endAt, nil
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				s := sanitize(elem.String())
				elem.SetString(s)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
