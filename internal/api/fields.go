package api

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// dateLayout is the wire format for dates (DD.MM.YYYY).
const dateLayout = "02.01.2006"

// maxAgeYears bounds how far back a birthday may lie.
const maxAgeYears = 70

// FieldErrors maps field names to validation messages. It marshals directly
// into the error envelope of a 422 response.
type FieldErrors map[string]string

func (e FieldErrors) add(field, format string, args ...any) {
	e[field] = fmt.Sprintf(format, args...)
}

// present reports whether the field exists in the payload with a non-null
// value. JSON null is treated the same as an absent key.
func present(data map[string]any, field string) bool {
	v, ok := data[field]
	return ok && v != nil
}

// stringField extracts an optional string field. A missing field yields
// ("", false, nil); a present non-string value is an error.
func stringField(data map[string]any, field string) (string, bool, error) {
	if !present(data, field) {
		return "", false, nil
	}
	s, ok := data[field].(string)
	if !ok {
		return "", false, fmt.Errorf("value must be a string")
	}
	return s, true, nil
}

// requiredString extracts a mandatory string field.
func requiredString(data map[string]any, field string, errs FieldErrors) (string, bool) {
	s, ok, err := stringField(data, field)
	if err != nil {
		errs.add(field, "%s", err)
		return "", false
	}
	if !ok {
		errs.add(field, "field is required")
		return "", false
	}
	return s, true
}

// emailField validates an optional email: any string containing '@'.
func emailField(data map[string]any, field string, errs FieldErrors) (string, bool) {
	s, ok, err := stringField(data, field)
	if err != nil {
		errs.add(field, "%s", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	if !strings.Contains(s, "@") {
		errs.add(field, "invalid email")
		return "", false
	}
	return s, true
}

// phoneField validates an optional phone number, accepted as a string or a
// JSON number: 11 digits starting with 7.
func phoneField(data map[string]any, field string, errs FieldErrors) (string, bool) {
	if !present(data, field) {
		return "", false
	}

	var s string
	switch v := data[field].(type) {
	case string:
		s = v
	case float64:
		if v != math.Trunc(v) {
			errs.add(field, "invalid phone")
			return "", false
		}
		s = fmt.Sprintf("%.0f", v)
	default:
		errs.add(field, "phone must be string or int")
		return "", false
	}

	if len(s) != 11 || !strings.HasPrefix(s, "7") {
		errs.add(field, "invalid phone")
		return "", false
	}
	return s, true
}

// dateField validates an optional DD.MM.YYYY date.
func dateField(data map[string]any, field string, errs FieldErrors) (time.Time, bool) {
	s, ok, err := stringField(data, field)
	if err != nil {
		errs.add(field, "date must be string")
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		errs.add(field, "invalid date format")
		return time.Time{}, false
	}
	return t, true
}

// birthdayField validates an optional birthday: a date no more than
// maxAgeYears in the past.
func birthdayField(data map[string]any, field string, now time.Time, errs FieldErrors) (time.Time, bool) {
	t, ok := dateField(data, field, errs)
	if !ok {
		return time.Time{}, false
	}
	age := int(now.Sub(t).Hours() / 24 / 365)
	if age > maxAgeYears {
		errs.add(field, "invalid birthday")
		return time.Time{}, false
	}
	return t, true
}

// genderField validates an optional gender: integer 0 (unknown), 1 (male)
// or 2 (female).
func genderField(data map[string]any, field string, errs FieldErrors) (int, bool) {
	if !present(data, field) {
		return 0, false
	}
	f, ok := data[field].(float64)
	if !ok || f != math.Trunc(f) {
		errs.add(field, "gender must be int")
		return 0, false
	}
	g := int(f)
	if g < 0 || g > 2 {
		errs.add(field, "invalid gender")
		return 0, false
	}
	return g, true
}

// clientIDsField validates a mandatory non-empty list of integer client IDs.
func clientIDsField(data map[string]any, field string, errs FieldErrors) ([]int, bool) {
	if !present(data, field) {
		errs.add(field, "client_ids must be non-empty list")
		return nil, false
	}
	list, ok := data[field].([]any)
	if !ok || len(list) == 0 {
		errs.add(field, "client_ids must be non-empty list")
		return nil, false
	}
	ids := make([]int, 0, len(list))
	for _, item := range list {
		f, ok := item.(float64)
		if !ok || f != math.Trunc(f) {
			errs.add(field, "client_ids must contain ints")
			return nil, false
		}
		ids = append(ids, int(f))
	}
	return ids, true
}
