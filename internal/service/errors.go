package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUserNotFound        = errors.New("no user found")
	ErrDiaryNotFound       = errors.New("no diary found")
	ErrMalformedJSON       = errors.New("JSON POST data required")
	ErrConcurrencyConflict = errors.New("diary changed concurrently")
)

// Field error messages returned to clients.
const (
	MsgMissing      = "Missing data for required field."
	MsgNull         = "Field may not be null."
	MsgInvalidDate  = "Not a valid date."
	MsgInvalidTime  = "Not a valid datetime."
	MsgInvalidInt   = "Not a valid integer."
	MsgInvalidValue = "Invalid value."
	MsgInvalidInput = "Invalid input type."
	MsgOnePerDay    = "No More Than One Diary For a User Per Day"
	MsgTimeOrder    = "Time out of bed must not be earlier than time into bed."
)

// SchemaKey holds errors about the body as a whole.
const SchemaKey = "_schema"

// FieldErrors maps a JSON field name to its messages in the order found.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// ValidationError carries field-level failures back to the caller.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
