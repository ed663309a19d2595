package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("storage: record not found")
	ErrConstraintViolation = errors.New("storage: constraint violation")
)

// Constraint names match the schema in migrations/.
type Constraint string

const (
	ConstraintSleepQuality Constraint = "sleep_quality_constraint"
	ConstraintTimeSlept    Constraint = "positive_time_slept_constraint"
	ConstraintDiaryPerDay  Constraint = "sleep_per_day_constraint"
	ConstraintUserRef      Constraint = "diaries_user_id_fkey"
	ConstraintUnknown      Constraint = "unknown"
)

// ConstraintError is returned when the database rejects a write.
type ConstraintError struct {
	Constraint Constraint
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("storage: constraint %s violated: %v", e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraintViolation }
