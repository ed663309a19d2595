package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yourname/sleepdiary/internal"
	"github.com/yourname/sleepdiary/internal/storage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Mode selects whether absent fields are errors.
type Mode int

const (
	// ModeFull requires every diary field (create).
	ModeFull Mode = iota
	// ModePartial checks only the supplied fields (update).
	ModePartial
)

const (
	fieldDate         = "date"
	fieldTimeIntoBed  = "timeIntoBed"
	fieldTimeOutOfBed = "timeOutOfBed"
	fieldSleepQuality = "sleepQuality"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
}

// ValidationContext tells the cross-record rules who is writing and what.
type ValidationContext struct {
	UserID int64
	// ExcludeID is the diary being updated, zero on create.
	ExcludeID int64
	// Current is the stored record on update; its values fill in for
	// fields the patch leaves out.
	Current *internal.Diary
}

// DecodeDiary turns a request body into a normalized patch. A body that is
// not JSON at all yields ErrMalformedJSON; everything else, including a JSON
// null, is reported per field.
func DecodeDiary(body []byte, mode Mode) (internal.DiaryPatch, FieldErrors, error) {
	var patch internal.DiaryPatch
	fe := FieldErrors{}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		return patch, nil, ErrMalformedJSON
	}
	if body[0] != '{' {
		fe.Add(SchemaKey, MsgInvalidInput)
		return patch, fe, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return patch, nil, ErrMalformedJSON
	}

	for _, name := range []string{fieldDate, fieldTimeIntoBed, fieldTimeOutOfBed, fieldSleepQuality} {
		raw, ok := fields[name]
		if !ok {
			if mode == ModeFull {
				fe.Add(name, MsgMissing)
			}
			continue
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			fe.Add(name, MsgNull)
			continue
		}

		switch name {
		case fieldDate:
			d, ok := parseDate(raw)
			if !ok {
				fe.Add(name, MsgInvalidDate)
				continue
			}
			patch.Date = &d
		case fieldTimeIntoBed, fieldTimeOutOfBed:
			t, ok := parseTimestamp(raw)
			if !ok {
				fe.Add(name, MsgInvalidTime)
				continue
			}
			if name == fieldTimeIntoBed {
				patch.TimeIntoBed = &t
			} else {
				patch.TimeOutOfBed = &t
			}
		case fieldSleepQuality:
			n, ok := parseInt(raw)
			if !ok {
				fe.Add(name, MsgInvalidInt)
				continue
			}
			patch.SleepQuality = &n
		}
	}

	if err := validate.Struct(&patch); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return patch, nil, err
		}
		for _, e := range verrs {
			fe.Add(e.Field(), MsgInvalidValue)
		}
	}
	return patch, fe, nil
}

// ValidateDiary decodes body and applies the cross-field and cross-record
// rules against tx. Field failures come back as *ValidationError.
func ValidateDiary(ctx context.Context, tx storage.Tx, body []byte, mode Mode, vc ValidationContext) (internal.DiaryPatch, error) {
	patch, fe, err := DecodeDiary(body, mode)
	if err != nil {
		return patch, err
	}
	if fe.Has(SchemaKey) {
		return patch, &ValidationError{Fields: fe}
	}

	checkTimeOrder(patch, fe, vc.Current)

	// Day uniqueness goes last and needs a parsed date.
	if patch.Date != nil {
		taken, err := tx.DiaryDateTaken(ctx, vc.UserID, *patch.Date, vc.ExcludeID)
		if err != nil {
			return patch, err
		}
		if taken {
			fe.Add(fieldDate, MsgOnePerDay)
		}
	}

	if len(fe) > 0 {
		return patch, &ValidationError{Fields: fe}
	}
	return patch, nil
}

func checkTimeOrder(patch internal.DiaryPatch, fe FieldErrors, current *internal.Diary) {
	if fe.Has(fieldTimeIntoBed) || fe.Has(fieldTimeOutOfBed) {
		return
	}
	into, out := patch.TimeIntoBed, patch.TimeOutOfBed
	if current != nil {
		if into == nil {
			into = &current.TimeIntoBed
		}
		if out == nil {
			out = &current.TimeOutOfBed
		}
	}
	if into == nil || out == nil {
		return
	}
	if out.Before(*into) {
		fe.Add(fieldTimeOutOfBed, MsgTimeOrder)
	}
}

func parseDate(raw json.RawMessage) (internal.Date, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return internal.Date{}, false
	}
	d, err := internal.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return internal.Date{}, false
	}
	return d, true
}

// parseTimestamp accepts ISO 8601 timestamps with or without an offset.
// Values without one are taken as UTC. The UTC value must stay within years
// 1 to 9999.
func parseTimestamp(raw json.RawMessage) (time.Time, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t = t.UTC().Truncate(time.Microsecond)
		if !internal.InYearRange(t) {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// parseInt accepts JSON integers, integral floats and integer strings.
// Booleans are rejected.
func parseInt(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		return n, err == nil
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		return clampInt(float64(n)), true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return clampInt(f), true
}

// clampInt keeps huge values out of range without overflowing int.
func clampInt(f float64) int {
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	default:
		return int(f)
	}
}
