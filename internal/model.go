package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"

	timestampLayout      = "2006-01-02T15:04:05-07:00"
	timestampMicroLayout = "2006-01-02T15:04:05.000000-07:00"

	MinYear = 1
	MaxYear = 9999
)

var ErrYearOutOfRange = fmt.Errorf("year must be between %d and %d", MinYear, MaxYear)

// InYearRange reports whether t falls in years MinYear through MaxYear, the
// range both stores can round-trip.
func InYearRange(t time.Time) bool {
	return t.Year() >= MinYear && t.Year() <= MaxYear
}

// Date is a calendar day with no time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	if !InYearRange(t) {
		return Date{}, ErrYearOutOfRange
	}
	return DateOf(t), nil
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// FormatTimestamp renders t in UTC with an explicit +00:00 offset. Fractional
// seconds are printed as microseconds only when present.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(timestampLayout)
	}
	return t.Format(timestampMicroLayout)
}

type Diary struct {
	ID           int64
	UserID       int64
	Date         Date
	TimeIntoBed  time.Time
	TimeOutOfBed time.Time
	SleepQuality int // 0 to 10
}

type diaryJSON struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"userId"`
	Date         string `json:"date"`
	TimeIntoBed  string `json:"timeIntoBed"`
	TimeOutOfBed string `json:"timeOutOfBed"`
	SleepQuality int    `json:"sleepQuality"`
}

func (d Diary) MarshalJSON() ([]byte, error) {
	return json.Marshal(diaryJSON{
		ID:           d.ID,
		UserID:       d.UserID,
		Date:         d.Date.String(),
		TimeIntoBed:  FormatTimestamp(d.TimeIntoBed),
		TimeOutOfBed: FormatTimestamp(d.TimeOutOfBed),
		SleepQuality: d.SleepQuality,
	})
}

// DiaryPatch holds normalized diary fields. A nil field is absent.
type DiaryPatch struct {
	Date         *Date      `json:"date"`
	TimeIntoBed  *time.Time `json:"timeIntoBed"`
	TimeOutOfBed *time.Time `json:"timeOutOfBed"`
	SleepQuality *int       `json:"sleepQuality" validate:"omitempty,min=0,max=10"`
}

func (p DiaryPatch) Empty() bool {
	return p.Date == nil && p.TimeIntoBed == nil && p.TimeOutOfBed == nil && p.SleepQuality == nil
}

// Complete reports whether every field is set.
func (p DiaryPatch) Complete() bool {
	return p.Date != nil && p.TimeIntoBed != nil && p.TimeOutOfBed != nil && p.SleepQuality != nil
}

// Apply copies the set fields onto d.
func (p DiaryPatch) Apply(d *Diary) {
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.TimeIntoBed != nil {
		d.TimeIntoBed = *p.TimeIntoBed
	}
	if p.TimeOutOfBed != nil {
		d.TimeOutOfBed = *p.TimeOutOfBed
	}
	if p.SleepQuality != nil {
		d.SleepQuality = *p.SleepQuality
	}
}
