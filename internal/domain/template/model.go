package template

import (
	"time"

	"gym-manager/backend/internal/domain/roster"
)

// Weekly maps weekday key ("mon".."sun") to a template day: the same shape
// as a roster DailyClassSet but with attendees always empty. A template is a
// stencil, not a live schedule.
type Weekly map[string]roster.DailyClassSet

var weekdayKeys = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

func ValidWeekday(day string) bool {
	_, ok := weekdayKeys[day]
	return ok
}

func weekdayOf(day string) time.Weekday { return weekdayKeys[day] }

// Outcome of applying a template to one calendar date.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// DateResult reports what actually happened to one target date, recorded as
// the write completes rather than partitioned up front.
type DateResult struct {
	Date    string  `json:"date"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}
