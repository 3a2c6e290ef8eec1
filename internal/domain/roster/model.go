package roster

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ClassInstance is one scheduled class occurrence on one date. Attendees maps
// memberId to display name. The document field names match what the web
// clients read directly from Firestore.
type ClassInstance struct {
	Time         string            `firestore:"time" json:"time"` // "HH:MM"
	Duration     int               `firestore:"duration" json:"duration"`
	ClassType    string            `firestore:"classType" json:"classType"`
	Instructor   string            `firestore:"instructor" json:"instructor"`
	MaxAttendees int               `firestore:"maxAttendees" json:"maxAttendees"`
	Attendees    map[string]string `firestore:"attendees" json:"attendees"`
}

// DailyClassSet maps slot key ("am_HHMM"/"pm_HHMM") to class instance. One
// set is owned exclusively by its date document /class_list/{YYYY-MM-DD}.
type DailyClassSet map[string]ClassInstance

var timeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
var keyRe = regexp.MustCompile(`^(am|pm)_([01][0-9]|2[0-3])([0-5][0-9])$`)

func ValidTime(t string) bool { return timeRe.MatchString(t) }

func ValidDate(d string) bool {
	if !dateRe.MatchString(d) {
		return false
	}
	_, err := time.Parse("2006-01-02", d)
	return err == nil
}

// SlotKey derives the composite slot key from a class time: session prefix
// (am for times before noon, pm otherwise) plus the zero-padded HHMM digits.
// "14:00" -> "pm_1400".
func SlotKey(hhmm string) (string, error) {
	if !ValidTime(hhmm) {
		return "", fmt.Errorf("%w: time %q is not HH:MM", ErrBadRequest, hhmm)
	}
	session := "am"
	if hhmm >= "12:00" {
		session = "pm"
	}
	return session + "_" + strings.Replace(hhmm, ":", "", 1), nil
}

func ValidSlotKey(key string) bool { return keyRe.MatchString(key) }

// SortedKeys orders a day's slot keys for display: am before pm, then
// lexicographic within the session, which equals chronological order because
// HHMM is zero padded.
func SortedKeys(set DailyClassSet) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		si, sj := strings.HasPrefix(keys[i], "am_"), strings.HasPrefix(keys[j], "am_")
		if si != sj {
			return si
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (c ClassInstance) Validate() error {
	if !ValidTime(c.Time) {
		return fmt.Errorf("%w: time must be HH:MM", ErrBadRequest)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrBadRequest)
	}
	if c.ClassType == "" {
		return fmt.Errorf("%w: classType is required", ErrBadRequest)
	}
	if c.MaxAttendees <= 0 {
		return fmt.Errorf("%w: maxAttendees must be positive", ErrBadRequest)
	}
	return nil
}
