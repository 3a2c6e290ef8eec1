package roster

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store is the slice of the document store the roster service uses. The
// Firestore repo implements it for /class_list/{date}; tests use an
// in-memory fake.
type Store interface {
	// Day returns the full class set for a date, ErrDayNotFound when the
	// date document does not exist.
	Day(ctx context.Context, date string) (DailyClassSet, error)
	// AddSlot adds one class under its key, creating the date document when
	// absent. ErrDuplicateSlot when the key is already present.
	AddSlot(ctx context.Context, date, key string, c ClassInstance) error
	// CreateDay writes a whole class set for a date that must not exist yet.
	// ErrDayExists otherwise.
	CreateDay(ctx context.Context, date string, set DailyClassSet) error
	// DeleteSlot removes one key from the date's set. Siblings are untouched.
	DeleteSlot(ctx context.Context, date, key string) error
	// MutateSlot atomically applies fn to the current slot value and writes
	// the result back. fn errors abort the write and propagate unchanged.
	MutateSlot(ctx context.Context, date, key string, fn func(ClassInstance) (ClassInstance, error)) (ClassInstance, error)
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) dayDoc(date string) *firestore.DocumentRef {
	return r.fs.Collection("class_list").Doc(date)
}

func (r *Repo) Day(ctx context.Context, date string) (DailyClassSet, error) {
	snap, err := r.dayDoc(date).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: %s", ErrDayNotFound, date)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read classes for %s: %w", date, err)
	}
	return setFromData(snap.Data()), nil
}

func (r *Repo) AddSlot(ctx context.Context, date, key string, c ClassInstance) error {
	ref := r.dayDoc(date)
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return tx.Set(ref, map[string]any{key: c})
		}
		if err != nil {
			return err
		}
		if _, exists := snap.Data()[key]; exists {
			return fmt.Errorf("%w: %s %s", ErrDuplicateSlot, date, c.Time)
		}
		return tx.Update(ref, []firestore.Update{{FieldPath: firestore.FieldPath{key}, Value: c}})
	})
}

func (r *Repo) CreateDay(ctx context.Context, date string, set DailyClassSet) error {
	data := make(map[string]any, len(set))
	for k, c := range set {
		data[k] = c
	}
	_, err := r.dayDoc(date).Create(ctx, data)
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("%w: %s", ErrDayExists, date)
	}
	if err != nil {
		return fmt.Errorf("failed to create classes for %s: %w", date, err)
	}
	return nil
}

func (r *Repo) DeleteSlot(ctx context.Context, date, key string) error {
	_, err := r.dayDoc(date).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{key}, Value: firestore.Delete},
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s", ErrDayNotFound, date)
	}
	if err != nil {
		return fmt.Errorf("failed to delete class %s %s: %w", date, key, err)
	}
	return nil
}

func (r *Repo) MutateSlot(ctx context.Context, date, key string, fn func(ClassInstance) (ClassInstance, error)) (ClassInstance, error) {
	ref := r.dayDoc(date)
	var out ClassInstance
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", ErrDayNotFound, date)
		}
		if err != nil {
			return err
		}
		cur, ok := ClassFromData(snap.Data()[key])
		if !ok {
			return fmt.Errorf("%w: %s %s", ErrSlotNotFound, date, key)
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		out = next
		return tx.Update(ref, []firestore.Update{{FieldPath: firestore.FieldPath{key}, Value: next}})
	})
	if err != nil {
		return ClassInstance{}, err
	}
	return out, nil
}

// setFromData decodes a date document into a DailyClassSet, skipping fields
// that do not look like class slots.
func setFromData(data map[string]any) DailyClassSet {
	set := make(DailyClassSet, len(data))
	for k, v := range data {
		if c, ok := ClassFromData(v); ok {
			set[k] = c
		}
	}
	return set
}

// ClassFromData decodes one slot value from a document's raw field map. The
// template repo reuses it for nested weekday fields.
func ClassFromData(v any) (ClassInstance, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return ClassInstance{}, false
	}
	c := ClassInstance{Attendees: map[string]string{}}
	c.Time, _ = m["time"].(string)
	c.Duration = asInt(m["duration"])
	c.ClassType, _ = m["classType"].(string)
	c.Instructor, _ = m["instructor"].(string)
	c.MaxAttendees = asInt(m["maxAttendees"])
	if att, ok := m["attendees"].(map[string]any); ok {
		for id, name := range att {
			if s, ok := name.(string); ok {
				c.Attendees[id] = s
			}
		}
	}
	if c.Time == "" {
		return ClassInstance{}, false
	}
	return c, true
}

// asInt handles the integer types Firestore decoding produces.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
