package template

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gym-manager/backend/internal/domain/roster"
)

// Store is the document-store slice for the weekly template singleton.
// Writers merge per weekday field so concurrent edits to other weekdays are
// preserved.
type Store interface {
	// Weekly returns the full template. A missing document is an empty
	// template, not an error.
	Weekly(ctx context.Context) (Weekly, error)
	// Weekday returns one weekday's template day, empty when unset.
	Weekday(ctx context.Context, day string) (roster.DailyClassSet, error)
	// MutateWeekday atomically applies fn to one weekday's template day and
	// writes the result back as a single field merge.
	MutateWeekday(ctx context.Context, day string, fn func(roster.DailyClassSet) (roster.DailyClassSet, error)) error
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) doc() *firestore.DocumentRef {
	return r.fs.Collection("class_list").Doc("template")
}

func (r *Repo) Weekly(ctx context.Context) (Weekly, error) {
	snap, err := r.doc().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Weekly{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return weeklyFromData(snap.Data()), nil
}

func (r *Repo) Weekday(ctx context.Context, day string) (roster.DailyClassSet, error) {
	w, err := r.Weekly(ctx)
	if err != nil {
		return nil, err
	}
	set := w[day]
	if set == nil {
		set = roster.DailyClassSet{}
	}
	return set, nil
}

func (r *Repo) MutateWeekday(ctx context.Context, day string, fn func(roster.DailyClassSet) (roster.DailyClassSet, error)) error {
	ref := r.doc()
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		cur := roster.DailyClassSet{}
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			// first template write creates the document
		case err != nil:
			return err
		default:
			cur = dayFromData(snap.Data()[day])
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		return tx.Set(ref, map[string]any{day: next}, firestore.Merge(firestore.FieldPath{day}))
	})
}

func weeklyFromData(data map[string]any) Weekly {
	w := make(Weekly, len(data))
	for day, v := range data {
		if !ValidWeekday(day) {
			continue
		}
		w[day] = dayFromData(v)
	}
	return w
}

func dayFromData(v any) roster.DailyClassSet {
	m, ok := v.(map[string]any)
	if !ok {
		return roster.DailyClassSet{}
	}
	set := make(roster.DailyClassSet, len(m))
	for key, cv := range m {
		if c, ok := roster.ClassFromData(cv); ok {
			set[key] = c
		}
	}
	return set
}
