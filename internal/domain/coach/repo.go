package coach

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store is the document-store slice for the coach registry singleton. All
// writes go through MutateRegistry so concurrent edits serialize instead of
// clobbering each other.
type Store interface {
	Registry(ctx context.Context) (Registry, error)
	MutateRegistry(ctx context.Context, fn func(Registry) (Registry, error)) error
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) doc() *firestore.DocumentRef {
	return r.fs.Collection("class_list").Doc("coach")
}

func (r *Repo) Registry(ctx context.Context) (Registry, error) {
	snap, err := r.doc().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Registry{Coaches: map[string]map[string]bool{}}, nil
	}
	if err != nil {
		return Registry{}, fmt.Errorf("failed to read coach registry: %w", err)
	}
	return registryFromData(snap.Data()), nil
}

func (r *Repo) MutateRegistry(ctx context.Context, fn func(Registry) (Registry, error)) error {
	ref := r.doc()
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		cur := Registry{Coaches: map[string]map[string]bool{}}
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			// first registry write creates the document
		case err != nil:
			return err
		default:
			cur = registryFromData(snap.Data())
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		// Full overwrite: removed coaches and types must disappear, and the
		// transaction serializes concurrent writers.
		return tx.Set(ref, registryToData(next))
	})
}

func registryFromData(data map[string]any) Registry {
	r := Registry{Coaches: map[string]map[string]bool{}}
	if types, ok := data["classType"].([]any); ok {
		for _, t := range types {
			if s, ok := t.(string); ok {
				r.ClassTypes = append(r.ClassTypes, s)
			}
		}
	}
	for field, v := range data {
		if field == "classType" {
			continue
		}
		quals, ok := v.(map[string]any)
		if !ok {
			continue
		}
		m := make(map[string]bool, len(quals))
		for t, q := range quals {
			if b, ok := q.(bool); ok {
				m[t] = b
			}
		}
		r.Coaches[field] = m
	}
	return r
}

func registryToData(r Registry) map[string]any {
	data := map[string]any{"classType": r.ClassTypes}
	for name, quals := range r.Coaches {
		data[name] = quals
	}
	return data
}
