package member

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gym-manager/backend/internal/utils"
)

// Store is the document-store slice the account service uses for member
// records.
type Store interface {
	// AllocateID reserves the next sequential member id (ri_0001 style) and
	// writes the summary row under it in one atomic step.
	AllocateID(ctx context.Context, s Summary) (string, error)
	PutDetail(ctx context.Context, d Detail) error
	Summaries(ctx context.Context) (map[string]Summary, error)
	Delete(ctx context.Context, memberID string) error
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) summaryDoc() *firestore.DocumentRef {
	return r.fs.Collection("member_list").Doc("summary")
}

func (r *Repo) detailDoc(memberID string) *firestore.DocumentRef {
	return r.fs.Collection("member_list").Doc(memberID)
}

func (r *Repo) AllocateID(ctx context.Context, s Summary) (string, error) {
	ref := r.summaryDoc()
	var id string
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		count := 0
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			// first member creates the summary
		case err != nil:
			return err
		default:
			count = len(snap.Data())
		}
		id = fmt.Sprintf("ri_%04d", count+1)
		return tx.Set(ref, map[string]any{id: s}, firestore.Merge(firestore.FieldPath{id}))
	})
	if err != nil {
		return "", fmt.Errorf("failed to allocate member id: %w", err)
	}
	return id, nil
}

func (r *Repo) PutDetail(ctx context.Context, d Detail) error {
	d.SearchTokens = utils.SearchTokens(d.Name, d.Email, utils.Slugify(d.Name))
	_, err := r.detailDoc(d.ID).Set(ctx, d)
	if err != nil {
		return fmt.Errorf("failed to write member %s: %w", d.ID, err)
	}
	return nil
}

func (r *Repo) Summaries(ctx context.Context) (map[string]Summary, error) {
	snap, err := r.summaryDoc().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return map[string]Summary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read member summary: %w", err)
	}
	out := make(map[string]Summary, len(snap.Data()))
	for id, v := range snap.Data() {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		var s Summary
		s.Name, _ = m["name"].(string)
		s.Email, _ = m["email"].(string)
		s.Mobile, _ = m["mobile"].(string)
		s.JoinDate, _ = m["joinDate"].(string)
		out[id] = s
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, memberID string) error {
	if _, err := r.detailDoc(memberID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete member %s: %w", memberID, err)
	}
	_, err := r.summaryDoc().Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{memberID}, Value: firestore.Delete},
	})
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to delete member summary %s: %w", memberID, err)
	}
	return nil
}
