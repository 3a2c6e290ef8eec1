package account

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Directory is the /system_user/summary document: one row per system-user
// account, read by the admin console's user list.
type Directory interface {
	Put(ctx context.Context, uid string, row SystemUserRow) error
	Remove(ctx context.Context, uid string) error
	Rows(ctx context.Context) (map[string]SystemUserRow, error)
	Empty(ctx context.Context) (bool, error)
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) summaryDoc() *firestore.DocumentRef {
	return r.fs.Collection("system_user").Doc("summary")
}

func (r *Repo) Put(ctx context.Context, uid string, row SystemUserRow) error {
	_, err := r.summaryDoc().Set(ctx, map[string]any{uid: row}, firestore.Merge(firestore.FieldPath{uid}))
	if err != nil {
		return fmt.Errorf("failed to write system user summary: %w", err)
	}
	return nil
}

func (r *Repo) Remove(ctx context.Context, uid string) error {
	_, err := r.summaryDoc().Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{uid}, Value: firestore.Delete},
	})
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to remove system user summary: %w", err)
	}
	return nil
}

func (r *Repo) Rows(ctx context.Context) (map[string]SystemUserRow, error) {
	snap, err := r.summaryDoc().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return map[string]SystemUserRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read system user summary: %w", err)
	}
	out := make(map[string]SystemUserRow, len(snap.Data()))
	for uid, v := range snap.Data() {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		var row SystemUserRow
		row.Name, _ = m["name"].(string)
		row.Email, _ = m["email"].(string)
		row.Role, _ = m["role"].(string)
		out[uid] = row
	}
	return out, nil
}

func (r *Repo) Empty(ctx context.Context) (bool, error) {
	rows, err := r.Rows(ctx)
	if err != nil {
		return false, err
	}
	return len(rows) == 0, nil
}
