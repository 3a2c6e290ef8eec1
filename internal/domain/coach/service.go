package coach

import (
	"context"
	"fmt"
	"strings"

	"gym-manager/backend/internal/rbac"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Registry(ctx context.Context, caller *rbac.Principal) (Registry, error) {
	if err := s.requireStaff(caller); err != nil {
		return Registry{}, err
	}
	return s.store.Registry(ctx)
}

// AddClassType appends a new type and back-fills a false qualification into
// every coach's map, keeping the maps total over the type list.
func (s *Service) AddClassType(ctx context.Context, caller *rbac.Principal, name string) error {
	name = strings.TrimSpace(name)
	if err := s.requireStaff(caller); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: class type name is required", ErrBadRequest)
	}
	return s.store.MutateRegistry(ctx, func(cur Registry) (Registry, error) {
		if cur.HasClassType(name) {
			return Registry{}, fmt.Errorf("%w: %s", ErrClassTypeExists, name)
		}
		next := cur.clone()
		next.ClassTypes = append(next.ClassTypes, name)
		for _, quals := range next.Coaches {
			quals[name] = false
		}
		return next, nil
	})
}

// RemoveClassType drops the type from the list and from every coach's map.
func (s *Service) RemoveClassType(ctx context.Context, caller *rbac.Principal, name string) error {
	name = strings.TrimSpace(name)
	if err := s.requireStaff(caller); err != nil {
		return err
	}
	return s.store.MutateRegistry(ctx, func(cur Registry) (Registry, error) {
		if !cur.HasClassType(name) {
			return Registry{}, fmt.Errorf("%w: %s", ErrClassTypeNotFound, name)
		}
		next := cur.clone()
		kept := next.ClassTypes[:0]
		for _, t := range next.ClassTypes {
			if t != name {
				kept = append(kept, t)
			}
		}
		next.ClassTypes = kept
		for _, quals := range next.Coaches {
			delete(quals, name)
		}
		return next, nil
	})
}

// UpsertCoach creates or replaces a coach's qualification map. Unknown
// qualification types are rejected; types the caller omits are back-filled
// false.
func (s *Service) UpsertCoach(ctx context.Context, caller *rbac.Principal, name string, qualifications map[string]bool) error {
	name = strings.TrimSpace(name)
	if err := s.requireStaff(caller); err != nil {
		return err
	}
	if name == "" || name == "classType" {
		return fmt.Errorf("%w: invalid coach name", ErrBadRequest)
	}
	return s.store.MutateRegistry(ctx, func(cur Registry) (Registry, error) {
		for t := range qualifications {
			if !cur.HasClassType(t) {
				return Registry{}, fmt.Errorf("%w: %s", ErrClassTypeNotFound, t)
			}
		}
		next := cur.clone()
		m := make(map[string]bool, len(next.ClassTypes))
		for _, t := range next.ClassTypes {
			m[t] = qualifications[t]
		}
		next.Coaches[name] = m
		return next, nil
	})
}

func (s *Service) RemoveCoach(ctx context.Context, caller *rbac.Principal, name string) error {
	name = strings.TrimSpace(name)
	if err := s.requireStaff(caller); err != nil {
		return err
	}
	return s.store.MutateRegistry(ctx, func(cur Registry) (Registry, error) {
		if _, ok := cur.Coaches[name]; !ok {
			return Registry{}, fmt.Errorf("%w: %s", ErrCoachNotFound, name)
		}
		next := cur.clone()
		delete(next.Coaches, name)
		return next, nil
	})
}

// Qualified implements roster.CoachDirectory. An unregistered coach or a
// false flag both report unqualified.
func (s *Service) Qualified(ctx context.Context, coach, classType string) (bool, error) {
	reg, err := s.store.Registry(ctx)
	if err != nil {
		return false, err
	}
	quals, ok := reg.Coaches[coach]
	if !ok {
		return false, nil
	}
	return quals[classType], nil
}

func (s *Service) requireStaff(caller *rbac.Principal) error {
	if caller == nil || !caller.IsStaff() {
		return fmt.Errorf("%w: staff role required", ErrUnauthorized)
	}
	return nil
}
