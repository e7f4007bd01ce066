// Package relation implements add-once / remove-once membership between a
// user and a target: favorite recipes, shopping cart entries and author
// subscriptions.
package relation

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-dz/foodgram/internal/metrics"
)

type Kind string

const (
	Favorite     Kind = "favorite"
	Cart         Kind = "shopping_cart"
	Subscription Kind = "subscription"
)

var (
	ErrNotFound      = errors.New("target not found")
	ErrConflict      = errors.New("relation conflict")
	ErrSelfReference = errors.New("cannot subscribe to yourself")
	ErrUnknownKind   = errors.New("unknown relation kind")
)

// Store persists relation rows. Insert must return ErrConflict when the
// (user, target) pair already exists; uniqueness is enforced by the store,
// not by a prior read. Delete reports whether a row was removed.
type Store interface {
	TargetExists(ctx context.Context, kind Kind, target int64) (bool, error)
	Insert(ctx context.Context, kind Kind, user, target int64) error
	Delete(ctx context.Context, kind Kind, user, target int64) (bool, error)
}

type Toggle struct {
	store Store
}

func New(store Store) *Toggle {
	return &Toggle{store: store}
}

func (k Kind) valid() bool {
	switch k {
	case Favorite, Cart, Subscription:
		return true
	}
	return false
}

// Add creates the (user, target) relation exactly once.
func (t *Toggle) Add(ctx context.Context, kind Kind, user, target int64) error {
	err := t.add(ctx, kind, user, target)
	metrics.RecordRelationToggle(string(kind), "add", result(err))
	return err
}

func (t *Toggle) add(ctx context.Context, kind Kind, user, target int64) error {
	if !kind.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if err := t.ensureTarget(ctx, kind, target); err != nil {
		return err
	}

	if kind == Subscription && user == target {
		return ErrSelfReference
	}

	if err := t.store.Insert(ctx, kind, user, target); err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrSelfReference) || errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("inserting %s: %w", kind, err)
	}
	return nil
}

// Remove deletes the (user, target) relation. Removing a relation that
// does not exist is a conflict.
func (t *Toggle) Remove(ctx context.Context, kind Kind, user, target int64) error {
	err := t.remove(ctx, kind, user, target)
	metrics.RecordRelationToggle(string(kind), "remove", result(err))
	return err
}

func (t *Toggle) remove(ctx context.Context, kind Kind, user, target int64) error {
	if !kind.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if err := t.ensureTarget(ctx, kind, target); err != nil {
		return err
	}

	deleted, err := t.store.Delete(ctx, kind, user, target)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", kind, err)
	}
	if !deleted {
		return ErrConflict
	}
	return nil
}

func (t *Toggle) ensureTarget(ctx context.Context, kind Kind, target int64) error {
	exists, err := t.store.TargetExists(ctx, kind, target)
	if err != nil {
		return fmt.Errorf("checking %s target: %w", kind, err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func result(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrConflict):
		return metrics.ResultConflict
	case errors.Is(err, ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, ErrSelfReference), errors.Is(err, ErrUnknownKind):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
