package relation

import (
	"context"
	"fmt"

	"github.com/matt-dz/foodgram/internal/database"
)

// DBStore is the Postgres-backed Store.
type DBStore struct {
	Querier database.Querier
}

var _ Store = DBStore{}

func NewDBStore(q database.Querier) DBStore {
	return DBStore{Querier: q}
}

func (s DBStore) TargetExists(ctx context.Context, kind Kind, target int64) (bool, error) {
	switch kind {
	case Favorite, Cart:
		return s.Querier.RecipeExists(ctx, target)
	case Subscription:
		return s.Querier.UserExists(ctx, target)
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func (s DBStore) Insert(ctx context.Context, kind Kind, user, target int64) error {
	var err error
	switch kind {
	case Favorite:
		err = s.Querier.CreateFavorite(ctx, database.CreateFavoriteParams{UserID: user, RecipeID: target})
	case Cart:
		err = s.Querier.CreateCartEntry(ctx, database.CreateCartEntryParams{UserID: user, RecipeID: target})
	case Subscription:
		err = s.Querier.CreateSubscription(ctx, database.CreateSubscriptionParams{UserID: user, FollowingID: target})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	switch {
	case database.IsUniqueViolation(err, ""):
		return ErrConflict
	case database.IsCheckViolation(err, database.ConstraintSubscriptionNoSelf):
		return ErrSelfReference
	case database.IsForeignKeyViolation(err):
		// The target was deleted after TargetExists.
		return ErrNotFound
	}
	return err
}

func (s DBStore) Delete(ctx context.Context, kind Kind, user, target int64) (bool, error) {
	var (
		n   int64
		err error
	)
	switch kind {
	case Favorite:
		n, err = s.Querier.DeleteFavorite(ctx, database.DeleteFavoriteParams{UserID: user, RecipeID: target})
	case Cart:
		n, err = s.Querier.DeleteCartEntry(ctx, database.DeleteCartEntryParams{UserID: user, RecipeID: target})
	case Subscription:
		n, err = s.Querier.DeleteSubscription(ctx, database.DeleteSubscriptionParams{UserID: user, FollowingID: target})
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
