package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AdminService struct {
	Repo     *repo.GormRepo
	Notifier *Notifier
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// RemoveUser deletes an account together with its cart and orders.
func (s *AdminService) RemoveUser(ctx context.Context, actor policy.Identity, userID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "admin.remove_user", "user_id", userID)
	if userID == uuid.Nil {
		return fmt.Errorf("user_id: %w", ErrMissingParameter)
	}
	if err := policy.Authorize(actor, policy.ManageUsers, policy.Resource{}); err != nil {
		return err
	}
	if userID == actor.UserID {
		ve := &ValidationError{}
		ve.Add("user_id", "cannot remove yourself")
		return ve
	}

	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		if err := lockOwner(ctx, tx, userID); err != nil {
			return err
		}
		if err := tx.DeleteCartOf(ctx, userID); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		if err := tx.DeleteOrdersOf(ctx, userID); err != nil {
			return fmt.Errorf("delete orders: %w", err)
		}
		n, err := tx.DeleteUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.Info("user_removed", "by", actor.UserID)
	s.Notifier.publish(ctx, l, events.TopicUsers, userID.String(), events.Event{
		Type:   events.UserRemoved,
		ID:     userID.String(),
		UserID: userID.String(),
		Data:   map[string]any{"removed_by": actor.UserID.String()},
	})
	return nil
}
