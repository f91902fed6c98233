package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartService struct {
	Repo     *repo.GormRepo
	Notifier *Notifier
}

// AddItem folds one unit of productID into the user's cart, creating the cart
// on first use.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "user_id", userID)
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product_id: %w", ErrMissingParameter)
	}

	var item *models.CartItem
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		if err := lockOwner(ctx, tx, userID); err != nil {
			return err
		}
		if _, err := tx.ProductByID(ctx, productID); err != nil {
			if repo.IsNotFound(err) {
				return fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
			}
			return fmt.Errorf("lookup product: %w", err)
		}
		cart, err := tx.EnsureCart(ctx, userID)
		if err != nil {
			return fmt.Errorf("ensure cart: %w", err)
		}
		item, err = tx.IncrementItem(ctx, cart.ID, productID)
		if err != nil {
			return fmt.Errorf("increment item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mutated("add")
	s.Notifier.publish(ctx, l, events.TopicCarts, userID.String(), events.Event{
		Type:   events.CartItemAdded,
		ID:     item.ID.String(),
		UserID: userID.String(),
		Data:   map[string]any{"product_id": productID.String(), "quantity": item.Quantity},
	})
	return item, nil
}

// RemoveItem takes one unit away; the line is deleted when its last unit goes.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*transport.RemoveResult, error) {
	return s.remove(ctx, userID, productID, false)
}

// RemoveAll deletes the product's line whatever its quantity.
func (s *CartService) RemoveAll(ctx context.Context, userID, productID uuid.UUID) (*transport.RemoveResult, error) {
	return s.remove(ctx, userID, productID, true)
}

func (s *CartService) remove(ctx context.Context, userID, productID uuid.UUID, all bool) (*transport.RemoveResult, error) {
	l := logging.FromContext(ctx).With("svc", "cart.remove", "user_id", userID)
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product_id: %w", ErrMissingParameter)
	}

	res := &transport.RemoveResult{ProductID: productID}
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.LockCart(ctx, userID)
		if err != nil {
			if repo.IsNotFound(err) {
				return fmt.Errorf("user %s: %w", userID, ErrCartNotFound)
			}
			return fmt.Errorf("lock cart: %w", err)
		}
		item, err := tx.CartItem(ctx, cart.ID, productID)
		if err != nil {
			if repo.IsNotFound(err) {
				return fmt.Errorf("product %s: %w", productID, ErrItemNotInCart)
			}
			return fmt.Errorf("lookup item: %w", err)
		}

		if !all && item.Quantity > 1 {
			if err := tx.DecrementItem(ctx, item); err != nil {
				return fmt.Errorf("decrement item: %w", err)
			}
			res.Quantity = item.Quantity
			return nil
		}
		if err := tx.DeleteItem(ctx, item.ID); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		res.Removed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	op := "remove"
	if all {
		op = "remove_all"
	}
	s.mutated(op)
	s.Notifier.publish(ctx, l, events.TopicCarts, userID.String(), events.Event{
		Type:   events.CartItemRemove,
		ID:     productID.String(),
		UserID: userID.String(),
		Data:   map[string]any{"product_id": productID.String(), "quantity": res.Quantity, "removed": res.Removed},
	})
	return res, nil
}

// Clear empties the cart but keeps it. A user without a cart has nothing to clear.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	l := logging.FromContext(ctx).With("svc", "cart.clear", "user_id", userID)

	var n int64
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.LockCart(ctx, userID)
		if err != nil {
			if repo.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("lock cart: %w", err)
		}
		n, err = tx.ClearCart(ctx, cart.ID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}

	if n > 0 {
		s.mutated("clear")
		s.Notifier.publish(ctx, l, events.TopicCarts, userID.String(), events.Event{
			Type:   events.CartCleared,
			ID:     userID.String(),
			UserID: userID.String(),
			Data:   map[string]any{"removed_lines": n},
		})
	}
	return n, nil
}

// Items lists the cart's lines with current product data. No cart means no lines.
func (s *CartService) Items(ctx context.Context, userID uuid.UUID) ([]transport.CartLine, error) {
	cart, err := s.Repo.CartByUser(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return []transport.CartLine{}, nil
		}
		return nil, fmt.Errorf("lookup cart: %w", err)
	}
	lines, err := s.Repo.CartLines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("cart lines: %w", err)
	}
	return lines, nil
}

func (s *CartService) mutated(op string) {
	if s.Notifier != nil {
		s.Notifier.Metrics.CartMutation(op)
	}
}
