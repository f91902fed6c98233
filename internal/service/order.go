package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Notifier *Notifier
}

// CreateOrder converts the user's cart into an order. Item prices are frozen
// at checkout and the cart is emptied in the same transaction, so a failure at
// any step leaves both the cart and the order tables untouched.
//
// cartID is optional; when given it must name the caller's own cart.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, cartID *uuid.UUID, req transport.DeliveryRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", userID)

	req.City = strings.TrimSpace(req.City)
	req.Address = strings.TrimSpace(req.Address)
	req.Postcode = strings.TrimSpace(req.Postcode)
	req.Tel = strings.TrimSpace(req.Tel)
	if err := validateStruct(req).OrNil(); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		if err := lockOwner(ctx, tx, userID); err != nil {
			return err
		}
		cart, err := tx.LockCart(ctx, userID)
		if err != nil {
			if repo.IsNotFound(err) {
				return fmt.Errorf("user %s: %w", userID, ErrCartNotFound)
			}
			return fmt.Errorf("lock cart: %w", err)
		}
		if cartID != nil && *cartID != cart.ID {
			return fmt.Errorf("cart %s: %w", *cartID, ErrCartNotFound)
		}

		lines, err := tx.CartLines(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("cart lines: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		o := &models.Order{
			UserID:      userID,
			City:        req.City,
			Address:     req.Address,
			Postcode:    req.Postcode,
			Tel:         req.Tel,
			TotalAmount: decimal.Zero,
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := make([]models.OrderItem, 0, len(lines))
		total := decimal.Zero
		for _, ln := range lines {
			items = append(items, models.OrderItem{
				OrderID:   o.ID,
				ProductID: ln.ProductID,
				Quantity:  ln.Quantity,
				UnitPrice: ln.Price,
			})
			total = total.Add(ln.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
		}
		if err := tx.CreateOrderItems(ctx, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		if err := tx.SetOrderTotal(ctx, o.ID, total); err != nil {
			return fmt.Errorf("set total: %w", err)
		}
		if _, err := tx.ClearCart(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		o.TotalAmount = total
		o.Items = items
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Info("order_created", "order_id", order.ID, "total", order.TotalAmount.StringFixed(2), "lines", len(order.Items))
	if s.Notifier != nil {
		s.Notifier.Metrics.OrderCreated(order.TotalAmount.InexactFloat64())
	}
	s.Notifier.publish(ctx, l, events.TopicOrders, order.ID.String(), events.Event{
		Type:   events.OrderCreated,
		ID:     order.ID.String(),
		UserID: userID.String(),
		Data: map[string]any{
			"total_amount": order.TotalAmount.StringFixed(2),
			"items":        len(order.Items),
		},
	})
	return order, nil
}

// DeleteOrder removes an order and its items. Only the owner or an admin may.
func (s *OrderService) DeleteOrder(ctx context.Context, caller policy.Identity, orderID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "order.delete", "order_id", orderID)
	if orderID == uuid.Nil {
		return fmt.Errorf("order_id: %w", ErrMissingParameter)
	}

	var owner uuid.UUID
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			if repo.IsNotFound(err) {
				return fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
			}
			return fmt.Errorf("lock order: %w", err)
		}
		if err := policy.Authorize(caller, policy.DeleteOrder, policy.Resource{OwnerID: o.UserID}); err != nil {
			return err
		}
		if _, err := tx.DeleteOrderItems(ctx, o.ID); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		if _, err := tx.DeleteOrder(ctx, o.ID); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		owner = o.UserID
		return nil
	})
	if err != nil {
		return err
	}

	l.Info("order_deleted", "by", caller.UserID)
	s.Notifier.publish(ctx, l, events.TopicOrders, orderID.String(), events.Event{
		Type:   events.OrderDeleted,
		ID:     orderID.String(),
		UserID: owner.String(),
		Data:   map[string]any{"deleted_by": caller.UserID.String()},
	})
	return nil
}

// ListOrders returns every order in the store, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]transport.OrderRow, error) {
	rows, err := s.Repo.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("orders: %w", ErrNotFound)
	}
	return rows, nil
}

func (s *OrderService) ListOrderItems(ctx context.Context) ([]transport.OrderItemRow, error) {
	rows, err := s.Repo.ListOrderItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("order items: %w", ErrNotFound)
	}
	return rows, nil
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]transport.OrderRow, error) {
	rows, err := s.Repo.ListOrdersForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("orders of %s: %w", userID, ErrNotFound)
	}
	return rows, nil
}

// OrderItems lists the lines of one order for its owner or an admin.
func (s *OrderService) OrderItems(ctx context.Context, caller policy.Identity, orderID uuid.UUID) ([]transport.OrderItemRow, error) {
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("order_id: %w", ErrMissingParameter)
	}
	o, err := s.Repo.OrderByID(ctx, orderID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("lookup order: %w", err)
	}
	if err := policy.Authorize(caller, policy.ViewOrder, policy.Resource{OwnerID: o.UserID}); err != nil {
		return nil, err
	}
	rows, err := s.Repo.ListItemsOfOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("items of %s: %w", orderID, ErrNotFound)
	}
	return rows, nil
}
