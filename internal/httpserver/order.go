package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

// CreateOrder checks out the caller's cart. The cart id path segment is optional.
func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_create")

	id, err := caller(c)
	if err != nil {
		return err
	}

	var cartID *uuid.UUID
	if c.Param("cart_id") != "" {
		cid, err := paramID(c, "cart_id")
		if err != nil {
			return err
		}
		cartID = &cid
	}

	var req transport.DeliveryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", http.StatusBadRequest, "error", err)
		return invalidBody(err)
	}

	order, err := h.Svc.CreateOrder(ctx, id.UserID, cartID, req)
	if err != nil {
		l.Warn("create_order_failed", "error", err)
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "order placed", "order": order})
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_delete")

	id, err := caller(c)
	if err != nil {
		return err
	}
	orderID, err := paramID(c, "order_id")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteOrder(ctx, id, orderID); err != nil {
		l.Warn("delete_order_failed", "order_id", orderID, "error", err)
		return err
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "order deleted"})
}

func (h *OrderHTTP) GetAllOrders(c echo.Context) error {
	rows, err := h.Svc.ListOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *OrderHTTP) GetAllOrderItems(c echo.Context) error {
	rows, err := h.Svc.ListOrderItems(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *OrderHTTP) GetMyOrders(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Svc.ListOrdersForUser(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *OrderHTTP) GetOrderedItems(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	orderID, err := paramID(c, "order_id")
	if err != nil {
		return err
	}
	rows, err := h.Svc.OrderItems(c.Request().Context(), id, orderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}
