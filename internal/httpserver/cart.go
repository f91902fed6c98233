package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_add")

	id, err := caller(c)
	if err != nil {
		return err
	}
	var req transport.CartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", http.StatusBadRequest, "error", err)
		return invalidBody(err)
	}

	item, err := h.Svc.AddItem(ctx, id.UserID, req.ProductID)
	if err != nil {
		l.Warn("add_to_cart_failed", "product_id", req.ProductID, "error", err)
		return err
	}

	msg := "item added to cart"
	if item.Quantity > 1 {
		msg = "item quantity updated"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "item": item})
}

func (h *CartHTTP) DeleteOneFromCart(c echo.Context) error {
	return h.remove(c, false)
}

func (h *CartHTTP) DeleteAllFromCart(c echo.Context) error {
	return h.remove(c, true)
}

func (h *CartHTTP) remove(c echo.Context, all bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_remove", "all", all)

	id, err := caller(c)
	if err != nil {
		return err
	}
	var req transport.CartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("remove_from_cart_error", "status", http.StatusBadRequest, "error", err)
		return invalidBody(err)
	}

	var res *transport.RemoveResult
	if all {
		res, err = h.Svc.RemoveAll(ctx, id.UserID, req.ProductID)
	} else {
		res, err = h.Svc.RemoveItem(ctx, id.UserID, req.ProductID)
	}
	if err != nil {
		l.Warn("remove_from_cart_failed", "product_id", req.ProductID, "error", err)
		return err
	}

	res.Message = "item quantity decreased"
	if res.Removed {
		res.Message = "item removed from cart"
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	n, err := h.Svc.Clear(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "cart cleared", "removed": n})
}

func (h *CartHTTP) GetItems(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	lines, err := h.Svc.Items(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lines)
}
