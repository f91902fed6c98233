package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// ListCategory serves one of the fixed category pages; an empty category lists everything.
func (h *CatalogHTTP) ListCategory(category string) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := h.Svc.List(c.Request().Context(), category)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, items)
	}
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	items, meta, err := h.Svc.Page(c.Request().Context(), c.QueryParam("category"), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "meta": meta})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.Product(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	items, err := h.Svc.SearchProducts(c.Request().Context(), c.Param("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_add_item")

	id, err := caller(c)
	if err != nil {
		return err
	}

	var form transport.ProductForm
	if err := c.Bind(&form); err != nil {
		l.Warn("add_item_error", "status", http.StatusBadRequest, "error", err)
		return invalidBody(err)
	}
	image, err := c.FormFile("image")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			l.Warn("add_item_error", "status", http.StatusBadRequest, "error", err)
			return invalidBody(err)
		}
		image = nil
	}

	p, err := h.Svc.AddProduct(ctx, id.UserID, form, image)
	if err != nil {
		l.Warn("add_item_failed", "error", err)
		return err
	}

	l.Info("add_item_successful", "product_id", p.ID)
	return c.JSON(http.StatusCreated, echo.Map{"message": "product added", "product": p})
}
