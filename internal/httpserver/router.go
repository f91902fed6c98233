package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
)

type Deps struct {
	Auth    *AuthHTTP
	Catalog *CatalogHTTP
	Cart    *CartHTTP
	Orders  *OrderHTTP
	Admin   *AdminHTTP

	Gate        *middleware.Gate
	AuthLimiter *ratelimit.Limiter
	Metrics     *metrics.Metrics
	ImageDir    string
	Ready       func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	if d.ImageDir != "" {
		e.Static("/images", d.ImageDir)
	}

	api := e.Group("/api")
	authed := d.Gate.RequireAuth
	can := middleware.RequireAction

	api.GET("/getProducts", d.Catalog.ListCategory(""))
	api.GET("/getPhones", d.Catalog.ListCategory(models.CategoryPhone))
	api.GET("/getTablets", d.Catalog.ListCategory(models.CategoryTablet))
	api.GET("/getLaptops", d.Catalog.ListCategory(models.CategoryLaptop))
	api.GET("/products", d.Catalog.GetProducts)
	api.GET("/products/:id", d.Catalog.GetProduct)
	api.GET("/search/:query", d.Catalog.Search, authed, can(policy.SearchCatalog))
	api.POST("/addItem", d.Catalog.AddItem, authed, can(policy.AddProduct))

	var limited []echo.MiddlewareFunc
	if d.AuthLimiter != nil {
		limited = append(limited, d.AuthLimiter.Middleware())
	}
	api.POST("/register", d.Auth.Register, limited...)
	api.POST("/login", d.Auth.Login, limited...)
	api.POST("/logout", d.Auth.LogOut)
	api.GET("/logintest", d.Auth.LoginTest, authed)
	api.GET("/getRole", d.Auth.GetRole, authed)
	api.GET("/getUsername", d.Auth.GetUsername, authed)
	api.GET("/getProfilePic", d.Auth.GetProfilePic, authed)
	api.PUT("/editProfilePsw", d.Auth.EditPassword, authed, can(policy.ChangePassword))

	cart := api.Group("/cart", authed, can(policy.ManageCart))
	cart.POST("/add", d.Cart.AddToCart)
	cart.POST("/remove", d.Cart.DeleteOneFromCart)
	cart.POST("/removeAll", d.Cart.DeleteAllFromCart)
	cart.GET("/getItems", d.Cart.GetItems)
	api.DELETE("/cart", d.Cart.ClearCart, authed, can(policy.ManageCart))

	api.POST("/createOrder", d.Orders.CreateOrder, authed, can(policy.PlaceOrder))
	api.POST("/createOrder/:cart_id", d.Orders.CreateOrder, authed, can(policy.PlaceOrder))
	api.DELETE("/deleteOrder/:order_id", d.Orders.DeleteOrder, authed, can(policy.DeleteOrder))
	api.GET("/getAllOrders", d.Orders.GetAllOrders, authed, can(policy.ViewAllOrders))
	api.GET("/getAllOrdersItems", d.Orders.GetAllOrderItems, authed, can(policy.ViewAllOrders))
	api.GET("/orderGet", d.Orders.GetMyOrders, authed, can(policy.ViewOwnOrders))
	api.GET("/orderedItems/:order_id", d.Orders.GetOrderedItems, authed, can(policy.ViewOrder))

	admin := api.Group("/admin", authed, can(policy.ManageUsers))
	admin.GET("/users", d.Admin.ListUsers)
	admin.POST("/removeUser", d.Admin.RemoveUser)
}
