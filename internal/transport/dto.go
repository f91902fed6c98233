package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Name     string `json:"name"  validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"psw"   validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"psw"   validate:"required"`
}

type PasswordRequest struct {
	Password string `json:"psw" validate:"required,min=6"`
}

type CartRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}

type DeliveryRequest struct {
	City     string `json:"city"     validate:"required"`
	Address  string `json:"address"  validate:"required"`
	Postcode string `json:"postcode" validate:"required"`
	Tel      string `json:"tel"      validate:"required"`
}

type RemoveUserRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

// ProductForm is the multipart add-item form after text fields are read.
type ProductForm struct {
	Name     string `form:"itemName"     validate:"required"`
	Category string `form:"itemCategory" validate:"required"`
	Price    string `form:"itemPrice"    validate:"required,numeric"`
	Stock    string `form:"stock"        validate:"required,number"`
}

type CartLine struct {
	CartItemID uuid.UUID       `gorm:"column:cart_item_id" json:"cart_items_id"`
	ProductID  uuid.UUID       `gorm:"column:product_id"   json:"product_id"`
	Quantity   uint            `gorm:"column:quantity"     json:"quantity"`
	Name       string          `gorm:"column:name"         json:"itemName"`
	Price      decimal.Decimal `gorm:"column:price"        json:"itemPrice"`
	Image      string          `gorm:"column:image"        json:"image"`
}

type RemoveResult struct {
	Message   string    `json:"message,omitempty"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  uint      `json:"quantity"`
	Removed   bool      `json:"removed"`
}

// OrderRow is one order joined with its owner's name.
type OrderRow struct {
	OrderID     uuid.UUID       `gorm:"column:order_id"     json:"order_id"`
	UserID      uuid.UUID       `gorm:"column:user_id"      json:"user_id"`
	CreatedAt   time.Time       `gorm:"column:created_at"   json:"order_date"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount" json:"total_amount"`
	Name        string          `gorm:"column:name"         json:"name"`
	City        string          `gorm:"column:city"         json:"city"`
	Postcode    string          `gorm:"column:postcode"     json:"postcode"`
	Address     string          `gorm:"column:address"      json:"address"`
	Tel         string          `gorm:"column:tel"          json:"tel"`
}

// OrderItemRow is one order line joined with its product name.
type OrderItemRow struct {
	OrderID   uuid.UUID       `gorm:"column:order_id"   json:"order_id"`
	ProductID uuid.UUID       `gorm:"column:product_id" json:"product_id"`
	Quantity  uint            `gorm:"column:quantity"   json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price" json:"unit_price"`
	Name      string          `gorm:"column:name"       json:"itemName"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
