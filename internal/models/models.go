package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category values used by the storefront's fixed category pages.
const (
	CategoryPhone  = "Mobiltelefon"
	CategoryTablet = "Tablet"
	CategoryLaptop = "Laptop"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"         json:"user_id"`
	Name         string    `gorm:"not null"                     json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"         json:"email"`
	PasswordHash string    `gorm:"not null"                     json:"-"`
	Role         string    `gorm:"not null"                     json:"role"`
	ProfilePic   string    `gorm:"not null"                     json:"profile_pic"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"                        json:"product_id"`
	Name      string          `gorm:"not null;index"                              json:"itemName"`
	Category  string          `gorm:"not null;index"                              json:"itemCategory"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null;check:price > 0" json:"itemPrice"`
	Stock     int             `gorm:"not null;check:stock >= 0"                   json:"stock"`
	Image     string          `gorm:"not null"                                    json:"image"`
	CreatedAt time.Time       `json:"created_at"`
}

type Cart struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"          json:"cart_id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                           json:"cart_items_id"`
	CartID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Quantity  uint      `gorm:"not null;default:1;check:quantity > 0"          json:"quantity"`
}

type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"      json:"order_id"`
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null"  json:"user_id"`
	City        string          `gorm:"not null"                  json:"city"`
	Address     string          `gorm:"not null"                  json:"address"`
	Postcode    string          `gorm:"not null"                  json:"postcode"`
	Tel         string          `gorm:"not null"                  json:"tel"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	CreatedAt   time.Time       `gorm:"index"                     json:"order_date"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID"        json:"items,omitempty"`
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"                  json:"order_item_id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"              json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"                    json:"product_id"`
	Quantity  uint            `gorm:"not null;check:quantity > 0"           json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"           json:"unit_price"`
}

// All lists every table in dependency order for migrations.
func All() []any {
	return []any{&User{}, &Product{}, &Cart{}, &CartItem{}, &Order{}, &OrderItem{}}
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error      { newID(&u.ID); return nil }
func (p *Product) BeforeCreate(tx *gorm.DB) error   { newID(&p.ID); return nil }
func (c *Cart) BeforeCreate(tx *gorm.DB) error      { newID(&c.ID); return nil }
func (c *CartItem) BeforeCreate(tx *gorm.DB) error  { newID(&c.ID); return nil }
func (o *Order) BeforeCreate(tx *gorm.DB) error     { newID(&o.ID); return nil }
func (o *OrderItem) BeforeCreate(tx *gorm.DB) error { newID(&o.ID); return nil }

func (CartItem) TableName() string  { return "cart_items" }
func (OrderItem) TableName() string { return "order_items" }
