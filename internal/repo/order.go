package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.db(ctx).Omit("Items").Create(o).Error
}

func (r *GormRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db(ctx).Create(&items).Error
}

func (r *GormRepo) SetOrderTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	return r.db(ctx).Model(&models.Order{}).Where("id = ?", orderID).Update("total_amount", total).Error
}

func (r *GormRepo) LockOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.db(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) OrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.db(ctx).Preload("Items").Where("id = ?", orderID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) DeleteOrderItems(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.db(ctx).Where("order_id = ?", orderID).Delete(&models.OrderItem{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeleteOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.db(ctx).Where("id = ?", orderID).Delete(&models.Order{})
	return res.RowsAffected, res.Error
}

// DeleteOrdersOf removes every order of a user together with its items.
func (r *GormRepo) DeleteOrdersOf(ctx context.Context, userID uuid.UUID) error {
	sub := r.db(ctx).Model(&models.Order{}).Select("id").Where("user_id = ?", userID)
	if err := r.db(ctx).Where("order_id IN (?)", sub).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return r.db(ctx).Where("user_id = ?", userID).Delete(&models.Order{}).Error
}

const orderRowColumns = "orders.id AS order_id, orders.user_id AS user_id, orders.created_at AS created_at, " +
	"orders.total_amount AS total_amount, users.name AS name, orders.city AS city, " +
	"orders.postcode AS postcode, orders.address AS address, orders.tel AS tel"

// ListOrders returns every order with its owner's name, newest first.
func (r *GormRepo) ListOrders(ctx context.Context) ([]transport.OrderRow, error) {
	rows := make([]transport.OrderRow, 0)
	if err := r.db(ctx).Table("orders").
		Select(orderRowColumns).
		Joins("JOIN users ON users.id = orders.user_id").
		Order("orders.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepo) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]transport.OrderRow, error) {
	rows := make([]transport.OrderRow, 0)
	if err := r.db(ctx).Table("orders").
		Select(orderRowColumns).
		Joins("JOIN users ON users.id = orders.user_id").
		Where("orders.user_id = ?", userID).
		Order("orders.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

const orderItemRowColumns = "order_items.order_id AS order_id, order_items.product_id AS product_id, " +
	"order_items.quantity AS quantity, order_items.unit_price AS unit_price, products.name AS name"

func (r *GormRepo) ListOrderItems(ctx context.Context) ([]transport.OrderItemRow, error) {
	rows := make([]transport.OrderItemRow, 0)
	if err := r.db(ctx).Table("order_items").
		Select(orderItemRowColumns).
		Joins("JOIN products ON products.id = order_items.product_id").
		Order("order_items.order_id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepo) ListItemsOfOrder(ctx context.Context, orderID uuid.UUID) ([]transport.OrderItemRow, error) {
	rows := make([]transport.OrderItemRow, 0)
	if err := r.db(ctx).Table("order_items").
		Select(orderItemRowColumns).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ?", orderID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
