package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

// EnsureCart creates the user's cart if needed and returns it locked FOR UPDATE.
// Must run inside WithTx.
func (r *GormRepo) EnsureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	fresh := models.Cart{UserID: userID}
	if err := r.db(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&fresh).Error; err != nil {
		return nil, err
	}
	return r.LockCart(ctx, userID)
}

// LockCart returns the user's cart locked FOR UPDATE, serializing every cart
// mutation and checkout for that user.
func (r *GormRepo) LockCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) CartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// IncrementItem folds one more unit of productID into the cart.
func (r *GormRepo) IncrementItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	res := r.db(ctx).Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", gorm.Expr("quantity + ?", 1))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		return r.CartItem(ctx, cartID, productID)
	}

	item := models.CartItem{CartID: cartID, ProductID: productID, Quantity: 1}
	if err := r.db(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CartItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) DecrementItem(ctx context.Context, item *models.CartItem) error {
	if err := r.db(ctx).Model(&models.CartItem{}).
		Where("id = ? AND quantity > 1", item.ID).
		Update("quantity", gorm.Expr("quantity - 1")).Error; err != nil {
		return err
	}
	item.Quantity--
	return nil
}

func (r *GormRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db(ctx).Where("id = ?", itemID).Delete(&models.CartItem{}).Error
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uuid.UUID) (int64, error) {
	res := r.db(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// CartLines joins cart items with their products' current name, price and image.
func (r *GormRepo) CartLines(ctx context.Context, cartID uuid.UUID) ([]transport.CartLine, error) {
	lines := make([]transport.CartLine, 0)
	if err := r.db(ctx).Table("cart_items").
		Select("cart_items.id AS cart_item_id, cart_items.product_id AS product_id, cart_items.quantity AS quantity, " +
			"products.name AS name, products.price AS price, products.image AS image").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("products.name ASC").
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// DeleteCartOf removes a user's cart and its items.
func (r *GormRepo) DeleteCartOf(ctx context.Context, userID uuid.UUID) error {
	cart, err := r.CartByUser(ctx, userID)
	if IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := r.ClearCart(ctx, cart.ID); err != nil {
		return err
	}
	return r.db(ctx).Where("id = ?", cart.ID).Delete(&models.Cart{}).Error
}
