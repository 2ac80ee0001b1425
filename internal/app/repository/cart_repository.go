package repository

import (
	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	FindActiveByUserID(userID uint) (*model.Cart, error)
	Create(cart *model.Cart) error
	Lines(cartID uint) ([]model.CartLine, error)
	FindItem(cartID uint, productID int64) (*model.CartItem, error)
	CreateItem(item *model.CartItem) error
	IncrementItem(cartID uint, productID int64, delta int) error
	SetItemQuantity(cartID uint, productID int64, quantity int) error
	DeleteItem(cartID uint, productID int64) error
	Clear(cartID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// FindActiveByUserID returns the user's newest active cart, or
// gorm.ErrRecordNotFound when none exists.
func (r *cartRepository) FindActiveByUserID(userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("cart_id DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Create(cart *model.Cart) error {
	logger.Debug("Creating cart in database", map[string]interface{}{
		"user_id": cart.UserID,
	})

	if err := r.db.Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id": cart.UserID,
		})
		return err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.CartID,
		"user_id": cart.UserID,
	})
	return nil
}

// Lines returns the cart's items joined with their products, including the
// computed line total.
func (r *cartRepository) Lines(cartID uint) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.Raw(`
		SELECT
			ci.product_id,
			ci.quantity,
			p.product_name,
			p.image,
			p.price,
			(ci.quantity * p.price) AS line_total
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.product_id
		WHERE ci.cart_id = ?`, cartID).Scan(&lines).Error
	if err != nil {
		logger.Error("Failed to load cart lines", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}
	return lines, nil
}

func (r *cartRepository) FindItem(cartID uint, productID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) CreateItem(item *model.CartItem) error {
	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create cart item", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) IncrementItem(cartID uint, productID int64, delta int) error {
	err := r.db.Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
	if err != nil {
		logger.Error("Failed to increment cart item quantity", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
	}
	return err
}

func (r *cartRepository) SetItemQuantity(cartID uint, productID int64, quantity int) error {
	err := r.db.Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity).Error
	if err != nil {
		logger.Error("Failed to set cart item quantity", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
			"quantity":   quantity,
		})
	}
	return err
}

func (r *cartRepository) DeleteItem(cartID uint, productID int64) error {
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&model.CartItem{}).Error
	if err != nil {
		logger.Error("Failed to delete cart item", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
	}
	return err
}

func (r *cartRepository) Clear(cartID uint) error {
	err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
	if err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
	}
	return err
}
