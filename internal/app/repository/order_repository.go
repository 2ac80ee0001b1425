package repository

import (
	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByUserID(userID uint) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and its items in one transaction.
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_id":     order.OrderID,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount,
		"item_count":   len(order.Items),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_id": order.OrderID,
			"user_id":  order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.OrderID,
		"user_id":  order.UserID,
	})
	return nil
}

// FindByUserID returns the user's orders newest first, each with its items
// and the current product image joined in.
func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	type itemRow struct {
		model.OrderItem
		ProductImage *string `gorm:"column:product_image"`
	}

	for i := range orders {
		var rows []itemRow
		err := r.db.Raw(`
			SELECT
				oi.order_item_id,
				oi.order_id,
				oi.product_id,
				oi.quantity,
				oi.price_at_order,
				oi.amount,
				oi.product_name,
				p.image AS product_image
			FROM order_items oi
			LEFT JOIN products p ON oi.product_id = p.product_id
			WHERE oi.order_id = ?`, orders[i].OrderID).Scan(&rows).Error
		if err != nil {
			logger.Error("Failed to load order items", err, map[string]interface{}{
				"order_id": orders[i].OrderID,
			})
			return nil, err
		}

		items := make([]model.OrderItem, 0, len(rows))
		for _, row := range rows {
			item := row.OrderItem
			item.Image = row.ProductImage
			items = append(items, item)
		}
		orders[i].Items = items
	}

	return orders, nil
}
