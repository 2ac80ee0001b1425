package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/internal/app/repository"
	"github.com/ikkim/amazocart-backend/pkg/logger"
)

var ErrEmptyCart = errors.New("cart is empty")

// CheckoutResult is returned after a successful checkout.
type CheckoutResult struct {
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
}

type OrderService interface {
	ListOrders(userID uint) ([]model.Order, error)
	Checkout(userID uint) (*CheckoutResult, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	cartSvc   CartService
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, cartSvc CartService) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		cartSvc:   cartSvc,
	}
}

func (s *orderService) ListOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// Checkout converts the user's active cart into an order: one order row plus
// an item row per cart line priced at checkout time, then clears the cart.
func (s *orderService) Checkout(userID uint) (*CheckoutResult, error) {
	cart, err := s.cartSvc.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	lines, err := s.cartRepo.Lines(cart.CartID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	total := 0.0
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		amount := line.Price * float64(line.Quantity)
		total += amount
		items = append(items, model.OrderItem{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			PriceAtOrder: line.Price,
			Amount:       amount,
			ProductName:  line.ProductName,
		})
	}

	order := &model.Order{
		OrderID:         "ORD-" + uuid.NewString(),
		UserID:          userID,
		ShippingCountry: "Republic of Korea",
		TotalAmount:     total,
		Status:          model.OrderStatusPending,
		Address:         "Default address",
		CreatedAt:       time.Now(),
		Items:           items,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Clear(cart.CartID); err != nil {
		// The order exists; a stale cart is recoverable, so log and move on.
		logger.Warn("Failed to clear cart after checkout", map[string]interface{}{
			"cart_id":  cart.CartID,
			"order_id": order.OrderID,
			"error":    err.Error(),
		})
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"order_id":     order.OrderID,
		"user_id":      userID,
		"total_amount": total,
		"item_count":   len(items),
	})
	return &CheckoutResult{OrderID: order.OrderID, TotalAmount: total}, nil
}
