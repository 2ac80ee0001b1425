package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/amazocart-backend/internal/app/service"
	apierrors "github.com/ikkim/amazocart-backend/internal/errors"
	"github.com/ikkim/amazocart-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CheckoutRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// ListOrders returns the user's orders, newest first
// GET /api/orders?userId=
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := userIDQuery(c)
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationRequired, "userId required")
		return
	}

	orders, err := ctrl.orderService.ListOrders(userID)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "order")
		return
	}

	c.JSON(http.StatusOK, orders)
}

// Checkout converts the active cart into an order
// POST /api/orders/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"error": err.Error(),
		})
		apierrors.BadRequest(c, apierrors.ValidationRequired, "userId required")
		return
	}

	result, err := ctrl.orderService.Checkout(req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			log.Warn("Checkout attempted with empty cart", map[string]interface{}{
				"user_id": req.UserID,
			})
			apierrors.BadRequest(c, apierrors.OrderEmptyCart, "Cart is empty")
			return
		}
		log.Error("Checkout failed", err, map[string]interface{}{
			"user_id": req.UserID,
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"order_id":     result.OrderID,
		"total_amount": result.TotalAmount,
	})
}
