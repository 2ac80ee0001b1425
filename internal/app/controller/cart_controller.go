package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/amazocart-backend/internal/app/service"
	apierrors "github.com/ikkim/amazocart-backend/internal/errors"
	"github.com/ikkim/amazocart-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	UserID    uint  `json:"userId" binding:"required"`
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartRequest struct {
	UserID    uint  `json:"userId" binding:"required"`
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  *int  `json:"quantity" binding:"required"`
}

// userIDQuery reads the userId query parameter the storefront sends on
// cart and order reads.
func userIDQuery(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Query("userId"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// GetCart returns the user's active cart with line totals
// GET /api/cart?userId=
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := userIDQuery(c)
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationRequired, "userId required")
		return
	}

	view, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_id": view.CartID,
		"items":   view.Items,
	})
}

// AddItem adds a product to the cart, accumulating quantity
// POST /api/cart/add
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apierrors.BadRequest(c, apierrors.ValidationRequired, "userId and productId required")
		return
	}

	if err := ctrl.cartService.AddItem(req.UserID, req.ProductID, req.Quantity); err != nil {
		log.Error("Failed to add cart item", err, map[string]interface{}{
			"user_id":    req.UserID,
			"product_id": req.ProductID,
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "cart")
		return
	}

	log.Info("Cart item added", map[string]interface{}{
		"user_id":    req.UserID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateItem sets a line's quantity; zero removes the line
// POST /api/cart/update
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart update request", map[string]interface{}{
			"error": err.Error(),
		})
		apierrors.BadRequest(c, apierrors.ValidationRequired, "userId, productId, quantity required")
		return
	}

	if err := ctrl.cartService.UpdateItem(req.UserID, req.ProductID, *req.Quantity); err != nil {
		log.Error("Failed to update cart item", err, map[string]interface{}{
			"user_id":    req.UserID,
			"product_id": req.ProductID,
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveItem deletes one line from the cart
// DELETE /api/cart/item/:productId?userId=
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := userIDQuery(c)
	if !ok {
		apierrors.BadRequest(c, apierrors.ValidationRequired, "userId required")
		return
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "Invalid product id")
		return
	}

	if err := ctrl.cartService.RemoveItem(userID, productID); err != nil {
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
