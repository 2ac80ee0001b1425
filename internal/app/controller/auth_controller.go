package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/amazocart-backend/internal/app/service"
	apierrors "github.com/ikkim/amazocart-backend/internal/errors"
	"github.com/ikkim/amazocart-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type LoginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Login signs a shopper in, creating the account and cart on first use
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apierrors.BadRequest(c, apierrors.AuthEmailRequired, "Email is required")
		return
	}

	user, err := ctrl.authService.Login(req.Email, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailRequired) {
			log.Warn("Login attempted without email", nil)
			apierrors.BadRequest(c, apierrors.AuthEmailRequired, "Email is required")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "user")
		return
	}

	log.Info("User logged in", map[string]interface{}{
		"user_id": user.UserID,
		"email":   user.Email,
	})

	c.JSON(http.StatusOK, gin.H{
		"user_id": user.UserID,
		"email":   user.Email,
		"name":    user.Name,
	})
}
