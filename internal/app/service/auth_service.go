package service

import (
	"errors"
	"strings"

	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/internal/app/repository"
	"github.com/ikkim/amazocart-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrEmailRequired = errors.New("email is required")

// AuthService implements the storefront's lightweight identity model: logging
// in with an email creates the account on first use and guarantees an active
// cart exists.
type AuthService interface {
	Login(email, name string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	cartSvc  CartService
}

func NewAuthService(userRepo repository.UserRepository, cartSvc CartService) AuthService {
	return &authService{
		userRepo: userRepo,
		cartSvc:  cartSvc,
	}
}

func (s *authService) Login(email, name string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to look up user for login", err, map[string]interface{}{
				"email": email,
			})
			return nil, err
		}

		username := name
		if username == "" {
			username = strings.SplitN(email, "@", 2)[0]
		}
		user = &model.User{Name: username, Email: email}
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
		logger.Info("New user registered via login", map[string]interface{}{
			"user_id": user.UserID,
			"email":   email,
		})
	}

	if _, err := s.cartSvc.GetOrCreateCart(user.UserID); err != nil {
		return nil, err
	}
	return user, nil
}
