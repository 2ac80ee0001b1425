package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/internal/app/repository"
	"github.com/ikkim/amazocart-backend/pkg/logger"
	"gorm.io/gorm"
)

// CartView is the cart payload served to the storefront.
type CartView struct {
	CartID uint             `json:"cart_id"`
	Items  []model.CartLine `json:"items"`
}

type CartService interface {
	GetOrCreateCart(userID uint) (*model.Cart, error)
	GetCart(userID uint) (*CartView, error)
	AddItem(userID uint, productID int64, quantity int) error
	UpdateItem(userID uint, productID int64, quantity int) error
	RemoveItem(userID uint, productID int64) error
}

type cartService struct {
	cartRepo repository.CartRepository
}

func NewCartService(cartRepo repository.CartRepository) CartService {
	return &cartService{cartRepo: cartRepo}
}

// GetOrCreateCart returns the user's active cart, creating one on first use.
func (s *cartService) GetOrCreateCart(userID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.FindActiveByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &model.Cart{
		UserID:   userID,
		CartName: fmt.Sprintf("Cart-%d", time.Now().UnixMilli()),
		IsActive: true,
	}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, err
	}

	logger.Info("Created cart for user", map[string]interface{}{
		"user_id": userID,
		"cart_id": cart.CartID,
	})
	return cart, nil
}

func (s *cartService) GetCart(userID uint) (*CartView, error) {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	lines, err := s.cartRepo.Lines(cart.CartID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []model.CartLine{}
	}
	return &CartView{CartID: cart.CartID, Items: lines}, nil
}

// AddItem adds quantity of a product, accumulating onto any existing line.
func (s *cartService) AddItem(userID uint, productID int64, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return err
	}

	_, err = s.cartRepo.FindItem(cart.CartID, productID)
	if err == nil {
		return s.cartRepo.IncrementItem(cart.CartID, productID, quantity)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return s.cartRepo.CreateItem(&model.CartItem{
		CartID:    cart.CartID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	})
}

// UpdateItem sets a line's quantity outright. Zero or negative removes the
// line; updating a product not yet in the cart inserts it.
func (s *cartService) UpdateItem(userID uint, productID int64, quantity int) error {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		return s.cartRepo.DeleteItem(cart.CartID, productID)
	}

	_, err = s.cartRepo.FindItem(cart.CartID, productID)
	if err == nil {
		return s.cartRepo.SetItemQuantity(cart.CartID, productID, quantity)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return s.cartRepo.CreateItem(&model.CartItem{
		CartID:    cart.CartID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	})
}

func (s *cartService) RemoveItem(userID uint, productID int64) error {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return err
	}
	return s.cartRepo.DeleteItem(cart.CartID, productID)
}
