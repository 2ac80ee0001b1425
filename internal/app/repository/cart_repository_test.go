package repository

import (
	"testing"

	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewCartRepository(testDB)
	return testDB, repo
}

func seedCartFixtures(t *testing.T, testDB *gorm.DB) model.Cart {
	t.Helper()

	user := model.User{Name: "shopper", Email: "shopper@example.com"}
	require.NoError(t, testDB.Create(&user).Error)

	products := []model.Product{
		{ProductID: 1, ProductName: "USB Cable", Price: 5.99, CountryID: "US", CategoryID: 1},
		{ProductID: 2, ProductName: "Desk Lamp", Price: 24.99, CountryID: "US", CategoryID: 2},
	}
	for i := range products {
		require.NoError(t, testDB.Create(&products[i]).Error)
	}

	cart := model.Cart{UserID: user.UserID, CartName: "Cart-1", IsActive: true}
	require.NoError(t, testDB.Create(&cart).Error)
	return cart
}

func TestCartRepository_FindActiveByUserID(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)
	cart := seedCartFixtures(t, testDB)

	found, err := repo.FindActiveByUserID(cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, cart.CartID, found.CartID)

	// A newer active cart wins.
	newer := model.Cart{UserID: cart.UserID, CartName: "Cart-2", IsActive: true}
	require.NoError(t, testDB.Create(&newer).Error)

	found, err = repo.FindActiveByUserID(cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, newer.CartID, found.CartID)

	_, err = repo.FindActiveByUserID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_LinesComputeTotals(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)
	cart := seedCartFixtures(t, testDB)

	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.CartID, ProductID: 1, Quantity: 3}))
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.CartID, ProductID: 2, Quantity: 1}))

	lines, err := repo.Lines(cart.CartID)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	byProduct := map[int64]model.CartLine{}
	for _, line := range lines {
		byProduct[line.ProductID] = line
	}
	assert.InDelta(t, 3*5.99, byProduct[1].LineTotal, 0.001)
	assert.Equal(t, "USB Cable", byProduct[1].ProductName)
	assert.InDelta(t, 24.99, byProduct[2].LineTotal, 0.001)
}

func TestCartRepository_ItemLifecycle(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)
	cart := seedCartFixtures(t, testDB)

	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.CartID, ProductID: 1, Quantity: 1}))

	require.NoError(t, repo.IncrementItem(cart.CartID, 1, 2))
	item, err := repo.FindItem(cart.CartID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	require.NoError(t, repo.SetItemQuantity(cart.CartID, 1, 5))
	item, err = repo.FindItem(cart.CartID, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	require.NoError(t, repo.DeleteItem(cart.CartID, 1))
	_, err = repo.FindItem(cart.CartID, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_Clear(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)
	cart := seedCartFixtures(t, testDB)

	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.CartID, ProductID: 1, Quantity: 1}))
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.CartID, ProductID: 2, Quantity: 2}))

	require.NoError(t, repo.Clear(cart.CartID))

	lines, err := repo.Lines(cart.CartID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
