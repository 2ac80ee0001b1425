package repository

import (
	"testing"

	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_CreateAndList(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	user := model.User{Name: "shopper", Email: "shopper@example.com"}
	require.NoError(t, testDB.Create(&user).Error)

	image := "https://img.example/cable.jpg"
	require.NoError(t, testDB.Create(&model.Product{
		ProductID: 1, ProductName: "USB Cable", Price: 5.99, Image: &image, CountryID: "US", CategoryID: 1,
	}).Error)

	repo := NewOrderRepository(testDB)

	order := &model.Order{
		OrderID:         "ORD-test-1",
		UserID:          user.UserID,
		ShippingCountry: "Republic of Korea",
		TotalAmount:     11.98,
		Status:          model.OrderStatusPending,
		Address:         "Default address",
		Items: []model.OrderItem{
			{ProductID: 1, Quantity: 2, PriceAtOrder: 5.99, Amount: 11.98, ProductName: "USB Cable"},
		},
	}
	require.NoError(t, repo.Create(order))

	orders, err := repo.FindByUserID(user.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	got := orders[0]
	assert.Equal(t, "ORD-test-1", got.OrderID)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(1), got.Items[0].ProductID)
	// Current product image joins onto historical items.
	require.NotNil(t, got.Items[0].Image)
	assert.Equal(t, image, *got.Items[0].Image)

	// Items for deleted products still list, without an image.
	orderMissing := &model.Order{
		OrderID: "ORD-test-2",
		UserID:  user.UserID,
		Items: []model.OrderItem{
			{ProductID: 42, Quantity: 1, PriceAtOrder: 9.99, Amount: 9.99, ProductName: "Gone Widget"},
		},
	}
	require.NoError(t, repo.Create(orderMissing))

	orders, err = repo.FindByUserID(user.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		if o.OrderID == "ORD-test-2" {
			require.Len(t, o.Items, 1)
			assert.Nil(t, o.Items[0].Image)
		}
	}
}

func TestOrderRepository_FindByUserID_Empty(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewOrderRepository(testDB)
	orders, err := repo.FindByUserID(123)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
