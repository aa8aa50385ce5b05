package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newCartService(t *testing.T) (CartService, *MockCartRepo, *MockProductRepo) {
	t.Helper()
	cartRepo := new(MockCartRepo)
	productRepo := new(MockProductRepo)
	return NewCartService(cartRepo, productRepo), cartRepo, productRepo
}

func TestAddCartItem_NewLine(t *testing.T) {
	svc, cartRepo, productRepo := newCartService(t)
	userID := uuid.New()

	product := &model.Product{ID: uuid.New(), Name: "Widget", Price: 19.99, Quantity: 5, IsActive: true}
	emptyCart := &model.Cart{ID: uuid.New(), UserID: userID}
	filledCart := &model.Cart{
		ID:     emptyCart.ID,
		UserID: userID,
		Items: []model.CartItem{
			{ID: uuid.New(), ProductID: product.ID, Product: product, Quantity: 2},
		},
	}

	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	cartRepo.On("FindOrCreateByUser", mock.Anything, userID).Return(emptyCart, nil).Once()
	cartRepo.On("FindItem", mock.Anything, emptyCart.ID, product.ID).Return(nil, gorm.ErrRecordNotFound)
	cartRepo.On("CreateItem", mock.Anything, mock.AnythingOfType("*model.CartItem")).Return(nil)
	cartRepo.On("FindOrCreateByUser", mock.Anything, userID).Return(filledCart, nil)

	res, err := svc.AddItem(context.Background(), userID, AddCartItemRequest{
		ProductID: product.ID.String(),
		Quantity:  2,
	})

	assert.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, "39.98", res.Items[0].Subtotal)
	assert.Equal(t, "39.98", res.TotalAmount)
}

func TestAddCartItem_MergesQuantities(t *testing.T) {
	svc, cartRepo, productRepo := newCartService(t)
	userID := uuid.New()

	product := &model.Product{ID: uuid.New(), Name: "Widget", Price: 10, Quantity: 10, IsActive: true}
	cart := &model.Cart{ID: uuid.New(), UserID: userID}
	existing := &model.CartItem{ID: uuid.New(), CartID: cart.ID, ProductID: product.ID, Quantity: 2}

	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	cartRepo.On("FindOrCreateByUser", mock.Anything, userID).Return(cart, nil)
	cartRepo.On("FindItem", mock.Anything, cart.ID, product.ID).Return(existing, nil)
	cartRepo.On("UpdateItem", mock.Anything, existing).Return(nil)

	_, err := svc.AddItem(context.Background(), userID, AddCartItemRequest{
		ProductID: product.ID.String(),
		Quantity:  3,
	})

	assert.NoError(t, err)
	assert.Equal(t, 5, existing.Quantity)
	cartRepo.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
}

func TestAddCartItem_MergedQuantityExceedsStock(t *testing.T) {
	svc, cartRepo, productRepo := newCartService(t)
	userID := uuid.New()

	product := &model.Product{ID: uuid.New(), Quantity: 4, IsActive: true}
	cart := &model.Cart{ID: uuid.New(), UserID: userID}
	existing := &model.CartItem{ID: uuid.New(), CartID: cart.ID, ProductID: product.ID, Quantity: 2}

	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	cartRepo.On("FindOrCreateByUser", mock.Anything, userID).Return(cart, nil)
	cartRepo.On("FindItem", mock.Anything, cart.ID, product.ID).Return(existing, nil)

	res, err := svc.AddItem(context.Background(), userID, AddCartItemRequest{
		ProductID: product.ID.String(),
		Quantity:  3,
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	cartRepo.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
}

func TestAddCartItem_InactiveProductHidden(t *testing.T) {
	svc, _, productRepo := newCartService(t)

	product := &model.Product{ID: uuid.New(), Quantity: 10, IsActive: false}
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	res, err := svc.AddItem(context.Background(), uuid.New(), AddCartItemRequest{
		ProductID: product.ID.String(),
		Quantity:  1,
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCartItem_StockCap(t *testing.T) {
	svc, cartRepo, productRepo := newCartService(t)
	userID := uuid.New()

	product := &model.Product{ID: uuid.New(), Quantity: 2, IsActive: true}
	itemID := uuid.New()
	cart := &model.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []model.CartItem{
			{ID: itemID, ProductID: product.ID, Product: product, Quantity: 1},
		},
	}
	cartRepo.On("FindOrCreateByUser", mock.Anything, userID).Return(cart, nil)
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	res, err := svc.UpdateItem(context.Background(), userID, itemID, UpdateCartItemRequest{Quantity: 5})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestUpdateCartItem_UnknownItem(t *testing.T) {
	svc, cartRepo, _ := newCartService(t)
	userID := uuid.New()

	cart := &model.Cart{ID: uuid.New(), UserID: userID}
	cartRepo.On("FindOrCreateByUser", mock.Anything, userID).Return(cart, nil)

	res, err := svc.UpdateItem(context.Background(), userID, uuid.New(), UpdateCartItemRequest{Quantity: 1})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearCart(t *testing.T) {
	svc, cartRepo, _ := newCartService(t)
	userID := uuid.New()

	cart := &model.Cart{ID: uuid.New(), UserID: userID}
	cartRepo.On("FindOrCreateByUser", mock.Anything, userID).Return(cart, nil)
	cartRepo.On("ClearItems", mock.Anything, cart.ID).Return(nil)

	assert.NoError(t, svc.ClearCart(context.Background(), userID))
	cartRepo.AssertCalled(t, "ClearItems", mock.Anything, cart.ID)
}
