package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type orderServiceMocks struct {
	orderRepo   *MockOrderRepo
	cartRepo    *MockCartRepo
	productRepo *MockProductRepo
	txRepo      *MockTransactionRepo
	auditRepo   *MockAuditRepo
	inventory   *stubInventory
	notifier    *recordingNotifier
}

func newOrderService(t *testing.T) (OrderService, *orderServiceMocks) {
	t.Helper()
	m := &orderServiceMocks{
		orderRepo:   new(MockOrderRepo),
		cartRepo:    new(MockCartRepo),
		productRepo: new(MockProductRepo),
		txRepo:      new(MockTransactionRepo),
		auditRepo:   new(MockAuditRepo),
		inventory:   new(stubInventory),
		notifier:    new(recordingNotifier),
	}
	svc := NewOrderService(m.orderRepo, m.cartRepo, m.productRepo, m.txRepo, m.auditRepo,
		fakeTxManager{}, m.inventory, m.notifier, nil)
	return svc, m
}

func TestGenerateTicketNumber_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
	for i := 0; i < 50; i++ {
		ticket, err := generateTicketNumber()
		assert.NoError(t, err)
		assert.Regexp(t, pattern, ticket)
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	svc, m := newOrderService(t)
	ctx := context.Background()

	userID := uuid.New()
	productID := uuid.New()
	orderID := uuid.New()

	product := &model.Product{ID: productID, Name: "Widget", Price: 19.99, Quantity: 5}
	cart := &model.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []model.CartItem{
			{ID: uuid.New(), ProductID: productID, Product: product, Quantity: 3},
		},
	}

	m.cartRepo.On("FindOrCreateByUser", mock.Anything, userID).Return(cart, nil)
	m.productRepo.On("FindByID", mock.Anything, productID).Return(product, nil)
	m.txRepo.On("TicketNumberExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	m.orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Order).ID = orderID
		}).Return(nil)
	m.orderRepo.On("CreateItem", mock.Anything, mock.AnythingOfType("*model.OrderItem")).Return(nil)
	m.productRepo.On("UpdateQuantity", mock.Anything, productID, 2).Return(nil)

	var createdTx *model.Transaction
	m.txRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Transaction")).
		Run(func(args mock.Arguments) {
			createdTx = args.Get(1).(*model.Transaction)
		}).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	m.cartRepo.On("ClearItems", mock.Anything, cart.ID).Return(nil)

	placed := &model.Order{
		ID:             orderID,
		UserID:         userID,
		OrderNumber:    "ORD-20260830-000001",
		PaymentMethod:  "card",
		PaymentStatus:  model.PaymentStatusPending,
		OrderStatus:    model.OrderStatusPending,
		ApprovalStatus: model.ApprovalPending,
		Items:          []model.OrderItem{{ProductID: productID, Product: product, Quantity: 3, UnitPrice: 19.99}},
	}
	m.orderRepo.On("FindByID", mock.Anything, orderID).Return(placed, nil)

	res, err := svc.PlaceOrder(ctx, userID, PlaceOrderRequest{PaymentMethod: "card"})

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, res.OrderStatus)
	assert.Equal(t, model.ApprovalPending, res.ApprovalStatus)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 3, res.Items[0].Quantity)

	// Stock was decremented, the payment transaction opened, the cart
	// emptied and an alert check queued for the touched product.
	m.productRepo.AssertCalled(t, "UpdateQuantity", mock.Anything, productID, 2)
	assert.NotNil(t, createdTx)
	assert.Equal(t, model.TxStatusPending, createdTx.Status)
	assert.Equal(t, model.TxTypePayment, createdTx.Type)
	assert.Regexp(t, `^[A-Z]{3}[0-9]{4}$`, createdTx.TicketNumber)
	m.cartRepo.AssertCalled(t, "ClearItems", mock.Anything, cart.ID)
	assert.Equal(t, []uuid.UUID{productID}, m.inventory.checked)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()

	m.cartRepo.On("FindOrCreateByUser", mock.Anything, userID).
		Return(&model.Cart{ID: uuid.New(), UserID: userID}, nil)

	res, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderRequest{PaymentMethod: "cod"})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrEmptyCart)
	m.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()
	productID := uuid.New()

	product := &model.Product{ID: productID, Name: "Widget", Price: 19.99, Quantity: 1}
	cart := &model.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []model.CartItem{
			{ID: uuid.New(), ProductID: productID, Product: product, Quantity: 3},
		},
	}

	m.cartRepo.On("FindOrCreateByUser", mock.Anything, userID).Return(cart, nil)
	m.productRepo.On("FindByID", mock.Anything, productID).Return(product, nil)

	res, err := svc.PlaceOrder(context.Background(), userID, PlaceOrderRequest{PaymentMethod: "card"})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Widget")
	// Failed availability check must not write anything
	m.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.productRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()
	productID := uuid.New()

	order := &model.Order{
		ID:          uuid.New(),
		UserID:      userID,
		OrderNumber: "ORD-20260830-000002",
		OrderStatus: model.OrderStatusPending,
		Items:       []model.OrderItem{{ProductID: productID, Quantity: 3}},
	}

	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	m.orderRepo.On("Update", mock.Anything, order).Return(nil)
	m.productRepo.On("IncrementQuantity", mock.Anything, productID, 3).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.CancelOrder(context.Background(), userID, order.ID)

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, res.OrderStatus)
	m.productRepo.AssertCalled(t, "IncrementQuantity", mock.Anything, productID, 3)
}

func TestCancelOrder_ShippedOrderRefused(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()

	order := &model.Order{ID: uuid.New(), UserID: userID, OrderStatus: model.OrderStatusShipped}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	res, err := svc.CancelOrder(context.Background(), userID, order.ID)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrCannotCancel)
	m.orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCancelOrder_OtherCustomersOrder(t *testing.T) {
	svc, m := newOrderService(t)

	order := &model.Order{ID: uuid.New(), UserID: uuid.New(), OrderStatus: model.OrderStatusPending}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	res, err := svc.CancelOrder(context.Background(), uuid.New(), order.ID)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRequestReturn_DeliveredOnly(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()

	order := &model.Order{ID: uuid.New(), UserID: userID, OrderStatus: model.OrderStatusProcessing}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	res, err := svc.RequestReturn(context.Background(), userID, order.ID, ReturnOrderRequest{Reason: "damaged"})

	assert.Nil(t, res)
	assert.EqualError(t, err, "only delivered orders can be returned")
}

func TestRequestReturn_Delivered(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()

	order := &model.Order{ID: uuid.New(), UserID: userID, OrderStatus: model.OrderStatusDelivered}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	m.orderRepo.On("Update", mock.Anything, order).Return(nil)

	res, err := svc.RequestReturn(context.Background(), userID, order.ID, ReturnOrderRequest{Reason: "damaged"})

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusReturnRequested, res.OrderStatus)
	assert.Equal(t, "damaged", res.ReturnReason)
}

func TestApproveOrder_Success(t *testing.T) {
	svc, m := newOrderService(t)
	staffID := uuid.New()

	order := &model.Order{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		OrderNumber:    "ORD-20260830-000003",
		OrderStatus:    model.OrderStatusPending,
		ApprovalStatus: model.ApprovalPending,
	}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	m.orderRepo.On("Update", mock.Anything, order).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.ApproveOrder(context.Background(), staffID, order.ID, "checked")

	assert.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, res.ApprovalStatus)
	assert.Equal(t, model.OrderStatusProcessing, res.OrderStatus)
	assert.Equal(t, "checked", res.StaffNotes)
	assert.Contains(t, m.notifier.direct, model.NotifOrderApproved)
}

func TestApproveOrder_AlreadyDecided(t *testing.T) {
	svc, m := newOrderService(t)

	order := &model.Order{ID: uuid.New(), ApprovalStatus: model.ApprovalApproved}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	res, err := svc.ApproveOrder(context.Background(), uuid.New(), order.ID, "")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestRejectOrder_StatusOnlyCancellation(t *testing.T) {
	svc, m := newOrderService(t)
	staffID := uuid.New()
	productID := uuid.New()

	order := &model.Order{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		OrderNumber:    "ORD-20260830-000004",
		OrderStatus:    model.OrderStatusPending,
		ApprovalStatus: model.ApprovalPending,
		Items:          []model.OrderItem{{ProductID: productID, Quantity: 2}},
	}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	m.orderRepo.On("Update", mock.Anything, order).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.RejectOrder(context.Background(), staffID, order.ID, "suspected fraud")

	assert.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, res.ApprovalStatus)
	assert.Equal(t, model.OrderStatusCancelled, res.OrderStatus)
	// Rejection flips statuses without touching inventory
	m.productRepo.AssertNotCalled(t, "IncrementQuantity", mock.Anything, mock.Anything, mock.Anything)
	assert.Contains(t, m.notifier.direct, model.NotifOrderRejected)
}

func TestUpdateOrderStatus_RequiresApproval(t *testing.T) {
	svc, m := newOrderService(t)

	order := &model.Order{ID: uuid.New(), ApprovalStatus: model.ApprovalPending}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	res, err := svc.UpdateOrderStatus(context.Background(), uuid.New(), order.ID, model.OrderStatusShipped)

	assert.Nil(t, res)
	assert.EqualError(t, err, "order must be approved before fulfilment updates")
}

func TestUpdateOrderStatus_Approved(t *testing.T) {
	svc, m := newOrderService(t)

	order := &model.Order{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		OrderStatus:    model.OrderStatusProcessing,
		ApprovalStatus: model.ApprovalApproved,
	}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	m.orderRepo.On("Update", mock.Anything, order).Return(nil)

	res, err := svc.UpdateOrderStatus(context.Background(), uuid.New(), order.ID, model.OrderStatusShipped)

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, res.OrderStatus)
	assert.Contains(t, m.notifier.direct, model.NotifOrderStatusChanged)
}

func TestUpdatePaymentStatus_AuditsTheChange(t *testing.T) {
	svc, m := newOrderService(t)

	staffID := uuid.New()
	order := &model.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		OrderNumber:   "ORD-1001",
		PaymentStatus: model.PaymentStatusPending,
	}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	m.orderRepo.On("Update", mock.Anything, order).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.MatchedBy(func(a *model.AuditLog) bool {
		return a.Action == model.ActionUpdatePaymentStatus && a.EntityName == "ORD-1001"
	})).Return(nil)

	res, err := svc.UpdatePaymentStatus(context.Background(), staffID, order.ID, model.PaymentStatusPaid)

	assert.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, res.PaymentStatus)
	m.auditRepo.AssertExpectations(t)
}

func TestTrackOrder_OwnerOnly(t *testing.T) {
	svc, m := newOrderService(t)

	owner := uuid.New()
	order := &model.Order{
		ID:             uuid.New(),
		UserID:         owner,
		OrderNumber:    "ORD-2002",
		OrderStatus:    model.OrderStatusShipped,
		PaymentStatus:  model.PaymentStatusPaid,
		ApprovalStatus: model.ApprovalApproved,
	}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.TrackOrder(context.Background(), uuid.New(), order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	tracking, err := svc.TrackOrder(context.Background(), owner, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, "ORD-2002", tracking.OrderNumber)
	assert.Equal(t, model.OrderStatusShipped, tracking.OrderStatus)
	assert.Equal(t, model.PaymentStatusPaid, tracking.PaymentStatus)
}

func TestGetOrder_OwnershipEnforced(t *testing.T) {
	svc, m := newOrderService(t)

	owner := uuid.New()
	order := &model.Order{ID: uuid.New(), UserID: owner}
	m.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.GetOrder(context.Background(), uuid.New(), order.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	// Staff bypass ownership with the privileged flag
	res, err := svc.GetOrder(context.Background(), uuid.New(), order.ID, true)
	assert.NoError(t, err)
	assert.Equal(t, order.ID.String(), res.ID)
}

func TestGetOrder_NotFound(t *testing.T) {
	svc, m := newOrderService(t)

	id := uuid.New()
	m.orderRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetOrder(context.Background(), uuid.New(), id, false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrForbidden))
}
