package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type requestOrderServiceMocks struct {
	requestRepo *MockRequestOrderRepo
	productRepo *MockProductRepo
	auditRepo   *MockAuditRepo
	notifier    *recordingNotifier
}

func newRequestOrderService(t *testing.T) (RequestOrderService, *requestOrderServiceMocks) {
	t.Helper()
	m := &requestOrderServiceMocks{
		requestRepo: new(MockRequestOrderRepo),
		productRepo: new(MockProductRepo),
		auditRepo:   new(MockAuditRepo),
		notifier:    new(recordingNotifier),
	}
	svc := NewRequestOrderService(m.requestRepo, m.productRepo, m.auditRepo,
		fakeTxManager{}, m.notifier)
	return svc, m
}

func TestCreateRequestOrder_NotifiesAdmins(t *testing.T) {
	svc, m := newRequestOrderService(t)
	requesterID := uuid.New()
	requestID := uuid.New()

	product := &model.Product{ID: uuid.New(), Name: "Widget"}
	m.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	m.requestRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.RequestOrder")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.RequestOrder).ID = requestID
		}).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	m.requestRepo.On("FindByID", mock.Anything, requestID).
		Return(&model.RequestOrder{
			ID:                      requestID,
			ProductID:               product.ID,
			Product:                 product,
			Quantity:                30,
			RequestedBy:             requesterID,
			Status:                  model.RequestPending,
			AdminApprovalStatus:     model.RequestPending,
			WarehouseApprovalStatus: model.RequestPending,
		}, nil)

	res, err := svc.Create(context.Background(), requesterID, CreateRequestOrderRequest{
		ProductID: product.ID.String(),
		Quantity:  30,
	})

	assert.NoError(t, err)
	assert.Equal(t, model.RequestPending, res.AdminApprovalStatus)
	assert.Equal(t, model.RequestPending, res.WarehouseApprovalStatus)
	assert.Contains(t, m.notifier.byRole, model.NotifNewRequestOrder)
}

func TestAdminApproveRequestOrder_ForwardsToWarehouse(t *testing.T) {
	svc, m := newRequestOrderService(t)
	adminID := uuid.New()

	request := &model.RequestOrder{
		ID:                      uuid.New(),
		ProductID:               uuid.New(),
		Quantity:                30,
		Status:                  model.RequestPending,
		AdminApprovalStatus:     model.RequestPending,
		WarehouseApprovalStatus: model.RequestPending,
	}
	m.requestRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)
	m.requestRepo.On("Update", mock.Anything, request).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.AdminApprove(context.Background(), adminID, request.ID, "ok to restock")

	assert.NoError(t, err)
	assert.Equal(t, model.RequestApproved, res.AdminApprovalStatus)
	// The warehouse leg stays open and no stock moves yet
	assert.Equal(t, model.RequestPending, res.WarehouseApprovalStatus)
	m.productRepo.AssertNotCalled(t, "IncrementQuantity", mock.Anything, mock.Anything, mock.Anything)
	assert.Contains(t, m.notifier.byRole, model.NotifRequestOrderAdmin)
}

func TestAdminApproveRequestOrder_AlreadyDecided(t *testing.T) {
	svc, m := newRequestOrderService(t)

	request := &model.RequestOrder{
		ID:                  uuid.New(),
		AdminApprovalStatus: model.RequestApproved,
	}
	m.requestRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)

	res, err := svc.AdminApprove(context.Background(), uuid.New(), request.ID, "")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestWarehouseApproveRequestOrder_BeforeAdminDecision(t *testing.T) {
	svc, m := newRequestOrderService(t)

	request := &model.RequestOrder{
		ID:                      uuid.New(),
		ProductID:               uuid.New(),
		Quantity:                30,
		Status:                  model.RequestPending,
		AdminApprovalStatus:     model.RequestPending,
		WarehouseApprovalStatus: model.RequestPending,
	}
	m.requestRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)

	res, err := svc.WarehouseApprove(context.Background(), uuid.New(), request.ID, "")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrAdminApprovalRequired)
	// The gate fires before any mutation
	m.requestRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.productRepo.AssertNotCalled(t, "IncrementQuantity", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, model.RequestPending, request.WarehouseApprovalStatus)
}

func TestWarehouseApproveRequestOrder_CreditsStockOnce(t *testing.T) {
	svc, m := newRequestOrderService(t)
	staffID := uuid.New()

	request := &model.RequestOrder{
		ID:                      uuid.New(),
		ProductID:               uuid.New(),
		Quantity:                30,
		RequestedBy:             uuid.New(),
		Status:                  model.RequestPending,
		AdminApprovalStatus:     model.RequestApproved,
		WarehouseApprovalStatus: model.RequestPending,
	}
	m.requestRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)
	m.requestRepo.On("Update", mock.Anything, request).Return(nil)
	m.productRepo.On("IncrementQuantity", mock.Anything, request.ProductID, 30).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.WarehouseApprove(context.Background(), staffID, request.ID, "received")

	assert.NoError(t, err)
	assert.Equal(t, model.RequestApproved, res.WarehouseApprovalStatus)
	assert.Equal(t, model.RequestApproved, res.Status)
	m.productRepo.AssertNumberOfCalls(t, "IncrementQuantity", 1)
	assert.Contains(t, m.notifier.direct, model.NotifWarehouseDecision)
}

func TestWarehouseRejectRequestOrder_NoStockMovement(t *testing.T) {
	svc, m := newRequestOrderService(t)
	staffID := uuid.New()

	request := &model.RequestOrder{
		ID:                      uuid.New(),
		ProductID:               uuid.New(),
		Quantity:                30,
		RequestedBy:             uuid.New(),
		Status:                  model.RequestPending,
		AdminApprovalStatus:     model.RequestApproved,
		WarehouseApprovalStatus: model.RequestPending,
	}
	m.requestRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)
	m.requestRepo.On("Update", mock.Anything, request).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.WarehouseReject(context.Background(), staffID, request.ID, "no space")

	assert.NoError(t, err)
	assert.Equal(t, model.RequestRejected, res.WarehouseApprovalStatus)
	assert.Equal(t, model.RequestRejected, res.Status)
	m.productRepo.AssertNotCalled(t, "IncrementQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminRejectRequestOrder_ClosesRequest(t *testing.T) {
	svc, m := newRequestOrderService(t)

	request := &model.RequestOrder{
		ID:                      uuid.New(),
		ProductID:               uuid.New(),
		Status:                  model.RequestPending,
		AdminApprovalStatus:     model.RequestPending,
		WarehouseApprovalStatus: model.RequestPending,
	}
	m.requestRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)
	m.requestRepo.On("Update", mock.Anything, request).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.AdminReject(context.Background(), uuid.New(), request.ID, "not needed")

	assert.NoError(t, err)
	assert.Equal(t, model.RequestRejected, res.AdminApprovalStatus)
	assert.Equal(t, model.RequestRejected, res.Status)
}
