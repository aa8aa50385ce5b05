package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type reorderServiceMocks struct {
	reorderRepo *MockReorderRepo
	productRepo *MockProductRepo
	alertRepo   *MockAlertRepo
	auditRepo   *MockAuditRepo
	notifier    *recordingNotifier
}

func newReorderService(t *testing.T) (ReorderService, *reorderServiceMocks) {
	t.Helper()
	m := &reorderServiceMocks{
		reorderRepo: new(MockReorderRepo),
		productRepo: new(MockProductRepo),
		alertRepo:   new(MockAlertRepo),
		auditRepo:   new(MockAuditRepo),
		notifier:    new(recordingNotifier),
	}
	svc := NewReorderService(m.reorderRepo, m.productRepo, m.alertRepo, m.auditRepo,
		fakeTxManager{}, m.notifier)
	return svc, m
}

func TestCreateReorder_EstimatesCost(t *testing.T) {
	svc, m := newReorderService(t)
	adminID := uuid.New()
	requestID := uuid.New()

	cost := decimal.NewFromFloat(2.50)
	product := &model.Product{ID: uuid.New(), Name: "Widget", ReorderCost: &cost}

	m.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.reorderRepo.On("HasOpenForProduct", mock.Anything, product.ID).Return(false, nil)

	var created *model.ReorderRequest
	m.reorderRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.ReorderRequest")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.ReorderRequest)
			created.ID = requestID
		}).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	m.reorderRepo.On("FindByID", mock.Anything, requestID).
		Return(&model.ReorderRequest{
			ID:                requestID,
			ProductID:         product.ID,
			Product:           product,
			AdminID:           adminID,
			QuantityRequested: 100,
			EstimatedCost:     decimal.NewFromFloat(250),
			Status:            model.ReorderStatusPending,
		}, nil)

	res, err := svc.Create(context.Background(), adminID, CreateReorderRequest{
		ProductID:         product.ID.String(),
		QuantityRequested: 100,
	})

	assert.NoError(t, err)
	assert.Equal(t, model.ReorderStatusPending, res.Status)
	assert.Equal(t, "250.00", res.EstimatedCost)
	assert.Equal(t, "250.00", created.EstimatedCost.StringFixed(2))
}

func TestCreateReorder_OpenRequestBlocks(t *testing.T) {
	svc, m := newReorderService(t)

	product := &model.Product{ID: uuid.New(), Name: "Widget"}
	m.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.reorderRepo.On("HasOpenForProduct", mock.Anything, product.ID).Return(true, nil)

	res, err := svc.Create(context.Background(), uuid.New(), CreateReorderRequest{
		ProductID:         product.ID.String(),
		QuantityRequested: 50,
	})

	assert.Nil(t, res)
	assert.EqualError(t, err, "an open reorder already exists for this product")
	m.reorderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWarehouseApproveReorder_PartialQuantity(t *testing.T) {
	svc, m := newReorderService(t)
	staffID := uuid.New()

	request := &model.ReorderRequest{
		ID:                uuid.New(),
		ProductID:         uuid.New(),
		AdminID:           uuid.New(),
		QuantityRequested: 100,
		Status:            model.ReorderStatusPending,
	}
	m.reorderRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)
	m.reorderRepo.On("Update", mock.Anything, request).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.WarehouseApprove(context.Background(), staffID, request.ID,
		WarehouseApproveReorderRequest{QuantityApproved: 80, Notes: "supplier cap"})

	assert.NoError(t, err)
	assert.Equal(t, model.ReorderStatusApproved, res.Status)
	assert.NotNil(t, res.QuantityApproved)
	assert.Equal(t, 80, *res.QuantityApproved)
	// Approval never touches stock; only completion credits it
	m.productRepo.AssertNotCalled(t, "IncrementQuantity", mock.Anything, mock.Anything, mock.Anything)
	assert.Contains(t, m.notifier.direct, model.NotifReorderApproved)
}

func TestAdminApproveReorder_NoQuantityFixed(t *testing.T) {
	svc, m := newReorderService(t)
	adminID := uuid.New()

	request := &model.ReorderRequest{
		ID:                uuid.New(),
		ProductID:         uuid.New(),
		AdminID:           adminID,
		QuantityRequested: 100,
		Status:            model.ReorderStatusPending,
	}
	m.reorderRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)
	m.reorderRepo.On("Update", mock.Anything, request).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.AdminApprove(context.Background(), adminID, request.ID)

	assert.NoError(t, err)
	assert.Equal(t, model.ReorderStatusApproved, res.Status)
	assert.Nil(t, res.QuantityApproved)
	assert.NotNil(t, request.ApprovedAt)
	m.productRepo.AssertNotCalled(t, "IncrementQuantity", mock.Anything, mock.Anything, mock.Anything)
	assert.Contains(t, m.notifier.byRole, model.NotifReorderApproved)
}

func TestAdminApproveReorder_AlreadyDecided(t *testing.T) {
	svc, m := newReorderService(t)

	request := &model.ReorderRequest{
		ID:     uuid.New(),
		Status: model.ReorderStatusApproved,
	}
	m.reorderRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)

	_, err := svc.AdminApprove(context.Background(), uuid.New(), request.ID)

	assert.ErrorIs(t, err, ErrNotPending)
	m.reorderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCompleteReorder_AdminApprovedFallsBackToRequested(t *testing.T) {
	svc, m := newReorderService(t)
	staffID := uuid.New()

	request := &model.ReorderRequest{
		ID:                uuid.New(),
		ProductID:         uuid.New(),
		AdminID:           uuid.New(),
		QuantityRequested: 100,
		Status:            model.ReorderStatusPending,
	}
	request.AdminApprove()

	m.reorderRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)
	m.reorderRepo.On("Update", mock.Anything, request).Return(nil)
	m.productRepo.On("IncrementQuantity", mock.Anything, request.ProductID, 100).Return(nil)
	m.alertRepo.On("ResolveAllForProduct", mock.Anything, request.ProductID).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.Complete(context.Background(), staffID, request.ID)

	assert.NoError(t, err)
	assert.Equal(t, model.ReorderStatusCompleted, res.Status)
	// No warehouse quantity was set, so the requested 100 is credited
	m.productRepo.AssertCalled(t, "IncrementQuantity", mock.Anything, request.ProductID, 100)
}

func TestCompleteReorder_CreditsApprovedQuantity(t *testing.T) {
	svc, m := newReorderService(t)
	staffID := uuid.New()
	approved := 80

	request := &model.ReorderRequest{
		ID:                uuid.New(),
		ProductID:         uuid.New(),
		AdminID:           uuid.New(),
		QuantityRequested: 100,
		QuantityApproved:  &approved,
		Status:            model.ReorderStatusApproved,
	}
	m.reorderRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)
	m.reorderRepo.On("Update", mock.Anything, request).Return(nil)
	m.productRepo.On("IncrementQuantity", mock.Anything, request.ProductID, 80).Return(nil)
	m.alertRepo.On("ResolveAllForProduct", mock.Anything, request.ProductID).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.Complete(context.Background(), staffID, request.ID)

	assert.NoError(t, err)
	assert.Equal(t, model.ReorderStatusCompleted, res.Status)
	assert.NotEmpty(t, res.CompletedAt)
	// The approved 80, not the requested 100, lands on the shelf
	m.productRepo.AssertCalled(t, "IncrementQuantity", mock.Anything, request.ProductID, 80)
	m.alertRepo.AssertCalled(t, "ResolveAllForProduct", mock.Anything, request.ProductID)
	assert.Contains(t, m.notifier.direct, model.NotifReorderCompleted)
}

func TestCompleteReorder_RequiresApproval(t *testing.T) {
	svc, m := newReorderService(t)

	request := &model.ReorderRequest{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Status:    model.ReorderStatusPending,
	}
	m.reorderRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)

	res, err := svc.Complete(context.Background(), uuid.New(), request.ID)

	assert.Nil(t, res)
	assert.EqualError(t, err, "reorder request must be approved before completion")
	m.productRepo.AssertNotCalled(t, "IncrementQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelReorder_OnlyWhilePending(t *testing.T) {
	svc, m := newReorderService(t)

	request := &model.ReorderRequest{
		ID:     uuid.New(),
		Status: model.ReorderStatusApproved,
	}
	m.reorderRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)

	res, err := svc.Cancel(context.Background(), uuid.New(), request.ID)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestWarehouseRejectReorder_Cancels(t *testing.T) {
	svc, m := newReorderService(t)
	staffID := uuid.New()

	request := &model.ReorderRequest{
		ID:      uuid.New(),
		AdminID: uuid.New(),
		Status:  model.ReorderStatusPending,
	}
	m.reorderRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)
	m.reorderRepo.On("Update", mock.Anything, request).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	res, err := svc.WarehouseReject(context.Background(), staffID, request.ID, "no supplier")

	assert.NoError(t, err)
	assert.Equal(t, model.ReorderStatusCancelled, res.Status)
	assert.Contains(t, m.notifier.direct, model.NotifReorderRejected)
}

func TestReorderQuantityToAdd_FallsBackToRequested(t *testing.T) {
	request := &model.ReorderRequest{QuantityRequested: 40}
	assert.Equal(t, 40, request.QuantityToAdd())

	approved := 25
	request.QuantityApproved = &approved
	assert.Equal(t, 25, request.QuantityToAdd())
}
