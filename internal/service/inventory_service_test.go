package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type inventoryServiceMocks struct {
	productRepo *MockProductRepo
	alertRepo   *MockAlertRepo
	reorderRepo *MockReorderRepo
	auditRepo   *MockAuditRepo
	notifier    *recordingNotifier
}

func newInventoryService(t *testing.T) (InventoryService, *inventoryServiceMocks) {
	t.Helper()
	m := &inventoryServiceMocks{
		productRepo: new(MockProductRepo),
		alertRepo:   new(MockAlertRepo),
		reorderRepo: new(MockReorderRepo),
		auditRepo:   new(MockAuditRepo),
		notifier:    new(recordingNotifier),
	}
	svc := NewInventoryService(m.productRepo, m.alertRepo, m.reorderRepo, m.auditRepo,
		fakeTxManager{}, m.notifier, nil)
	return svc, m
}

func collectAlertTypes(calls []mock.Call) []string {
	var types []string
	for _, call := range calls {
		if call.Method != "Create" {
			continue
		}
		types = append(types, call.Arguments.Get(1).(*model.InventoryAlert).AlertType)
	}
	return types
}

func TestCheckAndCreateAlerts_OutOfStockWithAutoReorder(t *testing.T) {
	svc, m := newInventoryService(t)

	product := &model.Product{
		ID:                uuid.New(),
		Name:              "Widget",
		Quantity:          0,
		LowStockThreshold: 10,
		AutoReorder:       true,
	}
	m.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.alertRepo.On("HasUnresolved", mock.Anything, product.ID).Return(false, nil)
	m.alertRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.InventoryAlert")).Return(nil)

	err := svc.CheckAndCreateAlerts(context.Background(), product.ID)

	assert.NoError(t, err)
	// Out-of-stock supersedes low-stock; reorder-needed is independent
	assert.ElementsMatch(t,
		[]string{model.AlertTypeOutOfStock, model.AlertTypeReorderNeeded},
		collectAlertTypes(m.alertRepo.Calls))
	assert.Contains(t, m.notifier.byRole, model.NotifLowStock)
}

func TestCheckAndCreateAlerts_LowStockOnly(t *testing.T) {
	svc, m := newInventoryService(t)

	product := &model.Product{
		ID:                uuid.New(),
		Name:              "Widget",
		Quantity:          5,
		LowStockThreshold: 10,
	}
	m.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.alertRepo.On("HasUnresolved", mock.Anything, product.ID).Return(false, nil)
	m.alertRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.InventoryAlert")).Return(nil)

	err := svc.CheckAndCreateAlerts(context.Background(), product.ID)

	assert.NoError(t, err)
	assert.Equal(t, []string{model.AlertTypeLowStock}, collectAlertTypes(m.alertRepo.Calls))
}

func TestCheckAndCreateAlerts_SuppressedByExisting(t *testing.T) {
	svc, m := newInventoryService(t)

	product := &model.Product{ID: uuid.New(), Quantity: 0, LowStockThreshold: 10}
	m.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.alertRepo.On("HasUnresolved", mock.Anything, product.ID).Return(true, nil)

	err := svc.CheckAndCreateAlerts(context.Background(), product.ID)

	assert.NoError(t, err)
	m.alertRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, m.notifier.byRole)
}

func TestCheckAndCreateAlerts_HealthyStock(t *testing.T) {
	svc, m := newInventoryService(t)

	product := &model.Product{ID: uuid.New(), Quantity: 50, LowStockThreshold: 10, AutoReorder: true}
	m.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.alertRepo.On("HasUnresolved", mock.Anything, product.ID).Return(false, nil)

	err := svc.CheckAndCreateAlerts(context.Background(), product.ID)

	assert.NoError(t, err)
	m.alertRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdjustStock_DecreaseClampsAtZero(t *testing.T) {
	svc, m := newInventoryService(t)
	adminID := uuid.New()

	product := &model.Product{ID: uuid.New(), Name: "Widget", Quantity: 3, LowStockThreshold: 10}
	m.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.productRepo.On("Update", mock.Anything, product).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	m.alertRepo.On("HasUnresolved", mock.Anything, product.ID).Return(false, nil)
	m.alertRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.InventoryAlert")).Return(nil)

	res, err := svc.AdjustStock(context.Background(), adminID, product.ID,
		AdjustStockRequest{AdjustmentType: "decrease", Quantity: 5, Reason: "shrinkage"})

	assert.NoError(t, err)
	assert.Equal(t, 0, res.Quantity)
	assert.Contains(t, collectAlertTypes(m.alertRepo.Calls), model.AlertTypeOutOfStock)
}

func TestAdjustStock_IncreaseAppliesAndRechecks(t *testing.T) {
	svc, m := newInventoryService(t)
	adminID := uuid.New()

	product := &model.Product{ID: uuid.New(), Name: "Widget", Quantity: 3, LowStockThreshold: 10}
	m.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.productRepo.On("Update", mock.Anything, product).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	m.alertRepo.On("HasUnresolved", mock.Anything, product.ID).Return(false, nil)

	res, err := svc.AdjustStock(context.Background(), adminID, product.ID,
		AdjustStockRequest{AdjustmentType: "increase", Quantity: 20, Reason: "delivery"})

	assert.NoError(t, err)
	assert.Equal(t, 23, res.Quantity)
	// Back above the threshold, so no new alert
	m.alertRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdjustStock_SetOverwritesQuantity(t *testing.T) {
	svc, m := newInventoryService(t)
	adminID := uuid.New()

	product := &model.Product{ID: uuid.New(), Name: "Widget", Quantity: 42, LowStockThreshold: 10}
	m.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.productRepo.On("Update", mock.Anything, product).Return(nil)
	m.auditRepo.On("Log", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	m.alertRepo.On("HasUnresolved", mock.Anything, product.ID).Return(false, nil)

	res, err := svc.AdjustStock(context.Background(), adminID, product.ID,
		AdjustStockRequest{AdjustmentType: "set", Quantity: 15, Reason: "stocktake"})

	assert.NoError(t, err)
	assert.Equal(t, 15, res.Quantity)
}

func TestSendLowStockNotifications_OnePerProduct(t *testing.T) {
	svc, m := newInventoryService(t)

	products := []model.Product{
		{ID: uuid.New(), Name: "Widget", Quantity: 2, LowStockThreshold: 10},
		{ID: uuid.New(), Name: "Gadget", Quantity: 0, LowStockThreshold: 5},
	}
	m.productRepo.On("ListLowStock", mock.Anything).Return(products, nil)

	count, err := svc.SendLowStockNotifications(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{model.NotifLowStock, model.NotifLowStock}, m.notifier.byRole)
}

func TestResolveAlert_Idempotent(t *testing.T) {
	svc, m := newInventoryService(t)

	alert := &model.InventoryAlert{ID: uuid.New(), ProductID: uuid.New(), IsResolved: true}
	m.alertRepo.On("FindByID", mock.Anything, alert.ID).Return(alert, nil)

	err := svc.ResolveAlert(context.Background(), uuid.New(), alert.ID)

	assert.NoError(t, err)
	m.alertRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestResolveAlert_MarksResolved(t *testing.T) {
	svc, m := newInventoryService(t)

	alert := &model.InventoryAlert{ID: uuid.New(), ProductID: uuid.New()}
	m.alertRepo.On("FindByID", mock.Anything, alert.ID).Return(alert, nil)
	m.alertRepo.On("Update", mock.Anything, alert).Return(nil)

	err := svc.ResolveAlert(context.Background(), uuid.New(), alert.ID)

	assert.NoError(t, err)
	assert.True(t, alert.IsResolved)
	assert.NotNil(t, alert.ResolvedAt)
}
