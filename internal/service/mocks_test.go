package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// fakeTxManager runs the callback directly, standing in for a real
// database transaction.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// recordingNotifier captures notifications instead of writing rows.
type recordingNotifier struct {
	direct []string // notification types sent to single users
	byRole []string // notification types fanned out to a role
}

func (n *recordingNotifier) Notify(ctx context.Context, userID uuid.UUID, notifType string, payload map[string]interface{}) {
	n.direct = append(n.direct, notifType)
}

func (n *recordingNotifier) NotifyRole(ctx context.Context, role string, notifType string, payload map[string]interface{}) {
	n.byRole = append(n.byRole, notifType)
}

func (n *recordingNotifier) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error) {
	return nil, 0, nil
}
func (n *recordingNotifier) MarkRead(ctx context.Context, userID, id uuid.UUID) error { return nil }
func (n *recordingNotifier) MarkAllRead(ctx context.Context, userID uuid.UUID) error  { return nil }
func (n *recordingNotifier) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}
func (n *recordingNotifier) Delete(ctx context.Context, userID, id uuid.UUID) error { return nil }

// stubInventory records which products were checked for alerts.
type stubInventory struct {
	checked []uuid.UUID
}

func (s *stubInventory) Dashboard(ctx context.Context) (*InventoryDashboard, error) { return nil, nil }
func (s *stubInventory) ListAlerts(ctx context.Context, resolved *bool, page, limit int) ([]model.InventoryAlert, int64, error) {
	return nil, 0, nil
}
func (s *stubInventory) ResolveAlert(ctx context.Context, userID, alertID uuid.UUID) error {
	return nil
}
func (s *stubInventory) ListLowStock(ctx context.Context) ([]ProductResponse, error) {
	return nil, nil
}
func (s *stubInventory) AdjustStock(ctx context.Context, adminID, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	return nil, nil
}
func (s *stubInventory) UpdateStockSettings(ctx context.Context, adminID, productID uuid.UUID, req UpdateStockSettingsRequest) (*ProductResponse, error) {
	return nil, nil
}
func (s *stubInventory) SendLowStockNotifications(ctx context.Context) (int, error) {
	return 0, nil
}
func (s *stubInventory) CheckAndCreateAlerts(ctx context.Context, productID uuid.UUID) error {
	s.checked = append(s.checked, productID)
	return nil
}

// --- Repository mocks ---

type MockProductRepo struct{ mock.Mock }

func (m *MockProductRepo) Create(ctx context.Context, product *model.Product) error {
	return m.Called(ctx, product).Error(0)
}
func (m *MockProductRepo) Update(ctx context.Context, product *model.Product) error {
	return m.Called(ctx, product).Error(0)
}
func (m *MockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}
func (m *MockProductRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}
func (m *MockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}
func (m *MockProductRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}
func (m *MockProductRepo) IncrementQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}
func (m *MockProductRepo) ListLowStock(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

type MockAlertRepo struct{ mock.Mock }

func (m *MockAlertRepo) Create(ctx context.Context, alert *model.InventoryAlert) error {
	return m.Called(ctx, alert).Error(0)
}
func (m *MockAlertRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InventoryAlert), args.Error(1)
}
func (m *MockAlertRepo) HasUnresolved(ctx context.Context, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}
func (m *MockAlertRepo) ListUnresolved(ctx context.Context, productID *uuid.UUID) ([]model.InventoryAlert, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InventoryAlert), args.Error(1)
}
func (m *MockAlertRepo) List(ctx context.Context, resolved *bool, page, limit int) ([]model.InventoryAlert, int64, error) {
	args := m.Called(ctx, resolved, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.InventoryAlert), args.Get(1).(int64), args.Error(2)
}
func (m *MockAlertRepo) Update(ctx context.Context, alert *model.InventoryAlert) error {
	return m.Called(ctx, alert).Error(0)
}
func (m *MockAlertRepo) ResolveAllForProduct(ctx context.Context, productID uuid.UUID) error {
	return m.Called(ctx, productID).Error(0)
}

type MockAuditRepo struct{ mock.Mock }

func (m *MockAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}
func (m *MockAuditRepo) List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, action, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.AuditLog), args.Get(1).(int64), args.Error(2)
}

type MockOrderRepo struct{ mock.Mock }

func (m *MockOrderRepo) Create(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}
func (m *MockOrderRepo) CreateItem(ctx context.Context, item *model.OrderItem) error {
	return m.Called(ctx, item).Error(0)
}
func (m *MockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}
func (m *MockOrderRepo) Update(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}
func (m *MockOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}
func (m *MockOrderRepo) ListPendingApproval(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

type MockCartRepo struct{ mock.Mock }

func (m *MockCartRepo) FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}
func (m *MockCartRepo) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error) {
	args := m.Called(ctx, cartID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartItem), args.Error(1)
}
func (m *MockCartRepo) CreateItem(ctx context.Context, item *model.CartItem) error {
	return m.Called(ctx, item).Error(0)
}
func (m *MockCartRepo) UpdateItem(ctx context.Context, item *model.CartItem) error {
	return m.Called(ctx, item).Error(0)
}
func (m *MockCartRepo) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return m.Called(ctx, cartID, itemID).Error(0)
}
func (m *MockCartRepo) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return m.Called(ctx, cartID).Error(0)
}

type MockTransactionRepo struct{ mock.Mock }

func (m *MockTransactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}
func (m *MockTransactionRepo) Update(ctx context.Context, tx *model.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}
func (m *MockTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) FindByTransactionID(ctx context.Context, transactionID string) (*model.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*model.Transaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) TicketNumberExists(ctx context.Context, ticket string) (bool, error) {
	args := m.Called(ctx, ticket)
	return args.Bool(0), args.Error(1)
}
func (m *MockTransactionRepo) List(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Transaction), args.Get(1).(int64), args.Error(2)
}
func (m *MockTransactionRepo) Summary(ctx context.Context) (*repository.TransactionSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.TransactionSummary), args.Error(1)
}

type MockRequestOrderRepo struct{ mock.Mock }

func (m *MockRequestOrderRepo) Create(ctx context.Context, req *model.RequestOrder) error {
	return m.Called(ctx, req).Error(0)
}
func (m *MockRequestOrderRepo) Update(ctx context.Context, req *model.RequestOrder) error {
	return m.Called(ctx, req).Error(0)
}
func (m *MockRequestOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RequestOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RequestOrder), args.Error(1)
}
func (m *MockRequestOrderRepo) List(ctx context.Context, status string, page, limit int) ([]model.RequestOrder, int64, error) {
	args := m.Called(ctx, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.RequestOrder), args.Get(1).(int64), args.Error(2)
}
func (m *MockRequestOrderRepo) ListAwaitingWarehouse(ctx context.Context, page, limit int) ([]model.RequestOrder, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.RequestOrder), args.Get(1).(int64), args.Error(2)
}

type MockReorderRepo struct{ mock.Mock }

func (m *MockReorderRepo) Create(ctx context.Context, req *model.ReorderRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *MockReorderRepo) Update(ctx context.Context, req *model.ReorderRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *MockReorderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ReorderRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReorderRequest), args.Error(1)
}
func (m *MockReorderRepo) List(ctx context.Context, status string, page, limit int) ([]model.ReorderRequest, int64, error) {
	args := m.Called(ctx, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.ReorderRequest), args.Get(1).(int64), args.Error(2)
}
func (m *MockReorderRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ReorderRequest, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReorderRequest), args.Error(1)
}
func (m *MockReorderRepo) HasOpenForProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}
func (m *MockReorderRepo) Stats(ctx context.Context) (*repository.ReorderStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ReorderStats), args.Error(1)
}
func (m *MockReorderRepo) ListDecidedBy(ctx context.Context, staffID uuid.UUID, since *time.Time, page, limit int) ([]model.ReorderRequest, int64, error) {
	args := m.Called(ctx, staffID, since, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.ReorderRequest), args.Get(1).(int64), args.Error(2)
}
