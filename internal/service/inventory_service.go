package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type AdjustStockRequest struct {
	AdjustmentType string `json:"adjustment_type" binding:"required,oneof=increase decrease set"`
	Quantity       int    `json:"quantity" binding:"min=0"`
	Reason         string `json:"reason"`
}

type UpdateStockSettingsRequest struct {
	LowStockThreshold *int    `json:"low_stock_threshold" binding:"omitempty,min=0"`
	ReorderQuantity   *int    `json:"reorder_quantity" binding:"omitempty,min=0"`
	AutoReorder       *bool   `json:"auto_reorder"`
	ReorderCost       *string `json:"reorder_cost"`
}

type InventoryDashboard struct {
	TotalProducts    int64                    `json:"total_products"`
	LowStockCount    int                      `json:"low_stock_count"`
	OutOfStockCount  int                      `json:"out_of_stock_count"`
	UnresolvedAlerts int                      `json:"unresolved_alerts"`
	LowStockProducts []ProductResponse        `json:"low_stock_products"`
	RecentAlerts     []model.InventoryAlert   `json:"recent_alerts"`
	ReorderStats     *repository.ReorderStats `json:"reorder_stats"`
}

// Websocket payload
type InventoryEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

type InventoryService interface {
	Dashboard(ctx context.Context) (*InventoryDashboard, error)
	ListAlerts(ctx context.Context, resolved *bool, page, limit int) ([]model.InventoryAlert, int64, error)
	ResolveAlert(ctx context.Context, userID, alertID uuid.UUID) error
	ListLowStock(ctx context.Context) ([]ProductResponse, error)
	AdjustStock(ctx context.Context, adminID, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error)
	UpdateStockSettings(ctx context.Context, adminID, productID uuid.UUID, req UpdateStockSettingsRequest) (*ProductResponse, error)
	SendLowStockNotifications(ctx context.Context) (int, error)

	// CheckAndCreateAlerts inspects the product's stock level and raises
	// alerts. An existing unresolved alert for the product, of any type,
	// suppresses all new ones.
	CheckAndCreateAlerts(ctx context.Context, productID uuid.UUID) error
}

type inventoryService struct {
	productRepo repository.ProductRepository
	alertRepo   repository.AlertRepository
	reorderRepo repository.ReorderRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    NotificationService
	hub         *ws.Hub
}

func NewInventoryService(
	productRepo repository.ProductRepository,
	alertRepo repository.AlertRepository,
	reorderRepo repository.ReorderRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier NotificationService,
	hub *ws.Hub,
) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		alertRepo:   alertRepo,
		reorderRepo: reorderRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifier,
		hub:         hub,
	}
}

func (s *inventoryService) broadcast(event string, data map[string]interface{}) {
	if s.hub == nil {
		return
	}
	msg, err := json.Marshal(InventoryEvent{Event: event, Data: data})
	if err != nil {
		return
	}
	select {
	case s.hub.Broadcast <- msg:
	default:
	}
}

func (s *inventoryService) Dashboard(ctx context.Context) (*InventoryDashboard, error) {
	lowStock, err := s.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}

	_, totalProducts, err := s.productRepo.List(ctx, repository.ProductFilter{Page: 1, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	alerts, err := s.alertRepo.ListUnresolved(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	stats, err := s.reorderRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reorder stats: %w", err)
	}

	dash := &InventoryDashboard{
		TotalProducts:    totalProducts,
		UnresolvedAlerts: len(alerts),
		RecentAlerts:     alerts,
		ReorderStats:     stats,
	}
	if len(dash.RecentAlerts) > 10 {
		dash.RecentAlerts = dash.RecentAlerts[:10]
	}

	for i := range lowStock {
		p := &lowStock[i]
		if p.IsOutOfStock() {
			dash.OutOfStockCount++
		} else {
			dash.LowStockCount++
		}
		dash.LowStockProducts = append(dash.LowStockProducts, *mapProductResponse(p))
	}

	return dash, nil
}

func (s *inventoryService) ListAlerts(ctx context.Context, resolved *bool, page, limit int) ([]model.InventoryAlert, int64, error) {
	return s.alertRepo.List(ctx, resolved, page, limit)
}

func (s *inventoryService) ResolveAlert(ctx context.Context, userID, alertID uuid.UUID) error {
	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}
	if alert.IsResolved {
		return nil
	}

	alert.Resolve()
	if err := s.alertRepo.Update(ctx, alert); err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	return nil
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, *mapProductResponse(&products[i]))
	}
	return res, nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, adminID, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var newQuantity int
	switch req.AdjustmentType {
	case "increase":
		newQuantity = product.Quantity + req.Quantity
	case "decrease":
		// Decreasing past zero clamps rather than fails
		newQuantity = product.Quantity - req.Quantity
		if newQuantity < 0 {
			newQuantity = 0
		}
	case "set":
		newQuantity = req.Quantity
	default:
		return nil, fmt.Errorf("invalid adjustment type: %s", req.AdjustmentType)
	}
	product.Quantity = newQuantity

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"adjustment_type": req.AdjustmentType,
			"quantity":        req.Quantity,
			"new_quantity":    newQuantity,
			"reason":          req.Reason,
		})
		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionAdjustStock,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.CheckAndCreateAlerts(ctx, productID); err != nil {
		return nil, err
	}

	s.broadcast("stock_adjusted", map[string]interface{}{
		"product_id": product.ID.String(),
		"quantity":   product.Quantity,
	})

	return mapProductResponse(product), nil
}

func (s *inventoryService) UpdateStockSettings(ctx context.Context, adminID, productID uuid.UUID, req UpdateStockSettingsRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.ReorderQuantity != nil {
		product.ReorderQuantity = *req.ReorderQuantity
	}
	if req.AutoReorder != nil {
		product.AutoReorder = *req.AutoReorder
	}
	if req.ReorderCost != nil {
		cost, err := decimal.NewFromString(*req.ReorderCost)
		if err != nil {
			return nil, fmt.Errorf("invalid reorder_cost: %w", err)
		}
		product.ReorderCost = &cost
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update stock settings: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionUpdateInventory,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Threshold changes may put the product into or out of alert territory
	if err := s.CheckAndCreateAlerts(ctx, productID); err != nil {
		return nil, err
	}

	return mapProductResponse(product), nil
}

// SendLowStockNotifications pushes a notification to every admin for
// each product at or below its threshold, and returns how many products
// were flagged.
func (s *inventoryService) SendLowStockNotifications(ctx context.Context) (int, error) {
	products, err := s.productRepo.ListLowStock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list low stock products: %w", err)
	}

	if s.notifier != nil {
		for i := range products {
			p := &products[i]
			s.notifier.NotifyRole(ctx, model.RoleAdmin, model.NotifLowStock, map[string]interface{}{
				"product_id":   p.ID.String(),
				"product_name": p.Name,
				"quantity":     p.Quantity,
				"threshold":    p.LowStockThreshold,
			})
		}
	}

	return len(products), nil
}

func (s *inventoryService) CheckAndCreateAlerts(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	exists, err := s.alertRepo.HasUnresolved(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to check existing alerts: %w", err)
	}
	if exists {
		return nil
	}

	var created []*model.InventoryAlert
	if product.IsOutOfStock() {
		created = append(created, model.NewOutOfStockAlert(product))
	} else if product.IsLowStock() {
		created = append(created, model.NewLowStockAlert(product))
	}
	if product.NeedsReordering() {
		created = append(created, model.NewReorderNeededAlert(product))
	}

	for _, alert := range created {
		if err := s.alertRepo.Create(ctx, alert); err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}
		s.broadcast("inventory_alert", map[string]interface{}{
			"product_id": product.ID.String(),
			"alert_type": alert.AlertType,
			"message":    alert.Message,
		})
	}

	if len(created) > 0 && s.notifier != nil {
		s.notifier.NotifyRole(ctx, model.RoleAdmin, model.NotifLowStock, map[string]interface{}{
			"product_id":   product.ID.String(),
			"product_name": product.Name,
			"quantity":     product.Quantity,
		})
	}

	return nil
}
