package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs
type PlaceOrderRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=card cod bank_transfer"`
	Notes         string `json:"notes"`
}

type ReturnOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type StaffDecisionRequest struct {
	Notes string `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Processing Shipped Delivered"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Paid Failed Refunded"`
}

// OrderTrackingResponse is the compact status view customers poll from
// the order tracking page.
type OrderTrackingResponse struct {
	OrderNumber    string `json:"order_number"`
	OrderStatus    string `json:"order_status"`
	PaymentStatus  string `json:"payment_status"`
	ApprovalStatus string `json:"approval_status"`
	UpdatedAt      string `json:"updated_at"`
}

type OrderItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	OrderNumber    string              `json:"order_number"`
	CustomerName   string              `json:"customer_name,omitempty"`
	TotalAmount    string              `json:"total_amount"`
	PaymentMethod  string              `json:"payment_method"`
	PaymentStatus  string              `json:"payment_status"`
	OrderStatus    string              `json:"order_status"`
	ApprovalStatus string              `json:"approval_status"`
	StaffNotes     string              `json:"staff_notes,omitempty"`
	ReturnReason   string              `json:"return_reason,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      string              `json:"created_at"`
}

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*OrderResponse, error)
	GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, privileged bool) (*OrderResponse, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]OrderResponse, int64, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error)
	RequestReturn(ctx context.Context, userID, orderID uuid.UUID, req ReturnOrderRequest) (*OrderResponse, error)
	TrackOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderTrackingResponse, error)

	// Staff operations
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]OrderResponse, int64, error)
	ListPendingApproval(ctx context.Context, filter repository.OrderFilter) ([]OrderResponse, int64, error)
	ApproveOrder(ctx context.Context, staffID, orderID uuid.UUID, notes string) (*OrderResponse, error)
	RejectOrder(ctx context.Context, staffID, orderID uuid.UUID, notes string) (*OrderResponse, error)
	UpdateOrderStatus(ctx context.Context, staffID, orderID uuid.UUID, status string) (*OrderResponse, error)
	UpdatePaymentStatus(ctx context.Context, staffID, orderID uuid.UUID, status string) (*OrderResponse, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	inventory   InventoryService
	notifier    NotificationService
	hub         *ws.Hub
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	txRepo repository.TransactionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	inventory InventoryService,
	notifier NotificationService,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		txRepo:      txRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		inventory:   inventory,
		notifier:    notifier,
		hub:         hub,
	}
}

func mapOrderResponse(o *model.Order) *OrderResponse {
	res := &OrderResponse{
		ID:             o.ID.String(),
		OrderNumber:    o.OrderNumber,
		TotalAmount:    o.TotalAmount.StringFixed(2),
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		OrderStatus:    o.OrderStatus,
		ApprovalStatus: o.ApprovalStatus,
		StaffNotes:     o.StaffNotes,
		ReturnReason:   o.ReturnReason,
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	}
	if o.User != nil {
		res.CustomerName = o.User.Name
	}
	for _, item := range o.Items {
		ir := OrderItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		if item.Product != nil {
			ir.Name = item.Product.Name
		}
		res.Items = append(res.Items, ir)
	}
	return res
}

const ticketLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generateTicketNumber produces a short human-readable payment reference
// of 3 uppercase letters followed by 4 digits, e.g. "KQZ4821".
func generateTicketNumber() (string, error) {
	buf := make([]byte, 0, 7)
	for i := 0; i < 3; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(ticketLetters))))
		if err != nil {
			return "", err
		}
		buf = append(buf, ticketLetters[n.Int64()])
	}
	for i := 0; i < 4; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		buf = append(buf, byte('0'+n.Int64()))
	}
	return string(buf), nil
}

// uniqueTicketNumber retries generation until the ticket does not collide
// with an existing transaction.
func uniqueTicketNumber(ctx context.Context, txRepo repository.TransactionRepository) (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		ticket, err := generateTicketNumber()
		if err != nil {
			return "", err
		}
		exists, err := txRepo.TicketNumberExists(ctx, ticket)
		if err != nil {
			return "", err
		}
		if !exists {
			return ticket, nil
		}
	}
	return "", errors.New("could not generate unique ticket number")
}

func generateOrderNumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % 1_000_000)
	}
	return fmt.Sprintf("ORD-%s-%06d", time.Now().Format("20060102"), n.Int64())
}

func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*OrderResponse, error) {
	cart, err := s.cartRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Availability check for every line before anything is written
	for _, item := range cart.Items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		if product.Quantity < item.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
		}
	}

	ticket, err := uniqueTicketNumber(ctx, s.txRepo)
	if err != nil {
		return nil, err
	}

	order := model.Order{
		UserID:         userID,
		OrderNumber:    generateOrderNumber(),
		TotalAmount:    cart.TotalAmount(),
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  model.PaymentStatusPending,
		OrderStatus:    model.OrderStatusPending,
		ApprovalStatus: model.ApprovalPending,
		Notes:          req.Notes,
	}

	var affectedProducts []uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Create(txCtx, &order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range cart.Items {
			product, findErr := s.productRepo.FindByID(txCtx, item.ProductID)
			if findErr != nil {
				return fmt.Errorf("failed to load product: %w", findErr)
			}

			orderItem := &model.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			}
			if err := s.orderRepo.CreateItem(txCtx, orderItem); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}

			if err := s.productRepo.UpdateQuantity(txCtx, item.ProductID, product.Quantity-item.Quantity); err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
			affectedProducts = append(affectedProducts, item.ProductID)
		}

		tx := &model.Transaction{
			OrderID:      order.ID,
			UserID:       userID,
			Amount:       order.TotalAmount,
			Type:         model.TxTypePayment,
			TicketNumber: ticket,
			Status:       model.TxStatusPending,
		}
		if err := s.txRepo.Create(txCtx, tx); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"order_number": order.OrderNumber,
			"total_amount": order.TotalAmount.StringFixed(2),
			"items":        len(cart.Items),
		})
		audit := &model.AuditLog{
			UserID:     &userID,
			Action:     model.ActionPlaceOrder,
			EntityID:   order.ID.String(),
			EntityName: order.OrderNumber,
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

	// Post-commit housekeeping, deliberately outside the transaction
	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	for _, pid := range affectedProducts {
		if err := s.inventory.CheckAndCreateAlerts(ctx, pid); err != nil {
			return nil, err
		}
	}

	s.broadcast("order_placed", map[string]interface{}{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount.StringFixed(2),
	})

	reloaded, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return mapOrderResponse(reloaded), nil
}

func (s *orderService) broadcast(event string, data map[string]interface{}) {
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

func (s *orderService) GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, privileged bool) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !privileged && order.UserID != userID {
		return nil, ErrForbidden
	}
	return mapOrderResponse(order), nil
}

func (s *orderService) ListMyOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]OrderResponse, int64, error) {
	return s.ListOrders(ctx, repository.OrderFilter{UserID: &userID, Page: page, Limit: limit})
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]OrderResponse, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, *mapOrderResponse(&orders[i]))
	}
	return res, total, nil
}

func (s *orderService) ListPendingApproval(ctx context.Context, filter repository.OrderFilter) ([]OrderResponse, int64, error) {
	orders, total, err := s.orderRepo.ListPendingApproval(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, *mapOrderResponse(&orders[i]))
	}
	return res, total, nil
}

func (s *orderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	if !order.CanCancel() {
		return nil, ErrCannotCancel
	}

	order.OrderStatus = model.OrderStatusCancelled

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}

		// Return reserved stock to the shelf
		for _, item := range order.Items {
			if err := s.productRepo.IncrementQuantity(txCtx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}

		audit := &model.AuditLog{
			UserID:     &userID,
			Action:     model.ActionCancelOrder,
			EntityID:   order.ID.String(),
			EntityName: order.OrderNumber,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return mapOrderResponse(order), nil
}

func (s *orderService) RequestReturn(ctx context.Context, userID, orderID uuid.UUID, req ReturnOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	if order.OrderStatus != model.OrderStatusDelivered {
		return nil, errors.New("only delivered orders can be returned")
	}

	// Recording the request does not touch stock or payment; a staff
	// member handles the physical return separately.
	order.OrderStatus = model.OrderStatusReturnRequested
	order.ReturnReason = req.Reason

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to request return: %w", err)
	}

	return mapOrderResponse(order), nil
}

func (s *orderService) ApproveOrder(ctx context.Context, staffID, orderID uuid.UUID, notes string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !order.IsPending() {
		return nil, ErrNotPending
	}

	order.Approve(staffID, notes)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return fmt.Errorf("failed to approve order: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     &staffID,
			Action:     model.ActionApproveOrder,
			EntityID:   order.ID.String(),
			EntityName: order.OrderNumber,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, order.UserID, model.NotifOrderApproved, map[string]interface{}{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
		})
	}

	return mapOrderResponse(order), nil
}

func (s *orderService) RejectOrder(ctx context.Context, staffID, orderID uuid.UUID, notes string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !order.IsPending() {
		return nil, ErrNotPending
	}

	order.Reject(staffID, notes)

	// Rejection is a status-only transition. The customer gets their
	// stock back through the cancel flow, not here.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return fmt.Errorf("failed to reject order: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"notes": notes})
		audit := &model.AuditLog{
			UserID:     &staffID,
			Action:     model.ActionRejectOrder,
			EntityID:   order.ID.String(),
			EntityName: order.OrderNumber,
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

	if s.notifier != nil {
		s.notifier.Notify(ctx, order.UserID, model.NotifOrderRejected, map[string]interface{}{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"notes":        notes,
		})
	}

	return mapOrderResponse(order), nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, staffID, orderID uuid.UUID, status string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !order.IsApproved() {
		return nil, errors.New("order must be approved before fulfilment updates")
	}

	order.OrderStatus = status
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, order.UserID, model.NotifOrderStatusChanged, map[string]interface{}{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"status":       status,
		})
	}

	return mapOrderResponse(order), nil
}

// UpdatePaymentStatus lets staff correct the payment state for manual
// methods like bank transfers and refunds handled outside the gateway.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, staffID, orderID uuid.UUID, status string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	previous := order.PaymentStatus
	order.PaymentStatus = status

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"from": previous, "to": status})
		audit := &model.AuditLog{
			UserID:     &staffID,
			Action:     model.ActionUpdatePaymentStatus,
			EntityID:   order.ID.String(),
			EntityName: order.OrderNumber,
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

	return mapOrderResponse(order), nil
}

func (s *orderService) TrackOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderTrackingResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}

	return &OrderTrackingResponse{
		OrderNumber:    order.OrderNumber,
		OrderStatus:    order.OrderStatus,
		PaymentStatus:  order.PaymentStatus,
		ApprovalStatus: order.ApprovalStatus,
		UpdatedAt:      order.UpdatedAt.Format(time.RFC3339),
	}, nil
}
