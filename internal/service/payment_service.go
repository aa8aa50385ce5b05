package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type PaymentCallbackRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Status        string `json:"status" binding:"required,oneof=success failed"`
	GatewayRef    string `json:"gateway_reference"`
}

type PaymentSessionResponse struct {
	TransactionID string `json:"transaction_id"`
	TicketNumber  string `json:"ticket_number"`
	Amount        string `json:"amount"`
	GatewayURL    string `json:"gateway_url"`
	Status        string `json:"status"`
}

// CreateTransactionRequest records a payment or refund settled outside
// the gateway against an existing order.
type CreateTransactionRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Amount  string    `json:"amount"` // defaults to the order total
	Type    string    `json:"transaction_type" binding:"required,oneof=Payment Refund"`
	Status  string    `json:"status" binding:"omitempty,oneof=Pending Completed Failed"`
}

type UpdateTransactionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Completed Failed"`
}

type TransactionResponse struct {
	ID            string `json:"id"`
	OrderNumber   string `json:"order_number,omitempty"`
	Amount        string `json:"amount"`
	Type          string `json:"transaction_type"`
	TicketNumber  string `json:"ticket_number"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// PaymentService simulates a card gateway. No real money moves: initiate
// hands back a fake checkout URL and the callback endpoint plays the part
// of the gateway webhook.
type PaymentService interface {
	InitiatePayment(ctx context.Context, userID, orderID uuid.UUID) (*PaymentSessionResponse, error)
	HandleCallback(ctx context.Context, req PaymentCallbackRequest) (*TransactionResponse, error)
	RetryPayment(ctx context.Context, userID, orderID uuid.UUID) (*PaymentSessionResponse, error)
	MockComplete(ctx context.Context, userID, orderID uuid.UUID) (*TransactionResponse, error)
	GetPaymentStatus(ctx context.Context, userID, orderID uuid.UUID) (*TransactionResponse, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionResponse, error)
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*TransactionResponse, error)
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status string) (*TransactionResponse, error)
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]TransactionResponse, int64, error)
	TransactionSummary(ctx context.Context) (*repository.TransactionSummary, error)
	PaymentMethods() []PaymentMethod
}

// PaymentMethod describes a checkout option surfaced to customers.
type PaymentMethod struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type paymentService struct {
	txRepo    repository.TransactionRepository
	orderRepo repository.OrderRepository
	txManager repository.TransactionManager
}

func NewPaymentService(
	txRepo repository.TransactionRepository,
	orderRepo repository.OrderRepository,
	txManager repository.TransactionManager,
) PaymentService {
	return &paymentService{txRepo: txRepo, orderRepo: orderRepo, txManager: txManager}
}

func mapTransactionResponse(tx *model.Transaction) *TransactionResponse {
	res := &TransactionResponse{
		ID:            tx.ID.String(),
		Amount:        tx.Amount.StringFixed(2),
		Type:          tx.Type,
		TicketNumber:  tx.TicketNumber,
		TransactionID: tx.TransactionID,
		Status:        tx.Status,
		CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.Order != nil {
		res.OrderNumber = tx.Order.OrderNumber
	}
	return res
}

func generateGatewayID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "TXN-" + hex.EncodeToString(buf), nil
}

func (s *paymentService) loadOwnedOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
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
	return order, nil
}

func (s *paymentService) InitiatePayment(ctx context.Context, userID, orderID uuid.UUID) (*PaymentSessionResponse, error) {
	order, err := s.loadOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}

	tx, err := s.txRepo.FindLatestByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	gatewayID, err := generateGatewayID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate gateway id: %w", err)
	}

	tx.TransactionID = gatewayID
	tx.Status = model.TxStatusPending
	if err := s.txRepo.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return &PaymentSessionResponse{
		TransactionID: gatewayID,
		TicketNumber:  tx.TicketNumber,
		Amount:        tx.Amount.StringFixed(2),
		GatewayURL:    fmt.Sprintf("https://pay.gateway.example/checkout/%s", gatewayID),
		Status:        tx.Status,
	}, nil
}

func (s *paymentService) HandleCallback(ctx context.Context, req PaymentCallbackRequest) (*TransactionResponse, error) {
	tx, err := s.txRepo.FindByTransactionID(ctx, req.TransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	order, err := s.orderRepo.FindByID(ctx, tx.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	now := time.Now()
	if req.Status == "success" {
		tx.Status = model.TxStatusCompleted
		tx.CompletedAt = &now
		order.PaymentStatus = model.PaymentStatusPaid
		// Paid orders skip straight to fulfilment once the money clears
		if order.OrderStatus == model.OrderStatusPending {
			order.OrderStatus = model.OrderStatusProcessing
		}
	} else {
		tx.Status = model.TxStatusFailed
		order.PaymentStatus = model.PaymentStatusFailed
	}
	tx.GatewayRef = req.GatewayRef

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.txRepo.Update(txCtx, tx); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return mapTransactionResponse(tx), nil
}

func (s *paymentService) RetryPayment(ctx context.Context, userID, orderID uuid.UUID) (*PaymentSessionResponse, error) {
	order, err := s.loadOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != model.PaymentStatusFailed && order.PaymentStatus != model.PaymentStatusPending {
		return nil, ErrAlreadyPaid
	}

	return s.InitiatePayment(ctx, userID, orderID)
}

// MockComplete marks the order paid without going through the callback,
// for demos and local testing.
func (s *paymentService) MockComplete(ctx context.Context, userID, orderID uuid.UUID) (*TransactionResponse, error) {
	session, err := s.InitiatePayment(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.HandleCallback(ctx, PaymentCallbackRequest{
		TransactionID: session.TransactionID,
		Status:        "success",
		GatewayRef:    "MOCK",
	})
}

func (s *paymentService) GetPaymentStatus(ctx context.Context, userID, orderID uuid.UUID) (*TransactionResponse, error) {
	if _, err := s.loadOwnedOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}

	tx, err := s.txRepo.FindLatestByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return mapTransactionResponse(tx), nil
}

func (s *paymentService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]TransactionResponse, int64, error) {
	txs, total, err := s.txRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]TransactionResponse, 0, len(txs))
	for i := range txs {
		res = append(res, *mapTransactionResponse(&txs[i]))
	}
	return res, total, nil
}

func (s *paymentService) GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return mapTransactionResponse(tx), nil
}

// CreateTransaction records a manually settled payment or refund, for
// money that never touched the gateway.
func (s *paymentService) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*TransactionResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	amount := order.TotalAmount
	if req.Amount != "" {
		amount, err = decimal.NewFromString(req.Amount)
		if err != nil || amount.IsNegative() {
			return nil, errors.New("invalid amount")
		}
	}

	status := req.Status
	if status == "" {
		status = model.TxStatusPending
	}

	ticket, err := uniqueTicketNumber(ctx, s.txRepo)
	if err != nil {
		return nil, err
	}

	tx := &model.Transaction{
		OrderID:      order.ID,
		UserID:       order.UserID,
		Amount:       amount,
		Type:         req.Type,
		TicketNumber: ticket,
		Status:       status,
	}
	if status == model.TxStatusCompleted {
		now := time.Now()
		tx.CompletedAt = &now
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return mapTransactionResponse(tx), nil
}

func (s *paymentService) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status string) (*TransactionResponse, error) {
	tx, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	tx.Status = status
	if status == model.TxStatusCompleted && tx.CompletedAt == nil {
		now := time.Now()
		tx.CompletedAt = &now
	}

	if err := s.txRepo.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return mapTransactionResponse(tx), nil
}

func (s *paymentService) TransactionSummary(ctx context.Context) (*repository.TransactionSummary, error) {
	return s.txRepo.Summary(ctx)
}

func (s *paymentService) PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{Code: "card", Label: "Credit / debit card", Description: "Processed through the simulated card gateway"},
		{Code: "cod", Label: "Cash on delivery", Description: "Pay the courier when the order arrives"},
		{Code: "bank_transfer", Label: "Bank transfer", Description: "Manual transfer, verified by staff"},
	}
}
