package repository

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionFilter narrows payment transaction listings.
type TransactionFilter struct {
	UserID       *uuid.UUID
	OrderID      *uuid.UUID
	Status       string
	TicketNumber string // exact match
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	Limit        int
}

// TransactionSummary aggregates the payment ledger for the admin view.
type TransactionSummary struct {
	TotalCount      int64           `json:"total_count"`
	PendingCount    int64           `json:"pending_count"`
	CompletedCount  int64           `json:"completed_count"`
	FailedCount     int64           `json:"failed_count"`
	CompletedAmount decimal.Decimal `json:"completed_amount"`
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	Update(ctx context.Context, tx *model.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Transaction, error)
	FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*model.Transaction, error)
	TicketNumberExists(ctx context.Context, ticket string) (bool, error)
	List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, int64, error)
	Summary(ctx context.Context) (*TransactionSummary, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *transactionRepository) Update(ctx context.Context, tx *model.Transaction) error {
	return GetDB(ctx, r.db).Save(tx).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	if err := GetDB(ctx, r.db).Preload("Order").First(&tx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.Transaction, error) {
	var tx model.Transaction
	if err := GetDB(ctx, r.db).Preload("Order").
		Where("transaction_id = ?", transactionID).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	if err := GetDB(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("created_at desc").First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) TicketNumberExists(ctx context.Context, ticket string) (bool, error) {
	var tx model.Transaction
	err := GetDB(ctx, r.db).Select("id").Where("ticket_number = ?", ticket).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, int64, error) {
	var txs []model.Transaction
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Transaction{})
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.OrderID != nil {
		db = db.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.TicketNumber != "" {
		db = db.Where("ticket_number = ?", filter.TicketNumber)
	}
	if filter.StartDate != nil {
		db = db.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("created_at <= ?", *filter.EndDate)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 15
	}
	offset := (filter.Page - 1) * filter.Limit

	if err := db.Preload("Order").Order("created_at desc").
		Offset(offset).Limit(filter.Limit).Find(&txs).Error; err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (r *transactionRepository) Summary(ctx context.Context) (*TransactionSummary, error) {
	db := GetDB(ctx, r.db)
	summary := &TransactionSummary{}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := db.Model(&model.Transaction{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		summary.TotalCount += c.Count
		switch c.Status {
		case model.TxStatusPending:
			summary.PendingCount = c.Count
		case model.TxStatusCompleted:
			summary.CompletedCount = c.Count
		case model.TxStatusFailed:
			summary.FailedCount = c.Count
		}
	}

	var amount decimal.NullDecimal
	if err := db.Model(&model.Transaction{}).
		Select("sum(amount)").
		Where("status = ?", model.TxStatusCompleted).
		Scan(&amount).Error; err != nil {
		return nil, err
	}
	if amount.Valid {
		summary.CompletedAmount = amount.Decimal
	}

	return summary, nil
}
