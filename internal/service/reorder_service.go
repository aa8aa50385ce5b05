package service

import (
	"context"
	"encoding/json"
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
type CreateReorderRequest struct {
	ProductID         string `json:"product_id" binding:"required"`
	QuantityRequested int    `json:"quantity_requested" binding:"required,gt=0"`
	Notes             string `json:"notes"`
}

type WarehouseApproveReorderRequest struct {
	QuantityApproved int    `json:"quantity_approved" binding:"required,gt=0"`
	Notes            string `json:"notes"`
}

type ReorderResponse struct {
	ID                string `json:"id"`
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name,omitempty"`
	QuantityRequested int    `json:"quantity_requested"`
	QuantityApproved  *int   `json:"quantity_approved,omitempty"`
	EstimatedCost     string `json:"estimated_cost"`
	Status            string `json:"status"`
	Notes             string `json:"notes,omitempty"`
	WarehouseNotes    string `json:"warehouse_notes,omitempty"`
	CreatedAt         string `json:"created_at"`
	CompletedAt       string `json:"completed_at,omitempty"`
}

// ReorderService runs the procurement side of replenishment: admins raise
// reorder requests, warehouse staff approve an exact quantity, and
// completion credits the stock and clears the product's open alerts.
type ReorderService interface {
	Create(ctx context.Context, adminID uuid.UUID, req CreateReorderRequest) (*ReorderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*ReorderResponse, error)
	List(ctx context.Context, status string, page, limit int) ([]ReorderResponse, int64, error)
	Cancel(ctx context.Context, adminID, id uuid.UUID) (*ReorderResponse, error)
	AdminApprove(ctx context.Context, adminID, id uuid.UUID) (*ReorderResponse, error)
	WarehouseApprove(ctx context.Context, staffID, id uuid.UUID, req WarehouseApproveReorderRequest) (*ReorderResponse, error)
	WarehouseReject(ctx context.Context, staffID, id uuid.UUID, notes string) (*ReorderResponse, error)
	Complete(ctx context.Context, staffID, id uuid.UUID) (*ReorderResponse, error)
	History(ctx context.Context, staffID uuid.UUID, since *time.Time, page, limit int) ([]ReorderResponse, int64, error)
}

type reorderService struct {
	reorderRepo repository.ReorderRepository
	productRepo repository.ProductRepository
	alertRepo   repository.AlertRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    NotificationService
}

func NewReorderService(
	reorderRepo repository.ReorderRepository,
	productRepo repository.ProductRepository,
	alertRepo repository.AlertRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier NotificationService,
) ReorderService {
	return &reorderService{
		reorderRepo: reorderRepo,
		productRepo: productRepo,
		alertRepo:   alertRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifier,
	}
}

func mapReorderResponse(r *model.ReorderRequest) *ReorderResponse {
	res := &ReorderResponse{
		ID:                r.ID.String(),
		ProductID:         r.ProductID.String(),
		QuantityRequested: r.QuantityRequested,
		QuantityApproved:  r.QuantityApproved,
		EstimatedCost:     r.EstimatedCost.StringFixed(2),
		Status:            r.Status,
		Notes:             r.Notes,
		WarehouseNotes:    r.WarehouseNotes,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
	if r.Product != nil {
		res.ProductName = r.Product.Name
	}
	if r.CompletedAt != nil {
		res.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	}
	return res
}

func (s *reorderService) Create(ctx context.Context, adminID uuid.UUID, req CreateReorderRequest) (*ReorderResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product_id: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	open, err := s.reorderRepo.HasOpenForProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open reorders: %w", err)
	}
	if open {
		return nil, errors.New("an open reorder already exists for this product")
	}

	cost := decimal.Zero
	if product.ReorderCost != nil {
		cost = product.ReorderCost.Mul(decimal.NewFromInt(int64(req.QuantityRequested)))
	}

	request := model.ReorderRequest{
		ProductID:         productID,
		AdminID:           adminID,
		QuantityRequested: req.QuantityRequested,
		EstimatedCost:     cost,
		Status:            model.ReorderStatusPending,
		Notes:             req.Notes,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.reorderRepo.Create(txCtx, &request); err != nil {
			return fmt.Errorf("failed to create reorder request: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"product_id":         productID.String(),
			"quantity_requested": req.QuantityRequested,
			"estimated_cost":     cost.StringFixed(2),
		})
		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionCreateReorder,
			EntityID:   request.ID.String(),
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

	return s.Get(ctx, request.ID)
}

func (s *reorderService) Get(ctx context.Context, id uuid.UUID) (*ReorderResponse, error) {
	request, err := s.reorderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return mapReorderResponse(request), nil
}

func (s *reorderService) List(ctx context.Context, status string, page, limit int) ([]ReorderResponse, int64, error) {
	requests, total, err := s.reorderRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ReorderResponse, 0, len(requests))
	for i := range requests {
		res = append(res, *mapReorderResponse(&requests[i]))
	}
	return res, total, nil
}

func (s *reorderService) Cancel(ctx context.Context, adminID, id uuid.UUID) (*ReorderResponse, error) {
	request, err := s.reorderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !request.IsPending() {
		return nil, ErrNotPending
	}

	request.Status = model.ReorderStatusCancelled

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.reorderRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to cancel reorder request: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionCancelReorder,
			EntityID:   request.ID.String(),
			EntityName: reorderEntityName(request),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return mapReorderResponse(request), nil
}

// AdminApprove approves a pending request without fixing a quantity.
// Completion then credits the requested quantity.
func (s *reorderService) AdminApprove(ctx context.Context, adminID, id uuid.UUID) (*ReorderResponse, error) {
	request, err := s.reorderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !request.IsPending() {
		return nil, ErrNotPending
	}

	request.AdminApprove()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.reorderRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to approve reorder request: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionApproveReorder,
			EntityID:   request.ID.String(),
			EntityName: reorderEntityName(request),
			Details:    `{"stage": "admin"}`,
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
		s.notifier.NotifyRole(ctx, model.RoleWarehouse, model.NotifReorderApproved, map[string]interface{}{
			"reorder_id":         request.ID.String(),
			"quantity_requested": request.QuantityRequested,
		})
	}

	return mapReorderResponse(request), nil
}

func (s *reorderService) WarehouseApprove(ctx context.Context, staffID, id uuid.UUID, req WarehouseApproveReorderRequest) (*ReorderResponse, error) {
	request, err := s.reorderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !request.IsPending() {
		return nil, ErrNotPending
	}

	request.WarehouseApprove(staffID, req.QuantityApproved, req.Notes)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.reorderRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to approve reorder request: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"quantity_approved": req.QuantityApproved,
		})
		audit := &model.AuditLog{
			UserID:     &staffID,
			Action:     model.ActionApproveReorder,
			EntityID:   request.ID.String(),
			EntityName: reorderEntityName(request),
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
		s.notifier.Notify(ctx, request.AdminID, model.NotifReorderApproved, map[string]interface{}{
			"reorder_id":        request.ID.String(),
			"quantity_approved": req.QuantityApproved,
		})
	}

	return mapReorderResponse(request), nil
}

func (s *reorderService) WarehouseReject(ctx context.Context, staffID, id uuid.UUID, notes string) (*ReorderResponse, error) {
	request, err := s.reorderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !request.IsPending() {
		return nil, ErrNotPending
	}

	request.WarehouseReject(staffID, notes)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.reorderRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to reject reorder request: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     &staffID,
			Action:     model.ActionCancelReorder,
			EntityID:   request.ID.String(),
			EntityName: reorderEntityName(request),
			Details:    `{"decision": "rejected"}`,
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
		s.notifier.Notify(ctx, request.AdminID, model.NotifReorderRejected, map[string]interface{}{
			"reorder_id": request.ID.String(),
		})
	}

	return mapReorderResponse(request), nil
}

// Complete credits the approved quantity to the product and resolves
// every unresolved alert for it.
func (s *reorderService) Complete(ctx context.Context, staffID, id uuid.UUID) (*ReorderResponse, error) {
	request, err := s.reorderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !request.IsApproved() {
		return nil, errors.New("reorder request must be approved before completion")
	}

	quantity := request.QuantityToAdd()
	request.MarkCompleted()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.reorderRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to complete reorder request: %w", err)
		}

		if err := s.productRepo.IncrementQuantity(txCtx, request.ProductID, quantity); err != nil {
			return fmt.Errorf("failed to add stock: %w", err)
		}

		if err := s.alertRepo.ResolveAllForProduct(txCtx, request.ProductID); err != nil {
			return fmt.Errorf("failed to resolve alerts: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"quantity_added": quantity,
		})
		audit := &model.AuditLog{
			UserID:     &staffID,
			Action:     model.ActionCompleteReorder,
			EntityID:   request.ID.String(),
			EntityName: reorderEntityName(request),
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
		s.notifier.Notify(ctx, request.AdminID, model.NotifReorderCompleted, map[string]interface{}{
			"reorder_id":     request.ID.String(),
			"quantity_added": quantity,
		})
	}

	return mapReorderResponse(request), nil
}

func (s *reorderService) History(ctx context.Context, staffID uuid.UUID, since *time.Time, page, limit int) ([]ReorderResponse, int64, error) {
	requests, total, err := s.reorderRepo.ListDecidedBy(ctx, staffID, since, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ReorderResponse, 0, len(requests))
	for i := range requests {
		res = append(res, *mapReorderResponse(&requests[i]))
	}
	return res, total, nil
}

func reorderEntityName(r *model.ReorderRequest) string {
	if r.Product != nil {
		return r.Product.Name
	}
	return r.ProductID.String()
}
