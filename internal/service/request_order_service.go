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
	"gorm.io/gorm"
)

// DTOs
type CreateRequestOrderRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type RequestDecisionRequest struct {
	Notes string `json:"notes"`
}

type RequestOrderResponse struct {
	ID                      string `json:"id"`
	ProductID               string `json:"product_id"`
	ProductName             string `json:"product_name,omitempty"`
	Quantity                int    `json:"quantity"`
	RequesterName           string `json:"requester_name,omitempty"`
	Status                  string `json:"status"`
	AdminApprovalStatus     string `json:"admin_approval_status"`
	WarehouseApprovalStatus string `json:"warehouse_approval_status"`
	AdminNotes              string `json:"admin_notes,omitempty"`
	WarehouseNotes          string `json:"warehouse_notes,omitempty"`
	CreatedAt               string `json:"created_at"`
}

// RequestOrderService implements the two-step restock request flow: a
// staff member raises a request, an admin clears it, then the warehouse
// makes the final call and the approved quantity lands in stock.
type RequestOrderService interface {
	Create(ctx context.Context, requesterID uuid.UUID, req CreateRequestOrderRequest) (*RequestOrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*RequestOrderResponse, error)
	List(ctx context.Context, status string, page, limit int) ([]RequestOrderResponse, int64, error)
	ListAwaitingWarehouse(ctx context.Context, page, limit int) ([]RequestOrderResponse, int64, error)
	AdminApprove(ctx context.Context, adminID, id uuid.UUID, notes string) (*RequestOrderResponse, error)
	AdminReject(ctx context.Context, adminID, id uuid.UUID, notes string) (*RequestOrderResponse, error)
	WarehouseApprove(ctx context.Context, staffID, id uuid.UUID, notes string) (*RequestOrderResponse, error)
	WarehouseReject(ctx context.Context, staffID, id uuid.UUID, notes string) (*RequestOrderResponse, error)
}

type requestOrderService struct {
	requestRepo repository.RequestOrderRepository
	productRepo repository.ProductRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    NotificationService
}

func NewRequestOrderService(
	requestRepo repository.RequestOrderRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier NotificationService,
) RequestOrderService {
	return &requestOrderService{
		requestRepo: requestRepo,
		productRepo: productRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifier,
	}
}

func mapRequestOrderResponse(r *model.RequestOrder) *RequestOrderResponse {
	res := &RequestOrderResponse{
		ID:                      r.ID.String(),
		ProductID:               r.ProductID.String(),
		Quantity:                r.Quantity,
		Status:                  r.Status,
		AdminApprovalStatus:     r.AdminApprovalStatus,
		WarehouseApprovalStatus: r.WarehouseApprovalStatus,
		AdminNotes:              r.AdminNotes,
		WarehouseNotes:          r.WarehouseNotes,
		CreatedAt:               r.CreatedAt.Format(time.RFC3339),
	}
	if r.Product != nil {
		res.ProductName = r.Product.Name
	}
	if r.Requester != nil {
		res.RequesterName = r.Requester.Name
	}
	return res
}

func (s *requestOrderService) Create(ctx context.Context, requesterID uuid.UUID, req CreateRequestOrderRequest) (*RequestOrderResponse, error) {
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

	request := model.RequestOrder{
		ProductID:               productID,
		Quantity:                req.Quantity,
		RequestedBy:             requesterID,
		Status:                  model.RequestPending,
		AdminApprovalStatus:     model.RequestPending,
		WarehouseApprovalStatus: model.RequestPending,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Create(txCtx, &request); err != nil {
			return fmt.Errorf("failed to create request order: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"product_id": productID.String(),
			"quantity":   req.Quantity,
		})
		audit := &model.AuditLog{
			UserID:     &requesterID,
			Action:     model.ActionCreateRequestOrder,
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

	if s.notifier != nil {
		s.notifier.NotifyRole(ctx, model.RoleAdmin, model.NotifNewRequestOrder, map[string]interface{}{
			"request_id":   request.ID.String(),
			"product_name": product.Name,
			"quantity":     req.Quantity,
		})
	}

	return s.Get(ctx, request.ID)
}

func (s *requestOrderService) Get(ctx context.Context, id uuid.UUID) (*RequestOrderResponse, error) {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return mapRequestOrderResponse(request), nil
}

func (s *requestOrderService) List(ctx context.Context, status string, page, limit int) ([]RequestOrderResponse, int64, error) {
	requests, total, err := s.requestRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]RequestOrderResponse, 0, len(requests))
	for i := range requests {
		res = append(res, *mapRequestOrderResponse(&requests[i]))
	}
	return res, total, nil
}

func (s *requestOrderService) ListAwaitingWarehouse(ctx context.Context, page, limit int) ([]RequestOrderResponse, int64, error) {
	requests, total, err := s.requestRepo.ListAwaitingWarehouse(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]RequestOrderResponse, 0, len(requests))
	for i := range requests {
		res = append(res, *mapRequestOrderResponse(&requests[i]))
	}
	return res, total, nil
}

func (s *requestOrderService) AdminApprove(ctx context.Context, adminID, id uuid.UUID, notes string) (*RequestOrderResponse, error) {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if request.AdminApprovalStatus != model.RequestPending {
		return nil, ErrNotPending
	}

	request.AdminApprovalStatus = model.RequestApproved
	request.AdminNotes = notes

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update request order: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionAdminApproveRequest,
			EntityID:   request.ID.String(),
			EntityName: requestEntityName(request),
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
		s.notifier.NotifyRole(ctx, model.RoleWarehouse, model.NotifRequestOrderAdmin, map[string]interface{}{
			"request_id": request.ID.String(),
			"quantity":   request.Quantity,
		})
	}

	return mapRequestOrderResponse(request), nil
}

func (s *requestOrderService) AdminReject(ctx context.Context, adminID, id uuid.UUID, notes string) (*RequestOrderResponse, error) {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if request.AdminApprovalStatus != model.RequestPending {
		return nil, ErrNotPending
	}

	request.AdminApprovalStatus = model.RequestRejected
	request.AdminNotes = notes
	request.Status = model.RequestRejected

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update request order: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionAdminApproveRequest,
			EntityID:   request.ID.String(),
			EntityName: requestEntityName(request),
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

	return mapRequestOrderResponse(request), nil
}

func (s *requestOrderService) WarehouseApprove(ctx context.Context, staffID, id uuid.UUID, notes string) (*RequestOrderResponse, error) {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// The warehouse cannot act until the admin has cleared the request;
	// the check happens before any mutation.
	if !request.AdminApproved() {
		return nil, ErrAdminApprovalRequired
	}
	if request.WarehouseApprovalStatus != model.RequestPending {
		return nil, ErrNotPending
	}

	request.WarehouseApprovalStatus = model.RequestApproved
	request.WarehouseNotes = notes
	request.Status = model.RequestApproved

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update request order: %w", err)
		}

		// One-shot stock increment on final approval
		if err := s.productRepo.IncrementQuantity(txCtx, request.ProductID, request.Quantity); err != nil {
			return fmt.Errorf("failed to add stock: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"decision": "approved",
			"quantity": request.Quantity,
		})
		audit := &model.AuditLog{
			UserID:     &staffID,
			Action:     model.ActionWarehouseDecideRequest,
			EntityID:   request.ID.String(),
			EntityName: requestEntityName(request),
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
		s.notifier.Notify(ctx, request.RequestedBy, model.NotifWarehouseDecision, map[string]interface{}{
			"request_id": request.ID.String(),
			"decision":   "approved",
		})
	}

	return mapRequestOrderResponse(request), nil
}

func (s *requestOrderService) WarehouseReject(ctx context.Context, staffID, id uuid.UUID, notes string) (*RequestOrderResponse, error) {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !request.AdminApproved() {
		return nil, ErrAdminApprovalRequired
	}
	if request.WarehouseApprovalStatus != model.RequestPending {
		return nil, ErrNotPending
	}

	request.WarehouseApprovalStatus = model.RequestRejected
	request.WarehouseNotes = notes
	request.Status = model.RequestRejected

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update request order: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     &staffID,
			Action:     model.ActionWarehouseDecideRequest,
			EntityID:   request.ID.String(),
			EntityName: requestEntityName(request),
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
		s.notifier.Notify(ctx, request.RequestedBy, model.NotifWarehouseDecision, map[string]interface{}{
			"request_id": request.ID.String(),
			"decision":   "rejected",
		})
	}

	return mapRequestOrderResponse(request), nil
}

func requestEntityName(r *model.RequestOrder) string {
	if r.Product != nil {
		return r.Product.Name
	}
	return r.ProductID.String()
}
