package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateProductRequest struct {
	SKU               string  `json:"sku" binding:"required"`
	Name              string  `json:"name" binding:"required"`
	Description       string  `json:"description"`
	Price             float64 `json:"price" binding:"required,gt=0"`
	Quantity          int     `json:"quantity" binding:"min=0"`
	LowStockThreshold int     `json:"low_stock_threshold" binding:"min=0"`
	ReorderQuantity   int     `json:"reorder_quantity" binding:"min=0"`
	AutoReorder       bool    `json:"auto_reorder"`
	ReorderCost       *string `json:"reorder_cost"`
	CategoryID        string  `json:"category_id"`
	BrandID           string  `json:"brand_id"`
	Image             string  `json:"image"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	CategoryID  *string  `json:"category_id"`
	BrandID     *string  `json:"brand_id"`
	Image       *string  `json:"image"`
	IsActive    *bool    `json:"is_active"`
}

type ProductResponse struct {
	ID                string   `json:"id"`
	SKU               string   `json:"sku"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Price             float64  `json:"price"`
	Quantity          int      `json:"quantity"`
	LowStockThreshold int      `json:"low_stock_threshold"`
	AutoReorder       bool     `json:"auto_reorder"`
	InStock           bool     `json:"in_stock"`
	LowStock          bool     `json:"low_stock"`
	Category          string   `json:"category,omitempty"`
	Brand             string   `json:"brand,omitempty"`
	Image             string   `json:"image,omitempty"`
	IsActive          bool     `json:"is_active"`
	AverageRating     *float64 `json:"average_rating,omitempty"`
	ReviewCount       *int64   `json:"review_count,omitempty"`
}

type ProductService interface {
	Browse(ctx context.Context, filter repository.ProductFilter) ([]ProductResponse, int64, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error)
	CreateProduct(ctx context.Context, adminID uuid.UUID, req CreateProductRequest) (*ProductResponse, error)
	UpdateProduct(ctx context.Context, adminID, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error)
	DeleteProduct(ctx context.Context, adminID, id uuid.UUID) error
}

type productService struct {
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewProductService(
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ProductService {
	return &productService{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

func mapProductResponse(p *model.Product) *ProductResponse {
	res := &ProductResponse{
		ID:                p.ID.String(),
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		Quantity:          p.Quantity,
		LowStockThreshold: p.LowStockThreshold,
		AutoReorder:       p.AutoReorder,
		InStock:           !p.IsOutOfStock(),
		LowStock:          p.IsLowStock(),
		Image:             p.Image,
		IsActive:          p.IsActive,
	}
	if p.Category != nil {
		res.Category = p.Category.Name
	}
	if p.Brand != nil {
		res.Brand = p.Brand.Name
	}
	return res
}

func (s *productService) Browse(ctx context.Context, filter repository.ProductFilter) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, *mapProductResponse(&products[i]))
	}
	return res, total, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	res := mapProductResponse(product)
	avg, count, err := s.reviewRepo.AverageRating(ctx, id)
	if err == nil {
		res.AverageRating = &avg
		res.ReviewCount = &count
	}
	return res, nil
}

func (s *productService) CreateProduct(ctx context.Context, adminID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if _, err := s.productRepo.FindBySKU(ctx, req.SKU); err == nil {
		return nil, errors.New("sku already exists")
	}

	product := model.Product{
		SKU:               req.SKU,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		ReorderQuantity:   req.ReorderQuantity,
		AutoReorder:       req.AutoReorder,
		Image:             req.Image,
		IsActive:          true,
	}
	if product.LowStockThreshold == 0 {
		product.LowStockThreshold = 10
	}
	if req.ReorderCost != nil {
		cost, err := decimal.NewFromString(*req.ReorderCost)
		if err != nil {
			return nil, fmt.Errorf("invalid reorder_cost: %w", err)
		}
		product.ReorderCost = &cost
	}
	if req.CategoryID != "" {
		cid, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id: %w", err)
		}
		product.CategoryID = &cid
	}
	if req.BrandID != "" {
		bid, err := uuid.Parse(req.BrandID)
		if err != nil {
			return nil, fmt.Errorf("invalid brand_id: %w", err)
		}
		product.BrandID = &bid
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Create(txCtx, &product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionCreateProduct,
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

	return mapProductResponse(&product), nil
}

func (s *productService) UpdateProduct(ctx context.Context, adminID, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			product.CategoryID = nil
		} else {
			cid, err := uuid.Parse(*req.CategoryID)
			if err != nil {
				return nil, fmt.Errorf("invalid category_id: %w", err)
			}
			product.CategoryID = &cid
		}
	}
	if req.BrandID != nil {
		if *req.BrandID == "" {
			product.BrandID = nil
		} else {
			bid, err := uuid.Parse(*req.BrandID)
			if err != nil {
				return nil, fmt.Errorf("invalid brand_id: %w", err)
			}
			product.BrandID = &bid
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionUpdateProduct,
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

	return mapProductResponse(product), nil
}

func (s *productService) DeleteProduct(ctx context.Context, adminID, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionDeleteProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    `{"deleted": true}`,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}
