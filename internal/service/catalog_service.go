package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CreateBrandRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type ReviewResponse struct {
	ID        string `json:"id"`
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

// CatalogService covers the taxonomy and customer engagement surfaces:
// categories, brands, reviews and wishlists.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListBrands(ctx context.Context) ([]model.Brand, error)
	CreateBrand(ctx context.Context, req CreateBrandRequest) (*model.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error

	ListReviews(ctx context.Context, productID uuid.UUID, page, limit int) ([]ReviewResponse, int64, error)
	CreateReview(ctx context.Context, userID, productID uuid.UUID, req CreateReviewRequest) (*ReviewResponse, error)
	DeleteReview(ctx context.Context, userID, reviewID uuid.UUID, isAdmin bool) error

	ListWishlist(ctx context.Context, userID uuid.UUID) ([]model.Wishlist, error)
	AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	brandRepo    repository.BrandRepository
	reviewRepo   repository.ReviewRepository
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	brandRepo repository.BrandRepository,
	reviewRepo repository.ReviewRepository,
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
		reviewRepo:   reviewRepo,
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	return s
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*model.Category, error) {
	slug := slugify(req.Name)
	if _, err := s.categoryRepo.FindBySlug(ctx, slug); err == nil {
		return nil, errors.New("category already exists")
	}

	category := &model.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.categoryRepo.Delete(ctx, id)
}

func (s *catalogService) ListBrands(ctx context.Context) ([]model.Brand, error) {
	return s.brandRepo.List(ctx)
}

func (s *catalogService) CreateBrand(ctx context.Context, req CreateBrandRequest) (*model.Brand, error) {
	brand := &model.Brand{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	return brand, nil
}

func (s *catalogService) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	if _, err := s.brandRepo.FindByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.brandRepo.Delete(ctx, id)
}

func mapReviewResponse(r *model.Review) *ReviewResponse {
	res := &ReviewResponse{
		ID:        r.ID.String(),
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if r.User != nil {
		res.UserName = r.User.Name
	}
	return res
}

func (s *catalogService) ListReviews(ctx context.Context, productID uuid.UUID, page, limit int) ([]ReviewResponse, int64, error) {
	reviews, total, err := s.reviewRepo.ListByProduct(ctx, productID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		res = append(res, *mapReviewResponse(&reviews[i]))
	}
	return res, total, nil
}

func (s *catalogService) CreateReview(ctx context.Context, userID, productID uuid.UUID, req CreateReviewRequest) (*ReviewResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if _, err := s.reviewRepo.FindByUserAndProduct(ctx, userID, productID); err == nil {
		return nil, ErrDuplicateReview
	}

	review := &model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return mapReviewResponse(review), nil
}

func (s *catalogService) DeleteReview(ctx context.Context, userID, reviewID uuid.UUID, isAdmin bool) error {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return ErrNotFound
	}
	if !isAdmin && review.UserID != userID {
		return ErrForbidden
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}

func (s *catalogService) ListWishlist(ctx context.Context, userID uuid.UUID) ([]model.Wishlist, error) {
	return s.wishlistRepo.ListByUser(ctx, userID)
}

func (s *catalogService) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	exists, err := s.wishlistRepo.Exists(ctx, userID, productID)
	if err != nil {
		return err
	}
	if exists {
		return nil // already wishlisted, idempotent
	}

	return s.wishlistRepo.Add(ctx, &model.Wishlist{UserID: userID, ProductID: productID})
}

func (s *catalogService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	err := s.wishlistRepo.Remove(ctx, userID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
