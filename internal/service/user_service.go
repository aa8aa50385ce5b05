package service

import (
	"backend/internal/model"
	"backend/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateStaffRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"role" binding:"required,oneof=staff admin warehouse"`
	Department string `json:"department"`
	EmployeeID string `json:"employee_id"`
}

type UpdateUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type SuspendUserRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type BulkSuspendRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required,min=1"`
	Reason  string      `json:"reason" binding:"required"`
}

// BulkSuspendResult reports which users could not be suspended and why.
type BulkSuspendResult struct {
	Suspended int               `json:"suspended"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
	EmployeeID string    `json:"employee_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  string    `json:"created_at"`
	UpdatedAt  string    `json:"updated_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateStaff(ctx context.Context, adminID uuid.UUID, req CreateStaffRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]UserResponse, int64, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error)
	ChangePassword(ctx context.Context, id uuid.UUID, req ChangePasswordRequest) error
	SuspendUser(ctx context.Context, adminID, userID uuid.UUID, reason string) error
	BulkSuspend(ctx context.Context, adminID uuid.UUID, req BulkSuspendRequest) (*BulkSuspendResult, error)
	ReactivateUser(ctx context.Context, adminID, userID uuid.UUID) error
	ListSuspensions(ctx context.Context, userID uuid.UUID) ([]model.UserSuspension, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo      repository.UserRepository
	orderRepo repository.OrderRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, orderRepo repository.OrderRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) UserService {
	return &userService{repo: repo, orderRepo: orderRepo, auditRepo: auditRepo, txManager: txManager}
}

// Helper: parse model to standard json API response
func mapUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Phone:      user.Phone,
		Role:       user.Role,
		Department: user.Department,
		EmployeeID: user.EmployeeID,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  user.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateStaff(ctx context.Context, adminID uuid.UUID, req CreateStaffRequest) (*UserResponse, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.New("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	now := time.Now()
	user := &model.User{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   string(hashedPassword),
		Role:       req.Role,
		Department: req.Department,
		EmployeeID: req.EmployeeID,
		HireDate:   &now,
		IsActive:   true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapUserResponse(user), nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return mapUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUserResponse(&users[i]))
	}

	return responses, total, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Email != "" && req.Email != user.Email {
		if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
			return nil, errors.New("email already exists")
		}
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Department != "" {
		user.Department = req.Department
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return mapUserResponse(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return errors.New("current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	user.Password = string(hashed)
	return s.repo.Update(ctx, user)
}

func (s *userService) SuspendUser(ctx context.Context, adminID, userID uuid.UUID, reason string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return ErrNotFound
	}
	if user.IsSuspended() {
		return errors.New("user is already suspended")
	}

	now := time.Now()
	user.IsActive = false
	user.SuspendedAt = &now
	user.SuspensionReason = reason

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, user); err != nil {
			return fmt.Errorf("failed to suspend user: %w", err)
		}

		if err := s.repo.CreateSuspension(txCtx, &model.UserSuspension{
			UserID:      userID,
			SuspendedBy: &adminID,
			Reason:      reason,
			SuspendedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to record suspension: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"reason": reason})
		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionSuspendUser,
			EntityID:   userID.String(),
			EntityName: user.Email,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

// BulkSuspend suspends each user independently. A failure on one user
// does not roll back the others.
func (s *userService) BulkSuspend(ctx context.Context, adminID uuid.UUID, req BulkSuspendRequest) (*BulkSuspendResult, error) {
	result := &BulkSuspendResult{Failed: map[string]string{}}
	for _, userID := range req.UserIDs {
		if err := s.SuspendUser(ctx, adminID, userID, req.Reason); err != nil {
			result.Failed[userID.String()] = err.Error()
			continue
		}
		result.Suspended++
	}
	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result, nil
}

func (s *userService) ReactivateUser(ctx context.Context, adminID, userID uuid.UUID) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return ErrNotFound
	}
	if !user.IsSuspended() {
		return errors.New("user is not suspended")
	}

	user.IsActive = true
	user.SuspendedAt = nil
	user.SuspensionReason = ""

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, user); err != nil {
			return fmt.Errorf("failed to reactivate user: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionReactivateUser,
			EntityID:   userID.String(),
			EntityName: user.Email,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

func (s *userService) ListSuspensions(ctx context.Context, userID uuid.UUID) ([]model.UserSuspension, error) {
	return s.repo.ListSuspensions(ctx, userID)
}

// DeleteUser removes an account. Staff who have decided orders stay on
// record for audit history, so they are deactivated instead of deleted.
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if user.Role != model.RoleCustomer {
		_, total, err := s.orderRepo.List(ctx, repository.OrderFilter{StaffID: &id, Limit: 1})
		if err != nil {
			return fmt.Errorf("failed to check order history: %w", err)
		}
		if total > 0 {
			user.IsActive = false
			return s.repo.Update(ctx, user)
		}
	}

	return s.repo.Delete(ctx, id)
}
