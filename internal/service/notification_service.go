package service

import (
	"context"
	"encoding/json"
	"log"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	IsRead    bool            `json:"is_read"`
	CreatedAt string          `json:"created_at"`
}

type NotificationService interface {
	// Notify writes a notification row. Failures are logged, never
	// propagated; a lost notification must not fail the business action.
	Notify(ctx context.Context, userID uuid.UUID, notifType string, payload map[string]interface{})
	NotifyRole(ctx context.Context, role string, notifType string, payload map[string]interface{})
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type notificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
}

func NewNotificationService(notifRepo repository.NotificationRepository, userRepo repository.UserRepository) NotificationService {
	return &notificationService{notifRepo: notifRepo, userRepo: userRepo}
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, notifType string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("notification payload marshal failed: %v", err)
		return
	}
	n := &model.Notification{
		UserID:  userID,
		Type:    notifType,
		Payload: string(data),
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		log.Printf("notification write failed for user %s: %v", userID, err)
	}
}

// NotifyRole fans one notification out to every user holding the role.
func (s *notificationService) NotifyRole(ctx context.Context, role string, notifType string, payload map[string]interface{}) {
	users, _, err := s.userRepo.List(ctx, repository.UserFilter{Role: role, Limit: 500})
	if err != nil {
		log.Printf("notification fan-out failed for role %s: %v", role, err)
		return
	}
	for i := range users {
		s.Notify(ctx, users[i].ID, notifType, payload)
	}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error) {
	notifs, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]NotificationResponse, 0, len(notifs))
	for _, n := range notifs {
		res = append(res, NotificationResponse{
			ID:        n.ID.String(),
			Type:      n.Type,
			Payload:   json.RawMessage(n.Payload),
			IsRead:    n.IsRead(),
			CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return res, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	err := s.notifRepo.MarkRead(ctx, userID, id)
	if err != nil {
		return ErrNotFound
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.notifRepo.Delete(ctx, userID, id); err != nil {
		return ErrNotFound
	}
	return nil
}
