package services

import (
	"context"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
)

type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo}
}

func (s *NotificationService) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *NotificationService) FindByUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return s.repo.FindByUser(ctx, userID, query)
}

func (s *NotificationService) Create(ctx context.Context, notification *models.Notification) error {
	return s.repo.Create(ctx, notification)
}

// MarkAsRead marks one notification as read. Only the addressed user
// may mark it; marking an already-read notification is a no-op.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uint) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if notification.UserID != userID {
		return ErrForbidden
	}
	if notification.IsRead() {
		return nil
	}
	notification.MarkAsRead()
	return s.repo.Update(ctx, notification)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *NotificationService) NotifyUser(ctx context.Context, userID uint, title, message, notifType string, link *string) error {
	notification := &models.Notification{
		UserID:           userID,
		Title:            title,
		Message:          message,
		NotificationType: notifType,
		Link:             link,
	}
	return s.repo.Create(ctx, notification)
}

// NotifyRole fans a notification out to every active user holding the
// given role
func (s *NotificationService) NotifyRole(ctx context.Context, role, title, message, notifType string, link *string) error {
	users, err := s.userRepo.FindByRole(ctx, role)
	if err != nil {
		return err
	}
	for _, user := range users {
		notification := &models.Notification{
			UserID:           user.ID,
			Title:            title,
			Message:          message,
			NotificationType: notifType,
			Link:             link,
		}
		s.repo.Create(ctx, notification)
	}
	return nil
}

// Recipients names who a notification event reaches
type Recipients struct {
	UserIDs []uint
	Roles   []string
}

// RecipientsFor resolves recipients by notification type. New-record
// and warning notifications go to the commander role; approval
// outcomes additionally reach the creator of the affected record.
func RecipientsFor(notifType string, creatorID *uint) Recipients {
	switch notifType {
	case models.NotificationTypeApproval:
		r := Recipients{Roles: []string{models.RoleCommander}}
		if creatorID != nil {
			r.UserIDs = append(r.UserIDs, *creatorID)
		}
		return r
	default:
		return Recipients{Roles: []string{models.RoleCommander}}
	}
}

// Dispatch resolves recipients via RecipientsFor and delivers to each,
// deduplicating users that hold a targeted role
func (s *NotificationService) Dispatch(ctx context.Context, notifType string, creatorID *uint, title, message string, link *string) error {
	recipients := RecipientsFor(notifType, creatorID)

	seen := make(map[uint]bool)
	for _, role := range recipients.Roles {
		users, err := s.userRepo.FindByRole(ctx, role)
		if err != nil {
			return err
		}
		for _, user := range users {
			seen[user.ID] = true
		}
	}
	for _, id := range recipients.UserIDs {
		seen[id] = true
	}

	for userID := range seen {
		notification := &models.Notification{
			UserID:           userID,
			Title:            title,
			Message:          message,
			NotificationType: notifType,
			Link:             link,
		}
		if err := s.repo.Create(ctx, notification); err != nil {
			return err
		}
	}
	return nil
}
