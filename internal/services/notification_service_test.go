package services

import (
	"context"
	"testing"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipientsFor(t *testing.T) {
	creator := uint(5)

	t.Run("approval reaches commander role and creator", func(t *testing.T) {
		r := RecipientsFor(models.NotificationTypeApproval, &creator)
		assert.Equal(t, []string{models.RoleCommander}, r.Roles)
		assert.Equal(t, []uint{5}, r.UserIDs)
	})

	t.Run("approval without creator", func(t *testing.T) {
		r := RecipientsFor(models.NotificationTypeApproval, nil)
		assert.Equal(t, []string{models.RoleCommander}, r.Roles)
		assert.Empty(t, r.UserIDs)
	})

	t.Run("other types reach commander role only", func(t *testing.T) {
		r := RecipientsFor(models.NotificationTypeOrder, &creator)
		assert.Equal(t, []string{models.RoleCommander}, r.Roles)
		assert.Empty(t, r.UserIDs)
	})
}

func TestNotificationService_Dispatch_DeduplicatesRecipients(t *testing.T) {
	// The creator also holds the commander role; they must receive a
	// single notification, not two
	notifRepo := &mockNotificationRepo{}
	userRepo := &mockUserRepo{
		mockFindByRole: func(ctx context.Context, role string) ([]models.User, error) {
			return []models.User{{ID: 5, Role: models.RoleCommander}}, nil
		},
	}
	svc := NewNotificationService(notifRepo, userRepo)

	creator := uint(5)
	err := svc.Dispatch(context.Background(), models.NotificationTypeApproval, &creator, "Order approved", "ORD-2026-001 approved", nil)
	require.NoError(t, err)

	require.Len(t, notifRepo.created, 1)
	assert.Equal(t, uint(5), notifRepo.created[0].UserID)
}

func TestNotificationService_Dispatch_ApprovalReachesCreator(t *testing.T) {
	notifRepo := &mockNotificationRepo{}
	userRepo := &mockUserRepo{
		mockFindByRole: func(ctx context.Context, role string) ([]models.User, error) {
			return []models.User{{ID: 9, Role: models.RoleCommander}}, nil
		},
	}
	svc := NewNotificationService(notifRepo, userRepo)

	creator := uint(2)
	err := svc.Dispatch(context.Background(), models.NotificationTypeApproval, &creator, "Order rejected", "ORD-2026-002 rejected", nil)
	require.NoError(t, err)

	require.Len(t, notifRepo.created, 2)
	ids := []uint{notifRepo.created[0].UserID, notifRepo.created[1].UserID}
	assert.ElementsMatch(t, []uint{2, 9}, ids)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	t.Run("only the addressed user may mark", func(t *testing.T) {
		notifRepo := &mockNotificationRepo{
			notifications: map[uint]*models.Notification{
				1: {ID: 1, UserID: 7},
			},
		}
		svc := NewNotificationService(notifRepo, &mockUserRepo{})

		err := svc.MarkAsRead(context.Background(), 1, 3)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("marking twice is a no-op", func(t *testing.T) {
		notifRepo := &mockNotificationRepo{
			notifications: map[uint]*models.Notification{
				1: {ID: 1, UserID: 7},
			},
		}
		svc := NewNotificationService(notifRepo, &mockUserRepo{})

		require.NoError(t, svc.MarkAsRead(context.Background(), 1, 7))
		require.NotNil(t, notifRepo.notifications[1].ReadAt)
		firstRead := *notifRepo.notifications[1].ReadAt

		require.NoError(t, svc.MarkAsRead(context.Background(), 1, 7))
		assert.Equal(t, firstRead, *notifRepo.notifications[1].ReadAt)
	})
}
