package services

import (
	"context"
	"fmt"

	"github.com/milfin/milfin-api/internal/models"
	"github.com/milfin/milfin-api/internal/repository"
)

// UserService manages finance office accounts. All mutations here are
// commander-gated at the routing layer.
type UserService struct {
	repo             repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	auditSvc         *AuditService
}

func NewUserService(repo repository.UserRepository, rtRepo repository.RefreshTokenRepository, auditSvc *AuditService) *UserService {
	return &UserService{
		repo:             repo,
		refreshTokenRepo: rtRepo,
		auditSvc:         auditSvc,
	}
}

// CreateUserInput carries the fields of a new account
type CreateUserInput struct {
	Username string
	Password string
	FullName string
	Rank     string
	Unit     string
	Role     string
	Phone    string
}

// UpdateUserInput carries the mutable fields of an account
type UpdateUserInput struct {
	FullName *string
	Rank     *string
	Unit     *string
	Role     *string
	Status   *string
	Phone    *string
	Password *string
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repo.List(ctx, query)
}

// Create registers a new account with a hashed password
func (s *UserService) Create(ctx context.Context, input *CreateUserInput, actor *models.User, ip, userAgent string) (*models.User, error) {
	if !models.IsValidRole(input.Role) {
		return nil, fmt.Errorf("unknown role: %s", input.Role)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:          input.Username,
		EncryptedPassword: hashed,
		FullName:          input.FullName,
		Rank:              input.Rank,
		Unit:              input.Unit,
		Role:              input.Role,
		Phone:             input.Phone,
		Status:            models.StatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionCreate, models.AuditEntityUser, user.ID,
		fmt.Sprintf("User %s created with role %s", user.Username, user.Role), ip, userAgent)

	return user, nil
}

// Update applies changes to an account
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput, actor *models.User, ip, userAgent string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Rank != nil {
		user.Rank = *input.Rank
	}
	if input.Unit != nil {
		user.Unit = *input.Unit
	}
	if input.Role != nil {
		if !models.IsValidRole(*input.Role) {
			return nil, fmt.Errorf("unknown role: %s", *input.Role)
		}
		user.Role = *input.Role
	}
	if input.Status != nil {
		user.Status = *input.Status
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, fmt.Errorf("password must be at least 8 characters")
		}
		hashed, err := HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.EncryptedPassword = hashed
		// Force re-login everywhere after a password change
		s.refreshTokenRepo.DeleteByUser(ctx, user.ID)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionUpdate, models.AuditEntityUser, user.ID,
		fmt.Sprintf("User %s updated", user.Username), ip, userAgent)

	return user, nil
}

// Delete soft-deletes an account and invalidates its sessions
func (s *UserService) Delete(ctx context.Context, id uint, actor *models.User, ip, userAgent string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.ID == actor.ID {
		return fmt.Errorf("cannot delete your own account")
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.refreshTokenRepo.DeleteByUser(ctx, id)

	s.auditSvc.Log(ctx, actor.ID, actor.FullName, models.AuditActionDelete, models.AuditEntityUser, user.ID,
		fmt.Sprintf("User %s deleted", user.Username), ip, userAgent)

	return nil
}
