package services

import (
	"context"

	"github.com/milfin/milfin-api/internal/models"
	"gorm.io/gorm"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry. Entries are append-only; nothing in the
// application updates or deletes them.
func (s *AuditService) Log(ctx context.Context, userID uint, userName, action, entityType string, entityID uint, details, ip, userAgent string) error {
	if s.db == nil {
		return nil
	}
	logEntry := &models.AuditLog{
		UserID:     userID,
		UserName:   userName,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}
	return s.db.WithContext(ctx).Create(logEntry).Error
}

// AuditFilter narrows audit log listing
type AuditFilter struct {
	UserID     uint
	Action     string
	EntityType string
	StartDate  string
	EndDate    string
}

// List retrieves audit logs with filters, newest first
func (s *AuditService) List(ctx context.Context, filter *AuditFilter, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	db := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter != nil {
		if filter.UserID > 0 {
			db = db.Where("user_id = ?", filter.UserID)
		}
		if filter.Action != "" {
			db = db.Where("action = ?", filter.Action)
		}
		if filter.EntityType != "" {
			db = db.Where("entity_type = ?", filter.EntityType)
		}
		if filter.StartDate != "" {
			db = db.Where("created_at >= ?", filter.StartDate)
		}
		if filter.EndDate != "" {
			end := filter.EndDate
			if len(end) == 10 {
				end += " 23:59:59"
			}
			db = db.Where("created_at <= ?", end)
		}
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := db.Preload("User").Order("created_at desc").Limit(limit).Offset(offset).Find(&logs)
	return logs, total, result.Error
}
