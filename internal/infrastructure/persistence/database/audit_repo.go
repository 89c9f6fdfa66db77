package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/logitrax/internal/domain/audit"
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计日志仓储
func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	model := &AuditLogModel{
		Timestamp: entry.Timestamp,
		Actor:     entry.Actor,
		Action:    entry.Action,
		Details:   entry.Details,
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapStorage(err, "写入审计日志失败")
	}
	entry.ID = model.ID
	return nil
}

func (r *auditRepository) Recent(ctx context.Context, limit int) ([]*audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	var models []AuditLogModel
	err := conn(ctx, r.db).Order("id DESC").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, apperrors.WrapStorage(err, "查询审计日志失败")
	}

	entries := make([]*audit.Entry, len(models))
	for i, m := range models {
		entries[i] = &audit.Entry{
			ID:        m.ID,
			Timestamp: m.Timestamp,
			Actor:     m.Actor,
			Action:    m.Action,
			Details:   m.Details,
		}
	}
	return entries, nil
}
