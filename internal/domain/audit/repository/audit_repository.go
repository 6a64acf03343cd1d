package repository

import (
	"context"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/model"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *model.Entry) error
	GetList(ctx context.Context, offset, limit int) ([]model.Entry, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) GetList(ctx context.Context, offset, limit int) ([]model.Entry, int64, error) {
	var (
		entries []model.Entry
		total   int64
	)
	if err := r.db.WithContext(ctx).Model(&model.Entry{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	return entries, total, err
}
