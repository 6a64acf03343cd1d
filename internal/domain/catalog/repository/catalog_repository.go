package repository

import (
	"context"
	"errors"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/model"

	"gorm.io/gorm"
)

type CatalogRepository interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListPublished(ctx context.Context, offset, limit int) ([]model.Product, int64, error)

	CreateAsset(ctx context.Context, a *model.DigitalAsset) error
	GetAsset(ctx context.Context, id string) (*model.DigitalAsset, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *catalogRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Assets").First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepository) ListPublished(ctx context.Context, offset, limit int) ([]model.Product, int64, error) {
	var (
		products []model.Product
		total    int64
	)
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("published = ?", true)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Assets").Order("created_at DESC").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, err
}

func (r *catalogRepository) CreateAsset(ctx context.Context, a *model.DigitalAsset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *catalogRepository) GetAsset(ctx context.Context, id string) (*model.DigitalAsset, error) {
	var a model.DigitalAsset
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
