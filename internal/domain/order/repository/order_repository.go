package repository

import (
	"context"
	"errors"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/model"

	"gorm.io/gorm"
)

// Guard is the transition predicate re-checked inside the UPDATE's
// WHERE clause. A write that no longer satisfies it affects zero rows;
// the service resolves that against a fresh read.
type Guard struct {
	StatusIn         []string
	PaymentStatusNot string
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByNo(ctx context.Context, orderNo string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Order, int64, error)

	// GuardedUpdate applies updates only while the guard still holds,
	// returning whether a row was written.
	GuardedUpdate(ctx context.Context, orderID string, guard Guard, updates map[string]interface{}) (bool, error)

	// FindEntitledOrder returns the user's first paid/fulfilled order
	// containing the product, or nil.
	FindEntitledOrder(ctx context.Context, userID, productID string) (*model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByNo(ctx context.Context, orderNo string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "order_no = ?", orderNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Order, int64, error) {
	var (
		orders []model.Order
		total  int64
	)
	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) GuardedUpdate(ctx context.Context, orderID string, guard Guard, updates map[string]interface{}) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", orderID)
	if len(guard.StatusIn) > 0 {
		q = q.Where("status IN ?", guard.StatusIn)
	}
	if guard.PaymentStatusNot != "" {
		q = q.Where("payment_status <> ?", guard.PaymentStatusNot)
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepository) FindEntitledOrder(ctx context.Context, userID, productID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.user_id = ?", userID).
		Where("orders.status IN ?", []string{model.StatusPaid, model.StatusProcessing, model.StatusFulfilled}).
		Where("order_items.product_id = ?", productID).
		Order("orders.created_at ASC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}
