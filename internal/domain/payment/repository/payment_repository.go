package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	orderModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/model"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment/model"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	CreateProof(ctx context.Context, proof *model.PaymentProof) error
	GetProofByID(ctx context.Context, id string) (*model.PaymentProof, error)
	ListProofsByOrder(ctx context.Context, orderID string) ([]model.PaymentProof, error)

	// HasOutstandingProof reports whether the order already has a proof
	// awaiting review.
	HasOutstandingProof(ctx context.Context, orderID string) (bool, error)

	// ApproveProof marks the proof approved and the order paid in one
	// transaction. Approving an already approved proof is a no-op.
	ApproveProof(ctx context.Context, proofID, reviewerID string) (*model.PaymentProof, error)

	// RejectProof marks the proof rejected and sends the order back to
	// pending so the customer can submit a new one.
	RejectProof(ctx context.Context, proofID, reviewerID, reason string) (*model.PaymentProof, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreateProof(ctx context.Context, proof *model.PaymentProof) error {
	err := r.db.WithContext(ctx).Create(proof).Error
	if err != nil && isUniqueViolation(err) {
		// The partial unique index on submitted proofs closes the
		// check-then-create window against a concurrent submission.
		return apperr.Conflictf("a proof for this order is already under review")
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "SQLSTATE 23505")
}

func (r *paymentRepository) GetProofByID(ctx context.Context, id string) (*model.PaymentProof, error) {
	var proof model.PaymentProof
	err := r.db.WithContext(ctx).First(&proof, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &proof, nil
}

func (r *paymentRepository) ListProofsByOrder(ctx context.Context, orderID string) ([]model.PaymentProof, error) {
	var proofs []model.PaymentProof
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&proofs).Error
	return proofs, err
}

func (r *paymentRepository) HasOutstandingProof(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PaymentProof{}).
		Where("order_id = ? AND status = ?", orderID, model.ProofSubmitted).
		Count(&count).Error
	return count > 0, err
}

func (r *paymentRepository) ApproveProof(ctx context.Context, proofID, reviewerID string) (*model.PaymentProof, error) {
	var proof model.PaymentProof

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&proof, "id = ?", proofID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("payment proof not found")
			}
			return err
		}

		switch proof.Status {
		case model.ProofApproved:
			// Duplicate approval resolves to the first outcome.
			return nil
		case model.ProofRejected:
			return apperr.Conflictf("proof was already rejected")
		}

		var order orderModel.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", proof.OrderID).Error; err != nil {
			return err
		}

		merged := orderModel.ParseGatewayData(order.GatewayData)
		merged.Merge(orderModel.GatewayData{Manual: &orderModel.ManualData{
			ProofID:    proof.ID,
			ApprovedBy: reviewerID,
		}})

		now := time.Now()
		res := tx.Model(&orderModel.Order{}).
			Where("id = ?", order.ID).
			Where("status IN ?", []string{orderModel.StatusCreated, orderModel.StatusPendingPayment}).
			Updates(map[string]interface{}{
				"status":             orderModel.StatusPaid,
				"payment_status":     orderModel.PaymentPaid,
				"paid_at":            now,
				"gateway_data":       merged.Encode(),
				"payment_last_error": "",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 && !orderModel.Entitles(order.Status) {
			return apperr.Conflictf("order %s can no longer be paid", order.OrderNo)
		}

		return tx.Model(&proof).Updates(map[string]interface{}{
			"status":      model.ProofApproved,
			"reviewer_id": reviewerID,
			"reviewed_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetProofByID(ctx, proofID)
}

func (r *paymentRepository) RejectProof(ctx context.Context, proofID, reviewerID, reason string) (*model.PaymentProof, error) {
	var proof model.PaymentProof

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&proof, "id = ?", proofID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("payment proof not found")
			}
			return err
		}

		switch proof.Status {
		case model.ProofApproved:
			return apperr.Conflictf("proof was already approved")
		case model.ProofRejected:
			return nil
		}

		now := time.Now()
		if err := tx.Model(&proof).Updates(map[string]interface{}{
			"status":        model.ProofRejected,
			"reviewer_id":   reviewerID,
			"reviewed_at":   now,
			"reject_reason": reason,
		}).Error; err != nil {
			return err
		}

		// Back to pending so the customer can upload a new proof. The
		// guard keeps an order paid by another path untouched.
		return tx.Model(&orderModel.Order{}).
			Where("id = ? AND payment_status = ?", proof.OrderID, orderModel.PaymentReview).
			Update("payment_status", orderModel.PaymentPending).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetProofByID(ctx, proofID)
}
