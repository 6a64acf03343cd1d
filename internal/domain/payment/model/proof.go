package model

import (
	"time"

	baseModel "github.com/Mpratama260304/MpratamaStore-sub001/pkg/model"
)

// PaymentProof is one uploaded bank-transfer evidence file awaiting
// admin review. An order has at most one proof in the submitted state
// at a time; a rejected proof may be followed by a new submission.
type PaymentProof struct {
	baseModel.BaseModel
	OrderID string `gorm:"type:uuid;index;not null" json:"orderId"`

	// EvidenceKey is the object-store key of the uploaded file.
	EvidenceKey string `gorm:"not null" json:"-"`
	Filename    string `json:"filename"`
	Note        string `gorm:"size:512" json:"note,omitempty"`

	Status       string     `gorm:"size:16;index;default:'submitted'" json:"status"`
	ReviewerID   string     `gorm:"type:uuid" json:"reviewerId,omitempty"`
	ReviewedAt   *time.Time `json:"reviewedAt,omitempty"`
	RejectReason string     `gorm:"size:512" json:"rejectReason,omitempty"`
}

func (PaymentProof) TableName() string {
	return "payment_proofs"
}

const (
	ProofSubmitted = "submitted"
	ProofApproved  = "approved"
	ProofRejected  = "rejected"
)
