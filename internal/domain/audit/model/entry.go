package model

import (
	"encoding/json"
	"time"
)

// Entry is one append-only audit record. Rows are never updated or
// deleted; orders are retained indefinitely so their trail is too.
type Entry struct {
	ID         string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Action     string          `gorm:"size:64;index;not null" json:"action"`
	EntityType string          `gorm:"size:32;index;not null" json:"entityType"`
	EntityID   string          `gorm:"size:64;index" json:"entityId"`
	// ActorID is empty for system-initiated actions (gateway callbacks).
	ActorID  string          `gorm:"size:64;index" json:"actorId,omitempty"`
	Metadata json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Entry) TableName() string {
	return "audit_log"
}

// Closed set of audit action tags.
const (
	ActionOrderCreate        = "order.create"
	ActionOrderCancel        = "order.cancel"
	ActionOrderFulfill       = "order.fulfill"
	ActionOrderRefund        = "order.refund"
	ActionOrderMethodChange  = "order.payment_method"
	ActionPaymentCapture     = "payment.capture"
	ActionPaymentFailure     = "payment.failure"
	ActionPaymentProofSubmit = "payment.proof_submit"
	ActionPaymentApprove     = "payment.approve"
	ActionPaymentReject      = "payment.reject"
	ActionDownloadRequest    = "download.request"
	ActionDownloadComplete   = "download.complete"

	EntityOrder = "order"
	EntityProof = "payment_proof"
	EntityAsset = "digital_asset"
)
