package model

import (
	"encoding/json"
	"time"

	baseModel "github.com/Mpratama260304/MpratamaStore-sub001/pkg/model"
)

// Order is the authoritative record of a purchase. Total and line items
// are an immutable snapshot taken at creation; later catalog price
// changes never alter an existing order.
type Order struct {
	baseModel.BaseModel
	OrderNo string `gorm:"uniqueIndex;not null" json:"orderNo"`
	UserID  string `gorm:"type:uuid;index;not null" json:"userId"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	// Total in major units of Currency, frozen at creation.
	Total    int64  `gorm:"not null" json:"total"`
	Currency string `gorm:"size:8;default:'IDR'" json:"currency"`

	Status        string `gorm:"size:32;index;default:'created'" json:"status"`
	PaymentMethod string `gorm:"size:32" json:"paymentMethod"`
	PaymentStatus string `gorm:"size:32;default:'pending'" json:"paymentStatus"`

	GatewayProvider  string          `gorm:"size:32" json:"gatewayProvider,omitempty"`
	GatewayReference string          `gorm:"size:128;index" json:"gatewayReference,omitempty"`
	GatewayData      json.RawMessage `gorm:"type:jsonb" json:"gatewayData,omitempty"`
	PaymentLastError string          `json:"paymentLastError,omitempty"`

	PaidAt *time.Time `json:"paidAt,omitempty"`
}

// OrderItem snapshots one product line at purchase time.
type OrderItem struct {
	baseModel.BaseModel
	OrderID     string `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductID   string `gorm:"type:uuid;index;not null" json:"productId"`
	ProductName string `json:"productName"`
	// UnitPrice in major units of the order currency, frozen at creation.
	UnitPrice int64 `gorm:"not null" json:"unitPrice"`
	Quantity  int   `gorm:"not null" json:"quantity"`
}

// Lifecycle states.
const (
	StatusCreated        = "created"
	StatusPendingPayment = "pending_payment"
	StatusPaid           = "paid"
	StatusProcessing     = "processing"
	StatusFulfilled      = "fulfilled"
	StatusCancelled      = "cancelled"
	StatusRefunded       = "refunded"
)

// Payment sub-states.
const (
	PaymentPending = "pending"
	PaymentReview  = "review"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Payment methods / gateway providers.
const (
	MethodBankTransfer = "bank_transfer"
	MethodStripe       = "stripe"
	MethodPayPal       = "paypal"

	ProviderManual = "manual"
	ProviderStripe = "stripe"
	ProviderPayPal = "paypal"
)

// ValidMethod reports whether m is a recognized payment method.
func ValidMethod(m string) bool {
	switch m {
	case MethodBankTransfer, MethodStripe, MethodPayPal:
		return true
	}
	return false
}

// ProviderFor maps a payment method to its gateway provider tag.
func ProviderFor(method string) string {
	switch method {
	case MethodBankTransfer:
		return ProviderManual
	case MethodStripe:
		return ProviderStripe
	case MethodPayPal:
		return ProviderPayPal
	}
	return ""
}

// IsTerminal reports whether no further lifecycle transition is allowed
// out of the state except the admin refund path.
func IsTerminal(status string) bool {
	switch status {
	case StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Entitles reports whether the order grants download access.
func Entitles(status string) bool {
	return status == StatusPaid || status == StatusProcessing || status == StatusFulfilled
}
