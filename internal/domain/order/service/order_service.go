package service

import (
	"context"
	"fmt"
	"time"

	auditModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/model"
	auditService "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/service"
	catalogRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/model"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"

	"github.com/google/uuid"
)

// LineInput is one requested line at checkout.
type LineInput struct {
	ProductID string
	Quantity  int
}

// CaptureData is what a completed gateway capture reports back.
type CaptureData struct {
	Provider          string
	ExternalReference string // the gateway's order/session id
	Data              model.GatewayData
}

// OrderService is the order lifecycle state machine. Every mutating
// operation re-checks its transition guard inside the UPDATE (via the
// repository Guard) so duplicate events resolve to safe no-ops or
// conflicts rather than double transitions.
type OrderService interface {
	Create(ctx context.Context, userID string, lines []LineInput, method string) (*model.Order, error)
	GetForUser(ctx context.Context, userID, orderID string) (*model.Order, error)
	ListForUser(ctx context.Context, userID string, offset, limit int) ([]model.Order, int64, error)
	GetByID(ctx context.Context, orderID string) (*model.Order, error)

	ChangePaymentMethod(ctx context.Context, userID, orderID, method string) (*model.Order, error)
	AttachGatewayReference(ctx context.Context, orderID, provider, reference string, data model.GatewayData) error
	ConfirmCapture(ctx context.Context, orderID string, capture CaptureData) (*model.Order, error)
	RecordCaptureFailure(ctx context.Context, orderID, provider, rawStatus string) error

	Cancel(ctx context.Context, userID, orderID string) error
	Fulfill(ctx context.Context, adminID, orderID string) error
	Refund(ctx context.Context, adminID, orderID string) error
}

type orderService struct {
	repo     repository.OrderRepository
	catalog  catalogRepo.CatalogRepository
	recorder auditService.Recorder
}

func NewOrderService(repo repository.OrderRepository, catalog catalogRepo.CatalogRepository, recorder auditService.Recorder) OrderService {
	return &orderService{repo: repo, catalog: catalog, recorder: recorder}
}

// awaitingPayment are the states in which the payment method may still
// change and the order may still be cancelled or captured.
var awaitingPayment = []string{model.StatusCreated, model.StatusPendingPayment}

func newOrderNo() string {
	return fmt.Sprintf("%s%s", time.Now().Format("20060102150405"), uuid.New().String()[:8])
}

func (s *orderService) Create(ctx context.Context, userID string, lines []LineInput, method string) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, apperr.Validationf("order must contain at least one item")
	}
	if method != "" && !model.ValidMethod(method) {
		return nil, apperr.Validationf("unknown payment method %q", method)
	}

	var (
		items    []model.OrderItem
		total    int64
		currency string
	)
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperr.Validationf("quantity must be positive")
		}
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.Published {
			return nil, apperr.NotFoundf("product %s not found", line.ProductID)
		}
		if currency == "" {
			currency = product.Currency
		} else if currency != product.Currency {
			return nil, apperr.Validationf("all items must share one currency")
		}

		// Price snapshot: the live price is copied here and never read
		// again for this order.
		items = append(items, model.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
		})
		total += product.Price * int64(line.Quantity)
	}

	order := &model.Order{
		OrderNo:       newOrderNo(),
		UserID:        userID,
		Items:         items,
		Total:         total,
		Currency:      currency,
		Status:        model.StatusCreated,
		PaymentStatus: model.PaymentPending,
	}
	if method != "" {
		order.Status = model.StatusPendingPayment
		order.PaymentMethod = method
		order.GatewayProvider = model.ProviderFor(method)
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, auditModel.ActionOrderCreate, auditModel.EntityOrder, order.ID, userID, map[string]interface{}{
		"orderNo":  order.OrderNo,
		"total":    order.Total,
		"currency": order.Currency,
		"method":   order.PaymentMethod,
	})
	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFoundf("order not found")
	}
	return order, nil
}

func (s *orderService) GetForUser(ctx context.Context, userID, orderID string) (*model.Order, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperr.Forbidden("order does not belong to you")
	}
	return order, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID string, offset, limit int) ([]model.Order, int64, error) {
	return s.repo.ListByUser(ctx, userID, offset, limit)
}

func (s *orderService) ChangePaymentMethod(ctx context.Context, userID, orderID, method string) (*model.Order, error) {
	if !model.ValidMethod(method) {
		return nil, apperr.Validationf("unknown payment method %q", method)
	}

	order, err := s.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.StatusCreated && order.Status != model.StatusPendingPayment {
		return nil, apperr.Conflictf("order %s is not changeable in state %s", order.OrderNo, order.Status)
	}
	if order.PaymentStatus == model.PaymentPaid {
		return nil, apperr.Conflictf("order %s is already paid", order.OrderNo)
	}

	// Stale gateway state from the previous method must never leak
	// into the new one.
	ok, err := s.repo.GuardedUpdate(ctx, orderID,
		repository.Guard{StatusIn: awaitingPayment, PaymentStatusNot: model.PaymentPaid},
		map[string]interface{}{
			"status":             model.StatusPendingPayment,
			"payment_method":     method,
			"payment_status":     model.PaymentPending,
			"gateway_provider":   model.ProviderFor(method),
			"gateway_reference":  "",
			"gateway_data":       nil,
			"payment_last_error": "",
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflictf("order %s is no longer changeable", order.OrderNo)
	}

	s.recorder.Record(ctx, auditModel.ActionOrderMethodChange, auditModel.EntityOrder, orderID, userID, map[string]interface{}{
		"from": order.PaymentMethod,
		"to":   method,
	})
	return s.GetByID(ctx, orderID)
}

func (s *orderService) AttachGatewayReference(ctx context.Context, orderID, provider, reference string, data model.GatewayData) error {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	merged := model.ParseGatewayData(order.GatewayData)
	merged.Merge(data)

	ok, err := s.repo.GuardedUpdate(ctx, orderID,
		repository.Guard{StatusIn: awaitingPayment, PaymentStatusNot: model.PaymentPaid},
		map[string]interface{}{
			"gateway_provider":  provider,
			"gateway_reference": reference,
			"gateway_data":      merged.Encode(),
		})
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflictf("order %s is not awaiting payment", order.OrderNo)
	}
	return nil
}

// ConfirmCapture is idempotent: a duplicate callback for an already
// paid order is a success no-op with no second paidAt. A callback whose
// provider or external reference no longer matches the order (payment
// method changed mid-flow) is rejected.
func (s *orderService) ConfirmCapture(ctx context.Context, orderID string, capture CaptureData) (*model.Order, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if model.Entitles(order.Status) {
		return order, nil
	}
	if model.IsTerminal(order.Status) {
		return nil, apperr.Conflictf("order %s can no longer be paid", order.OrderNo)
	}

	if order.GatewayProvider != capture.Provider {
		return nil, apperr.Conflictf("capture provider %s does not match order provider %s", capture.Provider, order.GatewayProvider)
	}
	if capture.ExternalReference != "" && order.GatewayReference != "" && order.GatewayReference != capture.ExternalReference {
		return nil, apperr.Conflictf("capture reference does not match order %s", order.OrderNo)
	}

	merged := model.ParseGatewayData(order.GatewayData)
	merged.Merge(capture.Data)
	now := time.Now()

	ok, err := s.repo.GuardedUpdate(ctx, orderID,
		repository.Guard{StatusIn: []string{model.StatusCreated, model.StatusPendingPayment}},
		map[string]interface{}{
			"status":             model.StatusPaid,
			"payment_status":     model.PaymentPaid,
			"paid_at":            now,
			"gateway_data":       merged.Encode(),
			"payment_last_error": "",
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race. If a concurrent callback already paid the
		// order this is still a success no-op.
		fresh, err := s.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if model.Entitles(fresh.Status) {
			return fresh, nil
		}
		return nil, apperr.Conflictf("order %s can no longer be paid", order.OrderNo)
	}

	s.recorder.Record(ctx, auditModel.ActionPaymentCapture, auditModel.EntityOrder, orderID, "", map[string]interface{}{
		"provider":  capture.Provider,
		"reference": capture.ExternalReference,
	})
	return s.GetByID(ctx, orderID)
}

func (s *orderService) RecordCaptureFailure(ctx context.Context, orderID, provider, rawStatus string) error {
	// The order stays pending; the customer may retry.
	_, err := s.repo.GuardedUpdate(ctx, orderID,
		repository.Guard{StatusIn: awaitingPayment},
		map[string]interface{}{
			"payment_status":     model.PaymentFailed,
			"payment_last_error": fmt.Sprintf("%s capture not completed: %s", provider, rawStatus),
		})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, auditModel.ActionPaymentFailure, auditModel.EntityOrder, orderID, "", map[string]interface{}{
		"provider":  provider,
		"rawStatus": rawStatus,
	})
	return nil
}

func (s *orderService) Cancel(ctx context.Context, userID, orderID string) error {
	order, err := s.GetForUser(ctx, userID, orderID)
	if err != nil {
		return err
	}

	ok, err := s.repo.GuardedUpdate(ctx, orderID,
		repository.Guard{StatusIn: awaitingPayment},
		map[string]interface{}{"status": model.StatusCancelled})
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflictf("order %s can no longer be cancelled", order.OrderNo)
	}

	s.recorder.Record(ctx, auditModel.ActionOrderCancel, auditModel.EntityOrder, orderID, userID, nil)
	return nil
}

func (s *orderService) Fulfill(ctx context.Context, adminID, orderID string) error {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	ok, err := s.repo.GuardedUpdate(ctx, orderID,
		repository.Guard{StatusIn: []string{model.StatusPaid, model.StatusProcessing}},
		map[string]interface{}{"status": model.StatusFulfilled})
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflictf("order %s is not paid", order.OrderNo)
	}

	s.recorder.Record(ctx, auditModel.ActionOrderFulfill, auditModel.EntityOrder, orderID, adminID, nil)
	return nil
}

func (s *orderService) Refund(ctx context.Context, adminID, orderID string) error {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	ok, err := s.repo.GuardedUpdate(ctx, orderID,
		repository.Guard{StatusIn: []string{model.StatusPaid, model.StatusProcessing, model.StatusFulfilled}},
		map[string]interface{}{"status": model.StatusRefunded})
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflictf("order %s is not refundable", order.OrderNo)
	}

	s.recorder.Record(ctx, auditModel.ActionOrderRefund, auditModel.EntityOrder, orderID, adminID, nil)
	return nil
}
