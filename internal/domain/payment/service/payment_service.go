package service

import (
	"context"
	"mime/multipart"

	auditModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/model"
	auditService "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/service"
	orderModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/model"
	orderRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/repository"
	orderService "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment/gateway"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment/model"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/storage"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"
)

// CheckoutResult is what the UI needs to continue a checkout: a
// redirect for gateway flows, instructions for the manual one.
type CheckoutResult struct {
	OrderID      string `json:"orderId"`
	Provider     string `json:"provider"`
	ExternalID   string `json:"externalId,omitempty"`
	RedirectURL  string `json:"redirectUrl,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// PaymentService drives the three payment paths. Gateway calls happen
// between a fresh read and a guarded write, never inside a database
// transaction.
type PaymentService interface {
	StartCheckout(ctx context.Context, userID, orderID, provider, returnURL, cancelURL string) (*CheckoutResult, error)
	CaptureReturn(ctx context.Context, provider, externalToken, orderID string) (*orderModel.Order, error)

	SubmitProof(ctx context.Context, userID, orderID string, file *multipart.FileHeader, note string) (*model.PaymentProof, error)
	ApproveProof(ctx context.Context, adminID, proofID string) (*model.PaymentProof, error)
	RejectProof(ctx context.Context, adminID, proofID, reason string) (*model.PaymentProof, error)
	ListProofs(ctx context.Context, orderID string) ([]model.PaymentProof, error)
}

type paymentService struct {
	repo      repository.PaymentRepository
	orders    orderService.OrderService
	orderRepo orderRepo.OrderRepository
	gateways  map[string]gateway.Gateway
	store     storage.ObjectStore
	recorder  auditService.Recorder
}

func NewPaymentService(
	repo repository.PaymentRepository,
	orders orderService.OrderService,
	ordRepo orderRepo.OrderRepository,
	gateways map[string]gateway.Gateway,
	store storage.ObjectStore,
	recorder auditService.Recorder,
) PaymentService {
	return &paymentService{
		repo:      repo,
		orders:    orders,
		orderRepo: ordRepo,
		gateways:  gateways,
		store:     store,
		recorder:  recorder,
	}
}

func (s *paymentService) gateway(provider string) (gateway.Gateway, error) {
	g, ok := s.gateways[provider]
	if !ok {
		return nil, apperr.Validationf("payment provider %q is not available", provider)
	}
	return g, nil
}

func (s *paymentService) StartCheckout(ctx context.Context, userID, orderID, provider, returnURL, cancelURL string) (*CheckoutResult, error) {
	g, err := s.gateway(provider)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if orderModel.Entitles(order.Status) {
		return nil, apperr.Conflictf("order %s is already paid", order.OrderNo)
	}
	if order.Status != orderModel.StatusCreated && order.Status != orderModel.StatusPendingPayment {
		return nil, apperr.Conflictf("order %s is not awaiting payment", order.OrderNo)
	}
	if orderModel.ProviderFor(order.PaymentMethod) != provider {
		return nil, apperr.Conflictf("order %s is set to pay via %s", order.OrderNo, order.PaymentMethod)
	}

	// Remote call first, with no lock held; the reference is attached
	// afterwards under the awaiting-payment guard.
	remote, err := g.CreateRemoteOrder(ctx, gateway.CheckoutRequest{
		OrderID:     order.ID,
		OrderNo:     order.OrderNo,
		Amount:      order.Total,
		Currency:    order.Currency,
		Description: "order " + order.OrderNo,
	}, gateway.RemoteOrderOptions{ReturnURL: returnURL, CancelURL: cancelURL})
	if err != nil {
		return nil, err
	}

	if remote.ExternalID != "" {
		data := orderModel.GatewayData{}
		switch provider {
		case orderModel.ProviderPayPal:
			data.Paypal = &orderModel.PaypalData{OrderID: remote.ExternalID}
		case orderModel.ProviderStripe:
			data.Stripe = &orderModel.StripeData{SessionID: remote.ExternalID}
		}
		if err := s.orders.AttachGatewayReference(ctx, order.ID, provider, remote.ExternalID, data); err != nil {
			return nil, err
		}
	}

	return &CheckoutResult{
		OrderID:      order.ID,
		Provider:     provider,
		ExternalID:   remote.ExternalID,
		RedirectURL:  remote.RedirectURL,
		Instructions: remote.Instructions,
	}, nil
}

// CaptureReturn finishes a gateway redirect flow. It is idempotent: a
// replayed return URL for a paid order succeeds without charging again.
func (s *paymentService) CaptureReturn(ctx context.Context, provider, externalToken, orderID string) (*orderModel.Order, error) {
	g, err := s.gateway(provider)
	if err != nil {
		return nil, err
	}
	if externalToken == "" {
		return nil, apperr.Validationf("missing gateway token")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if orderModel.Entitles(order.Status) {
		return order, nil
	}
	if orderModel.IsTerminal(order.Status) {
		return nil, apperr.Conflictf("order %s can no longer be paid", order.OrderNo)
	}
	if order.GatewayProvider != provider || order.GatewayReference != externalToken {
		// The method changed or a different checkout superseded this
		// one; this token must not settle the order.
		return nil, apperr.Conflictf("gateway token does not match order %s", order.OrderNo)
	}

	result, err := g.Capture(ctx, externalToken, order.ID)
	if err != nil {
		return nil, err
	}

	if !result.Completed {
		if err := s.orders.RecordCaptureFailure(ctx, order.ID, provider, result.RawStatus); err != nil {
			return nil, err
		}
		return nil, apperr.Gatewayf(provider, nil, "capture not completed: %s", result.RawStatus)
	}

	data := orderModel.GatewayData{}
	switch provider {
	case orderModel.ProviderPayPal:
		data.Paypal = &orderModel.PaypalData{
			OrderID:         externalToken,
			CaptureID:       result.ExternalCaptureID,
			RawStatus:       result.RawStatus,
			ChargedValue:    result.ChargedValue,
			ChargedCurrency: result.ChargedCurrency,
		}
	case orderModel.ProviderStripe:
		data.Stripe = &orderModel.StripeData{
			SessionID:       externalToken,
			PaymentIntentID: result.ExternalCaptureID,
			RawStatus:       result.RawStatus,
			ChargedValue:    result.ChargedValue,
			ChargedCurrency: result.ChargedCurrency,
		}
	}

	return s.orders.ConfirmCapture(ctx, order.ID, orderService.CaptureData{
		Provider:          provider,
		ExternalReference: externalToken,
		Data:              data,
	})
}

func (s *paymentService) SubmitProof(ctx context.Context, userID, orderID string, file *multipart.FileHeader, note string) (*model.PaymentProof, error) {
	if file == nil {
		return nil, apperr.Validationf("proof file is required")
	}
	if s.store == nil {
		return nil, apperr.Gatewayf("storage", nil, "object storage not configured")
	}

	order, err := s.orders.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != orderModel.MethodBankTransfer {
		return nil, apperr.Conflictf("order %s is not paying by bank transfer", order.OrderNo)
	}
	if order.Status != orderModel.StatusCreated && order.Status != orderModel.StatusPendingPayment {
		return nil, apperr.Conflictf("order %s is not awaiting payment", order.OrderNo)
	}
	if order.PaymentStatus == orderModel.PaymentPaid {
		return nil, apperr.Conflictf("order %s is already paid", order.OrderNo)
	}

	outstanding, err := s.repo.HasOutstandingProof(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if outstanding {
		return nil, apperr.Conflictf("a proof for order %s is already under review", order.OrderNo)
	}

	key, err := s.store.Put("proofs", file)
	if err != nil {
		return nil, err
	}

	proof := &model.PaymentProof{
		OrderID:     order.ID,
		EvidenceKey: key,
		Filename:    file.Filename,
		Note:        note,
		Status:      model.ProofSubmitted,
	}
	if err := s.repo.CreateProof(ctx, proof); err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.GuardedUpdate(ctx, order.ID,
		orderRepo.Guard{
			StatusIn:         []string{orderModel.StatusCreated, orderModel.StatusPendingPayment},
			PaymentStatusNot: orderModel.PaymentPaid,
		},
		map[string]interface{}{
			"status":         orderModel.StatusPendingPayment,
			"payment_status": orderModel.PaymentReview,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflictf("order %s is no longer awaiting payment", order.OrderNo)
	}

	s.recorder.Record(ctx, auditModel.ActionPaymentProofSubmit, auditModel.EntityProof, proof.ID, userID, map[string]interface{}{
		"orderId":  order.ID,
		"filename": proof.Filename,
	})
	return proof, nil
}

func (s *paymentService) ApproveProof(ctx context.Context, adminID, proofID string) (*model.PaymentProof, error) {
	proof, err := s.repo.ApproveProof(ctx, proofID, adminID)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, auditModel.ActionPaymentApprove, auditModel.EntityProof, proof.ID, adminID, map[string]interface{}{
		"orderId": proof.OrderID,
	})
	s.recorder.Record(ctx, auditModel.ActionPaymentCapture, auditModel.EntityOrder, proof.OrderID, adminID, map[string]interface{}{
		"provider": orderModel.ProviderManual,
		"proofId":  proof.ID,
	})
	return proof, nil
}

func (s *paymentService) RejectProof(ctx context.Context, adminID, proofID, reason string) (*model.PaymentProof, error) {
	if reason == "" {
		return nil, apperr.Validationf("a rejection reason is required")
	}

	proof, err := s.repo.RejectProof(ctx, proofID, adminID, reason)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, auditModel.ActionPaymentReject, auditModel.EntityProof, proof.ID, adminID, map[string]interface{}{
		"orderId": proof.OrderID,
		"reason":  reason,
	})
	return proof, nil
}

func (s *paymentService) ListProofs(ctx context.Context, orderID string) ([]model.PaymentProof, error) {
	return s.repo.ListProofsByOrder(ctx, orderID)
}
