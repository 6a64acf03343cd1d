package service

import (
	"context"
	"io"
	"mime/multipart"
	"testing"

	auditModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/model"
	orderModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/model"
	orderRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/repository"
	orderService "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment/gateway"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment/model"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"
	baseModel "github.com/Mpratama260304/MpratamaStore-sub001/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock of the order lifecycle service.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, userID string, lines []orderService.LineInput, method string) (*orderModel.Order, error) {
	args := m.Called(ctx, userID, lines, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderService) GetForUser(ctx context.Context, userID, orderID string) (*orderModel.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderService) ListForUser(ctx context.Context, userID string, offset, limit int) ([]orderModel.Order, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	return args.Get(0).([]orderModel.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderService) GetByID(ctx context.Context, orderID string) (*orderModel.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderService) ChangePaymentMethod(ctx context.Context, userID, orderID, method string) (*orderModel.Order, error) {
	args := m.Called(ctx, userID, orderID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderService) AttachGatewayReference(ctx context.Context, orderID, provider, reference string, data orderModel.GatewayData) error {
	args := m.Called(ctx, orderID, provider, reference, data)
	return args.Error(0)
}

func (m *MockOrderService) ConfirmCapture(ctx context.Context, orderID string, capture orderService.CaptureData) (*orderModel.Order, error) {
	args := m.Called(ctx, orderID, capture)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderService) RecordCaptureFailure(ctx context.Context, orderID, provider, rawStatus string) error {
	args := m.Called(ctx, orderID, provider, rawStatus)
	return args.Error(0)
}

func (m *MockOrderService) Cancel(ctx context.Context, userID, orderID string) error {
	args := m.Called(ctx, userID, orderID)
	return args.Error(0)
}

func (m *MockOrderService) Fulfill(ctx context.Context, adminID, orderID string) error {
	args := m.Called(ctx, adminID, orderID)
	return args.Error(0)
}

func (m *MockOrderService) Refund(ctx context.Context, adminID, orderID string) error {
	args := m.Called(ctx, adminID, orderID)
	return args.Error(0)
}

// MockPaymentRepository is a mock of PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreateProof(ctx context.Context, proof *model.PaymentProof) error {
	args := m.Called(ctx, proof)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetProofByID(ctx context.Context, id string) (*model.PaymentProof, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentProof), args.Error(1)
}

func (m *MockPaymentRepository) ListProofsByOrder(ctx context.Context, orderID string) ([]model.PaymentProof, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]model.PaymentProof), args.Error(1)
}

func (m *MockPaymentRepository) HasOutstandingProof(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) ApproveProof(ctx context.Context, proofID, reviewerID string) (*model.PaymentProof, error) {
	args := m.Called(ctx, proofID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentProof), args.Error(1)
}

func (m *MockPaymentRepository) RejectProof(ctx context.Context, proofID, reviewerID, reason string) (*model.PaymentProof, error) {
	args := m.Called(ctx, proofID, reviewerID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentProof), args.Error(1)
}

// MockGateway is a mock of the provider contract.
type MockGateway struct {
	mock.Mock
	provider string
}

func (m *MockGateway) Provider() string {
	return m.provider
}

func (m *MockGateway) CreateRemoteOrder(ctx context.Context, req gateway.CheckoutRequest, opts gateway.RemoteOrderOptions) (*gateway.RemoteOrder, error) {
	args := m.Called(ctx, req, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.RemoteOrder), args.Error(1)
}

func (m *MockGateway) Capture(ctx context.Context, externalToken, orderID string) (*gateway.CaptureResult, error) {
	args := m.Called(ctx, externalToken, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CaptureResult), args.Error(1)
}

// MockObjectStore is a mock of storage.ObjectStore.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(prefix string, file *multipart.FileHeader) (string, error) {
	args := m.Called(prefix, file)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Get(key string) (io.ReadCloser, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockOrderRepo covers only what the payment service touches.
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *orderModel.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id string) (*orderModel.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderRepo) GetByNo(ctx context.Context, orderNo string) (*orderModel.Order, error) {
	args := m.Called(ctx, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]orderModel.Order, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	return args.Get(0).([]orderModel.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepo) GuardedUpdate(ctx context.Context, orderID string, guard orderRepo.Guard, updates map[string]interface{}) (bool, error) {
	args := m.Called(ctx, orderID, guard, updates)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepo) FindEntitledOrder(ctx context.Context, userID, productID string) (*orderModel.Order, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

// MockRecorder keeps the audit calls for inspection.
type MockRecorder struct {
	Actions []string
}

func (m *MockRecorder) Record(ctx context.Context, action, entityType, entityID, actorID string, meta map[string]interface{}) {
	m.Actions = append(m.Actions, action)
}

func (m *MockRecorder) GetList(ctx context.Context, offset, limit int) ([]auditModel.Entry, int64, error) {
	return nil, 0, nil
}

type fixture struct {
	repo      *MockPaymentRepository
	orders    *MockOrderService
	orderRepo *MockOrderRepo
	gw        *MockGateway
	store     *MockObjectStore
	recorder  *MockRecorder
	svc       PaymentService
}

func newFixture(provider string) *fixture {
	f := &fixture{
		repo:      new(MockPaymentRepository),
		orders:    new(MockOrderService),
		orderRepo: new(MockOrderRepo),
		gw:        &MockGateway{provider: provider},
		store:     new(MockObjectStore),
		recorder:  &MockRecorder{},
	}
	f.svc = NewPaymentService(f.repo, f.orders, f.orderRepo,
		map[string]gateway.Gateway{provider: f.gw}, f.store, f.recorder)
	return f
}

func pendingOrder(id, method string) *orderModel.Order {
	return &orderModel.Order{
		BaseModel:       baseModel.BaseModel{ID: id},
		OrderNo:         "20250601" + id,
		UserID:          "user-1",
		Total:           150000,
		Currency:        "IDR",
		Status:          orderModel.StatusPendingPayment,
		PaymentMethod:   method,
		PaymentStatus:   orderModel.PaymentPending,
		GatewayProvider: orderModel.ProviderFor(method),
	}
}

func TestStartCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches the gateway reference after the remote call", func(t *testing.T) {
		f := newFixture(orderModel.ProviderPayPal)
		order := pendingOrder("o1", orderModel.MethodPayPal)

		f.orders.On("GetForUser", ctx, "user-1", "o1").Return(order, nil)
		f.gw.On("CreateRemoteOrder", ctx, mock.MatchedBy(func(req gateway.CheckoutRequest) bool {
			return req.OrderID == "o1" && req.Amount == 150000 && req.Currency == "IDR"
		}), mock.Anything).Return(&gateway.RemoteOrder{
			ExternalID:  "PP-1",
			RedirectURL: "https://paypal.test/approve",
		}, nil)
		f.orders.On("AttachGatewayReference", ctx, "o1", orderModel.ProviderPayPal, "PP-1",
			mock.MatchedBy(func(d orderModel.GatewayData) bool {
				return d.Paypal != nil && d.Paypal.OrderID == "PP-1"
			})).Return(nil)

		result, err := f.svc.StartCheckout(ctx, "user-1", "o1", orderModel.ProviderPayPal, "https://s/return", "https://s/cancel")
		require.NoError(t, err)
		assert.Equal(t, "PP-1", result.ExternalID)
		assert.Equal(t, "https://paypal.test/approve", result.RedirectURL)
		f.orders.AssertExpectations(t)
	})

	t.Run("method mismatch conflicts before any remote call", func(t *testing.T) {
		f := newFixture(orderModel.ProviderPayPal)
		f.orders.On("GetForUser", ctx, "user-1", "o1").Return(pendingOrder("o1", orderModel.MethodStripe), nil)

		_, err := f.svc.StartCheckout(ctx, "user-1", "o1", orderModel.ProviderPayPal, "", "")
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		f.gw.AssertNotCalled(t, "CreateRemoteOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("paid order conflicts", func(t *testing.T) {
		f := newFixture(orderModel.ProviderPayPal)
		order := pendingOrder("o1", orderModel.MethodPayPal)
		order.Status = orderModel.StatusPaid
		f.orders.On("GetForUser", ctx, "user-1", "o1").Return(order, nil)

		_, err := f.svc.StartCheckout(ctx, "user-1", "o1", orderModel.ProviderPayPal, "", "")
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("unknown provider is rejected", func(t *testing.T) {
		f := newFixture(orderModel.ProviderPayPal)

		_, err := f.svc.StartCheckout(ctx, "user-1", "o1", "bitcoin", "", "")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestCaptureReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("completed capture confirms the order with gateway details", func(t *testing.T) {
		f := newFixture(orderModel.ProviderPayPal)
		order := pendingOrder("o1", orderModel.MethodPayPal)
		order.GatewayReference = "PP-1"
		paid := pendingOrder("o1", orderModel.MethodPayPal)
		paid.Status = orderModel.StatusPaid

		f.orders.On("GetByID", ctx, "o1").Return(order, nil)
		f.gw.On("Capture", ctx, "PP-1", "o1").Return(&gateway.CaptureResult{
			Completed:         true,
			ExternalCaptureID: "CAP-1",
			RawStatus:         "COMPLETED",
			ChargedValue:      "9.68",
			ChargedCurrency:   "USD",
		}, nil)
		f.orders.On("ConfirmCapture", ctx, "o1", mock.MatchedBy(func(c orderService.CaptureData) bool {
			return c.Provider == orderModel.ProviderPayPal &&
				c.ExternalReference == "PP-1" &&
				c.Data.Paypal != nil &&
				c.Data.Paypal.CaptureID == "CAP-1" &&
				c.Data.Paypal.ChargedValue == "9.68" &&
				c.Data.Paypal.ChargedCurrency == "USD"
		})).Return(paid, nil)

		got, err := f.svc.CaptureReturn(ctx, orderModel.ProviderPayPal, "PP-1", "o1")
		require.NoError(t, err)
		assert.Equal(t, orderModel.StatusPaid, got.Status)
		// The ledger stays in the store currency; the USD charge lives
		// only in the gateway data.
		assert.Equal(t, int64(150000), got.Total)
		assert.Equal(t, "IDR", got.Currency)
	})

	t.Run("replayed return for a paid order skips the gateway", func(t *testing.T) {
		f := newFixture(orderModel.ProviderPayPal)
		order := pendingOrder("o1", orderModel.MethodPayPal)
		order.Status = orderModel.StatusPaid

		f.orders.On("GetByID", ctx, "o1").Return(order, nil)

		got, err := f.svc.CaptureReturn(ctx, orderModel.ProviderPayPal, "PP-1", "o1")
		require.NoError(t, err)
		assert.Equal(t, orderModel.StatusPaid, got.Status)
		f.gw.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stale token after method change is rejected", func(t *testing.T) {
		f := newFixture(orderModel.ProviderPayPal)
		order := pendingOrder("o1", orderModel.MethodStripe)
		order.GatewayReference = "cs_123"

		f.orders.On("GetByID", ctx, "o1").Return(order, nil)

		_, err := f.svc.CaptureReturn(ctx, orderModel.ProviderPayPal, "PP-1", "o1")
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		f.gw.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("incomplete capture records the failure and keeps the order pending", func(t *testing.T) {
		f := newFixture(orderModel.ProviderPayPal)
		order := pendingOrder("o1", orderModel.MethodPayPal)
		order.GatewayReference = "PP-1"

		f.orders.On("GetByID", ctx, "o1").Return(order, nil)
		f.gw.On("Capture", ctx, "PP-1", "o1").Return(&gateway.CaptureResult{
			Completed: false,
			RawStatus: "DECLINED",
		}, nil)
		f.orders.On("RecordCaptureFailure", ctx, "o1", orderModel.ProviderPayPal, "DECLINED").Return(nil)

		_, err := f.svc.CaptureReturn(ctx, orderModel.ProviderPayPal, "PP-1", "o1")
		assert.Equal(t, apperr.KindGateway, apperr.KindOf(err))
		f.orders.AssertExpectations(t)
	})
}

func TestSubmitProof(t *testing.T) {
	ctx := context.Background()
	file := &multipart.FileHeader{Filename: "receipt.jpg"}

	t.Run("stores the proof and moves the order under review", func(t *testing.T) {
		f := newFixture(orderModel.ProviderManual)
		order := pendingOrder("o1", orderModel.MethodBankTransfer)

		f.orders.On("GetForUser", ctx, "user-1", "o1").Return(order, nil)
		f.repo.On("HasOutstandingProof", ctx, "o1").Return(false, nil)
		f.store.On("Put", "proofs", file).Return("proofs/20250601/abc.jpg", nil)
		f.repo.On("CreateProof", ctx, mock.MatchedBy(func(p *model.PaymentProof) bool {
			return p.OrderID == "o1" && p.EvidenceKey == "proofs/20250601/abc.jpg" && p.Status == model.ProofSubmitted
		})).Return(nil)
		f.orderRepo.On("GuardedUpdate", ctx, "o1", mock.Anything,
			mock.MatchedBy(func(u map[string]interface{}) bool {
				return u["payment_status"] == orderModel.PaymentReview
			})).Return(true, nil)

		proof, err := f.svc.SubmitProof(ctx, "user-1", "o1", file, "paid via ATM")
		require.NoError(t, err)
		assert.Equal(t, model.ProofSubmitted, proof.Status)
		assert.Contains(t, f.recorder.Actions, auditModel.ActionPaymentProofSubmit)
	})

	t.Run("second submission while one is under review conflicts", func(t *testing.T) {
		f := newFixture(orderModel.ProviderManual)
		f.orders.On("GetForUser", ctx, "user-1", "o1").Return(pendingOrder("o1", orderModel.MethodBankTransfer), nil)
		f.repo.On("HasOutstandingProof", ctx, "o1").Return(true, nil)

		_, err := f.svc.SubmitProof(ctx, "user-1", "o1", file, "")
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})

	t.Run("resubmission after rejection is accepted", func(t *testing.T) {
		f := newFixture(orderModel.ProviderManual)
		order := pendingOrder("o1", orderModel.MethodBankTransfer)

		f.orders.On("GetForUser", ctx, "user-1", "o1").Return(order, nil)
		// The rejected proof no longer counts as outstanding.
		f.repo.On("HasOutstandingProof", ctx, "o1").Return(false, nil)
		f.store.On("Put", "proofs", file).Return("proofs/20250602/def.jpg", nil)
		f.repo.On("CreateProof", ctx, mock.Anything).Return(nil)
		f.orderRepo.On("GuardedUpdate", ctx, "o1", mock.Anything, mock.Anything).Return(true, nil)

		_, err := f.svc.SubmitProof(ctx, "user-1", "o1", file, "second try, sharper photo")
		assert.NoError(t, err)
	})

	t.Run("gateway order cannot take a proof", func(t *testing.T) {
		f := newFixture(orderModel.ProviderManual)
		f.orders.On("GetForUser", ctx, "user-1", "o1").Return(pendingOrder("o1", orderModel.MethodPayPal), nil)

		_, err := f.svc.SubmitProof(ctx, "user-1", "o1", file, "")
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestReviewProof(t *testing.T) {
	ctx := context.Background()

	t.Run("approve records both proof and capture audit entries", func(t *testing.T) {
		f := newFixture(orderModel.ProviderManual)
		approved := &model.PaymentProof{
			BaseModel: baseModel.BaseModel{ID: "proof-1"},
			OrderID:   "o1",
			Status:    model.ProofApproved,
		}
		f.repo.On("ApproveProof", ctx, "proof-1", "admin-1").Return(approved, nil)

		proof, err := f.svc.ApproveProof(ctx, "admin-1", "proof-1")
		require.NoError(t, err)
		assert.Equal(t, model.ProofApproved, proof.Status)
		assert.Contains(t, f.recorder.Actions, auditModel.ActionPaymentApprove)
		assert.Contains(t, f.recorder.Actions, auditModel.ActionPaymentCapture)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		f := newFixture(orderModel.ProviderManual)

		_, err := f.svc.RejectProof(ctx, "admin-1", "proof-1", "")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		f.repo.AssertNotCalled(t, "RejectProof", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reject passes the reason through", func(t *testing.T) {
		f := newFixture(orderModel.ProviderManual)
		rejected := &model.PaymentProof{
			BaseModel:    baseModel.BaseModel{ID: "proof-1"},
			OrderID:      "o1",
			Status:       model.ProofRejected,
			RejectReason: "transfer slip is illegible",
		}
		f.repo.On("RejectProof", ctx, "proof-1", "admin-1", "transfer slip is illegible").Return(rejected, nil)

		proof, err := f.svc.RejectProof(ctx, "admin-1", "proof-1", "transfer slip is illegible")
		require.NoError(t, err)
		assert.Equal(t, model.ProofRejected, proof.Status)
		assert.Contains(t, f.recorder.Actions, auditModel.ActionPaymentReject)
	})
}
