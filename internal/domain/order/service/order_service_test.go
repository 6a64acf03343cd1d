package service

import (
	"context"
	"errors"
	"testing"

	auditModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/model"
	auditService "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/service"
	catalogModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/model"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/model"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"
	baseModel "github.com/Mpratama260304/MpratamaStore-sub001/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByNo(ctx context.Context, orderNo string) (*model.Order, error) {
	args := m.Called(ctx, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) GuardedUpdate(ctx context.Context, orderID string, guard repository.Guard, updates map[string]interface{}) (bool, error) {
	args := m.Called(ctx, orderID, guard, updates)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) FindEntitledOrder(ctx context.Context, userID, productID string) (*model.Order, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockCatalogRepository is a mock of CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) CreateProduct(ctx context.Context, p *catalogModel.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetProduct(ctx context.Context, id string) (*catalogModel.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogModel.Product), args.Error(1)
}

func (m *MockCatalogRepository) ListPublished(ctx context.Context, offset, limit int) ([]catalogModel.Product, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]catalogModel.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogRepository) CreateAsset(ctx context.Context, a *catalogModel.DigitalAsset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetAsset(ctx context.Context, id string) (*catalogModel.DigitalAsset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogModel.DigitalAsset), args.Error(1)
}

// MockRecorder is a mock of the audit Recorder. FailWrites simulates an
// audit outage.
type MockRecorder struct {
	mock.Mock
	Actions []string
}

func (m *MockRecorder) Record(ctx context.Context, action, entityType, entityID, actorID string, meta map[string]interface{}) {
	m.Actions = append(m.Actions, action)
}

func (m *MockRecorder) GetList(ctx context.Context, offset, limit int) ([]auditModel.Entry, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]auditModel.Entry), args.Get(1).(int64), args.Error(2)
}

// downAuditRepository simulates an unavailable audit store.
type downAuditRepository struct {
	creates int
}

func (d *downAuditRepository) Create(ctx context.Context, entry *auditModel.Entry) error {
	d.creates++
	return errors.New("audit store down")
}

func (d *downAuditRepository) GetList(ctx context.Context, offset, limit int) ([]auditModel.Entry, int64, error) {
	return nil, 0, errors.New("audit store down")
}

func testProduct(id string, price int64) *catalogModel.Product {
	return &catalogModel.Product{
		BaseModel: baseModel.BaseModel{ID: id},
		Name:      "Product " + id,
		Price:     price,
		Currency:  "IDR",
		Published: true,
	}
}

func testOrder(id, status string) *model.Order {
	return &model.Order{
		BaseModel:     baseModel.BaseModel{ID: id},
		OrderNo:       "20250601" + id,
		UserID:        "user-1",
		Total:         150000,
		Currency:      "IDR",
		Status:        status,
		PaymentMethod: model.MethodPayPal,
		PaymentStatus: model.PaymentPending,
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots prices and sums the total", func(t *testing.T) {
		repo := new(MockOrderRepository)
		catalog := new(MockCatalogRepository)
		svc := NewOrderService(repo, catalog, &MockRecorder{})

		catalog.On("GetProduct", ctx, "p1").Return(testProduct("p1", 100000), nil)
		catalog.On("GetProduct", ctx, "p2").Return(testProduct("p2", 25000), nil)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Order")).Return(nil)

		order, err := svc.Create(ctx, "user-1", []LineInput{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 2},
		}, model.MethodPayPal)

		require.NoError(t, err)
		assert.Equal(t, int64(150000), order.Total)
		assert.Equal(t, "IDR", order.Currency)
		assert.Equal(t, model.StatusPendingPayment, order.Status)
		assert.Equal(t, model.ProviderPayPal, order.GatewayProvider)
		assert.Len(t, order.Items, 2)
		assert.Equal(t, int64(100000), order.Items[0].UnitPrice)
		repo.AssertExpectations(t)
	})

	t.Run("no method stays in created", func(t *testing.T) {
		repo := new(MockOrderRepository)
		catalog := new(MockCatalogRepository)
		svc := NewOrderService(repo, catalog, &MockRecorder{})

		catalog.On("GetProduct", ctx, "p1").Return(testProduct("p1", 100000), nil)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Order")).Return(nil)

		order, err := svc.Create(ctx, "user-1", []LineInput{{ProductID: "p1", Quantity: 1}}, "")
		require.NoError(t, err)
		assert.Equal(t, model.StatusCreated, order.Status)
		assert.Empty(t, order.PaymentMethod)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		svc := NewOrderService(new(MockOrderRepository), new(MockCatalogRepository), &MockRecorder{})

		_, err := svc.Create(ctx, "user-1", []LineInput{{ProductID: "p1", Quantity: 1}}, "cash")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("rejects unpublished product", func(t *testing.T) {
		repo := new(MockOrderRepository)
		catalog := new(MockCatalogRepository)
		svc := NewOrderService(repo, catalog, &MockRecorder{})

		hidden := testProduct("p1", 100000)
		hidden.Published = false
		catalog.On("GetProduct", ctx, "p1").Return(hidden, nil)

		_, err := svc.Create(ctx, "user-1", []LineInput{{ProductID: "p1", Quantity: 1}}, "")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("audit outage does not block creation", func(t *testing.T) {
		repo := new(MockOrderRepository)
		catalog := new(MockCatalogRepository)
		// Real recorder over a broken sink: the write fails inside and
		// must never surface to the business operation.
		sink := &downAuditRepository{}
		svc := NewOrderService(repo, catalog, auditService.NewRecorder(sink))

		catalog.On("GetProduct", ctx, "p1").Return(testProduct("p1", 100000), nil)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Order")).Return(nil)

		order, err := svc.Create(ctx, "user-1", []LineInput{{ProductID: "p1", Quantity: 1}}, "")
		require.NoError(t, err)
		assert.NotNil(t, order)
		assert.Equal(t, 1, sink.creates, "the audit write was attempted and failed quietly")
	})
}

func TestChangePaymentMethod(t *testing.T) {
	ctx := context.Background()

	t.Run("clears stale gateway state", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockCatalogRepository), &MockRecorder{})

		order := testOrder("o1", model.StatusPendingPayment)
		order.GatewayReference = "PP-OLD"
		repo.On("GetByID", ctx, "o1").Return(order, nil)
		repo.On("GuardedUpdate", ctx, "o1", mock.AnythingOfType("repository.Guard"),
			mock.MatchedBy(func(u map[string]interface{}) bool {
				return u["payment_method"] == model.MethodStripe &&
					u["gateway_reference"] == "" &&
					u["gateway_data"] == nil
			})).Return(true, nil)

		_, err := svc.ChangePaymentMethod(ctx, "user-1", "o1", model.MethodStripe)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("paid order is not changeable", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockCatalogRepository), &MockRecorder{})

		paid := testOrder("o1", model.StatusPendingPayment)
		paid.PaymentStatus = model.PaymentPaid
		repo.On("GetByID", ctx, "o1").Return(paid, nil)

		_, err := svc.ChangePaymentMethod(ctx, "user-1", "o1", model.MethodStripe)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("lost guard race surfaces as conflict", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockCatalogRepository), &MockRecorder{})

		repo.On("GetByID", ctx, "o1").Return(testOrder("o1", model.StatusPendingPayment), nil)
		repo.On("GuardedUpdate", ctx, "o1", mock.Anything, mock.Anything).Return(false, nil)

		_, err := svc.ChangePaymentMethod(ctx, "user-1", "o1", model.MethodStripe)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("foreign order is forbidden", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockCatalogRepository), &MockRecorder{})

		repo.On("GetByID", ctx, "o1").Return(testOrder("o1", model.StatusPendingPayment), nil)

		_, err := svc.ChangePaymentMethod(ctx, "someone-else", "o1", model.MethodStripe)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})
}

func TestConfirmCapture(t *testing.T) {
	ctx := context.Background()
	capture := CaptureData{
		Provider:          model.ProviderPayPal,
		ExternalReference: "PP-1",
		Data:              model.GatewayData{Paypal: &model.PaypalData{OrderID: "PP-1", CaptureID: "CAP-1"}},
	}

	t.Run("pays a pending order once", func(t *testing.T) {
		repo := new(MockOrderRepository)
		recorder := &MockRecorder{}
		svc := NewOrderService(repo, new(MockCatalogRepository), recorder)

		pending := testOrder("o1", model.StatusPendingPayment)
		pending.GatewayProvider = model.ProviderPayPal
		pending.GatewayReference = "PP-1"
		paid := testOrder("o1", model.StatusPaid)

		repo.On("GetByID", ctx, "o1").Return(pending, nil).Once()
		repo.On("GuardedUpdate", ctx, "o1", mock.Anything,
			mock.MatchedBy(func(u map[string]interface{}) bool {
				return u["status"] == model.StatusPaid && u["payment_status"] == model.PaymentPaid
			})).Return(true, nil)
		repo.On("GetByID", ctx, "o1").Return(paid, nil)

		got, err := svc.ConfirmCapture(ctx, "o1", capture)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPaid, got.Status)
		assert.Contains(t, recorder.Actions, auditModel.ActionPaymentCapture)
	})

	t.Run("duplicate capture is a no-op", func(t *testing.T) {
		repo := new(MockOrderRepository)
		recorder := &MockRecorder{}
		svc := NewOrderService(repo, new(MockCatalogRepository), recorder)

		paid := testOrder("o1", model.StatusPaid)
		repo.On("GetByID", ctx, "o1").Return(paid, nil)

		got, err := svc.ConfirmCapture(ctx, "o1", capture)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPaid, got.Status)
		// No second transition, no second audit entry.
		repo.AssertNotCalled(t, "GuardedUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.NotContains(t, recorder.Actions, auditModel.ActionPaymentCapture)
	})

	t.Run("lost race against concurrent capture still succeeds", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockCatalogRepository), &MockRecorder{})

		pending := testOrder("o1", model.StatusPendingPayment)
		pending.GatewayProvider = model.ProviderPayPal
		pending.GatewayReference = "PP-1"
		paid := testOrder("o1", model.StatusPaid)

		repo.On("GetByID", ctx, "o1").Return(pending, nil).Once()
		repo.On("GuardedUpdate", ctx, "o1", mock.Anything, mock.Anything).Return(false, nil)
		repo.On("GetByID", ctx, "o1").Return(paid, nil)

		got, err := svc.ConfirmCapture(ctx, "o1", capture)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPaid, got.Status)
	})

	t.Run("cancelled order cannot be paid", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockCatalogRepository), &MockRecorder{})

		repo.On("GetByID", ctx, "o1").Return(testOrder("o1", model.StatusCancelled), nil)

		_, err := svc.ConfirmCapture(ctx, "o1", capture)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("provider mismatch after method change is rejected", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockCatalogRepository), &MockRecorder{})

		order := testOrder("o1", model.StatusPendingPayment)
		order.PaymentMethod = model.MethodStripe
		order.GatewayProvider = model.ProviderStripe
		repo.On("GetByID", ctx, "o1").Return(order, nil)

		_, err := svc.ConfirmCapture(ctx, "o1", capture)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("reference mismatch is rejected", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockCatalogRepository), &MockRecorder{})

		order := testOrder("o1", model.StatusPendingPayment)
		order.GatewayProvider = model.ProviderPayPal
		order.GatewayReference = "PP-NEWER"
		repo.On("GetByID", ctx, "o1").Return(order, nil)

		_, err := svc.ConfirmCapture(ctx, "o1", capture)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestRecordCaptureFailure(t *testing.T) {
	ctx := context.Background()

	repo := new(MockOrderRepository)
	recorder := &MockRecorder{}
	svc := NewOrderService(repo, new(MockCatalogRepository), recorder)

	repo.On("GuardedUpdate", ctx, "o1", mock.Anything,
		mock.MatchedBy(func(u map[string]interface{}) bool {
			// The lifecycle status is untouched; only the payment
			// sub-state records the failure.
			_, touchesStatus := u["status"]
			return !touchesStatus && u["payment_status"] == model.PaymentFailed
		})).Return(true, nil)

	err := svc.RecordCaptureFailure(ctx, "o1", model.ProviderPayPal, "DECLINED")
	require.NoError(t, err)
	assert.Contains(t, recorder.Actions, auditModel.ActionPaymentFailure)
}

func TestCancelAndRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel unpaid order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockCatalogRepository), &MockRecorder{})

		repo.On("GetByID", ctx, "o1").Return(testOrder("o1", model.StatusCreated), nil)
		repo.On("GuardedUpdate", ctx, "o1", mock.Anything, mock.Anything).Return(true, nil)

		assert.NoError(t, svc.Cancel(ctx, "user-1", "o1"))
	})

	t.Run("cancel paid order conflicts", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockCatalogRepository), &MockRecorder{})

		repo.On("GetByID", ctx, "o1").Return(testOrder("o1", model.StatusPaid), nil)
		repo.On("GuardedUpdate", ctx, "o1", mock.Anything, mock.Anything).Return(false, nil)

		err := svc.Cancel(ctx, "user-1", "o1")
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("refund fulfilled order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		recorder := &MockRecorder{}
		svc := NewOrderService(repo, new(MockCatalogRepository), recorder)

		repo.On("GetByID", ctx, "o1").Return(testOrder("o1", model.StatusFulfilled), nil)
		repo.On("GuardedUpdate", ctx, "o1", mock.Anything, mock.Anything).Return(true, nil)

		require.NoError(t, svc.Refund(ctx, "admin-1", "o1"))
		assert.Contains(t, recorder.Actions, auditModel.ActionOrderRefund)
	})

	t.Run("repo error propagates", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, new(MockCatalogRepository), &MockRecorder{})

		repo.On("GetByID", ctx, "o1").Return(nil, errors.New("db down"))

		err := svc.Cancel(ctx, "user-1", "o1")
		assert.Error(t, err)
	})
}
