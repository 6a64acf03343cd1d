package service

import (
	"context"
	"io"
	"time"

	auditModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/model"
	auditService "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/service"
	catalogModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/model"
	catalogRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/repository"
	orderModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/model"
	orderRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/storage"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/signer"
)

// FileStream is an open asset ready to send. The caller closes Body.
type FileStream struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
}

// DownloadService gates asset access twice: once when issuing a signed
// link, and again when the link is used. A link that verified
// yesterday does not serve today if the order was refunded in between.
type DownloadService interface {
	// RequestDownload checks entitlement and issues a signed token for
	// the asset. orderID is optional; when empty the user's earliest
	// entitling order is used.
	RequestDownload(ctx context.Context, userID, assetID, orderID string) (signer.Token, error)

	// ServeFile verifies the token, re-checks entitlement and opens the
	// asset for streaming.
	ServeFile(ctx context.Context, token signer.Token) (*FileStream, error)
}

type downloadService struct {
	catalog  catalogRepo.CatalogRepository
	orders   orderRepo.OrderRepository
	store    storage.ObjectStore
	signer   *signer.Signer
	ttl      time.Duration
	recorder auditService.Recorder
}

func NewDownloadService(
	catalog catalogRepo.CatalogRepository,
	orders orderRepo.OrderRepository,
	store storage.ObjectStore,
	sig *signer.Signer,
	ttl time.Duration,
	recorder auditService.Recorder,
) DownloadService {
	return &downloadService{
		catalog:  catalog,
		orders:   orders,
		store:    store,
		signer:   sig,
		ttl:      ttl,
		recorder: recorder,
	}
}

// entitledOrder resolves and validates the order granting access to the
// asset's product, or returns nil when there is none.
func (s *downloadService) entitledOrder(ctx context.Context, userID, orderID string, asset *catalogModel.DigitalAsset) (*orderModel.Order, error) {
	if orderID == "" {
		return s.orders.FindEntitledOrder(ctx, userID, asset.ProductID)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID || !orderModel.Entitles(order.Status) {
		return nil, nil
	}
	for _, item := range order.Items {
		if item.ProductID == asset.ProductID {
			return order, nil
		}
	}
	// The order is real and paid but does not cover this product.
	return nil, nil
}

func (s *downloadService) RequestDownload(ctx context.Context, userID, assetID, orderID string) (signer.Token, error) {
	asset, err := s.catalog.GetAsset(ctx, assetID)
	if err != nil {
		return signer.Token{}, err
	}
	if asset == nil {
		return signer.Token{}, apperr.NotFoundf("asset not found")
	}

	order, err := s.entitledOrder(ctx, userID, orderID, asset)
	if err != nil {
		return signer.Token{}, err
	}
	if order == nil {
		return signer.Token{}, apperr.Forbidden("no paid order grants access to this asset")
	}

	token := s.signer.Issue(assetID, userID, order.ID, s.ttl)

	s.recorder.Record(ctx, auditModel.ActionDownloadRequest, auditModel.EntityAsset, assetID, userID, map[string]interface{}{
		"orderId":   order.ID,
		"expiresAt": token.ExpiresAt,
	})
	return token, nil
}

func (s *downloadService) ServeFile(ctx context.Context, token signer.Token) (*FileStream, error) {
	if err := s.signer.Verify(token.AssetID, token.UserID, token.OrderID, token.ExpiresAt, token.Signature); err != nil {
		return nil, err
	}

	// Second gate: the signature only proves the link was issued; the
	// entitlement must still hold now. Failures are indistinguishable
	// from a bad link so the endpoint leaks nothing.
	asset, err := s.catalog.GetAsset(ctx, token.AssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apperr.BadSignature()
	}

	order, err := s.entitledOrder(ctx, token.UserID, token.OrderID, asset)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.BadSignature()
	}

	if s.store == nil {
		return nil, apperr.Gatewayf("storage", nil, "object storage not configured")
	}
	body, err := s.store.Get(asset.StorageKey)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, auditModel.ActionDownloadComplete, auditModel.EntityAsset, asset.ID, token.UserID, map[string]interface{}{
		"orderId":  order.ID,
		"filename": asset.Filename,
	})

	return &FileStream{
		Body:        body,
		Filename:    asset.Filename,
		ContentType: asset.ContentType,
	}, nil
}
