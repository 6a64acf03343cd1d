package gateway

import (
	"context"

	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"
)

// ManualGateway is the bank-transfer path. There is no remote call;
// settlement happens when an admin approves the customer's proof.
type ManualGateway struct{}

func NewManualGateway() *ManualGateway {
	return &ManualGateway{}
}

func (g *ManualGateway) Provider() string {
	return "manual"
}

func (g *ManualGateway) CreateRemoteOrder(_ context.Context, req CheckoutRequest, _ RemoteOrderOptions) (*RemoteOrder, error) {
	return &RemoteOrder{
		Instructions: "transfer the order total and upload your payment proof for order " + req.OrderNo,
	}, nil
}

func (g *ManualGateway) Capture(_ context.Context, _, _ string) (*CaptureResult, error) {
	return nil, apperr.Conflictf("manual transfers are settled by proof review, not capture")
}

var _ Gateway = (*ManualGateway)(nil)
