// Package gateway hides each payment provider's protocol behind one
// uniform create/capture contract. Clients never mutate order state;
// the order service decides what a result means.
package gateway

import "context"

// CheckoutRequest carries the order fields a provider needs. Amounts
// are in major units of Currency; each client converts as its provider
// requires.
type CheckoutRequest struct {
	OrderID     string // local order id, used as the correlation key
	OrderNo     string
	Amount      int64
	Currency    string
	Description string
}

// RemoteOrderOptions are the browser return points for redirect flows.
type RemoteOrderOptions struct {
	ReturnURL string
	CancelURL string
}

// RemoteOrder is the provider-side order handle.
type RemoteOrder struct {
	ExternalID  string
	RedirectURL string
	// Instructions is set by providers with no remote flow (manual
	// bank transfer) to tell the UI what to collect.
	Instructions string
}

// CaptureResult reports a capture attempt. Completed=false is not an
// error: the provider answered, the payment just is not settled.
type CaptureResult struct {
	Completed         bool
	ExternalCaptureID string
	RawStatus         string
	// ChargedValue/Currency echo what the provider actually charged,
	// which may be a substituted currency.
	ChargedValue    string
	ChargedCurrency string
}

// Gateway is the uniform provider contract.
type Gateway interface {
	Provider() string
	CreateRemoteOrder(ctx context.Context, req CheckoutRequest, opts RemoteOrderOptions) (*RemoteOrder, error)
	Capture(ctx context.Context, externalToken, orderID string) (*CaptureResult, error)
}
