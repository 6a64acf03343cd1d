package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/currency"
)

// StripeGateway drives a Checkout Session flow over Stripe's
// form-encoded API. Stripe accepts IDR directly, so no currency
// substitution is needed here.
type StripeGateway struct {
	secretKey string
	apiBase   string
	client    *http.Client
}

func NewStripeGateway(secretKey, apiBase string) *StripeGateway {
	return &StripeGateway{
		secretKey: secretKey,
		apiBase:   strings.TrimRight(apiBase, "/"),
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *StripeGateway) Provider() string {
	return "stripe"
}

type stripeSessionResponse struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	PaymentIntent string `json:"payment_intent"`
	Status        string `json:"status"`
}

func (g *StripeGateway) CreateRemoteOrder(ctx context.Context, req CheckoutRequest, opts RemoteOrderOptions) (*RemoteOrder, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", req.OrderID)
	form.Set("success_url", opts.ReturnURL)
	form.Set("cancel_url", opts.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][product_data][name]", req.Description)
	form.Set("line_items[0][price_data][unit_amount]",
		strconv.FormatInt(currency.ToGatewayUnits(req.Amount, req.Currency), 10))

	var session stripeSessionResponse
	if err := g.call(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	if session.ID == "" || session.URL == "" {
		return nil, apperr.Gatewayf("stripe", nil, "session response missing id or url")
	}

	return &RemoteOrder{ExternalID: session.ID, RedirectURL: session.URL}, nil
}

func (g *StripeGateway) Capture(ctx context.Context, externalToken, orderID string) (*CaptureResult, error) {
	var session stripeSessionResponse
	err := g.call(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(externalToken), nil, &session)
	if err != nil {
		return nil, err
	}

	return &CaptureResult{
		Completed:         session.PaymentStatus == "paid",
		ExternalCaptureID: session.PaymentIntent,
		RawStatus:         session.PaymentStatus,
	}, nil
}

func (g *StripeGateway) call(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, g.apiBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return apperr.Gatewayf("stripe", err, "request to %s failed", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return apperr.Gatewayf("stripe", nil, "%s returned %d: %s", path, resp.StatusCode, string(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Gatewayf("stripe", err, "response from %s malformed", path)
	}
	return nil
}

var _ Gateway = (*StripeGateway)(nil)
