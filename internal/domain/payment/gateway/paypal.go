package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/cache"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/currency"
)

// paypalSupported is the subset of currencies PayPal accepts that this
// store can encounter. IDR is not among them, so IDR orders are charged
// in USD at the configured fixed rate.
var paypalSupported = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "AUD": true, "CAD": true,
	"JPY": true, "SGD": true, "HKD": true, "MYR": true, "PHP": true,
	"THB": true, "TWD": true, "NZD": true, "CHF": true,
}

// PayPalGateway speaks the v2 Checkout API: client-credentials token,
// create order, capture. The bearer token is cached well under its
// server-side lifetime; a stale one just triggers a refetch next TTL.
type PayPalGateway struct {
	clientID   string
	secret     string
	apiBase    string
	usdRate    int64
	client     *http.Client
	tokenCache *cache.Value
}

func NewPayPalGateway(clientID, secret, apiBase string, usdRate int64) *PayPalGateway {
	g := &PayPalGateway{
		clientID: clientID,
		secret:   secret,
		apiBase:  strings.TrimRight(apiBase, "/"),
		usdRate:  usdRate,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	g.tokenCache = cache.NewValue(5*time.Minute, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return g.fetchToken(ctx)
	})
	return g
}

func (g *PayPalGateway) token() (string, error) {
	val, err := g.tokenCache.Get()
	if err != nil {
		return "", err
	}
	return val.(string), nil
}

func (g *PayPalGateway) Provider() string {
	return "paypal"
}

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (g *PayPalGateway) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiBase+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.clientID, g.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", apperr.Gatewayf("paypal", err, "token exchange failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.Gatewayf("paypal", nil, "token exchange returned %d", resp.StatusCode)
	}

	var tok paypalTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", apperr.Gatewayf("paypal", err, "token response malformed")
	}
	if tok.AccessToken == "" {
		return "", apperr.Gatewayf("paypal", nil, "token response missing access_token")
	}
	return tok.AccessToken, nil
}

// chargeAmount resolves the value/currency PayPal will see, converting
// unsupported currencies at the fixed rate. The order's own ledger is
// never touched.
func (g *PayPalGateway) chargeAmount(amount int64, code string) (value, cur string, err error) {
	if paypalSupported[code] {
		return currency.FormatValue(currency.ToGatewayUnits(amount, code), code), code, nil
	}
	converted, err := currency.ConvertForGateway(amount, "USD", g.usdRate)
	if err != nil {
		return "", "", err
	}
	return converted.Value, converted.Currency, nil
}

type paypalOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

func (g *PayPalGateway) CreateRemoteOrder(ctx context.Context, req CheckoutRequest, opts RemoteOrderOptions) (*RemoteOrder, error) {
	token, err := g.token()
	if err != nil {
		return nil, err
	}

	value, code, err := g.chargeAmount(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"reference_id": req.OrderID,
			"custom_id":    req.OrderID,
			"description":  req.Description,
			"amount": map[string]string{
				"currency_code": code,
				"value":         value,
			},
		}},
		"application_context": map[string]string{
			"return_url": opts.ReturnURL,
			"cancel_url": opts.CancelURL,
		},
	}

	var remote paypalOrderResponse
	if err := g.post(ctx, token, "/v2/checkout/orders", body, &remote); err != nil {
		return nil, err
	}

	approval := ""
	for _, link := range remote.Links {
		if link.Rel == "approve" {
			approval = link.Href
		}
	}
	if remote.ID == "" || approval == "" {
		return nil, apperr.Gatewayf("paypal", nil, "create order response missing id or approve link")
	}

	return &RemoteOrder{ExternalID: remote.ID, RedirectURL: approval}, nil
}

type paypalCaptureResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Amount struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (g *PayPalGateway) Capture(ctx context.Context, externalToken, orderID string) (*CaptureResult, error) {
	token, err := g.token()
	if err != nil {
		return nil, err
	}

	var remote paypalCaptureResponse
	err = g.post(ctx, token, "/v2/checkout/orders/"+url.PathEscape(externalToken)+"/capture", map[string]interface{}{}, &remote)
	if err != nil {
		return nil, err
	}

	result := &CaptureResult{
		Completed: remote.Status == "COMPLETED",
		RawStatus: remote.Status,
	}
	for _, pu := range remote.PurchaseUnits {
		for _, cap := range pu.Payments.Captures {
			result.ExternalCaptureID = cap.ID
			result.ChargedValue = cap.Amount.Value
			result.ChargedCurrency = cap.Amount.CurrencyCode
		}
	}
	return result, nil
}

func (g *PayPalGateway) post(ctx context.Context, token, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiBase+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return apperr.Gatewayf("paypal", err, "request to %s failed", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Body is provider diagnostics; keep a short prefix for the
		// error, never credentials.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return apperr.Gatewayf("paypal", nil, "%s returned %d: %s", path, resp.StatusCode, string(snippet))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperr.Gatewayf("paypal", err, "response from %s malformed", path)
		}
	}
	return nil
}

var _ Gateway = (*PayPalGateway)(nil)

// Describe keeps fmt from printing credentials if a gateway ever ends
// up in a log line.
func (g *PayPalGateway) String() string {
	return fmt.Sprintf("PayPalGateway(%s)", g.apiBase)
}
