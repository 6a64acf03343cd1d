package model

import "encoding/json"

// GatewayData is the typed payload stored in the order's jsonb column,
// keyed by provider. Merging is explicit per field so a later capture
// never drops what an earlier step recorded.
type GatewayData struct {
	Manual *ManualData `json:"manual,omitempty"`
	Stripe *StripeData `json:"stripe,omitempty"`
	Paypal *PaypalData `json:"paypal,omitempty"`
}

type ManualData struct {
	ProofID    string `json:"proofId,omitempty"`
	ApprovedBy string `json:"approvedBy,omitempty"`
}

type StripeData struct {
	SessionID       string `json:"sessionId,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	RawStatus       string `json:"rawStatus,omitempty"`
	ChargedValue    string `json:"chargedValue,omitempty"`
	ChargedCurrency string `json:"chargedCurrency,omitempty"`
}

type PaypalData struct {
	OrderID         string `json:"paypalOrderId,omitempty"`
	CaptureID       string `json:"captureId,omitempty"`
	RawStatus       string `json:"rawStatus,omitempty"`
	ChargedValue    string `json:"chargedValue,omitempty"`
	ChargedCurrency string `json:"chargedCurrency,omitempty"`
}

// ParseGatewayData decodes the stored payload; an empty column yields a
// zero value.
func ParseGatewayData(raw json.RawMessage) GatewayData {
	var d GatewayData
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &d)
	}
	return d
}

// Merge applies the non-empty fields of in on top of d, provider by
// provider, leaving other providers' sections untouched.
func (d *GatewayData) Merge(in GatewayData) {
	if in.Manual != nil {
		if d.Manual == nil {
			d.Manual = &ManualData{}
		}
		mergeString(&d.Manual.ProofID, in.Manual.ProofID)
		mergeString(&d.Manual.ApprovedBy, in.Manual.ApprovedBy)
	}
	if in.Stripe != nil {
		if d.Stripe == nil {
			d.Stripe = &StripeData{}
		}
		mergeString(&d.Stripe.SessionID, in.Stripe.SessionID)
		mergeString(&d.Stripe.PaymentIntentID, in.Stripe.PaymentIntentID)
		mergeString(&d.Stripe.RawStatus, in.Stripe.RawStatus)
		mergeString(&d.Stripe.ChargedValue, in.Stripe.ChargedValue)
		mergeString(&d.Stripe.ChargedCurrency, in.Stripe.ChargedCurrency)
	}
	if in.Paypal != nil {
		if d.Paypal == nil {
			d.Paypal = &PaypalData{}
		}
		mergeString(&d.Paypal.OrderID, in.Paypal.OrderID)
		mergeString(&d.Paypal.CaptureID, in.Paypal.CaptureID)
		mergeString(&d.Paypal.RawStatus, in.Paypal.RawStatus)
		mergeString(&d.Paypal.ChargedValue, in.Paypal.ChargedValue)
		mergeString(&d.Paypal.ChargedCurrency, in.Paypal.ChargedCurrency)
	}
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// Encode serializes for the jsonb column.
func (d GatewayData) Encode() json.RawMessage {
	data, err := json.Marshal(d)
	if err != nil {
		return nil
	}
	return data
}
