// Package signer issues and verifies HMAC-signed, expiring download
// tokens. A token authorizes one asset for one user under one order;
// there is no server-side registry and no per-token revocation.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"
)

// Token carries the plaintext fields plus their signature. All fields
// travel in the download URL's query string.
type Token struct {
	AssetID   string
	UserID    string
	OrderID   string
	ExpiresAt int64 // unix milliseconds
	Signature string
}

type Signer struct {
	secret []byte
	now    func() time.Time
}

func New(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// NewWithClock injects the clock for expiry tests.
func NewWithClock(secret string, now func() time.Time) *Signer {
	return &Signer{secret: []byte(secret), now: now}
}

func (s *Signer) sign(assetID, userID, orderID string, expiresAt int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%s:%s:%d", assetID, userID, orderID, expiresAt)
	return hex.EncodeToString(mac.Sum(nil))
}

// Issue produces a signed token valid for ttl from now.
func (s *Signer) Issue(assetID, userID, orderID string, ttl time.Duration) Token {
	expiresAt := s.now().Add(ttl).UnixMilli()
	return Token{
		AssetID:   assetID,
		UserID:    userID,
		OrderID:   orderID,
		ExpiresAt: expiresAt,
		Signature: s.sign(assetID, userID, orderID, expiresAt),
	}
}

// Verify recomputes the signature and checks expiry. It fails closed:
// missing fields, a signature mismatch and a past expiry all surface as
// the same generic invalid-link error, differing only in the kind used
// for status-code mapping.
func (s *Signer) Verify(assetID, userID, orderID string, expiresAt int64, signature string) error {
	if assetID == "" || userID == "" || orderID == "" || signature == "" {
		return apperr.BadSignature()
	}

	want := s.sign(assetID, userID, orderID, expiresAt)
	got, err := hex.DecodeString(signature)
	if err != nil {
		return apperr.BadSignature()
	}
	wantRaw, _ := hex.DecodeString(want)
	if !hmac.Equal(wantRaw, got) {
		return apperr.BadSignature()
	}

	if s.now().UnixMilli() > expiresAt {
		return apperr.ExpiredLink()
	}
	return nil
}
