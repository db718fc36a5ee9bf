// Package payment talks to the payment gateway: orders, signature checks
// and refunds.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Gateway interface {
	// CreateOrder opens a gateway order for amount rupees.
	CreateOrder(ctx context.Context, bookingID uuid.UUID, amount int64) (string, error)
	// VerifySignature checks the signature the checkout returned for a
	// completed payment.
	VerifySignature(orderID, paymentID, signature string) bool
	InitiateRefund(ctx context.Context, bookingID uuid.UUID, amount int64, reason string) (string, error)
}

type Config struct {
	KeyID     string
	KeySecret string
}

// HMACGateway verifies checkout signatures with the shared key secret and
// issues order and refund references locally.
type HMACGateway struct {
	keyID  string
	secret []byte
}

func NewHMACGateway(cfg Config) *HMACGateway {
	return &HMACGateway{keyID: cfg.KeyID, secret: []byte(cfg.KeySecret)}
}

func (g *HMACGateway) KeyID() string { return g.keyID }

func (g *HMACGateway) CreateOrder(_ context.Context, bookingID uuid.UUID, amount int64) (string, error) {
	const op = "payment.HMACGateway.CreateOrder"

	if amount <= 0 {
		return "", fmt.Errorf("%s: amount must be positive, got %d", op, amount)
	}
	return "order_" + shortID(), nil
}

func (g *HMACGateway) VerifySignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	want, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(g.sign(orderID, paymentID), want)
}

func (g *HMACGateway) InitiateRefund(_ context.Context, bookingID uuid.UUID, amount int64, _ string) (string, error) {
	const op = "payment.HMACGateway.InitiateRefund"

	if amount <= 0 {
		return "", fmt.Errorf("%s: amount must be positive, got %d", op, amount)
	}
	return "rfnd_" + shortID(), nil
}

// Sign returns the hex signature the gateway issues for a payment.
func (g *HMACGateway) Sign(orderID, paymentID string) string {
	return hex.EncodeToString(g.sign(orderID, paymentID))
}

func (g *HMACGateway) sign(orderID, paymentID string) []byte {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return mac.Sum(nil)
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}
