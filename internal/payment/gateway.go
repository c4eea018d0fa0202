package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

// Gateway is a hosted payment provider. The browser widget collects the
// payment; the server only creates the provider-side order and verifies the
// success callback.
type Gateway interface {
	// KeyID is the public key handed to the widget.
	KeyID() string
	// CreateOrder registers amountMinor (paise) with the provider and returns its order id.
	CreateOrder(amountMinor int64, currency, receipt string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type Razorpay struct {
	keyID  string
	secret string
	client *razorpay.Client
}

func NewRazorpay(keyID, secret string) (*Razorpay, error) {
	if keyID == "" || secret == "" {
		return nil, errors.New("razorpay key id and secret are required")
	}
	return &Razorpay{keyID: keyID, secret: secret, client: razorpay.NewClient(keyID, secret)}, nil
}

func (r *Razorpay) KeyID() string { return r.keyID }

func (r *Razorpay) CreateOrder(amountMinor int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := r.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order: %w", err)
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", errors.New("razorpay order: missing id in response")
	}
	return id, nil
}

func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	return hmac.Equal([]byte(Signature(r.secret, orderID, paymentID)), []byte(signature))
}

// Signature is the provider's callback signature: hex HMAC-SHA256 of
// "orderID|paymentID" keyed by the account secret.
func Signature(secret, orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}
