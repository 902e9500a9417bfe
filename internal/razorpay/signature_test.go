package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func digest(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test_secret"
	body := []byte(`{"event":"payment.captured"}`)
	sig := digest(secret, body)

	if !VerifyWebhookSignature(body, sig, secret) {
		t.Fatal("valid signature rejected")
	}

	// any single-byte mutation of the body must be rejected
	for i := range body {
		mutated := make([]byte, len(body))
		copy(mutated, body)
		mutated[i] ^= 0x01
		if VerifyWebhookSignature(mutated, sig, secret) {
			t.Fatalf("mutation at byte %d accepted", i)
		}
	}

	if VerifyWebhookSignature(body, sig, "wrong_secret") {
		t.Fatal("signature accepted under wrong secret")
	}
	if VerifyWebhookSignature(body, "", secret) {
		t.Fatal("empty signature accepted")
	}
}

func TestParseWebhookEvent_PaymentID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "payment_entity",
			body: `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_123","amount":49900,"status":"captured"}}}}`,
			want: "pay_123",
		},
		{
			name: "payment_link_entity",
			body: `{"event":"payment_link.paid","payload":{"payment_link":{"entity":{"id":"plink_456"}}}}`,
			want: "plink_456",
		},
		{
			name: "payment_preferred_over_link",
			body: `{"event":"payment_link.paid","payload":{"payment":{"entity":{"id":"pay_789"}},"payment_link":{"entity":{"id":"plink_000"}}}}`,
			want: "pay_789",
		},
		{
			name: "no_identifier",
			body: `{"event":"refund.created","payload":{}}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseWebhookEvent([]byte(tt.body))
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if got := ev.PaymentID(); got != tt.want {
				t.Fatalf("PaymentID() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := ParseWebhookEvent([]byte("not json")); err == nil {
		t.Fatal("expected parse error on malformed body")
	}
}
