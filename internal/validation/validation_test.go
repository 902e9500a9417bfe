package validation

import (
	"encoding/json"
	"testing"
)

func TestCreatePaymentLinkRequest_Valid(t *testing.T) {
	v := New()

	req := CreatePaymentLinkRequest{
		Amount:      49900,
		Currency:    "INR",
		Description: "site setup",
		Notes:       map[string]string{"plan": "basic"},
	}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestCreatePaymentLinkRequest_BelowMinimum(t *testing.T) {
	v := New()

	req := CreatePaymentLinkRequest{
		Amount:   50, // below one rupee
		Currency: "INR",
	}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for sub-minimum amount, got nil")
	}
}

func TestCreatePaymentLinkRequest_MissingFields(t *testing.T) {
	v := New()

	tests := []struct {
		name string
		req  CreatePaymentLinkRequest
	}{
		{name: "zero_amount", req: CreatePaymentLinkRequest{Currency: "INR"}},
		{name: "no_currency", req: CreatePaymentLinkRequest{Amount: 49900}},
		{name: "lowercase_currency", req: CreatePaymentLinkRequest{Amount: 49900, Currency: "inr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.Struct(tt.req); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestGenerateRequest(t *testing.T) {
	v := New()

	ok := GenerateRequest{SetupPayload: json.RawMessage(`{"bg":"x"}`)}
	if err := v.Struct(ok); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}

	empty := GenerateRequest{}
	if err := v.Struct(empty); err == nil {
		t.Fatal("expected validation error for missing setup payload, got nil")
	}
}
