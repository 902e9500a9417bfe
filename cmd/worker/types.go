package main

// IssuanceMessage is the payload sent from API -> SQS -> Worker after a
// webhook mints a purchase token.
type IssuanceMessage struct {
	Token         string `json:"token"`
	PaymentID     string `json:"payment_id"`
	Event         string `json:"event"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
