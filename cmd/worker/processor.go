package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"tokengate/internal/razorpay"
)

type paymentFetcher interface {
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error)
}

type metricSink interface {
	Count(ctx context.Context, name string, value float64, dims map[string]string) error
}

// Processor handles issuance events: enrich from the payment provider for the
// audit log, then count the issuance in CloudWatch.
type Processor struct {
	provider paymentFetcher
	metrics  metricSink
	logger   *zap.Logger
}

// NewProcessor creates a worker processor with its collaborators injected.
func NewProcessor(provider paymentFetcher, metrics metricSink, logger *zap.Logger) *Processor {
	return &Processor{
		provider: provider,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			p.logger.Error("worker error", zap.Error(err))
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg IssuanceMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	fields := []zap.Field{
		zap.String("payment_id", msg.PaymentID),
		zap.String("event", msg.Event),
		zap.String("correlation_id", msg.CorrelationID),
	}

	// enrichment is best-effort: a provider blip should not recycle the message
	if msg.PaymentID != "" && p.provider != nil {
		payment, err := p.provider.FetchPayment(ctx, msg.PaymentID)
		if err != nil {
			p.logger.Warn("payment enrichment failed", append(fields, zap.Error(err))...)
		} else {
			fields = append(fields,
				zap.Int64("amount", payment.Amount),
				zap.String("currency", payment.Currency),
				zap.String("payment_status", payment.Status))
		}
	}
	p.logger.Info("purchase token issued", fields...)

	if err := p.metrics.Count(ctx, "TokensIssued", 1, map[string]string{"event": msg.Event}); err != nil {
		return fmt.Errorf("emit issuance metric: %w", err)
	}
	return nil
}
