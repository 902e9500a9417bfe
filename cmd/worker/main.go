package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	internalaws "tokengate/internal/aws"
	"tokengate/internal/config"
	"tokengate/internal/logger"
	"tokengate/internal/razorpay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logg.Sync()

	clients, err := internalaws.NewAWSClients(context.Background())
	if err != nil {
		logg.Fatal("failed to init aws clients", zap.Error(err))
	}

	provider := razorpay.NewClient(
		cfg.Razorpay.BaseURL,
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.Timeout,
		logg,
	)
	metrics := internalaws.NewMetrics(clients.CloudWatch, cfg.Queue.MetricNamespace)
	processor := NewProcessor(provider, metrics, logg)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"token":"local-token-1","payment_id":"pay_local_1","event":"payment.captured"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{
					Body: testBody,
				},
			},
		}
		if err := processor.Handle(context.Background(), event); err != nil {
			logg.Fatal("local handler error", zap.Error(err))
		}
		return
	}

	lambda.Start(processor.Handle)
}
