package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	internalaws "tokengate/internal/aws"
	"tokengate/internal/config"
	"tokengate/internal/handlers"
	"tokengate/internal/kv"
	"tokengate/internal/logger"
	"tokengate/internal/razorpay"
)

func setupRouter(d handlers.Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	handlers.RegisterRoutes(r, d)

	return r
}

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

	deps := handlers.Deps{
		Config: cfg,
		Logger: logg,
		Store:  kv.NewDynamoStore(clients.DynamoDB, cfg.Store.TableName),
		Provider: razorpay.NewClient(
			cfg.Razorpay.BaseURL,
			cfg.Razorpay.KeyID,
			cfg.Razorpay.KeySecret,
			cfg.Razorpay.Timeout,
			logg,
		),
	}
	if cfg.Queue.URL != "" {
		deps.Publisher = internalaws.NewPublisher(clients.SQS, cfg.Queue.URL)
	}

	r := setupRouter(deps)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logg.Info("running local server", zap.String("addr", addr))
		if err := r.Run(addr); err != nil {
			logg.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
