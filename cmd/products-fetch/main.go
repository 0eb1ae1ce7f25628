package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/sakarghimire/ecommerce-products/internal/awsclient"
	"github.com/sakarghimire/ecommerce-products/internal/config"
	"github.com/sakarghimire/ecommerce-products/internal/handler"
	"github.com/sakarghimire/ecommerce-products/internal/logger"
	"github.com/sakarghimire/ecommerce-products/internal/product"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger := logger.New(logger.Config{Level: cfg.Log.Level, Encoding: cfg.Log.Encoding}).
		With(zap.String("function", "products-fetch"))
	defer zapLogger.Sync()

	if err := cfg.ValidateFetch(); err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}

	sess, err := awsclient.NewSession(cfg.AWS)
	if err != nil {
		zapLogger.Fatal("aws session failed", zap.Error(err))
	}

	products := product.NewDynamoRepository(awsclient.NewDynamoDB(sess), cfg.Tables.Products)
	lambda.Start(handler.NewFetch(products, zapLogger).Handle)
}
