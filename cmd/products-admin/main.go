package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/sakarghimire/ecommerce-products/internal/awsclient"
	"github.com/sakarghimire/ecommerce-products/internal/clock"
	"github.com/sakarghimire/ecommerce-products/internal/config"
	"github.com/sakarghimire/ecommerce-products/internal/handler"
	"github.com/sakarghimire/ecommerce-products/internal/logger"
	"github.com/sakarghimire/ecommerce-products/internal/product"
	"github.com/sakarghimire/ecommerce-products/internal/productevent"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger := logger.New(logger.Config{Level: cfg.Log.Level, Encoding: cfg.Log.Encoding}).
		With(zap.String("function", "products-admin"))
	defer zapLogger.Sync()

	if err := cfg.ValidateAdmin(); err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}

	sess, err := awsclient.NewSession(cfg.AWS)
	if err != nil {
		zapLogger.Fatal("aws session failed", zap.Error(err))
	}
	db := awsclient.NewDynamoDB(sess)

	var publisher productevent.Publisher
	if cfg.Events.FunctionName != "" {
		publisher = productevent.NewLambdaPublisher(awsclient.NewLambda(sess), cfg.Events.FunctionName, cfg.Events.InvocationType)
	} else {
		zapLogger.Info("no events function configured, recording events in-process", zap.String("table", cfg.Tables.Events))
		recorder := productevent.NewRecorder(productevent.NewDynamoStore(db, cfg.Tables.Events), clock.NewRealClock(), cfg.Events.TTL)
		publisher = productevent.NewRecorderPublisher(recorder)
	}

	products := product.NewDynamoRepository(db, cfg.Tables.Products)
	lambda.Start(handler.NewAdmin(products, publisher, cfg.Events.DefaultActorEmail, zapLogger).Handle)
}
