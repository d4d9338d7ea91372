package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/mrjordantanner/trnkt-backend/internal/config"
)

// Connect builds the DynamoDB client and fails fast if the endpoint is
// unreachable, mirroring a connect-and-ping startup.
func Connect(cfg *config.Config) *dynamodb.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		panic(err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	})

	if _, err := client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)}); err != nil {
		slog.Error("failed to reach DynamoDB", "err", err)
		panic(err)
	}

	slog.Info("connected to DynamoDB", "region", cfg.AWSRegion, "endpoint", cfg.DynamoEndpoint)
	return client
}
