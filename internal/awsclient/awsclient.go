// Package awsclient builds the AWS SDK clients shared by the Lambda functions
// and the operator CLI.
package awsclient

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	awslambda "github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"

	"github.com/sakarghimire/ecommerce-products/internal/config"
	"github.com/sakarghimire/ecommerce-products/internal/errs"
)

// NewSession creates an AWS session for the configured region. A non-empty
// endpoint redirects every client to it, which is how local DynamoDB is used.
func NewSession(cfg config.AWSConfig) (*session.Session, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create AWS session")
	}
	return sess, nil
}

func NewDynamoDB(sess *session.Session) dynamodbiface.DynamoDBAPI {
	return dynamodb.New(sess)
}

func NewLambda(sess *session.Session) lambdaiface.LambdaAPI {
	return awslambda.New(sess)
}
