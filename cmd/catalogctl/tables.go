package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/spf13/cobra"

	"github.com/sakarghimire/ecommerce-products/internal/errs"
	"github.com/sakarghimire/ecommerce-products/internal/productevent"
)

func newTablesCmd(a *app) *cobra.Command {
	tables := &cobra.Command{
		Use:   "tables",
		Short: "Manage the DynamoDB tables",
	}
	tables.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create the products and events tables and enable event expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			for _, def := range tableDefinitions(a.cfg.Tables.Products, a.cfg.Tables.Events) {
				created, err := createTable(ctx, a.db, def)
				if err != nil {
					return err
				}
				status := "created"
				if !created {
					status = "exists"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", aws.StringValue(def.TableName), status)
			}
			if err := enableTTL(ctx, a.db, a.cfg.Tables.Events); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tttl on %q\n", a.cfg.Tables.Events, productevent.AttrTTL)
			return nil
		},
	})
	return tables
}

func tableDefinitions(productsTable, eventsTable string) []*dynamodb.CreateTableInput {
	return []*dynamodb.CreateTableInput{
		{
			TableName:   aws.String(productsTable),
			BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
			AttributeDefinitions: []*dynamodb.AttributeDefinition{
				{AttributeName: aws.String("id"), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
			},
			KeySchema: []*dynamodb.KeySchemaElement{
				{AttributeName: aws.String("id"), KeyType: aws.String(dynamodb.KeyTypeHash)},
			},
		},
		{
			TableName:   aws.String(eventsTable),
			BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
			AttributeDefinitions: []*dynamodb.AttributeDefinition{
				{AttributeName: aws.String(productevent.AttrPK), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
				{AttributeName: aws.String(productevent.AttrSK), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
			},
			KeySchema: []*dynamodb.KeySchemaElement{
				{AttributeName: aws.String(productevent.AttrPK), KeyType: aws.String(dynamodb.KeyTypeHash)},
				{AttributeName: aws.String(productevent.AttrSK), KeyType: aws.String(dynamodb.KeyTypeRange)},
			},
		},
	}
}

// createTable reports false when the table already exists.
func createTable(ctx context.Context, db dynamodbiface.DynamoDBAPI, def *dynamodb.CreateTableInput) (bool, error) {
	_, err := db.CreateTableWithContext(ctx, def)
	if err != nil {
		var aerr awserr.Error
		if errs.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeResourceInUseException {
			return false, nil
		}
		return false, errs.Wrapf(err, "failed to create table %s", aws.StringValue(def.TableName))
	}
	return true, nil
}

func enableTTL(ctx context.Context, db dynamodbiface.DynamoDBAPI, table string) error {
	_, err := db.UpdateTimeToLiveWithContext(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(table),
		TimeToLiveSpecification: &dynamodb.TimeToLiveSpecification{
			AttributeName: aws.String(productevent.AttrTTL),
			Enabled:       aws.Bool(true),
		},
	})
	if err != nil {
		var aerr awserr.Error
		if errs.As(err, &aerr) && strings.Contains(aerr.Message(), "already enabled") {
			return nil
		}
		return errs.Wrapf(err, "failed to enable ttl on %s", table)
	}
	return nil
}
