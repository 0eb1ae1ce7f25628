// Command catalogctl prepares and inspects the catalog tables. Pointed at a
// local DynamoDB through AWS_ENDPOINT it bootstraps a development environment.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/spf13/cobra"

	"github.com/sakarghimire/ecommerce-products/internal/awsclient"
	"github.com/sakarghimire/ecommerce-products/internal/config"
	"github.com/sakarghimire/ecommerce-products/internal/errs"
)

type app struct {
	cfg        config.Config
	db         dynamodbiface.DynamoDBAPI
	out        io.Writer
	jsonOutput bool

	loadConfig func() (config.Config, error)
	connect    func(config.Config) (dynamodbiface.DynamoDBAPI, error)
}

func connectDynamoDB(cfg config.Config) (dynamodbiface.DynamoDBAPI, error) {
	sess, err := awsclient.NewSession(cfg.AWS)
	if err != nil {
		return nil, err
	}
	return awsclient.NewDynamoDB(sess), nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Manage the product catalog tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Tables.Products == "" {
				cfg.Tables.Products = "products"
			}
			if cfg.Tables.Events == "" {
				cfg.Tables.Events = "events"
			}
			a.cfg = cfg

			a.db, err = a.connect(cfg)
			if err != nil {
				return errs.Wrap(err, "failed to connect to DynamoDB")
			}
			return nil
		},
	}
	root.SetOut(a.out)
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "output as JSON")

	root.AddCommand(newTablesCmd(a))
	root.AddCommand(newProductsCmd(a))
	root.AddCommand(newEventsCmd(a))
	return root
}

func main() {
	a := &app{
		out:        os.Stdout,
		loadConfig: config.Load,
		connect:    connectDynamoDB,
	}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
