package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakarghimire/ecommerce-products/internal/errs"
	"github.com/sakarghimire/ecommerce-products/internal/product"
)

func newProductsCmd(a *app) *cobra.Command {
	products := &cobra.Command{
		Use:   "products",
		Short: "Inspect products",
	}

	products.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := product.NewDynamoRepository(a.db, a.cfg.Tables.Products)
			list, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), list)
			}
			printProductTable(cmd.OutOrStdout(), list)
			return nil
		},
	})

	products.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := product.NewDynamoRepository(a.db, a.cfg.Tables.Products)
			p, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return errs.Mark(errs.Newf("product %s not found", args[0]), errs.ErrNotFound)
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printProductTable(cmd.OutOrStdout(), []product.Product{*p})
			return nil
		},
	})
	return products
}

func printProductTable(w io.Writer, products []product.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tPRICE\tMODEL\tURL")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Code, p.Name, p.Price, p.Model, p.URL)
	}
	tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
