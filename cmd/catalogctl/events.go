package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakarghimire/ecommerce-products/internal/productevent"
)

func newEventsCmd(a *app) *cobra.Command {
	events := &cobra.Command{
		Use:   "events",
		Short: "Inspect product lifecycle events",
	}

	events.AddCommand(&cobra.Command{
		Use:   "list <product-code>",
		Short: "List the unexpired events of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := productevent.NewDynamoStore(a.db, a.cfg.Tables.Events)
			records, err := store.ListByProduct(cmd.Context(), args[0], time.Now())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), records)
			}
			printEventTable(cmd.OutOrStdout(), records)
			return nil
		},
	})
	return events
}

func printEventTable(w io.Writer, records []productevent.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EVENT\tCREATED\tPRODUCT\tPRICE\tEMAIL\tREQUEST\tEXPIRES")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.EventType,
			time.UnixMilli(r.CreatedAt).UTC().Format(time.RFC3339),
			r.Info.ProductID,
			r.Info.Price,
			r.Email,
			r.RequestID,
			time.Unix(r.TTL, 0).UTC().Format(time.RFC3339),
		)
	}
	tw.Flush()
}
