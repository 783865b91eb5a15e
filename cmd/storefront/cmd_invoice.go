package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

var invoiceOutFlag string

// storefront invoice:render <orderId>: regenerate an invoice PDF on the
// configured disk and write a copy to --out (stdout by default).
var invoiceRenderCmd = &cobra.Command{
	Use:   "invoice:render <orderId>",
	Short: "Render the invoice PDF for an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := bootStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		disks, err := storage.New(ctx, storage.FromConfig())
		if err != nil {
			return err
		}

		order, err := store.Repos.Orders.FindByID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("order %s: %w", args[0], err)
		}

		var out io.Writer = os.Stdout
		if invoiceOutFlag != "" && invoiceOutFlag != "-" {
			f, err := os.Create(invoiceOutFlag)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		invoices := services.NewInvoiceService(disks.Default())
		if err := invoices.Generate(ctx, order, order.User.UserID, out); err != nil {
			return err
		}
		if out != os.Stdout {
			fmt.Fprintf(os.Stderr, "✅ Invoice written to %s\n", invoiceOutFlag)
		}
		return nil
	},
}

func init() {
	invoiceRenderCmd.Flags().StringVarP(&invoiceOutFlag, "out", "o", "", "Write a copy of the PDF to this file (default stdout)")
}
