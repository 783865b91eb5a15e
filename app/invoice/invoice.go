// Package invoice renders an order as a PDF document.
package invoice

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/money"
)

// Filename is the download name and storage basename for an order's invoice.
func Filename(orderID string) string {
	return "invoice-" + orderID + ".pdf"
}

// Path is where the invoice is kept on the storage disk.
func Path(orderID string) string {
	return "data/invoice/" + Filename(orderID)
}

const rule = "-----------------------------------------------"

// Render writes the invoice PDF for order to w. Totals come from the order's
// snapshot prices, never from the live catalogue. Long orders flow onto
// further pages.
func Render(w io.Writer, order models.Order) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+order.ID, true)
	pdf.SetCreator("storefront", true)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(order.CreatedAt)
	pdf.SetModificationDate(order.CreatedAt)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "U", 25)
	pdf.Cell(0, 14, "Invoice")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Order: "+order.ID)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date: "+order.CreatedAt.UTC().Format(time.RFC1123))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Customer: "+order.User.Name))
	pdf.Ln(8)
	pdf.Cell(0, 6, rule)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 14)
	for _, line := range order.Products {
		row := fmt.Sprintf("%s : $%s * %d = $%s",
			line.Product.Title,
			money.Format(money.MustParse(line.Product.Price)),
			line.Quantity,
			money.Format(line.Total()),
		)
		pdf.MultiCell(0, 8, tr(row), "", "L", false)
	}

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, rule)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 10, "Total Price: $"+money.Format(order.Total()))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("invoice: render %s: %w", order.ID, err)
	}
	return nil
}
