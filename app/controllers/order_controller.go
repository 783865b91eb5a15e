package controllers

import (
	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/invoice"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type OrderController struct {
	orders   Orders
	invoices Invoices
}

func NewOrderController(orders Orders, invoices Invoices) *OrderController {
	return &OrderController{orders: orders, invoices: invoices}
}

// Index handles GET /orders.
func (h *OrderController) Index(c *ctx.Context) {
	orders, err := h.orders.ListOrders(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

// Invoice handles GET /orders/{orderId} by streaming the PDF inline.
func (h *OrderController) Invoice(c *ctx.Context) {
	order, err := h.orders.FindOrder(c.Context(), c.Param("orderId"))
	if err != nil {
		fail(c, err)
		return
	}
	if !order.OwnedBy(c.UserID()) {
		fail(c, apperr.ErrForbidden)
		return
	}

	out := &inlineWriter{c: c, filename: invoice.Filename(order.ID)}
	if err := h.invoices.Generate(c.Context(), order, c.UserID(), out); err != nil {
		if out.n == 0 {
			fail(c, err)
			return
		}
		// The client already has the document; only the stored copy is missing.
		c.Logger().Error("invoice not stored", "order_id", order.ID, "error", err)
	}
}

// inlineWriter sets the PDF headers on the first write so a failure before
// any output can still be answered with a JSON error.
type inlineWriter struct {
	c        *ctx.Context
	filename string
	n        int64
}

func (w *inlineWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		w.c.Inline("application/pdf", w.filename)
	}
	n, err := w.c.W.Write(p)
	w.n += int64(n)
	return n, err
}
