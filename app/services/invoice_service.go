package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/invoice"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

type InvoiceService struct {
	disk storage.Disk
}

func NewInvoiceService(disk storage.Disk) *InvoiceService {
	return &InvoiceService{disk: disk}
}

// Generate renders order's invoice once and streams it to w and to the
// storage disk at invoice.Path(order.ID). Only the purchaser may generate it;
// otherwise apperr.ErrForbidden is returned and neither sink is touched.
//
// A storage failure after rendering is reported wrapped in apperr.ErrStorage
// even though w may already hold the full document.
func (s *InvoiceService) Generate(ctx context.Context, order models.Order, requesterID string, w io.Writer) error {
	if !order.OwnedBy(requesterID) {
		return apperr.ErrForbidden
	}

	pr, pw := io.Pipe()
	stored := make(chan error, 1)
	go func() {
		err := s.disk.PutStream(ctx, invoice.Path(order.ID), pr)
		// Unblocks the renderer if the disk gave up before EOF.
		pr.CloseWithError(err)
		stored <- err
	}()

	renderErr := invoice.Render(io.MultiWriter(w, pw), order)
	pw.CloseWithError(renderErr)
	storeErr := <-stored

	// A render failure reaches the disk through the pipe; report it once.
	if renderErr != nil && (storeErr == nil || errors.Is(storeErr, renderErr)) {
		return renderErr
	}
	if storeErr != nil {
		return fmt.Errorf("invoice: store %s: %v: %w", order.ID, storeErr, apperr.ErrStorage)
	}
	metrics.InvoicesGenerated.Inc()
	return nil
}
