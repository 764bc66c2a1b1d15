package worker

// receipt_worker.go
// Renders the PDF receipt for a committed sale and, when the customer left an
// email, enqueues delivery. Strictly post-commit and best-effort: a failure
// here never touches the sale, the ledger, or the document counter.

import (
	"context"
	"encoding/json"
	"fmt"

	"minimarket/internal/infra"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	SaleID        string `json:"sale_id"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type ReceiptWorker struct {
	sales        repository.SaleRepository
	dispatcher   *Dispatcher
	storagePath  string
	businessName string
}

func NewReceiptWorker(sales repository.SaleRepository, dispatcher *Dispatcher, storagePath, businessName string) *ReceiptWorker {
	return &ReceiptWorker{
		sales:        sales,
		dispatcher:   dispatcher,
		storagePath:  storagePath,
		businessName: businessName,
	}
}

// Process handles a single receipt job:
//  1. Fetch the sale (with items) from the DB
//  2. Render the PDF receipt
//  3. Optionally enqueue the email job
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}

	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("receipt_worker: invalid sale_id")
		return
	}

	sale, err := w.sales.FindByID(ctx, saleID)
	if err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("receipt_worker: sale not found")
		return
	}

	pdfPath, err := infra.GenerateReceiptPDF(sale, w.storagePath, w.businessName)
	if err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("receipt_worker: pdf generation failed")
		return
	}
	log.Info().Str("sale_id", payload.SaleID).Str("pdf", pdfPath).Msg("receipt_worker: receipt rendered")

	if payload.CustomerEmail == "" || w.dispatcher == nil {
		return
	}
	emailJob := EmailJobPayload{
		ToEmail: payload.CustomerEmail,
		Subject: fmt.Sprintf("Your receipt %s", sale.DocumentNumber),
		Body:    fmt.Sprintf("Thank you for your purchase. Receipt %s is attached.", sale.DocumentNumber),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("receipt_worker: failed to enqueue email")
	}
}
