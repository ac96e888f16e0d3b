package printing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/payment"
	"github.com/edgepos/backend/internal/domain/printing"
	"github.com/edgepos/backend/internal/domain/shared"
)

// QueueService builds agent-facing print payloads and queues them as
// durable outbox rows. Jobs survive agent downtime; the agent drains the
// queue on its next poll.
type QueueService struct {
	jobRepo      printing.PrintJobRepository
	templateRepo printing.ReceiptTemplateRepository
	billRepo     ordering.BillRepository
	billLogRepo  ordering.BillLogRepository
	paymentRepo  payment.PaymentRepository
	ticketRepo   kitchen.KitchenTicketRepository
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewQueueService creates a new QueueService
func NewQueueService(
	jobRepo printing.PrintJobRepository,
	templateRepo printing.ReceiptTemplateRepository,
	billRepo ordering.BillRepository,
	billLogRepo ordering.BillLogRepository,
	paymentRepo payment.PaymentRepository,
	ticketRepo kitchen.KitchenTicketRepository,
	logger *zap.Logger,
) *QueueService {
	return &QueueService{
		jobRepo:      jobRepo,
		templateRepo: templateRepo,
		billRepo:     billRepo,
		billLogRepo:  billLogRepo,
		paymentRepo:  paymentRepo,
		ticketRepo:   ticketRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *QueueService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// EnqueueReceipt renders a paid bill into a receipt payload and queues it
// for the bill's terminal. Reprints carry a reprint marker on the payload
// and leave an audit trail on the bill.
func (s *QueueService) EnqueueReceipt(ctx context.Context, billID, actorID uuid.UUID, reprint bool, copies int) (*JobResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if !bill.IsPaid() {
		return nil, shared.NewConflictError("BILL_NOT_PAID", "Receipts print for paid bills only",
			string(ordering.BillStatusPaid), string(bill.Status))
	}

	payments, err := s.paymentRepo.FindByBill(ctx, bill.ID)
	if err != nil {
		return nil, err
	}

	// missing template is fine, the agent falls back to a bare layout
	template, err := s.templateRepo.FindDefaultForBrand(ctx, bill.StoreID, bill.BrandID)
	if err != nil {
		template = nil
	}

	payload := buildReceiptPayload(bill, payments, template, reprint)
	body, err := payload.Encode()
	if err != nil {
		return nil, err
	}

	paperSize := printing.PaperSizeReceipt80MM
	if template != nil {
		paperSize = template.PaperSize
	}

	jobType := printing.JobTypeReceipt
	if reprint {
		jobType = printing.JobTypeReprint
	}

	terminalID := bill.TerminalID
	job, err := printing.NewPrintJob(bill.StoreID, jobType, &terminalID, bill.ID, bill.BillNumber, body, paperSize)
	if err != nil {
		return nil, err
	}
	if copies > 1 {
		if err := job.SetCopies(copies); err != nil {
			return nil, err
		}
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, err
	}

	if reprint {
		log := ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionReprintReceipt, &actorID, map[string]any{
			"job_token": job.Token.String(),
		})
		if err := s.billLogRepo.Append(ctx, log); err != nil {
			return nil, err
		}
	}

	s.logger.Info("receipt job queued",
		zap.String("bill_number", bill.BillNumber),
		zap.String("token", job.Token.String()),
		zap.Bool("reprint", reprint),
	)

	s.publishEvents(ctx, job)
	resp := ToJobResponse(job)
	return &resp, nil
}

// EnqueueKitchenTicket queues a station ticket as a print job. Kitchen jobs
// are not terminal-bound; any agent of the store may pick them up.
func (s *QueueService) EnqueueKitchenTicket(ctx context.Context, ticketID, actorID uuid.UUID, reprint bool) (*JobResponse, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	payload := printing.KitchenPayload{
		TicketID:    ticket.ID.String(),
		BillNumber:  ticket.BillNumber,
		Station:     ticket.Station,
		QueueNumber: ticket.QueueNumber,
		Lines:       make([]printing.KitchenLine, len(ticket.Items)),
		Reprint:     reprint,
	}
	for i, item := range ticket.Items {
		payload.Lines[i] = printing.KitchenLine{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
			Modifiers: item.Modifiers,
		}
	}
	body, err := payload.Encode()
	if err != nil {
		return nil, err
	}

	job, err := printing.NewPrintJob(ticket.StoreID, printing.JobTypeKitchenTicket, nil, ticket.ID, ticket.BillNumber, body, printing.PaperSizeReceipt80MM)
	if err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, err
	}

	if reprint {
		log := ordering.NewBillLog(ticket.StoreID, &ticket.BillID, ordering.ActionReprintKitchen, &actorID, map[string]any{
			"ticket_id": ticket.ID.String(),
			"station":   ticket.Station,
		})
		if err := s.billLogRepo.Append(ctx, log); err != nil {
			return nil, err
		}
	}

	s.publishEvents(ctx, job)
	resp := ToJobResponse(job)
	return &resp, nil
}

// ListByRef returns the jobs queued for a source document
func (s *QueueService) ListByRef(ctx context.Context, refID uuid.UUID) ([]JobResponse, error) {
	jobs, err := s.jobRepo.FindByRef(ctx, refID)
	if err != nil {
		return nil, err
	}
	responses := make([]JobResponse, len(jobs))
	for i := range jobs {
		responses[i] = ToJobResponse(&jobs[i])
	}
	return responses, nil
}

func buildReceiptPayload(bill *ordering.Bill, payments []payment.Payment, template *printing.ReceiptTemplate, reprint bool) printing.ReceiptPayload {
	payload := printing.ReceiptPayload{
		BillNumber:    bill.BillNumber,
		BillType:      string(bill.BillType),
		QueueNumber:   bill.QueueNumber,
		Subtotal:      bill.Subtotal,
		Discount:      bill.LineDiscountTotal.Add(bill.DiscountAmount),
		Tax:           bill.TaxAmount,
		ServiceCharge: bill.ServiceCharge,
		Total:         bill.Total,
		Change:        decimal.Zero,
		Reprint:       reprint,
	}

	paid := decimal.Zero
	payload.Payments = make([]printing.ReceiptPaymentLine, len(payments))
	for i, p := range payments {
		payload.Payments[i] = printing.ReceiptPaymentLine{Method: string(p.Method), Amount: p.Amount}
		paid = paid.Add(p.Amount)
	}
	if paid.GreaterThan(bill.Total) {
		payload.Change = paid.Sub(bill.Total)
	}

	for _, item := range bill.ActiveItems() {
		modifiers := make([]string, len(item.Modifiers))
		for j, m := range item.Modifiers {
			modifiers[j] = m.Name
		}
		payload.Lines = append(payload.Lines, printing.ReceiptLine{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.Add(item.ModifierPrice),
			Total:     item.Total,
			Modifiers: modifiers,
		})
	}

	if template != nil {
		payload.Header = template.HeaderLines
		payload.Footer = template.FooterLines
	}

	return payload
}

func (s *QueueService) publishEvents(ctx context.Context, job *printing.PrintJob) {
	if s.publisher == nil {
		return
	}
	for _, event := range job.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	job.ClearDomainEvents()
}
