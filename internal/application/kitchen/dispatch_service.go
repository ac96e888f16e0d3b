package kitchen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

const (
	// defaultClaimLimit bounds one agent poll.
	defaultClaimLimit = 10
	// actorPrintAgent tags ticket log rows written on behalf of the agent.
	actorPrintAgent = "print-agent"
)

// DispatchService hands kitchen tickets to the print agent and records the
// outcomes. Claims run under SKIP LOCKED row locks, so any number of agents
// can poll concurrently without double-printing a ticket.
type DispatchService struct {
	ticketRepo  kitchen.KitchenTicketRepository
	printerRepo kitchen.StationPrinterRepository
	logRepo     kitchen.TicketLogRepository
	alertRepo   session.AlertRepository
	txManager   shared.TransactionManager
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	ticketRepo kitchen.KitchenTicketRepository,
	printerRepo kitchen.StationPrinterRepository,
	logRepo kitchen.TicketLogRepository,
	alertRepo session.AlertRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		ticketRepo:  ticketRepo,
		printerRepo: printerRepo,
		logRepo:     logRepo,
		alertRepo:   alertRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *DispatchService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Claim assigns up to limit new tickets to the polling agent. Each ticket
// gets the station's lowest-priority active printer; a station with no
// active printer leaves the ticket new and raises an operator alert, so
// the order is never dropped while the gap lasts.
func (s *DispatchService) Claim(ctx context.Context, limit int) ([]TicketResponse, error) {
	if limit < 1 || limit > defaultClaimLimit {
		limit = defaultClaimLimit
	}

	var responses []TicketResponse
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		tickets, err := s.ticketRepo.FindNewForClaim(ctx, limit)
		if err != nil {
			return err
		}

		claimed := make([]*kitchen.KitchenTicket, 0, len(tickets))
		var logs []*kitchen.KitchenTicketLog
		responses = make([]TicketResponse, 0, len(tickets))

		for i := range tickets {
			ticket := &tickets[i]
			printers, err := s.printerRepo.FindByStation(ctx, ticket.StoreID, ticket.BrandID, ticket.Station)
			if err != nil {
				return err
			}
			printer := kitchen.SelectPrinter(printers)
			if printer == nil {
				if err := s.reportUnconfigured(ctx, ticket, &logs); err != nil {
					return err
				}
				claimed = append(claimed, ticket)
				continue
			}

			if err := ticket.Claim(printer.ID, printer.Name); err != nil {
				return err
			}
			logs = append(logs, kitchen.NewKitchenTicketLog(ticket.ID, kitchen.TicketStatusNew, kitchen.TicketStatusPrinting,
				actorPrintAgent, printer.Name, "", nil))
			claimed = append(claimed, ticket)
			responses = append(responses, ToTicketResponse(ticket, printer.Address))
		}

		if len(claimed) == 0 {
			return nil
		}
		if err := s.ticketRepo.SaveAll(ctx, claimed); err != nil {
			return err
		}
		return s.logRepo.Append(ctx, logs...)
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// reportUnconfigured leaves a ticket for an unconfigured station in the new
// queue and raises a station_unconfigured alert. The alert and log row are
// written once per gap; repeat polls see the recorded error and stay quiet.
func (s *DispatchService) reportUnconfigured(ctx context.Context, ticket *kitchen.KitchenTicket, logs *[]*kitchen.KitchenTicketLog) error {
	firstEncounter := ticket.ErrorMessage == ""
	if err := ticket.MarkPrinterGap("no active printer for station"); err != nil {
		return err
	}
	if !firstEncounter {
		return nil
	}

	*logs = append(*logs, kitchen.NewKitchenTicketLog(ticket.ID, kitchen.TicketStatusNew, kitchen.TicketStatusNew,
		actorPrintAgent, "", "no active printer for station", nil))

	message := fmt.Sprintf("Station %q has no active printer; ticket %s for bill %s cannot print",
		ticket.Station, ticket.ID, ticket.BillNumber)
	alert := session.NewSessionAlert(ticket.StoreID, nil, nil, session.AlertStationUnconfigured, session.AlertSeverityCritical, message)
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return err
	}

	s.logger.Error("kitchen station has no active printer",
		zap.String("station", ticket.Station),
		zap.String("ticket_id", ticket.ID.String()),
	)
	return nil
}

// Complete records a successful print reported by the agent
func (s *DispatchService) Complete(ctx context.Context, ticketID uuid.UUID, req CompleteTicketRequest) (*TicketResponse, error) {
	var ticket *kitchen.KitchenTicket
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.ticketRepo.FindByID(ctx, ticketID)
		if err != nil {
			return err
		}
		if err := ticket.MarkPrinted(); err != nil {
			return err
		}
		if err := s.ticketRepo.Save(ctx, ticket); err != nil {
			return err
		}
		return s.logRepo.Append(ctx, kitchen.NewKitchenTicketLog(ticket.ID, kitchen.TicketStatusPrinting, kitchen.TicketStatusPrinted,
			actorPrintAgent, ticket.PrinterName, "", req.DurationMs))
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, ticket)
	resp := ToTicketResponse(ticket, "")
	return &resp, nil
}

// Fail records a failed print reported by the agent. The ticket stays
// failed until an operator retries it or gives up.
func (s *DispatchService) Fail(ctx context.Context, ticketID uuid.UUID, req FailTicketRequest) (*TicketResponse, error) {
	var ticket *kitchen.KitchenTicket
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.ticketRepo.FindByID(ctx, ticketID)
		if err != nil {
			return err
		}
		if err := ticket.MarkFailed(req.ErrorMessage); err != nil {
			return err
		}
		if err := s.ticketRepo.Save(ctx, ticket); err != nil {
			return err
		}
		return s.logRepo.Append(ctx, kitchen.NewKitchenTicketLog(ticket.ID, kitchen.TicketStatusPrinting, kitchen.TicketStatusFailed,
			actorPrintAgent, ticket.PrinterName, req.ErrorMessage, req.DurationMs))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("kitchen ticket print failed",
		zap.String("ticket_id", ticket.ID.String()),
		zap.Int("attempts", ticket.Attempts),
		zap.String("error", req.ErrorMessage),
	)

	s.publishEvents(ctx, ticket)
	resp := ToTicketResponse(ticket, "")
	return &resp, nil
}

// Retry puts a failed ticket back in the claim queue. Retries are operator
// actions, bounded by the ticket's attempt budget.
func (s *DispatchService) Retry(ctx context.Context, ticketID, actorID uuid.UUID) (*TicketResponse, error) {
	var ticket *kitchen.KitchenTicket
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.ticketRepo.FindByID(ctx, ticketID)
		if err != nil {
			return err
		}
		if err := ticket.Retry(); err != nil {
			return err
		}
		if err := s.ticketRepo.Save(ctx, ticket); err != nil {
			return err
		}
		return s.logRepo.Append(ctx, kitchen.NewKitchenTicketLog(ticket.ID, kitchen.TicketStatusFailed, kitchen.TicketStatusNew,
			actorID.String(), "", "", nil))
	})
	if err != nil {
		return nil, err
	}

	resp := ToTicketResponse(ticket, "")
	return &resp, nil
}

// ListByBill returns the tickets created for a bill
func (s *DispatchService) ListByBill(ctx context.Context, billID uuid.UUID) ([]TicketResponse, error) {
	tickets, err := s.ticketRepo.FindByBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	responses := make([]TicketResponse, len(tickets))
	for i := range tickets {
		responses[i] = ToTicketResponse(&tickets[i], "")
	}
	return responses, nil
}

// SweepStuck raises a ticket_stuck alert for every ticket that entered
// printing before the cutoff without an outcome. Tickets are reported, not
// auto-cancelled; paper may already be in the kitchen.
func (s *DispatchService) SweepStuck(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	stuck, err := s.ticketRepo.FindStuckPrinting(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	for i := range stuck {
		ticket := &stuck[i]
		message := fmt.Sprintf("Ticket %s for bill %s has been printing since %s",
			ticket.ID, ticket.BillNumber, ticket.ClaimedAt.Format(time.RFC3339))
		alert := session.NewSessionAlert(ticket.StoreID, nil, nil, session.AlertTicketStuck, session.AlertSeverityWarning, message)
		if err := s.alertRepo.Save(ctx, alert); err != nil {
			return 0, err
		}
	}

	if len(stuck) > 0 {
		s.logger.Warn("stuck kitchen tickets detected", zap.Int("count", len(stuck)))
	}
	return len(stuck), nil
}

func (s *DispatchService) publishEvents(ctx context.Context, ticket *kitchen.KitchenTicket) {
	if s.publisher == nil {
		return
	}
	for _, event := range ticket.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	ticket.ClearDomainEvents()
}
