package email

import (
	"context"

	"carmantra_backend/internal/events"
	"carmantra_backend/platform/config"
	"carmantra_backend/platform/logger"
)

// Subscribe hooks email delivery onto domain events: booking confirmations
// go to the customer, sync reports to the configured operations address.
// Delivery failures are logged, never propagated; email is best effort.
func Subscribe(bus events.Bus, sender Sender, cfg config.EmailConfig, log *logger.Logger) {
	bus.Subscribe(events.BookingCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.BookingCreated)
		if !ok {
			return nil
		}
		if e.Contact.Email == "" {
			return nil
		}

		name := e.Contact.FirstName
		if e.Contact.LastName != "" {
			name += " " + e.Contact.LastName
		}

		err := sender.SendBookingConfirmation(ctx, e.Contact.Email, BookingConfirmation{
			CustomerName:  name,
			Services:      e.ServiceNames,
			ScheduledDate: e.ScheduledDate,
		})
		if err != nil {
			log.Error("booking confirmation email failed", "bookingId", e.BookingID, "error", err)
		}
		return nil
	}))

	reportTo := cfg.GetSyncReportEmail()
	if reportTo == "" {
		return
	}

	bus.Subscribe(events.SyncCompleted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.SyncCompleted)
		if !ok {
			return nil
		}

		err := sender.SendSyncReport(ctx, reportTo, SyncReport{
			RunID:   e.RunID.String(),
			Synced:  e.Synced,
			Skipped: e.Skipped,
			Failed:  e.Failed,
			Error:   e.Error,
		})
		if err != nil {
			log.Error("sync report email failed", "runId", e.RunID, "error", err)
		}
		return nil
	}))
}
