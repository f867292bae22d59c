// Package email sends transactional mail over SMTP: booking confirmations
// to customers and sync reports to operations.
package email

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers the application's transactional emails.
type Sender interface {
	SendBookingConfirmation(ctx context.Context, toEmail string, data BookingConfirmation) error
	SendSyncReport(ctx context.Context, toEmail string, data SyncReport) error
}

// BookingConfirmation carries the booking details rendered into the
// confirmation email.
type BookingConfirmation struct {
	CustomerName  string
	Services      []string
	ScheduledDate *time.Time
	NumberPlate   string
}

// SyncReport carries the outcome of a bulk sync run.
type SyncReport struct {
	RunID   string
	Synced  int
	Skipped int
	Failed  bool
	Error   string
}

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) SendBookingConfirmation(ctx context.Context, toEmail string, data BookingConfirmation) error {
	scheduled := ""
	if data.ScheduledDate != nil {
		scheduled = data.ScheduledDate.Format("Mon, 02 Jan 2006 15:04")
	}

	content, err := renderEmailTemplate("booking_confirmation.html", bookingConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Booking confirmed",
			Heading: "Booking confirmed",
		},
		CustomerName:  data.CustomerName,
		Services:      data.Services,
		ScheduledDate: scheduled,
		NumberPlate:   data.NumberPlate,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf(subjectBookingConfirmationFmt, strings.Join(data.Services, ", "))
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendSyncReport(ctx context.Context, toEmail string, data SyncReport) error {
	heading := "Customer sync completed"
	subject := fmt.Sprintf(subjectSyncReportFmt, data.Synced, data.Skipped)
	if data.Failed {
		heading = "Customer sync failed"
		subject = fmt.Sprintf(subjectSyncFailedFmt, data.RunID)
	}

	content, err := renderEmailTemplate("sync_report.html", syncReportEmailData{
		baseEmailData: baseEmailData{
			Title:   heading,
			Heading: heading,
		},
		RunID:   data.RunID,
		Synced:  data.Synced,
		Skipped: data.Skipped,
		Failed:  data.Failed,
		Error:   data.Error,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}
