package email

import (
	"strings"
	"testing"
)

func TestRenderBookingConfirmationTemplate(t *testing.T) {
	html, err := renderEmailTemplate("booking_confirmation.html", bookingConfirmationEmailData{
		baseEmailData: baseEmailData{Title: "Booking Confirmed", Heading: "Booking Confirmed"},
		CustomerName:  "Ravi Kumar",
		Services:      []string{"Ceramic Coating", "Interior Detailing"},
		ScheduledDate: "02 Sep 2026",
		NumberPlate:   "MH 12 DE 1433",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{"Ravi Kumar", "Ceramic Coating", "Interior Detailing", "02 Sep 2026", "MH 12 DE 1433"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered html missing %q", want)
		}
	}
}

func TestRenderSyncReportTemplate(t *testing.T) {
	completed, err := renderEmailTemplate("sync_report.html", syncReportEmailData{
		baseEmailData: baseEmailData{Title: "Customer Sync Completed", Heading: "Customer Sync Completed"},
		RunID:         "0f2c1f6a-9f31-4a7f-8f5c-1f4b8b7e2a11",
		Synced:        42,
		Skipped:       3,
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(completed, "42") || !strings.Contains(completed, "3") {
		t.Error("rendered html missing counters")
	}

	failed, err := renderEmailTemplate("sync_report.html", syncReportEmailData{
		baseEmailData: baseEmailData{Title: "Customer Sync Failed", Heading: "Customer Sync Failed"},
		RunID:         "0f2c1f6a-9f31-4a7f-8f5c-1f4b8b7e2a11",
		Failed:        true,
		Error:         "database connection lost",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(failed, "database connection lost") {
		t.Error("rendered html missing failure reason")
	}
}
