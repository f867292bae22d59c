package email

const (
	subjectBookingConfirmationFmt = "Your service booking is confirmed: %s"
	subjectSyncReportFmt          = "Customer sync finished: %d synced, %d skipped"
	subjectSyncFailedFmt          = "Customer sync failed (run %s)"
)
