package service

import (
	"context"
	"testing"
	"time"

	"carmantra_backend/internal/customers/ports"
	"carmantra_backend/internal/customers/repository"
	"carmantra_backend/internal/customers/resolver"
	"carmantra_backend/platform/phone"

	"github.com/google/uuid"
)

type fakeVehicleLister struct {
	vehicles []repository.Vehicle
}

func (f *fakeVehicleLister) ListVehicles(_ context.Context, _ uuid.UUID) ([]repository.Vehicle, error) {
	return f.vehicles, nil
}

type fakeServiceReader struct {
	byMobile []ports.ServiceRecord
	byEmail  []ports.ServiceRecord
}

func (f *fakeServiceReader) ListByMobile(_ context.Context, _ string) ([]ports.ServiceRecord, error) {
	return f.byMobile, nil
}

func (f *fakeServiceReader) ListByEmail(_ context.Context, _ string) ([]ports.ServiceRecord, error) {
	return f.byEmail, nil
}

type fakeLeadReader struct {
	byEmail []ports.LeadRecord
	byPhone []ports.LeadRecord
}

func (f *fakeLeadReader) ListByEmail(_ context.Context, _ string) ([]ports.LeadRecord, error) {
	return f.byEmail, nil
}

func (f *fakeLeadReader) ListByPhone(_ context.Context, _ string) ([]ports.LeadRecord, error) {
	return f.byPhone, nil
}

type fakeInvoiceReader struct {
	byEmail []ports.InvoiceRecord
}

func (f *fakeInvoiceReader) ListByCustomerEmail(_ context.Context, _ string) ([]ports.InvoiceRecord, error) {
	return f.byEmail, nil
}

func newTestAggregator(vehicles *fakeVehicleLister, services *fakeServiceReader, leads *fakeLeadReader, invoices *fakeInvoiceReader) *Aggregator {
	if vehicles == nil {
		vehicles = &fakeVehicleLister{}
	}
	if services == nil {
		services = &fakeServiceReader{}
	}
	if leads == nil {
		leads = &fakeLeadReader{}
	}
	if invoices == nil {
		invoices = &fakeInvoiceReader{}
	}
	return NewAggregator(vehicles, services, leads, invoices)
}

func testCustomer() repository.Customer {
	return repository.Customer{
		ID:     uuid.New(),
		Email:  "ravi@example.com",
		Mobile: "+919876543210",
	}
}

func day(d int) time.Time {
	return time.Date(2026, time.January, d, 10, 0, 0, 0, time.UTC)
}

func TestServiceHistoryDeduplicatesAcrossLookups(t *testing.T) {
	shared := ports.ServiceRecord{ID: uuid.New(), ScheduledDate: day(2), Services: []string{"Wash"}}
	mobileOnly := ports.ServiceRecord{ID: uuid.New(), ScheduledDate: day(5), Services: []string{"Detailing"}}
	emailOnly := ports.ServiceRecord{ID: uuid.New(), ScheduledDate: day(3), Services: []string{"Polish"}}

	agg := newTestAggregator(nil, &fakeServiceReader{
		byMobile: []ports.ServiceRecord{shared, mobileOnly},
		byEmail:  []ports.ServiceRecord{shared, emailOnly},
	}, nil, nil)

	got, err := agg.ServiceHistory(context.Background(), testCustomer())
	if err != nil {
		t.Fatalf("ServiceHistory: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries after dedup, got %d", len(got))
	}
	if got[0].ID != mobileOnly.ID || got[1].ID != emailOnly.ID || got[2].ID != shared.ID {
		t.Fatalf("expected newest-first order, got %v %v %v", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestServiceHistorySortsUndatedRowsLast(t *testing.T) {
	dated := ports.ServiceRecord{ID: uuid.New(), ScheduledDate: day(1)}
	undated := ports.ServiceRecord{ID: uuid.New()}

	agg := newTestAggregator(nil, &fakeServiceReader{
		byMobile: []ports.ServiceRecord{undated, dated},
	}, nil, nil)

	got, err := agg.ServiceHistory(context.Background(), testCustomer())
	if err != nil {
		t.Fatalf("ServiceHistory: %v", err)
	}
	if got[0].ID != dated.ID || got[1].ID != undated.ID {
		t.Fatalf("expected zero-date row last")
	}
}

func TestInvoicesEmptyWithoutEmail(t *testing.T) {
	agg := newTestAggregator(nil, nil, nil, &fakeInvoiceReader{
		byEmail: []ports.InvoiceRecord{{ID: uuid.New()}},
	})

	customer := testCustomer()
	customer.Email = ""

	got, err := agg.Invoices(context.Background(), customer)
	if err != nil {
		t.Fatalf("Invoices: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no invoices without an email, got %d", len(got))
	}
}

func TestLeadsDeduplicatesAcrossLookups(t *testing.T) {
	shared := ports.LeadRecord{ID: uuid.New(), Name: "Ravi", CreatedAt: day(1)}
	phoneOnly := ports.LeadRecord{ID: uuid.New(), Name: "Ravi K", CreatedAt: day(2)}

	agg := newTestAggregator(nil, nil, &fakeLeadReader{
		byEmail: []ports.LeadRecord{shared},
		byPhone: []ports.LeadRecord{shared, phoneOnly},
	}, nil)

	got, err := agg.Leads(context.Background(), testCustomer())
	if err != nil {
		t.Fatalf("Leads: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 leads after dedup, got %d", len(got))
	}
}

func TestVehiclesMergesByNormalizedPlate(t *testing.T) {
	booking := ports.ServiceRecord{
		ID:          uuid.New(),
		NumberPlate: "abc123",
		ModelName:   "Swift",
		Services:    []string{"Wash"},
	}

	agg := newTestAggregator(
		&fakeVehicleLister{vehicles: []repository.Vehicle{{
			ID:    uuid.New(),
			Plate: "ABC 123",
			Make:  "Maruti",
			Model: "Swift Dzire",
		}}},
		&fakeServiceReader{byMobile: []ports.ServiceRecord{booking}},
		nil, nil,
	)

	got, err := agg.Vehicles(context.Background(), testCustomer())
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected plates to merge into 1 vehicle, got %d", len(got))
	}
	if got[0].Plate != "ABC 123" || got[0].Make != "Maruti" || got[0].Model != "Swift Dzire" {
		t.Fatalf("profile record must keep base fields, got %+v", got[0])
	}
	if got[0].Source != "profile" {
		t.Fatalf("expected source profile, got %q", got[0].Source)
	}
	if len(got[0].Services) != 1 || got[0].Services[0].ID != booking.ID {
		t.Fatalf("expected booking nested under merged vehicle, got %+v", got[0].Services)
	}
}

func TestVehiclesAddsStubsFromBookingsAndInvoices(t *testing.T) {
	booking := ports.ServiceRecord{ID: uuid.New(), NumberPlate: "MH12DE1433", VehicleBrand: "Honda", ModelName: "City"}
	invoiceNew := ports.InvoiceRecord{ID: uuid.New(), VehiclePlate: "KA01AB9999", VehicleMake: "Hyundai"}
	invoiceDup := ports.InvoiceRecord{ID: uuid.New(), VehiclePlate: "mh 12 de 1433", VehicleMake: "WrongMake"}

	agg := newTestAggregator(
		&fakeVehicleLister{},
		&fakeServiceReader{byEmail: []ports.ServiceRecord{booking}},
		nil,
		&fakeInvoiceReader{byEmail: []ports.InvoiceRecord{invoiceDup, invoiceNew}},
	)

	got, err := agg.Vehicles(context.Background(), testCustomer())
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(got))
	}
	if got[0].Plate != "MH12DE1433" || got[0].Source != "booking" || got[0].Make != "Honda" {
		t.Fatalf("booking stub wrong: %+v", got[0])
	}
	if got[1].Plate != "KA01AB9999" || got[1].Source != "invoice" {
		t.Fatalf("invoice stub wrong: %+v", got[1])
	}
}

func TestVehiclesSkipsEmptyPlates(t *testing.T) {
	agg := newTestAggregator(
		&fakeVehicleLister{vehicles: []repository.Vehicle{{ID: uuid.New(), Plate: "   "}}},
		&fakeServiceReader{byMobile: []ports.ServiceRecord{{ID: uuid.New()}}},
		nil, nil,
	)

	got, err := agg.Vehicles(context.Background(), testCustomer())
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected plateless rows skipped, got %d", len(got))
	}
}

func TestActivityHistoryMergesSortedDescending(t *testing.T) {
	agg := newTestAggregator(
		nil,
		&fakeServiceReader{byMobile: []ports.ServiceRecord{{ID: uuid.New(), ScheduledDate: day(1), Services: []string{"Wash"}}}},
		&fakeLeadReader{byEmail: []ports.LeadRecord{{ID: uuid.New(), Name: "Ravi", CreatedAt: day(2)}}},
		&fakeInvoiceReader{byEmail: []ports.InvoiceRecord{{ID: uuid.New(), InvoiceNumber: "INV-7", InvoiceDate: day(3)}}},
	)

	got, err := agg.ActivityHistory(context.Background(), testCustomer())
	if err != nil {
		t.Fatalf("ActivityHistory: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	wantTypes := []string{"invoice", "lead", "service"}
	for i, want := range wantTypes {
		if got[i].Type != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].Type)
		}
	}
}

func TestActivityHistoryTiesKeepSourceOrder(t *testing.T) {
	same := day(4)
	agg := newTestAggregator(
		nil,
		&fakeServiceReader{byMobile: []ports.ServiceRecord{{ID: uuid.New(), ScheduledDate: same}}},
		&fakeLeadReader{byEmail: []ports.LeadRecord{{ID: uuid.New(), CreatedAt: same}}},
		&fakeInvoiceReader{byEmail: []ports.InvoiceRecord{{ID: uuid.New(), InvoiceDate: same}}},
	)

	got, err := agg.ActivityHistory(context.Background(), testCustomer())
	if err != nil {
		t.Fatalf("ActivityHistory: %v", err)
	}
	wantTypes := []string{"service", "lead", "invoice"}
	for i, want := range wantTypes {
		if got[i].Type != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].Type)
		}
	}
}

// matchingServiceReader filters rows on the queried contact fields, the way
// the booking repository's equality lookups do.
type matchingServiceReader struct {
	rows []ports.ServiceRecord
}

func (f *matchingServiceReader) ListByMobile(_ context.Context, mobile string) ([]ports.ServiceRecord, error) {
	matched := make([]ports.ServiceRecord, 0)
	for _, row := range f.rows {
		if row.MobileNo == mobile {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func (f *matchingServiceReader) ListByEmail(_ context.Context, email string) ([]ports.ServiceRecord, error) {
	matched := make([]ports.ServiceRecord, 0)
	for _, row := range f.rows {
		if row.Email != "" && row.Email == email {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

// identityStore is a minimal in-memory resolver.Store.
type identityStore struct {
	customers []repository.Customer
}

func (s *identityStore) FindByEmail(_ context.Context, email string) (repository.Customer, error) {
	for _, c := range s.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return repository.Customer{}, repository.ErrNotFound
}

func (s *identityStore) FindByMobile(_ context.Context, mobile string) (repository.Customer, error) {
	for _, c := range s.customers {
		if c.Mobile == mobile {
			return c, nil
		}
	}
	return repository.Customer{}, repository.ErrNotFound
}

func (s *identityStore) Create(_ context.Context, params repository.CreateCustomerParams) (repository.Customer, error) {
	customer := repository.Customer{
		ID:        uuid.New(),
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		Mobile:    params.Mobile,
		Status:    params.Status,
	}
	s.customers = append(s.customers, customer)
	return customer, nil
}

func (s *identityStore) UpdateContactFields(_ context.Context, _ uuid.UUID, _ map[string]string) error {
	return nil
}

func (s *identityStore) WithIdentityLock(ctx context.Context, _ string, fn func(store repository.IdentityStore) error) error {
	return fn(s)
}

// A booking taken over the phone arrives with a national-format mobile and
// no email. Ingestion stores the mobile in E.164 and the resolver creates
// the customer from the same fragment; the service history lookup must then
// find the booking through the mobile equality match.
func TestServiceHistoryFindsBookingResolvedFromNationalMobile(t *testing.T) {
	booking := ports.ServiceRecord{
		ID:            uuid.New(),
		CustomerName:  "Ravi Kumar",
		MobileNo:      phone.NormalizeE164("98765 43210", "IN"),
		Services:      []string{"Ceramic Coating"},
		ScheduledDate: day(1),
	}
	reader := &matchingServiceReader{rows: []ports.ServiceRecord{booking}}

	res := resolver.New(&identityStore{}, resolver.Options{PhoneRegion: "IN"})
	customer, created, err := res.Resolve(context.Background(), resolver.Fragment{
		FirstName: "Ravi",
		LastName:  "Kumar",
		Mobile:    "98765 43210",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !created || customer == nil {
		t.Fatal("expected a new customer")
	}
	if customer.Mobile != "+919876543210" {
		t.Fatalf("customer mobile = %q, want +919876543210", customer.Mobile)
	}

	agg := NewAggregator(&fakeVehicleLister{}, reader, &fakeLeadReader{}, &fakeInvoiceReader{})
	history, err := agg.ServiceHistory(context.Background(), *customer)
	if err != nil {
		t.Fatalf("ServiceHistory failed: %v", err)
	}
	if len(history) != 1 || history[0].ID != booking.ID {
		t.Fatalf("expected the originating booking in the history, got %+v", history)
	}
}
