package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"carmantra_backend/internal/customers/ports"
	"carmantra_backend/internal/customers/repository"
	"carmantra_backend/internal/customers/transport"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// VehicleLister reads a customer's own vehicle records.
type VehicleLister interface {
	ListVehicles(ctx context.Context, customerID uuid.UUID) ([]repository.Vehicle, error)
}

// Aggregator builds unified per-customer views from the customer's own
// records and the denormalized booking, lead and invoice rows that match
// the customer's contact fields.
type Aggregator struct {
	vehicles VehicleLister
	services ports.ServiceReader
	leads    ports.LeadReader
	invoices ports.InvoiceReader
}

func NewAggregator(vehicles VehicleLister, services ports.ServiceReader, leads ports.LeadReader, invoices ports.InvoiceReader) *Aggregator {
	return &Aggregator{
		vehicles: vehicles,
		services: services,
		leads:    leads,
		invoices: invoices,
	}
}

// ServiceHistory returns the customer's bookings, matched by mobile and by
// email, deduplicated by row id and sorted by scheduled date descending.
// Rows without a scheduled date sort last.
func (a *Aggregator) ServiceHistory(ctx context.Context, customer repository.Customer) ([]transport.ServiceEntry, error) {
	records, err := a.serviceRecords(ctx, customer)
	if err != nil {
		return nil, err
	}

	entries := make([]transport.ServiceEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, toServiceEntry(record))
	}
	return entries, nil
}

func (a *Aggregator) serviceRecords(ctx context.Context, customer repository.Customer) ([]ports.ServiceRecord, error) {
	records := make([]ports.ServiceRecord, 0)
	seen := make(map[uuid.UUID]bool)

	if customer.Mobile != "" {
		byMobile, err := a.services.ListByMobile(ctx, customer.Mobile)
		if err != nil {
			return nil, err
		}
		for _, record := range byMobile {
			if !seen[record.ID] {
				seen[record.ID] = true
				records = append(records, record)
			}
		}
	}

	if customer.Email != "" {
		byEmail, err := a.services.ListByEmail(ctx, customer.Email)
		if err != nil {
			return nil, err
		}
		for _, record := range byEmail {
			if !seen[record.ID] {
				seen[record.ID] = true
				records = append(records, record)
			}
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ScheduledDate.After(records[j].ScheduledDate)
	})

	return records, nil
}

// Invoices returns the customer's invoices matched by email. Customers
// without an email get an empty list; invoices carry no mobile match key.
func (a *Aggregator) Invoices(ctx context.Context, customer repository.Customer) ([]transport.InvoiceView, error) {
	records, err := a.invoiceRecords(ctx, customer)
	if err != nil {
		return nil, err
	}

	views := make([]transport.InvoiceView, 0, len(records))
	for _, record := range records {
		views = append(views, toInvoiceView(record))
	}
	return views, nil
}

func (a *Aggregator) invoiceRecords(ctx context.Context, customer repository.Customer) ([]ports.InvoiceRecord, error) {
	if customer.Email == "" {
		return []ports.InvoiceRecord{}, nil
	}
	return a.invoices.ListByCustomerEmail(ctx, customer.Email)
}

// Leads returns the customer's CRM leads, matched by email and by phone,
// deduplicated by row id.
func (a *Aggregator) Leads(ctx context.Context, customer repository.Customer) ([]transport.LeadView, error) {
	records, err := a.leadRecords(ctx, customer)
	if err != nil {
		return nil, err
	}

	views := make([]transport.LeadView, 0, len(records))
	for _, record := range records {
		views = append(views, toLeadView(record))
	}
	return views, nil
}

func (a *Aggregator) leadRecords(ctx context.Context, customer repository.Customer) ([]ports.LeadRecord, error) {
	records := make([]ports.LeadRecord, 0)
	seen := make(map[uuid.UUID]bool)

	if customer.Email != "" {
		byEmail, err := a.leads.ListByEmail(ctx, customer.Email)
		if err != nil {
			return nil, err
		}
		for _, record := range byEmail {
			if !seen[record.ID] {
				seen[record.ID] = true
				records = append(records, record)
			}
		}
	}

	if customer.Mobile != "" {
		byPhone, err := a.leads.ListByPhone(ctx, customer.Mobile)
		if err != nil {
			return nil, err
		}
		for _, record := range byPhone {
			if !seen[record.ID] {
				seen[record.ID] = true
				records = append(records, record)
			}
		}
	}

	return records, nil
}

// Vehicles merges the customer's vehicle list from three sources, keyed by
// normalized plate: (a) the customer's own vehicle records, which own the
// base fields; (b) stubs derived from bookings, each booking nesting under
// its plate as a service entry; (c) stubs derived from invoice vehicle
// details for plates not seen before. The first source to produce a plate
// wins its base fields; later phases never overwrite them.
func (a *Aggregator) Vehicles(ctx context.Context, customer repository.Customer) ([]transport.VehicleView, error) {
	owned, err := a.vehicles.ListVehicles(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	merged := make([]transport.VehicleView, 0, len(owned))
	index := make(map[string]int)

	for _, vehicle := range owned {
		key := normalizePlate(vehicle.Plate)
		if key == "" {
			continue
		}
		if _, exists := index[key]; exists {
			continue
		}
		index[key] = len(merged)
		merged = append(merged, transport.VehicleView{
			Plate:    vehicle.Plate,
			Make:     vehicle.Make,
			Model:    vehicle.Model,
			Year:     vehicle.Year,
			VIN:      vehicle.VIN,
			Color:    vehicle.Color,
			FuelType: vehicle.FuelType,
			Source:   "profile",
			Services: []transport.ServiceEntry{},
		})
	}

	records, err := a.serviceRecords(ctx, customer)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		key := normalizePlate(record.NumberPlate)
		if key == "" {
			continue
		}
		pos, exists := index[key]
		if !exists {
			pos = len(merged)
			index[key] = pos
			merged = append(merged, transport.VehicleView{
				Plate:    record.NumberPlate,
				Make:     record.VehicleBrand,
				Model:    record.ModelName,
				FuelType: record.FuelType,
				Source:   "booking",
				Services: []transport.ServiceEntry{},
			})
		}
		merged[pos].Services = append(merged[pos].Services, toServiceEntry(record))
	}

	invoiceRecords, err := a.invoiceRecords(ctx, customer)
	if err != nil {
		return nil, err
	}
	for _, record := range invoiceRecords {
		key := normalizePlate(record.VehiclePlate)
		if key == "" {
			continue
		}
		if _, exists := index[key]; exists {
			continue
		}
		index[key] = len(merged)
		merged = append(merged, transport.VehicleView{
			Plate:    record.VehiclePlate,
			Make:     record.VehicleMake,
			Model:    record.VehicleModel,
			Source:   "invoice",
			Services: []transport.ServiceEntry{},
		})
	}

	return merged, nil
}

// ActivityHistory returns the customer's unified timeline: services, leads
// and invoices fetched in parallel, mapped to tagged items and sorted by
// date descending. Ties keep source order (services, leads, invoices).
func (a *Aggregator) ActivityHistory(ctx context.Context, customer repository.Customer) ([]transport.ActivityItem, error) {
	var (
		services []ports.ServiceRecord
		leads    []ports.LeadRecord
		invoices []ports.InvoiceRecord
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		services, err = a.serviceRecords(groupCtx, customer)
		return err
	})
	group.Go(func() error {
		var err error
		leads, err = a.leadRecords(groupCtx, customer)
		return err
	})
	group.Go(func() error {
		var err error
		invoices, err = a.invoiceRecords(groupCtx, customer)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	items := make([]transport.ActivityItem, 0, len(services)+len(leads)+len(invoices))
	for _, record := range services {
		items = append(items, transport.ActivityItem{
			Type:        transport.ActivityTypeService,
			Title:       serviceTitle(record),
			Description: serviceDescription(record),
			Date:        record.ScheduledDate,
			Data:        toServiceEntry(record),
		})
	}
	for _, record := range leads {
		items = append(items, transport.ActivityItem{
			Type:        transport.ActivityTypeLead,
			Title:       "Lead captured",
			Description: leadDescription(record),
			Date:        record.CreatedAt,
			Data:        toLeadView(record),
		})
	}
	for _, record := range invoices {
		items = append(items, transport.ActivityItem{
			Type:        transport.ActivityTypeInvoice,
			Title:       "Invoice " + record.InvoiceNumber,
			Description: fmt.Sprintf("Billed %.2f", record.Total),
			Date:        record.InvoiceDate,
			Data:        toInvoiceView(record),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})

	return items, nil
}

// normalizePlate is the vehicle merge key: lowercased with all whitespace
// removed, so "ABC 123" and "abc123" refer to the same vehicle.
func normalizePlate(plate string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, plate)
}

func toServiceEntry(record ports.ServiceRecord) transport.ServiceEntry {
	return transport.ServiceEntry{
		ID:            record.ID,
		Services:      record.Services,
		ScheduledDate: record.ScheduledDate,
		Status:        record.Status,
		TotalAmount:   record.TotalAmount,
		NumberPlate:   record.NumberPlate,
	}
}

func toLeadView(record ports.LeadRecord) transport.LeadView {
	return transport.LeadView{
		ID:        record.ID,
		Name:      record.Name,
		Source:    record.Source,
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
	}
}

func toInvoiceView(record ports.InvoiceRecord) transport.InvoiceView {
	return transport.InvoiceView{
		ID:            record.ID,
		InvoiceNumber: record.InvoiceNumber,
		VehiclePlate:  record.VehiclePlate,
		Total:         record.Total,
		InvoiceDate:   record.InvoiceDate,
	}
}

func serviceTitle(record ports.ServiceRecord) string {
	if len(record.Services) == 0 {
		return "Service booking"
	}
	return strings.Join(record.Services, ", ")
}

func serviceDescription(record ports.ServiceRecord) string {
	parts := make([]string, 0, 2)
	if record.NumberPlate != "" {
		parts = append(parts, record.NumberPlate)
	}
	if record.Status != "" {
		parts = append(parts, record.Status)
	}
	return strings.Join(parts, " · ")
}

func leadDescription(record ports.LeadRecord) string {
	if record.Source == "" {
		return record.Status
	}
	return record.Source + " · " + record.Status
}
