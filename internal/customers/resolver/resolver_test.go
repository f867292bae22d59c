package resolver

import (
	"context"
	"sync"
	"testing"

	"carmantra_backend/internal/customers/repository"

	"github.com/google/uuid"
)

// fakeStore is an in-memory customer store for resolver tests.
type fakeStore struct {
	mu        sync.Mutex
	customers []repository.Customer
	creates   int
	updates   int
	locked    int
}

func (s *fakeStore) FindByEmail(_ context.Context, email string) (repository.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return repository.Customer{}, repository.ErrNotFound
}

func (s *fakeStore) FindByMobile(_ context.Context, mobile string) (repository.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.Mobile == mobile {
			return c, nil
		}
	}
	return repository.Customer{}, repository.ErrNotFound
}

func (s *fakeStore) Create(_ context.Context, params repository.CreateCustomerParams) (repository.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	customer := repository.Customer{
		ID:        uuid.New(),
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		Mobile:    params.Mobile,
		Address:   params.Address,
		City:      params.City,
		State:     params.State,
		Country:   params.Country,
		Status:    params.Status,
	}
	s.customers = append(s.customers, customer)
	return customer, nil
}

func (s *fakeStore) UpdateContactFields(_ context.Context, id uuid.UUID, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	for i := range s.customers {
		if s.customers[i].ID != id {
			continue
		}
		for column, value := range fields {
			switch column {
			case "first_name":
				s.customers[i].FirstName = value
			case "last_name":
				s.customers[i].LastName = value
			case "email":
				s.customers[i].Email = value
			case "mobile":
				s.customers[i].Mobile = value
			case "address":
				s.customers[i].Address = value
			case "city":
				s.customers[i].City = value
			case "country":
				s.customers[i].Country = value
			}
		}
		return nil
	}
	return repository.ErrNotFound
}

func (s *fakeStore) WithIdentityLock(_ context.Context, _ string, fn func(store repository.IdentityStore) error) error {
	s.mu.Lock()
	s.locked++
	s.mu.Unlock()
	return fn(s)
}

func TestResolveCreatesOnceForSameEmail(t *testing.T) {
	store := &fakeStore{}
	r := New(store, Options{})

	first, created, err := r.Resolve(context.Background(), Fragment{Email: "a@x.com", FirstName: "A"})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if !created {
		t.Fatal("expected first resolve to create")
	}

	second, created, err := r.Resolve(context.Background(), Fragment{Email: "a@x.com", FirstName: "A"})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if created {
		t.Fatal("expected second resolve to reuse the existing customer")
	}
	if first.ID != second.ID {
		t.Fatalf("expected same customer id, got %s and %s", first.ID, second.ID)
	}
	if store.creates != 1 {
		t.Fatalf("expected exactly one create, got %d", store.creates)
	}
}

func TestResolveFillsEmptyFieldsOnly(t *testing.T) {
	store := &fakeStore{}
	store.customers = append(store.customers, repository.Customer{
		ID:        uuid.New(),
		Email:     "a@x.com",
		FirstName: "A",
		LastName:  "",
	})
	r := New(store, Options{})

	customer, created, err := r.Resolve(context.Background(), Fragment{
		Email:     "a@x.com",
		FirstName: "Z",
		LastName:  "B",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if created {
		t.Fatal("expected match, not create")
	}
	if customer.FirstName != "A" {
		t.Fatalf("populated firstName must not be overwritten, got %q", customer.FirstName)
	}
	if customer.LastName != "B" {
		t.Fatalf("empty lastName should be filled, got %q", customer.LastName)
	}
	if store.updates != 1 {
		t.Fatalf("expected a single update call, got %d", store.updates)
	}
}

func TestResolveNoopWhenMergeStagesNothing(t *testing.T) {
	store := &fakeStore{}
	store.customers = append(store.customers, repository.Customer{
		ID:        uuid.New(),
		Email:     "a@x.com",
		FirstName: "A",
	})
	r := New(store, Options{})

	if _, _, err := r.Resolve(context.Background(), Fragment{Email: "a@x.com", FirstName: "Q"}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if store.updates != 0 {
		t.Fatalf("expected no update when nothing stages, got %d", store.updates)
	}
}

func TestResolveReturnsNilWithoutIdentity(t *testing.T) {
	store := &fakeStore{}
	r := New(store, Options{})

	customer, created, err := r.Resolve(context.Background(), Fragment{FirstName: "X"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if customer != nil || created {
		t.Fatalf("expected nil result for identity-less fragment, got %+v", customer)
	}
	if store.creates != 0 || store.updates != 0 {
		t.Fatal("identity-less fragment must not write")
	}
}

func TestResolveMatchesByMobileWhenEmailMisses(t *testing.T) {
	store := &fakeStore{}
	existing := repository.Customer{ID: uuid.New(), Mobile: "+919876543210"}
	store.customers = append(store.customers, existing)
	r := New(store, Options{PhoneRegion: "IN"})

	customer, created, err := r.Resolve(context.Background(), Fragment{
		Email:  "new@x.com",
		Mobile: "98765 43210",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if created {
		t.Fatal("expected mobile match, not create")
	}
	if customer.ID != existing.ID {
		t.Fatalf("expected existing customer %s, got %s", existing.ID, customer.ID)
	}
	if customer.Email != "new@x.com" {
		t.Fatalf("expected email backfill, got %q", customer.Email)
	}
}

func TestResolveNormalizesMobileToE164(t *testing.T) {
	store := &fakeStore{}
	r := New(store, Options{PhoneRegion: "IN"})

	customer, _, err := r.Resolve(context.Background(), Fragment{Mobile: "098765 43210"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if customer.Mobile != "+919876543210" {
		t.Fatalf("expected E.164 mobile, got %q", customer.Mobile)
	}
}

func TestResolveTransactionalUsesIdentityLock(t *testing.T) {
	store := &fakeStore{}
	r := New(store, Options{Transactional: true})

	if _, _, err := r.Resolve(context.Background(), Fragment{Email: "a@x.com"}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if store.locked != 1 {
		t.Fatalf("expected resolution under identity lock, locked=%d", store.locked)
	}
}
