// Package resolver implements customer identity resolution: matching a
// fragment of contact info from a booking, lead, invoice or quotation to a
// canonical customer record, creating one when no match exists.
package resolver

import (
	"context"
	"errors"
	"strings"

	"carmantra_backend/internal/customers/repository"
	"carmantra_backend/platform/phone"
)

// Fragment is a partial contact record extracted from a source document.
// Email or Mobile is required to resolve an identity; everything else is
// backfill material.
type Fragment struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Address   string
	City      string
	State     string
	Country   string
}

// HasIdentity reports whether the fragment carries at least one identity key.
func (f Fragment) HasIdentity() bool {
	return f.Email != "" || f.Mobile != ""
}

// Store is the customer store the resolver works against.
type Store interface {
	repository.IdentityStore
	// WithIdentityLock serializes resolution for one identity key; used only
	// in transactional mode.
	WithIdentityLock(ctx context.Context, key string, fn func(store repository.IdentityStore) error) error
}

// Options configure resolution behavior.
type Options struct {
	// Transactional selects strict duplicate prevention: the lookup and the
	// create/update run under an advisory lock on the identity key. The
	// default is best-effort, where two concurrent resolutions of an unseen
	// identity can still create duplicate rows.
	Transactional bool
	// PhoneRegion is the default region for normalizing national-format
	// mobile numbers to E.164 before matching.
	PhoneRegion string
}

// Resolver finds or creates customers from contact fragments.
type Resolver struct {
	store Store
	opts  Options
}

// New creates a Resolver over the given store.
func New(store Store, opts Options) *Resolver {
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = "IN"
	}
	return &Resolver{store: store, opts: opts}
}

// Resolve finds the customer matching the fragment's email or mobile, or
// creates one. It returns (nil, false, nil) when the fragment has neither
// identity field; callers treat that as "skip", not as an error.
//
// On a match, fields that are empty on the record and supplied by the
// fragment are backfilled in a single update. Populated fields are never
// overwritten, so resolving the same document repeatedly is idempotent.
// The bool result reports whether a new customer was created.
func (r *Resolver) Resolve(ctx context.Context, fragment Fragment) (*repository.Customer, bool, error) {
	fragment = normalize(fragment, r.opts.PhoneRegion)

	if !fragment.HasIdentity() {
		return nil, false, nil
	}

	if !r.opts.Transactional {
		return resolve(ctx, r.store, fragment)
	}

	var (
		customer *repository.Customer
		created  bool
	)
	err := r.store.WithIdentityLock(ctx, identityKey(fragment), func(store repository.IdentityStore) error {
		var innerErr error
		customer, created, innerErr = resolve(ctx, store, fragment)
		return innerErr
	})
	if err != nil {
		return nil, false, err
	}
	return customer, created, nil
}

func resolve(ctx context.Context, store repository.IdentityStore, fragment Fragment) (*repository.Customer, bool, error) {
	existing, found, err := lookup(ctx, store, fragment)
	if err != nil {
		return nil, false, err
	}

	if found {
		staged := stageMerge(existing, fragment)
		if len(staged) > 0 {
			if err := store.UpdateContactFields(ctx, existing.ID, staged); err != nil {
				return nil, false, err
			}
			applyStaged(&existing, staged)
		}
		return &existing, false, nil
	}

	customer, err := store.Create(ctx, repository.CreateCustomerParams{
		FirstName: fragment.FirstName,
		LastName:  fragment.LastName,
		Email:     fragment.Email,
		Mobile:    fragment.Mobile,
		Address:   fragment.Address,
		City:      fragment.City,
		State:     fragment.State,
		Country:   fragment.Country,
		Status:    "active",
	})
	if err != nil {
		return nil, false, err
	}
	return &customer, true, nil
}

// lookup checks email first, then mobile; the first hit wins.
func lookup(ctx context.Context, store repository.IdentityStore, fragment Fragment) (repository.Customer, bool, error) {
	if fragment.Email != "" {
		customer, err := store.FindByEmail(ctx, fragment.Email)
		if err == nil {
			return customer, true, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return repository.Customer{}, false, err
		}
	}

	if fragment.Mobile != "" {
		customer, err := store.FindByMobile(ctx, fragment.Mobile)
		if err == nil {
			return customer, true, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return repository.Customer{}, false, err
		}
	}

	return repository.Customer{}, false, nil
}

// stageMerge collects column updates for fields that are empty on the
// existing record and supplied by the fragment. State is deliberately not
// merged; it is only stored at creation time.
func stageMerge(existing repository.Customer, fragment Fragment) map[string]string {
	staged := make(map[string]string)
	stage := func(column, current, supplied string) {
		if current == "" && supplied != "" {
			staged[column] = supplied
		}
	}

	stage("first_name", existing.FirstName, fragment.FirstName)
	stage("last_name", existing.LastName, fragment.LastName)
	stage("email", existing.Email, fragment.Email)
	stage("mobile", existing.Mobile, fragment.Mobile)
	stage("address", existing.Address, fragment.Address)
	stage("city", existing.City, fragment.City)
	stage("country", existing.Country, fragment.Country)

	return staged
}

func applyStaged(customer *repository.Customer, staged map[string]string) {
	for column, value := range staged {
		switch column {
		case "first_name":
			customer.FirstName = value
		case "last_name":
			customer.LastName = value
		case "email":
			customer.Email = value
		case "mobile":
			customer.Mobile = value
		case "address":
			customer.Address = value
		case "city":
			customer.City = value
		case "country":
			customer.Country = value
		}
	}
}

// normalize trims whitespace and brings mobiles to E.164 so equality
// matching is stable across input formats. Emails stay exact-match.
func normalize(fragment Fragment, phoneRegion string) Fragment {
	fragment.FirstName = strings.TrimSpace(fragment.FirstName)
	fragment.LastName = strings.TrimSpace(fragment.LastName)
	fragment.Email = strings.TrimSpace(fragment.Email)
	fragment.Address = strings.TrimSpace(fragment.Address)
	fragment.City = strings.TrimSpace(fragment.City)
	fragment.State = strings.TrimSpace(fragment.State)
	fragment.Country = strings.TrimSpace(fragment.Country)
	fragment.Mobile = phone.NormalizeE164(fragment.Mobile, phoneRegion)
	return fragment
}

func identityKey(fragment Fragment) string {
	if fragment.Email != "" {
		return "customer:email:" + fragment.Email
	}
	return "customer:mobile:" + fragment.Mobile
}
