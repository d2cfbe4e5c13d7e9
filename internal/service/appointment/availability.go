package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
)

// Resolver computes the bookable time slots for a practitioner on a date:
// the slot catalog's candidate list minus times held by live appointments.
// It reads fresh state on every call and never caches; blackout rules
// (weekends, holidays, changed clinic hours) are the catalog's concern.
type Resolver struct {
	catalog      repository.SlotCatalogRepository
	appointments repository.AppointmentRepository
}

func NewResolver(catalog repository.SlotCatalogRepository, appointments repository.AppointmentRepository) *Resolver {
	return &Resolver{
		catalog:      catalog,
		appointments: appointments,
	}
}

// ResolveAvailableSlots returns the open slots in catalog order. A date
// with no catalog entry yields an empty slice, not an error.
func (r *Resolver) ResolveAvailableSlots(ctx context.Context, date, practitionerName string) ([]string, error) {
	if err := validateBookableDate(date); err != nil {
		return nil, err
	}

	candidates, err := r.catalog.GetTimes(ctx, practitionerName, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot catalog: %w", err)
	}
	if len(candidates) == 0 {
		return []string{}, nil
	}

	live, err := r.appointments.ListLive(ctx, practitionerName, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load live appointments: %w", err)
	}

	occupied := make(map[string]struct{}, len(live))
	for _, apt := range live {
		occupied[apt.Time] = struct{}{}
	}

	available := make([]string, 0, len(candidates))
	for _, slot := range candidates {
		if _, taken := occupied[slot]; !taken {
			available = append(available, slot)
		}
	}
	return available, nil
}

// validateBookableDate rejects malformed dates and dates before today.
// Today itself is bookable.
func validateBookableDate(date string) error {
	d, err := model.ParseDate(date)
	if err != nil {
		return ErrInvalidDate
	}
	if d.Before(today()) {
		return ErrInvalidDate
	}
	return nil
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}
