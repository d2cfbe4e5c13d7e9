package appointment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
)

// In-memory doubles for the repository and delivery interfaces. They
// mirror the storage contracts closely enough for lifecycle tests:
// insertion order is preserved and reads hand out copies so callers
// cannot mutate stored state without an explicit Update.

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	rows  []*model.Appointment
	byID  map[uuid.UUID]int
	saves int
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{byID: map[uuid.UUID]int{}}
}

func (f *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[apt.ID]; ok {
		return fmt.Errorf("duplicate id %s", apt.ID)
	}
	stored := *apt
	f.byID[apt.ID] = len(f.rows)
	f.rows = append(f.rows, &stored)
	f.saves++
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *f.rows[idx]
	return &copied, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx, ok := f.byID[apt.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored := *apt
	f.rows[idx] = &stored
	f.saves++
	return nil
}

func (f *fakeAppointmentRepo) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range f.rows {
		if filters.PatientID != uuid.Nil && apt.PatientID != filters.PatientID {
			continue
		}
		if filters.Status != "" && apt.Status != filters.Status {
			continue
		}
		if filters.PractitionerName != "" && apt.PractitionerName != filters.PractitionerName {
			continue
		}
		copied := *apt
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListLive(_ context.Context, practitionerName, date string) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range f.rows {
		if apt.PractitionerName == practitionerName && apt.Date == date && apt.Status.IsLive() {
			copied := *apt
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) HasLiveConflict(_ context.Context, practitionerName, date, timeOfDay string, excludeID *uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, apt := range f.rows {
		if excludeID != nil && apt.ID == *excludeID {
			continue
		}
		if apt.PractitionerName == practitionerName && apt.Date == date && apt.Time == timeOfDay && apt.Status.IsLive() {
			return true, nil
		}
	}
	return false, nil
}

type fakeCatalogRepo struct {
	times map[string][]string
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{times: map[string][]string{}}
}

func catalogKey(practitionerName, date string) string {
	return practitionerName + "|" + date
}

func (f *fakeCatalogRepo) set(practitionerName, date string, times []string) {
	f.times[catalogKey(practitionerName, date)] = times
}

func (f *fakeCatalogRepo) GetTimes(_ context.Context, practitionerName, date string) ([]string, error) {
	times, ok := f.times[catalogKey(practitionerName, date)]
	if !ok {
		return []string{}, nil
	}
	return times, nil
}

func (f *fakeCatalogRepo) Upsert(_ context.Context, entry *model.SlotCatalogEntry) error {
	f.set(entry.PractitionerName, entry.Date, entry.Times)
	return nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	copied := *event
	f.events = append(f.events, &copied)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	var out []*model.OutboxEvent
	for _, e := range f.events {
		if e.Status == model.OutboxStatusPending {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeOutboxRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	for _, e := range f.events {
		if e.ID == id {
			e.Status = model.OutboxStatusProcessed
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeOutboxRepo) MarkFailed(_ context.Context, id uuid.UUID, errMsg string) error {
	for _, e := range f.events {
		if e.ID == id {
			e.Status = model.OutboxStatusFailed
			e.ErrorMessage = &errMsg
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeOutboxRepo) eventTypes() []string {
	var out []string
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}

type fakeNotifier struct {
	sent []*model.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n *model.Notification) error {
	if f.err != nil {
		return f.err
	}
	copied := *n
	f.sent = append(f.sent, &copied)
	return nil
}

type fakeBroker struct {
	mu        sync.Mutex
	published map[string][][]byte
	handlers  map[string][]func([]byte)
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		published: map[string][][]byte{},
		handlers:  map[string][]func([]byte){},
	}
}

func (f *fakeBroker) Publish(_ context.Context, topic string, payload interface{}) error {
	f.mu.Lock()
	handlers := append([]func([]byte){}, f.handlers[topic]...)
	f.published[topic] = append(f.published[topic], []byte(fmt.Sprintf("%v", payload)))
	f.mu.Unlock()
	for _, h := range handlers {
		h(nil)
	}
	return nil
}

func (f *fakeBroker) Subscribe(_ context.Context, topic string, handler func([]byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = append(f.handlers[topic], handler)
	return nil
}

func (f *fakeBroker) Close() error { return nil }
