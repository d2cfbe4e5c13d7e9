package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
)

type testEnv struct {
	svc      *Service
	repo     *fakeAppointmentRepo
	catalog  *fakeCatalogRepo
	outbox   *fakeOutboxRepo
	notifier *fakeNotifier
	broker   *fakeBroker
}

func newTestEnv() *testEnv {
	repo := newFakeAppointmentRepo()
	catalog := newFakeCatalogRepo()
	outbox := &fakeOutboxRepo{}
	notifier := &fakeNotifier{}
	broker := newFakeBroker()
	resolver := NewResolver(catalog, repo)
	return &testEnv{
		svc:      NewService(repo, outbox, resolver, notifier, broker),
		repo:     repo,
		catalog:  catalog,
		outbox:   outbox,
		notifier: notifier,
		broker:   broker,
	}
}

func requestFor(practitioner, date, timeOfDay string) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		PatientID:        uuid.New(),
		ServiceType:      "cleaning",
		PractitionerName: practitioner,
		Date:             date,
		Time:             timeOfDay,
	}
}

// seed inserts an appointment directly, bypassing the service, so tests
// can start from any status.
func (e *testEnv) seed(t *testing.T, practitioner, date, timeOfDay string, status model.AppointmentStatus) *model.Appointment {
	t.Helper()
	apt := liveAppointment(practitioner, date, timeOfDay, status)
	require.NoError(t, e.repo.Create(context.Background(), apt))
	return apt
}

func TestRequestAppointment_Success(t *testing.T) {
	env := newTestEnv()
	tomorrow := dateOffset(1)
	env.catalog.set("Dr. Patel", tomorrow, morningCatalog)

	apt, err := env.svc.RequestAppointment(context.Background(), requestFor("Dr. Patel", tomorrow, "9:00 AM"))

	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPendingConfirmation, apt.Status)
	assert.NotEqual(t, uuid.Nil, apt.ID)
	assert.Len(t, env.notifier.sent, 1)
	assert.Equal(t, []string{EventAppointmentRequested}, env.outbox.eventTypes())
}

func TestRequestAppointment_SlotTakenNothingWritten(t *testing.T) {
	env := newTestEnv()
	tomorrow := dateOffset(1)
	env.catalog.set("Dr. Patel", tomorrow, morningCatalog)
	env.seed(t, "Dr. Patel", tomorrow, "9:00 AM", model.AppointmentStatusConfirmed)
	savesBefore := env.repo.saves

	_, err := env.svc.RequestAppointment(context.Background(), requestFor("Dr. Patel", tomorrow, "9:00 AM"))

	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, savesBefore, env.repo.saves, "a rejected request must not write")
	assert.Empty(t, env.notifier.sent)
	assert.Empty(t, env.outbox.events)
}

func TestRequestAppointment_TimeNotInCatalog(t *testing.T) {
	env := newTestEnv()
	tomorrow := dateOffset(1)
	env.catalog.set("Dr. Patel", tomorrow, morningCatalog)

	_, err := env.svc.RequestAppointment(context.Background(), requestFor("Dr. Patel", tomorrow, "11:45 PM"))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestRequestAppointment_PastDate(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.RequestAppointment(context.Background(), requestFor("Dr. Patel", dateOffset(-1), "9:00 AM"))
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Empty(t, env.notifier.sent)
}

func TestRequestAppointment_WithoutPractitionerSkipsCatalog(t *testing.T) {
	env := newTestEnv()

	apt, err := env.svc.RequestAppointment(context.Background(), requestFor("", dateOffset(1), "9:00 AM"))

	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPendingConfirmation, apt.Status)
	assert.Empty(t, apt.PractitionerName)
}

func TestSchedule_Success(t *testing.T) {
	env := newTestEnv()
	tomorrow := dateOffset(1)

	apt, err := env.svc.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:        uuid.New(),
		ServiceType:      "filling",
		PractitionerName: "Dr. Patel",
		Date:             tomorrow,
		Time:             "4:15 PM",
	})

	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, []string{EventAppointmentScheduled}, env.outbox.eventTypes())
	assert.Len(t, env.notifier.sent, 1)
}

func TestSchedule_RequiresPractitioner(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:   uuid.New(),
		ServiceType: "filling",
		Date:        dateOffset(1),
		Time:        "9:00 AM",
	})
	assert.ErrorIs(t, err, ErrPractitionerRequired)
}

func TestSchedule_ConflictsWithLiveAppointment(t *testing.T) {
	env := newTestEnv()
	tomorrow := dateOffset(1)
	env.seed(t, "Dr. Patel", tomorrow, "9:00 AM", model.AppointmentStatusPendingConfirmation)

	_, err := env.svc.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:        uuid.New(),
		ServiceType:      "filling",
		PractitionerName: "Dr. Patel",
		Date:             tomorrow,
		Time:             "9:00 AM",
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestConfirm_FromPendingAndScheduled(t *testing.T) {
	env := newTestEnv()
	tomorrow := dateOffset(1)

	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusPendingConfirmation,
		model.AppointmentStatusScheduled,
	} {
		apt := env.seed(t, "Dr. Patel", tomorrow, "9:00 AM", status)
		require.NoError(t, env.svc.Confirm(context.Background(), apt.ID))

		got, err := env.svc.GetAppointment(context.Background(), apt.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusConfirmed, got.Status)

		require.NoError(t, env.svc.Cancel(context.Background(), apt.ID)) // free the slot for the next round
	}
}

func TestConfirm_WithoutPractitionerFailsRegardlessOfStatus(t *testing.T) {
	env := newTestEnv()
	tomorrow := dateOffset(1)

	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusPendingConfirmation,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
	} {
		apt := env.seed(t, "", tomorrow, "9:00 AM", status)
		err := env.svc.Confirm(context.Background(), apt.ID)
		assert.ErrorIs(t, err, ErrPractitionerRequired, "status %s", status)
	}
}

func TestConfirm_InvalidFromConfirmed(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(1), "9:00 AM", model.AppointmentStatusConfirmed)

	err := env.svc.Confirm(context.Background(), apt.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirm_NotFound(t *testing.T) {
	env := newTestEnv()

	err := env.svc.Confirm(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCancel_NotIdempotent(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(1), "9:00 AM", model.AppointmentStatusConfirmed)

	require.NoError(t, env.svc.Cancel(context.Background(), apt.ID))
	err := env.svc.Cancel(context.Background(), apt.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, getErr := env.svc.GetAppointment(context.Background(), apt.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.AppointmentStatusCancelled, got.Status)
	assert.Len(t, env.notifier.sent, 1, "the failed second cancel must not notify")
}

func TestCancel_FromAnyLiveStatus(t *testing.T) {
	env := newTestEnv()
	tomorrow := dateOffset(1)
	times := []string{"9:00 AM", "10:30 AM", "2:00 PM"}

	for i, status := range model.LiveStatuses() {
		apt := env.seed(t, "Dr. Patel", tomorrow, times[i], status)
		assert.NoError(t, env.svc.Cancel(context.Background(), apt.ID), "status %s", status)
	}
}

func TestComplete_FutureDateRejected(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(1), "9:00 AM", model.AppointmentStatusConfirmed)

	err := env.svc.Complete(context.Background(), apt.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, getErr := env.svc.GetAppointment(context.Background(), apt.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.AppointmentStatusConfirmed, got.Status)
}

func TestComplete_OnVisitDay(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(0), "9:00 AM", model.AppointmentStatusConfirmed)

	require.NoError(t, env.svc.Complete(context.Background(), apt.ID))

	got, err := env.svc.GetAppointment(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, got.Status)
	assert.Equal(t, []string{EventAppointmentCompleted}, env.outbox.eventTypes())
}

func TestComplete_OnlyFromConfirmed(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(0), "9:00 AM", model.AppointmentStatusScheduled)

	err := env.svc.Complete(context.Background(), apt.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkNoShow_RequiresPastDate(t *testing.T) {
	env := newTestEnv()

	sameDay := env.seed(t, "Dr. Patel", dateOffset(0), "9:00 AM", model.AppointmentStatusConfirmed)
	err := env.svc.MarkNoShow(context.Background(), sameDay.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "the visit day itself is not yet a no-show")

	missed := env.seed(t, "Dr. Patel", dateOffset(-1), "9:00 AM", model.AppointmentStatusConfirmed)
	require.NoError(t, env.svc.MarkNoShow(context.Background(), missed.ID))

	got, getErr := env.svc.GetAppointment(context.Background(), missed.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.AppointmentStatusNoShow, got.Status)
}

func TestMarkNoShow_FromScheduled(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(-1), "9:00 AM", model.AppointmentStatusScheduled)

	assert.NoError(t, env.svc.MarkNoShow(context.Background(), apt.ID))
}

func TestMarkNoShow_NotFromPending(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(-1), "9:00 AM", model.AppointmentStatusPendingConfirmation)

	err := env.svc.MarkNoShow(context.Background(), apt.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAssignPractitioner_ChangesNameOnly(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(1), "9:00 AM", model.AppointmentStatusPendingConfirmation)

	require.NoError(t, env.svc.AssignPractitioner(context.Background(), apt.ID, "Dr. Okafor"))

	got, err := env.svc.GetAppointment(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Okafor", got.PractitionerName)
	assert.Equal(t, model.AppointmentStatusPendingConfirmation, got.Status)
}

func TestAssignPractitioner_ExcludesSelfFromConflictCheck(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(1), "9:00 AM", model.AppointmentStatusConfirmed)

	// Reassigning the same practitioner must not collide with itself.
	assert.NoError(t, env.svc.AssignPractitioner(context.Background(), apt.ID, "Dr. Patel"))
}

func TestAssignPractitioner_ConflictWithOtherAppointment(t *testing.T) {
	env := newTestEnv()
	tomorrow := dateOffset(1)
	env.seed(t, "Dr. Okafor", tomorrow, "9:00 AM", model.AppointmentStatusConfirmed)
	apt := env.seed(t, "Dr. Patel", tomorrow, "9:00 AM", model.AppointmentStatusPendingConfirmation)

	err := env.svc.AssignPractitioner(context.Background(), apt.ID, "Dr. Okafor")
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestAssignPractitioner_TerminalRejected(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(1), "9:00 AM", model.AppointmentStatusCompleted)

	err := env.svc.AssignPractitioner(context.Background(), apt.ID, "Dr. Okafor")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAssignPractitioner_AllowedAfterNoShow(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(-1), "9:00 AM", model.AppointmentStatusNoShow)

	assert.NoError(t, env.svc.AssignPractitioner(context.Background(), apt.ID, "Dr. Okafor"))
}

func TestAssignPractitioner_EmptyName(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(1), "9:00 AM", model.AppointmentStatusScheduled)

	err := env.svc.AssignPractitioner(context.Background(), apt.ID, "")
	assert.ErrorIs(t, err, ErrPractitionerRequired)
}

func TestTransitions_TouchUpdatedAt(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(1), "9:00 AM", model.AppointmentStatusScheduled)

	before, err := env.svc.GetAppointment(context.Background(), apt.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, env.svc.Confirm(context.Background(), apt.ID))

	after, err := env.svc.GetAppointment(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestTransitions_NotifyExactlyOncePerSuccess(t *testing.T) {
	env := newTestEnv()
	apt := env.seed(t, "Dr. Patel", dateOffset(0), "9:00 AM", model.AppointmentStatusScheduled)

	require.NoError(t, env.svc.Confirm(context.Background(), apt.ID))
	require.NoError(t, env.svc.Complete(context.Background(), apt.ID))

	assert.Len(t, env.notifier.sent, 2)
	assert.Equal(t,
		[]string{EventAppointmentConfirmed, EventAppointmentCompleted},
		env.outbox.eventTypes())
}

func TestTransitions_NotifierFailureDoesNotFailTransition(t *testing.T) {
	env := newTestEnv()
	env.notifier.err = assert.AnError
	apt := env.seed(t, "Dr. Patel", dateOffset(1), "9:00 AM", model.AppointmentStatusScheduled)

	require.NoError(t, env.svc.Confirm(context.Background(), apt.ID))

	got, err := env.svc.GetAppointment(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, got.Status)
}

func TestWatch_InvokesCallbackOnPublish(t *testing.T) {
	env := newTestEnv()

	calls := 0
	require.NoError(t, env.svc.Watch(context.Background(), func() { calls++ }))

	require.NoError(t, env.broker.Publish(context.Background(), TopicAppointments, "anything"))
	require.NoError(t, env.broker.Publish(context.Background(), TopicAppointments, "again"))

	assert.Equal(t, 2, calls)
}

func TestListAppointments_FiltersByStatus(t *testing.T) {
	env := newTestEnv()
	tomorrow := dateOffset(1)
	env.seed(t, "Dr. Patel", tomorrow, "9:00 AM", model.AppointmentStatusConfirmed)
	env.seed(t, "Dr. Patel", tomorrow, "10:30 AM", model.AppointmentStatusCancelled)

	got, err := env.svc.ListAppointments(context.Background(), &model.AppointmentFilters{
		Status: model.AppointmentStatusConfirmed,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.AppointmentStatusConfirmed, got[0].Status)
}
