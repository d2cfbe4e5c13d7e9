package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func appointmentColumns() []string {
	return []string{
		"id", "patient_id", "practitioner_name", "service_type",
		"visit_date", "visit_time", "status", "notes",
		"created_at", "updated_at",
	}
}

func TestAppointmentRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	now := time.Now()
	apt := &model.Appointment{
		Base:             model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		PatientID:        uuid.New(),
		PractitionerName: "Dr. Patel",
		ServiceType:      "cleaning",
		Date:             "2026-09-15",
		Time:             "9:00 AM",
		Status:           model.AppointmentStatusPendingConfirmation,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WithArgs(apt.ID, apt.PatientID, apt.PractitionerName, apt.ServiceType,
			apt.Date, apt.Time, apt.Status, apt.Notes, apt.CreatedAt, apt.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), apt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(appointmentColumns()))

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAppointmentRepository_GetMapsRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	id := uuid.New()
	patientID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(appointmentColumns()).
			AddRow(id, patientID, "Dr. Patel", "cleaning",
				"2026-09-15", "9:00 AM", "confirmed", "",
				now, now))

	apt, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, patientID, apt.PatientID)
	assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)
	assert.Equal(t, "9:00 AM", apt.Time)
}

func TestAppointmentRepository_GetRejectsMalformedRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(appointmentColumns()).
			AddRow(id, uuid.New(), "Dr. Patel", "cleaning",
				"not-a-date", "9:00 AM", "confirmed", "",
				now, now))

	_, err := repo.Get(context.Background(), id)
	assert.Error(t, err)
}

func TestAppointmentRepository_UpdateMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	now := time.Now()
	apt := &model.Appointment{
		Base:             model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		PatientID:        uuid.New(),
		PractitionerName: "Dr. Patel",
		ServiceType:      "cleaning",
		Date:             "2026-09-15",
		Time:             "9:00 AM",
		Status:           model.AppointmentStatusCancelled,
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), apt)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAppointmentRepository_HasLiveConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("Dr. Patel", "2026-09-15", "9:00 AM").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	conflict, err := repo.HasLiveConflict(context.Background(), "Dr. Patel", "2026-09-15", "9:00 AM", nil)
	require.NoError(t, err)
	assert.True(t, conflict)
}

func TestAppointmentRepository_HasLiveConflictExcludesID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)
	excludeID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("id != $4")).
		WithArgs("Dr. Patel", "2026-09-15", "9:00 AM", excludeID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	conflict, err := repo.HasLiveConflict(context.Background(), "Dr. Patel", "2026-09-15", "9:00 AM", &excludeID)
	require.NoError(t, err)
	assert.False(t, conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotCatalogRepository_GetTimesEmptyWhenMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSlotCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM slot_catalog")).
		WithArgs("Dr. Patel", "2026-09-15").
		WillReturnRows(sqlmock.NewRows([]string{"times"}))

	times, err := repo.GetTimes(context.Background(), "Dr. Patel", "2026-09-15")
	require.NoError(t, err)
	assert.NotNil(t, times)
	assert.Empty(t, times)
}
