package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/brightsmile/dental-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

type slotCatalogRepository struct {
	db *sqlx.DB
}

type patientRepository struct {
	db *sqlx.DB
}

type practitionerRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

type adminRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewSlotCatalogRepository(db *sqlx.DB) repository.SlotCatalogRepository {
	return &slotCatalogRepository{db: db}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func NewPractitionerRepository(db *sqlx.DB) repository.PractitionerRepository {
	return &practitionerRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

func NewAdminRepository(db *sqlx.DB) repository.AdminRepository {
	return &adminRepository{db: db}
}
