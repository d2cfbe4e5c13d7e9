package model

import "time"

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

type Patient struct {
	Base
	Name        string        `db:"name" json:"name"`
	Email       string        `db:"email" json:"email"`
	Phone       string        `db:"phone" json:"phone,omitempty"`
	DateOfBirth *time.Time    `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Status      PatientStatus `db:"status" json:"status"`
}

type CreatePatientRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"max=30"`
}

type PatientFilters struct {
	SearchTerm string
	Status     PatientStatus
}
