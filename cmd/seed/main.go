package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
	"github.com/brightsmile/dental-api/internal/repository/postgres"
)

var serviceTypes = []string{"checkup", "cleaning", "filling", "root canal", "whitening", "extraction"}

var slotTimes = []string{"9:00 AM", "10:30 AM", "12:00 PM", "2:00 PM", "3:30 PM", "5:00 PM"}

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	practitionerRepo := postgres.NewPractitionerRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	catalogRepo := postgres.NewSlotCatalogRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	practitioners := seedPractitioners(ctx, practitionerRepo)
	patients := seedPatients(ctx, patientRepo)
	seedSlotCatalogs(ctx, catalogRepo, practitioners)
	seedAppointments(ctx, appointmentRepo, practitioners, patients)

	log.Info().Msg("seed complete")
}

func seedPractitioners(ctx context.Context, repo repository.PractitionerRepository) []*model.Practitioner {
	specialties := []string{"General Dentistry", "Orthodontics", "Endodontics", "Periodontics"}

	practitioners := make([]*model.Practitioner, 0, 4)
	for i := 0; i < 4; i++ {
		p := &model.Practitioner{
			Name:      "Dr. " + gofakeit.LastName(),
			Specialty: specialties[i%len(specialties)],
			Active:    true,
		}
		p.ID = uuid.New()
		p.CreatedAt = time.Now()
		p.UpdatedAt = p.CreatedAt
		if err := repo.Create(ctx, p); err != nil {
			log.Fatal().Err(err).Str("name", p.Name).Msg("failed to seed practitioner")
		}
		practitioners = append(practitioners, p)
	}
	log.Info().Int("count", len(practitioners)).Msg("seeded practitioners")
	return practitioners
}

func seedPatients(ctx context.Context, repo repository.PatientRepository) []*model.Patient {
	patients := make([]*model.Patient, 0, 20)
	for i := 0; i < 20; i++ {
		dob := gofakeit.DateRange(
			time.Now().AddDate(-80, 0, 0),
			time.Now().AddDate(-18, 0, 0),
		)
		p := &model.Patient{
			Name:        gofakeit.Name(),
			Email:       gofakeit.Email(),
			Phone:       gofakeit.Phone(),
			DateOfBirth: &dob,
			Status:      model.PatientStatusActive,
		}
		p.ID = uuid.New()
		p.CreatedAt = time.Now()
		p.UpdatedAt = p.CreatedAt
		if err := repo.Create(ctx, p); err != nil {
			log.Fatal().Err(err).Str("email", p.Email).Msg("failed to seed patient")
		}
		patients = append(patients, p)
	}
	log.Info().Int("count", len(patients)).Msg("seeded patients")
	return patients
}

func seedSlotCatalogs(ctx context.Context, repo repository.SlotCatalogRepository, practitioners []*model.Practitioner) {
	count := 0
	for day := 0; day < 14; day++ {
		date := time.Now().AddDate(0, 0, day).Format(model.DateLayout)
		for _, p := range practitioners {
			entry := &model.SlotCatalogEntry{
				PractitionerName: p.Name,
				Date:             date,
				Times:            slotTimes,
			}
			entry.ID = uuid.New()
			entry.CreatedAt = time.Now()
			entry.UpdatedAt = entry.CreatedAt
			if err := repo.Upsert(ctx, entry); err != nil {
				log.Fatal().Err(err).Str("practitioner", p.Name).Str("date", date).Msg("failed to seed slot catalog")
			}
			count++
		}
	}
	log.Info().Int("count", count).Msg("seeded slot catalogs")
}

func seedAppointments(
	ctx context.Context,
	repo repository.AppointmentRepository,
	practitioners []*model.Practitioner,
	patients []*model.Patient,
) {
	statuses := []model.AppointmentStatus{
		model.AppointmentStatusPendingConfirmation,
		model.AppointmentStatusScheduled,
		model.AppointmentStatusConfirmed,
	}

	count := 0
	for day := 1; day < 8; day++ {
		date := time.Now().AddDate(0, 0, day).Format(model.DateLayout)
		for i, p := range practitioners {
			patient := patients[(day*len(practitioners)+i)%len(patients)]
			a := &model.Appointment{
				PatientID:        patient.ID,
				PractitionerName: p.Name,
				ServiceType:      gofakeit.RandomString(serviceTypes),
				Date:             date,
				Time:             slotTimes[(day+i)%len(slotTimes)],
				Status:           statuses[(day+i)%len(statuses)],
				Notes:            gofakeit.Sentence(6),
			}
			a.ID = uuid.New()
			a.CreatedAt = time.Now()
			a.UpdatedAt = a.CreatedAt
			if err := repo.Create(ctx, a); err != nil {
				log.Fatal().Err(err).Str("practitioner", p.Name).Str("date", date).Msg("failed to seed appointment")
			}
			count++
		}
	}
	log.Info().Int("count", count).Msg("seeded appointments")
}
