package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
	"github.com/brightsmile/dental-api/pkg/auth"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	admins repository.AdminRepository
	jwt    *auth.JWTService
}

func NewService(admins repository.AdminRepository, jwt *auth.JWTService) *Service {
	return &Service{
		admins: admins,
		jwt:    jwt,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(admin.ID, admin.Email, admin.Role)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{Token: token, Admin: admin}, nil
}
