package service

import (
	"context"

	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/aulaplay/aulaplay-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// StaffService handles staff account business logic.
type StaffService struct {
	staffRepo *repository.StaffRepository
}

// NewStaffService creates a new StaffService.
func NewStaffService(staffRepo *repository.StaffRepository) *StaffService {
	return &StaffService{staffRepo: staffRepo}
}

// GetByID retrieves a staff member by ID.
func (s *StaffService) GetByID(ctx context.Context, id int) (*model.Staff, error) {
	return s.staffRepo.GetByID(ctx, id)
}

// GetByEmail retrieves a staff member by email.
func (s *StaffService) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	return s.staffRepo.GetByEmail(ctx, email)
}

// Create inserts a new staff account with a hashed password.
func (s *StaffService) Create(ctx context.Context, staff *model.Staff) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(staff.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	staff.PasswordHash = string(hashed)
	return s.staffRepo.Create(ctx, staff)
}
