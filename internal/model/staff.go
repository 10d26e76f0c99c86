package model

import "time"

// StaffRole enumerates the staff roles of the platform.
type StaffRole string

const (
	StaffRoleAdmin       StaffRole = "admin"
	StaffRoleCoordinator StaffRole = "coordinator"
	StaffRoleTeacher     StaffRole = "teacher"
)

// Staff represents a staff account (teacher, coordinator or admin).
type Staff struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         StaffRole `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// StaffLoginRequest is the payload for staff login.
type StaffLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
