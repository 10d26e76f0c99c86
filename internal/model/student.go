package model

import "time"

// Student represents a student account.
type Student struct {
	ID           int       `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	GradeLabel   string    `json:"grade_label"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateStudentRequest is the payload for creating a student.
type CreateStudentRequest struct {
	Code       string `json:"code" binding:"required,min=3,max=32"`
	Name       string `json:"name" binding:"required,min=2,max=255"`
	GradeLabel string `json:"grade_label" binding:"omitempty,max=32"`
	Password   string `json:"password" binding:"required,min=6,max=72"`
}

// UpdateStudentRequest is the payload for updating a student.
type UpdateStudentRequest struct {
	Code       string  `json:"code" binding:"omitempty,min=3,max=32"`
	Name       string  `json:"name" binding:"omitempty,min=2,max=255"`
	GradeLabel *string `json:"grade_label" binding:"omitempty,max=32"`
	Password   string  `json:"password" binding:"omitempty,min=6,max=72"`
}

// StudentLoginRequest is the payload for student login.
type StudentLoginRequest struct {
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
}
