package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityStatus enumerates the possible states of an activity.
type ActivityStatus string

const (
	ActivityStatusDraft     ActivityStatus = "DRAFT"
	ActivityStatusPublished ActivityStatus = "PUBLISHED"
	ActivityStatusArchived  ActivityStatus = "ARCHIVED"
)

// Activity represents an interactive activity definition: ordered questions,
// a time limit and display metadata. Immutable for the lifetime of a session.
type Activity struct {
	ID               uuid.UUID      `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	SubjectID        uuid.UUID      `json:"subject_id"`
	SubjectName      string         `json:"subject_name,omitempty"`
	Difficulty       string         `json:"difficulty"`
	TimeLimitSeconds int            `json:"time_limit_seconds"`
	AuthorID         int            `json:"author_id"`
	Status           ActivityStatus `json:"status"`
	Questions        []Question     `json:"questions,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Validate checks that the activity is a well-formed session input: a positive
// time limit and at least one valid question. Called on publish and again
// before a session starts, never during scoring.
func (a *Activity) Validate() error {
	if a.TimeLimitSeconds <= 0 {
		return fmt.Errorf("activity %s: time limit must be positive", a.ID)
	}
	if len(a.Questions) == 0 {
		return fmt.Errorf("activity %s: no questions", a.ID)
	}
	for i := range a.Questions {
		if err := a.Questions[i].Validate(); err != nil {
			return fmt.Errorf("activity %s: %w", a.ID, err)
		}
	}
	return nil
}

// CreateActivityRequest is the payload for creating a new activity.
type CreateActivityRequest struct {
	Title            string    `json:"title" binding:"required,min=3,max=255"`
	Description      string    `json:"description" binding:"omitempty,max=2000"`
	SubjectID        uuid.UUID `json:"subject_id" binding:"required"`
	Difficulty       string    `json:"difficulty" binding:"omitempty,oneof=Fácil Medio Difícil"`
	TimeLimitSeconds int       `json:"time_limit_seconds" binding:"required,min=30,max=7200"`
}

// UpdateActivityRequest is the payload for updating an existing activity.
type UpdateActivityRequest struct {
	Title            string     `json:"title" binding:"omitempty,min=3,max=255"`
	Description      *string    `json:"description" binding:"omitempty,max=2000"`
	SubjectID        *uuid.UUID `json:"subject_id" binding:"omitempty"`
	Difficulty       string     `json:"difficulty" binding:"omitempty,oneof=Fácil Medio Difícil"`
	TimeLimitSeconds int        `json:"time_limit_seconds" binding:"omitempty,min=30,max=7200"`
}

// ActivityPayload is the Redis-cached payload sent to students. Questions are
// stripped of everything that would reveal the answer key.
type ActivityPayload struct {
	ActivityID       uuid.UUID            `json:"activity_id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	SubjectName      string               `json:"subject_name"`
	Difficulty       string               `json:"difficulty"`
	TimeLimitSeconds int                  `json:"time_limit_seconds"`
	Questions        []QuestionForStudent `json:"questions"`
}

// QuestionForStudent is a question without correct answers, sent to students.
// RightItems stay visible for MATCH_PAIRS (the student sees both columns),
// but the mapping does not.
type QuestionForStudent struct {
	ID         uuid.UUID    `json:"id"`
	Kind       QuestionKind `json:"kind"`
	Prompt     string       `json:"prompt"`
	Visual     string       `json:"visual,omitempty"`
	OrderNum   int          `json:"order_num"`
	Options    []string     `json:"options,omitempty"`
	LeftItems  []string     `json:"left_items,omitempty"`
	RightItems []string     `json:"right_items,omitempty"`
}

// Payload builds the sanitized student payload for a loaded activity.
func (a *Activity) Payload() *ActivityPayload {
	p := &ActivityPayload{
		ActivityID:       a.ID,
		Title:            a.Title,
		Description:      a.Description,
		SubjectName:      a.SubjectName,
		Difficulty:       a.Difficulty,
		TimeLimitSeconds: a.TimeLimitSeconds,
		Questions:        make([]QuestionForStudent, 0, len(a.Questions)),
	}
	for _, q := range a.Questions {
		p.Questions = append(p.Questions, QuestionForStudent{
			ID:         q.ID,
			Kind:       q.Kind,
			Prompt:     q.Prompt,
			Visual:     q.Visual,
			OrderNum:   q.OrderNum,
			Options:    q.Options,
			LeftItems:  q.LeftItems,
			RightItems: q.RightItems,
		})
	}
	return p
}
