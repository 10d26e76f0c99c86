package service

import (
	"context"

	"github.com/aulaplay/aulaplay-backend/internal/repository"
	"github.com/aulaplay/aulaplay-backend/internal/response"
	"github.com/google/uuid"
)

// ResultService serves persisted activity results to the staff reporting side.
type ResultService struct {
	resultRepo *repository.ResultRepository
}

// NewResultService creates a new ResultService.
func NewResultService(resultRepo *repository.ResultRepository) *ResultService {
	return &ResultService{resultRepo: resultRepo}
}

// ListByActivity returns per-student result rows for an activity, optionally
// filtered by grade label.
func (s *ResultService) ListByActivity(ctx context.Context, activityID uuid.UUID, page, perPage int, gradeLabel *string) ([]repository.ActivityResultRow, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	rows, total, err := s.resultRepo.ListByActivity(ctx, activityID, page, perPage, gradeLabel)
	if err != nil {
		return nil, nil, err
	}
	if rows == nil {
		rows = []repository.ActivityResultRow{}
	}

	totalPages := (int(total) + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	}

	return rows, pagination, nil
}
