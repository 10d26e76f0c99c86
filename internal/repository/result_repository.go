package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityResultRow combines student data with their result for staff listings.
type ActivityResultRow struct {
	StudentID      int       `json:"student_id"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	GradeLabel     string    `json:"grade_label"`
	Score          int       `json:"score"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	CompletedAt    time.Time `json:"completed_at"`
}

// ResultRepository handles persisted activity results.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Upsert stores a result, replacing any earlier attempt at the same activity.
func (r *ResultRepository) Upsert(ctx context.Context, res *model.Result) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_results
		     (activity_id, student_id, score, correct_count, total_questions, elapsed_seconds, review, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (activity_id, student_id) DO UPDATE
		 SET score = EXCLUDED.score,
		     correct_count = EXCLUDED.correct_count,
		     total_questions = EXCLUDED.total_questions,
		     elapsed_seconds = EXCLUDED.elapsed_seconds,
		     review = EXCLUDED.review,
		     completed_at = EXCLUDED.completed_at`,
		res.ActivityID, res.StudentID, res.Score, res.CorrectCount,
		res.TotalQuestions, res.ElapsedSeconds, res.Review, res.CompletedAt)
	return err
}

// GetByActivityAndStudent retrieves a stored result, including the review.
func (r *ResultRepository) GetByActivityAndStudent(ctx context.Context, activityID uuid.UUID, studentID int) (*model.Result, error) {
	res := &model.Result{}
	err := r.pool.QueryRow(ctx,
		`SELECT activity_id, student_id, score, correct_count, total_questions, elapsed_seconds, review, completed_at
		 FROM activity_results
		 WHERE activity_id = $1 AND student_id = $2`, activityID, studentID,
	).Scan(&res.ActivityID, &res.StudentID, &res.Score, &res.CorrectCount,
		&res.TotalQuestions, &res.ElapsedSeconds, &res.Review, &res.CompletedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListByStudent retrieves all of a student's results, newest first. The review
// payloads are excluded to keep the listing light.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT activity_id, student_id, score, correct_count, total_questions, elapsed_seconds, completed_at
		 FROM activity_results
		 WHERE student_id = $1
		 ORDER BY completed_at DESC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.ActivityID, &res.StudentID, &res.Score, &res.CorrectCount,
			&res.TotalQuestions, &res.ElapsedSeconds, &res.CompletedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// ListByActivity retrieves all student results for a specific activity, with
// an optional grade filter and pagination.
func (r *ResultRepository) ListByActivity(ctx context.Context, activityID uuid.UUID, page, perPage int, gradeLabel *string) ([]ActivityResultRow, int64, error) {
	offset := (page - 1) * perPage

	baseQuery := `
		FROM activity_results ar
		JOIN students s ON ar.student_id = s.id
		WHERE ar.activity_id = $1
	`
	args := []any{activityID}

	if gradeLabel != nil && *gradeLabel != "" {
		args = append(args, *gradeLabel)
		baseQuery += fmt.Sprintf(" AND s.grade_label = $%d", len(args))
	}

	var total int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			s.id, s.name, s.code, s.grade_label,
			ar.score, ar.correct_count, ar.total_questions, ar.elapsed_seconds, ar.completed_at
		` + baseQuery + `
		ORDER BY s.grade_label ASC, s.name ASC
		LIMIT $` + fmt.Sprintf("%d", len(args)+1) + ` OFFSET $` + fmt.Sprintf("%d", len(args)+2) + `
	`
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []ActivityResultRow
	for rows.Next() {
		var row ActivityResultRow
		if err := rows.Scan(
			&row.StudentID, &row.Name, &row.Code, &row.GradeLabel,
			&row.Score, &row.CorrectCount, &row.TotalQuestions, &row.ElapsedSeconds, &row.CompletedAt,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, row)
	}

	return results, total, nil
}
