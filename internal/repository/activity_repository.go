package repository

import (
	"context"
	"strconv"

	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityRepository handles activity and question data access.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// GetByID retrieves an activity by its UUID, without questions.
func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	a := &model.Activity{}
	err := r.pool.QueryRow(ctx,
		`SELECT a.id, a.title, a.description, a.subject_id, s.name,
		        a.difficulty, a.time_limit_seconds, a.author_id, a.status,
		        a.created_at, a.updated_at
		 FROM activities a
		 JOIN subjects s ON a.subject_id = s.id
		 WHERE a.id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.Description, &a.SubjectID, &a.SubjectName,
		&a.Difficulty, &a.TimeLimitSeconds, &a.AuthorID, &a.Status,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetWithQuestions retrieves an activity together with its ordered questions.
func (r *ActivityRepository) GetWithQuestions(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := r.ListQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Questions = questions
	return a, nil
}

// ListByAuthorPaginated retrieves activities filtered by author with pagination.
// Pass authorID=0 to list all activities (admin and coordinators).
func (r *ActivityRepository) ListByAuthorPaginated(ctx context.Context, authorID, limit, offset int) ([]model.Activity, int, error) {
	// 1. Get total count
	countQuery := `SELECT COUNT(*) FROM activities`
	var countArgs []interface{}
	if authorID > 0 {
		countQuery += ` WHERE author_id = $1`
		countArgs = append(countArgs, authorID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// 2. Get paginated data
	query := `SELECT a.id, a.title, a.description, a.subject_id, s.name,
	                 a.difficulty, a.time_limit_seconds, a.author_id, a.status,
	                 a.created_at, a.updated_at
	          FROM activities a
	          JOIN subjects s ON a.subject_id = s.id`
	var args []interface{}
	argIdx := 1

	if authorID > 0 {
		query += ` WHERE a.author_id = $1`
		args = append(args, authorID)
		argIdx++
	}

	query += ` ORDER BY a.created_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.SubjectID, &a.SubjectName,
			&a.Difficulty, &a.TimeLimitSeconds, &a.AuthorID, &a.Status,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		activities = append(activities, a)
	}
	return activities, total, rows.Err()
}

// ListPublished returns all activities with PUBLISHED status.
// Used for the student catalog and for cache prewarming on startup.
func (r *ActivityRepository) ListPublished(ctx context.Context) ([]model.Activity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.title, a.description, a.subject_id, s.name,
		        a.difficulty, a.time_limit_seconds, a.author_id, a.status,
		        a.created_at, a.updated_at
		 FROM activities a
		 JOIN subjects s ON a.subject_id = s.id
		 WHERE a.status = $1
		 ORDER BY a.created_at DESC`, model.ActivityStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.SubjectID, &a.SubjectName,
			&a.Difficulty, &a.TimeLimitSeconds, &a.AuthorID, &a.Status,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// Create inserts a new activity in DRAFT status.
func (r *ActivityRepository) Create(ctx context.Context, a *model.Activity) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO activities (title, description, subject_id, difficulty, time_limit_seconds, author_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		a.Title, a.Description, a.SubjectID, a.Difficulty,
		a.TimeLimitSeconds, a.AuthorID, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// Update modifies an activity's metadata.
func (r *ActivityRepository) Update(ctx context.Context, a *model.Activity) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE activities
		 SET title = $1, description = $2, subject_id = $3, difficulty = $4,
		     time_limit_seconds = $5, updated_at = NOW()
		 WHERE id = $6`,
		a.Title, a.Description, a.SubjectID, a.Difficulty, a.TimeLimitSeconds, a.ID)
	return err
}

// UpdateStatus updates an activity's status.
func (r *ActivityRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ActivityStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE activities SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	return err
}

// Delete removes an activity and its questions (cascade).
func (r *ActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	return err
}

// ListQuestions retrieves all questions for an activity, ordered by order_num.
func (r *ActivityRepository) ListQuestions(ctx context.Context, activityID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, activity_id, kind, prompt, visual, explanation, order_num,
		        options, correct_option, correct_answer, accepted_answers,
		        left_items, right_items, correct_mapping
		 FROM questions WHERE activity_id = $1
		 ORDER BY order_num`, activityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ActivityID, &q.Kind, &q.Prompt, &q.Visual, &q.Explanation, &q.OrderNum,
			&q.Options, &q.CorrectOption, &q.CorrectAnswer, &q.AcceptedAnswers,
			&q.LeftItems, &q.RightItems, &q.CorrectMapping); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// AddQuestion inserts a single question.
func (r *ActivityRepository) AddQuestion(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (activity_id, kind, prompt, visual, explanation, order_num,
		                        options, correct_option, correct_answer, accepted_answers,
		                        left_items, right_items, correct_mapping)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id`,
		q.ActivityID, q.Kind, q.Prompt, q.Visual, q.Explanation, q.OrderNum,
		q.Options, q.CorrectOption, q.CorrectAnswer, q.AcceptedAnswers,
		q.LeftItems, q.RightItems, q.CorrectMapping,
	).Scan(&q.ID)
}

// ReplaceQuestions atomically swaps the full question list of an activity.
func (r *ActivityRepository) ReplaceQuestions(ctx context.Context, activityID uuid.UUID, questions []model.Question) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE activity_id = $1`, activityID); err != nil {
			return err
		}
		for i := range questions {
			q := &questions[i]
			q.ActivityID = activityID
			if err := tx.QueryRow(ctx,
				`INSERT INTO questions (activity_id, kind, prompt, visual, explanation, order_num,
				                        options, correct_option, correct_answer, accepted_answers,
				                        left_items, right_items, correct_mapping)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
				 RETURNING id`,
				q.ActivityID, q.Kind, q.Prompt, q.Visual, q.Explanation, q.OrderNum,
				q.Options, q.CorrectOption, q.CorrectAnswer, q.AcceptedAnswers,
				q.LeftItems, q.RightItems, q.CorrectMapping,
			).Scan(&q.ID); err != nil {
				return err
			}
		}
		return nil
	})
}
