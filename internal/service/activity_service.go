package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aulaplay/aulaplay-backend/internal/config"
	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/aulaplay/aulaplay-backend/internal/repository"
	"github.com/aulaplay/aulaplay-backend/internal/response"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrNotActivityAuthor    = errors.New("not the author of this activity")
	ErrNoQuestions          = errors.New("activity has no questions, cannot publish")
	ErrActivityNotDraft     = errors.New("activity status is not DRAFT")
	ErrActivityNotPublished = errors.New("activity status is not PUBLISHED")
	ErrInvalidQuestion      = errors.New("question definition is invalid")
)

// ActivityService handles activity business logic and Redis payload caching.
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(activityRepo *repository.ActivityRepository, rdb *redis.Client, log zerolog.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "activity_service").Logger(),
	}
}

// GetByID retrieves an activity by its UUID, without questions.
func (s *ActivityService) GetByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	return s.activityRepo.GetByID(ctx, id)
}

// GetWithQuestions retrieves an activity together with its questions,
// including the answer key. Staff use only.
func (s *ActivityService) GetWithQuestions(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	return s.activityRepo.GetWithQuestions(ctx, id)
}

// ListByAuthor retrieves activities, filtered by author unless the caller may
// see everything (authorID=0).
func (s *ActivityService) ListByAuthor(ctx context.Context, authorID, page, perPage int) ([]model.Activity, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	activities, total, err := s.activityRepo.ListByAuthorPaginated(ctx, authorID, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if activities == nil {
		activities = []model.Activity{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return activities, pagination, nil
}

// ListPublished returns the catalog of published activities students can start.
func (s *ActivityService) ListPublished(ctx context.Context) ([]model.Activity, error) {
	activities, err := s.activityRepo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	return activities, nil
}

// Create inserts a new activity as DRAFT.
func (s *ActivityService) Create(ctx context.Context, activity *model.Activity) error {
	activity.Status = model.ActivityStatusDraft
	return s.activityRepo.Create(ctx, activity)
}

// Update modifies an existing draft activity.
func (s *ActivityService) Update(ctx context.Context, authorID int, activity *model.Activity) error {
	existing, err := s.activityRepo.GetByID(ctx, activity.ID)
	if err != nil {
		return err
	}
	if authorID != 0 && existing.AuthorID != authorID {
		return ErrNotActivityAuthor
	}
	if existing.Status != model.ActivityStatusDraft {
		return ErrActivityNotDraft
	}
	return s.activityRepo.Update(ctx, activity)
}

// Delete removes a draft activity.
func (s *ActivityService) Delete(ctx context.Context, id uuid.UUID, authorID int) error {
	existing, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if authorID != 0 && existing.AuthorID != authorID {
		return ErrNotActivityAuthor
	}
	if existing.Status != model.ActivityStatusDraft {
		return ErrActivityNotDraft
	}
	return s.activityRepo.Delete(ctx, id)
}

// AddQuestion validates and appends a question to a draft activity.
func (s *ActivityService) AddQuestion(ctx context.Context, authorID int, q *model.Question) error {
	existing, err := s.activityRepo.GetByID(ctx, q.ActivityID)
	if err != nil {
		return err
	}
	if authorID != 0 && existing.AuthorID != authorID {
		return ErrNotActivityAuthor
	}
	if existing.Status != model.ActivityStatusDraft {
		return ErrActivityNotDraft
	}
	q.Normalize()
	if err := q.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	return s.activityRepo.AddQuestion(ctx, q)
}

// ReplaceQuestions validates and swaps the full question list of a draft activity.
func (s *ActivityService) ReplaceQuestions(ctx context.Context, authorID int, activityID uuid.UUID, questions []model.Question) error {
	existing, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return err
	}
	if authorID != 0 && existing.AuthorID != authorID {
		return ErrNotActivityAuthor
	}
	if existing.Status != model.ActivityStatusDraft {
		return ErrActivityNotDraft
	}
	for i := range questions {
		questions[i].OrderNum = i
		questions[i].Normalize()
		if err := questions[i].Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
		}
	}
	return s.activityRepo.ReplaceQuestions(ctx, activityID, questions)
}

// ListQuestions retrieves the full question list, answer key included.
func (s *ActivityService) ListQuestions(ctx context.Context, activityID uuid.UUID) ([]model.Question, error) {
	return s.activityRepo.ListQuestions(ctx, activityID)
}

// Publish validates the activity, caches its student payload in Redis and
// flips the status to PUBLISHED. Malformed question sets never go live.
func (s *ActivityService) Publish(ctx context.Context, activityID uuid.UUID, authorID int) error {
	activity, err := s.activityRepo.GetWithQuestions(ctx, activityID)
	if err != nil {
		return fmt.Errorf("get activity: %w", err)
	}

	if authorID != 0 && activity.AuthorID != authorID {
		return ErrNotActivityAuthor
	}
	if activity.Status != model.ActivityStatusDraft {
		return ErrActivityNotDraft
	}
	if len(activity.Questions) == 0 {
		return ErrNoQuestions
	}
	if err := activity.Validate(); err != nil {
		return fmt.Errorf("validate activity: %w", err)
	}

	// Prewarm cache for this activity.
	if err := s.WarmActivityCache(ctx, activity); err != nil {
		return err
	}

	// Update status in PostgreSQL.
	if err := s.activityRepo.UpdateStatus(ctx, activityID, model.ActivityStatusPublished); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.log.Info().Str("activity_id", activityID.String()).Msg("Activity published")
	return nil
}

// Archive retires a published activity and drops its cached payload.
func (s *ActivityService) Archive(ctx context.Context, activityID uuid.UUID, authorID int) error {
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return fmt.Errorf("get activity: %w", err)
	}

	if authorID != 0 && activity.AuthorID != authorID {
		return ErrNotActivityAuthor
	}
	if activity.Status != model.ActivityStatusPublished {
		return ErrActivityNotPublished
	}

	if err := s.activityRepo.UpdateStatus(ctx, activityID, model.ActivityStatusArchived); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.ActivityPayloadKey(activityID.String()))
	pipe.Del(ctx, config.CacheKey.ActivityDurationKey(activityID.String()))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("activity_id", activityID.String()).Msg("Failed to drop cached payload")
	}

	s.log.Info().Str("activity_id", activityID.String()).Msg("Activity archived")
	return nil
}

// WarmActivityCache loads an activity's sanitized payload and its time limit
// from PostgreSQL into Redis. Used by Publish and PrewarmAllCaches.
func (s *ActivityService) WarmActivityCache(ctx context.Context, activity *model.Activity) error {
	if len(activity.Questions) == 0 {
		questions, err := s.activityRepo.ListQuestions(ctx, activity.ID)
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}
		activity.Questions = questions
	}
	if len(activity.Questions) == 0 {
		return ErrNoQuestions
	}

	payloadJSON, err := json.Marshal(activity.Payload())
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Cache payload and duration atomically via pipeline.
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ActivityPayloadKey(activity.ID.String()), payloadJSON, 0)
	pipe.Set(ctx, config.CacheKey.ActivityDurationKey(activity.ID.String()), activity.TimeLimitSeconds, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("activity_id", activity.ID.String()).
		Int("questions", len(activity.Questions)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads all published activities into Redis on application
// startup, so the first students of the day never hit a cold cache.
func (s *ActivityService) PrewarmAllCaches(ctx context.Context) error {
	activities, err := s.activityRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published activities: %w", err)
	}

	if len(activities) == 0 {
		s.log.Info().Msg("No published activities to prewarm")
		return nil
	}

	s.log.Info().Int("count", len(activities)).Msg("Prewarming published activities...")

	warmed := 0
	for i := range activities {
		if err := s.WarmActivityCache(ctx, &activities[i]); err != nil {
			s.log.Warn().
				Err(err).
				Str("activity_id", activities[i].ID.String()).
				Msg("Failed to warm activity, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(activities)).
		Msg("Prewarming complete")
	return nil
}

// GetActivityPayload retrieves the cached student payload from Redis. On a
// cache miss it falls back to PostgreSQL and self-heals the cache.
func (s *ActivityService) GetActivityPayload(ctx context.Context, activityID uuid.UUID) (*model.ActivityPayload, error) {
	key := config.CacheKey.ActivityPayloadKey(activityID.String())
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var payload model.ActivityPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		return &payload, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get payload: %w", err)
	}

	// Cache miss. Rebuild from the source of truth.
	activity, dbErr := s.activityRepo.GetWithQuestions(ctx, activityID)
	if dbErr != nil {
		return nil, fmt.Errorf("payload not cached and not in db: %w", dbErr)
	}
	if activity.Status != model.ActivityStatusPublished {
		return nil, ErrActivityNotPublished
	}
	if warmErr := s.WarmActivityCache(ctx, activity); warmErr != nil {
		s.log.Warn().Err(warmErr).Str("activity_id", activityID.String()).Msg("Self-heal cache warm failed")
	}
	return activity.Payload(), nil
}
