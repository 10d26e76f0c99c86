package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aulaplay/aulaplay-backend/internal/config"
	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker drains completed session results from the Redis queue and
// persists them to PostgreSQL in batches.
type ResultWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewResultWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "result_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*model.Result, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var res model.Result
			if err := json.Unmarshal([]byte(item[1]), &res); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &res)
		}
	}
}

// ----------------------------------------------------------------
// Batch Upsert Wrapper
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*model.Result) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpsertResults(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk result upsert failed, using fallback")

		for _, res := range batch {
			if err := w.persistSingle(ctx, res); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed, requeueing")
				raw, _ := json.Marshal(res)
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("count", len(batch)).Msg("Results persisted")
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPSERT using UNNEST + alias
// ----------------------------------------------------------------

func (w *ResultWorker) bulkUpsertResults(ctx context.Context, batch []*model.Result) error {
	n := len(batch)

	activityIDs := make([]uuid.UUID, 0, n)
	students := make([]int, 0, n)
	scores := make([]int, 0, n)
	corrects := make([]int, 0, n)
	totals := make([]int, 0, n)
	elapsed := make([]int, 0, n)
	reviews := make([]string, 0, n)
	completedAts := make([]time.Time, 0, n)

	for _, res := range batch {
		review, err := json.Marshal(res.Review)
		if err != nil {
			return err
		}
		activityIDs = append(activityIDs, res.ActivityID)
		students = append(students, res.StudentID)
		scores = append(scores, res.Score)
		corrects = append(corrects, res.CorrectCount)
		totals = append(totals, res.TotalQuestions)
		elapsed = append(elapsed, res.ElapsedSeconds)
		reviews = append(reviews, string(review))
		completedAts = append(completedAts, res.CompletedAt)
	}

	query := `
		INSERT INTO activity_results
			(activity_id, student_id, score, correct_count, total_questions, elapsed_seconds, review, completed_at)
		SELECT
			u.activity_id,
			u.student_id,
			u.score,
			u.correct_count,
			u.total_questions,
			u.elapsed_seconds,
			u.review::jsonb,
			u.completed_at
		FROM UNNEST(
			$1::uuid[],
			$2::int[],
			$3::int[],
			$4::int[],
			$5::int[],
			$6::int[],
			$7::text[],
			$8::timestamptz[]
		) AS u (activity_id, student_id, score, correct_count, total_questions, elapsed_seconds, review, completed_at)
		ON CONFLICT (activity_id, student_id) DO UPDATE
		SET score = EXCLUDED.score,
		    correct_count = EXCLUDED.correct_count,
		    total_questions = EXCLUDED.total_questions,
		    elapsed_seconds = EXCLUDED.elapsed_seconds,
		    review = EXCLUDED.review,
		    completed_at = EXCLUDED.completed_at
	`

	_, err := w.pool.Exec(ctx, query,
		activityIDs, students, scores, corrects, totals, elapsed, reviews, completedAts)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single upsert
// ----------------------------------------------------------------

func (w *ResultWorker) persistSingle(ctx context.Context, res *model.Result) error {
	review, err := json.Marshal(res.Review)
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
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
		res.TotalQuestions, res.ElapsedSeconds, review, res.CompletedAt)

	return err
}
