package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eksamina/eksaminator-backend/internal/config"
	"github.com/eksamina/eksaminator-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	StatisticsBatchSize    = 50
	StatisticsBatchTimeout = 2 * time.Second
	StatisticsPollTimeout  = 1 * time.Second
	StatisticsCacheTTL     = 24 * time.Hour
)

// StatisticsWorker drains the refresh queue and recomputes cached exam
// statistics. Jobs arrive once per saved result; a batch of jobs for the
// same exam collapses into a single recompute.
type StatisticsWorker struct {
	results *repository.ResultRepository
	rdb     *redis.Client
	log     zerolog.Logger
}

func NewStatisticsWorker(results *repository.ResultRepository, rdb *redis.Client, log zerolog.Logger) *StatisticsWorker {
	return &StatisticsWorker{
		results: results,
		rdb:     rdb,
		log:     log.With().Str("component", "statistics_worker").Logger(),
	}
}

type statisticsPayload struct {
	ExamID string `json:"exam_id"`
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *StatisticsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("StatisticsWorker started")

	batch := make([]string, 0, StatisticsBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= StatisticsBatchSize || time.Since(lastFlush) >= StatisticsBatchTimeout) {

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
			item, err := w.rdb.BLPop(ctx, StatisticsPollTimeout, config.WorkerKey.RefreshStatisticsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p statisticsPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, p.ExamID)
		}
	}
}

// ----------------------------------------------------------------
// Batch refresh, deduplicated per exam
// ----------------------------------------------------------------

func (w *StatisticsWorker) flushSafe(ctx context.Context, batch []string) {
	if len(batch) == 0 {
		return
	}

	for _, examID := range DedupeExamIDs(batch) {
		if err := w.refresh(ctx, examID); err != nil {
			w.log.Error().Err(err).Str("exam_id", examID.String()).Msg("statistics refresh failed")
		}
	}
}

// DedupeExamIDs collapses repeated exam IDs, preserving first-seen order and
// dropping anything unparseable.
func DedupeExamIDs(raw []string) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(raw))
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (w *StatisticsWorker) refresh(ctx context.Context, examID uuid.UUID) error {
	stats, err := w.results.ComputeStatistics(ctx, examID)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	key := config.CacheKey.ExamStatisticsKey(examID.String())
	return w.rdb.Set(ctx, key, raw, StatisticsCacheTTL).Err()
}
