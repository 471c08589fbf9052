package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/internal/entity"
	"github.com/xenn00/elearning-chat/internal/queue"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	DLQCollection = "dlq_jobs"
	dlqRetention  = 7 * 24 * time.Hour
)

// DLQArchive stores jobs that exhausted their retries.
type DLQArchive interface {
	Archive(ctx context.Context, job queue.Job) error
}

type MongoDLQArchive struct {
	collection *mongo.Collection
}

func NewMongoDLQArchive(client *mongo.Client, database string) *MongoDLQArchive {
	return &MongoDLQArchive{collection: client.Database(database).Collection(DLQCollection)}
}

func (a *MongoDLQArchive) Archive(ctx context.Context, job queue.Job) error {
	now := time.Now().UTC()
	doc := entity.DLQJob{
		JobID:      job.ID,
		Type:       job.Type,
		Payload:    []byte(job.Payload),
		ErrorMsg:   job.ErrorMsg,
		Status:     "dead",
		RetryCount: job.Retry,
		CreatedAt:  time.Unix(job.CreatedAt, 0).UTC(),
		FailedAt:   now,
		ExpireAt:   now.Add(dlqRetention),
	}

	_, err := a.collection.InsertOne(ctx, doc)
	return err
}

// LogDLQArchive only records the job in the log; used when no MongoDB is configured.
type LogDLQArchive struct{}

func (LogDLQArchive) Archive(_ context.Context, job queue.Job) error {
	log.Error().
		Str("job_id", job.ID).
		Str("type", job.Type).
		Str("error", job.ErrorMsg).
		Int("retry", job.Retry).
		Msg("DLQ job detected")
	return nil
}

// StartDLQWorker drains the DLQ list into archive until ctx is cancelled.
// A job the archive rejects is pushed back to the list.
func (wp *WorkerPool) StartDLQWorker(ctx context.Context, archive DLQArchive) {
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()

		log.Info().Msg("DLQ worker started")
		for {
			if ctx.Err() != nil {
				log.Info().Msg("DLQ worker stopping")
				return
			}

			result, err := wp.Redis.BLPop(ctx, wp.DLQPopTimeout, queue.DeadLetterKey).Result()
			if errors.Is(err, redis.Nil) {
				continue
			} else if err != nil {
				if ctx.Err() == nil {
					log.Error().Err(err).Msg("DLQWorker pop failed")
					wp.sleep(ctx)
				}
				continue
			}

			payload := result[1]
			var job queue.Job
			if err := json.Unmarshal([]byte(payload), &job); err != nil {
				log.Warn().Err(err).Msg("DLQWorker invalid job payload")
				dlqArchived.WithLabelValues("invalid").Inc()
				continue
			}

			archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wp.JobTimeout)
			err = archive.Archive(archiveCtx, job)
			cancel()
			if err != nil {
				log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to archive DLQ job")
				dlqArchived.WithLabelValues("failed").Inc()

				// fallback: put it back on the list
				pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				wp.Redis.RPush(pushCtx, queue.DeadLetterKey, payload)
				cancel()
				wp.sleep(ctx)
				continue
			}

			dlqArchived.WithLabelValues("archived").Inc()
			log.Info().Str("job_id", job.ID).Str("type", job.Type).Msg("DLQ job archived")
		}
	}()
}
