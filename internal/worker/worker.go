package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/internal/queue"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultPollInterval = time.Second
	defaultBaseBackoff  = 5 * time.Second
	defaultJobTimeout   = 30 * time.Second
	defaultDLQTimeout   = 5 * time.Second
)

var errUnknownJob = errors.New("unknown job type")

// JobHandler processes the payload of one job type. A returned error
// schedules a retry.
type JobHandler func(ctx context.Context, payload jsoniter.RawMessage) error

type WorkerPool struct {
	Redis         redis.UniversalClient
	WorkerNum     int
	PollInterval  time.Duration
	BaseBackoff   time.Duration
	JobTimeout    time.Duration
	DLQPopTimeout time.Duration
	JobChannel    chan string

	handlers map[string]JobHandler
	wg       sync.WaitGroup
}

func NewWorkerPool(redis redis.UniversalClient, workerNum int, pollInterval time.Duration) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	return &WorkerPool{
		Redis:         redis,
		WorkerNum:     workerNum,
		PollInterval:  pollInterval,
		BaseBackoff:   defaultBaseBackoff,
		JobTimeout:    defaultJobTimeout,
		DLQPopTimeout: defaultDLQTimeout,
		JobChannel:    make(chan string, workerNum),
		handlers:      make(map[string]JobHandler),
	}
}

// Register binds a handler to a job type. It must be called before Start.
func (wp *WorkerPool) Register(jobType string, handler JobHandler) {
	wp.handlers[jobType] = handler
}

// Start launches the workers and the queue poller. Jobs already taken off
// the queue are finished after ctx is cancelled; call Wait to block on that.
func (wp *WorkerPool) Start(ctx context.Context) {
	log.Info().Msgf("Starting worker pool with %d workers", wp.WorkerNum)

	for i := 0; i < wp.WorkerNum; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}

	wp.wg.Add(1)
	go wp.poll(ctx)
}

func (wp *WorkerPool) poll(ctx context.Context) {
	defer wp.wg.Done()
	defer close(wp.JobChannel)

	for {
		if ctx.Err() != nil {
			log.Info().Msg("Stopping worker pool")
			return
		}

		payload, err := wp.claimNext(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error().Err(err).Msg("Worker: failed to pop job")
			}
			wp.sleep(ctx)
			continue
		}
		if payload == "" {
			wp.sleep(ctx)
			continue
		}

		select {
		case wp.JobChannel <- payload:
		case <-ctx.Done():
			wp.requeue(payload)
			log.Info().Msg("Stopping worker pool")
			return
		}
	}
}

// claimNext takes the earliest due job off the sorted set. Only the caller
// whose ZREM removes the member owns the job, so several pools may share a
// queue.
func (wp *WorkerPool) claimNext(ctx context.Context) (string, error) {
	result, err := wp.Redis.ZRangeByScore(ctx, queue.PriorityQueueKey, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    strconv.FormatInt(time.Now().Unix(), 10),
		Offset: 0,
		Count:  1,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	if len(result) == 0 {
		return "", nil
	}

	removed, err := wp.Redis.ZRem(ctx, queue.PriorityQueueKey, result[0]).Result()
	if err != nil {
		return "", err
	}
	if removed == 0 {
		return "", nil
	}
	return result[0], nil
}

func (wp *WorkerPool) requeue(payload string) {
	var job queue.Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := queue.NewProducer(wp.Redis).Enqueue(ctx, job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("Worker: failed to requeue job on shutdown")
	}
}

func (wp *WorkerPool) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(wp.PollInterval):
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.Debug().Msgf("Worker %d started", id)

	for payload := range wp.JobChannel {
		var job queue.Job
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			log.Warn().Err(err).Msgf("Worker %d: Failed to unmarshal job payload", id)
			jobsProcessed.WithLabelValues("unknown", "invalid").Inc()
			continue
		}

		// a claimed job runs to completion even during shutdown
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wp.JobTimeout)
		wp.process(jobCtx, job)
		cancel()
	}

	log.Debug().Msgf("Worker %d stopping", id)
}

func (wp *WorkerPool) process(ctx context.Context, job queue.Job) {
	err := wp.dispatch(ctx, job)
	if err == nil {
		jobsProcessed.WithLabelValues(job.Type, "done").Inc()
		return
	}

	job.Retry++
	job.ErrorMsg = err.Error()

	now := time.Now()
	if errors.Is(err, errUnknownJob) || job.Retry >= job.MaxRetry || now.Unix() > job.ExpireAt {
		wp.deadLetter(ctx, job)
		return
	}

	delay := wp.BaseBackoff * time.Duration(1<<job.Retry)
	job.RunAt = now.Add(delay).Unix()
	if err := queue.NewProducer(wp.Redis).Enqueue(ctx, job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("Worker: failed to schedule retry")
		return
	}

	jobsProcessed.WithLabelValues(job.Type, "retry").Inc()
	log.Warn().Str("job_id", job.ID).Str("type", job.Type).Err(err).Msgf("Retrying in %v (%d/%d)", delay, job.Retry, job.MaxRetry)
}

func (wp *WorkerPool) dispatch(ctx context.Context, job queue.Job) error {
	handler, ok := wp.handlers[job.Type]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownJob, job.Type)
	}
	return handler(ctx, job.Payload)
}

func (wp *WorkerPool) deadLetter(ctx context.Context, job queue.Job) {
	log.Error().Str("job_id", job.ID).Str("type", job.Type).Msg("Job moved to DLQ")

	dlqBytes, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("Worker: failed to marshal DLQ job")
		return
	}
	if err := wp.Redis.RPush(ctx, queue.DeadLetterKey, dlqBytes).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("Worker: failed to push job to DLQ")
		return
	}

	jobsProcessed.WithLabelValues(job.Type, "dead").Inc()
	sendDLA(job)
}

var dlaCache = make(map[string]time.Time)
var dlaMu sync.Mutex

// sendDLA raises at most one dead letter alert per job type every ten minutes.
func sendDLA(job queue.Job) {
	dlaMu.Lock()
	defer dlaMu.Unlock()

	now := time.Now()
	lastAlert, ok := dlaCache[job.Type]
	if ok && now.Sub(lastAlert) < 10*time.Minute {
		return
	}

	log.Error().Str("job_id", job.ID).Str("type", job.Type).Str("error", job.ErrorMsg).Msg("Dead Letter Alert: Job failed permanently")

	dlaCache[job.Type] = now
}

func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
	log.Info().Msg("All workers have stopped")
}
