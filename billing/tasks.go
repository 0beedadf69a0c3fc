package billing

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// TypeGenerateBills is the task type for a scheduled bill generation run.
const TypeGenerateBills = "billing:generate"

// NewScheduler returns an asynq scheduler that enqueues a generation task on
// the given cron spec. The spec fires daily in the last days of each month;
// the generator itself gates on the actual last day, so months of any length
// work without per-month schedule entries.
func NewScheduler(redisOpt asynq.RedisClientOpt, cronSpec string) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.Local,
	})

	task := asynq.NewTask(TypeGenerateBills, nil)
	// Unique for 12h: a tick that fires while the previous run is still
	// queued or running collapses into it instead of overlapping.
	entryID, err := scheduler.Register(cronSpec, task, asynq.Unique(12*time.Hour), asynq.MaxRetry(3))
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"entry_id": entryID,
		"cron":     cronSpec,
	}).Info("Registered bill generation schedule")
	return scheduler, nil
}

// NewWorkerServer returns an asynq server with the bill generation handler
// mounted. Concurrency of 1 keeps runs strictly serial.
func NewWorkerServer(redisOpt asynq.RedisClientOpt, generator *Generator) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeGenerateBills, func(ctx context.Context, t *asynq.Task) error {
		_, err := generator.Run(ctx)
		return err
	})

	return srv, mux
}
