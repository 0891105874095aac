package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Mhdiwe/Viral/processing"
	"github.com/Mhdiwe/Viral/tasks"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// TaskHandler is a function that processes a task payload.
type TaskHandler func(ctx context.Context, payload string) error

// Queue pushes tasks onto Redis lists.
type Queue struct {
	RDB *redis.Client
}

// Enqueue adds a new task to a queue.
func (q *Queue) Enqueue(ctx context.Context, queueName string, payload interface{}) error {
	payloadStr, err := tasks.Marshal(payload)
	if err != nil {
		return err
	}
	return q.RDB.LPush(ctx, queueName, payloadStr).Err()
}

// Processor holds dependencies and registered task handlers.
type Processor struct {
	*Queue
	DB       *gorm.DB
	Pipeline *processing.Pipeline
	handlers map[string]TaskHandler
}

// NewProcessor creates a worker processor with the pipeline handlers registered.
func NewProcessor(db *gorm.DB, rdb *redis.Client, pipeline *processing.Pipeline) *Processor {
	p := &Processor{
		Queue:    &Queue{RDB: rdb},
		DB:       db,
		Pipeline: pipeline,
		handlers: make(map[string]TaskHandler),
	}
	p.Register(tasks.QueueVoiceover, p.HandleVoiceover)
	p.Register(tasks.QueueVisuals, p.HandleVisuals)
	p.Register(tasks.QueueRender, p.HandleRender)
	return p
}

// Register maps a queue name (task type) to a handler function.
func (p *Processor) Register(queueName string, handler TaskHandler) {
	p.handlers[queueName] = handler
	slog.Info("registered handler", "queue", queueName)
}

// Listen blocks on the given queues and runs one task at a time until ctx ends.
func (p *Processor) Listen(ctx context.Context, queueNames ...string) {
	slog.Info("worker listening", "queues", queueNames)

	for {
		result, err := p.RDB.BRPop(ctx, 5*time.Second, queueNames...).Result()
		if ctx.Err() != nil {
			slog.Info("worker stopping")
			return
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			slog.Error("error popping from queue", "error", err)
			time.Sleep(time.Second)
			continue
		}

		// result[0] is the queue name, result[1] is the payload
		queueName, payload := result[0], result[1]

		handler, ok := p.handlers[queueName]
		if !ok {
			slog.Error("no handler registered", "queue", queueName)
			continue
		}

		slog.Info("received task", "queue", queueName)
		if err := handler(ctx, payload); err != nil {
			// TODO: move payloads that keep failing to a dead-letter list instead of dropping them.
			slog.Error("error processing task", "queue", queueName, "error", err)
		}
	}
}
