package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/flexflow/flexflow/internal/ai"
	"github.com/flexflow/flexflow/internal/config"
	"github.com/flexflow/flexflow/internal/email"
	"github.com/flexflow/flexflow/internal/flow"
	"github.com/flexflow/flexflow/internal/jobs"
	"github.com/flexflow/flexflow/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "worker").Logger()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("unable to connect to database:", err)
	}
	defer pool.Close()
	st := store.New(pool)

	client := ai.New(cfg.Anthropic.APIKey,
		ai.WithModel(cfg.Anthropic.Model),
		ai.WithBaseURL(cfg.Anthropic.BaseURL),
		ai.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Anthropic.TimeoutMS) * time.Millisecond}),
	)
	if !cfg.HasAnthropicKey() {
		log.Println("no ANTHROPIC_API_KEY set, serving mock AI responses")
	}

	emitter := jobs.NewEmitter(cfg.RedisAddr)
	defer func() {
		if err := emitter.Close(); err != nil {
			log.Printf("close emitter: %v", err)
		}
	}()

	flows := &flow.Flows{
		Store:   st,
		AI:      client,
		Emit:    emitter,
		Email:   email.NewSMTPSender(cfg.Email.SMTPAddr, cfg.Email.From),
		Log:     logger,
		BaseURL: cfg.BaseURL,
	}

	redis := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	// AI queue runs at low concurrency: each task holds a paid LLM call.
	aiSrv := asynq.NewServer(redis, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{jobs.QueueAI: 1},
	})
	aiMux := asynq.NewServeMux()
	aiMux.HandleFunc(jobs.TaskGenerateWorkout, handleTask("generate", func(ctx context.Context, raw []byte) error {
		var p jobs.GeneratePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("bad payload: %v: %w", err, asynq.SkipRetry)
		}
		res, err := flows.Generate(ctx, p)
		if err != nil {
			return skipIfNotFound(err)
		}
		log.Printf("[generate] done user=%s plan=%s fallback=%v", p.UserID, res.PlanID, res.FallbackUsed)
		return nil
	}))
	aiMux.HandleFunc(jobs.TaskAdaptWorkout, handleTask("adapt", func(ctx context.Context, raw []byte) error {
		var p jobs.AdaptPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("bad payload: %v: %w", err, asynq.SkipRetry)
		}
		res, err := flows.Adapt(ctx, p)
		if err != nil {
			return skipIfNotFound(err)
		}
		log.Printf("[adapt] done user=%s intensity=%s regen=%s", p.UserID, res.IntensityAdjustment, res.RegenerationFlowID)
		return nil
	}))
	aiMux.HandleFunc(jobs.TaskMotivate, handleTask("motivate", func(ctx context.Context, raw []byte) error {
		var p jobs.MotivatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("bad payload: %v: %w", err, asynq.SkipRetry)
		}
		res, err := flows.Motivate(ctx, p)
		if err != nil {
			return skipIfNotFound(err)
		}
		log.Printf("[motivate] done user=%s coach=%s", p.UserID, res.CoachID)
		return nil
	}))

	// Schedule queue is pure database work, so it runs wider.
	schedSrv := asynq.NewServer(redis, asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{jobs.QueueSchedule: 1},
	})
	schedMux := asynq.NewServeMux()
	schedMux.HandleFunc(jobs.TaskScheduleWorkout, handleTask("schedule", func(ctx context.Context, raw []byte) error {
		var p jobs.SchedulePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("bad payload: %v: %w", err, asynq.SkipRetry)
		}
		res, err := flows.Schedule(ctx, p)
		if err != nil {
			return skipIfNotFound(err)
		}
		log.Printf("[schedule] done user=%s scheduled=%d gaps=%d", p.UserID, res.Scheduled, res.GenerationNeeds)
		return nil
	}))
	schedMux.HandleFunc(jobs.TaskDailyReminders, handleTask("reminders", func(ctx context.Context, raw []byte) error {
		res, err := flows.SendDailyReminders(ctx, time.Now())
		if err != nil {
			return err
		}
		log.Printf("[reminders] done scheduled=%d sent=%d", res.Scheduled, res.Sent)
		return nil
	}))

	if err := aiSrv.Start(aiMux); err != nil {
		log.Fatal("ai server:", err)
	}
	if err := schedSrv.Start(schedMux); err != nil {
		log.Fatal("schedule server:", err)
	}

	// Daily reminder sweep at 07:00.
	scheduler := asynq.NewScheduler(redis, nil)
	if _, err := scheduler.Register("0 7 * * *",
		asynq.NewTask(jobs.TaskDailyReminders, nil),
		asynq.Queue(jobs.QueueSchedule),
	); err != nil {
		log.Fatal("register reminder schedule:", err)
	}

	log.Println("Worker running...")
	if err := scheduler.Run(); err != nil {
		log.Fatal("scheduler:", err)
	}
	aiSrv.Shutdown()
	schedSrv.Shutdown()
}

// handleTask wraps a flow handler with start/finish logging and timing.
func handleTask(tag string, fn func(ctx context.Context, raw []byte) error) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		log.Printf("[%s] start", tag)
		start := time.Now()
		err := fn(ctx, t.Payload())
		duration := time.Since(start)
		if err != nil {
			if errors.Is(err, asynq.SkipRetry) {
				log.Printf("[%s] permanent error duration=%v: %v (dropping task)", tag, duration, err)
			} else {
				log.Printf("[%s] retryable error duration=%v: %v", tag, duration, err)
			}
			return err
		}
		log.Printf("[%s] finished duration=%v", tag, duration)
		return nil
	}
}

// skipIfNotFound marks missing-entity failures permanent. Retrying a
// task for a user or workout that does not exist cannot succeed.
func skipIfNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}
