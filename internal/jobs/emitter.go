package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Emitter is the outbound event surface. Both the HTTP layer and the
// flows use it: the adapt flow re-emits generate events on regeneration,
// and the schedule flow fills plan-coverage gaps the same way.
type Emitter struct {
	client *asynq.Client
}

func NewEmitter(redisAddr string) *Emitter {
	return &Emitter{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

func (e *Emitter) Close() error {
	return e.client.Close()
}

// EmitGenerate enqueues a generate-workout flow instance and returns its
// flow id.
func (e *Emitter) EmitGenerate(p GeneratePayload) (string, error) {
	if p.FlowID == "" {
		p.FlowID = uuid.NewString()
	}
	return p.FlowID, e.emit(TaskGenerateWorkout, QueueAI, p, 10*time.Minute)
}

// EmitSchedule enqueues a schedule-workouts flow instance.
func (e *Emitter) EmitSchedule(p SchedulePayload) (string, error) {
	if p.FlowID == "" {
		p.FlowID = uuid.NewString()
	}
	return p.FlowID, e.emit(TaskScheduleWorkout, QueueSchedule, p, 5*time.Minute)
}

// EmitAdapt enqueues an adapt-workout flow instance.
func (e *Emitter) EmitAdapt(p AdaptPayload) (string, error) {
	if p.FlowID == "" {
		p.FlowID = uuid.NewString()
	}
	return p.FlowID, e.emit(TaskAdaptWorkout, QueueAI, p, 10*time.Minute)
}

// EmitMotivate enqueues a motivational message request.
func (e *Emitter) EmitMotivate(p MotivatePayload) (string, error) {
	if p.FlowID == "" {
		p.FlowID = uuid.NewString()
	}
	return p.FlowID, e.emit(TaskMotivate, QueueAI, p, 5*time.Minute)
}

func (e *Emitter) emit(taskType, queue string, payload any, timeout time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	_, err = e.client.Enqueue(asynq.NewTask(taskType, body),
		asynq.Queue(queue),
		asynq.MaxRetry(3),
		asynq.Timeout(timeout),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
