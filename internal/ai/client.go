// Package ai wraps the LLM provider behind a contract the rest of the
// pipeline can rely on: every call returns a Response with ResponseTimeMs
// populated, success or failure, and the client never persists anything
// itself. Audit logging is the caller's job.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-20241022"

	apiVersion = "2023-06-01"

	defaultMaxTokens   = 4000
	defaultTemperature = 0.7
)

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// Response is the outcome of one generation call. Content is nil-safe:
// when Success is false Content is empty and Error holds a human-readable
// reason. ResponseTimeMs is always measured from call start.
type Response struct {
	Success        bool   `json:"success"`
	Content        string `json:"content"`
	Error          string `json:"error,omitempty"`
	Usage          *Usage `json:"usage,omitempty"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
}

// CallOptions overrides the per-call model parameters. Zero values keep
// the client defaults.
type CallOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	HasTemp     bool // distinguishes an explicit 0 from "not set"
}

type Client struct {
	http    *http.Client
	baseURL *url.URL
	apiKey  string
	model   string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New builds a client. An empty apiKey is allowed: calls then return the
// deterministic mock response so the pipeline stays exercisable without
// live credentials.
func New(apiKey string, opts ...Option) *Client {
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: u,
		apiKey:  apiKey,
		model:   DefaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Model returns the model name the client will use absent an override.
func (c *Client) Model() string { return c.model }

// messages API wire types
type messageRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	System      string        `json:"system"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends a system+user prompt pair to the provider. It never
// returns a Go error: provider failures come back as Success=false with
// a readable Error, within the HTTP client's timeout bound.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string, opts CallOptions) Response {
	start := time.Now()

	if c.apiKey == "" {
		return mockResponse(start)
	}

	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}
	maxTokens := defaultMaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	temperature := defaultTemperature
	if opts.HasTemp {
		temperature = opts.Temperature
	}

	reqBody, err := json.Marshal(messageRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      systemPrompt,
		Messages:    []chatMessage{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return failure(start, fmt.Sprintf("marshal request: %v", err))
	}

	endpoint := c.baseURL.JoinPath("/v1/messages").String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return failure(start, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return failure(start, fmt.Sprintf("provider request failed: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(start, fmt.Sprintf("read provider response: %v", err))
	}

	var mr messageResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return failure(start, fmt.Sprintf("decode provider response (status %d): %v", resp.StatusCode, err))
	}
	if resp.StatusCode >= 300 {
		msg := fmt.Sprintf("provider status %d", resp.StatusCode)
		if mr.Error != nil {
			msg = fmt.Sprintf("provider status %d: %s", resp.StatusCode, mr.Error.Message)
		}
		return failure(start, msg)
	}
	if len(mr.Content) == 0 || mr.Content[0].Type != "text" {
		return failure(start, "unexpected response shape from provider")
	}

	return Response{
		Success: true,
		Content: mr.Content[0].Text,
		Usage: &Usage{
			InputTokens:  mr.Usage.InputTokens,
			OutputTokens: mr.Usage.OutputTokens,
			TotalTokens:  mr.Usage.InputTokens + mr.Usage.OutputTokens,
		},
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
}

// GenerateWorkout uses a larger token budget: workout JSON is verbose.
func (c *Client) GenerateWorkout(ctx context.Context, systemPrompt, userPrompt string) Response {
	return c.Generate(ctx, systemPrompt, userPrompt, CallOptions{MaxTokens: 4000})
}

// GenerateMotivation uses a small budget and higher temperature for
// creative variety.
func (c *Client) GenerateMotivation(ctx context.Context, systemPrompt, userPrompt string) Response {
	return c.Generate(ctx, systemPrompt, userPrompt, CallOptions{MaxTokens: 500, Temperature: 0.8, HasTemp: true})
}

// AdaptWorkout uses a moderate budget and lower temperature so
// adaptation analyses stay consistent.
func (c *Client) AdaptWorkout(ctx context.Context, systemPrompt, userPrompt string) Response {
	return c.Generate(ctx, systemPrompt, userPrompt, CallOptions{MaxTokens: 3000, Temperature: 0.6, HasTemp: true})
}

func failure(start time.Time, msg string) Response {
	return Response{
		Success:        false,
		Error:          msg,
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
}

func mockResponse(start time.Time) Response {
	return Response{
		Success: true,
		Content: mockWorkoutJSON,
		Usage: &Usage{
			InputTokens:  450,
			OutputTokens: 1200,
			TotalTokens:  1650,
		},
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
}

// mockWorkoutJSON is the canned workout served when no API key is
// configured. It parses cleanly through the workout schema so the whole
// pipeline can be exercised end to end without credentials.
const mockWorkoutJSON = `[
  {
    "id": 1,
    "name": "Push-ups",
    "sets": 3,
    "reps": "8-12",
    "restTime": 90,
    "instructions": "Keep your core tight and lower your chest to the ground. Push back up with control. You've got this!",
    "hasWeight": false,
    "alternativeExercises": ["Knee Push-ups", "Wall Push-ups", "Incline Push-ups", "Diamond Push-ups", "Wide-Grip Push-ups"]
  },
  {
    "id": 2,
    "name": "Bodyweight Squats",
    "sets": 3,
    "reps": "12-15",
    "restTime": 90,
    "instructions": "Sit back like you're sitting in a chair, keep your chest up and core engaged. Drive through your heels to stand up!",
    "hasWeight": false,
    "alternativeExercises": ["Chair Squats", "Jump Squats", "Sumo Squats", "Single Leg Squats", "Pulse Squats"]
  },
  {
    "id": 3,
    "name": "Dumbbell Rows",
    "sets": 3,
    "reps": "10-12",
    "restTime": 90,
    "instructions": "Pull the weight to your ribs, squeeze your shoulder blades together. Control the weight down!",
    "hasWeight": true,
    "targetWeight": 25,
    "weightUnit": "lbs",
    "alternativeExercises": ["Bent-over Rows", "Single-Arm Rows", "Resistance Band Rows", "Inverted Rows", "T-Bar Rows"]
  },
  {
    "id": 4,
    "name": "Plank Hold",
    "sets": 3,
    "reps": "30-45s",
    "restTime": 60,
    "instructions": "Hold your body in a straight line from head to heels. Keep breathing and stay strong!",
    "hasWeight": false,
    "alternativeExercises": ["Knee Plank", "Side Plank", "Plank Up-Downs", "Mountain Climber Plank", "Plank with Leg Lift"]
  },
  {
    "id": 5,
    "name": "Dumbbell Shoulder Press",
    "sets": 3,
    "reps": "8-10",
    "restTime": 90,
    "instructions": "Press the weights overhead in a controlled motion. Keep your core tight and don't arch your back!",
    "hasWeight": true,
    "targetWeight": 20,
    "weightUnit": "lbs",
    "alternativeExercises": ["Push Press", "Pike Push-ups", "Handstand Push-ups", "Arnold Press", "Military Press"]
  }
]`
