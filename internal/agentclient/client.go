// Package agentclient wraps the HTTP services the discharge pipeline
// depends on: the browser automation agent, the verification service,
// and the task generation model endpoint.
package agentclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ExtractionClient talks to the browser automation agent that logs into
// the hospital portal and pulls clinical data for a patient.
type ExtractionClient struct {
	http *resty.Client
}

func NewExtractionClient(baseURL string, timeout time.Duration) *ExtractionClient {
	return &ExtractionClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

type agentRequest struct {
	Prompt         string `json:"prompt"`
	ExpectedOutput string `json:"expected_output"`
}

// Extract sends the extraction prompt to the agent and returns its raw
// text report. The agent echoes the request with expected_output filled
// in with the result.
func (c *ExtractionClient) Extract(ctx context.Context, prompt string) (string, error) {
	var out agentRequest
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(agentRequest{Prompt: prompt}).
		SetResult(&out).
		Post("/process")
	if err != nil {
		return "", fmt.Errorf("extraction agent request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("extraction agent returned %s", resp.Status())
	}
	return out.ExpectedOutput, nil
}

// VerificationClient notifies the downstream verification service that a
// patient's extraction finished. Failures are reported but never block
// the pipeline.
type VerificationClient struct {
	http *resty.Client
}

func NewVerificationClient(url string, timeout time.Duration) *VerificationClient {
	return &VerificationClient{
		http: resty.New().
			SetBaseURL(url).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

func (c *VerificationClient) NotifyExtractionComplete(ctx context.Context, patientID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"patient_id": patientID}).
		Post("")
	if err != nil {
		return fmt.Errorf("verification request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("verification service returned %s", resp.Status())
	}
	return nil
}

// ModelClient calls a chat-completions style endpoint to draft discharge
// tasks from an extraction snapshot.
type ModelClient struct {
	http  *resty.Client
	model string
}

func NewModelClient(url, apiKey string, timeout time.Duration) *ModelClient {
	return &ModelClient{
		http: resty.New().
			SetBaseURL(url).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetAuthToken(apiKey),
		model: "gpt-4o-mini",
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateTasks sends the synthesis prompt and returns the model's raw
// text reply. Callers are responsible for parsing any JSON out of it.
func (c *ModelClient) GenerateTasks(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.3,
	}
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("")
	if err != nil {
		return "", fmt.Errorf("task model request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("task model returned %s", resp.Status())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("task model returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
