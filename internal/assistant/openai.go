package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/obs"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// Per-call-type sampling parameters. Fixed; not user-tunable.
const (
	introTemperature    = 0.8
	followupTemperature = 0.7
	outroTemperature    = 0.8
	scoreTemperature    = 0.7

	introMaxTokens    = 200
	followupMaxTokens = 150
	outroMaxTokens    = 150
	scoreMaxTokens    = 100
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// OpenAIClient implements Gateway against the OpenAI chat-completions API.
type OpenAIClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ Gateway = (*OpenAIClient)(nil)

// NewOpenAIClient constructs a client with a bounded per-call timeout. The
// timeout is the sole latency budget; a slow upstream surfaces as
// ErrGatewayFailure, never a hang.
func NewOpenAIClient(apiKey, model string, timeout time.Duration) *OpenAIClient {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the completions endpoint (test servers).
func (c *OpenAIClient) WithBaseURL(url string) *OpenAIClient {
	c.baseURL = url
	return c
}

func (c *OpenAIClient) GenerateIntroduction(ctx context.Context, candidateName, title, description string) (string, error) {
	return c.chat(ctx, "intro", systemInterviewer, introductionPrompt(candidateName, title, description), introMaxTokens, introTemperature)
}

func (c *OpenAIClient) GenerateFollowup(ctx context.Context, previousQuestion, previousAnswer string) (string, error) {
	return c.chat(ctx, "followup", systemInterviewer, followupPrompt(previousQuestion, previousAnswer), followupMaxTokens, followupTemperature)
}

func (c *OpenAIClient) GenerateOutro(ctx context.Context, candidateName string) (string, error) {
	return c.chat(ctx, "outro", systemInterviewer, outroPrompt(candidateName), outroMaxTokens, outroTemperature)
}

func (c *OpenAIClient) GenerateScore(ctx context.Context, transcript []Exchange) (string, error) {
	return c.chat(ctx, "score", systemScorer, scorePrompt(transcript), scoreMaxTokens, scoreTemperature)
}

func (c *OpenAIClient) chat(ctx context.Context, kind, system, user string, maxTokens int, temperature float64) (text string, err error) {
	start := time.Now()
	defer func() { obs.ObserveGatewayCall(kind, time.Since(start), err) }()

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrGatewayFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrGatewayFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrGatewayFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: upstream status %d", ErrGatewayFailure, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGatewayFailure, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: upstream error: %s", ErrGatewayFailure, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrGatewayFailure)
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
