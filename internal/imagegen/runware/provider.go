// Package runware implements models.ImageGenerator against the Runware
// image inference HTTP API.
package runware

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kioskbooth/portraits/internal/config"
	"github.com/kioskbooth/portraits/pkg/models"
)

const (
	outputWidth   = 1024
	outputHeight  = 1024
	numberResults = 1
)

// Provider implements models.ImageGenerator using Runware.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewProvider creates a Runware provider from config.
func NewProvider(cfg config.RunwareConfig) *Provider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Provider{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *Provider) Name() string { return "runware" }

type inferenceTask struct {
	TaskType      string `json:"taskType"`
	TaskUUID      string `json:"taskUUID"`
	InputImage    string `json:"inputImage"`
	PromptText    string `json:"promptText"`
	Height        int    `json:"height"`
	Width         int    `json:"width"`
	NumberResults int    `json:"numberResults"`
}

type apiResponse struct {
	Data []struct {
		TaskUUID string `json:"taskUUID"`
		ImageURL string `json:"imageURL"`
		Error    string `json:"error"`
	} `json:"data"`
	Error string `json:"error"`
}

// Generate submits one image inference task and returns the URL of the
// generated image on Runware's side.
func (p *Provider) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	if p.apiKey == "" {
		return "", models.NewDomainError(models.CodeRunwareBadInput, "Runware API key not configured")
	}

	task := inferenceTask{
		TaskType:      "imageInference",
		TaskUUID:      req.JobID,
		InputImage:    base64.StdEncoding.EncodeToString(req.Image),
		PromptText:    req.Prompt,
		Height:        outputHeight,
		Width:         outputWidth,
		NumberResults: numberResults,
	}
	body, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("encoding runware task: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building runware request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	slog.Info("calling runware API", "job_id", req.JobID)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", models.NewDomainError(models.CodeRunwareTemporary, "Failed to reach generation service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode)
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", models.NewDomainError(models.CodeRunwareBadInput, "Malformed response from generation service")
	}

	if out.Error != "" {
		return "", models.NewDomainError(models.CodeRunwareBadInput, out.Error)
	}
	if len(out.Data) == 0 {
		return "", models.NewDomainError(models.CodeRunwareBadInput, "No image generated")
	}

	result := out.Data[0]
	if result.Error != "" {
		return "", models.NewDomainError(models.CodeRunwareBadInput, result.Error)
	}
	if result.ImageURL == "" {
		return "", models.NewDomainError(models.CodeRunwareBadInput, "No image URL in response")
	}

	slog.Info("runware generation successful", "job_id", req.JobID)
	return result.ImageURL, nil
}

func classifyStatus(status int) *models.DomainError {
	switch {
	case status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable:
		return models.NewDomainError(models.CodeRunwareTemporary, "Service temporarily unavailable")
	case status == http.StatusPaymentRequired || status == http.StatusForbidden:
		return models.NewDomainError(models.CodeRunwareQuota, "Quota exceeded")
	case status >= 500:
		return models.NewDomainError(models.CodeRunwareTemporary, fmt.Sprintf("API request failed: %d", status))
	default:
		return models.NewDomainError(models.CodeRunwareBadInput, fmt.Sprintf("API request failed: %d", status))
	}
}

var _ models.ImageGenerator = (*Provider)(nil)
