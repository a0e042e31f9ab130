package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/metrics"
	"project-delivery-api/internal/response"
)

// WorkflowAPI is the authoritative workflow backend as seen from a client.
// Every mutating call returns the server's view of the entity, which replaces
// any speculative local state.
type WorkflowAPI interface {
	FetchPhase(ctx context.Context, phaseID uuid.UUID) (*dto.PhaseResponse, error)
	FetchProjectPhases(ctx context.Context, projectID uuid.UUID) (*dto.ProjectPhasesResponse, error)
	FetchSubPhase(ctx context.Context, subPhaseID uuid.UUID) (*dto.SubPhaseDetailResponse, error)
	StartSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error)
	HoldSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.HoldSubPhaseRequest) (*dto.SubPhaseResponse, error)
	ResumeSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.ResumeSubPhaseRequest) (*dto.SubPhaseResponse, error)
	CompleteSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.CompleteSubPhaseRequest) (*dto.SubPhaseResponse, error)
	SkipSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.SkipSubPhaseRequest) (*dto.SubPhaseResponse, error)
	PatchSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.UpdateSubPhaseRequest) (*dto.SubPhaseResponse, error)
	PatchPhase(ctx context.Context, phaseID uuid.UUID, req *dto.UpdatePhaseRequest) (*dto.PhaseResponse, error)
}

// workflowClient implements WorkflowAPI over HTTP
type workflowClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewWorkflowClient creates a new workflow API client. The token is sent as a
// bearer credential on every request.
func NewWorkflowClient(baseURL, token string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) WorkflowAPI {
	return &workflowClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: m,
	}
}

func (c *workflowClient) FetchPhase(ctx context.Context, phaseID uuid.UUID) (*dto.PhaseResponse, error) {
	var result dto.PhaseResponse
	path := fmt.Sprintf("/api/delivery/phases/%s", phaseID)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *workflowClient) FetchProjectPhases(ctx context.Context, projectID uuid.UUID) (*dto.ProjectPhasesResponse, error) {
	var result dto.ProjectPhasesResponse
	path := fmt.Sprintf("/api/delivery/projects/%s/phases", projectID)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *workflowClient) FetchSubPhase(ctx context.Context, subPhaseID uuid.UUID) (*dto.SubPhaseDetailResponse, error) {
	var result dto.SubPhaseDetailResponse
	path := fmt.Sprintf("/api/delivery/sub-phases/%s", subPhaseID)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *workflowClient) StartSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	return c.subPhaseAction(ctx, subPhaseID, "start", req)
}

func (c *workflowClient) HoldSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.HoldSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	return c.subPhaseAction(ctx, subPhaseID, "hold", req)
}

func (c *workflowClient) ResumeSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.ResumeSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	return c.subPhaseAction(ctx, subPhaseID, "resume", req)
}

func (c *workflowClient) CompleteSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.CompleteSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	return c.subPhaseAction(ctx, subPhaseID, "complete", req)
}

func (c *workflowClient) SkipSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.SkipSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	return c.subPhaseAction(ctx, subPhaseID, "skip", req)
}

func (c *workflowClient) PatchSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.UpdateSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	var result dto.SubPhaseResponse
	path := fmt.Sprintf("/api/delivery/sub-phases/%s", subPhaseID)
	if err := c.do(ctx, http.MethodPatch, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *workflowClient) PatchPhase(ctx context.Context, phaseID uuid.UUID, req *dto.UpdatePhaseRequest) (*dto.PhaseResponse, error) {
	var result dto.PhaseResponse
	path := fmt.Sprintf("/api/delivery/phases/%s", phaseID)
	if err := c.do(ctx, http.MethodPatch, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *workflowClient) subPhaseAction(ctx context.Context, subPhaseID uuid.UUID, action string, body interface{}) (*dto.SubPhaseResponse, error) {
	var result dto.SubPhaseResponse
	path := fmt.Sprintf("/api/delivery/sub-phases/%s/%s", subPhaseID, action)
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do issues one request and decodes the success or error envelope into either
// out or a *response.AppError carrying the server's code and message verbatim
func (c *workflowClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if c.metrics != nil {
		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}
		c.metrics.RecordExternalAPICall("workflow-api", method, statusCode, duration, err)
	}

	if err != nil {
		c.logger.Warn("Workflow API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("workflow api unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope response.ErrorResponse
		if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
			return response.NewAppError(response.ErrCodeInternal,
				fmt.Sprintf("workflow api returned status %d", resp.StatusCode), "")
		}
		// The server's structured reason is surfaced verbatim
		return response.NewAppError(envelope.Error.Code, envelope.Error.Message, "")
	}

	if out == nil {
		return nil
	}
	var envelope response.SuccessResponse
	envelope.Data = out
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
