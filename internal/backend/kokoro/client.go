// Package kokoro implements the Kokoro synthesis backend by communicating with
// a Kokoro-FastAPI-compatible HTTP service.
package kokoro

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// API endpoints and paths.
const (
	apiSpeech = "/v1/audio/speech"
	apiVoices = "/v1/audio/voices"
	apiHealth = "/health"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
	contentTypePCM    = "audio/pcm"
)

// pcmResponseFormat asks the service for raw sample data so segments can be
// concatenated before the WAV container is written.
const pcmResponseFormat = "pcm"

// Static errors.
var (
	ErrTextEmpty      = errors.New("text cannot be empty")
	ErrEmptyAudioData = errors.New("received empty audio data")
)

// Error message formats.
const (
	errFmtServiceError       = "kokoro service error (%s): %s"
	errFmtServiceNonOKStatus = "kokoro service returned non-OK status: %s, body: %s"
)

// Client is an HTTP client for the Kokoro synthesis service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// speechRequest is the JSON payload for a synthesis call.
type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// voicesResponse is the JSON payload returned by the voices endpoint.
type voicesResponse struct {
	Voices []string `json:"voices"`
}

// errorResponse is the structured error body the service returns on failure.
type errorResponse struct {
	Detail string `json:"detail"`
}

// NewClient creates an HTTP client for the Kokoro service. The baseURL should
// include the protocol and port (e.g. "http://localhost:8880"). The timeout
// applies to every request made by this client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize sends one text segment for synthesis with the given canonical
// voice code and returns the raw 16-bit mono PCM sample data.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, ErrTextEmpty
	}

	requestBody, marshalErr := json.Marshal(speechRequest{
		Model:          "kokoro",
		Input:          text,
		Voice:          voice,
		ResponseFormat: pcmResponseFormat,
	})
	if marshalErr != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", marshalErr)
	}

	url := c.baseURL + apiSpeech

	httpReq, reqErr := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewBuffer(requestBody),
	)
	if reqErr != nil {
		return nil, fmt.Errorf("failed to create request: %w", reqErr)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypePCM)

	resp, doErr := c.httpClient.Do(httpReq)
	if doErr != nil {
		return nil, fmt.Errorf(
			"failed to send request to kokoro service at %s: %w",
			c.baseURL,
			doErr,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	audioData, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", readErr)
	}

	if len(audioData) == 0 {
		return nil, ErrEmptyAudioData
	}

	return audioData, nil
}

// Voices returns the raw voice codes the service has loaded, in the order the
// service reports them.
func (c *Client) Voices(ctx context.Context) ([]string, error) {
	url := c.baseURL + apiVoices

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if reqErr != nil {
		return nil, fmt.Errorf("failed to create voices request: %w", reqErr)
	}

	resp, doErr := c.httpClient.Do(httpReq)
	if doErr != nil {
		return nil, fmt.Errorf(
			"failed to list voices from kokoro service at %s: %w",
			c.baseURL,
			doErr,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var payload voicesResponse

	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode voices response: %w", decodeErr)
	}

	return payload.Voices, nil
}

// HealthCheck verifies that the Kokoro service is running and reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	url := c.baseURL + apiHealth

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if reqErr != nil {
		return fmt.Errorf("failed to create health check request: %w", reqErr)
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return fmt.Errorf(
			"health check failed for service at %s: %w",
			c.baseURL,
			doErr,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}

	return nil
}

// parseErrorResponse attempts to decode a structured JSON error from the
// service, falling back to the raw body so diagnostics are preserved.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errorResp errorResponse

	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	if err == nil && errorResp.Detail != "" {
		return fmt.Errorf(errFmtServiceError, resp.Status, errorResp.Detail)
	}

	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf(errFmtServiceNonOKStatus, resp.Status, string(body))
}
