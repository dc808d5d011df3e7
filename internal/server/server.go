// Package server exposes the HTTP API: voice listing, device telemetry,
// generation, and static serving of generated audio files.
package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/book-expert/neo-tts/internal/core"
	"github.com/book-expert/neo-tts/internal/device"
	"github.com/book-expert/neo-tts/internal/fsutil"
	"github.com/book-expert/neo-tts/internal/registry"
	"github.com/book-expert/neo-tts/internal/voices"
)

const (
	apiTitle   = "Neo TTS"
	apiVersion = "1.0.0"

	// outputURLPrefix is the public path generated audio is served under.
	outputURLPrefix = "/static/output/"
)

// errorBody is the error payload shape at the request boundary.
type errorBody struct {
	status  int
	Message string `json:"error"`
}

func (e *errorBody) Error() string { return e.Message }

// GetStatus implements huma.StatusError.
func (e *errorBody) GetStatus() int { return e.status }

func init() {
	// All failures surface as {"error": message} with a failure status.
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if err != nil {
				message = fmt.Sprintf("%s: %s", message, err.Error())

				break
			}
		}

		return &errorBody{status: status, Message: message}
	}
}

// Server wires the generation core to its HTTP surface.
type Server struct {
	mux       *http.ServeMux
	generator core.Generator
	registry  *registry.Registry
	catalog   *voices.Catalog
	outputDir string
	log       *logger.Logger
}

// New creates a server and registers all routes on an internal mux.
func New(
	generator core.Generator,
	reg *registry.Registry,
	catalog *voices.Catalog,
	outputDir string,
	log *logger.Logger,
) *Server {
	mux := http.NewServeMux()

	server := &Server{
		mux:       mux,
		generator: generator,
		registry:  reg,
		catalog:   catalog,
		outputDir: outputDir,
		log:       log,
	}

	api := humago.New(mux, huma.DefaultConfig(apiTitle, apiVersion))
	server.RegisterAPI(api)

	mux.HandleFunc("GET "+outputURLPrefix+"{filename}", server.handleAudioFile)
	mux.HandleFunc("GET /health", server.handleHealth)

	return server
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// voicesOutput is the response for the voice-listing endpoint.
type voicesOutput struct {
	Body struct {
		Voices []string `json:"voices"`
	}
}

// deviceInfoOutput is the response for the device-telemetry endpoint.
type deviceInfoOutput struct {
	Body struct {
		DeviceInfo *device.Info  `json:"device_info"`
		GPUUsage   *device.Usage `json:"gpu_usage"`
		Timestamp  float64       `json:"timestamp"`
	}
}

// generateInput is the request body for the generation endpoint.
type generateInput struct {
	Body struct {
		Model string `json:"model" doc:"Registered model name"`
		Voice string `json:"voice,omitempty" required:"false" doc:"Voice display name or canonical code"`
		Text  string `json:"text" doc:"Text to synthesize"`
	}
}

// generateOutput is the response body for a completed generation.
type generateOutput struct {
	Body struct {
		AudioURL       string        `json:"audio_url"`
		Model          string        `json:"model"`
		Voice          string        `json:"voice"`
		AudioDuration  float64       `json:"audio_duration"`
		GenerationTime float64       `json:"generation_time"`
		GPUUsage       *device.Usage `json:"gpu_usage"`
	}
}

// RegisterAPI attaches the JSON operations to a huma API. Split out from New
// so tests can register against a humatest API.
func (s *Server) RegisterAPI(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-voices",
		Method:      http.MethodGet,
		Path:        "/api/voices/{model}",
		Summary:     "List voice display names for a model",
	}, s.handleListVoices)

	huma.Register(api, huma.Operation{
		OperationID: "device-info",
		Method:      http.MethodGet,
		Path:        "/api/device-info",
		Summary:     "Report host device telemetry",
	}, s.handleDeviceInfo)

	huma.Register(api, huma.Operation{
		OperationID: "generate",
		Method:      http.MethodPost,
		Path:        "/api/generate",
		Summary:     "Generate audio from text",
	}, s.handleGenerate)
}

func (s *Server) handleListVoices(
	ctx context.Context,
	input *struct {
		Model string `path:"model" doc:"Registered model name"`
	},
) (*voicesOutput, error) {
	backend, backendErr := s.registry.Get(ctx, input.Model)
	if backendErr != nil {
		return nil, s.apiError(backendErr)
	}

	codes, listErr := backend.ListVoices(ctx)
	if listErr != nil {
		return nil, s.apiError(listErr)
	}

	output := &voicesOutput{}
	output.Body.Voices = s.catalog.DisplayNames(codes)

	return output, nil
}

func (s *Server) handleDeviceInfo(
	ctx context.Context,
	_ *struct{},
) (*deviceInfoOutput, error) {
	info, infoErr := device.CollectInfo(ctx)
	if infoErr != nil {
		return nil, s.apiError(infoErr)
	}

	output := &deviceInfoOutput{}
	output.Body.DeviceInfo = info
	output.Body.GPUUsage = device.CollectUsage(ctx)
	output.Body.Timestamp = float64(time.Now().UnixNano()) / float64(time.Second)

	return output, nil
}

func (s *Server) handleGenerate(
	ctx context.Context,
	input *generateInput,
) (*generateOutput, error) {
	result, genErr := s.generator.Generate(ctx, core.GenerationRequest{
		Model: input.Body.Model,
		Voice: input.Body.Voice,
		Text:  input.Body.Text,
	})
	if genErr != nil {
		s.log.Error("Generation failed: %v", genErr)

		return nil, s.apiError(genErr)
	}

	output := &generateOutput{}
	output.Body.AudioURL = outputURLPrefix + result.Filename
	output.Body.Model = result.Model
	output.Body.Voice = result.Voice
	output.Body.AudioDuration = roundHundredths(result.AudioDurationSeconds)
	output.Body.GenerationTime = roundHundredths(result.GenerationTimeSeconds)
	output.Body.GPUUsage = device.CollectUsage(ctx)

	return output, nil
}

// handleAudioFile serves a previously generated audio file from the output
// directory. Only bare audio file names are accepted.
func (s *Server) handleAudioFile(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	if filename == "" || filename != filepath.Base(filename) || !fsutil.IsValidAudioFile(filename) {
		http.NotFound(w, r)

		return
	}

	http.ServeFile(w, r, filepath.Join(s.outputDir, filename))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	_, writeErr := w.Write([]byte(`{"status":"ok"}`))
	if writeErr != nil {
		s.log.Warn("Failed to write health response: %v", writeErr)
	}
}

// apiError maps the core error taxonomy onto HTTP statuses.
func (s *Server) apiError(err error) error {
	switch {
	case errors.Is(err, core.ErrInvalidRequest):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, core.ErrVoiceUnavailable):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, core.ErrUnknownModel):
		return huma.Error404NotFound(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}

func roundHundredths(value float64) float64 {
	return math.Round(value*100) / 100
}
