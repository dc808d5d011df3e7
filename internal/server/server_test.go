// Package server_test tests the HTTP surface against a stubbed generation core.
package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/logger"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/neo-tts/internal/core"
	"github.com/book-expert/neo-tts/internal/registry"
	"github.com/book-expert/neo-tts/internal/server"
	"github.com/book-expert/neo-tts/internal/voices"
)

// stubBackend reports a fixed voice table.
type stubBackend struct {
	codes []string
}

func (s *stubBackend) ListVoices(_ context.Context) ([]string, error) {
	return s.codes, nil
}

func (s *stubBackend) Generate(_ context.Context, _, _, _ string) error { return nil }

func (s *stubBackend) SampleRate() int { return 24000 }

func (s *stubBackend) DefaultVoice() string { return "af_alloy" }

// stubGenerator returns a canned result or error.
type stubGenerator struct {
	result  *core.GenerationResult
	err     error
	lastReq core.GenerationRequest
}

func (s *stubGenerator) Generate(
	_ context.Context,
	req core.GenerationRequest,
) (*core.GenerationResult, error) {
	s.lastReq = req

	if s.err != nil {
		return nil, s.err
	}

	return s.result, nil
}

func newTestServer(t *testing.T, generator core.Generator, outputDir string) *server.Server {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "server-test.log")
	require.NoError(t, err)

	reg := registry.New(testLogger)
	reg.Register("kokoro", func(_ context.Context) (core.Backend, error) {
		return &stubBackend{codes: []string{"af_bella", "qq_mystery"}}, nil
	})

	return server.New(generator, reg, voices.NewCatalog(), outputDir, testLogger)
}

func TestListVoices_ReturnsDisplayNames(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, t.TempDir())

	_, api := humatest.New(t)
	srv.RegisterAPI(api)

	resp := api.Get("/api/voices/kokoro")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Voices []string `json:"voices"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []string{"🇺🇸 Bella 🚺🔥 (A-)", "qq_mystery (Unknown)"}, body.Voices)
}

func TestListVoices_UnknownModelReturnsErrorPayload(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, t.TempDir())

	_, api := humatest.New(t)
	srv.RegisterAPI(api)

	resp := api.Get("/api/voices/no-such-model")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "unknown model")
}

func TestGenerate_Success(t *testing.T) {
	generator := &stubGenerator{
		result: &core.GenerationResult{
			OutputPath:            "static/output/kokoro_1741944413.wav",
			Filename:              "kokoro_1741944413.wav",
			Model:                 "kokoro",
			Voice:                 "af_bella",
			AudioDurationSeconds:  1.2345,
			GenerationTimeSeconds: 0.6789,
		},
	}
	srv := newTestServer(t, generator, t.TempDir())

	_, api := humatest.New(t)
	srv.RegisterAPI(api)

	resp := api.Post("/api/generate", map[string]any{
		"model": "kokoro",
		"voice": "🇺🇸 Bella 🚺🔥 (A-)",
		"text":  "Hello world",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		AudioURL       string  `json:"audio_url"`
		Model          string  `json:"model"`
		Voice          string  `json:"voice"`
		AudioDuration  float64 `json:"audio_duration"`
		GenerationTime float64 `json:"generation_time"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	assert.Equal(t, "/static/output/kokoro_1741944413.wav", body.AudioURL)
	assert.Equal(t, "kokoro", body.Model)
	assert.Equal(t, "af_bella", body.Voice)
	assert.InDelta(t, 1.23, body.AudioDuration, 0.001)
	assert.InDelta(t, 0.68, body.GenerationTime, 0.001)

	assert.Equal(t, "🇺🇸 Bella 🚺🔥 (A-)", generator.lastReq.Voice)
}

func TestGenerate_InvalidRequestReturns400(t *testing.T) {
	generator := &stubGenerator{err: core.ErrInvalidRequest}
	srv := newTestServer(t, generator, t.TempDir())

	_, api := humatest.New(t)
	srv.RegisterAPI(api)

	resp := api.Post("/api/generate", map[string]any{
		"model": "kokoro",
		"text":  "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGenerate_GenerationFailureReturns500(t *testing.T) {
	generator := &stubGenerator{
		err: errors.Join(core.ErrGenerationFailure, errors.New("backend exploded")),
	}
	srv := newTestServer(t, generator, t.TempDir())

	_, api := humatest.New(t)
	srv.RegisterAPI(api)

	resp := api.Post("/api/generate", map[string]any{
		"model": "kokoro",
		"text":  "Hello",
	})
	require.Equal(t, http.StatusInternalServerError, resp.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
}

func TestDeviceInfo(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, t.TempDir())

	_, api := humatest.New(t)
	srv.RegisterAPI(api)

	resp := api.Get("/api/device-info")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		DeviceInfo map[string]any `json:"device_info"`
		Timestamp  float64        `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotEmpty(t, body.DeviceInfo)
	assert.Positive(t, body.Timestamp)
}

func TestStaticOutput_ServesGeneratedAudio(t *testing.T) {
	outputDir := t.TempDir()
	audio := []byte("RIFF....WAVE fake audio")
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, "kokoro_1.wav"), audio, 0o600))

	srv := newTestServer(t, &stubGenerator{}, outputDir)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/static/output/kokoro_1.wav", nil)
	srv.Handler().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, audio, recorder.Body.Bytes())
}

func TestStaticOutput_RejectsNonAudioFiles(t *testing.T) {
	outputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, "results.csv"), []byte("x"), 0o600))

	srv := newTestServer(t, &stubGenerator{}, outputDir)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/static/output/results.csv", nil)
	srv.Handler().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, t.TempDir())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}
