// Package orchestrator validates generation requests, resolves voices through
// the catalog, dispatches to the selected backend, and records each completed
// generation in the ledger.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/neo-tts/internal/core"
	"github.com/book-expert/neo-tts/internal/fsutil"
	"github.com/book-expert/neo-tts/internal/registry"
	"github.com/book-expert/neo-tts/internal/voices"
	"github.com/book-expert/neo-tts/internal/wavio"
)

// outputFileFormat produces collision-resistant output names. Two requests for
// the same model within one second may overwrite each other; that is an
// accepted limitation.
const outputFileFormat = "%s_%d.wav"

// Orchestrator runs generation requests end to end. It holds no per-request
// state and is safe for concurrent use.
type Orchestrator struct {
	registry  *registry.Registry
	catalog   *voices.Catalog
	ledger    core.Ledger
	outputDir string
	log       *logger.Logger
}

// New creates an orchestrator writing audio files into outputDir.
func New(
	reg *registry.Registry,
	catalog *voices.Catalog,
	auditLog core.Ledger,
	outputDir string,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		registry:  reg,
		catalog:   catalog,
		ledger:    auditLog,
		outputDir: outputDir,
		log:       log,
	}
}

// Generate validates the request, resolves the voice, invokes the backend, and
// appends a ledger row. The ledger append and the audio-duration probe are
// best effort: their failure degrades the result but never fails the request.
func (o *Orchestrator) Generate(
	ctx context.Context,
	req core.GenerationRequest,
) (*core.GenerationResult, error) {
	trimmedText, validateErr := validate(req)
	if validateErr != nil {
		return nil, validateErr
	}

	backend, backendErr := o.registry.Get(ctx, req.Model)
	if backendErr != nil {
		return nil, backendErr
	}

	// Resolution is total: a display name becomes its code, anything else
	// passes through for the backend's own availability check.
	resolvedVoice := ""
	if req.Voice != "" {
		resolvedVoice = o.catalog.Resolve(req.Voice)
	}

	filename := fmt.Sprintf(outputFileFormat, fsutil.SanitizeFilename(req.Model), time.Now().Unix())
	outputPath := filepath.Join(o.outputDir, filename)

	// The wall clock spans the backend call only.
	generationStart := time.Now()
	generateErr := backend.Generate(ctx, trimmedText, resolvedVoice, outputPath)
	generationTime := time.Since(generationStart).Seconds()

	if generateErr != nil {
		if errors.Is(generateErr, core.ErrVoiceUnavailable) {
			return nil, generateErr
		}

		return nil, fmt.Errorf("%w: %w", core.ErrGenerationFailure, generateErr)
	}

	audioDuration, probed := wavio.ProbeDuration(outputPath)
	if !probed {
		o.log.Warn("Could not probe audio duration for %s, recording 0.0", outputPath)
	}

	usedVoice := resolvedVoice
	if usedVoice == "" {
		usedVoice = backend.DefaultVoice()
	}

	o.appendLedgerRecord(req.Model, resolvedVoice, trimmedText, audioDuration, outputPath)

	o.log.Info(
		"Generated %s with voice %s in %s (audio %s)",
		filename,
		usedVoice,
		fsutil.FormatDuration(generationTime),
		fsutil.FormatDuration(audioDuration),
	)

	return &core.GenerationResult{
		OutputPath:            outputPath,
		Filename:              filename,
		Model:                 req.Model,
		Voice:                 usedVoice,
		AudioDurationSeconds:  audioDuration,
		GenerationTimeSeconds: generationTime,
	}, nil
}

// appendLedgerRecord records a completed generation. The speaker column holds
// the resolved canonical code; an empty value is stored as the literal
// "default" by the ledger. A failed append is logged and otherwise ignored.
func (o *Orchestrator) appendLedgerRecord(
	model, resolvedVoice, text string,
	duration float64,
	outputPath string,
) {
	record := core.LedgerRecord{
		Timestamp:       time.Now(),
		Model:           model,
		Speaker:         resolvedVoice,
		Text:            text,
		DurationSeconds: duration,
		OutputPath:      outputPath,
	}

	appendErr := o.ledger.Append(record)
	if appendErr != nil {
		o.log.Warn("Failed to append ledger record for %s: %v", outputPath, appendErr)
	}
}

func validate(req core.GenerationRequest) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("%w: model is required", core.ErrInvalidRequest)
	}

	trimmedText := strings.TrimSpace(req.Text)
	if trimmedText == "" {
		return "", fmt.Errorf("%w: text is required", core.ErrInvalidRequest)
	}

	return trimmedText, nil
}
