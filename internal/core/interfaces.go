// Package core defines the domain types and interfaces shared across the neo-tts
// service: the backend capability contract, the generation request/result pair,
// and the audit ledger.
package core

import (
	"context"
	"time"
)

// Backend is a pluggable synthesis engine. Instances are created lazily by the
// registry on first use and cached for the life of the process; after a
// successful load they are read-only and safe for concurrent use.
type Backend interface {
	// ListVoices returns the raw voice codes the backend has loaded, in the
	// order the backend reports them.
	ListVoices(ctx context.Context) ([]string, error)

	// Generate synthesizes text with the given canonical voice code and writes
	// a single WAV file to outputPath. An empty voiceCode selects the backend's
	// default voice.
	Generate(ctx context.Context, text, voiceCode, outputPath string) error

	// SampleRate returns the backend's fixed output sample rate in Hz.
	SampleRate() int

	// DefaultVoice returns the canonical code used when a request names no voice.
	DefaultVoice() string
}

// Generator runs a complete generation request end to end. The orchestrator is
// the only production implementation; the interface exists so transports (HTTP,
// NATS worker) can be tested against a mock.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}

// ObjectStore defines the interface for interacting with a key-value blob store.
// The NATS worker uses it to fetch job text and archive generated audio.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// Ledger records completed generations. Appends must be safe to call
// concurrently; implementations serialize writers internally.
type Ledger interface {
	Append(record LedgerRecord) error
}

// GenerationRequest describes one synthesis job.
type GenerationRequest struct {
	// Model selects a registered backend.
	Model string

	// Voice is a display name or canonical voice code. When empty, the
	// backend's default voice applies.
	Voice string

	// Text is the input to synthesize. Must be non-empty after trimming.
	Text string
}

// GenerationResult describes a completed generation.
type GenerationResult struct {
	// OutputPath is the path of the written WAV file.
	OutputPath string

	// Filename is the bare file name within the output directory.
	Filename string

	// Model is the backend that produced the audio.
	Model string

	// Voice is the canonical voice code the backend consumed.
	Voice string

	// AudioDurationSeconds is the playing time of the written file. Zero when
	// the file could not be read back; that is a normal outcome, not an error.
	AudioDurationSeconds float64

	// GenerationTimeSeconds is the wall-clock time spent inside the backend's
	// synthesis call.
	GenerationTimeSeconds float64
}

// LedgerRecord is one immutable row of the generation audit log.
type LedgerRecord struct {
	Timestamp       time.Time
	Model           string
	Speaker         string // canonical voice code; empty means the backend default was used
	Text            string
	DurationSeconds float64
	OutputPath      string
}
