package kokoro

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/neo-tts/internal/core"
	"github.com/book-expert/neo-tts/internal/text"
	"github.com/book-expert/neo-tts/internal/voices"
	"github.com/book-expert/neo-tts/internal/wavio"
)

const (
	// SampleRate is the fixed output rate of the Kokoro model.
	SampleRate = 24000

	// DefaultVoice is the canonical code used when a request names no voice.
	DefaultVoice = "af_alloy"

	// ModelName is the registry key for this backend.
	ModelName = "kokoro"
)

// ErrNoAudioProduced indicates synthesis yielded no segments for the input.
var ErrNoAudioProduced = errors.New("no audio produced")

// Backend synthesizes speech through the Kokoro HTTP service. Text is split
// into sentence chunks, each chunk is synthesized as raw PCM, and the segments
// are concatenated in generation order into a single WAV file.
//
// The loaded-voice table is fetched once at construction and read-only after
// that, so a Backend is safe for concurrent use.
type Backend struct {
	client  *Client
	catalog *voices.Catalog
	chunker *text.Chunker
	loaded  map[string]struct{}
	codes   []string
	log     *logger.Logger
}

// New connects to the Kokoro service at serviceURL and loads its voice table.
// A failure here surfaces as a backend load failure in the registry.
func New(
	ctx context.Context,
	serviceURL string,
	timeout time.Duration,
	catalog *voices.Catalog,
	log *logger.Logger,
) (*Backend, error) {
	client := NewClient(serviceURL, timeout)

	codes, voicesErr := client.Voices(ctx)
	if voicesErr != nil {
		return nil, fmt.Errorf("failed to load kokoro voice table: %w", voicesErr)
	}

	loaded := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		loaded[code] = struct{}{}
	}

	log.Info("Kokoro backend loaded %d voices from %s", len(codes), serviceURL)

	return &Backend{
		client:  client,
		catalog: catalog,
		chunker: text.NewChunker(),
		loaded:  loaded,
		codes:   codes,
		log:     log,
	}, nil
}

// ListVoices returns the raw voice codes loaded at construction time, in the
// order the service reported them.
func (b *Backend) ListVoices(_ context.Context) ([]string, error) {
	return slices.Clone(b.codes), nil
}

// SampleRate returns the fixed Kokoro output rate in Hz.
func (b *Backend) SampleRate() int { return SampleRate }

// DefaultVoice returns the canonical code used when a request names no voice.
func (b *Backend) DefaultVoice() string { return DefaultVoice }

// Generate synthesizes inputText with the given voice and writes a single WAV
// file to outputPath. The voice may be a display name or a canonical code; a
// display-name mapping is applied before the availability check. An empty
// voice selects the default.
func (b *Backend) Generate(ctx context.Context, inputText, voiceCode, outputPath string) error {
	voice := voiceCode
	if voice == "" {
		voice = DefaultVoice
	}

	voice = b.catalog.Resolve(voice)

	if _, ok := b.loaded[voice]; !ok {
		return fmt.Errorf("%w: %q", core.ErrVoiceUnavailable, voice)
	}

	chunks := b.chunker.Split(b.chunker.Normalize(inputText))
	if len(chunks) == 0 {
		return ErrNoAudioProduced
	}

	// Segments are appended in generation order along the time axis; no
	// reordering, no silence insertion.
	var pcm []byte

	for chunkIndex, chunk := range chunks {
		segment, synthErr := b.client.Synthesize(ctx, chunk, voice)
		if synthErr != nil {
			return fmt.Errorf(
				"synthesis failed on segment %d/%d: %w",
				chunkIndex+1,
				len(chunks),
				synthErr,
			)
		}

		pcm = append(pcm, segment...)
	}

	if len(pcm) == 0 {
		return ErrNoAudioProduced
	}

	writeErr := wavio.WriteFile(outputPath, pcm, SampleRate)
	if writeErr != nil {
		return fmt.Errorf("failed to write audio file: %w", writeErr)
	}

	b.log.Info("Generated audio: %s (%d segments, %d bytes)", outputPath, len(chunks), len(pcm))

	return nil
}
