// Package worker provides a NATS worker that turns text-processed events into
// generated audio objects.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/neo-tts/internal/core"
)

const jobTimeout = 5 * time.Minute

var (
	// ErrTextKeyEmpty indicates the event carries no text object key.
	ErrTextKeyEmpty = errors.New("text key cannot be empty")
	// ErrTextEmpty indicates the downloaded text object is empty.
	ErrTextEmpty = errors.New("downloaded text is empty")
)

// NatsWorker listens for generation jobs on a NATS subject and processes them.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	model          string
	store          core.ObjectStore
	generator      core.Generator
	log            *logger.Logger
}

// New creates a worker that generates audio with the given model.
func New(
	natsConnection *nats.Conn,
	subject string,
	model string,
	store core.ObjectStore,
	generator core.Generator,
	log *logger.Logger,
) *NatsWorker {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		model:          model,
		store:          store,
		generator:      generator,
		log:            log,
	}
}

// Run subscribes to the job subject and blocks until the context is done.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, subscribeErr := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if subscribeErr != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, subscribeErr)
	}

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	event, parseErr := parseEvent(msg)
	if parseErr != nil {
		w.log.Error("Failed to parse text processed event: %v", parseErr)

		return
	}

	audioKey, jobErr := w.processJob(ctx, event)
	if jobErr != nil {
		w.log.Error(
			"Failed to process generation job for workflow %s: %v",
			event.Header.WorkflowID, jobErr,
		)

		return
	}

	replyEvent := &events.AudioChunkCreatedEvent{
		Header:     event.Header,
		AudioKey:   audioKey,
		PageNumber: event.PageNumber,
		TotalPages: event.TotalPages,
	}

	replyErr := w.publishReply(msg, replyEvent)
	if replyErr != nil {
		w.log.Error(
			"Failed to publish reply event for workflow %s: %v",
			event.Header.WorkflowID, replyErr,
		)
	}
}

// processJob downloads the job text, generates audio for it, and uploads the
// resulting file under a fresh key.
func (w *NatsWorker) processJob(
	ctx context.Context,
	event *events.TextProcessedEvent,
) (string, error) {
	if event.TextKey == "" {
		return "", ErrTextKeyEmpty
	}

	textData, downloadErr := w.store.Download(ctx, event.TextKey)
	if downloadErr != nil {
		return "", fmt.Errorf(
			"failed to download text data for key '%s': %w", event.TextKey, downloadErr,
		)
	}

	text := strings.TrimSpace(string(textData))
	if text == "" {
		return "", fmt.Errorf("%w: key '%s'", ErrTextEmpty, event.TextKey)
	}

	result, generateErr := w.generator.Generate(ctx, core.GenerationRequest{
		Model: w.model,
		Voice: event.Voice,
		Text:  text,
	})
	if generateErr != nil {
		return "", fmt.Errorf("failed to generate audio: %w", generateErr)
	}

	audioData, readErr := os.ReadFile(result.OutputPath)
	if readErr != nil {
		return "", fmt.Errorf(
			"failed to read generated audio '%s': %w", result.OutputPath, readErr,
		)
	}

	audioKey := uuid.NewString() + ".wav"

	uploadErr := w.store.Upload(ctx, audioKey, audioData)
	if uploadErr != nil {
		return "", fmt.Errorf("failed to upload audio data for key '%s': %w", audioKey, uploadErr)
	}

	w.log.Info(
		"Generated %.2fs of audio for workflow %s as %s",
		result.AudioDurationSeconds, event.Header.WorkflowID, audioKey,
	)

	return audioKey, nil
}

func (w *NatsWorker) publishReply(msg *nats.Msg, replyEvent *events.AudioChunkCreatedEvent) error {
	replyData, marshalErr := json.Marshal(replyEvent)
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal reply event: %w", marshalErr)
	}

	respondErr := msg.Respond(replyData)
	if respondErr != nil {
		return fmt.Errorf("failed to publish reply event: %w", respondErr)
	}

	return nil
}

func parseEvent(msg *nats.Msg) (*events.TextProcessedEvent, error) {
	var event events.TextProcessedEvent

	unmarshalErr := json.Unmarshal(msg.Data, &event)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", unmarshalErr)
	}

	return &event, nil
}
