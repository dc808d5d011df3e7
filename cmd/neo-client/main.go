// Command neo-client is a small CLI for the neo-tts HTTP API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Flag descriptions.
const (
	flagServerDesc = "Base URL of the neo-tts service"
	flagModelDesc  = "Model to generate with"
	flagVoiceDesc  = "Voice display name or canonical code (model default when empty)"
	flagTextDesc   = "Text to convert to speech"
	flagOutputDesc = "Output file path (.wav)"
	flagVoicesDesc = "List voices for the model and exit"
	flagHealthDesc = "Check service health and exit"
)

const (
	defaultServerURL  = "http://localhost:5000"
	defaultModel      = "kokoro"
	defaultOutputFile = "output.wav"
	requestTimeout    = 5 * time.Minute
)

var errTextRequired = errors.New("--text must be provided")

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	server string
	model  string
	voice  string
	text   string
	output string
	voices bool
	health bool
}

type generateRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice,omitempty"`
	Text  string `json:"text"`
}

type generateResponse struct {
	AudioURL       string  `json:"audio_url"`
	Model          string  `json:"model"`
	Voice          string  `json:"voice"`
	AudioDuration  float64 `json:"audio_duration"`
	GenerationTime float64 `json:"generation_time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	client := &http.Client{Timeout: requestTimeout}

	if flags.health {
		return checkHealth(ctx, client, flags.server)
	}

	if flags.voices {
		return listVoices(ctx, client, flags.server, flags.model)
	}

	if flags.text == "" {
		flag.Usage()

		return errTextRequired
	}

	return generate(ctx, client, flags)
}

func parseFlags() appFlags {
	var flags appFlags
	flag.StringVar(&flags.server, "server", defaultServerURL, flagServerDesc)
	flag.StringVar(&flags.model, "model", defaultModel, flagModelDesc)
	flag.StringVar(&flags.voice, "voice", "", flagVoiceDesc)
	flag.StringVar(&flags.text, "text", "", flagTextDesc)
	flag.StringVar(&flags.output, "output", defaultOutputFile, flagOutputDesc)
	flag.BoolVar(&flags.voices, "voices", false, flagVoicesDesc)
	flag.BoolVar(&flags.health, "health", false, flagHealthDesc)
	flag.Parse()

	return flags
}

func checkHealth(ctx context.Context, client *http.Client, server string) error {
	body, err := getJSON(ctx, client, server+"/health")
	if err != nil {
		fmt.Printf("Service is not healthy: %v\n", err)

		return err
	}

	fmt.Printf("Service is healthy: %s\n", strings.TrimSpace(string(body)))

	return nil
}

func listVoices(ctx context.Context, client *http.Client, server, model string) error {
	body, err := getJSON(ctx, client, server+"/api/voices/"+url.PathEscape(model))
	if err != nil {
		return err
	}

	var parsed struct {
		Voices []string `json:"voices"`
	}

	unmarshalErr := json.Unmarshal(body, &parsed)
	if unmarshalErr != nil {
		return fmt.Errorf("failed to parse voices response: %w", unmarshalErr)
	}

	for _, voice := range parsed.Voices {
		fmt.Println(voice)
	}

	return nil
}

func generate(ctx context.Context, client *http.Client, flags appFlags) error {
	payload, marshalErr := json.Marshal(generateRequest{
		Model: flags.model,
		Voice: flags.voice,
		Text:  flags.text,
	})
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal request: %w", marshalErr)
	}

	request, requestErr := http.NewRequestWithContext(
		ctx, http.MethodPost, flags.server+"/api/generate", bytes.NewReader(payload),
	)
	if requestErr != nil {
		return fmt.Errorf("failed to create request: %w", requestErr)
	}

	request.Header.Set("Content-Type", "application/json")

	response, doErr := client.Do(request)
	if doErr != nil {
		return fmt.Errorf("generation request failed: %w", doErr)
	}
	defer func() { _ = response.Body.Close() }()

	body, readErr := io.ReadAll(response.Body)
	if readErr != nil {
		return fmt.Errorf("failed to read response: %w", readErr)
	}

	if response.StatusCode != http.StatusOK {
		return errors.New(serviceErrorMessage(response.StatusCode, body))
	}

	var result generateResponse

	unmarshalErr := json.Unmarshal(body, &result)
	if unmarshalErr != nil {
		return fmt.Errorf("failed to parse generation response: %w", unmarshalErr)
	}

	downloadErr := downloadAudio(ctx, client, flags.server+result.AudioURL, flags.output)
	if downloadErr != nil {
		return downloadErr
	}

	fmt.Printf(
		"Generated %.2fs of audio with %s/%s in %.2fs: %s\n",
		result.AudioDuration, result.Model, result.Voice, result.GenerationTime, flags.output,
	)

	return nil
}

func downloadAudio(ctx context.Context, client *http.Client, audioURL, outputPath string) error {
	data, err := getJSON(ctx, client, audioURL)
	if err != nil {
		return fmt.Errorf("failed to download audio: %w", err)
	}

	writeErr := os.WriteFile(outputPath, data, 0o600)
	if writeErr != nil {
		return fmt.Errorf("failed to write '%s': %w", outputPath, writeErr)
	}

	return nil
}

// getJSON performs a GET and returns the body, treating any non-200 status as
// an error.
func getJSON(ctx context.Context, client *http.Client, target string) ([]byte, error) {
	request, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if requestErr != nil {
		return nil, fmt.Errorf("failed to create request: %w", requestErr)
	}

	response, doErr := client.Do(request)
	if doErr != nil {
		return nil, fmt.Errorf("request to '%s' failed: %w", target, doErr)
	}
	defer func() { _ = response.Body.Close() }()

	body, readErr := io.ReadAll(response.Body)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response: %w", readErr)
	}

	if response.StatusCode != http.StatusOK {
		return nil, errors.New(serviceErrorMessage(response.StatusCode, body))
	}

	return body, nil
}

func serviceErrorMessage(status int, body []byte) string {
	var parsed errorResponse

	unmarshalErr := json.Unmarshal(body, &parsed)
	if unmarshalErr == nil && parsed.Error != "" {
		return fmt.Sprintf("service returned %d: %s", status, parsed.Error)
	}

	return fmt.Sprintf("service returned %d: %s", status, strings.TrimSpace(string(body)))
}
