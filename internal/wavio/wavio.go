// Package wavio writes 16-bit mono PCM data as WAV files and inspects existing
// WAV files for their playing time.
package wavio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	riffHeaderSize = 36
	fmtChunkSize   = 16
	pcmFormat      = 1
	monoChannels   = 1
	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8

	filePermissions = 0o600
)

var (
	// ErrNoSamples indicates an encode was attempted with no PCM data.
	ErrNoSamples = errors.New("no PCM samples to encode")
	// ErrInvalidSampleRate indicates a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// Encode writes pcm (16-bit little-endian mono samples) to w with a RIFF/WAVE
// header for the given sample rate.
func Encode(w io.Writer, pcm []byte, sampleRate int) error {
	if len(pcm) == 0 {
		return ErrNoSamples
	}

	if sampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	headerErr := writeHeader(w, len(pcm), sampleRate)
	if headerErr != nil {
		return headerErr
	}

	_, dataErr := w.Write(pcm)
	if dataErr != nil {
		return fmt.Errorf("failed to write PCM data: %w", dataErr)
	}

	return nil
}

// WriteFile encodes pcm at sampleRate into a WAV file at path.
func WriteFile(path string, pcm []byte, sampleRate int) error {
	var buf bytes.Buffer

	encodeErr := Encode(&buf, pcm, sampleRate)
	if encodeErr != nil {
		return encodeErr
	}

	writeErr := os.WriteFile(path, buf.Bytes(), filePermissions)
	if writeErr != nil {
		return fmt.Errorf("failed to write WAV file %q: %w", path, writeErr)
	}

	return nil
}

// ProbeDuration reports the playing time in seconds of the WAV file at path.
// The boolean result is false when the file cannot be read or parsed; an
// unreadable duration is a normal, typed outcome rather than an error.
func ProbeDuration(path string) (float64, bool) {
	file, openErr := os.Open(path)
	if openErr != nil {
		return 0, false
	}

	defer func() {
		_ = file.Close()
	}()

	return probeDuration(file)
}

func probeDuration(r io.Reader) (float64, bool) {
	var riff [12]byte

	_, readErr := io.ReadFull(r, riff[:])
	if readErr != nil {
		return 0, false
	}

	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return 0, false
	}

	var byteRate uint32

	// Walk the chunks; the fmt chunk carries the byte rate, the data chunk
	// carries the sample payload size.
	for {
		var chunkHeader [8]byte

		_, headerErr := io.ReadFull(r, chunkHeader[:])
		if headerErr != nil {
			return 0, false
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			rate, ok := readByteRate(r, chunkSize)
			if !ok {
				return 0, false
			}

			byteRate = rate
		case "data":
			if byteRate == 0 {
				return 0, false
			}

			return float64(chunkSize) / float64(byteRate), true
		default:
			_, skipErr := io.CopyN(io.Discard, r, int64(chunkSize))
			if skipErr != nil {
				return 0, false
			}
		}
	}
}

func readByteRate(r io.Reader, chunkSize uint32) (uint32, bool) {
	if chunkSize < fmtChunkSize {
		return 0, false
	}

	chunk := make([]byte, chunkSize)

	_, readErr := io.ReadFull(r, chunk)
	if readErr != nil {
		return 0, false
	}

	// fmt chunk layout: format(2) channels(2) sampleRate(4) byteRate(4) ...
	return binary.LittleEndian.Uint32(chunk[8:12]), true
}

func writeHeader(w io.Writer, dataSize, sampleRate int) error {
	byteRate := sampleRate * monoChannels * bytesPerSample
	blockAlign := monoChannels * bytesPerSample

	fields := []any{
		[]byte("RIFF"),
		uint32(riffHeaderSize + dataSize),
		[]byte("WAVE"),
		[]byte("fmt "),
		uint32(fmtChunkSize),
		uint16(pcmFormat),
		uint16(monoChannels),
		uint32(sampleRate),
		uint32(byteRate),
		uint16(blockAlign),
		uint16(bitsPerSample),
		[]byte("data"),
		uint32(dataSize),
	}

	for _, field := range fields {
		writeErr := binary.Write(w, binary.LittleEndian, field)
		if writeErr != nil {
			return fmt.Errorf("failed to write WAV header field: %w", writeErr)
		}
	}

	return nil
}
