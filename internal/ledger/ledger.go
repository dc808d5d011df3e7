// Package ledger appends completed generations to a flat CSV audit log.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/book-expert/neo-tts/internal/core"
)

const (
	// excerptLimit is the maximum number of characters of request text stored
	// per row; longer text is truncated with a marker.
	excerptLimit   = 100
	truncationMark = "..."

	// timestampLayout matches the log's human-readable timestamp column.
	timestampLayout = "2006-01-02 15:04:05"

	// defaultSpeaker is recorded when a request named no voice.
	defaultSpeaker = "default"

	filePermissions = 0o600
)

// header is written once, when the log file is first created.
var header = []string{"timestamp", "model", "speaker", "text", "duration", "output_path"}

// CSV is an append-only, mutex-serialized ledger backed by a single file.
// Rows are never mutated or deleted.
type CSV struct {
	mu   sync.Mutex
	path string
}

// NewCSV creates a ledger that appends to the file at path. The file itself is
// created on first append.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Append writes one record as a CSV row, creating the file with a header row
// first if it does not exist yet. Appends are serialized so concurrent
// generations cannot interleave within a row.
func (l *CSV) Append(record core.LedgerRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	writeHeader := os.IsNotExist(statErr)

	file, openErr := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermissions)
	if openErr != nil {
		return fmt.Errorf("failed to open ledger file %q: %w", l.path, openErr)
	}

	writer := csv.NewWriter(file)

	if writeHeader {
		headerErr := writer.Write(header)
		if headerErr != nil {
			_ = file.Close()

			return fmt.Errorf("failed to write ledger header: %w", headerErr)
		}
	}

	rowErr := writer.Write(formatRow(record))

	writer.Flush()

	flushErr := writer.Error()
	closeErr := file.Close()

	if rowErr != nil {
		return fmt.Errorf("failed to write ledger row: %w", rowErr)
	}

	if flushErr != nil {
		return fmt.Errorf("failed to flush ledger row: %w", flushErr)
	}

	if closeErr != nil {
		return fmt.Errorf("failed to close ledger file: %w", closeErr)
	}

	return nil
}

func formatRow(record core.LedgerRecord) []string {
	speaker := record.Speaker
	if speaker == "" {
		speaker = defaultSpeaker
	}

	return []string{
		record.Timestamp.Format(timestampLayout),
		record.Model,
		speaker,
		excerpt(record.Text),
		fmt.Sprintf("%.2f", record.DurationSeconds),
		record.OutputPath,
	}
}

// excerpt truncates text to the excerpt limit, counting characters rather than
// bytes so multi-byte text is not cut mid-rune.
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}

	return string(runes[:excerptLimit]) + truncationMark
}
