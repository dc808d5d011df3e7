// Package ledger_test tests the append-only CSV generation log.
package ledger_test

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/neo-tts/internal/core"
	"github.com/book-expert/neo-tts/internal/ledger"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)

	defer func() {
		closeErr := file.Close()
		require.NoError(t, closeErr)
	}()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	return rows
}

func testRecord() core.LedgerRecord {
	return core.LedgerRecord{
		Timestamp:       time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Model:           "kokoro",
		Speaker:         "af_bella",
		Text:            "Hello world",
		DurationSeconds: 1.234,
		OutputPath:      "static/output/kokoro_1741944413.wav",
	}
}

func TestCSV_Append_CreatesFileWithHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.csv")
	log := ledger.NewCSV(path)

	require.NoError(t, log.Append(testRecord()))

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"timestamp", "model", "speaker", "text", "duration", "output_path"}, rows[0])
	assert.Equal(t, []string{
		"2025-03-14 09:26:53",
		"kokoro",
		"af_bella",
		"Hello world",
		"1.23",
		"static/output/kokoro_1741944413.wav",
	}, rows[1])
}

func TestCSV_Append_WritesHeaderOnlyOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.csv")
	log := ledger.NewCSV(path)

	require.NoError(t, log.Append(testRecord()))
	require.NoError(t, log.Append(testRecord()))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "timestamp", rows[0][0])
	assert.NotEqual(t, "timestamp", rows[1][0])
	assert.NotEqual(t, "timestamp", rows[2][0])
}

func TestCSV_Append_EmptySpeakerRecordsDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.csv")
	log := ledger.NewCSV(path)

	record := testRecord()
	record.Speaker = ""

	require.NoError(t, log.Append(record))

	rows := readRows(t, path)
	assert.Equal(t, "default", rows[1][2])
}

func TestCSV_Append_TruncatesLongText(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.csv")
	log := ledger.NewCSV(path)

	record := testRecord()
	record.Text = strings.Repeat("a", 150)

	require.NoError(t, log.Append(record))

	rows := readRows(t, path)
	assert.Equal(t, strings.Repeat("a", 100)+"...", rows[1][3])
}

func TestCSV_Append_ShortTextNotTruncated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.csv")
	log := ledger.NewCSV(path)

	record := testRecord()
	record.Text = strings.Repeat("b", 100)

	require.NoError(t, log.Append(record))

	rows := readRows(t, path)
	assert.Equal(t, strings.Repeat("b", 100), rows[1][3])
}

func TestCSV_Append_ConcurrentAppendsProduceWellFormedRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.csv")
	log := ledger.NewCSV(path)

	const appends = 32

	var waitGroup sync.WaitGroup

	for i := range appends {
		waitGroup.Add(1)

		go func(n int) {
			defer waitGroup.Done()

			record := testRecord()
			record.Text = fmt.Sprintf("concurrent append %d", n)

			assert.NoError(t, log.Append(record))
		}(i)
	}

	waitGroup.Wait()

	rows := readRows(t, path)
	require.Len(t, rows, appends+1)

	for _, row := range rows {
		assert.Len(t, row, 6)
	}
}
