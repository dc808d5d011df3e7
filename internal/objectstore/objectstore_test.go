// Package objectstore_test tests the JetStream object store against an
// embedded NATS server.
package objectstore_test

import (
	"context"
	"testing"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/neo-tts/internal/objectstore"
)

func startTestServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1 // Use a random port
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	return natsServer, natsConnection
}

func TestStore_UploadDownload(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "neo-tts-audio")
	require.NoError(t, err)

	ctx := context.Background()
	audioKey := "chunk-0001.wav"
	uploadData := []byte("RIFF....WAVE fake audio payload")

	require.NoError(t, store.Upload(ctx, audioKey, uploadData))

	downloadData, err := store.Download(ctx, audioKey)
	require.NoError(t, err)
	assert.Equal(t, uploadData, downloadData)
}

func TestStore_BindsToExistingBucket(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	first, err := objectstore.New(jetstreamContext, "neo-tts-audio")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, first.Upload(ctx, "existing.wav", []byte("audio")))

	// A second Store for the same bucket must bind, not fail.
	second, err := objectstore.New(jetstreamContext, "neo-tts-audio")
	require.NoError(t, err)

	data, err := second.Download(ctx, "existing.wav")
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), data)
}

func TestStore_DownloadMissingKey(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "neo-tts-audio")
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "no-such-object")
	require.Error(t, err)
}
