package integrationtests

import (
	"bytes"
	"context"
	"graph-diag/internal/checkpoint"
	"graph-diag/internal/storage"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bucketName = "test-bucket"

func setupTestObjectStore(t *testing.T, ctx context.Context) *storage.S3ObjectStore {
	t.Helper()

	endpoint := setupMinioContainer(t, ctx)

	objectStore, err := storage.NewS3ObjectStore(bucketName, storage.S3ClientConfig{
		Endpoint:        endpoint,
		Region:          "us-east-1",
		AccessKeyID:     minioUsername,
		SecretAccessKey: minioPassword,
	})
	require.NoError(t, err)
	require.NoError(t, objectStore.CreateBucket(ctx))
	return objectStore
}

func TestS3ObjectStore_Fetch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	objectStore := setupTestObjectStore(t, ctx)
	var progress bytes.Buffer
	objectStore.SetProgressOutput(&progress)

	key := "models/graph_classifier_model.pth"
	content := bytes.Repeat([]byte("checkpoint"), 1024)
	require.NoError(t, objectStore.PutObject(ctx, key, bytes.NewReader(content)))

	path, cleanup, err := objectStore.Fetch(ctx, key)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.NotEmpty(t, progress.String())

	cleanup()
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestS3ObjectStore_FetchMissing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	objectStore := setupTestObjectStore(t, ctx)

	_, _, err := objectStore.Fetch(ctx, "missing.pth")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestInspectCheckpointFromS3(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	objectStore := setupTestObjectStore(t, ctx)
	key := "graph_classifier_model.pth"
	require.NoError(t, objectStore.PutObject(ctx, key, bytes.NewReader([]byte("not a pickle"))))

	var downloaded string
	loader := func(path string) (any, error) {
		downloaded = path
		return checkpoint.LoadFile(path)
	}

	var out bytes.Buffer
	ok := checkpoint.NewInspector(objectStore, loader, &out).Run(ctx, key)

	// reachable, but not a torch checkpoint
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Error loading model: failed to deserialize graph_classifier_model.pth")
	require.NotEmpty(t, downloaded)
	_, err := os.Stat(downloaded)
	assert.ErrorIs(t, err, fs.ErrNotExist, "temporary download should be removed")
}
