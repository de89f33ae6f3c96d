package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/pdf-ocr/config"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
	"github.com/feichai0017/pdf-ocr/pkg/storage/local"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryStorage) Store(_ context.Context, r io.Reader, key string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return key, nil
}

func (m *memoryStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(bytes.NewReader(m.objects[key])), nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func TestWithPrefix(t *testing.T) {
	mem := &memoryStorage{objects: map[string][]byte{}}
	store := WithPrefix(mem, "/catalogs/nd-820/")
	ctx := context.Background()

	key, err := store.Store(ctx, strings.NewReader("text"), "page_1.txt")
	require.NoError(t, err)
	assert.Equal(t, "catalogs/nd-820/page_1.txt", key)
	assert.Contains(t, mem.objects, "catalogs/nd-820/page_1.txt")

	require.NoError(t, store.Delete(ctx, "page_1.txt"))
	assert.Empty(t, mem.objects)
}

func TestWithPrefix_EmptyPrefixIsIdentity(t *testing.T) {
	mem := &memoryStorage{objects: map[string][]byte{}}
	assert.Same(t, mem, WithPrefix(mem, "/").(*memoryStorage))
}

func TestNewStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()

	store, err := NewStorage(context.Background(), cfg, logger.NewTestLogger())
	require.NoError(t, err)
	assert.IsType(t, &local.LocalStorage{}, store)

	cfg.Output.Storage = "ftp"
	_, err = NewStorage(context.Background(), cfg, logger.NewTestLogger())
	assert.ErrorContains(t, err, "unsupported storage type")

	cfg.Output.Storage = config.StorageMinio
	_, err = NewStorage(context.Background(), cfg, logger.NewTestLogger())
	assert.Error(t, err)
}
