package backend

import (
	"alcyxob/fitlog-bot/internal/config"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory}}

	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, store.Users)
	assert.NotNil(t, store.SetRecords)
	assert.NoError(t, store.Close(context.Background()))
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{Backend: "sqlite"}}

	_, err := Open(context.Background(), cfg)
	assert.ErrorContains(t, err, `unknown storage backend "sqlite"`)
}
