package database

import (
	"context"
	"testing"
	"time"

	config "github.com/anjiri1684/tutor_hunt/configs"
	"github.com/anjiri1684/tutor_hunt/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStoreMemory(t *testing.T) {
	store, err := OpenStore(context.Background(), &config.Settings{StoreDriver: DriverMemory, DBTimeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &repository.MemoryStore{}, store)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Settings{StoreDriver: "sqlite", DBTimeout: time.Second})
	assert.ErrorContains(t, err, "sqlite")
}

func TestConnectPostgresNeedsDSN(t *testing.T) {
	_, err := ConnectPostgres("")
	assert.Error(t, err)
}

func TestConnectRedisDisabled(t *testing.T) {
	assert.Nil(t, ConnectRedis(context.Background(), &config.Settings{}))
}
