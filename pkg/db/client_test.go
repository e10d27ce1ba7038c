package db

import (
	"context"
	"testing"

	"github.com/angelmondragon/catalogcart/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteClientPingsAndCloses(t *testing.T) {
	client, err := New(context.Background(), config.DBConfig{
		Driver:       config.DBDriverSQLite,
		DSN:          "file::memory:?cache=shared",
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, config.DBDriverSQLite, client.Driver())
	require.NoError(t, client.Ping(context.Background()))
	require.NoError(t, client.Close())
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{Driver: config.DBDriverSQLite}, nil)
	require.Error(t, err)
}

func TestDialectorFor(t *testing.T) {
	d, err := dialectorFor(config.DBConfig{Driver: config.DBDriverPostgres, DSN: "postgres://localhost/x"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = dialectorFor(config.DBConfig{Driver: config.DBDriverSQLite, DSN: "file::memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = dialectorFor(config.DBConfig{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
}
