package database

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/firmsite-api/internal/models"
)

func TestConnectRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client, err := ConnectRedis(context.Background(), "redis://"+server.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	server.CheckGet(t, "k", "v")
}

func TestConnectRedisRejectsBadInput(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "")
	require.Error(t, err)

	_, err = ConnectRedis(context.Background(), "not a url")
	require.Error(t, err)
}

func TestOpenArchiveMigratesSQLite(t *testing.T) {
	db, err := OpenArchive(fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", t.Name()), false)
	require.NoError(t, err)
	require.True(t, db.Migrator().HasTable(&models.ContactSubmission{}))
}

func TestOpenArchiveRequiresDSN(t *testing.T) {
	_, err := OpenArchive("  ", false)
	require.Error(t, err)
}
