package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/realmd/internal/config"
	"github.com/udisondev/realmd/internal/constants"
	"github.com/udisondev/realmd/internal/crypto"
	"github.com/udisondev/realmd/internal/login"
	"github.com/udisondev/realmd/internal/model"
	"github.com/udisondev/realmd/internal/protocol"
	"github.com/udisondev/realmd/internal/realm"
	"github.com/udisondev/realmd/internal/testutil"
)

// runAuthServer стартует login.Server поверх PostgreSQL repositories.
func runAuthServer(t *testing.T, accounts *AccountRepository, realms *RealmRepository) (addr string, stop func()) {
	t.Helper()

	dir := realm.NewDirectory(realms, 0)
	require.NoError(t, dir.Load(context.Background(), 5*time.Second))

	ln, addr := testutil.ListenTCP(t)
	srv := login.NewServer(config.DefaultAuthServer(), accounts, dir)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	require.NoError(t, testutil.WaitForTCPReady(addr, 5*time.Second))

	return addr, func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("auth server did not stop in time")
		}
	}
}

func TestLogin_PostgresStore(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	// Arrange
	sealer, err := crypto.NewSealer(make([]byte, 32))
	require.NoError(t, err)
	accounts := NewAccountRepository(pool, sealer)
	realms := NewRealmRepository(pool)

	acc, err := accounts.CreateAccount(ctx, testutil.ValidAccount, testutil.ValidPassword, "")
	require.NoError(t, err)
	require.NoError(t, realms.AddRealm(ctx, model.Realm{
		ID: 1, Name: "Azeroth", Host: "127.0.0.1", Port: 8085, Type: model.RealmPvP, Timezone: 1,
	}))
	require.NoError(t, accounts.SetCharacterCount(ctx, 1, acc.ID, 2))

	addr, stop := runAuthServer(t, accounts, realms)

	// Act: полный logon и realm list
	client, err := testutil.NewAuthClient(t, addr, constants.BuildWotLK)
	require.NoError(t, err)
	key, err := client.Login(testutil.ValidAccount, testutil.ValidPassword)
	require.NoError(t, err)
	entries, err := client.RealmList()
	require.NoError(t, err)
	client.Close()

	// Assert
	require.Len(t, entries, 1)
	assert.Equal(t, "Azeroth", entries[0].Name)
	assert.Equal(t, uint8(2), entries[0].Characters)

	stored, ok, err := accounts.FindSession(ctx, testutil.ValidAccount, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, key, stored)

	// Act: рестарт сервера, реестр пуст, reconnect идёт через store
	stop()
	addr, stop = runAuthServer(t, accounts, realms)
	defer stop()

	client, err = testutil.NewAuthClient(t, addr, constants.BuildWotLK)
	require.NoError(t, err)
	defer client.Close()

	// Assert
	require.NoError(t, client.Reconnect(testutil.ValidAccount, key))
}

func TestLogin_PostgresBannedAccount(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	accounts := NewAccountRepository(pool, nil)
	_, err := accounts.CreateAccount(ctx, testutil.ValidAccount, testutil.ValidPassword, "")
	require.NoError(t, err)
	require.NoError(t, accounts.SetBan(ctx, testutil.ValidAccount, model.BanPermanent))

	addr, stop := runAuthServer(t, accounts, NewRealmRepository(pool))
	defer stop()

	client, err := testutil.NewAuthClient(t, addr, constants.BuildVanilla)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Login(testutil.ValidAccount, testutil.ValidPassword)

	assert.True(t, testutil.IsStatus(err, protocol.StatusBanned), "got %v", err)
}
