package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/realmd/internal/model"
)

func TestRealmRepository_ListEmpty(t *testing.T) {
	pool := setupTestDB(t)

	realms, err := NewRealmRepository(pool).ListRealms(context.Background())

	require.NoError(t, err)
	assert.Empty(t, realms)
}

func TestRealmRepository_AddAndList(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRealmRepository(pool)
	ctx := context.Background()

	// Arrange
	outland := model.Realm{
		ID:         2,
		Name:       "Outland",
		Host:       "10.0.0.2",
		Port:       8086,
		Type:       model.RealmRPPvP,
		Flags:      model.RealmFlagSpecifyBuild | model.RealmFlagRecommended,
		Locked:     true,
		Timezone:   8,
		Population: 1.5,
		Build:      8606,
		Version:    [3]byte{2, 4, 3},
	}
	azeroth := model.Realm{ID: 1, Name: "Azeroth", Host: "127.0.0.1", Port: 8085, Type: model.RealmPvP, Timezone: 1}
	require.NoError(t, repo.AddRealm(ctx, outland))
	require.NoError(t, repo.AddRealm(ctx, azeroth))

	// Act
	realms, err := repo.ListRealms(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, realms, 2)
	assert.Equal(t, azeroth, realms[0])
	assert.Equal(t, outland, realms[1])
}

func TestRealmRepository_AddReplaces(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRealmRepository(pool)
	ctx := context.Background()

	r := model.Realm{ID: 1, Name: "Azeroth", Host: "127.0.0.1", Port: 8085}
	require.NoError(t, repo.AddRealm(ctx, r))

	r.Flags = model.RealmFlagOffline
	r.Port = 9000
	require.NoError(t, repo.AddRealm(ctx, r))

	realms, err := repo.ListRealms(ctx)
	require.NoError(t, err)
	require.Len(t, realms, 1)
	assert.Equal(t, 9000, realms[0].Port)
	assert.Equal(t, model.RealmFlagOffline, realms[0].Flags)
}
