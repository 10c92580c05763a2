package realm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/udisondev/realmd/internal/config"
	"github.com/udisondev/realmd/internal/model"
	"github.com/udisondev/realmd/internal/testutil"
)

func TestDirectory_EmptyBeforeRefresh(t *testing.T) {
	d := NewDirectory(testutil.NewMockRealmSource(), time.Minute)

	assert.NotNil(t, d.Snapshot())
	assert.Empty(t, d.Snapshot())
}

func TestDirectory_RefreshKeepsLastGoodSnapshot(t *testing.T) {
	// Arrange
	src := testutil.NewMockRealmSource(testutil.TestRealm(1, "Azeroth"))
	d := NewDirectory(src, time.Minute)
	require.NoError(t, d.Refresh(context.Background()))

	src.ListRealmsFunc = func(ctx context.Context) ([]model.Realm, error) {
		return nil, testutil.ErrSimulated
	}

	// Act
	err := d.Refresh(context.Background())

	// Assert
	require.ErrorIs(t, err, testutil.ErrSimulated)
	snapshot := d.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Azeroth", snapshot[0].Name)
}

func TestDirectory_SnapshotIsolatedFromSource(t *testing.T) {
	shared := []model.Realm{testutil.TestRealm(1, "Azeroth")}
	src := testutil.NewMockRealmSource()
	src.ListRealmsFunc = func(ctx context.Context) ([]model.Realm, error) {
		return shared, nil
	}
	d := NewDirectory(src, time.Minute)
	require.NoError(t, d.Refresh(context.Background()))

	shared[0].Name = "Mutated"

	assert.Equal(t, "Azeroth", d.Snapshot()[0].Name)
}

func TestDirectory_LoadRetries(t *testing.T) {
	// Arrange: первые два вызова падают
	var calls atomic.Int32
	src := testutil.NewMockRealmSource()
	src.ListRealmsFunc = func(ctx context.Context) ([]model.Realm, error) {
		if calls.Add(1) < 3 {
			return nil, testutil.ErrSimulated
		}
		return []model.Realm{testutil.TestRealm(1, "Azeroth")}, nil
	}
	d := NewDirectory(src, time.Minute)

	// Act
	err := d.Load(context.Background(), 10*time.Second)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, d.Snapshot(), 1)
}

func TestDirectory_LoadGivesUp(t *testing.T) {
	src := testutil.NewMockRealmSource()
	src.ListRealmsFunc = func(ctx context.Context) ([]model.Realm, error) {
		return nil, testutil.ErrSimulated
	}
	d := NewDirectory(src, time.Minute)

	err := d.Load(context.Background(), 300*time.Millisecond)

	require.Error(t, err)
	assert.True(t, errors.Is(err, testutil.ErrSimulated))
	assert.Greater(t, src.Calls(), 1)
}

func TestDirectory_RunRefreshesOnTrigger(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Arrange
	src := testutil.NewMockRealmSource(testutil.TestRealm(1, "Azeroth"))
	d := NewDirectory(src, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Act
	d.Trigger()

	// Assert
	testutil.WaitForCleanup(t, func() bool {
		return len(d.Snapshot()) == 1
	}, 5*time.Second)

	cancel()
	require.NoError(t, <-done)
}

func TestDirectory_RunOnTicker(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := testutil.NewMockRealmSource(testutil.TestRealm(1, "Azeroth"))
	d := NewDirectory(src, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	testutil.WaitForCleanup(t, func() bool {
		return src.Calls() >= 2
	}, 5*time.Second)

	cancel()
	require.NoError(t, <-done)
}

func TestStaticSource(t *testing.T) {
	src, err := NewStaticSource([]config.RealmEntry{
		{ID: 1, Name: "Azeroth", Host: "10.0.0.1", Port: 8085, Type: "pvp"},
		{ID: 2, Name: "Outland", Host: "10.0.0.2", Port: 8086, Type: "RP", Flags: 0x04, Build: 8606,
			Version: "2.4.3", Population: 1.5, Locked: true},
	})
	require.NoError(t, err)

	realms, err := src.ListRealms(context.Background())
	require.NoError(t, err)
	require.Len(t, realms, 2)
	assert.Equal(t, model.RealmPvP, realms[0].Type)
	assert.Equal(t, "10.0.0.1:8085", realms[0].Address())
	assert.Equal(t, model.RealmRP, realms[1].Type)
	assert.True(t, realms[1].Flags.Has(model.RealmFlagSpecifyBuild))
	assert.Equal(t, uint16(8606), realms[1].Build)
	assert.Equal(t, [3]byte{2, 4, 3}, realms[1].Version)
	assert.InDelta(t, 1.5, realms[1].Population, 0.001)
	assert.True(t, realms[1].Locked)
	assert.Equal(t, [3]byte{}, realms[0].Version)
	assert.False(t, realms[0].Locked)
}

func TestStaticSource_Invalid(t *testing.T) {
	tests := map[string]config.RealmEntry{
		"zero id":          {ID: 0, Name: "x", Type: "pvp"},
		"big id":           {ID: 300, Name: "x", Type: "pvp"},
		"bad type":         {ID: 1, Name: "x", Type: "arena"},
		"bad version":      {ID: 1, Name: "x", Type: "pvp", Version: "2.4"},
		"version overflow": {ID: 1, Name: "x", Type: "pvp", Version: "2.4.300"},
	}
	for name, e := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewStaticSource([]config.RealmEntry{e})
			assert.Error(t, err)
		})
	}
}
