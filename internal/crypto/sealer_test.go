package crypto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSealer(t *testing.T) *Sealer {
	t.Helper()
	s, err := NewSealerFromHex(strings.Repeat("ab", 32))
	require.NoError(t, err)
	return s
}

func TestSealer_SealOpen(t *testing.T) {
	s := testSealer(t)
	key := bytes.Repeat([]byte{0x42}, 40)

	sealed, err := s.Seal(key, []byte("ARLYON"))
	require.NoError(t, err)
	assert.Len(t, sealed, 24+40+16)
	assert.False(t, bytes.Contains(sealed, key), "plaintext must not leak into sealed data")

	opened, err := s.Open(sealed, []byte("ARLYON"))
	require.NoError(t, err)
	assert.Equal(t, key, opened)
}

func TestSealer_WrongAssociatedData(t *testing.T) {
	s := testSealer(t)

	sealed, err := s.Seal([]byte("session key"), []byte("ALICE"))
	require.NoError(t, err)

	_, err = s.Open(sealed, []byte("BOB"))
	assert.Error(t, err, "key sealed for one account must not open for another")
}

func TestSealer_Tampered(t *testing.T) {
	s := testSealer(t)

	sealed, err := s.Seal([]byte("session key"), nil)
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xFF

	_, err = s.Open(sealed, nil)
	assert.Error(t, err)
}

func TestSealer_TooShort(t *testing.T) {
	s := testSealer(t)
	_, err := s.Open(make([]byte, 10), nil)
	assert.ErrorIs(t, err, ErrSealedDataTooShort)
}

func TestNewSealer_BadKey(t *testing.T) {
	_, err := NewSealer(make([]byte, 16))
	assert.Error(t, err)

	_, err = NewSealerFromHex("zz")
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	if !Equal(a, []byte{1, 2, 3, 4}) {
		t.Fatal("expected equal slices to compare equal")
	}
	if Equal(a, []byte{1, 2, 3, 5}) {
		t.Fatal("expected different slices to differ")
	}
	if Equal(a, []byte{1, 2, 3}) {
		t.Fatal("expected slices of different length to differ")
	}
}

func TestRandomBytes(t *testing.T) {
	a, err := RandomBytes(16)
	if err != nil {
		t.Fatalf("RandomBytes: %v", err)
	}
	b, err := RandomBytes(16)
	if err != nil {
		t.Fatalf("RandomBytes: %v", err)
	}
	if len(a) != 16 || bytes.Equal(a, b) {
		t.Fatalf("expected two distinct 16-byte values, got %x and %x", a, b)
	}
}
