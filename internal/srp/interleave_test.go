package srp

import (
	"encoding/hex"
	"testing"
)

func TestInterleaveHash(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want string
	}{
		{
			name: "no leading zeros",
			s:    "130a5102e0af454554ac7b7a5346460b681ae3a10d7c989c748245a186312f57",
			want: "faf9a278f6d4f320367f0f0d548960c5a2c55fdd6bdafc17255ffa53b63569fe170ecfbf55cfd16f",
		},
		{
			name: "one leading zero",
			s:    "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
			want: "9f32f1e4f14df7375d78e0a1d04857bada15d3d91e3ba8100472b55f54c99c703e7592b8e38cb19c",
		},
		{
			name: "three leading zeros",
			s:    "000000030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
			want: "a8242d813f8d81dcfd347eee260dd9acd01c58ba12a8d6e319fd711c532c6de87821bbc4641ab616",
		},
		{
			name: "full vector S",
			s:    vecS,
			want: vecK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SharedSecret(mustArray32(t, tt.s))
			got := InterleaveHash(s)
			if hex.EncodeToString(got[:]) != tt.want {
				t.Errorf("InterleaveHash(%s) = %x, want %s", tt.s, got, tt.want)
			}
			// детерминированность
			if again := InterleaveHash(s); again != got {
				t.Errorf("InterleaveHash is not deterministic")
			}
		})
	}
}

func TestInterleaveHash_AllZero(t *testing.T) {
	// не должно паниковать на вырожденном S
	k := InterleaveHash(SharedSecret{})
	if k.IsZero() {
		t.Fatal("expected hash of empty halves, got zero key")
	}
}
