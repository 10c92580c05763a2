package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
)

// Equal сравнивает два секретных значения за время, не зависящее от содержимого.
// Все сравнения доказательств (M1, R2) обязаны идти через эту функцию.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// RandomBytes fills a fresh n-byte slice from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("reading %d random bytes: %w", n, err)
	}
	return b, nil
}
