package srp

import "crypto/sha1"

// InterleaveHash derives the 40-byte session key from S.
//
// Leading zero bytes of S (little-endian) are skipped in pairs, the remainder is
// split into even and odd bytes, each half is hashed, and the two digests are
// interleaved byte by byte.
func InterleaveHash(s SharedSecret) SessionKey {
	p := 0
	for p < len(s) && s[p] == 0 {
		p++
	}
	if p&1 == 1 {
		p++
	}
	p /= 2

	var even, odd [KeySize / 2]byte
	for i := range even {
		even[i] = s[2*i]
		odd[i] = s[2*i+1]
	}

	he := sha1.Sum(even[p:])
	ho := sha1.Sum(odd[p:])

	var k SessionKey
	for i := range he {
		k[2*i] = he[i]
		k[2*i+1] = ho[i]
	}
	return k
}
