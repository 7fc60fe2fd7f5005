// Package sha512h computes the ledger's SHA-512 half digest: the first 32
// bytes of SHA-512 over the input.
package sha512h

import "crypto/sha512"

// Hash prefixes namespace the digest inputs, matching the ledger's
// conventions: four ASCII bytes prepended to the hashed material.
var (
	PrefixTxnID     = [4]byte{'T', 'X', 'N', 0}
	PrefixLedgerKey = [4]byte{'L', 'W', 'R', 0}
	PrefixEmitNonce = [4]byte{'M', 'I', 'N', 0}
)

// Half digests the concatenation of the given byte slices.
func Half(parts ...[]byte) [32]byte {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil)[:32])
	return out
}

// HalfPrefixed digests the prefix followed by the given parts.
func HalfPrefixed(prefix [4]byte, parts ...[]byte) [32]byte {
	h := sha512.New()
	h.Write(prefix[:])
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil)[:32])
	return out
}
