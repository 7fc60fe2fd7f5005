// Package addr converts between 20-byte account ids and their
// base58check "r-address" text form.
package addr

import (
	"crypto/sha256"
	"errors"

	"github.com/mr-tron/base58"
)

// The ledger's base58 dictionary. Position 0 is 'r', which is why account
// addresses start with that letter.
const alphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

var ledgerAlphabet = base58.NewAlphabet(alphabet)

// Token type prefixes.
const accountIDPrefix = 0x00

var (
	ErrBadLength   = errors.New("addr: account id must be 20 bytes")
	ErrBadChecksum = errors.New("addr: checksum mismatch")
	ErrBadPrefix   = errors.New("addr: not an account id token")
)

func checksum(payload []byte) [4]byte {
	h1 := sha256.Sum256(payload)
	h2 := sha256.Sum256(h1[:])
	var out [4]byte
	copy(out[:], h2[:4])
	return out
}

// Encode renders a 20-byte account id as an r-address.
func Encode(id []byte) (string, error) {
	if len(id) != 20 {
		return "", ErrBadLength
	}
	payload := make([]byte, 0, 25)
	payload = append(payload, accountIDPrefix)
	payload = append(payload, id...)
	ck := checksum(payload)
	payload = append(payload, ck[:]...)
	return base58.EncodeAlphabet(payload, ledgerAlphabet), nil
}

// Decode parses an r-address back into its 20-byte account id.
func Decode(raddr string) ([20]byte, error) {
	var id [20]byte
	raw, err := base58.DecodeAlphabet(raddr, ledgerAlphabet)
	if err != nil {
		return id, err
	}
	if len(raw) != 25 {
		return id, ErrBadLength
	}
	if raw[0] != accountIDPrefix {
		return id, ErrBadPrefix
	}
	ck := checksum(raw[:21])
	for i := 0; i < 4; i++ {
		if raw[21+i] != ck[i] {
			return id, ErrBadChecksum
		}
	}
	copy(id[:], raw[1:21])
	return id, nil
}
