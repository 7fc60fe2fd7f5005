// Package keylet builds the typed 34-byte identifiers that name ledger
// objects: a 2-byte big-endian ledger entry type followed by a 32-byte key.
package keylet

import (
	"encoding/binary"
	"errors"

	"github.com/eatozee/xrpld-hooks/sha512h"
)

// Ledger entry type codes carried in the first two keylet bytes.
const (
	TypeAccount        uint16 = 0x0061 // 'a'
	TypeDirNode        uint16 = 0x0064 // 'd'
	TypeRippleState    uint16 = 0x0072 // 'r'
	TypeOffer          uint16 = 0x006F // 'o'
	TypeSignerList     uint16 = 0x0053 // 'S'
	TypeCheck          uint16 = 0x0043 // 'C'
	TypeDepositPreauth uint16 = 0x0070 // 'p'
	TypeEscrow         uint16 = 0x0075 // 'u'
	TypePayChannel     uint16 = 0x0078 // 'x'
	TypeAmendments     uint16 = 0x0066 // 'f'
	TypeFeeSettings    uint16 = 0x0073 // 's'
	TypeSkipList       uint16 = 0x0068 // 'h'
	TypeNegativeUNL    uint16 = 0x004E // 'N'
	TypeHook           uint16 = 0x0048 // 'H'
	TypeHookState      uint16 = 0x0076 // 'v'
	TypeEmittedTxn     uint16 = 0x0045 // 'E'
	TypeChild          uint16 = 0x1CD7
	TypeAny            uint16 = 0x0000
)

// Hashing namespaces feeding the digest, one per keylet kind.
const (
	spaceAccount        = "a"
	spaceOwnerDir       = "O"
	spaceDirNode        = "d"
	spaceRippleState    = "r"
	spaceOffer          = "o"
	spaceSignerList     = "S"
	spaceCheck          = "C"
	spaceDepositPreauth = "p"
	spaceEscrow         = "u"
	spacePayChannel     = "x"
	spaceHook           = "H"
	spaceHookState      = "v"
	spaceEmittedTxn     = "E"
	spaceEmittedDir     = "D"
)

// Size is the serialized keylet width.
const Size = 34

// Keylet names one ledger object.
type Keylet struct {
	Type uint16
	Key  [32]byte
}

var ErrBadKeylet = errors.New("keylet: serialized form must be 34 bytes")

// Append serializes kl to dst.
func (kl Keylet) Append(dst []byte) []byte {
	dst = append(dst, byte(kl.Type>>8), byte(kl.Type))
	return append(dst, kl.Key[:]...)
}

// Bytes returns the 34-byte serialized form.
func (kl Keylet) Bytes() []byte {
	return kl.Append(make([]byte, 0, Size))
}

// Parse reads a serialized keylet.
func Parse(buf []byte) (Keylet, error) {
	if len(buf) != Size {
		return Keylet{}, ErrBadKeylet
	}
	var kl Keylet
	kl.Type = uint16(buf[0])<<8 | uint16(buf[1])
	copy(kl.Key[:], buf[2:])
	return kl, nil
}

func digest(space string, parts ...[]byte) [32]byte {
	all := make([][]byte, 0, len(parts)+1)
	all = append(all, []byte(space), []byte{0})
	all = append(all, parts...)
	return sha512h.Half(all...)
}

func u32be(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

func u64be(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

// Account names an account root.
func Account(id [20]byte) Keylet {
	return Keylet{Type: TypeAccount, Key: digest(spaceAccount, id[:])}
}

// OwnerDir names the root page of an account's owner directory.
func OwnerDir(id [20]byte) Keylet {
	return Keylet{Type: TypeDirNode, Key: digest(spaceOwnerDir, id[:])}
}

// Signers names an account's signer list.
func Signers(id [20]byte) Keylet {
	return Keylet{Type: TypeSignerList, Key: digest(spaceSignerList, id[:], u32be(0))}
}

// Hook names the hook object installed on an account.
func Hook(id [20]byte) Keylet {
	return Keylet{Type: TypeHook, Key: digest(spaceHook, id[:])}
}

// HookState names one hook-state row of an account.
func HookState(id [20]byte, key [32]byte) Keylet {
	return Keylet{Type: TypeHookState, Key: digest(spaceHookState, id[:], key[:])}
}

// Offer names an offer by owner and sequence.
func Offer(id [20]byte, seq uint32) Keylet {
	return Keylet{Type: TypeOffer, Key: digest(spaceOffer, id[:], u32be(seq))}
}

// Check names a check by owner and sequence.
func Check(id [20]byte, seq uint32) Keylet {
	return Keylet{Type: TypeCheck, Key: digest(spaceCheck, id[:], u32be(seq))}
}

// Escrow names an escrow by owner and sequence.
func Escrow(id [20]byte, seq uint32) Keylet {
	return Keylet{Type: TypeEscrow, Key: digest(spaceEscrow, id[:], u32be(seq))}
}

// Line names the trust line between two accounts in a currency.
func Line(hi, lo [20]byte, currency [20]byte) Keylet {
	return Keylet{Type: TypeRippleState, Key: digest(spaceRippleState, hi[:], lo[:], currency[:])}
}

// DepositPreauth names a preauthorization from owner to authorized.
func DepositPreauth(owner, authorized [20]byte) Keylet {
	return Keylet{Type: TypeDepositPreauth, Key: digest(spaceDepositPreauth, owner[:], authorized[:])}
}

// PayChan names a payment channel.
func PayChan(src, dst [20]byte, seq uint32) Keylet {
	return Keylet{Type: TypePayChannel, Key: digest(spacePayChannel, src[:], dst[:], u32be(seq))}
}

// Page names a directory page by root key and index.
func Page(root [32]byte, index uint64) Keylet {
	return Keylet{Type: TypeDirNode, Key: digest(spaceDirNode, root[:], u64be(index))}
}

// Quality rebases a directory keylet at the given quality: the low eight
// key bytes are replaced, no hashing involved.
func Quality(base Keylet, quality uint64) Keylet {
	out := base
	binary.BigEndian.PutUint64(out.Key[24:], quality)
	return out
}

// Child wraps an arbitrary key as a child reference.
func Child(key [32]byte) Keylet {
	return Keylet{Type: TypeChild, Key: key}
}

// Unchecked wraps an arbitrary key with no type expectation.
func Unchecked(key [32]byte) Keylet {
	return Keylet{Type: TypeAny, Key: key}
}

// Emitted names the emitted-transaction ledger object for a txn id.
func Emitted(txnID [32]byte) Keylet {
	return Keylet{Type: TypeEmittedTxn, Key: digest(spaceEmittedTxn, txnID[:])}
}

// EmittedDir names the root of the emitted-transactions directory.
func EmittedDir() Keylet {
	return Keylet{Type: TypeDirNode, Key: digest(spaceEmittedDir)}
}

// Skip names the skip list, optionally for a past ledger.
func Skip(seq uint32, havePast bool) Keylet {
	if !havePast {
		return Keylet{Type: TypeSkipList, Key: digest("s")}
	}
	return Keylet{Type: TypeSkipList, Key: digest("s", u32be(seq>>16))}
}

// Amendments names the amendments singleton.
func Amendments() Keylet {
	return Keylet{Type: TypeAmendments, Key: digest("f")}
}

// Fees names the fee settings singleton.
func Fees() Keylet {
	return Keylet{Type: TypeFeeSettings, Key: digest("e")}
}

// NegativeUNL names the negative UNL singleton.
func NegativeUNL() Keylet {
	return Keylet{Type: TypeNegativeUNL, Key: digest("N")}
}
