package host

import (
	"crypto/ed25519"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/eatozee/xrpld-hooks/addr"
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/keylet"
	"github.com/eatozee/xrpld-hooks/sha512h"
)

// UtilSha512h writes the SHA-512 half digest of the input.
func (c *Context) UtilSha512h(mem Memory, writePtr, writeLen, readPtr, readLen uint32) int64 {
	if writeLen < 32 {
		return hookapi.TooSmall
	}
	if notInBounds(mem, writePtr, writeLen) || notInBounds(mem, readPtr, readLen) {
		return hookapi.OutOfBounds
	}
	data, ok := mem.Read(readPtr, readLen)
	if !ok {
		return hookapi.OutOfBounds
	}
	hash := sha512h.Half(data)
	return writeOut(mem, writePtr, writeLen, hash[:])
}

// UtilRaddr encodes a 20-byte account id as an r-address.
func (c *Context) UtilRaddr(mem Memory, writePtr, writeLen, readPtr, readLen uint32) int64 {
	if notInBounds(mem, writePtr, writeLen) || notInBounds(mem, readPtr, readLen) {
		return hookapi.OutOfBounds
	}
	if readLen != 20 {
		return hookapi.InvalidArgument
	}
	id, ok := mem.Read(readPtr, readLen)
	if !ok {
		return hookapi.OutOfBounds
	}
	raddr, err := addr.Encode(id)
	if err != nil {
		return hookapi.InvalidArgument
	}
	if len(raddr) > int(writeLen) {
		return hookapi.TooSmall
	}
	return writeOut(mem, writePtr, writeLen, []byte(raddr))
}

// UtilAccid decodes an r-address into its 20-byte account id.
func (c *Context) UtilAccid(mem Memory, writePtr, writeLen, readPtr, readLen uint32) int64 {
	if notInBounds(mem, writePtr, writeLen) || notInBounds(mem, readPtr, readLen) {
		return hookapi.OutOfBounds
	}
	if writeLen < 20 {
		return hookapi.TooSmall
	}
	if readLen > 49 {
		return hookapi.TooBig
	}
	text, ok := mem.Read(readPtr, readLen)
	if !ok {
		return hookapi.OutOfBounds
	}
	id, err := addr.Decode(string(text))
	if err != nil {
		return hookapi.InvalidArgument
	}
	return writeOut(mem, writePtr, writeLen, id[:])
}

// UtilVerify checks a signature over the data using the ledger's key
// conventions: 33-byte keys starting 0xED are ed25519, 0x02/0x03 are
// compressed secp256k1 verified over the SHA-512 half of the data.
// Returns 1 for a valid signature, 0 otherwise.
func (c *Context) UtilVerify(mem Memory, dreadPtr, dreadLen, sreadPtr, sreadLen, kreadPtr, kreadLen uint32) int64 {
	if notInBounds(mem, dreadPtr, dreadLen) ||
		notInBounds(mem, sreadPtr, sreadLen) ||
		notInBounds(mem, kreadPtr, kreadLen) {
		return hookapi.OutOfBounds
	}

	data, ok1 := mem.Read(dreadPtr, dreadLen)
	sig, ok2 := mem.Read(sreadPtr, sreadLen)
	key, ok3 := mem.Read(kreadPtr, kreadLen)
	if !ok1 || !ok2 || !ok3 {
		return hookapi.OutOfBounds
	}
	if len(key) != 33 {
		return 0
	}

	switch key[0] {
	case 0xED:
		if len(sig) != ed25519.SignatureSize {
			return 0
		}
		if ed25519.Verify(ed25519.PublicKey(key[1:]), data, sig) {
			return 1
		}
		return 0
	case 0x02, 0x03:
		pub, err := secp256k1.ParsePubKey(key)
		if err != nil {
			return 0
		}
		parsed, err := secpecdsa.ParseDERSignature(sig)
		if err != nil {
			return 0
		}
		digest := sha512h.Half(data)
		if parsed.Verify(digest[:], pub) {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// UtilKeylet builds a 34-byte keylet. The six positional arguments are
// interpreted per keylet type; unused ones must be zero.
func (c *Context) UtilKeylet(mem Memory, writePtr, writeLen, keyletType, a, b, d, e, f, g uint32) int64 {
	if notInBounds(mem, writePtr, writeLen) {
		return hookapi.OutOfBounds
	}
	if writeLen < keylet.Size {
		return hookapi.TooSmall
	}
	if keyletType < hookapi.KeyletHook || keyletType > hookapi.KeyletEmitted {
		return hookapi.InvalidArgument
	}

	zero := func(args ...uint32) bool {
		for _, v := range args {
			if v != 0 {
				return false
			}
		}
		return true
	}
	nonzero := func(args ...uint32) bool {
		for _, v := range args {
			if v == 0 {
				return false
			}
		}
		return true
	}

	readAccount := func(ptr, length uint32) ([20]byte, int64) {
		var id [20]byte
		if notInBounds(mem, ptr, length) {
			return id, hookapi.OutOfBounds
		}
		if length != 20 {
			return id, hookapi.InvalidArgument
		}
		buf, ok := mem.Read(ptr, length)
		if !ok {
			return id, hookapi.OutOfBounds
		}
		copy(id[:], buf)
		return id, 0
	}
	readHash := func(ptr, length uint32) ([32]byte, int64) {
		var h [32]byte
		if notInBounds(mem, ptr, length) {
			return h, hookapi.OutOfBounds
		}
		if length != 32 {
			return h, hookapi.InvalidArgument
		}
		buf, ok := mem.Read(ptr, length)
		if !ok {
			return h, hookapi.OutOfBounds
		}
		copy(h[:], buf)
		return h, 0
	}

	var kl keylet.Keylet
	switch keyletType {

	case hookapi.KeyletQuality:
		// a serialized keylet plus a split 64-bit argument
		if !nonzero(a, b, d, e) || !zero(f, g) {
			return hookapi.InvalidArgument
		}
		if notInBounds(mem, a, b) {
			return hookapi.OutOfBounds
		}
		if b != keylet.Size {
			return hookapi.InvalidArgument
		}
		buf, ok := mem.Read(a, b)
		if !ok {
			return hookapi.OutOfBounds
		}
		base, err := keylet.Parse(buf)
		if err != nil {
			return hookapi.NoSuchKeylet
		}
		arg := uint64(d)<<32 | uint64(e)
		kl = keylet.Quality(base, arg)

	case hookapi.KeyletChild, hookapi.KeyletEmitted, hookapi.KeyletUnchecked:
		if !nonzero(a, b) || !zero(d, e, f, g) {
			return hookapi.InvalidArgument
		}
		h, rc := readHash(a, b)
		if rc < 0 {
			return rc
		}
		switch keyletType {
		case hookapi.KeyletChild:
			kl = keylet.Child(h)
		case hookapi.KeyletEmitted:
			kl = keylet.Emitted(h)
		default:
			kl = keylet.Unchecked(h)
		}

	case hookapi.KeyletOwnerDir, hookapi.KeyletSigners, hookapi.KeyletAccount, hookapi.KeyletHook:
		if !nonzero(a, b) || !zero(d, e, f, g) {
			return hookapi.InvalidArgument
		}
		id, rc := readAccount(a, b)
		if rc < 0 {
			return rc
		}
		switch keyletType {
		case hookapi.KeyletHook:
			kl = keylet.Hook(id)
		case hookapi.KeyletSigners:
			kl = keylet.Signers(id)
		case hookapi.KeyletOwnerDir:
			kl = keylet.OwnerDir(id)
		default:
			kl = keylet.Account(id)
		}

	case hookapi.KeyletOffer, hookapi.KeyletCheck, hookapi.KeyletEscrow:
		if !nonzero(a, b, d) || !zero(e, f, g) {
			return hookapi.InvalidArgument
		}
		id, rc := readAccount(a, b)
		if rc < 0 {
			return rc
		}
		switch keyletType {
		case hookapi.KeyletCheck:
			kl = keylet.Check(id, d)
		case hookapi.KeyletEscrow:
			kl = keylet.Escrow(id, d)
		default:
			kl = keylet.Offer(id, d)
		}

	case hookapi.KeyletPage:
		if !nonzero(a, b, d, e) || !zero(f, g) {
			return hookapi.InvalidArgument
		}
		h, rc := readHash(a, b)
		if rc < 0 {
			return rc
		}
		kl = keylet.Page(h, uint64(d)<<32|uint64(e))

	case hookapi.KeyletHookState:
		if !nonzero(a, b, d, e) || !zero(f, g) {
			return hookapi.InvalidArgument
		}
		id, rc := readAccount(a, b)
		if rc < 0 {
			return rc
		}
		h, rc := readHash(d, e)
		if rc < 0 {
			return rc
		}
		kl = keylet.HookState(id, h)

	case hookapi.KeyletSkip:
		if !zero(d, e, f, g) {
			return hookapi.InvalidArgument
		}
		kl = keylet.Skip(a, b != 0)

	case hookapi.KeyletAmendments, hookapi.KeyletFees, hookapi.KeyletNegativeUNL, hookapi.KeyletEmittedDir:
		if !zero(a, b, d, e, f, g) {
			return hookapi.InvalidArgument
		}
		switch keyletType {
		case hookapi.KeyletAmendments:
			kl = keylet.Amendments()
		case hookapi.KeyletFees:
			kl = keylet.Fees()
		case hookapi.KeyletNegativeUNL:
			kl = keylet.NegativeUNL()
		default:
			kl = keylet.EmittedDir()
		}

	case hookapi.KeyletLine:
		if !nonzero(a, b, d, e, f, g) {
			return hookapi.InvalidArgument
		}
		hi, rc := readAccount(a, b)
		if rc < 0 {
			return rc
		}
		lo, rc := readAccount(d, e)
		if rc < 0 {
			return rc
		}
		cur, rc := readAccount(f, g) // currencies are 20 bytes too
		if rc < 0 {
			return rc
		}
		kl = keylet.Line(hi, lo, cur)

	case hookapi.KeyletDepositPreauth:
		if !nonzero(a, b, d, e) || !zero(f, g) {
			return hookapi.InvalidArgument
		}
		owner, rc := readAccount(a, b)
		if rc < 0 {
			return rc
		}
		authorized, rc := readAccount(d, e)
		if rc < 0 {
			return rc
		}
		kl = keylet.DepositPreauth(owner, authorized)

	case hookapi.KeyletPaychan:
		if !nonzero(a, b, d, e, f) || !zero(g) {
			return hookapi.InvalidArgument
		}
		src, rc := readAccount(a, b)
		if rc < 0 {
			return rc
		}
		dst, rc := readAccount(d, e)
		if rc < 0 {
			return rc
		}
		kl = keylet.PayChan(src, dst, f)

	default:
		return hookapi.NoSuchKeylet
	}

	return writeOut(mem, writePtr, writeLen, kl.Bytes())
}
