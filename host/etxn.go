package host

import (
	"encoding/binary"

	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/ledger"
	"github.com/eatozee/xrpld-hooks/sha512h"
	"github.com/eatozee/xrpld-hooks/sto"
)

// EtxnReserve declares how many transactions this run intends to emit.
// One-shot: a second call returns ALREADY_SET.
func (c *Context) EtxnReserve(count uint32) int64 {
	if c.expectedEtxnCount > -1 {
		return hookapi.AlreadySet
	}
	if count < 1 {
		return hookapi.TooSmall
	}
	if count > hookapi.MaxEmit {
		return hookapi.TooBig
	}
	c.expectedEtxnCount = int64(count)
	return int64(count)
}

// EtxnBurden is the burden a transaction emitted now would carry: the
// originating burden times the reserved emission count.
func (c *Context) EtxnBurden() int64 {
	if c.expectedEtxnCount <= -1 {
		return hookapi.PrerequisiteNotMet
	}
	last := uint64(c.otxnBurden())
	burden := last * uint64(c.expectedEtxnCount)
	if burden < last {
		return hookapi.FeeTooLarge
	}
	return int64(burden)
}

// EtxnGeneration is the generation an emitted transaction would carry.
func (c *Context) EtxnGeneration() int64 {
	return c.otxnGeneration() + 1
}

// FeeBase returns the ledger base fee scaled by the configured margin.
func (c *Context) FeeBase() int64 {
	base := c.view.Fees().Base
	return int64(base * c.cfg.FeeBaseMultiplierNum / c.cfg.FeeBaseMultiplierDen)
}

// EtxnFeeBase prices an emitted transaction of the given byte length.
func (c *Context) EtxnFeeBase(txByteCount uint32) int64 {
	if c.expectedEtxnCount <= -1 {
		return hookapi.PrerequisiteNotMet
	}
	baseFee := uint64(c.FeeBase())
	burden := c.EtxnBurden()
	if burden < 1 {
		return hookapi.FeeTooLarge
	}
	fee := baseFee * uint64(burden)
	if fee < uint64(burden) || fee&(3<<62) != 0 {
		return hookapi.FeeTooLarge
	}
	c.feeBase = int64(fee)
	return int64(fee) * hookapi.DropsPerByte * int64(txByteCount)
}

// Nonce derives the next deterministic nonce for this run and records it
// for emission validation.
func (c *Context) Nonce() ([32]byte, int64) {
	var zero [32]byte
	if c.nonceCounter > hookapi.MaxNonce {
		return zero, hookapi.TooManyNonces
	}
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], c.nonceCounter)
	c.nonceCounter++
	hash := sha512h.HalfPrefixed(sha512h.PrefixEmitNonce, c.otxnID[:], ctr[:], c.account[:])
	c.noncesUsed[hash] = true
	return hash, 32
}

// NonceWrite derives a nonce and writes it to guest memory.
func (c *Context) NonceWrite(mem Memory, writePtr, writeLen uint32) int64 {
	if writeLen < 32 {
		return hookapi.TooSmall
	}
	if notInBounds(mem, writePtr, writeLen) {
		return hookapi.OutOfBounds
	}
	nonce, rc := c.Nonce()
	if rc < 0 {
		return rc
	}
	return writeOut(mem, writePtr, 32, nonce[:])
}

// EtxnDetailsWrite renders the EmitDetails template into guest memory.
func (c *Context) EtxnDetailsWrite(mem Memory, writePtr, writeLen uint32) int64 {
	if notInBounds(mem, writePtr, writeLen) {
		return hookapi.OutOfBounds
	}
	if writeLen < hookapi.EtxnDetailsSize {
		return hookapi.TooSmall
	}
	details, rc := c.EtxnDetails()
	if rc < 0 {
		return rc
	}
	return writeOut(mem, writePtr, writeLen, details)
}

// EtxnDetails writes the 105-byte EmitDetails object an emitted
// transaction must carry: generation, burden, parent txn id, a fresh
// nonce, and the callback account.
func (c *Context) EtxnDetails() ([]byte, int64) {
	if c.expectedEtxnCount <= -1 {
		return nil, hookapi.PrerequisiteNotMet
	}
	burden := c.EtxnBurden()
	if burden < 1 {
		return nil, hookapi.FeeTooLarge
	}
	generation := uint32(c.EtxnGeneration())

	nonce, rc := c.Nonce()
	if rc < 0 {
		return nil, rc
	}

	out := make([]byte, 0, hookapi.EtxnDetailsSize)
	out = append(out, 0xEC)       // begin EmitDetails
	out = append(out, 0x20, 0x2B) // EmitGeneration
	out = binary.BigEndian.AppendUint32(out, generation)
	out = append(out, 0x3C) // EmitBurden
	out = binary.BigEndian.AppendUint64(out, uint64(burden))
	out = append(out, 0x5A) // EmitParentTxnID
	out = append(out, c.otxnID[:]...)
	out = append(out, 0x5B) // EmitNonce
	out = append(out, nonce[:]...)
	out = append(out, 0x89, 0x14) // EmitCallback
	out = append(out, c.account[:]...)
	out = append(out, 0xE1) // end object

	return out, int64(len(out))
}

// Emit validates a fully formed serialized transaction against the
// emission rules and queues it for commit.
func (c *Context) Emit(blob []byte) int64 {
	if c.expectedEtxnCount < 0 {
		return hookapi.PrerequisiteNotMet
	}
	if int64(len(c.emitted)) >= c.expectedEtxnCount {
		return hookapi.TooManyEmittedTxn
	}
	if !sto.Validate(blob) {
		return hookapi.EmissionFailure
	}

	log := Logger().Sugar()
	fail := func(why string) int64 {
		log.Debugf("HookEmit[%x]: %s", c.account, why)
		return hookapi.EmissionFailure
	}

	// rule 1: Sequence present and zero
	if seq, err := sto.GetUInt32(blob, hookapi.SfSequence); err != nil || seq != 0 {
		return fail("Sequence missing or non-zero")
	}

	// rule 2: SigningPubKey present, empty or 33 zero bytes
	pk, err := sto.GetVL(blob, hookapi.SfSigningPubKey)
	if err != nil {
		return fail("SigningPubKey missing")
	}
	if len(pk) != 0 && len(pk) != 33 {
		return fail("SigningPubKey wrong size, expecting 33 bytes")
	}
	for _, b := range pk {
		if b != 0 {
			return fail("SigningPubKey present but non-zero")
		}
	}

	// rule 3: EmitDetails present and consistent with this run
	dOff, dLen, err := sto.Subfield(blob, hookapi.SfEmitDetails)
	if err != nil {
		return fail("EmitDetails missing")
	}
	details := blob[dOff : dOff+dLen]

	gen, genErr := sto.GetUInt32(details, hookapi.SfEmitGeneration)
	bur, burErr := sto.GetUInt64(details, hookapi.SfEmitBurden)
	parent, parErr := sto.GetHash256(details, hookapi.SfEmitParentTxnID)
	nonce, nonErr := sto.GetHash256(details, hookapi.SfEmitNonce)
	callback, cbErr := sto.GetAccountID(details, hookapi.SfEmitCallback)
	if genErr != nil || burErr != nil || parErr != nil || nonErr != nil || cbErr != nil {
		return fail("EmitDetails malformed")
	}

	if int64(gen) != c.EtxnGeneration() {
		return fail("EmitGeneration incorrect")
	}
	properBurden := c.EtxnBurden()
	if properBurden < 0 || int64(bur) != properBurden {
		return fail("EmitBurden incorrect")
	}
	if parent != c.otxnID {
		return fail("EmitParentTxnID incorrect")
	}
	if !c.noncesUsed[nonce] {
		return fail("EmitNonce was not generated by the nonce api")
	}
	if callback != c.account {
		return fail("EmitCallback must be the emitting hook's account")
	}

	// rule 4: no Signature
	if sto.Has(blob, hookapi.SfSignature) {
		return fail("Signature present but must not be")
	}

	// rule 5: LastLedgerSequence present and beyond the next ledger
	lls, err := sto.GetUInt32(blob, hookapi.SfLastLedgerSequence)
	if err != nil || lls < c.view.Seq()+1 {
		return fail("LastLedgerSequence missing or too soon")
	}

	// rule 6: FirstLedgerSequence present and not after the last
	fls, err := sto.GetUInt32(blob, hookapi.SfFirstLedgerSequence)
	if err != nil || fls > lls {
		return fail("FirstLedgerSequence must be present and <= LastLedgerSequence")
	}

	// rule 7: fee at or above the floor
	if c.feeBase == 0 {
		if rc := c.EtxnFeeBase(uint32(len(blob))); rc < 0 {
			return fail("fee could not be calculated")
		}
	}
	minFee := c.feeBase * hookapi.DropsPerByte * int64(len(blob))
	if minFee < 0 || c.feeBase < 0 {
		return fail("fee could not be calculated")
	}
	fee, err := sto.GetDrops(blob, hookapi.SfFee)
	if err != nil {
		return fail("Fee missing")
	}
	if int64(fee) < minFee {
		return fail("Fee below the required minimum")
	}

	id := sha512h.HalfPrefixed(sha512h.PrefixTxnID, blob)
	c.emitted = append(c.emitted, emittedTxn{id: id, blob: append([]byte(nil), blob...)})
	return int64(len(blob))
}

// EmittedIDs lists the queued emissions in order.
func (c *Context) EmittedIDs() []ledger.TxnID {
	out := make([]ledger.TxnID, len(c.emitted))
	for i, e := range c.emitted {
		out[i] = e.id
	}
	return out
}
