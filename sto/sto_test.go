package sto

import (
	"bytes"
	"testing"

	"github.com/eatozee/xrpld-hooks/hookapi"
)

func sampleTxn() []byte {
	b := NewBuilder()
	b.UInt16(hookapi.SfTransactionType, 0) // Payment
	b.UInt32(hookapi.SfSequence, 7)
	b.Drops(hookapi.SfFee, 12)
	b.VL(hookapi.SfSigningPubKey, make([]byte, 33))
	b.AccountID(hookapi.SfAccount, [20]byte{0xAA, 0x01})
	b.AccountID(hookapi.SfDestination, [20]byte{0xBB, 0x02})
	return b.Bytes()
}

func TestVLPrefixRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 192, 193, 400, 12480, 12481, 20000} {
		enc := AppendVL(nil, n)
		got, consumed, err := decodeVL(enc)
		if err != nil {
			t.Fatalf("decodeVL(%d): %v", n, err)
		}
		if got != n || consumed != len(enc) {
			t.Fatalf("decodeVL(%d) = (%d, %d), want (%d, %d)", n, got, consumed, n, len(enc))
		}
	}
}

func TestPreambleRoundTrip(t *testing.T) {
	ids := []uint32{
		hookapi.FieldID(1, 2),
		hookapi.FieldID(2, 43),  // uncommon field
		hookapi.FieldID(16, 4),  // uncommon type
		hookapi.FieldID(17, 20), // both uncommon
	}
	for _, id := range ids {
		enc := AppendPreamble(nil, id)
		enc = append(enc, 0, 0) // decode looks ahead
		typ, code, _, err := decodePreamble(enc)
		if err != nil {
			t.Fatalf("decodePreamble(%06x): %v", id, err)
		}
		if hookapi.FieldID(typ, code) != id {
			t.Fatalf("preamble %06x decoded as %06x", id, hookapi.FieldID(typ, code))
		}
	}
}

func TestSubfieldScalars(t *testing.T) {
	txn := sampleTxn()

	seq, err := GetUInt32(txn, hookapi.SfSequence)
	if err != nil || seq != 7 {
		t.Fatalf("Sequence = %d, %v", seq, err)
	}

	acc, err := GetAccountID(txn, hookapi.SfAccount)
	if err != nil || acc[0] != 0xAA {
		t.Fatalf("Account = %x, %v", acc, err)
	}

	drops, err := GetDrops(txn, hookapi.SfFee)
	if err != nil || drops != 12 {
		t.Fatalf("Fee = %d, %v", drops, err)
	}

	if _, _, err := Subfield(txn, hookapi.SfEmitDetails); err != ErrNotFound {
		t.Fatalf("absent field: %v, want ErrNotFound", err)
	}
}

func TestSubfieldStripsVLPrefix(t *testing.T) {
	txn := sampleTxn()
	off, length, err := Subfield(txn, hookapi.SfAccount)
	if err != nil {
		t.Fatalf("Subfield: %v", err)
	}
	if length != 20 {
		t.Fatalf("account payload length = %d, want 20", length)
	}
	if txn[off] != 0xAA {
		t.Fatalf("payload starts at %02x, want AA", txn[off])
	}
}

func TestArrayReturnedWrapped(t *testing.T) {
	b := NewBuilder()
	b.Array(hookapi.SfSignerEntries, func(b *Builder) {
		for i := 0; i < 3; i++ {
			b.Object(hookapi.SfSignerEntry, func(b *Builder) {
				b.UInt16(hookapi.SfSignerWeight, uint16(i+1))
				b.AccountID(hookapi.SfAccount, [20]byte{byte(i)})
			})
		}
	})
	obj := b.Bytes()

	off, length, err := Subfield(obj, hookapi.SfSignerEntries)
	if err != nil {
		t.Fatalf("Subfield: %v", err)
	}
	arr := obj[off : off+length]
	if arr[0]&0xF0 != 0xF0 || arr[len(arr)-1] != 0xF1 {
		t.Fatalf("array not fully wrapped: % x", arr)
	}

	for i := uint32(0); i < 3; i++ {
		eoff, elen, err := Subarray(arr, i)
		if err != nil {
			t.Fatalf("Subarray(%d): %v", i, err)
		}
		entry := arr[eoff : eoff+elen]
		inner, err := Locate(entry)
		if err != nil {
			t.Fatalf("Locate entry %d: %v", i, err)
		}
		w, err := GetUInt16(entry[inner.PayloadOff:inner.PayloadOff+inner.PayloadLen], hookapi.SfSignerWeight)
		if err != nil || w != uint16(i+1) {
			t.Fatalf("entry %d weight = %d, %v", i, w, err)
		}
	}

	if _, _, err := Subarray(arr, 3); err != ErrNotFound {
		t.Fatalf("Subarray(3): %v, want ErrNotFound", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		ok   bool
	}{
		{"sample txn", sampleTxn(), true},
		{"truncated", sampleTxn()[:5], false},
		{"bad type 9", []byte{0x91, 0x00}, false},
		{"bad type 13", []byte{0xD1, 0x00}, false},
		{"unterminated object", []byte{0xEC, 0x11, 0x00, 0x01}, false},
	}
	for _, tc := range cases {
		if got := Validate(tc.buf); got != tc.ok {
			t.Fatalf("%s: Validate = %v, want %v", tc.name, got, tc.ok)
		}
	}
}

func TestValidateRejectsDeepNesting(t *testing.T) {
	// 12 nested objects exceeds the depth cap of 10
	buf := bytes.Repeat([]byte{0xEC}, 12)
	buf = append(buf, bytes.Repeat([]byte{0xE1}, 12)...)
	if Validate(buf) {
		t.Fatal("deeply nested object validated")
	}
}

func TestEmplaceCanonicalOrder(t *testing.T) {
	src := sampleTxn()

	// LastLedgerSequence sorts between Sequence and Fee
	field := NewBuilder().UInt32(hookapi.SfLastLedgerSequence, 99).Bytes()

	dst := make([]byte, len(src)+len(field))
	n, err := Emplace(dst, src, field, hookapi.SfLastLedgerSequence)
	if err != nil {
		t.Fatalf("Emplace: %v", err)
	}
	out := dst[:n]
	if !Validate(out) {
		t.Fatal("emplaced object does not validate")
	}

	v, err := GetUInt32(out, hookapi.SfLastLedgerSequence)
	if err != nil || v != 99 {
		t.Fatalf("LastLedgerSequence = %d, %v", v, err)
	}

	// canonical position: before Fee's preamble
	var order []uint32
	if err := Each(out, func(f Field) bool {
		order = append(order, f.ID())
		return true
	}); err != nil {
		t.Fatalf("Each: %v", err)
	}
	for i := 1; i < len(order); i++ {
		if order[i-1] > order[i] {
			t.Fatalf("fields out of canonical order: %06x before %06x", order[i-1], order[i])
		}
	}
}

func TestEmplaceReplacesExisting(t *testing.T) {
	src := sampleTxn()
	field := NewBuilder().UInt32(hookapi.SfSequence, 42).Bytes()

	dst := make([]byte, len(src)+len(field))
	n, err := Emplace(dst, src, field, hookapi.SfSequence)
	if err != nil {
		t.Fatalf("Emplace: %v", err)
	}
	out := dst[:n]
	if n != len(src) {
		t.Fatalf("replacement changed size: %d -> %d", len(src), n)
	}
	v, _ := GetUInt32(out, hookapi.SfSequence)
	if v != 42 {
		t.Fatalf("Sequence = %d, want 42", v)
	}
}

func TestErase(t *testing.T) {
	src := sampleTxn()
	dst := make([]byte, len(src))
	n, err := Erase(dst, src, hookapi.SfSequence)
	if err != nil {
		t.Fatalf("Erase: %v", err)
	}
	out := dst[:n]
	if Has(out, hookapi.SfSequence) {
		t.Fatal("Sequence still present after Erase")
	}
	if !Validate(out) {
		t.Fatal("erased object does not validate")
	}
	if _, err := Erase(dst, out, hookapi.SfEmitDetails); err != ErrNotFound {
		t.Fatalf("Erase absent field: %v, want ErrNotFound", err)
	}
}

func TestEraseThenEmplaceRoundTrip(t *testing.T) {
	src := sampleTxn()
	// the wrapped field: preamble + payload
	wrapped := NewBuilder().UInt32(hookapi.SfSequence, 7).Bytes()

	tmp := make([]byte, len(src))
	n, err := Erase(tmp, src, hookapi.SfSequence)
	if err != nil {
		t.Fatalf("Erase: %v", err)
	}
	dst := make([]byte, len(src))
	n, err = Emplace(dst, tmp[:n], wrapped, hookapi.SfSequence)
	if err != nil {
		t.Fatalf("Emplace: %v", err)
	}
	if !bytes.Equal(dst[:n], src) {
		t.Fatalf("erase+emplace != original\n got % x\nwant % x", dst[:n], src)
	}
}

func TestAmountWidths(t *testing.T) {
	native := NewBuilder().Drops(hookapi.SfAmount, 1000000).Bytes()
	f, err := Locate(native)
	if err != nil || f.PayloadLen != 8 {
		t.Fatalf("native amount: len %d, %v", f.PayloadLen, err)
	}

	iou := AppendPreamble(nil, hookapi.SfAmount)
	iou = append(iou, make([]byte, 48)...)
	iou[len(iou)-48] = 0x80 // issued-currency flag
	f, err = Locate(iou)
	if err != nil || f.PayloadLen != 48 {
		t.Fatalf("iou amount: len %d, %v", f.PayloadLen, err)
	}
}
