package keylet

import (
	"bytes"
	"testing"
)

func TestSerializeParseRoundTrip(t *testing.T) {
	var acc [20]byte
	acc[0] = 0xAB
	kl := Account(acc)

	buf := kl.Bytes()
	if len(buf) != Size {
		t.Fatalf("serialized length %d", len(buf))
	}
	if buf[0] != byte(TypeAccount>>8) || buf[1] != byte(TypeAccount) {
		t.Fatalf("type framing % x", buf[:2])
	}

	back, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if back != kl {
		t.Fatalf("round trip mismatch: %+v != %+v", back, kl)
	}

	if _, err := Parse(buf[:33]); err == nil {
		t.Fatal("short keylet parsed")
	}
}

func TestDistinctKeys(t *testing.T) {
	var a, b [20]byte
	a[19] = 1
	b[19] = 2

	seen := map[[32]byte]string{}
	add := func(name string, kl Keylet) {
		if prev, dup := seen[kl.Key]; dup {
			t.Fatalf("key collision between %s and %s", name, prev)
		}
		seen[kl.Key] = name
	}

	add("account-a", Account(a))
	add("account-b", Account(b))
	add("ownerdir-a", OwnerDir(a))
	add("signers-a", Signers(a))
	add("hook-a", Hook(a))
	add("hookstate", HookState(a, [32]byte{1}))
	add("hookstate2", HookState(a, [32]byte{2}))
	add("offer", Offer(a, 1))
	add("offer2", Offer(a, 2))
	add("check", Check(a, 1))
	add("escrow", Escrow(a, 1))
	add("line", Line(a, b, [20]byte{}))
	add("preauth", DepositPreauth(a, b))
	add("paychan", PayChan(a, b, 1))
	add("emitted", Emitted([32]byte{9}))
	add("emitteddir", EmittedDir())
	add("amendments", Amendments())
	add("fees", Fees())
	add("negunl", NegativeUNL())
}

func TestQualityReplacesLowBytes(t *testing.T) {
	base := OwnerDir([20]byte{5})
	q := Quality(base, 0x1122334455667788)
	if !bytes.Equal(q.Key[:24], base.Key[:24]) {
		t.Fatal("quality must preserve the high 24 key bytes")
	}
	want := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	if !bytes.Equal(q.Key[24:], want) {
		t.Fatalf("quality suffix % x", q.Key[24:])
	}
}

func TestUncheckedAndChildPassKeyThrough(t *testing.T) {
	key := [32]byte{7, 7, 7}
	if Unchecked(key).Key != key {
		t.Fatal("unchecked must not hash")
	}
	if Child(key).Key != key {
		t.Fatal("child must not hash")
	}
}
