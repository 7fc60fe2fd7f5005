package addr

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ids := [][]byte{
		make([]byte, 20),
		bytes.Repeat([]byte{0xFF}, 20),
		{0xB5, 0xF7, 0x62, 0x79, 0x8A, 0x53, 0xD5, 0x43, 0xA0, 0x14,
			0xCA, 0xF8, 0xB2, 0x97, 0xCF, 0xF8, 0xF2, 0xF9, 0x37, 0xE8},
	}
	for _, id := range ids {
		text, err := Encode(id)
		if err != nil {
			t.Fatalf("Encode(% x): %v", id, err)
		}
		if !strings.HasPrefix(text, "r") {
			t.Fatalf("address %q does not start with r", text)
		}
		back, err := Decode(text)
		if err != nil {
			t.Fatalf("Decode(%q): %v", text, err)
		}
		if !bytes.Equal(back[:], id) {
			t.Fatalf("round trip: % x -> %q -> % x", id, text, back)
		}
	}
}

func TestEncodeRejectsBadLength(t *testing.T) {
	if _, err := Encode(make([]byte, 19)); err != ErrBadLength {
		t.Fatalf("19 bytes: %v", err)
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	text, err := Encode(bytes.Repeat([]byte{0x11}, 20))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// flip one character to another alphabet character
	broken := []byte(text)
	if broken[3] == 'p' {
		broken[3] = 's'
	} else {
		broken[3] = 'p'
	}
	if _, err := Decode(string(broken)); err == nil {
		t.Fatal("corrupted address decoded")
	}
	if _, err := Decode("not base58 0OIl"); err == nil {
		t.Fatal("invalid characters decoded")
	}
}
