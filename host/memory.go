package host

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/eatozee/xrpld-hooks/hookapi"
)

// Memory is the guest linear memory as host calls see it. The wazero
// module memory satisfies it through wasmMemory; tests use a plain slice.
type Memory interface {
	Size() uint32
	Read(ptr, length uint32) ([]byte, bool)
	Write(ptr uint32, data []byte) bool
}

type wasmMemory struct {
	mem api.Memory
}

func (m wasmMemory) Size() uint32 { return m.mem.Size() }

func (m wasmMemory) Read(ptr, length uint32) ([]byte, bool) {
	return m.mem.Read(ptr, length)
}

func (m wasmMemory) Write(ptr uint32, data []byte) bool {
	return m.mem.Write(ptr, data)
}

// notInBounds mirrors the canonical bounds check: ptr + len must not run
// past the end of guest memory.
func notInBounds(mem Memory, ptr, length uint32) bool {
	return uint64(ptr)+uint64(length) > uint64(mem.Size())
}

// writeOut copies src into guest memory at [dstPtr, dstPtr+dstLen), bounded
// by the shorter of the two, and returns the byte count or OUT_OF_BOUNDS.
func writeOut(mem Memory, dstPtr, dstLen uint32, src []byte) int64 {
	n := uint32(len(src))
	if dstLen < n {
		n = dstLen
	}
	if uint64(dstPtr)+uint64(n) > uint64(mem.Size()) {
		return hookapi.OutOfBounds
	}
	if n == 0 {
		return 0
	}
	if !mem.Write(dstPtr, src[:n]) {
		return hookapi.OutOfBounds
	}
	return int64(n)
}

// dataAsInt64 packs up to eight bytes big-endian into a non-negative i64.
// TOO_BIG when longer than eight bytes or the sign bit would be set.
func dataAsInt64(data []byte) int64 {
	if len(data) > 8 {
		return hookapi.TooBig
	}
	var out uint64
	for _, b := range data {
		out = out<<8 | uint64(b)
	}
	if out&(1<<63) != 0 {
		return hookapi.TooBig
	}
	return int64(out)
}

// isUTF16LE reports whether buf looks like UTF-16LE text: even length,
// every odd byte zero, first byte nonzero. A heuristic for trace output
// from guests whose language uses 16-bit strings.
func isUTF16LE(buf []byte) bool {
	if len(buf) == 0 || len(buf)%2 != 0 {
		return false
	}
	for i := 0; i < len(buf); i += 2 {
		if buf[i] == 0 || buf[i+1] != 0 {
			return false
		}
	}
	return true
}

// downcastUTF16 folds UTF-16LE bytes to their low bytes for logging.
func downcastUTF16(buf []byte) []byte {
	out := make([]byte, len(buf)/2)
	for i := range out {
		out[i] = buf[i*2]
	}
	return out
}
