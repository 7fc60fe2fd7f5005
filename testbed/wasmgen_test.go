package testbed

import "bytes"

// Minimal wasm binary assembler for test guests. The guests are a handful
// of instructions each; building the bytes directly keeps the scenarios
// readable and the repository free of opaque binaries.

type funcType struct {
	params  []byte // value types, 0x7F = i32, 0x7E = i64
	results []byte
}

type hostImport struct {
	name string
	typ  int // index into types
}

type guest struct {
	types   []funcType
	imports []hostImport
	hookTyp int    // type index of the hook export
	body    []byte // code without the trailing end opcode
	data    []byte // placed at offset 0 of memory
}

const (
	i32 = 0x7F
	i64 = 0x7E
)

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func section(id byte, payload []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint32(len(payload)))...)
	return append(out, payload...)
}

func i32c(v int32) []byte {
	return append([]byte{0x41}, sleb(int64(v))...)
}

func i64c(v int64) []byte {
	return append([]byte{0x42}, sleb(v)...)
}

// call emits a call to the n-th function (imports first).
func call(n int) []byte {
	return append([]byte{0x10}, uleb(uint32(n))...)
}

const (
	opDrop        = 0x1A
	opEnd         = 0x0B
	opUnreachable = 0x00
	opElse        = 0x05
	opI64Eq       = 0x51
)

// ifEmpty opens an if block with no result type.
func ifEmpty() []byte { return []byte{0x04, 0x40} }

// i64load reads an aligned i64 from the address on the stack.
func i64load() []byte { return []byte{0x29, 0x03, 0x00} }

func (g *guest) build() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})

	// type section
	var types []byte
	types = append(types, uleb(uint32(len(g.types)))...)
	for _, t := range g.types {
		types = append(types, 0x60)
		types = append(types, uleb(uint32(len(t.params)))...)
		types = append(types, t.params...)
		types = append(types, uleb(uint32(len(t.results)))...)
		types = append(types, t.results...)
	}
	buf.Write(section(1, types))

	// import section: every host function comes from "env"
	if len(g.imports) > 0 {
		var imports []byte
		imports = append(imports, uleb(uint32(len(g.imports)))...)
		for _, im := range g.imports {
			imports = append(imports, uleb(uint32(len("env")))...)
			imports = append(imports, "env"...)
			imports = append(imports, uleb(uint32(len(im.name)))...)
			imports = append(imports, im.name...)
			imports = append(imports, 0x00) // function import
			imports = append(imports, uleb(uint32(im.typ))...)
		}
		buf.Write(section(2, imports))
	}

	// function section: one local function, the hook export
	buf.Write(section(3, append(uleb(1), uleb(uint32(g.hookTyp))...)))

	// memory section: one memory of one page
	buf.Write(section(5, []byte{0x01, 0x00, 0x01}))

	// export section: "hook" and "memory"
	var exports []byte
	exports = append(exports, uleb(2)...)
	exports = append(exports, uleb(uint32(len("hook")))...)
	exports = append(exports, "hook"...)
	exports = append(exports, 0x00)
	exports = append(exports, uleb(uint32(len(g.imports)))...) // first index after imports
	exports = append(exports, uleb(uint32(len("memory")))...)
	exports = append(exports, "memory"...)
	exports = append(exports, 0x02, 0x00)
	buf.Write(section(7, exports))

	// code section
	body := append([]byte{0x00}, g.body...) // no locals
	body = append(body, opEnd)
	var code []byte
	code = append(code, uleb(1)...)
	code = append(code, uleb(uint32(len(body)))...)
	code = append(code, body...)
	buf.Write(section(10, code))

	// data section: one active segment at offset zero
	if len(g.data) > 0 {
		var data []byte
		data = append(data, uleb(1)...)
		data = append(data, 0x00)
		data = append(data, i32c(0)...)
		data = append(data, opEnd)
		data = append(data, uleb(uint32(len(g.data)))...)
		data = append(data, g.data...)
		buf.Write(section(11, data))
	}

	return buf.Bytes()
}
