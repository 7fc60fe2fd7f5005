// Package xrpldhooks implements the execution core of a smart-contract
// ("hook") host for a payment ledger: a sandboxed WebAssembly runtime with
// a flat i64 host-call ABI, a staged hook-state store and an
// emitted-transaction pipeline with deferred, all-or-nothing commit.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	xrpld-hooks/
//	├── host/      invocation context, slot table, the ~60 host calls,
//	│              wazero execution driver and commit engine
//	├── sto/       field-tagged serialized-object codec
//	├── xfl/       packed decimal floating point engine
//	├── keylet/    typed 34-byte ledger object identifiers
//	├── ledger/    ledger view, overlay apply-view and KV-backed store
//	├── state/     hook-state cache and write-back with reserve accounting
//	├── hookapi/   ABI constants: return codes, field ids, limits
//	├── addr/      base58check r-address codec
//	├── sha512h/   the ledger's SHA-512 half digest
//	├── errors/    structured host-side errors and ledger result codes
//	└── cmd/hookrun  fixture runner CLI for hook development
//
// # Quick Start
//
// Run a hook against a ledger view:
//
//	view := ledger.NewApplyView(store, seq, fees)
//	res, err := host.Apply(ctx, view, host.Invocation{
//	    Account:  account,
//	    HookHash: hookHash,
//	    Hook:     wasmBytes,
//	    OtxnBlob: serializedTxn,
//	}, nil)
//
// The guest module must export hook(i64) -> i64 and may export
// cbak(i64) -> i64 for emission callbacks. Every host call returns i64;
// negative values are the error sentinels in package hookapi.
package xrpldhooks
