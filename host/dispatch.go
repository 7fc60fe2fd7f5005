package host

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/xfl"
)

// hookExit is panicked out of a host function when the guest's run is
// over: accept, rollback or a guard violation. The driver recovers it via
// the error wazero surfaces from Call and reads the verdict off the
// context.
type hookExit struct{}

func (hookExit) Error() string { return "hook exit" }

// finish inspects a handler result and aborts the guest on an exit
// sentinel. Every registered host function routes its return through here.
func (c *Context) finish(rc int64) int64 {
	c.hostCalls++
	if rc == hookapi.RcAccept || rc == hookapi.RcRollback {
		panic(hookExit{})
	}
	return rc
}

func guestMem(m api.Module) Memory {
	return wasmMemory{mem: m.Memory()}
}

// RegisterHostFunctions instantiates the "env" module carrying the full
// hook API, bound to this invocation context.
func (c *Context) RegisterHostFunctions(ctx context.Context, rt wazero.Runtime) error {
	b := rt.NewHostModuleBuilder("env")

	reg := func(name string, fn any) {
		b.NewFunctionBuilder().WithFunc(fn).Export(name)
	}

	// control
	reg("_g", func(_ context.Context, _ api.Module, id, maxItr uint32) int64 {
		return c.finish(c.Guard(id, maxItr))
	})
	reg("accept", func(_ context.Context, m api.Module, readPtr, readLen uint32, code int64) int64 {
		return c.finish(c.Accept(guestMem(m), readPtr, readLen, code))
	})
	reg("rollback", func(_ context.Context, m api.Module, readPtr, readLen uint32, code int64) int64 {
		return c.finish(c.Rollback(guestMem(m), readPtr, readLen, code))
	})

	// state
	reg("state", func(_ context.Context, m api.Module, wp, wl, kp, kl uint32) int64 {
		return c.finish(c.State(guestMem(m), wp, wl, kp, kl))
	})
	reg("state_set", func(_ context.Context, m api.Module, rp, rl, kp, kl uint32) int64 {
		return c.finish(c.StateSet(guestMem(m), rp, rl, kp, kl))
	})
	reg("state_foreign", func(_ context.Context, m api.Module, wp, wl, kp, kl, ap, al uint32) int64 {
		return c.finish(c.StateForeign(guestMem(m), wp, wl, kp, kl, ap, al))
	})

	// originating transaction
	reg("otxn_id", func(_ context.Context, m api.Module, wp, wl uint32) int64 {
		return c.finish(c.OtxnIDWrite(guestMem(m), wp, wl))
	})
	reg("otxn_type", func(_ context.Context, _ api.Module) int64 {
		return c.finish(c.OtxnType())
	})
	reg("otxn_field", func(_ context.Context, m api.Module, wp, wl, fid uint32) int64 {
		return c.finish(c.OtxnField(guestMem(m), wp, wl, fid))
	})
	reg("otxn_field_txt", func(_ context.Context, m api.Module, wp, wl, fid uint32) int64 {
		return c.finish(c.OtxnFieldText(guestMem(m), wp, wl, fid))
	})
	reg("otxn_slot", func(_ context.Context, _ api.Module, slotInto uint32) int64 {
		return c.finish(c.OtxnSlot(slotInto))
	})
	reg("otxn_burden", func(_ context.Context, _ api.Module) int64 {
		return c.finish(c.OtxnBurden())
	})
	reg("otxn_generation", func(_ context.Context, _ api.Module) int64 {
		return c.finish(c.OtxnGeneration())
	})

	// environment
	reg("hook_account", func(_ context.Context, m api.Module, wp, wl uint32) int64 {
		return c.finish(c.HookAccount(guestMem(m), wp, wl))
	})
	reg("hook_hash", func(_ context.Context, m api.Module, wp, wl uint32) int64 {
		return c.finish(c.HookHash(guestMem(m), wp, wl))
	})
	reg("ledger_seq", func(_ context.Context, _ api.Module) int64 {
		return c.finish(c.LedgerSeq())
	})
	reg("fee_base", func(_ context.Context, _ api.Module) int64 {
		return c.finish(c.FeeBase())
	})
	reg("nonce", func(_ context.Context, m api.Module, wp, wl uint32) int64 {
		return c.finish(c.NonceWrite(guestMem(m), wp, wl))
	})

	// slots
	reg("slot", func(_ context.Context, m api.Module, wp, wl, no uint32) int64 {
		return c.finish(c.Slot(guestMem(m), wp, wl, no))
	})
	reg("slot_set", func(_ context.Context, m api.Module, rp, rl uint32, into int32) int64 {
		mem := guestMem(m)
		if notInBounds(mem, rp, rl) {
			return c.finish(hookapi.OutOfBounds)
		}
		if into < 0 {
			return c.finish(hookapi.InvalidArgument)
		}
		id, ok := mem.Read(rp, rl)
		if !ok {
			return c.finish(hookapi.OutOfBounds)
		}
		return c.finish(c.SlotSet(id, uint32(into)))
	})
	reg("slot_clear", func(_ context.Context, _ api.Module, no uint32) int64 {
		return c.finish(c.SlotClear(no))
	})
	reg("slot_count", func(_ context.Context, _ api.Module, no uint32) int64 {
		return c.finish(c.SlotCount(no))
	})
	reg("slot_id", func(_ context.Context, m api.Module, wp, wl, no uint32) int64 {
		return c.finish(c.SlotID(guestMem(m), wp, wl, no))
	})
	reg("slot_size", func(_ context.Context, _ api.Module, no uint32) int64 {
		return c.finish(c.SlotSize(no))
	})
	reg("slot_subarray", func(_ context.Context, _ api.Module, parent, index, into uint32) int64 {
		return c.finish(c.SlotSubarray(parent, index, into))
	})
	reg("slot_subfield", func(_ context.Context, _ api.Module, parent, fid, into uint32) int64 {
		return c.finish(c.SlotSubfield(parent, fid, into))
	})
	reg("slot_type", func(_ context.Context, _ api.Module, no, flag uint32) int64 {
		return c.finish(c.SlotType(no, flag))
	})
	reg("slot_float", func(_ context.Context, _ api.Module, no uint32) int64 {
		return c.finish(c.SlotFloat(no))
	})

	// util
	reg("util_keylet", func(_ context.Context, m api.Module, wp, wl, kt, a, bb, cc, d, e, f uint32) int64 {
		return c.finish(c.UtilKeylet(guestMem(m), wp, wl, kt, a, bb, cc, d, e, f))
	})
	reg("util_sha512h", func(_ context.Context, m api.Module, wp, wl, rp, rl uint32) int64 {
		return c.finish(c.UtilSha512h(guestMem(m), wp, wl, rp, rl))
	})
	reg("util_verify", func(_ context.Context, m api.Module, dp, dl, sp, sl, kp, kl uint32) int64 {
		return c.finish(c.UtilVerify(guestMem(m), dp, dl, sp, sl, kp, kl))
	})
	reg("util_raddr", func(_ context.Context, m api.Module, wp, wl, rp, rl uint32) int64 {
		return c.finish(c.UtilRaddr(guestMem(m), wp, wl, rp, rl))
	})
	reg("util_accid", func(_ context.Context, m api.Module, wp, wl, rp, rl uint32) int64 {
		return c.finish(c.UtilAccid(guestMem(m), wp, wl, rp, rl))
	})

	// emitted transactions
	reg("emit", func(_ context.Context, m api.Module, rp, rl uint32) int64 {
		mem := guestMem(m)
		if notInBounds(mem, rp, rl) {
			return c.finish(hookapi.OutOfBounds)
		}
		blob, ok := mem.Read(rp, rl)
		if !ok {
			return c.finish(hookapi.OutOfBounds)
		}
		return c.finish(c.Emit(blob))
	})
	reg("etxn_reserve", func(_ context.Context, _ api.Module, count uint32) int64 {
		return c.finish(c.EtxnReserve(count))
	})
	reg("etxn_burden", func(_ context.Context, _ api.Module) int64 {
		return c.finish(c.EtxnBurden())
	})
	reg("etxn_generation", func(_ context.Context, _ api.Module) int64 {
		return c.finish(c.EtxnGeneration())
	})
	reg("etxn_fee_base", func(_ context.Context, _ api.Module, count uint32) int64 {
		return c.finish(c.EtxnFeeBase(count))
	})
	reg("etxn_details", func(_ context.Context, m api.Module, wp, wl uint32) int64 {
		return c.finish(c.EtxnDetailsWrite(guestMem(m), wp, wl))
	})

	// serialized-object helpers
	reg("sto_subfield", func(_ context.Context, m api.Module, rp, rl, fid uint32) int64 {
		return c.finish(c.StoSubfield(guestMem(m), rp, rl, fid))
	})
	reg("sto_subarray", func(_ context.Context, m api.Module, rp, rl, idx uint32) int64 {
		return c.finish(c.StoSubarray(guestMem(m), rp, rl, idx))
	})
	reg("sto_validate", func(_ context.Context, m api.Module, rp, rl uint32) int64 {
		return c.finish(c.StoValidate(guestMem(m), rp, rl))
	})
	reg("sto_emplace", func(_ context.Context, m api.Module, wp, wl, sp, sl, fp, fl, fid uint32) int64 {
		return c.finish(c.StoEmplace(guestMem(m), wp, wl, sp, sl, fp, fl, fid))
	})
	reg("sto_erase", func(_ context.Context, m api.Module, wp, wl, rp, rl, fid uint32) int64 {
		return c.finish(c.StoErase(guestMem(m), wp, wl, rp, rl, fid))
	})

	// tracing
	reg("trace", func(_ context.Context, m api.Module, mp, ml, dp, dl, asHex uint32) int64 {
		return c.finish(c.Trace(guestMem(m), mp, ml, dp, dl, asHex))
	})
	reg("trace_num", func(_ context.Context, m api.Module, rp, rl uint32, n int64) int64 {
		return c.finish(c.TraceNum(guestMem(m), rp, rl, n))
	})
	reg("trace_float", func(_ context.Context, m api.Module, rp, rl uint32, f int64) int64 {
		return c.finish(c.TraceFloat(guestMem(m), rp, rl, f))
	})
	reg("trace_slot", func(_ context.Context, m api.Module, rp, rl, no uint32) int64 {
		return c.finish(c.TraceSlot(guestMem(m), rp, rl, no))
	})

	// floats
	reg("float_set", func(_ context.Context, _ api.Module, exp int32, man int64) int64 {
		return c.finish(xfl.FloatSet(exp, man))
	})
	reg("float_multiply", func(_ context.Context, _ api.Module, f1, f2 int64) int64 {
		return c.finish(xfl.Multiply(f1, f2))
	})
	reg("float_mulratio", func(_ context.Context, _ api.Module, f1 int64, roundUp, num, den uint32) int64 {
		return c.finish(xfl.MulRatio(f1, roundUp != 0, num, den))
	})
	reg("float_negate", func(_ context.Context, _ api.Module, f1 int64) int64 {
		return c.finish(xfl.Negate(f1))
	})
	reg("float_compare", func(_ context.Context, _ api.Module, f1, f2 int64, mode uint32) int64 {
		return c.finish(xfl.Compare(f1, f2, mode))
	})
	reg("float_sum", func(_ context.Context, _ api.Module, f1, f2 int64) int64 {
		return c.finish(xfl.Sum(f1, f2))
	})
	reg("float_sto", func(_ context.Context, m api.Module, wp, wl, cp, cl, ip, il uint32, f1 int64, fc uint32) int64 {
		return c.finish(c.FloatSto(guestMem(m), wp, wl, cp, cl, ip, il, f1, fc))
	})
	reg("float_sto_set", func(_ context.Context, m api.Module, rp, rl uint32) int64 {
		return c.finish(c.FloatStoSet(guestMem(m), rp, rl))
	})
	reg("float_invert", func(_ context.Context, _ api.Module, f1 int64) int64 {
		return c.finish(xfl.Invert(f1))
	})
	reg("float_divide", func(_ context.Context, _ api.Module, f1, f2 int64) int64 {
		return c.finish(xfl.Divide(f1, f2))
	})
	reg("float_one", func(_ context.Context, _ api.Module) int64 {
		return c.finish(xfl.One())
	})
	reg("float_exponent", func(_ context.Context, _ api.Module, f1 int64) int64 {
		return c.finish(xfl.Exponent(f1))
	})
	reg("float_exponent_set", func(_ context.Context, _ api.Module, f1 int64, exp int32) int64 {
		return c.finish(xfl.ExponentSet(f1, exp))
	})
	reg("float_mantissa", func(_ context.Context, _ api.Module, f1 int64) int64 {
		return c.finish(xfl.Mantissa(f1))
	})
	reg("float_mantissa_set", func(_ context.Context, _ api.Module, f1, man int64) int64 {
		return c.finish(xfl.MantissaSet(f1, man))
	})
	reg("float_sign", func(_ context.Context, _ api.Module, f1 int64) int64 {
		return c.finish(xfl.Sign(f1))
	})
	reg("float_sign_set", func(_ context.Context, _ api.Module, f1 int64, negative uint32) int64 {
		return c.finish(xfl.SignSet(f1, negative != 0))
	})
	reg("float_int", func(_ context.Context, _ api.Module, f1 int64, dp, absolute uint32) int64 {
		return c.finish(xfl.Int(f1, dp, absolute != 0))
	})

	_, err := b.Instantiate(ctx)
	return err
}
