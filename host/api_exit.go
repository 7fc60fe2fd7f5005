package host

import "github.com/eatozee/xrpld-hooks/hookapi"

// exit records the guest's verdict and returns the driver sentinel. The
// dispatch layer stops the guest when it sees one.
func (c *Context) exit(mem Memory, readPtr, readLen uint32, errorCode int64, exitType hookapi.ExitType) int64 {
	if readLen > hookapi.MaxExitReason {
		readLen = hookapi.MaxExitReason
	}
	if readPtr != 0 || readLen != 0 {
		if notInBounds(mem, readPtr, readLen) {
			Logger().Sugar().Warnf(
				"HookError[%x]: accept/rollback reason string outside wasm memory", c.account)
			return hookapi.OutOfBounds
		}
		buf, ok := mem.Read(readPtr, readLen)
		if !ok {
			return hookapi.OutOfBounds
		}
		if isUTF16LE(buf) {
			buf = downcastUTF16(buf)
		}
		c.exitReason = string(buf)
	}
	c.exitType = exitType
	c.exitCode = errorCode
	c.exited = true
	if exitType == hookapi.ExitAccept {
		return hookapi.RcAccept
	}
	return hookapi.RcRollback
}

// Accept commits the run: staged state and emissions apply.
func (c *Context) Accept(mem Memory, readPtr, readLen uint32, errorCode int64) int64 {
	return c.exit(mem, readPtr, readLen, errorCode, hookapi.ExitAccept)
}

// Rollback discards every staged effect and rejects the originating txn.
func (c *Context) Rollback(mem Memory, readPtr, readLen uint32, errorCode int64) int64 {
	return c.exit(mem, readPtr, readLen, errorCode, hookapi.ExitRollback)
}

// Guard enforces a loop iteration bound. Exceeding it rolls the hook back
// with GUARD_VIOLATION.
func (c *Context) Guard(id, maxItr uint32) int64 {
	c.guards[id]++
	if c.guards[id] <= maxItr {
		return 1
	}

	log := Logger().Sugar()
	if id > 0xFFFF {
		log.Debugf("HookInfo[%x]: macro guard violation, src line %d macro line %d iterations %d",
			c.account, id&0xFFFF, id>>16, c.guards[id])
	} else {
		log.Debugf("HookInfo[%x]: guard violation, src line %d iterations %d",
			c.account, id, c.guards[id])
	}
	c.exitType = hookapi.ExitRollback
	c.exitCode = hookapi.GuardViolation
	c.exited = true
	return hookapi.RcRollback
}
