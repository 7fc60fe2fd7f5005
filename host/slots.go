package host

import (
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/keylet"
	"github.com/eatozee/xrpld-hooks/sto"
)

// A slot names a serialized object (a ledger entry or a transaction) plus
// a drill-down path into it. The slot owns a copy of the root object and
// resolves the path on demand, so cloning a slot never aliases live
// storage.
type slotEntry struct {
	id      []byte // 32-byte txn id or 34-byte keylet
	storage []byte // root serialized object
	path    []slotStep
}

type slotStep struct {
	field   uint32 // field id, or
	index   uint32 // array index when isIndex is set
	isIndex bool
}

func (e *slotEntry) clone() *slotEntry {
	return &slotEntry{
		id:      e.id,
		storage: e.storage,
		path:    append([]slotStep(nil), e.path...),
	}
}

// resolved is the current entry: a window into storage. wrapped windows
// carry their field preamble; the root window is the bare object body.
type resolved struct {
	buf     []byte
	wrapped bool
}

// contents returns the field sequence inside the window.
func (r resolved) contents() ([]byte, error) {
	if !r.wrapped {
		return r.buf, nil
	}
	f, err := sto.Locate(r.buf)
	if err != nil {
		return nil, err
	}
	return r.buf[f.PayloadOff : f.PayloadOff+f.PayloadLen], nil
}

// fieldInfo describes the window's own field, if wrapped.
func (r resolved) fieldInfo() (sto.Field, bool) {
	if !r.wrapped {
		return sto.Field{}, false
	}
	f, err := sto.Locate(r.buf)
	if err != nil {
		return sto.Field{}, false
	}
	return f, true
}

// resolve walks the path from the root storage.
func (e *slotEntry) resolve() (resolved, error) {
	cur := resolved{buf: e.storage}
	for _, step := range e.path {
		body, err := cur.contents()
		if err != nil {
			return resolved{}, err
		}
		if step.isIndex {
			off, length, err := sto.Subarray(body, step.index)
			if err != nil {
				return resolved{}, err
			}
			cur = resolved{buf: body[off : off+length], wrapped: true}
			continue
		}
		// wrapped window for the field: locate it, keep the preamble
		found := false
		var window []byte
		err = sto.Each(body, func(f sto.Field) bool {
			if f.ID() != step.field {
				return true
			}
			found = true
			window = body[f.Start : f.Start+f.Total]
			return false
		})
		if err != nil {
			return resolved{}, err
		}
		if !found {
			return resolved{}, sto.ErrNotFound
		}
		cur = resolved{buf: window, wrapped: true}
	}
	return cur, nil
}

// serialize renders the current entry the way the ABI returns it: the
// field value without its preamble, with the VL prefix stripped for
// account ids. The root serializes as the whole object.
func (r resolved) serialize() ([]byte, error) {
	if !r.wrapped {
		return r.buf, nil
	}
	f, err := sto.Locate(r.buf)
	if err != nil {
		return nil, err
	}
	// value bytes: everything after the preamble (VL prefix included,
	// terminators included for containers)
	preambleLen := f.PayloadOff
	if isVLType(f.Type) {
		// PayloadOff includes the VL prefix; recompute the preamble width
		_, _, n, err := sto.PreambleOf(r.buf)
		if err != nil {
			return nil, err
		}
		preambleLen = n
	}
	out := r.buf[preambleLen:]
	if f.Type == hookapi.TypeAccountID && len(out) > 0 {
		out = out[1:] // drop the one-byte VL prefix, the ABI wants raw 20
	}
	return out, nil
}

func isVLType(t int) bool {
	return t == hookapi.TypeBlob || t == hookapi.TypeAccountID ||
		t == hookapi.TypeVector || t == hookapi.TypeIssue
}

// no free handle is available when the counter has run past the cap and
// nothing is queued for reuse
func (c *Context) noFreeSlots() bool {
	return c.slotCounter > hookapi.MaxSlots && len(c.slotFree) == 0
}

func (c *Context) getFreeSlot() uint32 {
	if len(c.slotFree) > 0 {
		s := c.slotFree[0]
		c.slotFree = c.slotFree[1:]
		return s
	}
	s := c.slotCounter
	c.slotCounter++
	return s
}

func (c *Context) freeSlot(no uint32) {
	delete(c.slots, no)
	c.slotFree = append(c.slotFree, no)
}

// SlotSet resolves id (32-byte txn hash or 34-byte keylet) and binds the
// object into a slot. slotInto 0 allocates.
func (c *Context) SlotSet(id []byte, slotInto uint32) int64 {
	if (len(id) != 32 && len(id) != 34) || slotInto > hookapi.MaxSlots {
		return hookapi.InvalidArgument
	}
	if slotInto == 0 && c.noFreeSlots() {
		return hookapi.NoFreeSlots
	}

	var storage []byte
	switch len(id) {
	case 34:
		kl, err := keylet.Parse(id)
		if err != nil {
			return hookapi.DoesntExist
		}
		blob, ok, err := c.view.Peek(kl)
		if err != nil || !ok {
			return hookapi.DoesntExist
		}
		storage = blob
	case 32:
		var txid [32]byte
		copy(txid[:], id)
		blob, ok, err := c.view.FetchTxn(txid)
		if err != nil || !ok {
			return hookapi.DoesntExist
		}
		storage = blob
	}

	if slotInto == 0 {
		slotInto = c.getFreeSlot()
	}
	c.slots[slotInto] = &slotEntry{
		id:      append([]byte(nil), id...),
		storage: storage,
	}
	return int64(slotInto)
}

// OtxnSlot binds the originating transaction into a slot.
func (c *Context) OtxnSlot(slotInto uint32) int64 {
	if slotInto > hookapi.MaxSlots {
		return hookapi.InvalidArgument
	}
	if slotInto == 0 {
		if c.noFreeSlots() {
			return hookapi.NoFreeSlots
		}
		slotInto = c.getFreeSlot()
	}
	c.slots[slotInto] = &slotEntry{
		id:      append([]byte(nil), c.otxnID[:]...),
		storage: c.otxn,
	}
	return int64(slotInto)
}

// Slot serializes the slot's current entry into the guest buffer; with a
// zero-length buffer it packs up to eight bytes as an i64.
func (c *Context) Slot(mem Memory, writePtr, writeLen, slotNo uint32) int64 {
	if !(writePtr == 0 && writeLen == 0) && notInBounds(mem, writePtr, writeLen) {
		return hookapi.OutOfBounds
	}
	if writePtr != 0 && writeLen == 0 {
		return hookapi.TooSmall
	}
	entry, ok := c.slots[slotNo]
	if !ok {
		return hookapi.DoesntExist
	}
	r, err := entry.resolve()
	if err != nil {
		return hookapi.InternalError
	}
	out, err := r.serialize()
	if err != nil {
		return hookapi.InternalError
	}
	if writeLen == 0 {
		return dataAsInt64(out)
	}
	if len(out) > int(writeLen) {
		return hookapi.TooSmall
	}
	return writeOut(mem, writePtr, writeLen, out)
}

// SlotID writes the slot's binding id (txn hash or keylet).
func (c *Context) SlotID(mem Memory, writePtr, writeLen, slotNo uint32) int64 {
	entry, ok := c.slots[slotNo]
	if !ok {
		return hookapi.DoesntExist
	}
	if len(entry.id) > int(writeLen) {
		return hookapi.TooSmall
	}
	if notInBounds(mem, writePtr, writeLen) {
		return hookapi.OutOfBounds
	}
	return writeOut(mem, writePtr, writeLen, entry.id)
}

// SlotSize returns the byte length of the current entry's serialization.
func (c *Context) SlotSize(slotNo uint32) int64 {
	entry, ok := c.slots[slotNo]
	if !ok {
		return hookapi.DoesntExist
	}
	r, err := entry.resolve()
	if err != nil {
		return hookapi.InternalError
	}
	out, err := r.serialize()
	if err != nil {
		return hookapi.InternalError
	}
	return int64(len(out))
}

// SlotClear releases the handle for reuse.
func (c *Context) SlotClear(slotNo uint32) int64 {
	if _, ok := c.slots[slotNo]; !ok {
		return hookapi.DoesntExist
	}
	c.freeSlot(slotNo)
	return 1
}

// SlotCount returns the element count of an array entry.
func (c *Context) SlotCount(slotNo uint32) int64 {
	entry, ok := c.slots[slotNo]
	if !ok {
		return hookapi.DoesntExist
	}
	r, err := entry.resolve()
	if err != nil {
		return hookapi.InternalError
	}
	f, wrapped := r.fieldInfo()
	if !wrapped || f.Type != hookapi.TypeArray {
		return hookapi.NotAnArray
	}
	body, err := r.contents()
	if err != nil {
		return hookapi.InternalError
	}
	count := int64(0)
	for {
		_, _, err := sto.Subarray(body, uint32(count))
		if err != nil {
			break
		}
		count++
	}
	return count
}

// SlotSubfield drills into a field of the slot's object. Reusing the
// parent handle advances in place; any other handle gets a clone.
func (c *Context) SlotSubfield(parentSlot, fieldID, newSlot uint32) int64 {
	entry, ok := c.slots[parentSlot]
	if !ok {
		return hookapi.DoesntExist
	}
	if newSlot > hookapi.MaxSlots {
		return hookapi.InvalidArgument
	}
	if newSlot == 0 && c.noFreeSlots() {
		return hookapi.NoFreeSlots
	}

	r, err := entry.resolve()
	if err != nil {
		return hookapi.InternalError
	}
	if f, wrapped := r.fieldInfo(); wrapped && f.Type != hookapi.TypeObject {
		return hookapi.NotAnObject
	}
	body, err := r.contents()
	if err != nil {
		return hookapi.InternalError
	}
	if _, _, err := sto.Subfield(body, fieldID); err != nil {
		if err == sto.ErrNotFound {
			return hookapi.DoesntExist
		}
		return hookapi.NotAnObject
	}

	target := entry
	if newSlot == 0 {
		newSlot = c.getFreeSlot()
	}
	if newSlot != parentSlot {
		target = entry.clone()
		c.slots[newSlot] = target
	}
	target.path = append(target.path, slotStep{field: fieldID})
	return int64(newSlot)
}

// SlotSubarray drills into an element of the slot's array.
func (c *Context) SlotSubarray(parentSlot, index, newSlot uint32) int64 {
	entry, ok := c.slots[parentSlot]
	if !ok {
		return hookapi.DoesntExist
	}
	if newSlot > hookapi.MaxSlots {
		return hookapi.InvalidArgument
	}
	if newSlot == 0 && c.noFreeSlots() {
		return hookapi.NoFreeSlots
	}

	r, err := entry.resolve()
	if err != nil {
		return hookapi.InternalError
	}
	f, wrapped := r.fieldInfo()
	if !wrapped || f.Type != hookapi.TypeArray {
		return hookapi.NotAnArray
	}
	body, err := r.contents()
	if err != nil {
		return hookapi.InternalError
	}
	if _, _, err := sto.Subarray(body, index); err != nil {
		return hookapi.DoesntExist
	}

	target := entry
	if newSlot == 0 {
		newSlot = c.getFreeSlot()
	}
	if newSlot != parentSlot {
		target = entry.clone()
		c.slots[newSlot] = target
	}
	target.path = append(target.path, slotStep{index: index, isIndex: true})
	return int64(newSlot)
}

// SlotType returns the entry's field code (flag 0) or, for amounts with
// flag 1, whether the amount is native.
func (c *Context) SlotType(slotNo, flag uint32) int64 {
	entry, ok := c.slots[slotNo]
	if !ok {
		return hookapi.DoesntExist
	}
	r, err := entry.resolve()
	if err != nil {
		return hookapi.InternalError
	}
	f, wrapped := r.fieldInfo()
	switch flag {
	case 0:
		if !wrapped {
			return 0 // the root object carries no field name
		}
		return int64(f.ID())
	case 1:
		if !wrapped || f.Type != hookapi.TypeAmount {
			return hookapi.NotAnAmount
		}
		if f.PayloadLen == 8 {
			return 1
		}
		return 0
	default:
		return hookapi.InvalidArgument
	}
}

// SlotFloat reads the entry as an amount and returns its packed float.
func (c *Context) SlotFloat(slotNo uint32) int64 {
	entry, ok := c.slots[slotNo]
	if !ok {
		return hookapi.DoesntExist
	}
	r, err := entry.resolve()
	if err != nil {
		return hookapi.InternalError
	}
	f, wrapped := r.fieldInfo()
	if !wrapped || f.Type != hookapi.TypeAmount {
		return hookapi.NotAnAmount
	}
	return amountToFloat(r.buf[f.PayloadOff : f.PayloadOff+f.PayloadLen])
}
