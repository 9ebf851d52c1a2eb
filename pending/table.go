// Package pending implements the session's pending-call table: the
// set of response slots for which a frame is on the wire but no reply
// has yet been parsed (spec §3, §4.5).
//
// Table is a plain dynamic array, not a sync.Map: spec §4.5 requires
// lookup+remove to happen atomically under a lock the caller (package
// session) already holds, so the table itself does no locking of its
// own — callers are responsible for serializing access, exactly as
// the source's nn_pending array is only ever touched with nn_lock
// held.
package pending

import "nnrpc/future"

const growthBlock = 16

type entry struct {
	msgno int64
	slot  *future.Slot
}

// Table is a dynamic array from message number to response slot.
// The zero value is an empty table ready to use. Not safe for
// concurrent use without external synchronization.
type Table struct {
	entries []entry
}

// Insert adds (msgno, slot) to the table. Growth happens in blocks of
// 16 entries whenever len(entries) is a multiple of the block size,
// mirroring the source's RESIZE_FACTOR = 16 policy.
func (t *Table) Insert(msgno int64, slot *future.Slot) {
	if len(t.entries)%growthBlock == 0 {
		grown := make([]entry, len(t.entries), len(t.entries)+growthBlock)
		copy(grown, t.entries)
		t.entries = grown
	}
	t.entries = append(t.entries, entry{msgno: msgno, slot: slot})
}

// Remove looks up msgno and, if found, removes it via swap-with-last
// (pending-table ordering is not observable) and returns its slot.
// Returns false if msgno is not present — the caller must treat that
// as a fatal protocol violation per spec §4.4.
func (t *Table) Remove(msgno int64) (*future.Slot, bool) {
	for i := range t.entries {
		if t.entries[i].msgno == msgno {
			slot := t.entries[i].slot
			last := len(t.entries) - 1
			t.entries[i] = t.entries[last]
			t.entries = t.entries[:last]
			return slot, true
		}
	}
	return nil, false
}

// Len returns the number of outstanding entries.
func (t *Table) Len() int { return len(t.entries) }

// Any returns one arbitrary pending slot (index 0), or nil if the
// table is empty. Used by the receive pump to wake exactly one
// replacement receiver on yield (spec §4.4 exit step).
func (t *Table) Any() *future.Slot {
	if len(t.entries) == 0 {
		return nil
	}
	return t.entries[0].slot
}

// Each calls fn for every pending slot. Used to broadcast a fatal
// session-death completion to all waiters.
func (t *Table) Each(fn func(msgno int64, slot *future.Slot)) {
	for _, e := range t.entries {
		fn(e.msgno, e.slot)
	}
}
