// Package future implements the response slot: a one-shot rendezvous
// between one Session.Invoke call and the goroutine that eventually
// awaits its reply (spec §3 "Response slot", §4.3).
//
// A slot is a small monitor (mutex + condition variable) rather than a
// channel — a buffered channel per in-flight call was considered and
// rejected for the "goal" completion path: spec §4.4 requires the
// receive pump to be able to deposit a result into the awaiting
// goroutine's own slot without any synchronization event at all,
// because that goroutine is the pump (see package session). A channel
// send is itself a synchronization event; the monitor lets the
// direct-deposit path be a bare field write.
package future

import (
	"sync"

	"nnrpc/codec"
)

// Slot is a one-shot rendezvous holding at most one response. The
// zero value is not ready to use; construct with NewSlot.
type Slot struct {
	mu   sync.Mutex
	cond *sync.Cond

	// Result holds the deposited response once Ready reports true.
	// Safe to read without the lock only after the awaiting goroutine
	// has broken out of its wait loop and called Unlock — by that
	// point no further writer touches it (spec §4.3 step 5).
	Result *codec.Object

	release func()
}

// NewSlot returns an unbound, empty slot.
func NewSlot() *Slot {
	s := &Slot{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Lock and Unlock expose the slot's monitor lock directly; package
// session's Await drives the wait loop itself (spec §4.3), rather than
// this package hiding that control flow.
func (s *Slot) Lock()   { s.mu.Lock() }
func (s *Slot) Unlock() { s.mu.Unlock() }

// Ready reports whether a result has already been deposited. Callers
// must hold the slot lock.
func (s *Slot) Ready() bool { return s.Result != nil }

// Wait blocks on the slot's condition variable. Callers must hold the
// slot lock; per sync.Cond's contract it is released while blocked and
// reacquired before Wait returns.
func (s *Slot) Wait() { s.cond.Wait() }

// CompleteDirect deposits obj without taking the slot lock. Valid only
// when called by the goroutine that is already blocked inside Await
// with the lock held (the pump's "goal" path): there is no other
// party who could observe a torn write, and no wakeup is needed
// because that goroutine is about to re-check Ready() itself.
func (s *Slot) CompleteDirect(obj *codec.Object) {
	s.Result = obj
}

// Complete deposits obj (first writer wins — P3, completed at most
// once) and wakes every goroutine waiting on this slot. Callers must
// NOT hold the slot lock. This is the non-goal completion path and
// the session-death broadcast path (spec §4.4, §7).
func (s *Slot) Complete(obj *codec.Object) {
	s.mu.Lock()
	if s.Result == nil {
		s.Result = obj
	}
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Broadcast wakes every goroutine waiting on this slot without
// altering its result. Used to hand receiver duty to exactly one
// other pending waiter when the pump yields (spec §4.4 exit step).
func (s *Slot) Broadcast() {
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Bind attaches the callback that releases the caller's reference on
// the owning session once this slot's result has been consumed.
// Session.Invoke calls this while binding the slot to a session.
func (s *Slot) Bind(release func()) {
	s.release = release
}

// Bound reports whether this slot is currently bound to an
// outstanding call. Session.Invoke refuses to reuse an already-bound
// slot (spec §4.2).
func (s *Slot) Bound() bool {
	return s.release != nil
}

// Release invokes and clears the bound release callback. Idempotent.
func (s *Slot) Release() {
	if s.release != nil {
		r := s.release
		s.release = nil
		r()
	}
}

// Reset zeros the slot's result and release callback so it cannot be
// mistaken for still-bound after Await has consumed it.
func (s *Slot) Reset() {
	s.Result = nil
	s.release = nil
}
