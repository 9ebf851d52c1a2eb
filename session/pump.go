package session

import (
	"io"
	"log"

	"nnrpc/codec"
	"nnrpc/future"
	"nnrpc/pending"
)

// pump is the receive-pump entry point (spec §4.4). It returns true
// only when this call's goal slot was satisfied by this very
// invocation; false means the caller must re-check goal.Ready() (the
// session may have died and deposited directly into goal while this
// goroutine held its lock) and otherwise wait its turn.
//
// At most one goroutine drives the pump at a time: a caller that
// finds someone already receiving returns false immediately rather
// than racing reads against the owner.
func (s *Session) pump(goal *future.Slot) bool {
	if !s.tryBecomeReceiver() {
		return false
	}
	satisfied := s.pumpLoop(goal)
	s.stopReceiving()
	return satisfied
}

// pumpLoop drains the socket, demultiplexing complete frames to their
// pending slots, until either goal is satisfied, the session has no
// reason left to keep receiving (dead, or this goroutine the sole
// remaining reference), or a transport fatality kills the session.
func (s *Session) pumpLoop(goal *future.Slot) bool {
	for {
		s.mu.Lock()
		dead := s.dead
		soleRef := s.refs == 1
		conn := s.conn
		s.mu.Unlock()
		if dead || soleRef || conn == nil {
			return false
		}

		rec, status := s.codec.Deserialize(s.recvBuf.Bytes())
		switch status {
		case codec.StatusIncomplete:
			s.recvBuf.EnsureTail(4*1024, 16*1024)
			n, err := conn.Read(s.recvBuf.Tail())
			if n > 0 {
				s.recvBuf.CommitWrite(n)
				continue
			}
			// Zero bytes with a call still pending means the peer closed
			// the connection out from under us. Spec §8 scenario 6 expects
			// the session to go dead and every waiter to be released
			// rather than spin rereading EOF forever, so an orderly close
			// is folded into the same fatal path as a genuine read error
			// (see DESIGN.md Open Question 3).
			if err == nil {
				err = io.EOF
			}
			s.dieExcept(err, goal)
			return false

		case codec.StatusInvalid:
			s.dieExcept(errInvalidFrame, goal)
			return false

		default: // codec.StatusOK
			s.recvBuf.Consume(rec.FrameSize)
			slot, ok := s.removePending(rec.Msgno)
			if !ok {
				s.dieExcept(errUnknownMsgno, goal)
				return false
			}
			if slot == goal {
				slot.CompleteDirect(rec.Object)
				return true
			}
			slot.Complete(rec.Object)
		}
	}
}

func (s *Session) tryBecomeReceiver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.receiverOwned {
		return false
	}
	s.receiverOwned = true
	return true
}

// stopReceiving relinquishes receiver duty and, if another call is
// still pending, wakes exactly one of its waiters so receiver duty
// passes on rather than every waiter re-racing for it (spec §4.4
// yield step).
func (s *Session) stopReceiving() {
	s.mu.Lock()
	s.receiverOwned = false
	next := s.pending.Any()
	s.mu.Unlock()
	if next != nil {
		next.Broadcast()
	}
}

func (s *Session) removePending(msgno int64) (*future.Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Remove(msgno)
}

// dieExcept marks the session dead, closes the socket, empties the
// pending table, and completes every call that was in it with a
// synthetic protocol exception (spec §7
// broadcast-on-death alternative; DESIGN.md Open Question 3). goal, if
// non-nil and still pending, is completed via CompleteDirect because
// the calling goroutine already holds its lock — going through
// Complete would deadlock self-locking the same mutex.
func (s *Session) dieExcept(cause error, goal *future.Slot) {
	s.mu.Lock()
	if s.dead {
		s.mu.Unlock()
		return
	}
	s.dead = true
	conn := s.conn
	s.conn = nil
	var slots []*future.Slot
	s.pending.Each(func(_ int64, slot *future.Slot) {
		slots = append(slots, slot)
	})
	s.pending = pending.Table{}
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	log.Printf("nnrpc/session: connection lost: %v", cause)

	deadObj := &codec.Object{
		Tag: codec.TagProtocolException,
		Value: &codec.ProtocolException{
			ClassName: SessionDeadClass,
			Message:   cause.Error(),
		},
	}
	for _, slot := range slots {
		if slot == goal {
			slot.CompleteDirect(deadObj)
		} else {
			slot.Complete(deadObj)
		}
	}
}
