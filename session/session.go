// Package session implements the RPC session engine: the component
// that owns one TCP connection to a NameNode, serializes outgoing
// invocations, assigns and tracks message sequence numbers, receives
// and demultiplexes responses, and hands each response to the waiting
// caller (spec §1–§5). This is the core the rest of the module is
// built around.
//
// The concurrency model follows a classic client transport in spirit
// (a leaf send lock serializing frame writes, a shared connection
// multiplexed by sequence number) but not in control flow: a design
// that runs one dedicated recvLoop goroutine per connection forever
// would be simpler, but this engine instead elects a receiver lazily —
// the first caller to Await with nobody else already receiving
// becomes the pump for as long as it keeps finding work, and hands
// off to exactly one other waiter when it yields (spec §4.4). That
// discipline is the hard part of this design and is implemented
// literally rather than simplified to a background goroutine.
package session

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"nnrpc/buffer"
	"nnrpc/codec"
	"nnrpc/future"
	"nnrpc/pending"
	"nnrpc/protocol"
)

var (
	ErrNotConnected      = errors.New("nnrpc: not connected")
	ErrAlreadyConnected  = errors.New("nnrpc: already connected")
	ErrNotAuthenticated  = errors.New("nnrpc: not authenticated")
	ErrAlreadyAuthed     = errors.New("nnrpc: already authenticated")
	ErrDead              = errors.New("nnrpc: session is dead")
	ErrSlotAlreadyBound  = errors.New("nnrpc: response slot already bound")
	errInvalidFrame      = errors.New("nnrpc: invalid protocol frame")
	errUnknownMsgno      = errors.New("nnrpc: response to unknown message number")
)

// SessionDeadClass is the ClassName used on the synthetic protocol
// exception every outstanding call is completed with when a transport
// fatality kills the session (spec §7's "implementation MAY instead
// complete all outstanding slots" alternative — the choice this
// module makes; see DESIGN.md Open Question 3).
const SessionDeadClass = "nnrpc.SessionDeadException"

// Session owns one TCP connection to a NameNode. The zero value is
// not ready to use; construct with New.
type Session struct {
	mu     sync.Mutex // state lock: guards every field below except sendMu itself
	sendMu sync.Mutex // send lock: leaf, serializes writes to conn

	refs          int
	conn          net.Conn
	dead          bool
	authenticated bool
	receiverOwned bool
	nextMsgno     int64

	recvBuf *buffer.Buffer
	pending pending.Table

	destroyCB func()

	codec   codec.Codec
	dialect protocol.Dialect
}

// New allocates and initializes a session: refs=1, no socket, not
// dead, not authenticated, message counter 0, empty pending table
// (spec §4.1 allocate+init).
func New(c codec.Codec, dialect protocol.Dialect) *Session {
	return &Session{
		refs:    1,
		codec:   c,
		dialect: dialect,
		recvBuf: buffer.New(0),
	}
}

// Dialect reports which wire dialect this session was constructed
// with; the namenode façade uses this to reject v2-only RPCs up
// front.
func (s *Session) Dialect() protocol.Dialect { return s.dialect }

// Connect performs name resolution and TCP connect. It fails if
// already connected; on success it records the socket and otherwise
// leaves dead/authenticated untouched (spec §4.1 connect).
func (s *Session) Connect(host, port string) error {
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.mu.Unlock()

	conn, err := net.Dial("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return fmt.Errorf("nnrpc: connect: %w", err)
	}

	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		conn.Close()
		return ErrAlreadyConnected
	}
	s.conn = conn
	s.mu.Unlock()
	return nil
}

// Authenticate sends the fixed connection preamble followed by one
// serialized authentication header carrying username, under the send
// lock (spec §4.1 authenticate).
//
// Per the Open Question in spec §9 and DESIGN.md's decision: unlike
// the source, this implementation sets authenticated only after a
// successful write, not unconditionally before checking the result.
func (s *Session) Authenticate(username string) error {
	s.mu.Lock()
	if s.conn == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	if s.authenticated {
		s.mu.Unlock()
		return ErrAlreadyAuthed
	}
	conn := s.conn
	s.mu.Unlock()

	payload := encodeAuthHeader(username)
	frame := make([]byte, 0, len(protocol.Preamble)+len(payload))
	frame = append(frame, protocol.Preamble[:]...)
	frame = append(frame, payload...)

	s.sendMu.Lock()
	err := writeFull(conn, frame)
	s.sendMu.Unlock()
	if err != nil {
		return fmt.Errorf("nnrpc: authenticate: %w", err)
	}

	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()
	return nil
}

// encodeAuthHeader serializes the connection-header object carrying
// username: a 2-byte length prefix plus the UTF-8 bytes. This is the
// one object the engine serializes itself rather than through the
// codec — spec §6 lists it as something the engine sends, distinct
// from the codec's self-delimited RPC frames.
func encodeAuthHeader(username string) []byte {
	b := make([]byte, 2+len(username))
	b[0] = byte(len(username) >> 8)
	b[1] = byte(len(username))
	copy(b[2:], username)
	return b
}

// Destroy marks the session dead, stores the finalizer callback, and
// releases the caller's reference. Further Invoke calls are rejected.
// Socket closure and the callback run when the last reference drops
// (spec §4.1 destroy).
func (s *Session) Destroy(onFree func()) {
	s.mu.Lock()
	s.dead = true
	s.destroyCB = onFree
	s.mu.Unlock()
	s.decref()
}

// copyRefUnlocked bumps the refcount. Callers must hold s.mu.
func (s *Session) copyRefUnlocked() {
	s.refs++
}

func (s *Session) decref() {
	s.mu.Lock()
	s.refs--
	last := s.refs == 0
	conn := s.conn
	if last {
		s.conn = nil
	}
	cb := s.destroyCB
	s.mu.Unlock()

	if !last {
		return
	}
	if conn != nil {
		conn.Close()
	}
	if cb != nil {
		cb()
	}
}

// Invoke serializes rpc and transmits it, binding slot to this
// session so a subsequent Await can correlate the response (spec
// §4.2). On failure the slot is left unbound.
func (s *Session) Invoke(name string, args []any, slot *future.Slot) error {
	s.mu.Lock()
	if s.refs < 1 {
		s.mu.Unlock()
		return ErrDead
	}
	if s.dead {
		s.mu.Unlock()
		return ErrDead
	}
	if s.conn == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	if !s.authenticated {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if slot.Bound() {
		s.mu.Unlock()
		return ErrSlotAlreadyBound
	}

	msgno := s.nextMsgno
	s.nextMsgno++
	s.copyRefUnlocked()
	slot.Bind(s.decref)
	s.pending.Insert(msgno, slot)
	conn := s.conn
	s.mu.Unlock()

	inv := s.codec.BuildInvocation(name, args...)
	s.codec.SetMsgno(inv, msgno)
	frame, err := s.codec.Serialize(inv)
	if err != nil {
		s.abortInvoke(msgno, slot)
		return fmt.Errorf("nnrpc: invoke: serialize: %w", err)
	}

	s.sendMu.Lock()
	err = writeFull(conn, frame)
	s.sendMu.Unlock()
	if err != nil {
		s.abortInvoke(msgno, slot)
		return fmt.Errorf("nnrpc: invoke: write: %w", err)
	}
	return nil
}

// abortInvoke undoes the bookkeeping Invoke performed before a
// serialize or write failure, so a failed call does not leak a
// pending-table entry or a dangling session reference.
func (s *Session) abortInvoke(msgno int64, slot *future.Slot) {
	s.mu.Lock()
	s.pending.Remove(msgno)
	s.mu.Unlock()
	slot.Release()
	slot.Reset()
}

// Await blocks until slot has a result, either because this session
// delivered a response to it or because the session died with this
// call still pending (spec §4.3).
func (s *Session) Await(slot *future.Slot) *codec.Object {
	slot.Lock()
	for !slot.Ready() {
		if s.pump(slot) {
			break
		}
		if !slot.Ready() {
			slot.Wait()
		}
	}
	result := slot.Result
	slot.Unlock()
	slot.Release()
	slot.Reset()
	return result
}

func writeFull(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}
