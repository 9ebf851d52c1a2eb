package session

import (
	"errors"
	"testing"
	"time"

	"nnrpc/codec"
	"nnrpc/future"
	"nnrpc/internal/fakenamenode"
	"nnrpc/protocol"
)

var errNoColon = errors.New("session_test: no colon in address")

func dial(t *testing.T) (*Session, *fakenamenode.Peer) {
	t.Helper()
	nn, err := fakenamenode.Listen()
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { nn.Close() })

	peerCh := make(chan *fakenamenode.Peer, 1)
	errCh := make(chan error, 1)
	go func() {
		p, err := nn.Accept()
		if err != nil {
			errCh <- err
			return
		}
		peerCh <- p
	}()

	host, port, err := splitAddr(nn.Addr())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}

	s := New(&codec.BinaryCodec{}, protocol.DialectV1)
	if err := s.Connect(host, port); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Authenticate("alice"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	select {
	case p := <-peerCh:
		t.Cleanup(func() { p.Close() })
		return s, p
	case err := <-errCh:
		t.Fatalf("accept: %v", err)
	case <-time.After(time.Second):
		t.Fatal("server never accepted")
	}
	return nil, nil
}

func splitAddr(addr string) (string, string, error) {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i], addr[i+1:], nil
		}
	}
	return "", "", errNoColon
}

// One call, one reply (spec §8 scenario 1).
func TestInvokeAwaitRoundTrip(t *testing.T) {
	s, peer := dial(t)
	defer s.Destroy(func() {})

	go func() {
		inv, err := peer.Recv()
		if err != nil {
			t.Errorf("server recv: %v", err)
			return
		}
		if inv.Name != "getListing" {
			t.Errorf("unexpected rpc name %q", inv.Name)
		}
		peer.Reply(inv.Msgno, &codec.Object{Tag: codec.TagString, Value: "ok"})
	}()

	slot := future.NewSlot()
	if err := s.Invoke("getListing", []any{"/"}, slot); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	result := s.Await(slot)
	if result.Tag != codec.TagString || result.Value != "ok" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

// Two outstanding calls whose replies arrive in reverse order (spec §8
// scenario 2): the second call's reply is written first, so whichever
// goroutine becomes the pump must route it to the other slot without
// satisfying its own goal, then keep going.
func TestTwoCallsRepliesReversed(t *testing.T) {
	s, peer := dial(t)
	defer s.Destroy(func() {})

	recvd := make(chan *struct {
		name  string
		msgno int64
	}, 2)
	go func() {
		for i := 0; i < 2; i++ {
			inv, err := peer.Recv()
			if err != nil {
				t.Errorf("server recv: %v", err)
				return
			}
			recvd <- &struct {
				name  string
				msgno int64
			}{inv.Name, inv.Msgno}
		}
		first := <-recvd
		second := <-recvd
		// Reply to the second call first.
		peer.Reply(second.msgno, &codec.Object{Tag: codec.TagLong, Value: int64(2)})
		peer.Reply(first.msgno, &codec.Object{Tag: codec.TagLong, Value: int64(1)})
	}()

	slot1 := future.NewSlot()
	if err := s.Invoke("getFsStats", nil, slot1); err != nil {
		t.Fatalf("invoke 1: %v", err)
	}
	slot2 := future.NewSlot()
	if err := s.Invoke("getFsStats", nil, slot2); err != nil {
		t.Fatalf("invoke 2: %v", err)
	}

	done := make(chan struct{}, 2)
	var r1, r2 *codec.Object
	go func() { r1 = s.Await(slot1); done <- struct{}{} }()
	go func() { r2 = s.Await(slot2); done <- struct{}{} }()

	timeout := time.After(2 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-timeout:
			t.Fatal("awaits never completed")
		}
	}
	if r1.Value != int64(1) {
		t.Fatalf("call 1 expected 1, got %+v", r1)
	}
	if r2.Value != int64(2) {
		t.Fatalf("call 2 expected 2, got %+v", r2)
	}
}

// Protocol exception response (spec §8 scenario 3).
func TestProtocolExceptionResponse(t *testing.T) {
	s, peer := dial(t)
	defer s.Destroy(func() {})

	go func() {
		inv, err := peer.Recv()
		if err != nil {
			t.Errorf("server recv: %v", err)
			return
		}
		peer.Reply(inv.Msgno, &codec.Object{
			Tag: codec.TagProtocolException,
			Value: &codec.ProtocolException{
				ClassName: "org.apache.hadoop.fs.FileNotFoundException",
				Message:   "no such file",
			},
		})
	}()

	slot := future.NewSlot()
	if err := s.Invoke("getFileInfo", []any{"/missing"}, slot); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	result := s.Await(slot)
	if result.Tag != codec.TagProtocolException {
		t.Fatalf("expected protocol exception tag, got %v", result.Tag)
	}
	pe, ok := result.Value.(*codec.ProtocolException)
	if !ok {
		t.Fatalf("expected *codec.ProtocolException, got %T", result.Value)
	}
	if pe.ClassName != "org.apache.hadoop.fs.FileNotFoundException" {
		t.Fatalf("unexpected class name: %s", pe.ClassName)
	}
}

// A split frame, delivered one byte at a time, must still decode
// correctly once fully buffered (spec §8 scenario 4).
func TestSplitFrameDelivery(t *testing.T) {
	s, peer := dial(t)
	defer s.Destroy(func() {})

	go func() {
		inv, err := peer.Recv()
		if err != nil {
			t.Errorf("server recv: %v", err)
			return
		}
		c := &codec.BinaryCodec{}
		frame, err := c.Serialize(&codec.Record{
			Msgno:  inv.Msgno,
			Object: &codec.Object{Tag: codec.TagBoolean, Value: true},
		})
		if err != nil {
			t.Errorf("serialize: %v", err)
			return
		}
		conn := peer.Conn()
		for _, b := range frame {
			conn.Write([]byte{b})
			time.Sleep(time.Millisecond)
		}
	}()

	slot := future.NewSlot()
	if err := s.Invoke("delete", []any{"/a", false}, slot); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	result := s.Await(slot)
	if result.Tag != codec.TagBoolean || result.Value != true {
		t.Fatalf("unexpected result: %+v", result)
	}
}

// A typed-null response (spec §8 scenario 5).
func TestTypedNullResponse(t *testing.T) {
	s, peer := dial(t)
	defer s.Destroy(func() {})

	go func() {
		inv, err := peer.Recv()
		if err != nil {
			t.Errorf("server recv: %v", err)
			return
		}
		peer.Reply(inv.Msgno, &codec.Object{Tag: codec.TagNull, DeclaredType: codec.TagLocatedBlock})
	}()

	slot := future.NewSlot()
	if err := s.Invoke("getBlockLocations", []any{"/f", int64(0), int64(1)}, slot); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	result := s.Await(slot)
	if result.Tag != codec.TagNull {
		t.Fatalf("expected null tag, got %v", result.Tag)
	}
	if result.DeclaredType != codec.TagLocatedBlock {
		t.Fatalf("expected declared type LocatedBlock, got %v", result.DeclaredType)
	}
}

// An orderly server-side close while a call is outstanding must wake
// the awaiting goroutine with a dead-session result rather than
// hanging forever (spec §8 scenario 6; see DESIGN.md Open Question 3).
func TestOrderlyCloseDuringAwait(t *testing.T) {
	s, peer := dial(t)
	defer s.Destroy(func() {})

	go func() {
		if _, err := peer.Recv(); err != nil {
			return
		}
		peer.Close()
	}()

	slot := future.NewSlot()
	if err := s.Invoke("renewLease", []any{"client1"}, slot); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	done := make(chan *codec.Object, 1)
	go func() { done <- s.Await(slot) }()

	select {
	case result := <-done:
		if result.Tag != codec.TagProtocolException {
			t.Fatalf("expected synthesized protocol exception, got %v", result.Tag)
		}
		pe := result.Value.(*codec.ProtocolException)
		if pe.ClassName != SessionDeadClass {
			t.Fatalf("unexpected class name: %s", pe.ClassName)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("await never woke up after orderly close")
	}
}
