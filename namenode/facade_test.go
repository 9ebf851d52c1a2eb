package namenode

import (
	"testing"

	"nnrpc/codec"
	"nnrpc/internal/fakenamenode"
	"nnrpc/protocol"
	"nnrpc/session"
)

// L1: serialize then deserialize an invocation yields an object with
// the same name, arguments, and msgno.
func TestInvocationRoundTrip(t *testing.T) {
	c := &codec.BinaryCodec{}
	inv := c.BuildInvocation("rename", "/a", "/b")
	c.SetMsgno(inv, 7)

	frame, err := c.Serialize(inv)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, n, status := c.DeserializeInvocation(frame)
	if status != codec.StatusOK {
		t.Fatalf("expected StatusOK, got %v", status)
	}
	if n != len(frame) {
		t.Fatalf("expected to consume entire frame, consumed %d of %d", n, len(frame))
	}
	if got.Name != "rename" || got.Msgno != 7 {
		t.Fatalf("unexpected invocation: %+v", got)
	}
	if len(got.Args) != 2 || got.Args[0] != "/a" || got.Args[1] != "/b" {
		t.Fatalf("unexpected args: %+v", got.Args)
	}
}

func dialClient(t *testing.T) (*Client, *fakenamenode.Peer) {
	t.Helper()
	nn, err := fakenamenode.Listen()
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { nn.Close() })

	peerCh := make(chan *fakenamenode.Peer, 1)
	go func() {
		p, err := nn.Accept()
		if err == nil {
			peerCh <- p
		}
	}()

	addr := nn.Addr()
	var host, port string
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			host, port = addr[:i], addr[i+1:]
			break
		}
	}

	s := session.New(&codec.BinaryCodec{}, protocol.DialectV1)
	if err := s.Connect(host, port); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Authenticate("bob"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	p := <-peerCh
	t.Cleanup(func() { p.Close() })
	return New(s), p
}

// L2: for a protocol-exception tag on the wire, the façade returns the
// sentinel default and the exception out-parameter.
func TestProtocolExceptionSentinel(t *testing.T) {
	c, peer := dialClient(t)

	go func() {
		inv, err := peer.Recv()
		if err != nil {
			t.Errorf("recv: %v", err)
			return
		}
		peer.Reply(inv.Msgno, &codec.Object{
			Tag: codec.TagProtocolException,
			Value: &codec.ProtocolException{
				ClassName: "org.apache.hadoop.fs.FileAlreadyExistsException",
				Message:   "exists",
			},
		})
	}()

	ok, exc, err := c.Rename("/a", "/b")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	if ok != false {
		t.Fatalf("expected sentinel default false, got %v", ok)
	}
	if exc == nil || exc.ClassName != "org.apache.hadoop.fs.FileAlreadyExistsException" {
		t.Fatalf("expected exception out-param populated, got %+v", exc)
	}
}

func TestPrimitiveRPCRoundTrip(t *testing.T) {
	c, peer := dialClient(t)

	go func() {
		inv, err := peer.Recv()
		if err != nil {
			t.Errorf("recv: %v", err)
			return
		}
		if inv.Name != "getPreferredBlockSize" {
			t.Errorf("unexpected rpc %q", inv.Name)
		}
		peer.Reply(inv.Msgno, &codec.Object{Tag: codec.TagLong, Value: int64(134217728)})
	}()

	size, exc, err := c.GetPreferredBlockSize("/a/b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if size != 134217728 {
		t.Fatalf("unexpected size: %d", size)
	}
}

func TestObjectRPCTypedNull(t *testing.T) {
	c, peer := dialClient(t)

	go func() {
		inv, err := peer.Recv()
		if err != nil {
			t.Errorf("recv: %v", err)
			return
		}
		if inv.Name != "getFileInfo" {
			t.Errorf("unexpected rpc %q", inv.Name)
		}
		peer.Reply(inv.Msgno, &codec.Object{Tag: codec.TagNull, DeclaredType: codec.TagFileStatus})
	}()

	obj, exc, err := c.GetFileInfo("/missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if obj.Tag != codec.TagNull || obj.DeclaredType != codec.TagFileStatus {
		t.Fatalf("unexpected object: %+v", obj)
	}
}

func TestV2OnlyRPCRejectedOnV1Session(t *testing.T) {
	s := session.New(&codec.BinaryCodec{}, protocol.DialectV1)
	c := New(s)
	_, _, err := c.GetServerDefaults()
	if err == nil {
		t.Fatal("expected an error requesting a v2-only RPC on a v1 session")
	}
}
