// Package fakenamenode is a minimal in-process stand-in for a real
// HDFS NameNode, used only by tests in packages session, namenode and
// client. It speaks just enough of the wire protocol — the fixed
// preamble, one authentication header, and self-delimited invocation
// frames — to drive the engine's end-to-end scenarios (spec §8)
// without a real cluster.
//
// There is no reflection-based service dispatch here the way a
// generic RPC server would have it — no analogue, since there is no
// user-supplied service, only a fixed set of NameNode RPCs the client
// calls. What's kept is the shape: a listener, one read loop per
// connection, a per-connection write lock — adapted to a scriptable
// peer a test can drive by hand instead of a registry-backed
// dispatcher.
package fakenamenode

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"nnrpc/buffer"
	"nnrpc/codec"
	"nnrpc/message"
	"nnrpc/protocol"
)

// NameNode listens on a loopback port and hands out scriptable Peer
// connections for tests to drive.
type NameNode struct {
	ln    net.Listener
	codec *codec.BinaryCodec
}

// Listen starts listening on 127.0.0.1 with an OS-assigned port.
func Listen() (*NameNode, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	return &NameNode{ln: ln, codec: &codec.BinaryCodec{}}, nil
}

// Addr is the "host:port" string a session can Connect to.
func (n *NameNode) Addr() string { return n.ln.Addr().String() }

// Close stops accepting new connections.
func (n *NameNode) Close() error { return n.ln.Close() }

// Accept blocks for one incoming connection, completes the fixed
// preamble and authentication handshake, and returns a Peer a test can
// script Recv/Reply calls against.
func (n *NameNode) Accept() (*Peer, error) {
	conn, err := n.ln.Accept()
	if err != nil {
		return nil, err
	}
	p := &Peer{
		conn:  conn,
		codec: n.codec,
		buf:   buffer.New(4096),
	}
	if err := p.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

// Peer is one accepted, authenticated connection from a session under
// test.
type Peer struct {
	conn  net.Conn
	codec *codec.BinaryCodec
	buf   *buffer.Buffer

	writeMu sync.Mutex

	// Username is whatever the session sent in its auth header.
	Username string
}

func (p *Peer) handshake() error {
	var preamble [6]byte
	if _, err := io.ReadFull(p.conn, preamble[:]); err != nil {
		return fmt.Errorf("fakenamenode: reading preamble: %w", err)
	}
	if preamble != protocol.Preamble {
		return errors.New("fakenamenode: bad preamble")
	}
	lenBuf := make([]byte, 2)
	if _, err := io.ReadFull(p.conn, lenBuf); err != nil {
		return fmt.Errorf("fakenamenode: reading auth header length: %w", err)
	}
	n := int(lenBuf[0])<<8 | int(lenBuf[1])
	name := make([]byte, n)
	if _, err := io.ReadFull(p.conn, name); err != nil {
		return fmt.Errorf("fakenamenode: reading auth header: %w", err)
	}
	p.Username = string(name)
	return nil
}

// Recv blocks until one complete invocation frame has arrived and
// returns it. Tests that want to exercise the split-frame edge case
// write the reply's raw bytes through Conn instead of calling Reply.
func (p *Peer) Recv() (*message.Invocation, error) {
	for {
		inv, n, status := p.codec.DeserializeInvocation(p.buf.Bytes())
		switch status {
		case codec.StatusOK:
			p.buf.Consume(n)
			return inv, nil
		case codec.StatusInvalid:
			return nil, errors.New("fakenamenode: invalid invocation frame")
		default: // StatusIncomplete
			p.buf.EnsureTail(4096, 4096)
			read, err := p.conn.Read(p.buf.Tail())
			if read == 0 {
				if err == nil {
					err = io.EOF
				}
				return nil, err
			}
			p.buf.CommitWrite(read)
		}
	}
}

// Reply writes one response frame for msgno carrying obj.
func (p *Peer) Reply(msgno int64, obj *codec.Object) error {
	frame, err := p.codec.Serialize(&codec.Record{Msgno: msgno, Object: obj})
	if err != nil {
		return err
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	for len(frame) > 0 {
		n, err := p.conn.Write(frame)
		if err != nil {
			return err
		}
		frame = frame[n:]
	}
	return nil
}

// Conn exposes the raw connection for tests that need to write
// malformed or partial bytes directly (e.g. the split-frame and
// invalid-frame scenarios in spec §8).
func (p *Peer) Conn() net.Conn { return p.conn }

// Close ends the connection, simulating an orderly server-side close.
func (p *Peer) Close() error { return p.conn.Close() }
