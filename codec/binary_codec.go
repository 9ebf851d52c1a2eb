package codec

import (
	"encoding/binary"
	"encoding/json"
	"errors"

	"nnrpc/message"
)

// BinaryCodec is a compact, self-delimited wire format: every frame is
// a 4-byte big-endian length prefix over an inner envelope, hand-
// encoding the outer fields with binary.BigEndian instead of
// reflection, while falling back to JSON for the handful of payload
// shapes (object-return RPC results) that don't have a fixed binary
// layout of their own. A protocol-exception payload travels as JSON
// and is decoded back into a *ProtocolException.
//
// Inner envelope, request (kind 0):
//
//	kind(1) msgno(8) nameLen(2) name(nameLen) argc(1) [valKind(1) len(4) payload(len)]*argc
//
// Inner envelope, response (kind 1):
//
//	kind(1) msgno(8) tag(1) declaredType(1) valKind(1) len(4) payload(len)
type BinaryCodec struct{}

const maxFrameLen = 64 * 1024 * 1024

const (
	frameKindInvocation byte = 0
	frameKindResponse   byte = 1
)

// value kinds shared by both invocation args and response values.
const (
	valNil byte = iota
	valBool
	valInt64
	valString
	valJSON
)

func encodeValue(v any) (byte, []byte, error) {
	switch x := v.(type) {
	case nil:
		return valNil, nil, nil
	case bool:
		if x {
			return valBool, []byte{1}, nil
		}
		return valBool, []byte{0}, nil
	case int:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(int64(x)))
		return valInt64, b, nil
	case int64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(x))
		return valInt64, b, nil
	case string:
		return valString, []byte(x), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return 0, nil, err
		}
		return valJSON, b, nil
	}
}

func decodeValue(kind byte, payload []byte) (any, error) {
	switch kind {
	case valNil:
		return nil, nil
	case valBool:
		if len(payload) != 1 {
			return nil, errors.New("codec: malformed bool value")
		}
		return payload[0] != 0, nil
	case valInt64:
		if len(payload) != 8 {
			return nil, errors.New("codec: malformed int64 value")
		}
		return int64(binary.BigEndian.Uint64(payload)), nil
	case valString:
		return string(payload), nil
	case valJSON:
		var v any
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, errors.New("codec: unknown value kind")
	}
}

func (c *BinaryCodec) BuildInvocation(name string, args ...any) *message.Invocation {
	return &message.Invocation{Name: name, Args: args}
}

func (c *BinaryCodec) SetMsgno(inv *message.Invocation, msgno int64) {
	inv.Msgno = msgno
}

func (c *BinaryCodec) Serialize(v any) ([]byte, error) {
	switch obj := v.(type) {
	case *message.Invocation:
		return c.serializeInvocation(obj)
	case *Record:
		return c.serializeResponse(obj.Msgno, obj.Object)
	default:
		return nil, errors.New("codec: BinaryCodec.Serialize: unsupported type")
	}
}

func (c *BinaryCodec) serializeInvocation(inv *message.Invocation) ([]byte, error) {
	inner := make([]byte, 0, 32)
	inner = append(inner, frameKindInvocation)
	inner = appendUint64(inner, uint64(inv.Msgno))
	inner = appendUint16(inner, uint16(len(inv.Name)))
	inner = append(inner, inv.Name...)
	if len(inv.Args) > 255 {
		return nil, errors.New("codec: too many arguments")
	}
	inner = append(inner, byte(len(inv.Args)))
	for _, a := range inv.Args {
		kind, payload, err := encodeValue(a)
		if err != nil {
			return nil, err
		}
		inner = append(inner, kind)
		inner = appendUint32(inner, uint32(len(payload)))
		inner = append(inner, payload...)
	}
	return withLengthPrefix(inner), nil
}

// serializeResponse encodes a response frame. Only test fixtures
// standing in for a NameNode (internal/fakenamenode) call this; the
// engine itself never serializes a response.
func (c *BinaryCodec) serializeResponse(msgno int64, obj *Object) ([]byte, error) {
	inner := make([]byte, 0, 16)
	inner = append(inner, frameKindResponse)
	inner = appendUint64(inner, uint64(msgno))
	inner = append(inner, byte(obj.Tag))
	inner = append(inner, byte(obj.DeclaredType))
	kind, payload, err := encodeValue(obj.Value)
	if err != nil {
		return nil, err
	}
	inner = append(inner, kind)
	inner = appendUint32(inner, uint32(len(payload)))
	inner = append(inner, payload...)
	return withLengthPrefix(inner), nil
}

func (c *BinaryCodec) Deserialize(data []byte) (*Record, Status) {
	if len(data) < 4 {
		return nil, StatusIncomplete
	}
	innerLen := binary.BigEndian.Uint32(data[0:4])
	if innerLen > maxFrameLen {
		return nil, StatusInvalid
	}
	total := 4 + int(innerLen)
	if len(data) < total {
		return nil, StatusIncomplete
	}
	inner := data[4:total]
	if len(inner) < 9 {
		return nil, StatusInvalid
	}
	if inner[0] != frameKindResponse {
		return nil, StatusInvalid
	}
	msgno := int64(binary.BigEndian.Uint64(inner[1:9]))
	rest := inner[9:]
	if len(rest) < 7 {
		return nil, StatusInvalid
	}
	tag := Tag(rest[0])
	declaredType := Tag(rest[1])
	valKind := rest[2]
	valLen := binary.BigEndian.Uint32(rest[3:7])
	payload := rest[7:]
	if uint32(len(payload)) != valLen {
		return nil, StatusInvalid
	}
	value, err := decodeValue(valKind, payload)
	if err != nil {
		return nil, StatusInvalid
	}
	if tag == TagProtocolException && valKind == valJSON {
		pe := &ProtocolException{}
		if err := json.Unmarshal(payload, pe); err != nil {
			return nil, StatusInvalid
		}
		value = pe
	}
	return &Record{
		Msgno: msgno,
		Object: &Object{
			Tag:          tag,
			DeclaredType: declaredType,
			Value:        value,
		},
		FrameSize: total,
	}, StatusOK
}

// DeserializeInvocation parses one request frame. Only
// internal/fakenamenode calls this; it is not part of the Codec
// interface the engine depends on.
func (c *BinaryCodec) DeserializeInvocation(data []byte) (*message.Invocation, int, Status) {
	if len(data) < 4 {
		return nil, 0, StatusIncomplete
	}
	innerLen := binary.BigEndian.Uint32(data[0:4])
	if innerLen > maxFrameLen {
		return nil, 0, StatusInvalid
	}
	total := 4 + int(innerLen)
	if len(data) < total {
		return nil, 0, StatusIncomplete
	}
	inner := data[4:total]
	if len(inner) < 11 || inner[0] != frameKindInvocation {
		return nil, 0, StatusInvalid
	}
	msgno := int64(binary.BigEndian.Uint64(inner[1:9]))
	nameLen := int(binary.BigEndian.Uint16(inner[9:11]))
	off := 11
	if len(inner) < off+nameLen+1 {
		return nil, 0, StatusInvalid
	}
	name := string(inner[off : off+nameLen])
	off += nameLen
	argc := int(inner[off])
	off++
	args := make([]any, 0, argc)
	for i := 0; i < argc; i++ {
		if len(inner) < off+5 {
			return nil, 0, StatusInvalid
		}
		kind := inner[off]
		off++
		l := int(binary.BigEndian.Uint32(inner[off : off+4]))
		off += 4
		if len(inner) < off+l {
			return nil, 0, StatusInvalid
		}
		v, err := decodeValue(kind, inner[off:off+l])
		if err != nil {
			return nil, 0, StatusInvalid
		}
		args = append(args, v)
		off += l
	}
	return &message.Invocation{Msgno: msgno, Name: name, Args: args}, total, StatusOK
}

func (c *BinaryCodec) Free(obj *Object) {}

func withLengthPrefix(inner []byte) []byte {
	out := make([]byte, 4+len(inner))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(inner)))
	copy(out[4:], inner)
	return out
}

func appendUint16(b []byte, v uint16) []byte {
	tmp := make([]byte, 2)
	binary.BigEndian.PutUint16(tmp, v)
	return append(b, tmp...)
}

func appendUint32(b []byte, v uint32) []byte {
	tmp := make([]byte, 4)
	binary.BigEndian.PutUint32(tmp, v)
	return append(b, tmp...)
}

func appendUint64(b []byte, v uint64) []byte {
	tmp := make([]byte, 8)
	binary.BigEndian.PutUint64(tmp, v)
	return append(b, tmp...)
}
