package codec

import (
	"encoding/binary"
	"encoding/json"
	"errors"

	"nnrpc/message"
)

// JSONCodec is a human-readable codec for the same self-delimited
// envelope BinaryCodec uses (encoding/json, nothing else) — useful in
// tests that want to read wire traffic directly rather than decode
// BinaryCodec's hand-rolled binary layout.
type JSONCodec struct{}

type jsonInvocation struct {
	Kind  byte   `json:"kind"`
	Msgno int64  `json:"msgno"`
	Name  string `json:"name"`
	Args  []any  `json:"args"`
}

type jsonResponse struct {
	Kind         byte `json:"kind"`
	Msgno        int64
	Tag          Tag
	DeclaredType Tag
	Value        any
}

func (c *JSONCodec) BuildInvocation(name string, args ...any) *message.Invocation {
	return &message.Invocation{Name: name, Args: args}
}

func (c *JSONCodec) SetMsgno(inv *message.Invocation, msgno int64) {
	inv.Msgno = msgno
}

func (c *JSONCodec) Serialize(v any) ([]byte, error) {
	switch obj := v.(type) {
	case *message.Invocation:
		body, err := json.Marshal(jsonInvocation{
			Kind:  frameKindInvocation,
			Msgno: obj.Msgno,
			Name:  obj.Name,
			Args:  obj.Args,
		})
		if err != nil {
			return nil, err
		}
		return withLengthPrefix(body), nil
	case *Record:
		body, err := json.Marshal(jsonResponse{
			Kind:         frameKindResponse,
			Msgno:        obj.Msgno,
			Tag:          obj.Object.Tag,
			DeclaredType: obj.Object.DeclaredType,
			Value:        obj.Object.Value,
		})
		if err != nil {
			return nil, err
		}
		return withLengthPrefix(body), nil
	default:
		return nil, errors.New("codec: JSONCodec.Serialize: unsupported type")
	}
}

func (c *JSONCodec) Deserialize(data []byte) (*Record, Status) {
	if len(data) < 4 {
		return nil, StatusIncomplete
	}
	bodyLen := binary.BigEndian.Uint32(data[0:4])
	if bodyLen > maxFrameLen {
		return nil, StatusInvalid
	}
	total := 4 + int(bodyLen)
	if len(data) < total {
		return nil, StatusIncomplete
	}
	var resp jsonResponse
	if err := json.Unmarshal(data[4:total], &resp); err != nil {
		return nil, StatusInvalid
	}
	if resp.Kind != frameKindResponse {
		return nil, StatusInvalid
	}
	value := resp.Value
	if resp.Tag == TagProtocolException && value != nil {
		var body struct{ Value *ProtocolException }
		if err := json.Unmarshal(data[4:total], &body); err != nil {
			return nil, StatusInvalid
		}
		value = body.Value
	}
	return &Record{
		Msgno: resp.Msgno,
		Object: &Object{
			Tag:          resp.Tag,
			DeclaredType: resp.DeclaredType,
			Value:        value,
		},
		FrameSize: total,
	}, StatusOK
}

// DeserializeInvocation parses one request frame; see BinaryCodec's
// method of the same name for why this lives outside the Codec
// interface.
func (c *JSONCodec) DeserializeInvocation(data []byte) (*message.Invocation, int, Status) {
	if len(data) < 4 {
		return nil, 0, StatusIncomplete
	}
	bodyLen := binary.BigEndian.Uint32(data[0:4])
	if bodyLen > maxFrameLen {
		return nil, 0, StatusInvalid
	}
	total := 4 + int(bodyLen)
	if len(data) < total {
		return nil, 0, StatusIncomplete
	}
	var inv jsonInvocation
	if err := json.Unmarshal(data[4:total], &inv); err != nil {
		return nil, 0, StatusInvalid
	}
	if inv.Kind != frameKindInvocation {
		return nil, 0, StatusInvalid
	}
	return &message.Invocation{Msgno: inv.Msgno, Name: inv.Name, Args: inv.Args}, total, StatusOK
}

func (c *JSONCodec) Free(obj *Object) {}
