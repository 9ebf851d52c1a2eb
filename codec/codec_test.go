package codec

import "testing"

func TestBinaryCodecInvocationRoundTrip(t *testing.T) {
	c := &BinaryCodec{}
	inv := c.BuildInvocation("getPreferredBlockSize", "/a")
	c.SetMsgno(inv, 7)

	frame, err := c.Serialize(inv)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, n, status := c.DeserializeInvocation(frame)
	if status != StatusOK {
		t.Fatalf("expected StatusOK, got %v", status)
	}
	if n != len(frame) {
		t.Fatalf("frame size mismatch: got %d want %d", n, len(frame))
	}
	if got.Name != inv.Name || got.Msgno != inv.Msgno {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, inv)
	}
	if len(got.Args) != 1 || got.Args[0] != "/a" {
		t.Fatalf("args mismatch: got %+v", got.Args)
	}
}

func TestBinaryCodecResponseRoundTrip(t *testing.T) {
	c := &BinaryCodec{}
	rec := &Record{Msgno: 42, Object: &Object{Tag: TagLong, Value: int64(256)}}
	frame, err := c.Serialize(rec)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, status := c.Deserialize(frame)
	if status != StatusOK {
		t.Fatalf("expected StatusOK, got %v", status)
	}
	if got.Msgno != 42 || got.Object.Tag != TagLong || got.Object.Value != int64(256) {
		t.Fatalf("mismatch: %+v", got)
	}
}

func TestBinaryCodecIncompleteFrame(t *testing.T) {
	c := &BinaryCodec{}
	rec := &Record{Msgno: 1, Object: &Object{Tag: TagBoolean, Value: true}}
	frame, _ := c.Serialize(rec)

	for split := 0; split < len(frame); split++ {
		_, status := c.Deserialize(frame[:split])
		if status != StatusIncomplete {
			t.Fatalf("split %d: expected StatusIncomplete, got %v", split, status)
		}
	}
	_, status := c.Deserialize(frame)
	if status != StatusOK {
		t.Fatalf("full frame should parse, got %v", status)
	}
}

func TestBinaryCodecInvalidFrame(t *testing.T) {
	c := &BinaryCodec{}
	garbage := []byte{0, 0, 0, 3, 9, 9, 9}
	_, status := c.Deserialize(garbage)
	if status != StatusInvalid {
		t.Fatalf("expected StatusInvalid, got %v", status)
	}
}

func TestBinaryCodecTypedNull(t *testing.T) {
	c := &BinaryCodec{}
	rec := &Record{Msgno: 5, Object: &Object{Tag: TagNull, DeclaredType: TagFileStatus}}
	frame, err := c.Serialize(rec)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, status := c.Deserialize(frame)
	if status != StatusOK {
		t.Fatalf("status: %v", status)
	}
	if got.Object.Tag != TagNull || got.Object.DeclaredType != TagFileStatus {
		t.Fatalf("typed null mismatch: %+v", got.Object)
	}
}

func TestBinaryCodecProtocolException(t *testing.T) {
	c := &BinaryCodec{}
	pe := &ProtocolException{ClassName: "java.io.FileNotFoundException", Message: "no such file"}
	rec := &Record{Msgno: 9, Object: &Object{Tag: TagProtocolException, Value: pe}}
	frame, err := c.Serialize(rec)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, status := c.Deserialize(frame)
	if status != StatusOK {
		t.Fatalf("status: %v", status)
	}
	if got.Object.Tag != TagProtocolException {
		t.Fatalf("expected TagProtocolException, got %v", got.Object.Tag)
	}
	// Value travels as JSON on the wire but decodes back into the typed
	// *ProtocolException that the session and the façade hand to callers.
	gotPE, ok := got.Object.Value.(*ProtocolException)
	if !ok {
		t.Fatalf("expected *ProtocolException value, got %T", got.Object.Value)
	}
	if gotPE.Message != "no such file" {
		t.Fatalf("message mismatch: %+v", gotPE)
	}
}

func TestJSONCodecRoundTrip(t *testing.T) {
	c := &JSONCodec{}
	inv := c.BuildInvocation("rename", "/x", "/y")
	c.SetMsgno(inv, 3)
	frame, err := c.Serialize(inv)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, n, status := c.DeserializeInvocation(frame)
	if status != StatusOK || n != len(frame) {
		t.Fatalf("status=%v n=%d", status, n)
	}
	if got.Name != "rename" || got.Msgno != 3 {
		t.Fatalf("mismatch: %+v", got)
	}
}
