package buffer

import "testing"

func TestAppendAndBytes(t *testing.T) {
	b := New(0)
	b.Append([]byte("hello"))
	b.Append([]byte(" world"))
	if got := string(b.Bytes()); got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestConsumeShiftsRemainder(t *testing.T) {
	b := New(0)
	b.Append([]byte("ABCDEF"))
	b.Consume(2)
	if got := string(b.Bytes()); got != "CDEF" {
		t.Fatalf("got %q", got)
	}
	b.Consume(100)
	if b.Used() != 0 {
		t.Fatalf("expected empty buffer, got used=%d", b.Used())
	}
}

func TestEnsureTailGrowsInBlocks(t *testing.T) {
	b := New(8)
	b.CommitWrite(6) // used=6, remaining=2
	b.EnsureTail(4*1024, 16*1024)
	if b.Remaining() < 4*1024 {
		t.Fatalf("expected at least 4KiB tail room, got %d", b.Remaining())
	}
	if b.Used() != 6 {
		t.Fatalf("EnsureTail must not disturb used bytes, got %d", b.Used())
	}
}

func TestEnsureTailNoopWhenEnough(t *testing.T) {
	b := New(8 * 1024)
	before := b.Cap()
	b.EnsureTail(4*1024, 16*1024)
	if b.Cap() != before {
		t.Fatalf("expected no growth, cap changed from %d to %d", before, b.Cap())
	}
}
