package pending

import (
	"testing"

	"nnrpc/future"
)

func TestInsertRemoveRoundTrip(t *testing.T) {
	var tbl Table
	s1, s2, s3 := future.NewSlot(), future.NewSlot(), future.NewSlot()
	tbl.Insert(0, s1)
	tbl.Insert(1, s2)
	tbl.Insert(2, s3)

	if tbl.Len() != 3 {
		t.Fatalf("expected len 3, got %d", tbl.Len())
	}

	got, ok := tbl.Remove(1)
	if !ok || got != s2 {
		t.Fatalf("expected to remove slot for msgno 1")
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected len 2 after remove, got %d", tbl.Len())
	}

	if _, ok := tbl.Remove(1); ok {
		t.Fatal("removing an already-removed msgno must fail")
	}

	got, ok = tbl.Remove(0)
	if !ok || got != s1 {
		t.Fatalf("expected to remove slot for msgno 0")
	}
	got, ok = tbl.Remove(2)
	if !ok || got != s3 {
		t.Fatalf("expected to remove slot for msgno 2")
	}
	if tbl.Len() != 0 {
		t.Fatalf("expected empty table, got len %d", tbl.Len())
	}
}

func TestGrowthAcrossBlocks(t *testing.T) {
	var tbl Table
	slots := make([]*future.Slot, 40)
	for i := range slots {
		slots[i] = future.NewSlot()
		tbl.Insert(int64(i), slots[i])
	}
	if tbl.Len() != 40 {
		t.Fatalf("expected 40 entries, got %d", tbl.Len())
	}
	for i := range slots {
		got, ok := tbl.Remove(int64(i))
		if !ok || got != slots[i] {
			t.Fatalf("mismatch removing msgno %d", i)
		}
	}
}

func TestAnyReturnsArbitraryPending(t *testing.T) {
	var tbl Table
	if tbl.Any() != nil {
		t.Fatal("expected nil Any() on empty table")
	}
	s := future.NewSlot()
	tbl.Insert(5, s)
	if tbl.Any() != s {
		t.Fatal("expected Any() to return the only pending slot")
	}
}

func TestEachVisitsAllEntries(t *testing.T) {
	var tbl Table
	s1, s2 := future.NewSlot(), future.NewSlot()
	tbl.Insert(0, s1)
	tbl.Insert(1, s2)

	seen := map[int64]*future.Slot{}
	tbl.Each(func(msgno int64, slot *future.Slot) {
		seen[msgno] = slot
	})
	if len(seen) != 2 || seen[0] != s1 || seen[1] != s2 {
		t.Fatalf("unexpected visit set: %+v", seen)
	}
}
