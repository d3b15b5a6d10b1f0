package persist

import "testing"

func TestStoreSaveLoadHead(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	body1, err := Encode(testSnapshot())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	seq1, err := store.Save(body1)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if seq1 != 1 {
		t.Fatalf("first Save seq = %d, want 1", seq1)
	}

	snap2 := testSnapshot()
	snap2.Tick = 99
	body2, err := Encode(snap2)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	seq2, err := store.Save(body2)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if seq2 != 2 {
		t.Fatalf("second Save seq = %d, want 2", seq2)
	}

	headSeq, headBody, err := store.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if headSeq != seq2 {
		t.Fatalf("Head seq = %d, want %d", headSeq, seq2)
	}
	headSnap, err := Decode(headBody)
	if err != nil {
		t.Fatalf("Decode head: %v", err)
	}
	if headSnap.Tick != 99 {
		t.Fatalf("head snapshot tick = %d, want 99", headSnap.Tick)
	}

	firstBody, err := store.Load(seq1)
	if err != nil {
		t.Fatalf("Load(seq1): %v", err)
	}
	firstSnap, err := Decode(firstBody)
	if err != nil {
		t.Fatalf("Decode(seq1): %v", err)
	}
	if firstSnap.Tick != 7 {
		t.Fatalf("seq1 snapshot tick = %d, want 7", firstSnap.Tick)
	}
}

func TestStoreHeadEmptyReturnsZero(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	seq, body, err := store.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if seq != 0 || body != nil {
		t.Fatalf("Head on empty store = (%d, %v), want (0, nil)", seq, body)
	}
}
