package shard

import (
	"sort"
	"testing"
)

func TestAggregate_addAndNormalize(t *testing.T) {
	a := NewAggregate()
	a.Add([]byte("ACGT"), 10)
	a.Add([]byte("ACGT"), 5)
	a.Add([]byte("ACGT"), 5) // duplicate position: should collapse

	a.Normalize()

	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}

	var gotSeq []byte
	var gotCount uint64
	var gotPositions []uint64
	a.forEach(func(seq []byte, count uint64, positions []uint64) {
		gotSeq = seq
		gotCount = count
		gotPositions = positions
	})

	if string(gotSeq) != "ACGT" {
		t.Fatalf("seq = %q, want %q", gotSeq, "ACGT")
	}
	if gotCount != 3 {
		t.Fatalf("count = %d, want 3 (one per Add call, duplicates included)", gotCount)
	}
	if len(gotPositions) != 2 || gotPositions[0] != 5 || gotPositions[1] != 10 {
		t.Fatalf("positions = %v, want [5 10]", gotPositions)
	}
}

func TestAggregate_longStringFallback(t *testing.T) {
	long := make([]byte, 40)
	for i := range long {
		long[i] = "ACGT"[i%4]
	}

	a := NewAggregate()
	a.Add(long, 1)
	a.Normalize()

	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}
	a.forEach(func(seq []byte, count uint64, positions []uint64) {
		if string(seq) != string(long) {
			t.Fatalf("seq = %q, want %q", seq, long)
		}
	})
}

func TestAggregate_nonACGTFallsBackToLongPath(t *testing.T) {
	a := NewAggregate()
	a.Add([]byte("ACGN"), 1)
	a.Normalize()

	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}
	a.forEach(func(seq []byte, count uint64, positions []uint64) {
		if string(seq) != "ACGN" {
			t.Fatalf("seq = %q, want %q", seq, "ACGN")
		}
	})
}

func TestAggregate_merge(t *testing.T) {
	a := NewAggregate()
	a.Add([]byte("ACGT"), 1)
	a.Add([]byte("TTTT"), 2)
	a.Normalize()

	b := NewAggregate()
	b.Add([]byte("ACGT"), 3)
	b.Add([]byte("ACGT"), 1) // overlaps with a's position for the same string
	b.Add([]byte("GGGG"), 9)
	b.Normalize()

	a.Merge(b)

	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}

	counts := map[string]uint64{}
	positions := map[string][]uint64{}
	a.forEach(func(seq []byte, count uint64, pos []uint64) {
		counts[string(seq)] = count
		positions[string(seq)] = append([]uint64(nil), pos...)
	})

	if counts["ACGT"] != 3 {
		t.Fatalf("ACGT count = %d, want 3", counts["ACGT"])
	}
	wantACGTPos := []uint64{1, 3}
	gotACGTPos := positions["ACGT"]
	sort.Slice(gotACGTPos, func(i, j int) bool { return gotACGTPos[i] < gotACGTPos[j] })
	if len(gotACGTPos) != len(wantACGTPos) || gotACGTPos[0] != wantACGTPos[0] || gotACGTPos[1] != wantACGTPos[1] {
		t.Fatalf("ACGT positions = %v, want %v", gotACGTPos, wantACGTPos)
	}

	if counts["TTTT"] != 1 || counts["GGGG"] != 1 {
		t.Fatalf("counts = %v, want TTTT=1 GGGG=1", counts)
	}
}

func TestMerge_emptyAndNilTablesAreIgnored(t *testing.T) {
	a := NewAggregate()
	a.Add([]byte("ACGT"), 0)
	a.Normalize()

	merged := Merge([]*Aggregate{nil, a, NewAggregate()})
	if merged.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", merged.Len())
	}
}
