package assemble

import (
	"bufio"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// writeMsTmp writes a raw `.ms.tmp` file directly per spec §4.E's grammar
// (m u64, m pointers, m lengths, native-endian, concatenated), independent
// of package shard's Writer, so this test exercises assemble.Run's decoder
// against a hand-built fixture rather than round-tripping through the
// writer under test elsewhere.
func writeMsTmp(t *testing.T, path string, records [][2][]uint64) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, rec := range records {
		pointers, lengths := rec[0], rec[1]
		if err := binary.Write(w, binary.NativeEndian, uint64(len(pointers))); err != nil {
			t.Fatalf("write m: %v", err)
		}
		if err := binary.Write(w, binary.NativeEndian, pointers); err != nil {
			t.Fatalf("write pointers: %v", err)
		}
		if err := binary.Write(w, binary.NativeEndian, lengths); err != nil {
			t.Fatalf("write lengths: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestRun_twoShardsFourReads(t *testing.T) {
	dir := t.TempDir()
	outPrefix := filepath.Join(dir, "out")

	writeMsTmp(t, outPrefix+"_0.ms.tmp",
		[][2][]uint64{
			{{0, 1, 2, 3}, {4, 3, 2, 1}},
			{{5, 6}, {2, 1}},
		},
	)
	writeMsTmp(t, outPrefix+"_1.ms.tmp",
		[][2][]uint64{
			{{10}, {1}},
			{{0, 0, 0}, {3, 2, 1}},
		},
	)

	if err := Run(outPrefix, 2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantPointers := ">0\n0 1 2 3\n>1\n5 6\n>2\n10\n>3\n0 0 0\n"
	gotPointers, err := os.ReadFile(outPrefix + ".pointers")
	if err != nil {
		t.Fatalf("read .pointers: %v", err)
	}
	if string(gotPointers) != wantPointers {
		t.Fatalf(".pointers = %q, want %q", gotPointers, wantPointers)
	}

	wantLengths := ">0\n4 3 2 1\n>1\n2 1\n>2\n1\n>3\n3 2 1\n"
	gotLengths, err := os.ReadFile(outPrefix + ".lengths")
	if err != nil {
		t.Fatalf("read .lengths: %v", err)
	}
	if string(gotLengths) != wantLengths {
		t.Fatalf(".lengths = %q, want %q", gotLengths, wantLengths)
	}
}

func TestRun_zeroLengthRead(t *testing.T) {
	dir := t.TempDir()
	outPrefix := filepath.Join(dir, "out")

	writeMsTmp(t, outPrefix+"_0.ms.tmp",
		[][2][]uint64{
			{{}, {}},
		},
	)

	if err := Run(outPrefix, 1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := ">0\n\n"
	got, err := os.ReadFile(outPrefix + ".pointers")
	if err != nil {
		t.Fatalf("read .pointers: %v", err)
	}
	if string(got) != want {
		t.Fatalf(".pointers = %q, want %q", got, want)
	}
}
