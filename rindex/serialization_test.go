package rindex

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestTextOracle_roundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.plain.slp")
	want := []byte("ACGTACGTNN")

	if err := WriteTextOracle(path, want); err != nil {
		t.Fatalf("WriteTextOracle: %v", err)
	}

	got, err := loadText(path)
	if err != nil {
		t.Fatalf("loadText: %v", err)
	}
	if got.Len() != uint64(len(want)) {
		t.Fatalf("Len() = %d, want %d", got.Len(), len(want))
	}
	for i := range want {
		if got.At(uint64(i)) != want[i] {
			t.Fatalf("At(%d) = %q, want %q", i, got.At(uint64(i)), want[i])
		}
	}
}

func TestTextOracle_wrongMagicRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.ms.idx")
	table := map[string][]uint64{"A": {0}}
	if err := WritePointersFixture(path, table); err != nil {
		t.Fatalf("WritePointersFixture: %v", err)
	}

	if _, err := loadText(path); err != ErrInvalidFormat {
		t.Fatalf("loadText(pointers file) = %v, want ErrInvalidFormat", err)
	}
}

func TestPointers_roundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.ms.idx")
	table := map[string][]uint64{
		"ACGT": {0, 1, 2, 3},
		"TTTT": {5, 6, 7, 8},
	}

	if err := WritePointersFixture(path, table); err != nil {
		t.Fatalf("WritePointersFixture: %v", err)
	}

	got, err := loadPointers(path)
	if err != nil {
		t.Fatalf("loadPointers: %v", err)
	}

	for seq, want := range table {
		out := got.Query([]byte(seq))
		if !reflect.DeepEqual(out, want) {
			t.Fatalf("Query(%q) = %v, want %v", seq, out, want)
		}
	}

	// A read not present in the fixture table is still total: it answers
	// with an all-zero seed of the right length.
	out := got.Query([]byte("GGGGG"))
	if !reflect.DeepEqual(out, []uint64{0, 0, 0, 0, 0}) {
		t.Fatalf("Query(unknown) = %v, want all-zero length-5 slice", out)
	}
}

func TestLoad_missingFilesError(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "nope"), false); err == nil {
		t.Fatalf("Load with no files present: want error, got nil")
	}
}

func TestLoad_fullRoundTrip(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "idx")

	if err := WritePointersFixture(base+PointersFileExt, map[string][]uint64{"AC": {1, 2}}); err != nil {
		t.Fatalf("WritePointersFixture: %v", err)
	}
	if err := WriteTextOracle(base+PlainSLPFileExt, []byte("ACGTACGT")); err != nil {
		t.Fatalf("WriteTextOracle: %v", err)
	}

	idx, err := Load(base, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Text.Len() != 8 {
		t.Fatalf("Text.Len() = %d, want 8", idx.Text.Len())
	}
	if out := idx.Pointers.Query([]byte("AC")); !reflect.DeepEqual(out, []uint64{1, 2}) {
		t.Fatalf("Query(AC) = %v, want [1 2]", out)
	}
}

func TestBaseName(t *testing.T) {
	if got := BaseName("/a/b/reads.fastq"); got != "reads.fastq" {
		t.Fatalf("BaseName = %q, want %q", got, "reads.fastq")
	}
}
