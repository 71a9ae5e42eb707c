package fastqio

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFastq(t *testing.T, records int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "reads.fastq")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	for i := 0; i < records; i++ {
		f.WriteString("@r")
		f.WriteString(string(rune('0' + i%10)))
		f.WriteString("\nACGTACGTAC\n+\nIIIIIIIIII\n")
	}
	return path
}

func TestSplit_boundariesAreRecordStarts(t *testing.T) {
	path := writeTempFastq(t, 40)

	starts, err := Split(path, 4)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(starts) < 2 {
		t.Fatalf("starts = %v, want at least [0, size]", starts)
	}
	if starts[0] != 0 {
		t.Fatalf("starts[0] = %d, want 0", starts[0])
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if starts[len(starts)-1] != info.Size() {
		t.Fatalf("last boundary = %d, want file size %d", starts[len(starts)-1], info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	for _, s := range starts[1 : len(starts)-1] {
		sr, err := NewShardReader(f, s, info.Size())
		if err != nil {
			t.Fatalf("NewShardReader at %d: %v", s, err)
		}
		rec, err := sr.Next()
		if err != nil {
			t.Fatalf("boundary %d did not start a record: %v", s, err)
		}
		if len(rec.Name) == 0 || rec.Name[0] != 'r' {
			t.Fatalf("boundary %d: unexpected record name %q", s, rec.Name)
		}
	}
}

func TestSplit_nLessThanOneClampsToOne(t *testing.T) {
	path := writeTempFastq(t, 4)

	starts, err := Split(path, 0)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(starts) != 2 {
		t.Fatalf("starts = %v, want exactly [0, size] for n<1", starts)
	}
}

func TestSplit_singleRecordFile(t *testing.T) {
	path := writeTempFastq(t, 1)

	starts, err := Split(path, 4)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	// A single record can't be split into 4 non-empty, record-aligned
	// shards; dedup should collapse the redundant interior boundaries.
	if len(starts) < 2 {
		t.Fatalf("starts = %v, want at least [0, size]", starts)
	}
	if starts[0] != 0 {
		t.Fatalf("starts[0] = %d, want 0", starts[0])
	}
}

func TestIsGzipped(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.fastq")
	if err := os.WriteFile(plain, []byte("@r0\nACGT\n+\nIIII\n"), 0o644); err != nil {
		t.Fatalf("write plain: %v", err)
	}
	if ok, err := IsGzipped(plain); err != nil || ok {
		t.Fatalf("IsGzipped(plain) = %v, %v, want false, nil", ok, err)
	}

	gz := filepath.Join(dir, "reads.fastq.gz")
	if err := os.WriteFile(gz, []byte{0x1f, 0x8b, 0x08, 0x00}, 0o644); err != nil {
		t.Fatalf("write gz: %v", err)
	}
	if ok, err := IsGzipped(gz); err != nil || !ok {
		t.Fatalf("IsGzipped(gz) = %v, %v, want true, nil", ok, err)
	}
}

func TestDedupInt64s(t *testing.T) {
	in := []int64{0, 0, 5, 5, 5, 10}
	got := dedupInt64s(in)
	want := []int64{0, 5, 10}
	if len(got) != len(want) {
		t.Fatalf("dedupInt64s(%v) = %v, want %v", in, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dedupInt64s(%v) = %v, want %v", in, got, want)
		}
	}
}
