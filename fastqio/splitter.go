// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
// Adapted for sharding raw FASTQ input by byte range.

// Package fastqio partitions an uncompressed FASTQ file into contiguous
// byte ranges that each begin at a record boundary (spec §4.A), and
// provides a lazy record iterator over such a range or over a whole
// (possibly gzipped) file (spec §4.B).
package fastqio

import (
	"bufio"
	"io"
	"os"

	"github.com/twotwotwo/sorts/sortutil"
)

// GzipMagic is the two leading bytes of a gzip stream. Per spec §6, a
// patterns file starting with these bytes is treated as gzipped and forces
// single-shard operation (fastqio never attempts to seek inside it).
var GzipMagic = [2]byte{0x1f, 0x8b}

// IsGzipped reports whether path begins with the gzip magic number.
func IsGzipped(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var buf [2]byte
	n, err := f.Read(buf[:])
	if err != nil && err != io.EOF {
		return false, err
	}
	return n == 2 && buf == GzipMagic, nil
}

// Split partitions the uncompressed file at path into n contiguous byte
// ranges and returns the boundary offsets s_0=0 < s_1 < ... < s_n=size,
// where each interior s_i is the offset of a FASTQ record's '@'-line, per
// spec §4.A. An n below 1 is treated as 1. Boundaries that land on the same
// offset are collapsed, so fewer than n+1 offsets (fewer than n shards) are
// returned when the file has too few records to fill n shards.
func Split(path string, n int) ([]int64, error) {
	if n < 1 {
		n = 1
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()

	starts := make([]int64, n+1)
	starts[0] = 0
	starts[n] = size

	for i := 1; i < n; i++ {
		target := size * int64(i) / int64(n)
		off, err := nextRecordStart(f, target)
		if err != nil {
			return nil, err
		}
		starts[i] = off
	}

	// Defensive: a small file or a coarse seek can land two targets at the
	// same record start. Sort (boundaries are already produced in
	// increasing target order, but twotwotwo/sorts/sortutil gives us a
	// single, deterministic way to normalize this -- matching the style
	// lexicmap/util uses sortutil for its own dedup pass) and dedup.
	sortutil.Int64s(starts)
	return dedupInt64s(starts), nil
}

func dedupInt64s(s []int64) []int64 {
	if len(s) < 2 {
		return s
	}
	j := 0
	for i := 1; i < len(s); i++ {
		if s[i] != s[j] {
			j++
			s[j] = s[i]
		}
	}
	return s[:j+1]
}

// nextRecordStart implements spec §4.A's boundary search: seek to
// target-1, then scan forward collecting the first character following
// each of the next four newlines along with its offset, and look for the
// '@'/'+' alternation that identifies a FASTQ record start. Falls back to
// the current offset (a non-fatal MalformedFastq condition per spec §7) if
// the window doesn't contain a recognizable pair.
func nextRecordStart(f *os.File, target int64) (int64, error) {
	seekAt := target - 1
	if seekAt < 0 {
		seekAt = 0
	}
	if _, err := f.Seek(seekAt, io.SeekStart); err != nil {
		return 0, err
	}

	r := bufio.NewReader(f)

	type lineStart struct {
		char byte
		off  int64
	}

	var window []lineStart
	off := seekAt
	for k := 0; k < 4; k++ {
		line, err := r.ReadBytes('\n')
		off += int64(len(line))
		if err != nil {
			if err == io.EOF {
				return off, nil
			}
			return 0, err
		}
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return off, nil
			}
			return 0, err
		}
		// ReadByte consumed the line's first byte, so the next ReadBytes
		// call returns only the rest of that line: record the byte's
		// offset, then account for its width in the running offset now.
		window = append(window, lineStart{char: c, off: off})
		off++
	}

	for j := 0; j < 2; j++ {
		if window[j].char == '@' && window[j+2].char == '+' {
			return window[j].off, nil
		}
		if window[j].char == '+' && window[j+2].char == '@' {
			return window[j+2].off, nil
		}
	}

	return off, nil
}
