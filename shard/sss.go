package shard

import (
	"bufio"
	"encoding/binary"
	"os"
)

// WriteSSS writes the global SSS table to path per spec §6's `.sss`
// format: for each distinct string, l (u64), l bytes, count (u64), k (u64)
// = number of distinct reference positions, then k u64 positions. Plain
// bufio.Writer, no compression, no header: the artifact's name and format
// are fixed by spec.md and are never altered.
func WriteSSS(path string, agg *Aggregate) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<16)

	var writeErr error
	agg.forEach(func(seq []byte, count uint64, positions []uint64) {
		if writeErr != nil {
			return
		}
		writeErr = writeSSSEntry(w, seq, count, positions)
	})
	if writeErr != nil {
		return writeErr
	}

	return w.Flush()
}

func writeSSSEntry(w *bufio.Writer, seq []byte, count uint64, positions []uint64) error {
	if err := binary.Write(w, nativeEndian, uint64(len(seq))); err != nil {
		return err
	}
	if _, err := w.Write(seq); err != nil {
		return err
	}
	if err := binary.Write(w, nativeEndian, count); err != nil {
		return err
	}
	if err := binary.Write(w, nativeEndian, uint64(len(positions))); err != nil {
		return err
	}
	return binary.Write(w, nativeEndian, positions)
}
