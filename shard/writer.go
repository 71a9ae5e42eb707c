package shard

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/refidx/msrindex/msalgo"
)

// nativeEndian is the platform's native byte order, matching spec §4.E/§6's
// "native endianness" requirement for every integer in the tmp and final
// binary artifacts.
var nativeEndian = binary.NativeEndian

// Writer owns one shard's `.ms.tmp` and `.ss.tmp` output files and the
// private SSS aggregate (G_k) that fastqio/msalgo feed into it, per spec
// §4.E.
type Writer struct {
	msFile *os.File
	ssFile *os.File
	msW    *bufio.Writer
	ssW    *bufio.Writer

	Agg *Aggregate
}

// NewWriter creates (truncating if present) the two shard output files at
// msPath and ssPath.
func NewWriter(msPath, ssPath string) (*Writer, error) {
	msFile, err := os.Create(msPath)
	if err != nil {
		return nil, err
	}
	ssFile, err := os.Create(ssPath)
	if err != nil {
		msFile.Close()
		return nil, err
	}

	return &Writer{
		msFile: msFile,
		ssFile: ssFile,
		msW:    bufio.NewWriterSize(msFile, 1<<16),
		ssW:    bufio.NewWriterSize(ssFile, 1<<16),
		Agg:    NewAggregate(),
	}, nil
}

// WriteRead appends one read's MS record to `.ms.tmp`, one SSS record to
// `.ss.tmp`, and folds sss into the shard's aggregate, per spec §4.E/§4.D.
func (w *Writer) WriteRead(r msalgo.Read, ms msalgo.MS, mem msalgo.MEM, sss []msalgo.SSS) error {
	if err := w.writeMS(ms); err != nil {
		return err
	}
	if err := w.writeSS(r, mem, sss); err != nil {
		return err
	}
	for _, s := range sss {
		w.Agg.Add(s.Seq, s.RefPos)
	}
	return nil
}

// writeMS appends: m (u64), m pointers, m lengths.
func (w *Writer) writeMS(ms msalgo.MS) error {
	m := uint64(len(ms.Pointers))
	if err := binary.Write(w.msW, nativeEndian, m); err != nil {
		return err
	}
	if err := binary.Write(w.msW, nativeEndian, ms.Pointers); err != nil {
		return err
	}
	return binary.Write(w.msW, nativeEndian, ms.Lengths)
}

// writeSS appends: name length (u64), name bytes, mem (pos, idx, len) each
// u64, SSS count k (u64), then k SSS records of (l u64, l bytes, read_pos
// u64, ref_pos u64).
func (w *Writer) writeSS(r msalgo.Read, mem msalgo.MEM, sss []msalgo.SSS) error {
	if err := binary.Write(w.ssW, nativeEndian, uint64(len(r.Name))); err != nil {
		return err
	}
	if _, err := w.ssW.Write(r.Name); err != nil {
		return err
	}
	if err := binary.Write(w.ssW, nativeEndian, mem.Pos); err != nil {
		return err
	}
	if err := binary.Write(w.ssW, nativeEndian, mem.Idx); err != nil {
		return err
	}
	if err := binary.Write(w.ssW, nativeEndian, mem.Len); err != nil {
		return err
	}

	if err := binary.Write(w.ssW, nativeEndian, uint64(len(sss))); err != nil {
		return err
	}
	for _, s := range sss {
		if err := binary.Write(w.ssW, nativeEndian, uint64(len(s.Seq))); err != nil {
			return err
		}
		if _, err := w.ssW.Write(s.Seq); err != nil {
			return err
		}
		if err := binary.Write(w.ssW, nativeEndian, s.ReadPos); err != nil {
			return err
		}
		if err := binary.Write(w.ssW, nativeEndian, s.RefPos); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes both output files and normalizes the shard's
// aggregate so it is ready to hand to Merge.
func (w *Writer) Close() error {
	w.Agg.Normalize()

	if err := w.msW.Flush(); err != nil {
		w.msFile.Close()
		w.ssFile.Close()
		return err
	}
	if err := w.ssW.Flush(); err != nil {
		w.msFile.Close()
		w.ssFile.Close()
		return err
	}
	if err := w.msFile.Close(); err != nil {
		w.ssFile.Close()
		return err
	}
	return w.ssFile.Close()
}
