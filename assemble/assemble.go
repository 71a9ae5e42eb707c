// Package assemble implements the final assembler of spec.md §4.G: after
// the shard driver has joined, it reads every shard's `.ms.tmp` file in
// shard order and emits the two human-readable `.pointers`/`.lengths`
// artifacts.
package assemble

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/refidx/msrindex/shard"
)

// Run reads `<outPrefix>_<k>.ms.tmp` for k = 0..nShards-1 in order and
// writes `<outPrefix>.pointers` and `<outPrefix>.lengths`, one
// `>{seq_index}`-headed, space-separated-values block per read, seq_index
// a monotone counter across all shards, per spec §4.G.
func Run(outPrefix string, nShards int) error {
	pointersFile, err := os.Create(outPrefix + ".pointers")
	if err != nil {
		return err
	}
	defer pointersFile.Close()

	lengthsFile, err := os.Create(outPrefix + ".lengths")
	if err != nil {
		return err
	}
	defer lengthsFile.Close()

	pw := bufio.NewWriterSize(pointersFile, 1<<16)
	lw := bufio.NewWriterSize(lengthsFile, 1<<16)

	seqIndex := 0
	for k := 0; k < nShards; k++ {
		msPath := fmt.Sprintf("%s_%d.ms.tmp", outPrefix, k)
		if err := assembleShard(msPath, pw, lw, &seqIndex); err != nil {
			return err
		}
	}

	if err := pw.Flush(); err != nil {
		return err
	}
	return lw.Flush()
}

func assembleShard(msPath string, pw, lw *bufio.Writer, seqIndex *int) error {
	f, err := os.Open(msPath)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<16)
	for {
		pointers, lengths, err := shard.ReadMSRecord(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := writeBlock(pw, *seqIndex, pointers); err != nil {
			return err
		}
		if err := writeBlock(lw, *seqIndex, lengths); err != nil {
			return err
		}
		*seqIndex++
	}
}

func writeBlock(w *bufio.Writer, seqIndex int, values []uint64) error {
	if _, err := fmt.Fprintf(w, ">%d\n", seqIndex); err != nil {
		return err
	}
	for i, v := range values {
		if i > 0 {
			if err := w.WriteByte(' '); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(strconv.FormatUint(v, 10)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}
