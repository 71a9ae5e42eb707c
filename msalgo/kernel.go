package msalgo

import "github.com/refidx/msrindex/rindex"

// Compute runs the matching-statistics kernel over r and derives its
// longest MEM and per-read SSS list, per spec §4.D. It is total: given a
// loaded index and any read (including an empty one), it always returns.
//
// minMEMLen gates the returned MEM only (spec §2.3/§4.D.3, a supplemented
// feature from the original implementation's unused -l flag): if the
// longest MEM found is shorter than minMEMLen, the zero MEM is returned
// instead. MS and the SSS list are never affected by minMEMLen.
func Compute(idx *rindex.Index, r Read, minMEMLen uint64) (MS, MEM, []SSS) {
	m := len(r.Seq)
	pointers := idx.Pointers.Query(r.Seq)
	lengths := make([]uint64, m)

	n := idx.Text.Len()

	var l, nNs uint64
	var memPos, memIdx, memLen uint64

	for i := 0; i < m; i++ {
		pos := pointers[i]

		// Extend the current match one character at a time. n_Ns is not
		// reset at the start of each i, only on a non-N match: this rolling
		// counter (and thus the non-N guard below) reflects the tail of the
		// extension, not the full run from P[i] -- spec §9 open question 1,
		// preserved verbatim for parity with the source.
		for uint64(i)+l < uint64(m) && pos+l < n && r.Seq[uint64(i)+l] == idx.Text.At(pos+l) {
			if r.Seq[uint64(i)+l] == 'N' {
				nNs++
			} else {
				nNs = 0
			}
			l++
		}

		lengths[i] = l

		if l > memLen && nNs < l {
			memLen = l
			memPos = pos
			memIdx = uint64(i)
		}

		if l > 0 {
			l--
		}
	}

	mem := MEM{}
	if memLen > 0 && memLen >= minMEMLen {
		mem = MEM{Pos: memPos, Idx: memIdx, Len: memLen}
	}

	sss := deriveSSS(r.Seq, pointers, lengths)

	return MS{Pointers: pointers, Lengths: lengths}, mem, sss
}

// deriveSSS implements the second pass over L, P, and the read sequence
// described in spec §4.D: for i = 1..m-1, an ascent (L[i] >= L[i-1]) emits
// the substring seq[i-1 : i+L[i-1]+1] (the inclusive range [i-1, i+L[i-1]],
// L[i-1]+2 bytes before clipping to the read's end), anchored on
// the *previous* position's length -- spec §9 open question 2, preserved
// intentionally.
func deriveSSS(seq []byte, pointers, lengths []uint64) []SSS {
	m := len(lengths)
	if m < 2 {
		return nil
	}

	var out []SSS
	for i := 1; i < m; i++ {
		if lengths[i] < lengths[i-1] {
			continue
		}

		start := i - 1
		end := i + int(lengths[i-1]) + 1 // exclusive; inclusive range is [start, end-1]
		if end > len(seq) {
			// The window can reach past the read's own length near its tail
			// (e.g. spec scenario S2, read "ACGTA": at i=4 the nominal
			// window is [3,5] but the read only has indices up to 4), in
			// which case the emitted string is clipped to what the read
			// actually has.
			end = len(seq)
		}
		if end <= start {
			// Unreachable given the construction above (spec §9 open
			// question 3); guarded for parity with the source.
			continue
		}

		s := make([]byte, end-start)
		copy(s, seq[start:end])

		out = append(out, SSS{
			Seq:     s,
			L:       uint64(len(s)),
			ReadPos: uint64(start),
			RefPos:  pointers[start],
		})
	}
	return out
}
