// Package msalgo implements the matching-statistics kernel and the
// sample-specific-string (SSS) derivation pass. This is the algorithmic
// core; it is total given a loaded rindex.Index and never blocks or errors.
package msalgo

// Read is a single parsed record from a FASTQ/FASTA input. It is immutable
// after parsing.
type Read struct {
	Name []byte
	Seq  []byte
}

// MS holds the matching-statistics arrays for one read. Pointers[i] is a
// reference position such that the longest common prefix of Seq[i:] and the
// reference text starting at Pointers[i] has length Lengths[i].
type MS struct {
	Pointers []uint64
	Lengths  []uint64
}

// MEM is the longest maximal exact match found while scanning a read: the
// position i that maximizes Lengths[i] subject to the non-N guard, ties
// broken by the smallest i. The zero value means no qualifying MEM was
// found (e.g. an empty read, or one gated out by a minimum-length filter).
type MEM struct {
	Pos uint64
	Idx uint64
	Len uint64
}

// SSS is one sample-specific-string emission: a read substring whose
// MS-length profile marks a local ascent, along with where it starts in the
// read and the reference position seed it was anchored on.
type SSS struct {
	Seq     []byte
	L       uint64
	ReadPos uint64
	RefPos  uint64
}
