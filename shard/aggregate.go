// Package shard implements the per-shard writer and shard driver of
// spec.md §4.E/§4.F: one worker per shard drives fastqio -> msalgo.Compute
// -> shard.Writer, and shard.Run joins and merges the resulting per-shard
// SSS tables into the single global table written to `<out>.sss`.
package shard

import (
	"github.com/shenwei356/kmers"

	"github.com/refidx/msrindex/msutil"
)

// shortSSSMaxLen is the longest SSS string a 2-bit-packed uint64 k-mer
// encoding can represent; longer strings, and any string containing a byte
// outside ACGT (which the 2-bit code cannot round-trip), fall back to a
// plain string key instead.
const shortSSSMaxLen = 32

// entry is one value in the global SSS table G (spec §3): the total
// occurrence count and the set of distinct reference positions the string
// was ever anchored on.
type entry struct {
	Count     uint64
	Positions []uint64
	sorted    bool
}

// shortKey is the 2-bit-packed form of an SSS string no longer than
// shortSSSMaxLen, the same encoding lexicmap/tree uses for its k-mer nodes
// (github.com/shenwei356/kmers.Encode). Len disambiguates strings whose
// packed bits collide once zero-padded to a common width.
type shortKey struct {
	Len  uint8
	Code uint64
}

// Aggregate is one worker's (or, after Merge, the process's) SSS table G.
// Short strings (the common case: SSS strings are local extension windows,
// almost always well under shortSSSMaxLen bytes) are keyed by their packed
// 2-bit encoding rather than by the string itself, avoiding a per-entry
// string allocation for the bulk of the table; longer strings use a plain
// string key.
type Aggregate struct {
	short map[shortKey]*entry
	long  map[string]*entry
}

// NewAggregate returns an empty table.
func NewAggregate() *Aggregate {
	return &Aggregate{
		short: make(map[shortKey]*entry),
		long:  make(map[string]*entry),
	}
}

// Add folds one SSS emission into the table, per spec §4.D's "Global SSS
// update": increment the string's count and insert refPos into its position
// set.
func (a *Aggregate) Add(seq []byte, refPos uint64) {
	short := len(seq) > 0 && len(seq) <= shortSSSMaxLen
	for i := 0; short && i < len(seq); i++ {
		c := seq[i]
		short = c == 'A' || c == 'C' || c == 'G' || c == 'T'
	}
	if short {
		if code, err := kmers.Encode(seq); err == nil {
			key := shortKey{Len: uint8(len(seq)), Code: code}
			e, ok := a.short[key]
			if !ok {
				e = &entry{}
				a.short[key] = e
			}
			e.Count++
			e.Positions = append(e.Positions, refPos)
			e.sorted = false
			return
		}
	}

	key := string(seq)
	e, ok := a.long[key]
	if !ok {
		e = &entry{}
		a.long[key] = e
	}
	e.Count++
	e.Positions = append(e.Positions, refPos)
	e.sorted = false
}

// Normalize sorts and deduplicates every entry's position list, turning the
// append-only accumulation Add does into a proper set. Called once per
// worker before that worker's table is handed to Merge.
func (a *Aggregate) Normalize() {
	for _, e := range a.short {
		if !e.sorted {
			e.Positions = msutil.SortUniqUint64s(e.Positions)
			e.sorted = true
		}
	}
	for _, e := range a.long {
		if !e.sorted {
			e.Positions = msutil.SortUniqUint64s(e.Positions)
			e.sorted = true
		}
	}
}

// Merge folds other into a in place, implementing spec §4.F's step 5:
// for each entry (s, (c_k, R_k)) in other, a[s].count += c_k and
// a[s].ref_positions |= R_k. Both a and other must already be normalized.
// Associative and commutative (spec §8 property 5): the result depends only
// on the multiset of entries folded in, not on pairing order.
func (a *Aggregate) Merge(other *Aggregate) {
	for key, oe := range other.short {
		e, ok := a.short[key]
		if !ok {
			a.short[key] = &entry{
				Count:     oe.Count,
				Positions: append([]uint64(nil), oe.Positions...),
				sorted:    true,
			}
			continue
		}
		e.Count += oe.Count
		e.Positions = msutil.MergeSortedUniqueUint64s(e.Positions, oe.Positions)
		e.sorted = true
	}
	for key, oe := range other.long {
		e, ok := a.long[key]
		if !ok {
			a.long[key] = &entry{
				Count:     oe.Count,
				Positions: append([]uint64(nil), oe.Positions...),
				sorted:    true,
			}
			continue
		}
		e.Count += oe.Count
		e.Positions = msutil.MergeSortedUniqueUint64s(e.Positions, oe.Positions)
		e.sorted = true
	}
}

// Len returns the number of distinct SSS strings in the table.
func (a *Aggregate) Len() int { return len(a.short) + len(a.long) }

// forEach visits every (seq, count, positions) triple, decoding short-path
// entries back to their original bytes via kmers.Decode. Iteration order is
// the maps', which is unspecified: per spec §6, `.sss` has no required
// ordering.
func (a *Aggregate) forEach(fn func(seq []byte, count uint64, positions []uint64)) {
	for key, e := range a.short {
		seq := []byte(string(kmers.Decode(key.Code, int(key.Len))))
		fn(seq, e.Count, e.Positions)
	}
	for key, e := range a.long {
		fn([]byte(key), e.Count, e.Positions)
	}
}

// Merge folds a slice of per-shard tables into one, in shard index order
// (spec §4.F step 5). Tables are consumed in order 0..len(aggs)-1, but the
// result does not depend on that order (Aggregate.Merge is commutative).
func Merge(aggs []*Aggregate) *Aggregate {
	out := NewAggregate()
	for _, a := range aggs {
		if a == nil {
			continue
		}
		a.Normalize()
		out.Merge(a)
	}
	return out
}
