// Package msutil holds small algorithmic helpers shared by the sharding and
// aggregation packages. It is adapted from lexicmap/util's k-mer-location
// dedup helpers, generalized here for merging reference-position sets
// collected while scanning reads.
package msutil

import "github.com/twotwotwo/sorts/sortutil"

// SortUniqUint64s sorts s and removes duplicates in place, returning the
// deduplicated prefix.
func SortUniqUint64s(s []uint64) []uint64 {
	if len(s) < 2 {
		return s
	}

	sortutil.Uint64s(s)
	return uniqSorted(s)
}

// MergeSortedUniqueUint64s merges two already-sorted, already-deduplicated
// uint64 slices into a single sorted, deduplicated slice. This is the
// operation the shard driver uses to fold one worker's ref_positions set for
// an SSS string into the global table's set for the same string: both sides
// have already been made sorted-unique by SortUniqUint64s (when each table
// is normalized), so merging them is a linear merge rather than a re-sort
// of the concatenation.
func MergeSortedUniqueUint64s(a, b []uint64) []uint64 {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}

	out := make([]uint64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

func uniqSorted(s []uint64) []uint64 {
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
