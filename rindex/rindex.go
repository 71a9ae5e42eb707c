// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
// Adapted for the matching-statistics index adapter.

// Package rindex is the thin contract over the two external,
// upstream-built collaborators described in spec §6: the r-index-with-
// thresholds pointers oracle and the SLP-backed random-access text oracle.
// Construction of these artifacts from raw text is out of this package's
// scope; rindex only loads and queries already-built, serialized indexes.
package rindex

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
)

// PointersFileExt is the file extension of the serialized pointers
// (r-index-with-thresholds) artifact.
const PointersFileExt = ".ms.idx"

// ShapedSLPFileExt and PlainSLPFileExt name the two SLP random-access text
// oracle variants, matching the upstream builder's
// get_slp_file_extension<slp_t>() specialization.
const (
	ShapedSLPFileExt = ".slp"
	PlainSLPFileExt  = ".plain.slp"
)

// Pointers answers, for a read sequence, the per-position reference seeds
// an r-index-with-thresholds produces. It is total: every call returns a
// slice of exactly len(seq) positions in [0, Text.Len()), never an error.
// The kernel does not reverify a returned position; it only uses it as an
// extension seed.
type Pointers interface {
	Query(seq []byte) []uint64
}

// TextOracle is a random-access view of the reference text, backed in a
// full deployment by a grammar-compressed SLP. It is total on [0, Len()).
type TextOracle interface {
	At(i uint64) byte
	Len() uint64
}

// Index bundles the two loaded collaborators for the duration of a process.
// Both fields are safe for concurrent use by multiple shard workers.
type Index struct {
	Pointers Pointers
	Text     TextOracle
}

// Load reads the pointers artifact at basePath+PointersFileExt and the SLP
// artifact at basePath+ShapedSLPFileExt (shaped) or basePath+PlainSLPFileExt
// (plain, the default), matching the CLI's -q flag semantics from spec §6.
func Load(basePath string, shaped bool) (*Index, error) {
	ptrPath := basePath + PointersFileExt
	if ok, err := pathutil.Exists(ptrPath); err != nil {
		return nil, errors.Wrap(err, ptrPath)
	} else if !ok {
		return nil, fmt.Errorf("rindex: pointers index not found: %s", ptrPath)
	}

	slpExt := PlainSLPFileExt
	if shaped {
		slpExt = ShapedSLPFileExt
	}
	slpPath := basePath + slpExt
	if ok, err := pathutil.Exists(slpPath); err != nil {
		return nil, errors.Wrap(err, slpPath)
	} else if !ok {
		return nil, fmt.Errorf("rindex: SLP text oracle not found: %s", slpPath)
	}

	ptrs, err := loadPointers(ptrPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading pointers index")
	}

	text, err := loadText(slpPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading SLP text oracle")
	}

	return &Index{Pointers: ptrs, Text: text}, nil
}

// BaseName mirrors the CLI's use of the infile's basename when deriving
// output-artifact prefixes in spec §6.
func BaseName(infile string) string {
	return filepath.Base(infile)
}
